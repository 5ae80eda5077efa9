package service_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/okian/traderheat/internal/adapters/render"
	"github.com/okian/traderheat/internal/adapters/source"
	service "github.com/okian/traderheat/internal/app"
	"github.com/okian/traderheat/internal/config"
	"github.com/okian/traderheat/internal/domain/pivot"
	"github.com/okian/traderheat/internal/ingest"
	"github.com/okian/traderheat/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const tagging = "Date,Event,Scheduled for in-play,Assign a trader\n" +
	"01/03/2024 09:10,E1,No,Smith 2\n" +
	"01/03/2024 09:20,E1,Yes,Smith (backup)2\n" +
	"01/03/2024 14:05,E2,Yes,Jones\n" +
	"01/03/2024 14:45,E3,No,-\n" +
	"01/03/2024 06:59,E4,Yes,Smith\n" +
	"01/03/2024 22:30,E5,Yes,Smith\n" +
	"01/03/2024 12:00,,Yes,Smith\n"

func stream(csv string) source.Source {
	return source.NewStream("trader_tagging.csv", strings.NewReader(csv), 0)
}

func newService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc, err := service.New(opts...)
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	return svc
}

func cell(g pivot.Grid, slot, trader string) (int, bool) {
	i, j := slices.Index(g.Slots, slot), slices.Index(g.Traders, trader)
	if i < 0 || j < 0 {
		return 0, false
	}
	return g.Counts[i][j], true
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := newService(t)

		Convey("Then it should have sensible defaults", func() {
			So(svc.Mode(), ShouldEqual, "upload")
			So(svc.Palette().Name(), ShouldEqual, render.DefaultScale)
			stats := svc.GetStats()
			So(stats["reportsGenerated"], ShouldEqual, int64(0))
			So(stats["window"], ShouldEqual, "07:00-22:29")
			So(stats["slots"], ShouldEqual, 16)
		})
	})

	Convey("Given an unknown colour scale", t, func() {
		o := render.DefaultOptions()
		o.ColorScale = "Jet"
		svc, err := service.New(service.WithRenderOptions(o))

		Convey("Then construction should fail", func() {
			So(svc, ShouldBeNil)
			So(errors.Is(err, render.ErrUnknownScale), ShouldBeTrue)
		})
	})
}

func TestService_Generate(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := newService(t, service.WithMode("discover"))
		ctx := context.Background()

		Convey("When generating both views of a tagging export", func() {
			rep, err := svc.Generate(ctx, stream(tagging), pivot.InPlay, pivot.Total)
			So(err, ShouldBeNil)

			Convey("Then the cleaned table should honour the window, event and dedup rules", func() {
				So(rep.Source, ShouldEqual, "trader_tagging.csv")
				So(rep.Stats.RowsRead, ShouldEqual, 7)
				So(rep.Stats.DroppedOutsideWindow, ShouldEqual, 2)
				So(rep.Stats.DroppedMissingEvent, ShouldEqual, 1)
				So(rep.Stats.DroppedDuplicate, ShouldEqual, 1)
				So(rep.Stats.Cleaned, ShouldEqual, 3)
				So(rep.Records, ShouldHaveLength, 3)
			})

			Convey("Then the in-play view should keep the Yes row of E1", func() {
				vr, ok := rep.View(pivot.InPlay)
				So(ok, ShouldBeTrue)
				So(vr.Rendered, ShouldBeTrue)
				So(vr.Title, ShouldEqual, "Scheduled for In-Play")
				So(vr.Records, ShouldEqual, 2)
				So(vr.Grid.Traders, ShouldResemble, []string{"Jones", "Smith"})
				n, _ := cell(vr.Grid, "9am-10am", "Smith")
				So(n, ShouldEqual, 1)
			})

			Convey("Then the total view should include the unassigned event", func() {
				vr, _ := rep.View(pivot.Total)
				So(vr.Grid.Traders, ShouldResemble, []string{"Jones", "Smith", "Unassigned"})
				So(vr.Grid.Sum(), ShouldEqual, 3)
				So(rep.Messages(), ShouldBeEmpty)
			})

			Convey("Then both views should render to PDF and XLSX", func() {
				b, err := svc.PDF(ctx, rep, pivot.InPlay)
				So(err, ShouldBeNil)
				So(bytes.HasPrefix(b, []byte("%PDF-")), ShouldBeTrue)

				x, err := svc.XLSX(ctx, rep)
				So(err, ShouldBeNil)
				So(bytes.HasPrefix(x, []byte("PK")), ShouldBeTrue)
				So(rep.Sheets(), ShouldHaveLength, 2)
			})

			Convey("Then HTML shades should cover every cell", func() {
				vr, _ := rep.View(pivot.Total)
				shades := svc.Shades(vr)
				So(shades, ShouldHaveLength, 16)
				So(shades[0], ShouldHaveLength, 3)
			})

			Convey("Then the stats should count the report", func() {
				stats := svc.GetStats()
				So(stats["reportsGenerated"], ShouldEqual, int64(1))
				So(stats["lastSource"], ShouldEqual, "trader_tagging.csv")
				So(stats["mode"], ShouldEqual, "discover")
			})
		})

		Convey("When no event is scheduled for in-play", func() {
			csv := "Date,Event,Scheduled for in-play,Assign a trader\n01/03/2024 10:00,E1,No,Smith\n"
			rep, err := svc.Generate(ctx, stream(csv), pivot.InPlay, pivot.Total)
			So(err, ShouldBeNil)

			Convey("Then the in-play view should be skipped with a message", func() {
				vr, _ := rep.View(pivot.InPlay)
				So(vr.Rendered, ShouldBeFalse)
				So(vr.Message, ShouldContainSubstring, "No events scheduled for in-play")
				So(rep.Messages(), ShouldHaveLength, 1)

				_, err := svc.PDF(ctx, rep, pivot.InPlay)
				So(errors.Is(err, service.ErrViewNotRendered), ShouldBeTrue)
			})

			Convey("Then the total view should still render", func() {
				b, err := svc.PDF(ctx, rep, pivot.Total)
				So(err, ShouldBeNil)
				So(b, ShouldNotBeEmpty)
				So(rep.Sheets(), ShouldHaveLength, 1)
			})
		})

		Convey("When the file has no data rows", func() {
			rep, err := svc.Generate(ctx, stream(""), pivot.InPlay, pivot.Total)

			Convey("Then both views should be empty and the total still rendered", func() {
				So(err, ShouldBeNil)
				So(rep.Records, ShouldBeEmpty)
				inPlay, _ := rep.View(pivot.InPlay)
				So(inPlay.Rendered, ShouldBeFalse)
				total, _ := rep.View(pivot.Total)
				So(total.Rendered, ShouldBeTrue)
				So(total.Grid.Empty(), ShouldBeTrue)
				So(total.Message, ShouldContainSubstring, "No events in")
			})
		})

		Convey("When a date is malformed", func() {
			csv := "Date,Event,Scheduled for in-play,Assign a trader\n2024-03-01 10:00,E1,Yes,Smith\n"
			rep, err := svc.Generate(ctx, stream(csv), pivot.Total)

			Convey("Then the whole file should be rejected", func() {
				So(rep, ShouldBeNil)
				So(errors.Is(err, ingest.ErrParseDate), ShouldBeTrue)
				So(svc.GetStats()["reportsFailed"], ShouldEqual, int64(1))
			})
		})

		Convey("When the source has no file", func() {
			_, err := svc.Generate(ctx, source.NewLatest(t.TempDir(), "trader_tagging*.csv", 0), pivot.InPlay)
			So(errors.Is(err, source.ErrNoFile), ShouldBeTrue)
		})

		Convey("When no view is requested", func() {
			_, err := svc.Generate(ctx, stream(tagging))
			So(errors.Is(err, service.ErrNoViews), ShouldBeTrue)
		})
	})
}

func TestConfigOptions(t *testing.T) {
	Convey("Given a configuration with a narrower window and slots", t, func() {
		cfg := config.New(context.Background())
		cfg.WindowStart, cfg.WindowEnd = "09:00", "12:00"
		cfg.SlotStartHour, cfg.SlotEndHour = 9, 12
		cfg.ColorScale = "Greens"
		cfg.Mode = config.ModeDiscover

		opts, err := service.ConfigOptions(cfg)
		So(err, ShouldBeNil)
		svc := newService(t, opts...)

		Convey("Then the service should use them", func() {
			stats := svc.GetStats()
			So(stats["window"], ShouldEqual, "09:00-12:00")
			So(stats["slots"], ShouldEqual, 3)
			So(stats["colorScale"], ShouldEqual, "Greens")
			So(svc.Mode(), ShouldEqual, config.ModeDiscover)

			rep, err := svc.Generate(context.Background(), stream(tagging), pivot.Total)
			So(err, ShouldBeNil)
			So(rep.Stats.Cleaned, ShouldEqual, 1)
			vr, _ := rep.View(pivot.Total)
			So(vr.Grid.Slots, ShouldResemble, []string{"9am-10am", "10am-11am", "11am-12am"})
		})
	})

	Convey("Given an invalid window", t, func() {
		cfg := config.New(context.Background())
		cfg.WindowStart = "noon"
		_, err := service.ConfigOptions(cfg)
		So(err, ShouldNotBeNil)
	})
}
