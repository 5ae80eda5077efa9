package dedupe_test

import (
	"fmt"
	"testing"

	"github.com/okian/traderheat/internal/domain/dedupe"
	"github.com/okian/traderheat/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(event, inPlay, trader string) model.CleanedRecord {
	return model.CleanedRecord{Event: event, ScheduledForInPlay: inPlay, Trader: trader, HasTrader: true}
}

func TestDeduper(t *testing.T) {
	Convey("Given a new Deduper", t, func() {
		d := dedupe.New(0)
		So(d.Size(), ShouldEqual, 0)

		Convey("When recording events", func() {
			So(d.SeenAndRecord("event-1"), ShouldBeFalse)
			So(d.SeenAndRecord("event-2"), ShouldBeFalse)
			So(d.SeenAndRecord("event-1"), ShouldBeTrue)

			Convey("Then only distinct IDs should be counted", func() {
				So(d.Size(), ShouldEqual, 2)
			})
		})
	})
}

func TestKeepPreferred(t *testing.T) {
	Convey("Given two rows for the same event", t, func() {
		records := []model.CleanedRecord{
			rec("E1", "No", "Smith"),
			rec("E1", "Yes", "Jones"),
		}

		kept, dropped := dedupe.KeepPreferred(records)

		Convey("Then the in-play row should be retained", func() {
			So(kept, ShouldHaveLength, 1)
			So(dropped, ShouldEqual, 1)
			So(kept[0].ScheduledForInPlay, ShouldEqual, "Yes")
			So(kept[0].Trader, ShouldEqual, "Jones")
		})

		Convey("Then the input should be left untouched", func() {
			So(records[0].ScheduledForInPlay, ShouldEqual, "No")
			So(records[1].ScheduledForInPlay, ShouldEqual, "Yes")
		})
	})

	Convey("Given unexpected in-play values", t, func() {
		records := []model.CleanedRecord{
			rec("E1", "Yes", "A"),
			rec("E1", "maybe", "B"),
			rec("E2", "No", "C"),
			rec("E2", "", "D"),
			rec("E3", "Y", "E"),
			rec("E3", "Yes", "F"),
		}

		kept, dropped := dedupe.KeepPreferred(records)
		byEvent := map[string]model.CleanedRecord{}
		for _, r := range kept {
			byEvent[r.Event] = r
		}

		Convey("Then the lexically highest value should win", func() {
			So(dropped, ShouldEqual, 3)
			So(byEvent["E1"].Trader, ShouldEqual, "B") // "maybe" > "Yes"
			So(byEvent["E2"].Trader, ShouldEqual, "C") // absent sorts last
			So(byEvent["E3"].Trader, ShouldEqual, "F") // "Yes" > "Y"
		})
	})

	Convey("Given ties on the in-play value", t, func() {
		records := []model.CleanedRecord{
			rec("E1", "Yes", "first"),
			rec("E2", "Yes", "other"),
			rec("E1", "Yes", "second"),
		}

		kept, _ := dedupe.KeepPreferred(records)

		Convey("Then the earliest row in the file should be kept", func() {
			So(kept, ShouldHaveLength, 2)
			So(kept[0].Trader, ShouldEqual, "first")
		})
	})

	Convey("Given many rows with repeated events", t, func() {
		var records []model.CleanedRecord
		for i := 0; i < 200; i++ {
			inPlay := "No"
			if i%3 == 0 {
				inPlay = "Yes"
			}
			records = append(records, rec(fmt.Sprintf("E%d", i%37), inPlay, "T"))
		}

		kept, dropped := dedupe.KeepPreferred(records)

		Convey("Then every event should appear exactly once", func() {
			seen := map[string]int{}
			for _, r := range kept {
				seen[r.Event]++
			}
			So(len(seen), ShouldEqual, len(kept))
			So(len(kept), ShouldEqual, 37)
			So(dropped, ShouldEqual, 200-37)
		})
	})

	Convey("Given no records", t, func() {
		kept, dropped := dedupe.KeepPreferred(nil)
		So(kept, ShouldBeEmpty)
		So(dropped, ShouldEqual, 0)
	})
}
