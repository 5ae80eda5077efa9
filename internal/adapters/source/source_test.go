package source_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/traderheat/internal/adapters/source"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, dir, name, content string, mod time.Time) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(p, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestLatest(t *testing.T) {
	Convey("Given a downloads folder with several exports", t, func() {
		dir := t.TempDir()
		now := time.Now()
		writeFile(t, dir, "trader_tagging_old.csv", "old", now.Add(-2*time.Hour))
		writeFile(t, dir, "trader_tagging_new.csv", "new", now.Add(-time.Hour))
		writeFile(t, dir, "other.csv", "newest but unrelated", now)
		So(os.Mkdir(filepath.Join(dir, "trader_tagging_dir.csv"), 0o700), ShouldBeNil)

		src := source.NewLatest(dir, "trader_tagging*.csv", 0)

		Convey("When opening the source", func() {
			in, err := src.Open(context.Background())

			Convey("Then the newest matching file should be read", func() {
				So(err, ShouldBeNil)
				So(in.Name, ShouldEqual, "trader_tagging_new.csv")
				So(string(in.Data), ShouldEqual, "new")

				b, _ := io.ReadAll(in.Reader())
				So(string(b), ShouldEqual, "new")
			})
		})

		Convey("When the file exceeds the size cap", func() {
			_, err := source.NewLatest(dir, "trader_tagging*.csv", 2).Open(context.Background())

			Convey("Then it should fail with ErrTooLarge", func() {
				So(errors.Is(err, source.ErrTooLarge), ShouldBeTrue)
			})
		})
	})

	Convey("Given a folder without exports", t, func() {
		_, err := source.NewLatest(t.TempDir(), "trader_tagging*.csv", 0).Open(context.Background())

		Convey("Then it should report ErrNoFile", func() {
			So(errors.Is(err, source.ErrNoFile), ShouldBeTrue)
		})
	})

	Convey("Given a bad pattern", t, func() {
		_, err := source.NewLatest(t.TempDir(), "[", 0).Open(context.Background())
		So(err, ShouldNotBeNil)
		So(errors.Is(err, source.ErrNoFile), ShouldBeFalse)
	})
}

func TestStream(t *testing.T) {
	Convey("Given an uploaded stream", t, func() {
		Convey("When it fits the limit", func() {
			in, err := source.NewStream("upload.csv", strings.NewReader("abc"), 3).Open(context.Background())
			So(err, ShouldBeNil)
			So(in.Name, ShouldEqual, "upload.csv")
			So(string(in.Data), ShouldEqual, "abc")
		})

		Convey("When it is over the limit", func() {
			_, err := source.NewStream("upload.csv", strings.NewReader("abcd"), 3).Open(context.Background())
			So(errors.Is(err, source.ErrTooLarge), ShouldBeTrue)
		})

		Convey("When there is no reader", func() {
			_, err := source.NewStream("", nil, 0).Open(context.Background())
			So(errors.Is(err, source.ErrNoFile), ShouldBeTrue)
		})

		Convey("When the context is done", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := source.NewStream("x", strings.NewReader("a"), 0).Open(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestFile(t *testing.T) {
	Convey("Given an explicit file path", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "export.csv", "a,b\n", time.Now())

		Convey("When the file exists", func() {
			in, err := source.NewFile(filepath.Join(dir, "export.csv"), 0).Open(context.Background())
			So(err, ShouldBeNil)
			So(in.Name, ShouldEqual, "export.csv")
			So(string(in.Data), ShouldEqual, "a,b\n")
		})

		Convey("When the file is missing", func() {
			_, err := source.NewFile(filepath.Join(dir, "nope.csv"), 0).Open(context.Background())
			So(errors.Is(err, source.ErrNoFile), ShouldBeTrue)
		})
	})
}
