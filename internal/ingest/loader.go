// Package ingest reads trader tagging exports and cleans them into records.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/traderheat/internal/domain/dedupe"
	"github.com/okian/traderheat/internal/domain/model"
	"github.com/okian/traderheat/internal/domain/timeslot"
	"github.com/okian/traderheat/internal/domain/trader"
)

// DateLayout is the fixed day/month/year hour:minute format of the Date column.
// Every field but the year may be written with one or two digits.
const DateLayout = "2/1/2006 15:4"

// Stats counts what happened to the rows of one file.
type Stats struct {
	RowsRead             int `json:"rows_read"`
	DroppedOutsideWindow int `json:"dropped_outside_window"`
	DroppedMissingEvent  int `json:"dropped_missing_event"`
	DroppedDuplicate     int `json:"dropped_duplicate"`
	Cleaned              int `json:"cleaned"`
}

// Result is the cleaned table of one file.
type Result struct {
	Records []model.CleanedRecord
	Stats   Stats
}

// Loader parses and cleans exports. A Loader holds no per-file state and may
// be reused.
type Loader struct {
	window   Window
	bins     timeslot.Bins
	location *time.Location
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithWindow sets the inclusive time-of-day window rows must fall in.
func WithWindow(w Window) Option {
	return func(l *Loader) {
		l.window = w
	}
}

// WithBins sets the hourly slots used to label records.
func WithBins(b timeslot.Bins) Option {
	return func(l *Loader) {
		if b.Len() > 0 {
			l.bins = b
		}
	}
}

// WithLocation sets the zone dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(l *Loader) {
		if loc != nil {
			l.location = loc
		}
	}
}

// New creates a Loader with the default window and bins.
func New(opts ...Option) *Loader {
	l := &Loader{
		window:   DefaultWindow,
		bins:     timeslot.Default(),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Bins returns the slots the Loader labels records with.
func (l *Loader) Bins() timeslot.Bins {
	return l.bins
}

// Window returns the configured time-of-day window.
func (l *Loader) Window() Window {
	return l.window
}

type parsedRow struct {
	raw model.RawRecord
	ts  time.Time
	ok  bool // false when the date was absent
}

// Load reads the whole stream and returns the cleaned records. Any malformed
// date, missing column or malformed row fails the whole file. Rows outside the
// window, rows without an event and duplicate events are dropped silently and
// only show up in Stats.
func (l *Loader) Load(ctx context.Context, in io.Reader) (Result, error) {
	rows, err := l.parse(ctx, in)
	if err != nil {
		return Result{}, err
	}

	var res Result
	res.Stats.RowsRead = len(rows)

	candidates := make([]model.CleanedRecord, 0, len(rows))
	for _, row := range rows {
		if !row.ok || !l.window.Contains(row.ts) {
			res.Stats.DroppedOutsideWindow++
			continue
		}
		if !row.raw.HasEvent {
			res.Stats.DroppedMissingEvent++
			continue
		}
		candidates = append(candidates, model.CleanedRecord{
			Timestamp:          row.ts,
			Event:              row.raw.Event,
			ScheduledForInPlay: row.raw.ScheduledForInPlay,
			Trader:             row.raw.AssignedTrader,
			HasTrader:          row.raw.HasTrader,
		})
	}

	kept, dropped := dedupe.KeepPreferred(candidates)
	res.Stats.DroppedDuplicate = dropped

	for i := range kept {
		r := &kept[i]
		if r.HasTrader {
			r.Trader = trader.Normalize(r.Trader)
		}
		r.Hour = r.Timestamp.Hour()
		r.TimeSlot = l.bins.Slot(r.Hour)
	}

	res.Records = kept
	res.Stats.Cleaned = len(kept)
	return res, nil
}

// parse materialises every row and its timestamp before any filtering, so a
// bad date anywhere in the file is fatal.
func (l *Loader) parse(ctx context.Context, in io.Reader) ([]parsedRow, error) {
	rr, err := newRawReader(in)
	if err != nil {
		return nil, err
	}

	var rows []parsedRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := rr.next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		row := parsedRow{raw: raw}
		if raw.HasDate {
			ts, err := time.ParseInLocation(DateLayout, raw.Date, l.location)
			if err != nil {
				return nil, &LineError{Line: raw.Line, Err: fmt.Errorf("%w: %q does not match dd/mm/yyyy hh:mm", ErrParseDate, raw.Date)}
			}
			row.ts, row.ok = ts, true
		}
		rows = append(rows, row)
	}
}
