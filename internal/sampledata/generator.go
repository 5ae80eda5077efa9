// Package sampledata generates synthetic trader tagging exports.
package sampledata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Header is the column layout of a trader tagging export.
var Header = []string{"ID", "Date", "Event", "Scheduled for in-play", "Assign a trader", "Notes"}

// DateLayout matches the export's Date column.
const DateLayout = "02/01/2006 15:04"

// DefaultTraders is used when Config.Traders is empty.
var DefaultTraders = []string{"Smith", "Jones", "Patel", "García", "O'Neill", "Novak"}

// Window of generated in-range events, in minutes after midnight.
const (
	windowStartMin = 7 * 60
	windowEndMin   = 22*60 + 29
)

// Generator writes synthetic rows. It is not safe for concurrent use.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// NewGenerator creates a generator for cfg.
func NewGenerator(cfg Config) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if len(cfg.Traders) == 0 {
		cfg.Traders = DefaultTraders
	}
	if cfg.Day.IsZero() {
		cfg.Day = time.Now()
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))} //nolint:gosec // synthetic data
}

// Write emits the header and cfg.Rows rows as CSV.
func (g *Generator) Write(w io.Writer) (Stats, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return Stats{}, err
	}

	var (
		st     Stats
		events []string
	)
	for i := range g.cfg.Rows {
		row, kind := g.row(i, events)
		switch kind {
		case rowEvent:
			events = append(events, row[2])
			st.Events++
		case rowDuplicate:
			st.Duplicates++
		case rowNoise:
			st.Noise++
		}
		if kind == rowEvent && row[3] == "Yes" {
			st.InPlay++
		}
		if err := cw.Write(row); err != nil {
			return st, err
		}
		st.Rows++
	}
	cw.Flush()
	return st, cw.Error()
}

type rowKind int

const (
	rowEvent rowKind = iota
	rowDuplicate
	rowNoise
)

func (g *Generator) row(i int, events []string) ([]string, rowKind) {
	id := strconv.Itoa(i + 1)
	ts := g.timestamp(windowStartMin, windowEndMin)
	inPlay := g.inPlay()
	trader := g.trader()

	switch r := g.rng.Float64(); {
	case r < g.cfg.Noise:
		if g.rng.Intn(2) == 0 {
			// Outside the window: early morning or late night.
			if g.rng.Intn(2) == 0 {
				ts = g.timestamp(0, windowStartMin-1)
			} else {
				ts = g.timestamp(windowEndMin+1, 24*60-1)
			}
			return []string{id, ts, g.eventID(), inPlay, trader, ""}, rowNoise
		}
		return []string{id, ts, "", inPlay, trader, "missing event"}, rowNoise
	case r < g.cfg.Noise+g.cfg.Duplicates && len(events) > 0:
		return []string{id, ts, events[g.rng.Intn(len(events))], inPlay, trader, "retagged"}, rowDuplicate
	default:
		return []string{id, ts, g.eventID(), inPlay, trader, ""}, rowEvent
	}
}

func (g *Generator) eventID() string {
	u, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.NewString()
	}
	return "EV-" + u.String()
}

// timestamp picks a minute in [from, to] of the configured day.
func (g *Generator) timestamp(from, to int) string {
	m := from + g.rng.Intn(to-from+1)
	d := g.cfg.Day
	t := time.Date(d.Year(), d.Month(), d.Day(), m/60, m%60, 0, 0, time.UTC)
	return t.Format(DateLayout)
}

func (g *Generator) inPlay() string {
	if g.rng.Float64() < g.cfg.InPlay {
		return "Yes"
	}
	return "No"
}

// trader decorates a name the way exports do: shift numbers, notes in
// parentheses and "-" for unassigned events.
func (g *Generator) trader() string {
	switch g.rng.Intn(10) {
	case 0:
		return "-"
	case 1:
		return ""
	}
	name := g.cfg.Traders[g.rng.Intn(len(g.cfg.Traders))]
	switch g.rng.Intn(4) {
	case 0:
		return fmt.Sprintf("%s %d", name, 1+g.rng.Intn(3))
	case 1:
		return name + " (backup)"
	default:
		return name
	}
}
