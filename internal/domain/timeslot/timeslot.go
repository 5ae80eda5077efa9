// Package timeslot bins hours of the day into fixed one-hour slots.
package timeslot

import (
	"errors"
	"fmt"
)

// Default bin range: 7am up to, but not including, 11pm.
const (
	DefaultStartHour = 7
	DefaultEndHour   = 23
)

// ErrInvalidRange is returned for bins outside 0..24 or with start >= end.
var ErrInvalidRange = errors.New("invalid slot range")

// Bins is an ordered set of half-open hourly slots [h, h+1) for h in
// [Start, End).
type Bins struct {
	start  int
	end    int
	labels []string
}

// New builds the bins for [start, end).
func New(start, end int) (Bins, error) {
	if start < 0 || end > 24 || start >= end {
		return Bins{}, fmt.Errorf("%w: %d..%d", ErrInvalidRange, start, end)
	}
	labels := make([]string, 0, end-start)
	for h := start; h < end; h++ {
		labels = append(labels, Label(h))
	}
	return Bins{start: start, end: end, labels: labels}, nil
}

// Default returns the 7..23 bins.
func Default() Bins {
	b, _ := New(DefaultStartHour, DefaultEndHour)
	return b
}

// Labels returns the slot labels in chronological order. The caller must not
// modify the returned slice.
func (b Bins) Labels() []string {
	return b.labels
}

// Len is the number of slots.
func (b Bins) Len() int {
	return len(b.labels)
}

// Start and End expose the configured range.
func (b Bins) Start() int { return b.start }
func (b Bins) End() int   { return b.end }

// Index returns the position of hour in Labels, or -1 when it falls outside.
func (b Bins) Index(hour int) int {
	if hour < b.start || hour >= b.end {
		return -1
	}
	return hour - b.start
}

// Slot returns the label for hour, or "" when it falls outside the bins.
func (b Bins) Slot(hour int) string {
	i := b.Index(hour)
	if i < 0 {
		return ""
	}
	return b.labels[i]
}

// Label formats the slot starting at hour in 12-hour form. The formula keeps
// the "am" suffix on both ends of every morning slot, so hour 11 reads
// "11am-12am".
func Label(hour int) string {
	switch {
	case hour < 12:
		return fmt.Sprintf("%dam-%dam", hour, hour+1)
	case hour == 12:
		return "12pm-1pm"
	default:
		return fmt.Sprintf("%dpm-%dpm", hour-12, hour-11)
	}
}
