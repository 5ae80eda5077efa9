// Package dedupe keeps one record per logical event.
package dedupe

import (
	"cmp"
	"slices"

	"github.com/okian/traderheat/internal/domain/model"
)

// Deduper records seen event IDs so that only the first occurrence of each
// survives.
type Deduper struct {
	seen map[string]struct{}
}

// New creates an empty Deduper sized for n events.
func New(n int) *Deduper {
	return &Deduper{seen: make(map[string]struct{}, n)}
}

// SeenAndRecord checks if id was seen and records it if not.
// Returns true if id was already seen, false if it was newly recorded.
func (d *Deduper) SeenAndRecord(id string) bool {
	if _, exists := d.seen[id]; exists {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

// Size returns the number of distinct IDs recorded.
func (d *Deduper) Size() int {
	return len(d.seen)
}

// KeepPreferred returns one record per Event together with the number of
// records dropped. Records are stable-sorted by ScheduledForInPlay in
// descending byte order and the first record of each Event is kept, so "Yes"
// wins over "No" only because it sorts higher. Ties keep input order. The
// input slice is not modified.
func KeepPreferred(records []model.CleanedRecord) ([]model.CleanedRecord, int) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.CleanedRecord) int {
		return cmp.Compare(b.ScheduledForInPlay, a.ScheduledForInPlay)
	})

	d := New(len(sorted))
	kept := sorted[:0]
	for _, r := range sorted {
		if d.SeenAndRecord(r.Event) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(records) - d.Size()
}
