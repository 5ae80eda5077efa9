package pivot

import "github.com/okian/traderheat/internal/domain/model"

// View names a subset of the cleaned records.
type View string

// Views rendered for every report.
const (
	InPlay View = "in_play"
	Total  View = "total"
)

// Title is the section header shown above the view's grid.
func (v View) Title() string {
	switch v {
	case InPlay:
		return "Scheduled for In-Play"
	case Total:
		return "Total"
	default:
		return string(v)
	}
}

// ParseView maps a query value to a View.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case InPlay, Total:
		return View(s), true
	default:
		return "", false
	}
}

// Select returns the records that belong to v.
func Select(records []model.CleanedRecord, v View) []model.CleanedRecord {
	if v != InPlay {
		return records
	}
	out := make([]model.CleanedRecord, 0, len(records))
	for _, r := range records {
		if r.InPlay() {
			out = append(out, r)
		}
	}
	return out
}
