package service

import (
	"time"

	"github.com/okian/traderheat/internal/adapters/render"
	"github.com/okian/traderheat/internal/domain/model"
	"github.com/okian/traderheat/internal/domain/pivot"
	"github.com/okian/traderheat/internal/ingest"
)

// ViewReport is the outcome of one view of a report.
type ViewReport struct {
	View    pivot.View `json:"view"`
	Title   string     `json:"title"`
	Records int        `json:"records"`
	Grid    pivot.Grid `json:"grid"`
	// Rendered is false when the view was skipped; Message then says why.
	Rendered bool   `json:"rendered"`
	Message  string `json:"message,omitempty"`
}

// Report is the cleaned table of one input file and its views.
type Report struct {
	Source      string                `json:"source"`
	GeneratedAt time.Time             `json:"generated_at"`
	Window      string                `json:"window"`
	Stats       ingest.Stats          `json:"stats"`
	Views       []ViewReport          `json:"views"`
	Records     []model.CleanedRecord `json:"-"`
}

// View returns the report of v.
func (r *Report) View(v pivot.View) (ViewReport, bool) {
	for _, vr := range r.Views {
		if vr.View == v {
			return vr, true
		}
	}
	return ViewReport{}, false
}

// Sheets lists the rendered views as workbook sheets.
func (r *Report) Sheets() []render.Sheet {
	sheets := make([]render.Sheet, 0, len(r.Views))
	for _, vr := range r.Views {
		if vr.Rendered {
			sheets = append(sheets, render.Sheet{Name: vr.Title, Grid: vr.Grid})
		}
	}
	return sheets
}

// Messages collects the informational messages of every view.
func (r *Report) Messages() []string {
	var out []string
	for _, vr := range r.Views {
		if vr.Message != "" {
			out = append(out, vr.Message)
		}
	}
	return out
}
