package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/okian/traderheat/internal/domain/pivot"
)

// Layout constants, in millimetres unless noted.
const (
	pageMargin     = 6.0
	tickGap        = 1.5
	slotFontPt     = 10.0
	traderFontPt   = 12.0
	titleFontPt    = 12.0
	maxAnnotFontPt = 10.0
	minAnnotFontPt = 4.0
	cellBorder     = 0.18 // 0.5 pt
	rowDivider     = 0.18 // 0.5 pt
	maxLabelShare  = 0.35 // of the page height taken by rotated trader labels
)

// PDF draws g as an annotated heatmap on a single page sized by opts.
func PDF(g pivot.Grid, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	pal, err := opts.Palette()
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: opts.WidthMM, Ht: opts.HeightMM},
	})
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("traderheat", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	top := pageMargin
	if opts.Title != "" {
		pdf.SetFont("Helvetica", "B", titleFontPt)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(pageMargin, top+pdf.PointConvert(titleFontPt), tr(opts.Title))
		top += pdf.PointConvert(titleFontPt) * 2
	}

	pdf.SetFont("Helvetica", "", slotFontPt)
	slotH := pdf.PointConvert(slotFontPt)
	slotW := 0.0
	for _, s := range g.Slots {
		slotW = math.Max(slotW, pdf.GetStringWidth(s))
	}

	pdf.SetFont("Helvetica", "", traderFontPt)
	traderH := pdf.PointConvert(traderFontPt)
	traderW := 0.0
	for _, t := range g.Traders {
		traderW = math.Max(traderW, pdf.GetStringWidth(tr(t)))
	}

	// Rotated labels hang below the grid; 45 degrees splits the width evenly.
	bottom := traderW*math.Sqrt2/2 + traderH + tickGap
	bottom = math.Min(bottom, opts.HeightMM*maxLabelShare)

	x0 := pageMargin + slotW + tickGap
	y0 := top
	gw := opts.WidthMM - x0 - pageMargin
	gh := opts.HeightMM - y0 - pageMargin - bottom
	if gw <= 0 || gh <= 0 {
		return nil, fmt.Errorf("%w: figure %.1fx%.1f mm too small for the labels", ErrRender, opts.WidthMM, opts.HeightMM)
	}

	rows, cols := len(g.Slots), len(g.Traders)
	cellH := gh
	if rows > 0 {
		cellH = gh / float64(rows)
	}
	cellW := 0.0
	if cols > 0 {
		cellW = gw / float64(cols)
	}
	lo, hi := g.Min(), g.Max()

	// Cells.
	annotPt := math.Max(minAnnotFontPt, math.Min(maxAnnotFontPt, math.Min(cellH, cellW)*0.45*72/25.4))
	pdf.SetLineWidth(cellBorder)
	pdf.SetDrawColor(int(white.R), int(white.G), int(white.B))
	for i := range rows {
		for j := range cols {
			v := g.Counts[i][j]
			bg := pal.Color(v, lo, hi)
			x, y := x0+float64(j)*cellW, y0+float64(i)*cellH
			pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
			pdf.Rect(x, y, cellW, cellH, "FD")

			fg := TextOn(bg)
			pdf.SetFont("Helvetica", "B", annotPt)
			pdf.SetTextColor(int(fg.R), int(fg.G), int(fg.B))
			s := strconv.Itoa(v)
			pdf.Text(x+(cellW-pdf.GetStringWidth(s))/2, y+cellH/2+pdf.PointConvert(annotPt)*0.35, s)
		}
	}

	// Row dividers, top and bottom borders included.
	pdf.SetDrawColor(int(gray.R), int(gray.G), int(gray.B))
	pdf.SetLineWidth(rowDivider)
	for i := 0; i <= rows; i++ {
		y := y0 + float64(i)*cellH
		pdf.Line(x0, y, x0+gw, y)
	}

	// Slot labels, right aligned against the grid.
	pdf.SetFont("Helvetica", "", slotFontPt)
	pdf.SetTextColor(0, 0, 0)
	for i, s := range g.Slots {
		y := y0 + (float64(i)+0.5)*cellH + slotH*0.35
		pdf.Text(x0-tickGap-pdf.GetStringWidth(s), y, s)
	}

	// Trader labels, rotated 45 degrees and anchored at their right end.
	pdf.SetFont("Helvetica", "", traderFontPt)
	for j, t := range g.Traders {
		label := tr(t)
		ax := x0 + (float64(j)+0.5)*cellW
		ay := y0 + gh + tickGap + traderH*0.5
		pdf.TransformBegin()
		pdf.TransformRotate(45, ax, ay)
		pdf.Text(ax-pdf.GetStringWidth(label), ay, label)
		pdf.TransformEnd()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: pdf: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}
