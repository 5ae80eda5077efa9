package render

import "github.com/okian/traderheat/internal/domain/pivot"

// Shade is a grid cell with its display colours.
type Shade struct {
	Value      int    `json:"value"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

// Shades colours every cell of g with pal, indexed like g.Counts.
func Shades(g pivot.Grid, pal Palette) [][]Shade {
	lo, hi := g.Min(), g.Max()
	out := make([][]Shade, len(g.Counts))
	for i, row := range g.Counts {
		out[i] = make([]Shade, len(row))
		for j, v := range row {
			bg := pal.Color(v, lo, hi)
			out[i][j] = Shade{Value: v, Background: bg.Hex(), Foreground: TextOn(bg).Hex()}
		}
	}
	return out
}
