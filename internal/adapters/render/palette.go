package render

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// RGB is an 8-bit colour.
type RGB struct {
	R, G, B uint8
}

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Luminance is the relative luminance of the colour in [0, 1].
func (c RGB) Luminance() float64 {
	lin := func(v uint8) float64 {
		s := float64(v) / 255
		if s <= 0.03928 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

var (
	black = RGB{0, 0, 0}
	white = RGB{255, 255, 255}
	gray  = RGB{128, 128, 128}
)

// TextOn returns the annotation colour readable on background c.
func TextOn(c RGB) RGB {
	if c.Luminance() > 0.408 {
		return black
	}
	return white
}

// ColorBrewer sequential 9-class schemes.
var schemes = map[string][]string{
	"YlOrRd":  {"ffffcc", "ffeda0", "fed976", "feb24c", "fd8d3c", "fc4e2a", "e31a1c", "bd0026", "800026"},
	"OrRd":    {"fff7ec", "fee8c8", "fdd49e", "fdbb84", "fc8d59", "ef6548", "d7301f", "b30000", "7f0000"},
	"Reds":    {"fff5f0", "fee0d2", "fcbba1", "fc9272", "fb6a4a", "ef3b2c", "cb181d", "a50f15", "67000d"},
	"Blues":   {"f7fbff", "deebf7", "c6dbef", "9ecae1", "6baed6", "4292c6", "2171b5", "08519c", "08306b"},
	"Greens":  {"f7fcf5", "e5f5e0", "c7e9c0", "a1d99b", "74c476", "41ab5d", "238b45", "006d2c", "00441b"},
	"Purples": {"fcfbfd", "efedf5", "dadaeb", "bcbddc", "9e9ac8", "807dba", "6a51a3", "54278f", "3f007d"},
}

// DefaultScale is the colour scale used when none is configured.
const DefaultScale = "YlOrRd"

// Scales lists the supported colour scale names in alphabetical order.
func Scales() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Palette maps counts onto a sequential colour scale.
type Palette struct {
	name  string
	stops []RGB
}

// LookupPalette returns the palette registered under name.
func LookupPalette(name string) (Palette, error) {
	hexes, ok := schemes[name]
	if !ok {
		return Palette{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownScale, name, Scales())
	}
	stops := make([]RGB, len(hexes))
	for i, h := range hexes {
		v, err := strconv.ParseUint(h, 16, 32)
		if err != nil {
			return Palette{}, fmt.Errorf("palette %s: %w", name, err)
		}
		stops[i] = RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
	}
	return Palette{name: name, stops: stops}, nil
}

// Name returns the scale name.
func (p Palette) Name() string { return p.name }

// At interpolates the scale at t, clamped to [0, 1].
func (p Palette) At(t float64) RGB {
	if len(p.stops) == 0 {
		return white
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(p.stops)-1)
	i := int(pos)
	if i >= len(p.stops)-1 {
		return p.stops[len(p.stops)-1]
	}
	f := pos - float64(i)
	a, b := p.stops[i], p.stops[i+1]
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + f*(float64(y)-float64(x))))
	}
	return RGB{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}

// Color shades v on the [lo, hi] range. A flat range maps to the lowest stop.
func (p Palette) Color(v, lo, hi int) RGB {
	if hi <= lo {
		return p.At(0)
	}
	return p.At(float64(v-lo) / float64(hi-lo))
}
