package render

import "fmt"

// Figure defaults: 8x8 inches.
const (
	DefaultWidthMM  = 203.2
	DefaultHeightMM = 203.2
)

// Options holds every rendering parameter. Renderers keep no other state.
type Options struct {
	ColorScale string
	WidthMM    float64
	HeightMM   float64
	// Title is drawn above the PDF grid when set.
	Title string
}

// DefaultOptions returns the standard figure.
func DefaultOptions() Options {
	return Options{
		ColorScale: DefaultScale,
		WidthMM:    DefaultWidthMM,
		HeightMM:   DefaultHeightMM,
	}
}

// WithTitle returns a copy of o with the title set.
func (o Options) WithTitle(title string) Options {
	o.Title = title
	return o
}

// Validate checks the figure size and resolves the colour scale.
func (o Options) Validate() error {
	if o.WidthMM <= 0 || o.HeightMM <= 0 {
		return fmt.Errorf("%w: figure size %.1fx%.1f mm", ErrInvalidOptions, o.WidthMM, o.HeightMM)
	}
	if _, err := LookupPalette(o.ColorScale); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// Palette resolves the configured colour scale.
func (o Options) Palette() (Palette, error) {
	return LookupPalette(o.ColorScale)
}
