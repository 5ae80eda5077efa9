package render

import "errors"

var (
	// ErrRender wraps failures of the PDF and XLSX writers.
	ErrRender = errors.New("render failed")
	// ErrUnknownScale is returned for a colour scale without a palette.
	ErrUnknownScale = errors.New("unknown colour scale")
	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("invalid render options")
)
