package ingest

import (
	"errors"
	"fmt"
)

// Sentinel kinds for fatal input errors. Any of them rejects the whole file.
var (
	ErrMalformedCSV  = errors.New("malformed csv")
	ErrMissingColumn = errors.New("missing required column")
	ErrParseDate     = errors.New("unparseable date")
	ErrInvalidWindow = errors.New("invalid time window")
)

// LineError ties a fatal error to a line of the input file.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Kind returns a short label for err, suitable for metrics.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrParseDate):
		return "parse_date"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrMalformedCSV):
		return "malformed_csv"
	default:
		return "other"
	}
}
