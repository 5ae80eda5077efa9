package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/traderheat/internal/adapters/render"
	"github.com/okian/traderheat/internal/adapters/source"
	service "github.com/okian/traderheat/internal/app"
	"github.com/okian/traderheat/internal/ingest"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limited")
	ErrUnknownView = errors.New("unknown view")
)

// KindError tags an error with the operation that failed and a sentinel
// kind. errors.Is matches both the kind and the underlying error.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WrapKind wraps err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// NewKind creates an error carrying only op and kind.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// Classify maps a pipeline error to an HTTP status and an error code.
func Classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrUnknownView):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, source.ErrTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, source.ErrNoFile):
		return http.StatusNotFound, "no_file"
	case errors.Is(err, service.ErrViewNotRendered):
		return http.StatusNotFound, "view_not_rendered"
	case errors.Is(err, ingest.ErrParseDate),
		errors.Is(err, ingest.ErrMissingColumn),
		errors.Is(err, ingest.ErrMalformedCSV),
		errors.Is(err, ingest.ErrInvalidWindow):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, render.ErrRender):
		return http.StatusInternalServerError, "render_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
