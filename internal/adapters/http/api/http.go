// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/traderheat/internal/adapters/source"
	service "github.com/okian/traderheat/internal/app"
	"github.com/okian/traderheat/internal/domain/pivot"
)

// Reporter runs the report pipeline. *service.Service implements it.
type Reporter interface {
	Generate(ctx context.Context, src source.Source, views ...pivot.View) (*service.Report, error)
	PDF(ctx context.Context, rep *service.Report, v pivot.View) ([]byte, error)
	XLSX(ctx context.Context, rep *service.Report) ([]byte, error)
}

// DefaultMaxUploadBytes caps request bodies when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// multipartOverhead is the slack allowed for form boundaries and headers.
const multipartOverhead = 64 << 10

// Server wires HTTP routes for the report API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	reportHandler *ReportHandler
	limiter       *RateLimiter
}

// Option customises a Server.
type Option func(*options)

type options struct {
	maxUpload int64
	rps       float64
	burst     int
}

// WithMaxUploadBytes caps the size of an uploaded file.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUpload = n
		}
	}
}

// WithRateLimit throttles report endpoints per client address.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps > 0 && burst > 0 {
			o.rps, o.burst = rps, burst
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Reporter, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{maxUpload: DefaultMaxUploadBytes, rps: 5, burst: 10}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		reportHandler: NewReportHandler(deps, o.maxUpload),
		limiter:       NewRateLimiter(o.rps, o.burst),
	}
}

// Limiter exposes the report rate limiter so other adapters can share it.
func (s *Server) Limiter() *RateLimiter { return s.limiter }

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/report", MetricsMiddleware(s.limiter.Wrap(s.reportHandler.HandleReport), "report"))
	mux.HandleFunc("/api/v1/report.pdf", MetricsMiddleware(s.limiter.Wrap(s.reportHandler.HandlePDF), "report_pdf"))
	mux.HandleFunc("/api/v1/report.xlsx", MetricsMiddleware(s.limiter.Wrap(s.reportHandler.HandleXLSX), "report_xlsx"))
}

// UploadSource turns a request into an input source. Multipart requests
// must carry the CSV in the "file" field; any other body is taken as CSV.
func UploadSource(w http.ResponseWriter, r *http.Request, maxBytes int64) (source.Source, error) {
	const op = "api.upload"
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return source.NewStream("upload.csv", r.Body, maxBytes), nil
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, WrapKind(op, source.ErrTooLarge, err)
		}
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, WrapKind(op, ErrBadRequest, errors.New("missing form file \"file\""))
	}
	if header.Size > maxBytes {
		_ = file.Close()
		return nil, NewKind(op, source.ErrTooLarge)
	}
	return &formFile{Stream: source.NewStream(header.Filename, file, maxBytes), close: file.Close}, nil
}

// formFile closes the multipart part once it has been read.
type formFile struct {
	*source.Stream
	close func() error
}

func (f *formFile) Open(ctx context.Context) (source.Input, error) {
	defer func() { _ = f.close() }()
	return f.Stream.Open(ctx)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// WriteError classifies err and writes it as a JSON error response.
func WriteError(w http.ResponseWriter, err error) {
	status, code := Classify(err)
	writeError(w, status, code, err)
}
