// Package site serves the HTML pages of the heatmap: the upload form, the
// report for an uploaded file and the auto-discovered report.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/okian/traderheat/internal/adapters/http/api"
	"github.com/okian/traderheat/internal/adapters/render"
	"github.com/okian/traderheat/internal/adapters/source"
	service "github.com/okian/traderheat/internal/app"
	"github.com/okian/traderheat/internal/domain/pivot"
	"github.com/okian/traderheat/pkg/logger"
	"github.com/okian/traderheat/pkg/metrics"
)

// PageTitle is the heading of every page.
const PageTitle = "Trader Heatmap"

// Error constants
var (
	ErrRender = errors.New("page render failed")
)

//go:embed templates/*.html
var templatesFS embed.FS

var page = template.Must(template.ParseFS(templatesFS, "templates/page.html"))

// Reporter runs the pipeline and colours grids for display.
type Reporter interface {
	api.Reporter
	Shades(vr service.ViewReport) [][]render.Shade
}

// Handler serves the site routes.
type Handler struct {
	deps      Reporter
	discover  source.Source
	maxUpload int64
	limiter   *api.RateLimiter
	logger    logger.Logger
}

// Option customises a Handler.
type Option func(*Handler)

// WithDiscovery switches GET / to render the newest file of src.
func WithDiscovery(src source.Source) Option {
	return func(h *Handler) {
		h.discover = src
	}
}

// WithMaxUploadBytes caps the size of uploaded files.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// WithRateLimiter throttles uploads with a limiter shared with the API.
func WithRateLimiter(l *api.RateLimiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

// NewHandler creates the site handler.
func NewHandler(deps Reporter, opts ...Option) *Handler {
	h := &Handler{
		deps:      deps,
		maxUpload: api.DefaultMaxUploadBytes,
		logger:    logger.Named("site"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the site routes to mux.
func Register(_ context.Context, mux *http.ServeMux, h *Handler) {
	if mux == nil {
		panic("mux is nil")
	}
	root, upload := h.HandleRoot, h.HandleUpload
	if h.limiter != nil {
		upload = h.limiter.Wrap(upload)
		// Only the discovered report runs the pipeline on GET /.
		if h.discover != nil {
			root = h.limiter.Wrap(root)
		}
	}
	mux.HandleFunc("/", api.MetricsMiddleware(root, "root"))
	mux.HandleFunc("/upload", api.MetricsMiddleware(upload, "upload"))
}

type pageData struct {
	Title    string
	ShowForm bool
	Source   string
	Warning  string
	Error    string
	Grids    []gridData
}

type gridData struct {
	Title   string
	Info    string
	Shown   bool
	Traders []string
	Rows    []rowData
}

type rowData struct {
	Slot  string
	Cells []render.Shade
}

// HandleRoot handles GET / requests. In upload mode it shows the form; in
// discovery mode it renders the in-play grid of the newest matching file.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.discover == nil {
		h.write(w, r, http.StatusOK, pageData{Title: PageTitle, ShowForm: true})
		return
	}

	rep, err := h.deps.Generate(r.Context(), h.discover, pivot.InPlay)
	if err != nil {
		status, _ := api.Classify(err)
		data := pageData{Title: PageTitle}
		if errors.Is(err, source.ErrNoFile) {
			data.Warning = "No trader tagging file found. Download the latest export and reload this page."
		} else {
			data.Error = err.Error()
		}
		h.write(w, r, status, data)
		return
	}
	h.write(w, r, http.StatusOK, h.reportPage(rep, false))
}

// HandleUpload handles POST /upload requests and renders both grids.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	src, err := api.UploadSource(w, r, h.maxUpload)
	if err == nil {
		var rep *service.Report
		rep, err = h.deps.Generate(r.Context(), src, pivot.InPlay, pivot.Total)
		if err == nil {
			h.write(w, r, http.StatusOK, h.reportPage(rep, true))
			return
		}
	}
	status, _ := api.Classify(err)
	h.write(w, r, status, pageData{Title: PageTitle, ShowForm: true, Error: err.Error()})
}

func (h *Handler) reportPage(rep *service.Report, form bool) pageData {
	data := pageData{Title: PageTitle, ShowForm: form, Source: rep.Source}
	for _, vr := range rep.Views {
		g := gridData{Title: vr.Title, Info: vr.Message, Shown: vr.Rendered}
		if vr.Rendered {
			g.Traders = vr.Grid.Traders
			shades := h.deps.Shades(vr)
			for i, slot := range vr.Grid.Slots {
				g.Rows = append(g.Rows, rowData{Slot: slot, Cells: shades[i]})
			}
		}
		data.Grids = append(data.Grids, g)
	}
	return data
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		h.logger.Error(r.Context(), "failed to render page", logger.Error(errors.Join(ErrRender, err)))
		metrics.RecordErrorByType("template", "high")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
