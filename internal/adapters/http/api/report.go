package api

import (
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/traderheat/internal/app"
	"github.com/okian/traderheat/internal/domain/pivot"
)

// Content types of the rendered artifacts.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHandler serves the report endpoints.
type ReportHandler struct {
	deps      Reporter
	maxUpload int64
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Reporter, maxUpload int64) *ReportHandler {
	return &ReportHandler{deps: deps, maxUpload: maxUpload}
}

type reportResponse struct {
	*service.Report
	Messages []string `json:"messages"`
}

// HandleReport handles POST /api/v1/report requests.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	rep, ok := h.generate(w, r, pivot.InPlay, pivot.Total)
	if !ok {
		return
	}
	msgs := rep.Messages()
	if msgs == nil {
		msgs = []string{}
	}
	writeJSON(w, http.StatusOK, reportResponse{Report: rep, Messages: msgs})
}

// HandlePDF handles POST /api/v1/report.pdf?view=in_play|total requests.
func (h *ReportHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	const op = "api.report_pdf"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	v := pivot.InPlay
	if q := r.URL.Query().Get("view"); q != "" {
		parsed, ok := pivot.ParseView(q)
		if !ok {
			WriteError(w, WrapKind(op, ErrUnknownView, fmt.Errorf("view %q", q)))
			return
		}
		v = parsed
	}

	rep, ok := h.generate(w, r, v)
	if !ok {
		return
	}
	b, err := h.deps.PDF(r.Context(), rep, v)
	if err != nil {
		WriteError(w, fmt.Errorf("%s: %w", op, err))
		return
	}
	writeFile(w, ContentTypePDF, "heatmap_"+string(v)+".pdf", b)
}

// HandleXLSX handles POST /api/v1/report.xlsx requests.
func (h *ReportHandler) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	rep, ok := h.generate(w, r, pivot.InPlay, pivot.Total)
	if !ok {
		return
	}
	b, err := h.deps.XLSX(r.Context(), rep)
	if err != nil {
		WriteError(w, fmt.Errorf("api.report_xlsx: %w", err))
		return
	}
	writeFile(w, ContentTypeXLSX, "heatmap.xlsx", b)
}

// generate runs the pipeline on the request body and writes any error.
func (h *ReportHandler) generate(w http.ResponseWriter, r *http.Request, views ...pivot.View) (*service.Report, bool) {
	src, err := UploadSource(w, r, h.maxUpload)
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	rep, err := h.deps.Generate(r.Context(), src, views...)
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return rep, true
}

func writeFile(w http.ResponseWriter, contentType, name string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
