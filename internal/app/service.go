// Package service runs the report pipeline for the CLI and the HTTP adapters.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/traderheat/internal/adapters/render"
	"github.com/okian/traderheat/internal/adapters/source"
	"github.com/okian/traderheat/internal/domain/pivot"
	"github.com/okian/traderheat/internal/ingest"
	"github.com/okian/traderheat/pkg/logger"
	"github.com/okian/traderheat/pkg/metrics"
)

// Service turns input files into reports. It keeps no state between reports
// apart from counters for GetStats.
type Service struct {
	mu sync.RWMutex

	loader     *ingest.Loader
	renderOpts render.Options
	palette    render.Palette
	mode       string

	// Stats
	reports    int64
	failures   int64
	lastSource string
	lastAt     time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets the loader used to clean input files.
func WithLoader(l *ingest.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithRenderOptions sets the figure parameters.
func WithRenderOptions(o render.Options) Option {
	return func(s *Service) {
		s.renderOpts = o
	}
}

// WithMode sets the mode label reported in metrics and stats.
func WithMode(mode string) Option {
	return func(s *Service) {
		if mode != "" {
			s.mode = mode
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service. It fails when the render options are invalid.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		loader:     ingest.New(),
		renderOpts: render.DefaultOptions(),
		mode:       "upload",
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.renderOpts.Validate(); err != nil {
		return nil, err
	}
	pal, err := s.renderOpts.Palette()
	if err != nil {
		return nil, err
	}
	s.palette = pal
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s, nil
}

// Mode returns the configured mode label.
func (s *Service) Mode() string { return s.mode }

// Palette returns the colour scale used for every rendered view.
func (s *Service) Palette() render.Palette { return s.palette }

// Generate reads one file from src, cleans it and builds the requested views.
// Input errors are fatal: no partial report is returned.
func (s *Service) Generate(ctx context.Context, src source.Source, views ...pivot.View) (*Report, error) {
	if len(views) == 0 {
		return nil, ErrNoViews
	}
	start := time.Now()

	in, err := src.Open(ctx)
	if err != nil {
		s.fail(ctx, sourceKind(err), err)
		return nil, fmt.Errorf("open input: %w", err)
	}
	metrics.RecordUploadBytes(int64(len(in.Data)))

	res, err := s.loader.Load(ctx, in.Reader())
	if err != nil {
		s.fail(ctx, ingest.Kind(err), err, logger.String("file", in.Name))
		return nil, fmt.Errorf("load %s: %w", in.Name, err)
	}
	recordStats(res.Stats)

	rep := &Report{
		Source:      in.Name,
		GeneratedAt: time.Now().UTC(),
		Window:      s.loader.Window().String(),
		Stats:       res.Stats,
		Records:     res.Records,
	}
	bins := s.loader.Bins()
	for _, v := range views {
		selected := pivot.Select(res.Records, v)
		vr := ViewReport{
			View:     v,
			Title:    v.Title(),
			Records:  len(selected),
			Grid:     pivot.Build(selected, bins),
			Rendered: true,
		}
		if sum := vr.Grid.Sum(); sum != vr.Grid.Total {
			s.logger.Error(ctx, "grid cells disagree with placed records",
				logger.String("view", string(v)),
				logger.Int("cells", sum),
				logger.Int("placed", vr.Grid.Total),
			)
		}
		if len(selected) == 0 {
			metrics.RecordViewEmpty(string(v))
			switch v {
			case pivot.InPlay:
				vr.Rendered = false
				vr.Message = fmt.Sprintf("No events scheduled for in-play in %s (window %s).", in.Name, rep.Window)
			default:
				vr.Message = fmt.Sprintf("No events in %s (window %s).", in.Name, rep.Window)
			}
		}
		rep.Views = append(rep.Views, vr)
	}

	elapsed := time.Since(start)
	metrics.RecordPipelineLatency(float64(elapsed.Milliseconds()))
	metrics.RecordReportGenerated(s.mode)

	s.mu.Lock()
	s.reports++
	s.lastSource = in.Name
	s.lastAt = rep.GeneratedAt
	s.mu.Unlock()

	s.logger.Info(ctx, "report generated",
		logger.String("file", in.Name),
		logger.Int("rowsRead", res.Stats.RowsRead),
		logger.Int("cleaned", res.Stats.Cleaned),
		logger.Int("duplicates", res.Stats.DroppedDuplicate),
		logger.Duration("took", elapsed),
	)
	return rep, nil
}

// PDF renders one view of rep.
func (s *Service) PDF(ctx context.Context, rep *Report, v pivot.View) ([]byte, error) {
	vr, ok := rep.View(v)
	if !ok || !vr.Rendered {
		return nil, fmt.Errorf("%w: %s", ErrViewNotRendered, v)
	}
	start := time.Now()
	b, err := render.PDF(vr.Grid, s.renderOpts.WithTitle(vr.Title))
	metrics.RecordRenderLatency("pdf", float64(time.Since(start).Milliseconds()))
	if err != nil {
		s.fail(ctx, "render", err, logger.String("view", string(v)))
		return nil, err
	}
	return b, nil
}

// XLSX renders every rendered view of rep into one workbook.
func (s *Service) XLSX(ctx context.Context, rep *Report) ([]byte, error) {
	start := time.Now()
	b, err := render.XLSX(rep.Sheets(), rep.Records, s.renderOpts)
	metrics.RecordRenderLatency("xlsx", float64(time.Since(start).Milliseconds()))
	if err != nil {
		s.fail(ctx, "render", err)
		return nil, err
	}
	return b, nil
}

// Shades colours the grid of vr for HTML display.
func (s *Service) Shades(vr ViewReport) [][]render.Shade {
	return render.Shades(vr.Grid, s.palette)
}

func (s *Service) fail(ctx context.Context, kind string, err error, fields ...logger.Field) {
	s.mu.Lock()
	s.failures++
	s.mu.Unlock()

	metrics.RecordInputError(kind)
	fields = append(fields, logger.String("kind", kind), logger.Error(err))
	if errors.Is(err, context.Canceled) {
		s.logger.Debug(ctx, "report cancelled", fields...)
		return
	}
	s.logger.Warn(ctx, "report failed", fields...)
}

func sourceKind(err error) string {
	switch {
	case errors.Is(err, source.ErrNoFile):
		return "no_file"
	case errors.Is(err, source.ErrTooLarge):
		return "too_large"
	default:
		return "source"
	}
}

func recordStats(st ingest.Stats) {
	metrics.RecordRowsRead(st.RowsRead)
	metrics.RecordRowsDropped(metrics.DropOutsideWindow, st.DroppedOutsideWindow)
	metrics.RecordRowsDropped(metrics.DropMissingEvent, st.DroppedMissingEvent)
	metrics.RecordRowsDropped(metrics.DropDuplicate, st.DroppedDuplicate)
	metrics.UpdateRecordsCleaned(st.Cleaned)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"mode":             s.mode,
		"colorScale":       s.palette.Name(),
		"window":           s.loader.Window().String(),
		"slots":            s.loader.Bins().Len(),
		"reportsGenerated": s.reports,
		"reportsFailed":    s.failures,
		"goroutines":       runtime.NumGoroutine(),
	}
	if s.lastSource != "" {
		stats["lastSource"] = s.lastSource
		stats["lastGeneratedAt"] = s.lastAt.Format(time.RFC3339)
	}
	return stats
}
