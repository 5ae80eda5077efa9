package service

import (
	"fmt"

	"github.com/okian/traderheat/internal/adapters/render"
	"github.com/okian/traderheat/internal/config"
	"github.com/okian/traderheat/internal/domain/timeslot"
	"github.com/okian/traderheat/internal/ingest"
)

// RenderOptions maps the figure settings of cfg.
func RenderOptions(cfg *config.Config) render.Options {
	return render.Options{
		ColorScale: cfg.ColorScale,
		WidthMM:    cfg.FigureWidthMM,
		HeightMM:   cfg.FigureHeightMM,
	}
}

// ConfigOptions builds the loader and render options described by cfg.
func ConfigOptions(cfg *config.Config) ([]Option, error) {
	window, err := ingest.ParseWindow(cfg.WindowStart, cfg.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	bins, err := timeslot.New(cfg.SlotStartHour, cfg.SlotEndHour)
	if err != nil {
		return nil, fmt.Errorf("slots: %w", err)
	}
	loader := ingest.New(ingest.WithWindow(window), ingest.WithBins(bins))
	return []Option{
		WithLoader(loader),
		WithRenderOptions(RenderOptions(cfg)),
		WithMode(cfg.Mode),
	}, nil
}
