package sampledata

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/traderheat/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates one export, saves it and optionally uploads it.
func Run(ctx context.Context, config *Config) (Stats, error) {
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	log := logger.Get()
	log.Info(ctx, "generating trader tagging export",
		logger.Int("rows", config.Rows),
		logger.Int("traders", len(config.Traders)),
		logger.Any("seed", config.Seed),
	)

	var buf bytes.Buffer
	stats, err := NewGenerator(*config).Write(&buf)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}

	out := config.OutputFile
	if out == "" {
		out = "trader_tagging_" + time.Now().Format("20060102_150405") + ".csv"
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return stats, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, buf.Bytes(), filePermission); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Info(ctx, "export written",
		logger.String("file", out),
		logger.Int("events", stats.Events),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("noise", stats.Noise),
		logger.Int("inPlay", stats.InPlay),
	)

	if config.BaseURL == "" {
		return stats, nil
	}
	rep, err := newHTTPClient(config.Timeout).Upload(ctx, config.BaseURL, filepath.Base(out), buf.Bytes())
	if err != nil {
		return stats, err
	}
	log.Info(ctx, "report generated by service",
		logger.String("source", rep.Source),
		logger.Int("rowsRead", rep.Stats.RowsRead),
		logger.Int("cleaned", rep.Stats.Cleaned),
		logger.Int("duplicates", rep.Stats.DroppedDuplicate),
		logger.Any("messages", rep.Messages),
	)
	return stats, nil
}
