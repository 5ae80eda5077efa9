package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/traderheat/internal/sampledata"
	"github.com/okian/traderheat/pkg/logger"
)

// Default configuration constants.
const (
	defaultRows       = 400
	defaultInPlay     = 0.6
	defaultDuplicates = 0.1
	defaultNoise      = 0.1
	defaultTimeout    = 30 * time.Second
	runTimeout        = 5 * time.Minute
)

func main() {
	var (
		rows       = flag.Int("rows", defaultRows, "Number of data rows")
		day        = flag.String("day", "", "Day of the events, YYYY-MM-DD (default today)")
		traders    = flag.String("traders", "", "Comma separated trader names")
		inPlay     = flag.Float64("in-play", defaultInPlay, "Share of events scheduled for in-play")
		duplicates = flag.Float64("duplicates", defaultDuplicates, "Share of rows repeating an earlier event")
		noise      = flag.Float64("noise", defaultNoise, "Share of rows outside the window or without an event")
		seed       = flag.Int64("seed", 0, "Seed for reproducible output")
		output     = flag.String("output", "", "Output file (default: trader_tagging_TIMESTAMP.csv)")
		baseURL    = flag.String("url", "", "Base URL of the heatmap server")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampledata.ShowHelp()
		return
	}

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := &sampledata.Config{
		Rows:       *rows,
		InPlay:     *inPlay,
		Duplicates: *duplicates,
		Noise:      *noise,
		Seed:       *seed,
		OutputFile: *output,
		BaseURL:    strings.TrimRight(*baseURL, "/"),
		Timeout:    *timeout,
	}
	if *day != "" {
		d, err := time.Parse(time.DateOnly, *day)
		if err != nil {
			logger.Get().Fatal(ctx, "invalid -day", logger.String("day", *day), logger.Error(err))
		}
		cfg.Day = d
	}
	if *traders != "" {
		for _, t := range strings.Split(*traders, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Traders = append(cfg.Traders, t)
			}
		}
	}

	if _, err := sampledata.Run(ctx, cfg); err != nil {
		logger.Get().Fatal(ctx, "generation failed", logger.Error(err))
	}
}
