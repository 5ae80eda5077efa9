// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"os"
	"path/filepath"
)

// Supported values for Config.Mode.
const (
	ModeUpload   = "upload"
	ModeDiscover = "discover"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Mode selects how the index page obtains its input: "upload" shows an
	// upload form, "discover" renders the newest file in DownloadsDir.
	Mode string `koanf:"mode"`

	// DownloadsDir and FilePattern drive auto-discovery of the input file.
	DownloadsDir string `koanf:"downloads_dir"`
	FilePattern  string `koanf:"file_pattern"`

	// OutputDir is where the CLI writes rendered artifacts.
	OutputDir string `koanf:"output_dir"`

	// WindowStart and WindowEnd bound the operational window, inclusive, as HH:MM.
	WindowStart string `koanf:"window_start"`
	WindowEnd   string `koanf:"window_end"`

	// SlotStartHour and SlotEndHour bound the hourly bins; the end is exclusive.
	SlotStartHour int `koanf:"slot_start_hour"`
	SlotEndHour   int `koanf:"slot_end_hour"`

	// ColorScale names the sequential palette used for cells.
	ColorScale string `koanf:"color_scale"`

	// FigureWidthMM and FigureHeightMM size the rendered grid page.
	FigureWidthMM  float64 `koanf:"figure_width_mm"`
	FigureHeightMM float64 `koanf:"figure_height_mm"`

	// MaxUploadBytes caps the size of an uploaded CSV.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// UploadRPS and UploadBurst throttle the report endpoints.
	UploadRPS   float64 `koanf:"upload_rps"`
	UploadBurst int     `koanf:"upload_burst"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		Mode:           ModeUpload,
		DownloadsDir:   defaultDownloadsDir(),
		FilePattern:    "trader_tagging*.csv",
		OutputDir:      ".",
		WindowStart:    "07:00",
		WindowEnd:      "22:29",
		SlotStartHour:  7,
		SlotEndHour:    23,
		ColorScale:     "YlOrRd",
		FigureWidthMM:  203.2,
		FigureHeightMM: 203.2,
		MaxUploadBytes: 10 << 20,
		UploadRPS:      5,
		UploadBurst:    10,
	}
}

// defaultDownloadsDir mirrors the desktop convention: USERPROFILE on Windows,
// HOME elsewhere.
func defaultDownloadsDir() string {
	home := os.Getenv("USERPROFILE")
	if home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return "Downloads"
	}
	return filepath.Join(home, "Downloads")
}
