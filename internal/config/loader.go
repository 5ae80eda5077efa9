package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "HEATMAP_"
	envConfigFile = "HEATMAP_CONFIG"
	clockLayout   = "15:04"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if HEATMAP_CONFIG is set
//  3. env (prefix HEATMAP_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// HEATMAP_SLOT_START_HOUR -> slot_start_hour (flat keys, underscores kept
	// to match the koanf tags on the struct).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and formats.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return invalid("addr must not be empty")
	}
	switch c.Mode {
	case ModeUpload, ModeDiscover:
	default:
		return invalid("mode must be %q or %q, got %q", ModeUpload, ModeDiscover, c.Mode)
	}
	if c.FilePattern == "" {
		return invalid("file_pattern must not be empty")
	}

	start, err := time.Parse(clockLayout, c.WindowStart)
	if err != nil {
		return invalid("window_start %q is not HH:MM", c.WindowStart)
	}
	end, err := time.Parse(clockLayout, c.WindowEnd)
	if err != nil {
		return invalid("window_end %q is not HH:MM", c.WindowEnd)
	}
	if end.Before(start) {
		return invalid("window_end %s is before window_start %s", c.WindowEnd, c.WindowStart)
	}

	if c.SlotStartHour < 0 || c.SlotEndHour > 24 || c.SlotStartHour >= c.SlotEndHour {
		return invalid("slot hours must satisfy 0 <= start < end <= 24, got %d..%d", c.SlotStartHour, c.SlotEndHour)
	}
	if c.FigureWidthMM <= 0 || c.FigureHeightMM <= 0 {
		return invalid("figure size must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return invalid("max_upload_bytes must be positive")
	}
	if c.UploadRPS <= 0 || c.UploadBurst <= 0 {
		return invalid("upload_rps and upload_burst must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
