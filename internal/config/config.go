// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob. Defaults reproduce the stock deployment.
type Config struct {
	Addr     string `env:"KANATCHA_ADDR" envDefault:":8000"`
	DataDir  string `env:"KANATCHA_DATA_DIR"`
	ImageDir string `env:"KANATCHA_IMAGE_DIR" envDefault:"imgs"`
	DBPath   string `env:"KANATCHA_DB" envDefault:"kanatcha.db"`
	LogLevel string `env:"KANATCHA_LOG_LEVEL" envDefault:"info"`

	// Timeout is the client-visible challenge lifetime. The stored record
	// outlives it by GraceSeconds so the server, not the client clock, is the
	// final authority on expiry.
	Timeout      time.Duration `env:"KANATCHA_TIMEOUT" envDefault:"60s"`
	GraceSeconds int           `env:"KANATCHA_GRACE_SECONDS" envDefault:"3"`
	MaxLevel     int           `env:"KANATCHA_MAX_LEVEL" envDefault:"3"`

	Render Render

	AllowedOrigins []string `env:"KANATCHA_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Render controls glyph layout and rasterization.
type Render struct {
	FontPath    string  `env:"KANATCHA_FONT"`
	FontSize    float64 `env:"KANATCHA_FONT_SIZE" envDefault:"60"`
	ImageWidth  int     `env:"KANATCHA_IMAGE_WIDTH" envDefault:"250"`
	ImageHeight int     `env:"KANATCHA_IMAGE_HEIGHT" envDefault:"80"`
	Skew        float64 `env:"KANATCHA_SKEW" envDefault:"0.4"`
	Spacing     float64 `env:"KANATCHA_SPACING" envDefault:"0.7"`
	TiltMin     float64 `env:"KANATCHA_TILT_MIN" envDefault:"5"`
	TiltMax     float64 `env:"KANATCHA_TILT_MAX" envDefault:"10"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.Render.TiltMax < cfg.Render.TiltMin {
		return Config{}, fmt.Errorf("tilt range inverted: %g > %g", cfg.Render.TiltMin, cfg.Render.TiltMax)
	}
	return cfg, nil
}

// RecordTTL is the server-side time-to-live of a stored challenge.
func (c Config) RecordTTL() time.Duration {
	return c.Timeout + time.Duration(c.GraceSeconds)*time.Second
}
