// Package config loads passcan's runtime settings.
//
// Precedence (highest to lowest):
//  1. Command-line flags (applied by main, only when set)
//  2. PASSCAN_* environment variables
//  3. Defaults
//
// Ignore rules and the secret pattern set are compiled in and are not
// configurable here.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"passcan/internal/detect"
	"passcan/internal/logging"
)

// EnvPrefix is stripped from environment variable names before mapping.
const EnvPrefix = "PASSCAN_"

// Config holds runtime settings.
type Config struct {
	Workers         int           `koanf:"workers"`
	Mode            string        `koanf:"mode"`
	MaxLineBytes    int           `koanf:"max_line_bytes"`
	MaxContentBytes int64         `koanf:"max_content_bytes"`
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	Debounce        time.Duration `koanf:"debounce"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:         runtime.NumCPU(),
		Mode:            detect.ModeLine.String(),
		MaxLineBytes:    detect.DefaultMaxLineBytes,
		MaxContentBytes: detect.DefaultMaxContentBytes,
		LogLevel:        "warn",
		LogFormat:       "console",
		Debounce:        500 * time.Millisecond,
	}
}

// Load returns the defaults overridden by PASSCAN_* environment variables.
// The result is not validated; callers apply flag overrides first and then
// call Validate.
//
//	PASSCAN_WORKERS=4          -> workers
//	PASSCAN_LOG_LEVEL=debug    -> log_level
//	PASSCAN_DEBOUNCE=1s        -> debounce
func Load() (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return cfg, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings for values the scanner cannot use.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := detect.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.MaxLineBytes < 1 {
		return fmt.Errorf("max_line_bytes must be positive, got %d", c.MaxLineBytes)
	}
	if c.MaxContentBytes < 1 {
		return fmt.Errorf("max_content_bytes must be positive, got %d", c.MaxContentBytes)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	return nil
}

// DetectOptions converts the settings into detector options.
func (c Config) DetectOptions() detect.Options {
	mode, _ := detect.ParseMode(c.Mode)
	return detect.Options{
		Mode:            mode,
		MaxLineBytes:    c.MaxLineBytes,
		MaxContentBytes: c.MaxContentBytes,
	}
}
