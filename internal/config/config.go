// ABOUTME: Configuration loading and defaults for errsift
// ABOUTME: Handles YAML config files with XDG-aware default paths

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
)

// Config holds the complete configuration for errsift.
type Config struct {
	// Data directory for the BadgerDB record archive.
	DataDir string `yaml:"data_dir"`

	// NATS configuration.
	NATS NATSConfig `yaml:"nats"`

	// HTTP server configuration.
	HTTP HTTPConfig `yaml:"http"`

	// Redis shared dedup store configuration.
	Redis RedisConfig `yaml:"redis"`

	// Dedup cache configuration.
	Dedup DedupConfig `yaml:"dedup"`

	// Archive configuration.
	Archive ArchiveConfig `yaml:"archive"`

	// Sanitization policy overrides.
	Sanitize SanitizeConfig `yaml:"sanitize"`

	// Expectations maps negative-test contexts to the HTTP statuses
	// they expect; matching errors are acknowledged, not emitted.
	Expectations map[string][]int `yaml:"expectations,omitempty"`

	// Logging configuration.
	Log LogConfig `yaml:"log"`

	// Tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Queue   string `yaml:"queue"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// RedisConfig holds shared dedup store settings.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// DedupConfig holds local dedup cache settings.
type DedupConfig struct {
	// MaxEntries bounds the local fingerprint cache.
	MaxEntries int `yaml:"max_entries"`
}

// ArchiveConfig holds record archive settings.
type ArchiveConfig struct {
	// Enabled controls whether records are persisted.
	Enabled bool `yaml:"enabled"`

	// TTL expires archived records. Zero keeps them forever.
	TTL time.Duration `yaml:"ttl"`
}

// SanitizeConfig holds partial sanitization policy overrides.
// Unset fields keep the built-in defaults.
type SanitizeConfig struct {
	SensitiveKeys   []string `yaml:"sensitive_keys,omitempty"`
	MaskValue       *string  `yaml:"mask_value,omitempty"`
	SkipProperties  []string `yaml:"skip_properties,omitempty"`
	TruncateURLs    *bool    `yaml:"truncate_urls,omitempty"`
	MaxStringLength *int     `yaml:"max_string_length,omitempty"`
}

// Overrides converts the config section into sanitizer overrides.
func (c SanitizeConfig) Overrides() sanitize.Overrides {
	return sanitize.Overrides{
		SensitiveKeys:   c.SensitiveKeys,
		MaskValue:       c.MaskValue,
		SkipProperties:  c.SkipProperties,
		TruncateURLs:    c.TruncateURLs,
		MaxStringLength: c.MaxStringLength,
	}
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig holds tracing settings.
type TracingConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Endpoint      string  `yaml:"endpoint"`
	Insecure      bool    `yaml:"insecure"`
	SamplingRatio float64 `yaml:"sampling_ratio"`
}

// DefaultConfig returns a Config with default values.
// All external dependencies (NATS, Redis, tracing) are disabled by
// default for standalone single-binary operation.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		NATS: NATSConfig{
			// Disabled by default; set URL to enable
			URL:     "",
			Subject: "errsift.reports",
			Queue:   "errsift-workers",
		},
		HTTP: HTTPConfig{
			// Disabled by default; set Addr to enable (e.g., ":8080")
			Addr: "",
		},
		Redis: RedisConfig{
			// Disabled by default; set Addr to enable
			Addr:   "",
			Prefix: "errsift:",
			TTL:    time.Hour,
		},
		Dedup: DedupConfig{
			MaxEntries: 1000,
		},
		Archive: ArchiveConfig{
			// Disabled by default; the log sink is the only emission path
			Enabled: false,
			TTL:     0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text", // Human-readable by default
		},
		Tracing: TracingConfig{
			Enabled:       false, // Disabled by default
			Endpoint:      "localhost:4317",
			Insecure:      true,
			SamplingRatio: 1.0,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays endpoint settings from the environment. Env vars win
// over both defaults and the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("ERRSIFT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("ERRSIFT_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("ERRSIFT_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("ERRSIFT_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("ERRSIFT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	// Try XDG_DATA_HOME first.
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "errsift")
	}

	// Fall back to home directory.
	home, err := os.UserHomeDir()
	if err != nil {
		return "/var/lib/errsift"
	}

	return filepath.Join(home, ".local", "share", "errsift")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	// Try XDG_CONFIG_HOME first.
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "errsift", "config.yaml")
	}

	// Fall back to home directory.
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/errsift/config.yaml"
	}

	return filepath.Join(home, ".config", "errsift", "config.yaml")
}
