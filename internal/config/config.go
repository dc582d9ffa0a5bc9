// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/maauso/stillcut/internal/pipeline"
)

// Host modes.
const (
	// HostModeBridge drives a running editor through its scripting bridge.
	HostModeBridge = "bridge"
	// HostModeMemory drives an in-process host model, for dry runs.
	HostModeMemory = "memory"
)

// Static errors for configuration validation.
var (
	// ErrUnknownHostMode is returned when HOST_MODE is neither bridge nor memory.
	ErrUnknownHostMode = errors.New("config: HOST_MODE must be bridge or memory")
	// ErrBridgeURLRequired is returned when HOST_MODE=bridge and HOST_BRIDGE_URL is empty.
	ErrBridgeURLRequired = errors.New("config: HOST_BRIDGE_URL is required in bridge mode")
	// ErrInvalidTimeout is returned when HOST_TIMEOUT_SEC is negative.
	ErrInvalidTimeout = errors.New("config: HOST_TIMEOUT_SEC must not be negative")
)

// Config holds all configuration for the application.
type Config struct {
	// Assembly parameters
	ImagePath    string `env:"IMAGE_PATH" json:"image_path"`
	AudioPath    string `env:"AUDIO_PATH" json:"audio_path"`
	SequenceName string `env:"SEQUENCE_NAME, default=Automated Video" json:"sequence_name"`
	ExportPreset string `env:"EXPORT_PRESET, default=My YouTube video preset" json:"export_preset"`
	OutputPath   string `env:"OUTPUT_PATH, default=~/Downloads/output.mp4" json:"output_path"`

	// Host settings
	HostMode        string `env:"HOST_MODE, default=bridge" json:"host_mode"`
	HostBridgeURL   string `env:"HOST_BRIDGE_URL, default=http://127.0.0.1:17420" json:"host_bridge_url"`
	HostBridgeToken string `env:"HOST_BRIDGE_TOKEN" json:"-"` // Masked in JSON
	HostTimeoutSec  int    `env:"HOST_TIMEOUT_SEC, default=0" json:"host_timeout_sec"`

	// Memory host settings
	MemoryPresets          []string `env:"MEMORY_PRESETS, default=My YouTube video preset" json:"memory_presets"`
	MemoryMediaDurationSec int      `env:"MEMORY_MEDIA_DURATION_SEC, default=60" json:"memory_media_duration_sec"`

	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Storage settings
	TempDir string `env:"TEMP_DIR, default=/tmp/stillcut" json:"temp_dir"`

	// Optional S3 settings
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if s3:// inputs can be staged.
func (c *Config) S3Enabled() bool {
	return c.S3Region != ""
}

// HostTimeout returns the per-call host timeout. Zero means no timeout.
func (c *Config) HostTimeout() time.Duration {
	return time.Duration(c.HostTimeoutSec) * time.Second
}

// MemoryMediaDuration returns the duration the memory host gives imported media.
func (c *Config) MemoryMediaDuration() time.Duration {
	return time.Duration(c.MemoryMediaDurationSec) * time.Second
}

// DefaultEnvFile is read by Load when it exists.
const DefaultEnvFile = ".env"

// Load reads configuration from DefaultEnvFile and the environment.
func Load() (*Config, error) {
	return LoadWithEnvFile(DefaultEnvFile)
}

// LoadWithEnvFile reads configuration from environment variables using
// go-envconfig and validates it. Variables in envFile are added to the
// environment first; variables already set are not overridden. A missing
// envFile is ignored.
func LoadWithEnvFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}

	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the host settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.HostMode) {
	case HostModeBridge:
		if c.HostBridgeURL == "" {
			return ErrBridgeURLRequired
		}
	case HostModeMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHostMode, c.HostMode)
	}
	if c.HostTimeoutSec < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Params returns the assembly parameters. The output path is passed to the
// host encoder as written, so "~" resolves on the machine running the host.
func (c *Config) Params() pipeline.Params {
	return pipeline.Params{
		ImagePath:    c.ImagePath,
		AudioPath:    c.AudioPath,
		SequenceName: c.SequenceName,
		PresetName:   c.ExportPreset,
		OutputPath:   c.OutputPath,
	}
}

// NewLogger creates a structured logger based on the configuration.
// Logs go to stderr so command output on stdout stays clean.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	token := ""
	if c.HostBridgeToken != "" {
		token = "***"
	}
	return fmt.Sprintf(
		"Config{HostMode: %s, HostBridgeURL: %s, HostBridgeToken: %s, HostTimeoutSec: %d, SequenceName: %s, ExportPreset: %s, OutputPath: %s, Port: %d, TempDir: %s, S3Region: %s, S3Endpoint: %s, LogFormat: %s, LogLevel: %s}",
		c.HostMode,
		c.HostBridgeURL,
		token,
		c.HostTimeoutSec,
		c.SequenceName,
		c.ExportPreset,
		c.OutputPath,
		c.Port,
		c.TempDir,
		c.S3Region,
		c.S3Endpoint,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
