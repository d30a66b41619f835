package nanolog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"
)

// Config is an immutable snapshot of all logger settings, assembled by the
// builder (or loaded from a file) and consumed once at construction. It is
// never mutated after the logger is built.
type Config struct {
	// Basic settings
	Level         int64  `toml:"level"`
	DefaultTarget string `toml:"default_target"` // Target used by the level convenience methods

	// Transport
	Capacity        int64 `toml:"capacity"`          // Configured ring size, rounded to a power of two (min 64)
	BatchSize       int64 `toml:"batch_size"`        // Max records drained per consumer batch
	FlushIntervalMs int64 `toml:"flush_interval_ms"` // Periodic sink flush interval

	// Formatting
	Format           string `toml:"format"`             // "text", "json", or "simple"
	TimestampStyle   string `toml:"timestamp_style"`    // "numeric" or "iso8601" (text format only)
	UTCOffsetSeconds int64  `toml:"utc_offset_seconds"` // Fixed offset for iso8601 rendering
	EnableColor      bool   `toml:"enable_color"`       // ANSI level colors (text format only)
	IncludeCaller    bool   `toml:"include_caller"`     // Capture file:line at the call site

	// Output
	Output         string `toml:"output"`           // "stdout", "stderr", or "file"
	FilePath       string `toml:"file_path"`        // Log file path when output is "file"
	FileBufferSize int64  `toml:"file_buffer_size"` // Byte buffer before an OS-level write (0=default)
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:         LevelInfo,
	DefaultTarget: "app",

	Capacity:        1024,
	BatchSize:       64,
	FlushIntervalMs: 100,

	Format:           "text",
	TimestampStyle:   "numeric",
	UTCOffsetSeconds: 0,
	EnableColor:      false,
	IncludeCaller:    false,

	Output:         "stdout",
	FilePath:       "",
	FileBufferSize: 0,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a
// validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		key := prefix + tomlTag

		val, found := loader.Get(key)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Capacity <= 0 {
		return configErrorf("capacity must be positive: %d", c.Capacity)
	}

	if c.BatchSize <= 0 {
		return configErrorf("batch_size must be positive: %d", c.BatchSize)
	}

	if c.FlushIntervalMs <= 0 {
		return configErrorf("flush_interval_ms must be positive: %d", c.FlushIntervalMs)
	}

	if c.Format != "text" && c.Format != "json" && c.Format != "simple" {
		return configErrorf("invalid format: '%s' (use text, json, or simple)", c.Format)
	}

	if c.TimestampStyle != "numeric" && c.TimestampStyle != "iso8601" {
		return configErrorf("invalid timestamp_style: '%s' (use numeric or iso8601)", c.TimestampStyle)
	}

	// ISO-8601 permits offsets up to +/-18:00
	if c.UTCOffsetSeconds < -18*3600 || c.UTCOffsetSeconds > 18*3600 {
		return configErrorf("utc_offset_seconds out of range: %d", c.UTCOffsetSeconds)
	}

	if c.Output != "stdout" && c.Output != "stderr" && c.Output != "file" {
		return configErrorf("invalid output: '%s' (use stdout, stderr, or file)", c.Output)
	}

	if c.Output == "file" && strings.TrimSpace(c.FilePath) == "" {
		return configErrorf("file_path is required when output is 'file'")
	}

	if c.FileBufferSize < 0 {
		return configErrorf("file_buffer_size cannot be negative: %d", c.FileBufferSize)
	}

	if strings.TrimSpace(c.DefaultTarget) == "" {
		return configErrorf("default_target cannot be empty")
	}

	return nil
}

// flushInterval converts the configured interval to a duration.
func (c *Config) flushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

// newFormatter builds the formatter selected by the configuration.
func (c *Config) newFormatter() Formatter {
	switch c.Format {
	case "json":
		return NewJSONFormatter()
	case "simple":
		return NewSimpleFormatter()
	default:
		var f *TextFormatter
		if c.TimestampStyle == "iso8601" {
			f = NewTextFormatterISO8601(int(c.UTCOffsetSeconds))
		} else {
			f = NewTextFormatter()
		}
		return f.WithColor(c.EnableColor)
	}
}

// newSink builds the sink selected by the configuration.
func (c *Config) newSink() (Sink, error) {
	switch c.Output {
	case "stderr":
		return NewConsoleErrSink(), nil
	case "file":
		return NewFileSinkBuffered(c.FilePath, int(c.FileBufferSize))
	default:
		return NewConsoleSink(), nil
	}
}
