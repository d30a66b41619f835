package nanolog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies defaults are sane and copies are independent
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.validate())

	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, int64(1024), cfg.Capacity)
	assert.Equal(t, int64(64), cfg.BatchSize)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)

	cfg.Level = LevelError
	assert.Equal(t, LevelInfo, DefaultConfig().Level, "mutating a copy must not touch the defaults")
}

// TestConfigClone verifies Clone detaches the copy
func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Capacity = 4096

	assert.Equal(t, int64(1024), cfg.Capacity)
	assert.Equal(t, int64(4096), clone.Capacity)
}

// TestConfigValidate covers the rejection paths
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }},
		{"negative capacity", func(c *Config) { c.Capacity = -5 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero flush interval", func(c *Config) { c.FlushIntervalMs = 0 }},
		{"unknown format", func(c *Config) { c.Format = "xml" }},
		{"unknown timestamp style", func(c *Config) { c.TimestampStyle = "rfc822" }},
		{"offset out of range", func(c *Config) { c.UTCOffsetSeconds = 19 * 3600 }},
		{"unknown output", func(c *Config) { c.Output = "syslog" }},
		{"file output without path", func(c *Config) { c.Output = "file"; c.FilePath = "  " }},
		{"negative file buffer", func(c *Config) { c.FileBufferSize = -1 }},
		{"empty default target", func(c *Config) { c.DefaultTarget = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

// TestFlushInterval verifies millisecond conversion
func TestFlushInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FlushIntervalMs = 250
	assert.Equal(t, 250*time.Millisecond, cfg.flushInterval())
}

// TestNewFormatterSelection verifies format strings map to formatter types
func TestNewFormatterSelection(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Format = "text"
	assert.IsType(t, &TextFormatter{}, cfg.newFormatter())

	cfg.Format = "json"
	assert.IsType(t, &JSONFormatter{}, cfg.newFormatter())

	cfg.Format = "simple"
	assert.IsType(t, &SimpleFormatter{}, cfg.newFormatter())
}

// TestNewConfigFromFile verifies TOML loading with defaults for missing keys
func TestNewConfigFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "log.toml")

	content := `
[log]
level = -4
capacity = 4096
format = "json"
output = "file"
file_path = "` + filepath.Join(tmpDir, "app.log") + `"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, LevelDebug, cfg.Level)
	assert.Equal(t, int64(4096), cfg.Capacity)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "file", cfg.Output)

	// Keys absent from the file keep their defaults
	assert.Equal(t, int64(64), cfg.BatchSize)
	assert.Equal(t, int64(100), cfg.FlushIntervalMs)
}

// TestNewConfigFromFileMissing verifies a missing file yields the defaults
func TestNewConfigFromFileMissing(t *testing.T) {
	cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

// TestNewConfigFromFileInvalidValues verifies file contents still pass
// through validation
func TestNewConfigFromFileInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.toml")
	content := `
[log]
format = "xml"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := NewConfigFromFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
