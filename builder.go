package nanolog

import (
	"time"
)

// Builder provides a fluent API for assembling a logger configuration.
// It wraps a Config instance and provides chainable methods for setting
// values; errors accumulate and surface from Build.
type Builder struct {
	cfg       *Config
	formatter Formatter
	sink      Sink
	err       error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger instance with the specified configuration.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewWith(b.cfg, b.formatter, b.sink)
}

// Level sets the log level threshold.
func (b *Builder) Level(level int64) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the log level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := Level(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// Target sets the target recorded by the level convenience methods.
func (b *Builder) Target(target string) *Builder {
	b.cfg.DefaultTarget = target
	return b
}

// Capacity sets the ring buffer capacity. The effective size is the next
// power of two, with a floor of 64.
func (b *Builder) Capacity(capacity int64) *Builder {
	b.cfg.Capacity = capacity
	return b
}

// BatchSize sets the maximum records drained per consumer batch.
func (b *Builder) BatchSize(size int64) *Builder {
	b.cfg.BatchSize = size
	return b
}

// FlushInterval sets the periodic sink flush interval.
func (b *Builder) FlushInterval(interval time.Duration) *Builder {
	b.cfg.FlushIntervalMs = interval.Milliseconds()
	return b
}

// Format sets the output format ("text", "json", or "simple").
func (b *Builder) Format(format string) *Builder {
	b.cfg.Format = format
	return b
}

// TextFormat selects the plain-text formatter. Convenience.
func (b *Builder) TextFormat() *Builder {
	b.cfg.Format = "text"
	return b
}

// JSONFormat selects the JSON formatter. Convenience.
func (b *Builder) JSONFormat() *Builder {
	b.cfg.Format = "json"
	return b
}

// SimpleFormat selects the minimal formatter. Convenience.
func (b *Builder) SimpleFormat() *Builder {
	b.cfg.Format = "simple"
	return b
}

// TimestampNumeric renders text timestamps as raw UnixNano integers.
func (b *Builder) TimestampNumeric() *Builder {
	b.cfg.TimestampStyle = "numeric"
	return b
}

// TimestampISO8601 renders text timestamps as ISO-8601 with a fixed UTC
// offset in seconds east. JSON output keeps numeric timestamps regardless.
func (b *Builder) TimestampISO8601(offsetSeconds int64) *Builder {
	b.cfg.TimestampStyle = "iso8601"
	b.cfg.UTCOffsetSeconds = offsetSeconds
	return b
}

// EnableColor enables ANSI level colors for the text formatter.
func (b *Builder) EnableColor(enable bool) *Builder {
	b.cfg.EnableColor = enable
	return b
}

// IncludeCaller captures file:line at the call site of the level methods.
func (b *Builder) IncludeCaller(enable bool) *Builder {
	b.cfg.IncludeCaller = enable
	return b
}

// Console directs output to stdout.
func (b *Builder) Console() *Builder {
	b.cfg.Output = "stdout"
	return b
}

// ConsoleErr directs output to stderr.
func (b *Builder) ConsoleErr() *Builder {
	b.cfg.Output = "stderr"
	return b
}

// File directs output to a buffered file sink at path.
func (b *Builder) File(path string) *Builder {
	b.cfg.Output = "file"
	b.cfg.FilePath = path
	return b
}

// FileBuffered directs output to a file sink with an explicit byte-buffer
// size.
func (b *Builder) FileBuffered(path string, bufferSize int64) *Builder {
	b.cfg.Output = "file"
	b.cfg.FilePath = path
	b.cfg.FileBufferSize = bufferSize
	return b
}

// Formatter installs a custom formatter, overriding the format selection.
func (b *Builder) Formatter(f Formatter) *Builder {
	b.formatter = f
	return b
}

// Sink installs a custom sink, overriding the output selection.
func (b *Builder) Sink(s Sink) *Builder {
	b.sink = s
	return b
}

// Example usage:
// logger, err := nanolog.NewBuilder().
//
//	LevelString("debug").
//	Capacity(4096).
//	JSONFormat().
//	File("/var/log/app/app.log").
//	Build()
//
// if err == nil {
//
//	 defer logger.Shutdown()
//	 logger.Info("logger initialized")
//
// }
