package nanolog

import (
	"sync/atomic"
	"time"
)

// The process-wide default logger is a single explicit slot: installed
// once by the embedding application, torn down by Shutdown before process
// exit. Package-level log functions no-op while the slot is empty.
var defaultLogger atomic.Pointer[Logger]

// Init installs l as the process-wide default logger. It may be called
// once; subsequent calls fail with ErrAlreadyInitialized until Shutdown
// clears the slot.
func Init(l *Logger) error {
	if l == nil {
		return fmtErrorf("cannot install a nil logger")
	}
	if !defaultLogger.CompareAndSwap(nil, l) {
		return ErrAlreadyInitialized
	}
	return nil
}

// Default returns the installed default logger, or nil.
func Default() *Logger {
	return defaultLogger.Load()
}

// Shutdown tears down the default logger and clears the slot.
func Shutdown() error {
	l := defaultLogger.Swap(nil)
	if l == nil {
		return ErrNotInitialized
	}
	return l.Shutdown()
}

// Flush flushes the default logger.
func Flush(timeout time.Duration) error {
	l := defaultLogger.Load()
	if l == nil {
		return ErrNotInitialized
	}
	return l.Flush(timeout)
}

// Log publishes a record through the default logger.
func Log(rec Record) error {
	l := defaultLogger.Load()
	if l == nil {
		return ErrNotInitialized
	}
	return l.Log(rec)
}

// Trace logs a message at trace level through the default logger.
func Trace(args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.emit(LevelTrace, 2, args)
	}
}

// Debug logs a message at debug level through the default logger.
func Debug(args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.emit(LevelDebug, 2, args)
	}
}

// Info logs a message at info level through the default logger.
func Info(args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.emit(LevelInfo, 2, args)
	}
}

// Warn logs a message at warning level through the default logger.
func Warn(args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.emit(LevelWarn, 2, args)
	}
}

// Error logs a message at error level through the default logger.
func Error(args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.emit(LevelError, 2, args)
	}
}

// Logf logs a printf-formatted message through the default logger.
func Logf(level int64, format string, args ...any) {
	if l := defaultLogger.Load(); l != nil {
		l.Logf(level, format, args...)
	}
}

// FlushOnPanic is intended for use with defer in main. On panic it makes a
// best-effort attempt to flush and shut down the default logger before
// re-panicking, so buffered records are not lost with the process. This is
// advisory only: nothing runs on an immediate kill.
func FlushOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if l := defaultLogger.Swap(nil); l != nil {
		_ = l.Flush(time.Second)
		_ = l.Shutdown()
	}
	panic(r)
}
