package nanolog

import (
	"errors"
)

// Sentinel errors for the transport and the global logger slot.
var (
	// ErrClosed is returned by Log and Flush once Shutdown has begun.
	ErrClosed = errors.New("nanolog: logger closed")

	// ErrFlushTimeout is returned when the consumer did not catch up to the
	// published cursor within the flush bound.
	ErrFlushTimeout = errors.New("nanolog: flush timeout")

	// ErrInvalidConfig is the root of all builder/validation failures.
	ErrInvalidConfig = errors.New("nanolog: invalid configuration")

	// ErrNotInitialized is returned by global operations before Init.
	ErrNotInitialized = errors.New("nanolog: default logger not initialized")

	// ErrAlreadyInitialized is returned by Init when a default logger is
	// already installed.
	ErrAlreadyInitialized = errors.New("nanolog: default logger already initialized")
)

// A dropped record is not an error: overload is observable only through the
// dropped counter in Stats. Sink I/O failures are wrapped and surfaced from
// the next Flush or Shutdown call, never from Log.
