package nanolog

import (
	"time"
)

// Log level constants
const (
	LevelTrace int64 = -8
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// Ring buffer sizing
const (
	// Smallest effective ring capacity; configured values below this are
	// rounded up to avoid slot thrashing at tiny sizes
	minCapacity int64 = 64
)

// Timers
const (
	// Default bound for Flush when the caller passes no timeout
	defaultFlushTimeout = 5 * time.Second
	// Consumer re-poll attempts after an empty drain before parking
	idleSpins = 64
)

// Target used on internally generated records (drop reports)
const internalTarget = "nanolog"
