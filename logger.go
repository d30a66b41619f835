// Package nanolog is an embeddable, low-latency asynchronous logging core.
// The calling thread's cost to emit a record is bounded: one atomic claim
// plus a copy into a pre-allocated ring-buffer slot. Formatting and I/O
// happen on a dedicated consumer goroutine that drains the ring in
// batches. When the ring is full, records are dropped and counted rather
// than blocking the caller.
package nanolog

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Logger owns the ring buffer, the consumer goroutine, and the
// published/written/dropped counters. It is the only object callers
// interact with; all methods are safe for concurrent use.
type Logger struct {
	cfg       *Config
	ring      *ringBuffer
	formatter Formatter
	sink      Sink

	wake     chan struct{}
	flushReq chan flushRequest
	stop     chan struct{}
	done     chan struct{}

	closed       atomic.Bool
	pendingDrops atomic.Uint64
	sinkErr      atomic.Pointer[errBox]
	flushMu      sync.Mutex

	// Set by the consumer before done closes; read after <-done.
	finalErr error

	// Consumer-owned scratch space, pre-allocated per batch slot.
	entries []BatchEntry
	scratch [][]byte
}

// errBox wraps an error for atomic storage.
type errBox struct {
	err error
}

// flushRequest asks the consumer to catch up to a target sequence and
// flush the sink, confirming on the channel.
type flushRequest struct {
	target  int64
	confirm chan error
}

// New creates a logger from a validated configuration, with the formatter
// and sink derived from it, and starts the consumer goroutine.
func New(cfg *Config) (*Logger, error) {
	return NewWith(cfg, nil, nil)
}

// NewWith creates a logger with explicit formatter and/or sink overrides;
// nil values are derived from the configuration.
func NewWith(cfg *Config, formatter Formatter, sink Sink) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	if formatter == nil {
		formatter = cfg.newFormatter()
	}
	if sink == nil {
		var err error
		if sink, err = cfg.newSink(); err != nil {
			return nil, err
		}
	}

	l := &Logger{
		cfg:       cfg,
		ring:      newRingBuffer(cfg.Capacity),
		formatter: formatter,
		sink:      sink,
		wake:      make(chan struct{}, 1),
		flushReq:  make(chan flushRequest, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		entries:   make([]BatchEntry, 0, cfg.BatchSize),
		scratch:   make([][]byte, cfg.BatchSize),
	}
	for i := range l.scratch {
		l.scratch[i] = make([]byte, 0, 256)
	}

	go l.processRecords()

	return l, nil
}

// Log publishes a record. Below-threshold records are skipped (neither
// published nor counted as dropped). When the ring is full the record is
// dropped and counted; a drop is not an error. Log never blocks on the
// consumer or on I/O.
func (l *Logger) Log(rec Record) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if rec.Level < l.cfg.Level {
		return nil
	}
	if l.publishRecord(rec) {
		l.reportDrops()
	}
	return nil
}

// publishRecord claims a slot, publishes rec and wakes the consumer.
// Returns false when the ring was full, after counting the drop.
func (l *Logger) publishRecord(rec Record) bool {
	seq, ok := l.ring.tryClaim()
	if !ok {
		l.ring.recordDrop()
		l.pendingDrops.Add(1)
		return false
	}
	l.ring.publish(seq, rec)
	l.notify()
	return true
}

// reportDrops folds any pending drop count into a synthetic warning
// record. If the ring is still full, the count is restored for a later
// attempt. The synthetic record does not count toward the drop metric.
func (l *Logger) reportDrops() {
	n := l.pendingDrops.Swap(0)
	if n == 0 {
		return
	}
	rec := NewRecord(LevelWarn, internalTarget,
		fmt.Sprintf("dropped %d records: ring buffer full", n))
	seq, ok := l.ring.tryClaim()
	if !ok {
		l.pendingDrops.Add(n)
		return
	}
	l.ring.publish(seq, rec)
	l.notify()
}

// notify wakes the consumer without ever blocking the producer.
func (l *Logger) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// emit renders variadic args into a record and publishes it. callerSkip is
// the runtime.Caller distance to the user frame.
func (l *Logger) emit(level int64, callerSkip int, args []any) {
	if l.closed.Load() || level < l.cfg.Level {
		return
	}
	rec := NewRecord(level, l.cfg.DefaultTarget, renderArgs(args))
	if l.cfg.IncludeCaller {
		if _, file, line, ok := runtime.Caller(callerSkip); ok {
			rec.File = filepath.Base(file)
			rec.Line = line
		}
	}
	if l.publishRecord(rec) {
		l.reportDrops()
	}
}

// Trace logs a message at trace level.
func (l *Logger) Trace(args ...any) {
	l.emit(LevelTrace, 2, args)
}

// Debug logs a message at debug level.
func (l *Logger) Debug(args ...any) {
	l.emit(LevelDebug, 2, args)
}

// Info logs a message at info level.
func (l *Logger) Info(args ...any) {
	l.emit(LevelInfo, 2, args)
}

// Warn logs a message at warning level.
func (l *Logger) Warn(args ...any) {
	l.emit(LevelWarn, 2, args)
}

// Error logs a message at error level.
func (l *Logger) Error(args ...any) {
	l.emit(LevelError, 2, args)
}

// Logf logs a printf-formatted message at the given level.
func (l *Logger) Logf(level int64, format string, args ...any) {
	if l.closed.Load() || level < l.cfg.Level {
		return
	}
	l.emit(level, 2, []any{fmt.Sprintf(format, args...)})
}

// Flush blocks the calling goroutine until every record published before
// the call has been written out and the sink has flushed, or the timeout
// elapses. A non-positive timeout uses the default bound. Flush never
// blocks the consumer.
func (l *Logger) Flush(timeout time.Duration) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if timeout <= 0 {
		timeout = defaultFlushTimeout
	}

	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	req := flushRequest{
		target:  l.ring.publishedSeq(),
		confirm: make(chan error, 1),
	}

	select {
	case l.flushReq <- req:
	case <-l.done:
		return ErrClosed
	case <-time.After(timeout):
		return fmt.Errorf("%w: consumer did not accept flush request within %v", ErrFlushTimeout, timeout)
	}

	select {
	case err := <-req.confirm:
		return err
	case <-l.done:
		return ErrClosed
	case <-time.After(timeout):
		return fmt.Errorf("%w: consumer did not confirm flush within %v", ErrFlushTimeout, timeout)
	}
}

// Shutdown closes the logger: subsequent Log calls fail fast with
// ErrClosed, the consumer drains everything published so far, flushes and
// shuts down the sink, and its goroutine exits. Idempotent; repeated calls
// return the cached result without re-running the drain.
func (l *Logger) Shutdown() error {
	if l.closed.CompareAndSwap(false, true) {
		close(l.stop)
	}
	<-l.done
	return l.finalErr
}

// Stats returns the transport counters: records published to the ring,
// records fully written to the sink, and records dropped because the ring
// was full.
func (l *Logger) Stats() (published, written, dropped uint64) {
	return l.ring.publishedCount(), l.ring.writtenCount(), l.ring.droppedCount()
}

// Capacity returns the effective ring capacity after rounding.
func (l *Logger) Capacity() int64 {
	return l.ring.capacity()
}

// Config returns a copy of the logger's configuration snapshot.
func (l *Logger) Config() *Config {
	return l.cfg.Clone()
}

// latchSinkErr records a consumer-side sink failure for the next Flush or
// Shutdown to surface. Only the most recent failure is kept.
func (l *Logger) latchSinkErr(err error) {
	l.sinkErr.Store(&errBox{err: err})
}

// takeSinkErr returns and clears the latched sink error, if any.
func (l *Logger) takeSinkErr() error {
	if box := l.sinkErr.Swap(nil); box != nil {
		return box.err
	}
	return nil
}
