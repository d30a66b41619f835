package nanolog

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// BatchEntry pairs a formatted payload with the record it was rendered
// from, so sinks that route on record metadata can do so without parsing.
type BatchEntry struct {
	Data []byte
	Rec  *Record
}

// Sink persists formatted records. Only the consumer goroutine calls into
// a sink owned by a Logger, so implementations need no synchronization of
// their own unless they are shared across loggers.
type Sink interface {
	Write(p []byte, rec *Record) error
	WriteBatch(entries []BatchEntry) error
	Flush() error
	Shutdown() error
}

// writeBatchTo is the default WriteBatch: loop over Write.
func writeBatchTo(s Sink, entries []BatchEntry) error {
	for _, e := range entries {
		if err := s.Write(e.Data, e.Rec); err != nil {
			return err
		}
	}
	return nil
}

// ConsoleSink writes to standard output or standard error.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a sink writing to stdout.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{w: os.Stdout}
}

// NewConsoleErrSink creates a sink writing to stderr.
func NewConsoleErrSink() *ConsoleSink {
	return &ConsoleSink{w: os.Stderr}
}

func (s *ConsoleSink) Write(p []byte, _ *Record) error {
	_, err := s.w.Write(p)
	return err
}

func (s *ConsoleSink) WriteBatch(entries []BatchEntry) error {
	return writeBatchTo(s, entries)
}

func (s *ConsoleSink) Flush() error    { return nil }
func (s *ConsoleSink) Shutdown() error { return nil }

// FileSink appends formatted records to a single file through a byte
// buffer of configurable size; the OS-level write happens when the buffer
// fills or on Flush. An advisory lock on the file guards against two
// processes interleaving partial lines.
type FileSink struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *bufio.Writer
	lock *flock.Flock
}

// defaultFileBufferSize is used when the configured size is zero.
const defaultFileBufferSize = 64 * 1024

// NewFileSink opens (or creates) path for appending with the default
// buffer size.
func NewFileSink(path string) (*FileSink, error) {
	return NewFileSinkBuffered(path, defaultFileBufferSize)
}

// NewFileSinkBuffered opens path with an explicit internal buffer size in
// bytes.
func NewFileSinkBuffered(path string, bufferSize int) (*FileSink, error) {
	if bufferSize <= 0 {
		bufferSize = defaultFileBufferSize
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmtErrorf("failed to create log directory '%s': %w", dir, err)
		}
	}

	lock := flock.New(path + ".lock")
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmtErrorf("failed to acquire lock for '%s': %w", path, err)
	}
	if !held {
		return nil, fmtErrorf("log file '%s' is locked by another process", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmtErrorf("failed to open log file '%s': %w", path, err)
	}

	return &FileSink{
		path: path,
		file: file,
		w:    bufio.NewWriterSize(file, bufferSize),
		lock: lock,
	}, nil
}

// Path returns the file path the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Write(p []byte, _ *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return fmtErrorf("file sink '%s' already shut down", s.path)
	}
	_, err := s.w.Write(p)
	return err
}

func (s *FileSink) WriteBatch(entries []BatchEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return fmtErrorf("file sink '%s' already shut down", s.path)
	}
	for _, e := range entries {
		if _, err := s.w.Write(e.Data); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}
	return s.w.Flush()
}

// Shutdown flushes the buffer, syncs and closes the file, and releases the
// advisory lock. Safe to call more than once.
func (s *FileSink) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}

	var finalErr error
	if err := s.w.Flush(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to flush '%s': %w", s.path, err))
	}
	if err := s.file.Sync(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to sync '%s': %w", s.path, err))
	}
	if err := s.file.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close '%s': %w", s.path, err))
	}
	if err := s.lock.Unlock(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to release lock for '%s': %w", s.path, err))
	}
	s.w = nil
	s.file = nil
	return finalErr
}

// MemorySink captures output in memory. Used in tests and for inspection.
type MemorySink struct {
	mu  sync.Mutex
	buf bytes.Buffer
	n   int
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(p []byte, _ *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(p)
	s.n++
	return nil
}

func (s *MemorySink) WriteBatch(entries []BatchEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.buf.Write(e.Data)
		s.n++
	}
	return nil
}

func (s *MemorySink) Flush() error    { return nil }
func (s *MemorySink) Shutdown() error { return nil }

// Contents returns a copy of everything written so far.
func (s *MemorySink) Contents() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out
}

// Lines splits the captured output on newlines, dropping the trailing
// empty element.
func (s *MemorySink) Lines() []string {
	content := string(s.Contents())
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// Count returns the number of entries written.
func (s *MemorySink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Reset discards captured output.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.n = 0
}

// NullSink discards everything. Used in benchmarks.
type NullSink struct{}

// NewNullSink creates a sink that discards all output.
func NewNullSink() *NullSink {
	return &NullSink{}
}

func (s *NullSink) Write(_ []byte, _ *Record) error { return nil }
func (s *NullSink) WriteBatch(_ []BatchEntry) error { return nil }
func (s *NullSink) Flush() error                    { return nil }
func (s *NullSink) Shutdown() error                 { return nil }

// MultiSink fans out to several sinks; the first error encountered is
// returned, remaining sinks are still attempted for Flush and Shutdown.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink composes sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (s *MultiSink) Write(p []byte, rec *Record) error {
	for _, sub := range s.sinks {
		if err := sub.Write(p, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *MultiSink) WriteBatch(entries []BatchEntry) error {
	for _, sub := range s.sinks {
		if err := sub.WriteBatch(entries); err != nil {
			return err
		}
	}
	return nil
}

func (s *MultiSink) Flush() error {
	var finalErr error
	for _, sub := range s.sinks {
		finalErr = combineErrors(finalErr, sub.Flush())
	}
	return finalErr
}

func (s *MultiSink) Shutdown() error {
	var finalErr error
	for _, sub := range s.sinks {
		finalErr = combineErrors(finalErr, sub.Shutdown())
	}
	return finalErr
}
