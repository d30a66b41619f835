package nanolog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestLogger creates a logger backed by an in-memory sink
func createTestLogger(t *testing.T, mutate ...func(*Config)) (*Logger, *MemorySink) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Level = LevelTrace
	cfg.FlushIntervalMs = 10
	for _, m := range mutate {
		m(cfg)
	}

	sink := NewMemorySink()
	logger, err := NewWith(cfg, NewSimpleFormatter(), sink)
	require.NoError(t, err)
	return logger, sink
}

// TestNew verifies construction from a default configuration
func TestNew(t *testing.T) {
	logger, err := New(nil)
	require.NoError(t, err)
	defer logger.Shutdown()

	assert.Equal(t, int64(1024), logger.Capacity())
	assert.Equal(t, LevelInfo, logger.Config().Level)
}

// TestNewInvalidConfig verifies construction fails on a bad configuration
func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "yaml"

	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestLogOrdering verifies single-producer records come out in call order
func TestLogOrdering(t *testing.T) {
	logger, sink := createTestLogger(t)
	defer logger.Shutdown()

	const n = 100
	for i := 0; i < n; i++ {
		require.NoError(t, logger.Log(NewRecord(LevelInfo, "app", fmt.Sprintf("msg-%d", i))))
	}

	require.NoError(t, logger.Flush(time.Second))

	lines := sink.Lines()
	require.Len(t, lines, n)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("[INFO] msg-%d", i), line)
	}
}

// TestLogLevelFilter verifies below-threshold records are skipped without
// counting as drops
func TestLogLevelFilter(t *testing.T) {
	logger, sink := createTestLogger(t, func(c *Config) {
		c.Level = LevelWarn
	})
	defer logger.Shutdown()

	require.NoError(t, logger.Log(NewRecord(LevelDebug, "app", "filtered")))
	require.NoError(t, logger.Log(NewRecord(LevelInfo, "app", "filtered too")))
	require.NoError(t, logger.Log(NewRecord(LevelError, "app", "kept")))

	require.NoError(t, logger.Flush(time.Second))

	lines := sink.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "[ERROR] kept", lines[0])

	published, _, dropped := logger.Stats()
	assert.Equal(t, uint64(1), published)
	assert.Equal(t, uint64(0), dropped)
}

// TestConvenienceMethods verifies the level helpers render variadic args
func TestConvenienceMethods(t *testing.T) {
	logger, sink := createTestLogger(t)
	defer logger.Shutdown()

	logger.Trace("trace msg")
	logger.Debug("debug msg")
	logger.Info("count:", 42)
	logger.Warn("ratio:", 0.5)
	logger.Error("failed:", errors.New("boom"))
	logger.Logf(LevelInfo, "formatted %s %d", "value", 7)

	require.NoError(t, logger.Flush(time.Second))

	lines := sink.Lines()
	require.Len(t, lines, 6)
	assert.Equal(t, "[TRACE] trace msg", lines[0])
	assert.Equal(t, "[DEBUG] debug msg", lines[1])
	assert.Equal(t, "[INFO] count: 42", lines[2])
	assert.Equal(t, "[WARN] ratio: 0.5", lines[3])
	assert.Equal(t, "[ERROR] failed: boom", lines[4])
	assert.Equal(t, "[INFO] formatted value 7", lines[5])
}

// TestConcurrentProducers verifies no records are lost under contention
// when the ring is large enough to absorb the load
func TestConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 10000

	logger, sink := createTestLogger(t, func(c *Config) {
		c.Capacity = 1 << 16
		c.BatchSize = 256
	})

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				logger.Log(NewRecord(LevelInfo, "app", fmt.Sprintf("p%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	require.NoError(t, logger.Shutdown())

	published, written, dropped := logger.Stats()
	assert.Equal(t, published, written, "everything published must be written after shutdown")
	// Drop-report records may add to published, so this is a floor
	assert.GreaterOrEqual(t, published+dropped, uint64(producers*perProducer))
	assert.Equal(t, int(written), sink.Count())

	// Per-producer order is preserved even when producers interleave
	last := make(map[string]int, producers)
	for _, line := range sink.Lines() {
		if !strings.HasPrefix(line, "[INFO] ") {
			continue
		}
		msg := strings.TrimPrefix(line, "[INFO] ")
		var p, i int
		_, err := fmt.Sscanf(msg, "p%d-%d", &p, &i)
		require.NoError(t, err)
		key := fmt.Sprintf("p%d", p)
		if prev, seen := last[key]; seen {
			assert.Greater(t, i, prev, "records from one producer must stay ordered")
		}
		last[key] = i
	}
}

// TestDropOnFullRing verifies the logger drops rather than blocks when the
// consumer cannot keep up, and that drops are counted
func TestDropOnFullRing(t *testing.T) {
	blocker := newBlockingSink()
	cfg := DefaultConfig()
	cfg.Level = LevelTrace
	cfg.Capacity = 64
	cfg.FlushIntervalMs = 1000

	logger, err := NewWith(cfg, NewSimpleFormatter(), blocker)
	require.NoError(t, err)

	// Stall the consumer inside its first batch write, then overrun the ring
	logger.Log(NewRecord(LevelInfo, "app", "stall"))
	blocker.waitBlocked()

	for i := 0; i < 200; i++ {
		require.NoError(t, logger.Log(NewRecord(LevelInfo, "app", "flood")))
	}

	_, _, dropped := logger.Stats()
	assert.Greater(t, dropped, uint64(0), "flooding a stalled consumer must drop")

	blocker.release()
	require.NoError(t, logger.Shutdown())

	published, written, _ := logger.Stats()
	assert.Equal(t, published, written)
}

// TestDropReportFolded verifies drops are folded into a synthetic warning
// record once space frees up
func TestDropReportFolded(t *testing.T) {
	blocker := newBlockingSink()
	cfg := DefaultConfig()
	cfg.Level = LevelTrace
	cfg.Capacity = 64
	cfg.FlushIntervalMs = 1000

	logger, err := NewWith(cfg, NewSimpleFormatter(), blocker)
	require.NoError(t, err)

	logger.Log(NewRecord(LevelInfo, "app", "stall"))
	blocker.waitBlocked()
	for i := 0; i < 200; i++ {
		logger.Log(NewRecord(LevelInfo, "app", "flood"))
	}
	blocker.release()

	// Wait for the consumer to free space, then log once more to trigger
	// the folded drop report
	require.Eventually(t, func() bool {
		published, written, _ := logger.Stats()
		return published == written
	}, 2*time.Second, 5*time.Millisecond)

	logger.Log(NewRecord(LevelInfo, "app", "after"))
	require.NoError(t, logger.Shutdown())

	var found bool
	for _, line := range blocker.lines() {
		if strings.Contains(line, "dropped") && strings.Contains(line, "ring buffer full") {
			found = true
			break
		}
	}
	assert.True(t, found, "a drop report record should appear after space frees up")
}

// TestFlushDurability verifies records published before Flush are visible
// in the sink when it returns
func TestFlushDurability(t *testing.T) {
	logger, sink := createTestLogger(t, func(c *Config) {
		// Long interval so only Flush can make the records visible
		c.FlushIntervalMs = 60000
	})
	defer logger.Shutdown()

	logger.Info("one")
	logger.Info("two")
	logger.Info("three")

	require.NoError(t, logger.Flush(time.Second))
	assert.Equal(t, 3, sink.Count())
}

// TestFlushTimeout verifies a stuck consumer bounds Flush by the timeout
func TestFlushTimeout(t *testing.T) {
	blocker := newBlockingSink()
	cfg := DefaultConfig()
	cfg.Level = LevelTrace
	cfg.FlushIntervalMs = 60000

	logger, err := NewWith(cfg, NewSimpleFormatter(), blocker)
	require.NoError(t, err)

	logger.Log(NewRecord(LevelInfo, "app", "stall"))
	blocker.waitBlocked()

	err = logger.Flush(50 * time.Millisecond)
	assert.ErrorIs(t, err, ErrFlushTimeout)

	blocker.release()
	require.NoError(t, logger.Shutdown())
}

// TestFlushAfterShutdown verifies Flush fails fast on a closed logger
func TestFlushAfterShutdown(t *testing.T) {
	logger, _ := createTestLogger(t)
	require.NoError(t, logger.Shutdown())

	err := logger.Flush(time.Second)
	assert.ErrorIs(t, err, ErrClosed)
}

// TestShutdownDrains verifies shutdown writes out all published records
// even when no flush interval has elapsed
func TestShutdownDrains(t *testing.T) {
	logger, sink := createTestLogger(t, func(c *Config) {
		c.Capacity = 1 << 12
		c.FlushIntervalMs = 60000
	})

	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, logger.Log(NewRecord(LevelInfo, "app", fmt.Sprintf("msg-%d", i))))
	}

	require.NoError(t, logger.Shutdown())
	assert.Equal(t, n, sink.Count())
}

// TestShutdownIdempotent verifies repeated shutdowns return the same result
// without re-running the drain
func TestShutdownIdempotent(t *testing.T) {
	logger, sink := createTestLogger(t)
	logger.Info("before close")

	require.NoError(t, logger.Shutdown())
	count := sink.Count()

	require.NoError(t, logger.Shutdown())
	require.NoError(t, logger.Shutdown())
	assert.Equal(t, count, sink.Count())
}

// TestLogAfterShutdown verifies Log fails fast once closed
func TestLogAfterShutdown(t *testing.T) {
	logger, _ := createTestLogger(t)
	require.NoError(t, logger.Shutdown())

	err := logger.Log(NewRecord(LevelInfo, "app", "late"))
	assert.ErrorIs(t, err, ErrClosed)

	// Convenience methods become no-ops rather than panicking
	logger.Info("also late")
	published, _, _ := logger.Stats()
	assert.Equal(t, uint64(0), published)
}

// TestSinkErrorSurfacedOnFlush verifies a consumer-side sink failure is
// latched and reported by the next Flush, while the consumer keeps going
func TestSinkErrorSurfacedOnFlush(t *testing.T) {
	failing := &failingSink{failWrites: 1}
	cfg := DefaultConfig()
	cfg.Level = LevelTrace
	cfg.FlushIntervalMs = 60000

	logger, err := NewWith(cfg, NewSimpleFormatter(), failing)
	require.NoError(t, err)
	defer logger.Shutdown()

	logger.Info("will fail")
	err = logger.Flush(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink write failed")

	// The failure is consumed; subsequent records flow normally
	logger.Info("recovers")
	require.NoError(t, logger.Flush(time.Second))
	assert.Equal(t, 1, failing.written)
}

// TestStats verifies the counter snapshot
func TestStats(t *testing.T) {
	logger, _ := createTestLogger(t)

	for i := 0; i < 10; i++ {
		logger.Info("msg")
	}
	require.NoError(t, logger.Flush(time.Second))

	published, written, dropped := logger.Stats()
	assert.Equal(t, uint64(10), published)
	assert.Equal(t, uint64(10), written)
	assert.Equal(t, uint64(0), dropped)

	require.NoError(t, logger.Shutdown())
}

// TestIncludeCaller verifies file and line capture on the convenience
// methods
func TestIncludeCaller(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = LevelTrace
	cfg.IncludeCaller = true

	sink := NewMemorySink()
	logger, err := NewWith(cfg, NewJSONFormatter(), sink)
	require.NoError(t, err)
	defer logger.Shutdown()

	logger.Info("where am I")
	require.NoError(t, logger.Flush(time.Second))

	lines := sink.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"file":"logger_test.go"`)
	assert.NotContains(t, lines[0], `"line":0`)
}

// TestSmallRingKeepsUp verifies a tiny ring with a fast consumer loses
// nothing at modest rates
func TestSmallRingKeepsUp(t *testing.T) {
	logger, sink := createTestLogger(t, func(c *Config) {
		c.Capacity = 10 // rounds up to 64
		c.BatchSize = 5
		c.FlushIntervalMs = 50
	})

	logger.Info("a")
	logger.Info("b")
	logger.Info("c")

	require.NoError(t, logger.Flush(time.Second))
	assert.Equal(t, 3, sink.Count())

	_, _, dropped := logger.Stats()
	assert.Equal(t, uint64(0), dropped)

	require.NoError(t, logger.Shutdown())
}

// blockingSink blocks its first WriteBatch until released, simulating a
// stalled downstream writer
type blockingSink struct {
	mu      sync.Mutex
	buf     []string
	blocked chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func newBlockingSink() *blockingSink {
	return &blockingSink{
		blocked: make(chan struct{}),
		gate:    make(chan struct{}),
	}
}

func (s *blockingSink) Write(p []byte, _ *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, strings.TrimSuffix(string(p), "\n"))
	return nil
}

func (s *blockingSink) WriteBatch(entries []BatchEntry) error {
	s.once.Do(func() {
		close(s.blocked)
		<-s.gate
	})
	for _, e := range entries {
		if err := s.Write(e.Data, e.Rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *blockingSink) Flush() error    { return nil }
func (s *blockingSink) Shutdown() error { return nil }

func (s *blockingSink) waitBlocked() { <-s.blocked }
func (s *blockingSink) release()     { close(s.gate) }

func (s *blockingSink) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.buf))
	copy(out, s.buf)
	return out
}

// failingSink fails the first failWrites batch writes, then succeeds
type failingSink struct {
	failWrites int
	written    int
}

func (s *failingSink) Write(p []byte, _ *Record) error { return nil }

func (s *failingSink) WriteBatch(entries []BatchEntry) error {
	if s.failWrites > 0 {
		s.failWrites--
		return errors.New("disk on fire")
	}
	s.written += len(entries)
	return nil
}

func (s *failingSink) Flush() error    { return nil }
func (s *failingSink) Shutdown() error { return nil }
