package nanolog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(s string) BatchEntry {
	return BatchEntry{Data: []byte(s)}
}

// TestFileSinkWriteAndShutdown verifies buffered writes reach the file
// once the sink shuts down
func TestFileSinkWriteAndShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	sink, err := NewFileSink(path)
	require.NoError(t, err)
	assert.Equal(t, path, sink.Path())

	require.NoError(t, sink.Write([]byte("line one\n"), nil))
	require.NoError(t, sink.WriteBatch([]BatchEntry{entry("line two\n"), entry("line three\n")}))
	require.NoError(t, sink.Shutdown())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\nline three\n", string(content))
}

// TestFileSinkFlushMakesVisible verifies Flush pushes buffered bytes to
// the OS without closing the file
func TestFileSinkFlushMakesVisible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	sink, err := NewFileSink(path)
	require.NoError(t, err)
	defer sink.Shutdown()

	require.NoError(t, sink.Write([]byte("buffered\n"), nil))

	// Still sitting in the sink's buffer
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, content)

	require.NoError(t, sink.Flush())
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "buffered\n", string(content))
}

// TestFileSinkCreatesDirectory verifies missing parent directories are
// created
func TestFileSinkCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.log")

	sink, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Shutdown())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

// TestFileSinkLockExcludesSecondOpen verifies the advisory lock keeps a
// second sink off the same file until the first releases it
func TestFileSinkLockExcludesSecondOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	first, err := NewFileSink(path)
	require.NoError(t, err)

	_, err = NewFileSink(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")

	require.NoError(t, first.Shutdown())

	second, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, second.Shutdown())
}

// TestFileSinkShutdownIdempotent verifies repeated shutdowns are safe and
// writes after shutdown fail
func TestFileSinkShutdownIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	sink, err := NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Shutdown())
	require.NoError(t, sink.Shutdown())

	err = sink.Write([]byte("late\n"), nil)
	assert.Error(t, err)
	assert.NoError(t, sink.Flush())
}

// TestMemorySink verifies capture, counting and reset
func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()

	require.NoError(t, sink.Write([]byte("a\n"), nil))
	require.NoError(t, sink.WriteBatch([]BatchEntry{entry("b\n"), entry("c\n")}))

	assert.Equal(t, 3, sink.Count())
	assert.Equal(t, []string{"a", "b", "c"}, sink.Lines())
	assert.Equal(t, "a\nb\nc\n", string(sink.Contents()))

	sink.Reset()
	assert.Equal(t, 0, sink.Count())
	assert.Nil(t, sink.Lines())
}

// TestMultiSink verifies fan-out and error aggregation
func TestMultiSink(t *testing.T) {
	a := NewMemorySink()
	b := NewMemorySink()
	multi := NewMultiSink(a, b)

	require.NoError(t, multi.Write([]byte("x\n"), nil))
	require.NoError(t, multi.WriteBatch([]BatchEntry{entry("y\n")}))
	require.NoError(t, multi.Flush())

	assert.Equal(t, 2, a.Count())
	assert.Equal(t, 2, b.Count())

	t.Run("shutdown aggregates errors", func(t *testing.T) {
		failing := &erroringSink{err: errors.New("sink a broke")}
		tracker := &trackingSink{}
		multi := NewMultiSink(failing, tracker)

		err := multi.Shutdown()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sink a broke")
		assert.True(t, tracker.shutdown, "later sinks are still shut down after an earlier failure")
	})
}

// TestNullSink verifies the discard sink accepts everything
func TestNullSink(t *testing.T) {
	sink := NewNullSink()
	assert.NoError(t, sink.Write([]byte("x"), nil))
	assert.NoError(t, sink.WriteBatch([]BatchEntry{entry("y")}))
	assert.NoError(t, sink.Flush())
	assert.NoError(t, sink.Shutdown())
}

// erroringSink fails every operation with a fixed error
type erroringSink struct {
	err error
}

func (s *erroringSink) Write(_ []byte, _ *Record) error { return s.err }
func (s *erroringSink) WriteBatch(_ []BatchEntry) error { return s.err }
func (s *erroringSink) Flush() error                    { return s.err }
func (s *erroringSink) Shutdown() error                 { return s.err }

// trackingSink records whether lifecycle methods were called
type trackingSink struct {
	shutdown bool
}

func (s *trackingSink) Write(_ []byte, _ *Record) error { return nil }
func (s *trackingSink) WriteBatch(_ []BatchEntry) error { return nil }
func (s *trackingSink) Flush() error                    { return nil }
func (s *trackingSink) Shutdown() error                 { s.shutdown = true; return nil }
