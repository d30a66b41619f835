package nanolog

import (
	"runtime"
	"time"
)

// processRecords is the consumer loop, the sole reader of the ring buffer.
// It runs on its own goroutine for the logger's lifetime: draining batches
// on producer wakes, flushing the sink on the configured interval, serving
// explicit flush requests, and performing the final drain on stop.
func (l *Logger) processRecords() {
	defer close(l.done)

	ticker := time.NewTicker(l.cfg.flushInterval())
	defer ticker.Stop()

	for {
		select {
		case <-l.wake:
			wrote := l.drainBatches()

			// Short bounded spin: catch records published while the last
			// batch was being written without parking between bursts.
			for spin := 0; spin < idleSpins; spin++ {
				if l.ring.hasPublished() {
					if l.drainBatches() {
						wrote = true
					}
					spin = 0
					continue
				}
				runtime.Gosched()
			}

			if wrote {
				if err := l.sink.Flush(); err != nil {
					l.latchSinkErr(fmtErrorf("sink flush failed: %w", err))
				}
			}

		case <-ticker.C:
			l.drainBatches()
			// Periodic flush happens even with zero new entries.
			if err := l.sink.Flush(); err != nil {
				l.latchSinkErr(fmtErrorf("sink flush failed: %w", err))
			}

		case req := <-l.flushReq:
			l.drainUntil(req.target)
			err := combineErrors(l.takeSinkErr(), l.flushSink())
			req.confirm <- err

		case <-l.stop:
			// No new claims are accepted once shutdown begins; drain
			// everything published up to the stop signal, then close out
			// the sink.
			l.drainUntil(l.ring.publishedSeq())
			err := combineErrors(l.takeSinkErr(), l.flushSink())
			l.finalErr = combineErrors(err, l.shutdownSink())
			return
		}
	}
}

// drainBatches consumes all currently published records in batches of the
// configured size. Reports whether anything was written.
func (l *Logger) drainBatches() bool {
	wrote := false
	for {
		lo, hi := l.ring.drainBatch(l.cfg.BatchSize)
		if hi < lo {
			return wrote
		}
		l.writeRange(lo, hi)
		wrote = true
	}
}

// drainUntil consumes published records until the written cursor reaches
// target. target must not exceed the published cursor.
func (l *Logger) drainUntil(target int64) {
	for l.ring.writtenSeq() < target {
		lo, hi := l.ring.drainBatch(l.cfg.BatchSize)
		if hi < lo {
			return
		}
		l.writeRange(lo, hi)
	}
}

// writeRange formats the slots in [lo, hi], hands the whole batch to the
// sink in one call, and releases the slots. The written cursor advances
// regardless of a sink error: a published slot is never reprocessed, and
// the failure is latched for the next Flush or Shutdown to surface.
func (l *Logger) writeRange(lo, hi int64) {
	entries := l.entries[:0]
	for seq := lo; seq <= hi; seq++ {
		rec := l.ring.slotRecord(seq)
		i := seq - lo
		l.scratch[i] = l.formatter.AppendFormat(l.scratch[i][:0], rec)
		entries = append(entries, BatchEntry{Data: l.scratch[i], Rec: rec})
	}

	if err := l.sink.WriteBatch(entries); err != nil {
		l.latchSinkErr(fmtErrorf("sink write failed: %w", err))
	}

	l.ring.advanceWritten(hi)
}

// flushSink wraps the sink flush error.
func (l *Logger) flushSink() error {
	if err := l.sink.Flush(); err != nil {
		return fmtErrorf("sink flush failed: %w", err)
	}
	return nil
}

// shutdownSink wraps the sink shutdown error.
func (l *Logger) shutdownSink() error {
	if err := l.sink.Shutdown(); err != nil {
		return fmtErrorf("sink shutdown failed: %w", err)
	}
	return nil
}
