package nanolog

import (
	"sync/atomic"
)

// slot is one pre-allocated, reusable storage cell in the ring. The seq
// marker holds the sequence number the slot was last published at, or -1
// when the slot has never been published. Exactly one producer owns the
// record between claim and publish; the consumer owns it between publish
// and the written-cursor advance.
type slot struct {
	seq atomic.Int64
	rec Record
}

// ringBuffer is a fixed-capacity multi-producer single-consumer queue of
// record slots. Producers arbitrate through the claim counter; publication
// is made visible through per-slot sequence markers plus the published
// cursor, which only advances across a contiguous run of ready slots, so
// the consumer never observes a claimed-but-unwritten slot.
//
// Counter invariant: written <= published < claim. All three are sequence
// numbers starting at 0 (the cursors start at -1, meaning "none yet").
type ringBuffer struct {
	slots []slot
	mask  int64
	size  int64

	claim     atomic.Int64 // next sequence to be claimed
	published atomic.Int64 // head of the contiguous published run
	written   atomic.Int64 // highest fully consumed sequence
	dropped   atomic.Uint64
}

// newRingBuffer builds a ring with the effective (power-of-two, floored)
// capacity for the configured size. Slots are allocated once and never
// reallocated.
func newRingBuffer(configured int64) *ringBuffer {
	c := effectiveCapacity(configured)
	r := &ringBuffer{
		slots: make([]slot, c),
		mask:  c - 1,
		size:  c,
	}
	for i := range r.slots {
		r.slots[i].seq.Store(-1)
	}
	r.published.Store(-1)
	r.written.Store(-1)
	return r
}

// capacity returns the effective slot count.
func (r *ringBuffer) capacity() int64 {
	return r.size
}

// tryClaim reserves the next sequence number for exclusive write access to
// its slot. Returns false when the slot that sequence would reuse has not
// been consumed yet; a failed claim does not consume a sequence number, so
// the ring never develops holes.
func (r *ringBuffer) tryClaim() (int64, bool) {
	for {
		s := r.claim.Load()
		if s-r.written.Load() > r.size {
			return 0, false
		}
		if r.claim.CompareAndSwap(s, s+1) {
			return s, true
		}
	}
}

// publish copies rec into the claimed slot and marks it ready, then walks
// the published cursor forward across the contiguous run of ready slots.
// Producers may finish out of claim order; a producer that stalls behind a
// gap simply returns, and the gap's owner advances past both slots later.
func (r *ringBuffer) publish(seq int64, rec Record) {
	sl := &r.slots[seq&r.mask]
	sl.rec = rec
	sl.seq.Store(seq) // release: record contents visible before the marker

	for {
		p := r.published.Load()
		next := p + 1
		if next >= r.claim.Load() || r.slots[next&r.mask].seq.Load() != next {
			return
		}
		r.published.CompareAndSwap(p, next)
	}
}

// drainBatch computes the contiguous range (written, published] capped at
// max entries. Consumer-only. The range is empty when hi < lo.
func (r *ringBuffer) drainBatch(max int64) (lo, hi int64) {
	lo = r.written.Load() + 1
	hi = r.published.Load()
	if hi-lo+1 > max {
		hi = lo + max - 1
	}
	return lo, hi
}

// slotRecord exposes a published slot's contents for read without copying.
// Consumer-only; valid until advanceWritten releases the sequence.
func (r *ringBuffer) slotRecord(seq int64) *Record {
	return &r.slots[seq&r.mask].rec
}

// advanceWritten releases every slot up to and including seq back to the
// producers. Consumer-only.
func (r *ringBuffer) advanceWritten(seq int64) {
	r.written.Store(seq)
}

// hasPublished reports whether unconsumed published slots exist.
func (r *ringBuffer) hasPublished() bool {
	return r.published.Load() > r.written.Load()
}

func (r *ringBuffer) publishedSeq() int64 { return r.published.Load() }

func (r *ringBuffer) writtenSeq() int64 { return r.written.Load() }

func (r *ringBuffer) recordDrop() { r.dropped.Add(1) }

func (r *ringBuffer) droppedCount() uint64 { return r.dropped.Load() }

func (r *ringBuffer) publishedCount() uint64 {
	return uint64(r.published.Load() + 1)
}

func (r *ringBuffer) writtenCount() uint64 {
	return uint64(r.written.Load() + 1)
}
