// Package obsbuffer implements the observation-buffer protocol of §4.7:
// a way for a snapshot reader to see a linearizable view of an
// instrument's accumulated state without blocking concurrent observers
// on the hot path. It is grounded directly on the original Java
// Buffer<T>/buffer.run(expectedCount, snapshotFn, replayFn) pattern used
// by Summary.java's SummaryData.
package obsbuffer

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Buffer coordinates a hot observation path against an occasional
// consistent-snapshot read. While no snapshot is in progress, Append
// calls pass v straight to fn with no buffering. While a snapshot is in
// progress (inside Run), Append instead queues v; Run replays the queue
// through fn once the snapshot has been taken, so no observation is
// lost and the snapshot never observes a partial update.
type Buffer[T any] struct {
	mu      sync.Mutex
	armed   bool
	pending []T

	inFlight atomic.Int64
}

// New returns an empty Buffer.
func New[T any]() *Buffer[T] {
	return &Buffer[T]{}
}

// Append records an observation, applying it via fn immediately unless a
// snapshot is currently in progress, in which case it is queued for
// replay. Safe for concurrent use with other Append calls and with Run.
func (b *Buffer[T]) Append(v T, fn func(T)) {
	b.inFlight.Add(1)
	defer b.inFlight.Add(-1)

	b.mu.Lock()
	if b.armed {
		b.pending = append(b.pending, v)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	fn(v)
}

// Run performs a coordinated snapshot. It arms the buffer so concurrent
// Append calls queue rather than apply, busy-waits (via runtime.Gosched,
// matching the teacher's histogram cooldown loop) until every Append
// already in flight when Run started has either completed its direct
// apply or finished queuing, takes the snapshot via snapshotFn, then
// disarms and replays the queued observations through replayFn so they
// land in the post-snapshot state.
func (b *Buffer[T]) Run(snapshotFn func(), replayFn func(T)) {
	b.mu.Lock()
	b.armed = true
	b.mu.Unlock()

	for b.inFlight.Load() != 0 {
		runtime.Gosched()
	}

	snapshotFn()

	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.armed = false
	b.mu.Unlock()

	for _, v := range pending {
		replayFn(v)
	}
}
