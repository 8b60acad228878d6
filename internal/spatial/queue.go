package spatial

import "sync/atomic"

// CacheLineSize is the typical CPU cache line size (64 bytes on x86-64).
const CacheLineSize = 64

// Padding prevents adjacent fields from sharing a cache line.
type Padding [CacheLineSize]byte

// SPSCQueue is a single-producer single-consumer lock-free ring buffer —
// plain atomic loads/stores, no CAS, since there is exactly one writer and
// one reader. This is the external-event inbox: the control plane's HTTP
// handlers push commands onto it one at a time (the scheduler's mutex
// serializes them into a single producer), and the scheduler (the single
// consumer) drains it at the start of every Advance and after every
// handler it runs. Using this instead of a
// mutex keeps the producer's HTTP goroutine from ever blocking on the
// simulation goroutine.
type SPSCQueue[T any] struct {
	_pad0 Padding
	head  uint64 // write position
	_pad1 Padding
	tail  uint64 // read position
	_pad2 Padding
	mask  uint64
	data  []T
}

// NewSPSCQueue creates a queue with capacity rounded up to a power of 2.
func NewSPSCQueue[T any](capacity int) *SPSCQueue[T] {
	cap := 1
	for cap < capacity {
		cap <<= 1
	}
	return &SPSCQueue[T]{
		mask: uint64(cap - 1),
		data: make([]T, cap),
	}
}

// TryPush enqueues item, returning false if full. Producer-only.
func (q *SPSCQueue[T]) TryPush(item T) bool {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head-tail > q.mask {
		return false
	}
	q.data[head&q.mask] = item
	atomic.StoreUint64(&q.head, head+1)
	return true
}

// TryPop dequeues the oldest item, returning (zero, false) if empty.
// Consumer-only.
func (q *SPSCQueue[T]) TryPop() (T, bool) {
	var zero T
	tail := atomic.LoadUint64(&q.tail)
	head := atomic.LoadUint64(&q.head)
	if tail >= head {
		return zero, false
	}
	item := q.data[tail&q.mask]
	atomic.StoreUint64(&q.tail, tail+1)
	return item, true
}

// Len returns the approximate item count — a snapshot that may be stale
// the instant it's read.
func (q *SPSCQueue[T]) Len() int {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head < tail {
		return 0
	}
	return int(head - tail)
}

// Cap returns the queue's fixed capacity.
func (q *SPSCQueue[T]) Cap() int {
	return int(q.mask + 1)
}

// Drain pops up to maxItems into a freshly allocated slice. The scheduler
// does not use it; it pops items one at a time with TryPop.
func (q *SPSCQueue[T]) Drain(maxItems int) []T {
	result := make([]T, 0, maxItems)
	for len(result) < maxItems {
		item, ok := q.TryPop()
		if !ok {
			break
		}
		result = append(result, item)
	}
	return result
}

// DrainTo pops into a pre-allocated buffer, returning the count written —
// the zero-allocation variant for steady-state tick processing.
func (q *SPSCQueue[T]) DrainTo(buf []T) int {
	count := 0
	for count < len(buf) {
		item, ok := q.TryPop()
		if !ok {
			break
		}
		buf[count] = item
		count++
	}
	return count
}
