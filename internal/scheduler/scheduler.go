// Package scheduler implements the deterministic tick/event engine the
// match simulation is built on: a min-heap ordered by (tick, sequence),
// two sequence bands separating externally-injected events from
// internally-generated ones, a single-use capability for registering the
// external producer, and a reentrancy guard that rejects Advance called
// from inside a handler.
//
// Grounded on the teacher's Engine run loop (internal/game/engine.go) —
// same "tick forward, drain what's due, dispatch" shape — generalized from
// a fixed-rate ticker into an explicit priority queue so events can be
// scheduled for arbitrary future ticks, not just "next tick".
package scheduler

import (
	"container/heap"
	"sync"

	"github.com/fight-club/matchsim/internal/errs"
	"github.com/fight-club/matchsim/internal/spatial"
)

// externalSeqCeiling is the boundary between the two sequence bands:
// sequence numbers below this are reserved for externally-injected events
// (via the external handle) so they always sort ahead of
// simulation-internal events scheduled for the same tick.
const externalSeqCeiling = 1_000_000

// externalQueueCapacity bounds how many externally-injected events can be
// buffered between one Advance and the next before ScheduleExternal starts
// reporting a full queue — generous for a control plane issuing at most a
// few substitutions/tactical changes/shouts per tick.
const externalQueueCapacity = 1024

// Handler is invoked when a scheduled event's tick arrives. A handler may
// itself call Schedule/Reschedule/Cancel on the same Scheduler — those
// calls change the heap immediately; Advance itself may not be called.
type Handler func(s *Scheduler, tick int64, payload any)

// scheduledEvent is one entry in the heap. owner records which Scheduler
// it belongs to, so a Handle from one Scheduler can never be mistakenly
// rescheduled or canceled against another.
type scheduledEvent struct {
	tick    int64
	seq     int64
	handler Handler
	payload any
	index   int // heap.Interface bookkeeping
	active  bool
	owner   *Scheduler
}

// eventHeap implements container/heap.Interface ordered by (tick, seq).
type eventHeap []*scheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].tick != h[j].tick {
		return h[i].tick < h[j].tick
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *eventHeap) Push(x any) {
	e := x.(*scheduledEvent)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Handle is a cancellation/reschedule token returned by Schedule. It is
// only valid against the Scheduler that issued it.
type Handle struct {
	event *scheduledEvent
}

// Scheduler is a single-threaded deterministic event queue. All methods
// except ScheduleExternal (via the ExternalHandle) must be called from the
// goroutine that owns the Scheduler. currentTick and minExternalTick are
// additionally guarded by mu because ScheduleExternal reads minExternalTick
// from another goroutine. The external inbox itself is a lock-free
// single-producer/single-consumer ring (spatial.SPSCQueue) rather than a
// mutex-guarded slice, so the control plane's HTTP goroutine (the producer)
// never blocks on the simulation goroutine (the consumer).
type Scheduler struct {
	heap          eventHeap
	nextInternal  int64 // next internal-band sequence number
	dispatching   bool  // true while Advance is popping/invoking handlers
	drained       bool
	externalTaken bool

	mu              sync.Mutex // guards currentTick, minExternalTick; serializes external producers
	currentTick     int64
	minExternalTick int64

	extQueue *spatial.SPSCQueue[externalEvent]
	extNext  int64 // next external-band sequence number; owning-goroutine-only
}

type externalEvent struct {
	tick    int64
	handler Handler
	payload any
}

// New creates a scheduler starting at tick 0.
func New() *Scheduler {
	s := &Scheduler{
		nextInternal: externalSeqCeiling,
		extQueue:     spatial.NewSPSCQueue[externalEvent](externalQueueCapacity),
	}
	heap.Init(&s.heap)
	return s
}

// CurrentTick returns the tick most recently processed by Advance.
func (s *Scheduler) CurrentTick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTick
}

// NextTick returns the tick immediately after CurrentTick — the earliest
// tick a newly scheduled internal event could ever land on.
func (s *Scheduler) NextTick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTick + 1
}

// Len reports the number of events currently queued.
func (s *Scheduler) Len() int { return len(s.heap) }

// HasPendingEvents reports whether any event remains queued.
func (s *Scheduler) HasPendingEvents() bool { return len(s.heap) > 0 }

// NextScheduledTick returns the tick of the earliest queued event, and
// false if the heap is empty.
func (s *Scheduler) NextScheduledTick() (int64, bool) {
	if len(s.heap) == 0 {
		return 0, false
	}
	return s.heap[0].tick, true
}

// MinExternalTick returns the earliest tick an externally-injected event
// may currently land on: current_tick while idle, current_tick+1 while a
// multi-tick Advance is mid-drain, so external input can never land on a
// tick already being (or just finished being) dispatched.
func (s *Scheduler) MinExternalTick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minExternalTick
}

// Schedule queues handler to run offsetTicks after the current tick, from
// within the owning goroutine (simulation-internal events — AI
// re-decisions, physics re-integration, scheduled kickoffs). offsetTicks
// must be >= 0; the absolute tick is computed internally so "schedule for
// right now" (offset 0) is always correct regardless of how far the
// simulation has already advanced. Returns a Handle for Reschedule/Cancel.
func (s *Scheduler) Schedule(offsetTicks int64, handler Handler, payload any) (Handle, error) {
	if offsetTicks < 0 {
		return Handle{}, errs.New(errs.KindConstraint, "tick offset must be >= 0")
	}
	if handler == nil {
		return Handle{}, errs.New(errs.KindProgrammer, "handler must not be nil")
	}
	tick := s.CurrentTick() + offsetTicks
	e := &scheduledEvent{tick: tick, seq: s.nextInternal, handler: handler, payload: payload, active: true, owner: s}
	s.nextInternal++
	heap.Push(&s.heap, e)
	return Handle{event: e}, nil
}

// Reschedule moves h to offsetTicks after the current tick and assigns it
// a fresh sequence number, so it sorts after every event already queued
// for that tick rather than retaining its original (possibly now-stale)
// FIFO position.
func (s *Scheduler) Reschedule(h Handle, offsetTicks int64) error {
	if h.event == nil || !h.event.active {
		return errs.New(errs.KindState, "handle is not active")
	}
	if h.event.owner != s {
		return errs.New(errs.KindProgrammer, "handle belongs to a different scheduler")
	}
	if offsetTicks < 0 {
		return errs.New(errs.KindConstraint, "tick offset must be >= 0")
	}
	h.event.tick = s.CurrentTick() + offsetTicks
	h.event.seq = s.nextInternal
	s.nextInternal++
	heap.Fix(&s.heap, h.event.index)
	return nil
}

// Cancel removes a previously scheduled event, reporting whether it was
// actually canceled. Canceling an already-fired/already-canceled handle,
// or one belonging to a different Scheduler, is a no-op that returns
// false.
func (s *Scheduler) Cancel(h Handle) bool {
	if h.event == nil || !h.event.active || h.event.index < 0 {
		return false
	}
	if h.event.owner != s {
		return false
	}
	heap.Remove(&s.heap, h.event.index)
	h.event.active = false
	return true
}

// ExternalHandle is the single-use capability required to inject events
// from outside the owning goroutine. Only one may ever be issued per
// Scheduler — see TakeExternalHandle.
type ExternalHandle struct {
	s *Scheduler
}

// TakeExternalHandle issues the scheduler's one external-producer
// capability. Calling this a second time returns a programmer error: the
// external entry point is meant to be handed to exactly one owner (the
// control-plane bridge goroutine), not shared ad hoc.
func (s *Scheduler) TakeExternalHandle() (ExternalHandle, error) {
	if s.externalTaken {
		return ExternalHandle{}, errs.New(errs.KindProgrammer, "external handle already taken")
	}
	s.externalTaken = true
	return ExternalHandle{s: s}, nil
}

// ScheduleExternal queues handler to run offsetTicks after
// MinExternalTick, using the external sequence band so it's ordered ahead
// of same-tick internal events. Safe to call concurrently with Advance
// from another goroutine; the event is pushed onto the lock-free inbox and
// merged into the heap at the start of the next Advance. Concurrent callers
// are serialized on the scheduler's mutex, so the inbox sees one producer
// at a time. Returns the absolute tick the event landed on.
func (h ExternalHandle) ScheduleExternal(offsetTicks int64, handler Handler, payload any) (int64, error) {
	if offsetTicks < 0 {
		return 0, errs.New(errs.KindConstraint, "tick offset must be >= 0")
	}
	if handler == nil {
		return 0, errs.New(errs.KindProgrammer, "handler must not be nil")
	}
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	tick := s.minExternalTick + offsetTicks
	if !s.extQueue.TryPush(externalEvent{tick: tick, handler: handler, payload: payload}) {
		return 0, errs.New(errs.KindConstraint, "external event queue is full")
	}
	return tick, nil
}

// drainExternal drains the external inbox into the heap. Must be called
// from the owning goroutine only. extNext counts up for the scheduler's
// whole lifetime, so external events that land on the same tick keep their
// FIFO order even when they arrive in different drains. The band has room
// for externalSeqCeiling events; nothing checks that bound.
func (s *Scheduler) drainExternal() {
	for {
		ev, ok := s.extQueue.TryPop()
		if !ok {
			return
		}
		seq := s.extNext
		s.extNext++
		heap.Push(&s.heap, &scheduledEvent{tick: ev.tick, seq: seq, handler: ev.handler, payload: ev.payload, active: true, owner: s})
	}
}

// Advance runs every event due at or before targetTick, in (tick, seq)
// order. current_tick is updated to each popped group's tick as it is
// dispatched (not just once at the end), and min_external_tick is bumped
// to that tick+1 for the duration of the group's dispatch, per the drain
// protocol. A handler invoked during Advance may itself
// Schedule/Reschedule/Cancel; those calls are applied immediately but
// cannot disturb the event currently dispatching (it has already been
// popped off the heap).
func (s *Scheduler) Advance(targetTick int64) error {
	if s.dispatching {
		return errs.New(errs.KindProgrammer, "Advance called reentrantly from within a handler")
	}
	if targetTick < s.CurrentTick() {
		return errs.New(errs.KindConstraint, "cannot advance to a tick in the past")
	}

	s.drainExternal()
	s.dispatching = true
	defer func() { s.dispatching = false }()

	for len(s.heap) > 0 && s.heap[0].tick <= targetTick {
		tick := s.heap[0].tick
		s.mu.Lock()
		s.currentTick = tick
		s.minExternalTick = tick + 1
		s.mu.Unlock()

		for len(s.heap) > 0 && s.heap[0].tick == tick {
			e := heap.Pop(&s.heap).(*scheduledEvent)
			if !e.active {
				continue
			}
			e.active = false
			e.handler(s, e.tick, e.payload)
			s.drainExternal()
		}
	}

	s.mu.Lock()
	s.currentTick = targetTick
	s.minExternalTick = targetTick
	s.mu.Unlock()
	return nil
}

// RunUntilDrained repeatedly advances to the next queued event's tick
// until the heap is empty or maxTick is reached, then advances the
// remainder to maxTick and marks the scheduler drained. onTick, if
// non-nil, is invoked after each Advance with the tick just reached — the
// headless driver uses it to drive its own per-tick bookkeeping without
// having to poll every intervening tick that has nothing scheduled on it.
func (s *Scheduler) RunUntilDrained(maxTick int64, onTick func(tick int64)) error {
	for len(s.heap) > 0 {
		next := s.heap[0].tick
		if next > maxTick {
			break
		}
		if err := s.Advance(next); err != nil {
			return err
		}
		if onTick != nil {
			onTick(next)
		}
	}
	if s.CurrentTick() < maxTick {
		if err := s.Advance(maxTick); err != nil {
			return err
		}
		if onTick != nil {
			onTick(maxTick)
		}
	}
	s.drained = true
	return nil
}

// Drained reports whether RunUntilDrained has completed.
func (s *Scheduler) Drained() bool { return s.drained }
