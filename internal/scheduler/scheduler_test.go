package scheduler

import (
	"errors"
	"sync"
	"testing"

	"github.com/fight-club/matchsim/internal/errs"
)

// TestOrdering verifies events fire in (tick, seq) order and CurrentTick
// lands on the requested target even when the heap is empty in between.
func TestOrdering(t *testing.T) {
	s := New()
	var order []string

	s.Schedule(5, func(s *Scheduler, tick int64, payload any) {
		order = append(order, payload.(string))
	}, "b")
	s.Schedule(5, func(s *Scheduler, tick int64, payload any) {
		order = append(order, payload.(string))
	}, "c")
	s.Schedule(3, func(s *Scheduler, tick int64, payload any) {
		order = append(order, payload.(string))
	}, "a")

	if err := s.Advance(10); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.CurrentTick() != 10 {
		t.Errorf("CurrentTick = %d, want 10", s.CurrentTick())
	}

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

// TestExternalPrecedesInternalSameTick verifies the external sequence
// band always sorts before internal events scheduled for the same tick.
func TestExternalPrecedesInternalSameTick(t *testing.T) {
	s := New()
	ext, err := s.TakeExternalHandle()
	if err != nil {
		t.Fatalf("TakeExternalHandle: %v", err)
	}

	var order []string
	s.Schedule(1, func(s *Scheduler, tick int64, payload any) {
		order = append(order, "internal")
	}, nil)
	if _, err := ext.ScheduleExternal(1, func(s *Scheduler, tick int64, payload any) {
		order = append(order, "external")
	}, nil); err != nil {
		t.Fatalf("ScheduleExternal: %v", err)
	}

	if err := s.Advance(1); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if len(order) != 2 || order[0] != "external" || order[1] != "internal" {
		t.Fatalf("order = %v, want [external internal]", order)
	}
}

// TestExternalHandleSingleUse verifies a second TakeExternalHandle call
// fails with a programmer error rather than silently succeeding.
func TestExternalHandleSingleUse(t *testing.T) {
	s := New()
	if _, err := s.TakeExternalHandle(); err != nil {
		t.Fatalf("first TakeExternalHandle: %v", err)
	}
	_, err := s.TakeExternalHandle()
	if err == nil {
		t.Fatal("expected error on second TakeExternalHandle")
	}
	var te *errs.TaxonomyError
	if !errors.As(err, &te) || te.Kind != errs.KindProgrammer {
		t.Errorf("expected KindProgrammer, got %v", err)
	}
}

// TestCancel verifies a canceled event never fires.
func TestCancel(t *testing.T) {
	s := New()
	fired := false
	h, err := s.Schedule(5, func(s *Scheduler, tick int64, payload any) {
		fired = true
	}, nil)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	s.Cancel(h)

	if err := s.Advance(10); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if fired {
		t.Error("canceled event fired")
	}
}

// TestReschedule verifies moving an event to a later tick delays it past
// an Advance that would otherwise have fired it.
func TestReschedule(t *testing.T) {
	s := New()
	var firedAtTick int64 = -1
	h, _ := s.Schedule(5, func(s *Scheduler, tick int64, payload any) {
		firedAtTick = tick
	}, nil)

	if err := s.Reschedule(h, 20); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	s.Advance(10)
	if firedAtTick != -1 {
		t.Fatalf("event fired early at tick %d", firedAtTick)
	}

	s.Advance(20)
	if firedAtTick != 20 {
		t.Fatalf("firedAtTick = %d, want 20", firedAtTick)
	}
}

// TestRescheduleAssignsFreshSeq verifies a rescheduled event sorts after
// events scheduled onto the same tick in between, rather than retaining
// its original FIFO position.
func TestRescheduleAssignsFreshSeq(t *testing.T) {
	s := New()
	var order []string
	h, _ := s.Schedule(1, func(s *Scheduler, tick int64, payload any) {
		order = append(order, "rescheduled")
	}, nil)

	if err := s.Reschedule(h, 5); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	s.Schedule(5, func(s *Scheduler, tick int64, payload any) {
		order = append(order, "scheduled-after")
	}, nil)

	if err := s.Advance(5); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	want := []string{"scheduled-after", "rescheduled"}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

// TestForeignHandleRejected verifies Reschedule/Cancel refuse a handle
// issued by a different Scheduler.
func TestForeignHandleRejected(t *testing.T) {
	a := New()
	b := New()
	h, _ := a.Schedule(1, func(s *Scheduler, tick int64, payload any) {}, nil)

	if err := b.Reschedule(h, 1); err == nil {
		t.Fatal("expected error rescheduling a foreign handle")
	} else {
		var te *errs.TaxonomyError
		if !errors.As(err, &te) || te.Kind != errs.KindProgrammer {
			t.Errorf("expected KindProgrammer, got %v", err)
		}
	}
	if b.Cancel(h) {
		t.Error("expected Cancel on a foreign handle to report false")
	}
	if err := a.Reschedule(h, 1); err != nil {
		t.Errorf("Reschedule against the owning scheduler should still succeed: %v", err)
	}
}

// TestHandlerCanScheduleMore verifies a handler may schedule further
// events without Advance recursing or deadlocking.
func TestHandlerCanScheduleMore(t *testing.T) {
	s := New()
	count := 0
	var chain Handler
	chain = func(s *Scheduler, tick int64, payload any) {
		count++
		if count < 3 {
			s.Schedule(1, chain, nil)
		}
	}
	s.Schedule(1, chain, nil)

	if err := s.Advance(10); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

// TestReentrantAdvanceRejected verifies Advance called from within a
// handler returns a programmer error instead of corrupting the heap.
func TestReentrantAdvanceRejected(t *testing.T) {
	s := New()
	var innerErr error
	s.Schedule(1, func(s *Scheduler, tick int64, payload any) {
		innerErr = s.Advance(2)
	}, nil)

	if err := s.Advance(5); err != nil {
		t.Fatalf("outer Advance: %v", err)
	}
	if innerErr == nil {
		t.Fatal("expected reentrant Advance to error")
	}
}

// TestScheduleNegativeOffsetRejected verifies the constraint violation
// path: a tick offset is always relative to "now", so it can never be
// negative regardless of how far the scheduler has already advanced.
func TestScheduleNegativeOffsetRejected(t *testing.T) {
	s := New()
	s.Advance(10)

	_, err := s.Schedule(-1, func(s *Scheduler, tick int64, payload any) {}, nil)
	if err == nil {
		t.Fatal("expected error scheduling with a negative offset")
	}
	var te *errs.TaxonomyError
	if !errors.As(err, &te) || te.Kind != errs.KindConstraint {
		t.Errorf("expected KindConstraint, got %v", err)
	}

	// a zero offset still lands on "now", not the tick it was issued at
	// some other time relative to.
	h, err := s.Schedule(0, func(s *Scheduler, tick int64, payload any) {}, nil)
	if err != nil {
		t.Fatalf("Schedule with zero offset: %v", err)
	}
	if h.event.tick != 10 {
		t.Errorf("zero-offset schedule landed on tick %d, want 10", h.event.tick)
	}
}

// TestQueriesReflectDrainProtocol verifies the min_external_tick invariant:
// it tracks current_tick while idle and current_tick+1 while an Advance
// spanning multiple ticks is mid-drain.
func TestQueriesReflectDrainProtocol(t *testing.T) {
	s := New()
	if s.HasPendingEvents() {
		t.Error("expected no pending events on a fresh scheduler")
	}
	if _, ok := s.NextScheduledTick(); ok {
		t.Error("expected NextScheduledTick to report false when empty")
	}

	var seenMinExternal int64 = -1
	s.Schedule(5, func(s *Scheduler, tick int64, payload any) {
		seenMinExternal = s.MinExternalTick()
	}, nil)

	if next, ok := s.NextScheduledTick(); !ok || next != 5 {
		t.Errorf("NextScheduledTick = (%d, %v), want (5, true)", next, ok)
	}
	if s.NextTick() != 1 {
		t.Errorf("NextTick = %d, want 1", s.NextTick())
	}

	if err := s.Advance(5); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if seenMinExternal != 6 {
		t.Errorf("MinExternalTick during dispatch = %d, want 6", seenMinExternal)
	}
	if s.MinExternalTick() != 5 {
		t.Errorf("MinExternalTick after Advance = %d, want 5 (idle)", s.MinExternalTick())
	}
}

// TestConcurrentExternalSchedule verifies ScheduleExternal is safe to call
// from a goroutine other than the one driving Advance.
func TestConcurrentExternalSchedule(t *testing.T) {
	s := New()
	ext, _ := s.TakeExternalHandle()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ext.ScheduleExternal(1, func(s *Scheduler, tick int64, payload any) {
				mu.Lock()
				count++
				mu.Unlock()
			}, nil)
		}()
	}
	wg.Wait()

	if err := s.Advance(1); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}

// TestRunUntilDrained verifies the headless-style drain runs every
// scheduled event up to maxTick and marks the scheduler drained.
func TestRunUntilDrained(t *testing.T) {
	s := New()
	fired := 0
	var ticksSeen []int64
	s.Schedule(1, func(s *Scheduler, tick int64, payload any) {
		fired++
		s.Schedule(5, func(s *Scheduler, tick int64, payload any) {
			fired++
		}, nil)
	}, nil)

	onTick := func(tick int64) { ticksSeen = append(ticksSeen, tick) }
	if err := s.RunUntilDrained(100, onTick); err != nil {
		t.Fatalf("RunUntilDrained: %v", err)
	}
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
	if !s.Drained() {
		t.Error("expected Drained() to be true")
	}
	if len(ticksSeen) == 0 || ticksSeen[len(ticksSeen)-1] != 100 {
		t.Errorf("ticksSeen = %v, want last tick to be 100", ticksSeen)
	}
}
