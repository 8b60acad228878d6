package driver

import (
	"sync/atomic"
	"testing"
	"time"
)

type fakeAdvancer struct {
	tick int64
}

func (f *fakeAdvancer) AdvanceOne() error {
	atomic.AddInt64(&f.tick, 1)
	return nil
}

func (f *fakeAdvancer) CurrentTick() int64 {
	return atomic.LoadInt64(&f.tick)
}

// RunUntilDrained satisfies BulkAdvancer by simply advancing one tick at a
// time up to maxTick — fakeAdvancer never has anything "scheduled", so
// every tick up to the sentinel counts as due.
func (f *fakeAdvancer) RunUntilDrained(maxTick int64, onTick func(tick int64)) error {
	for f.CurrentTick() < maxTick {
		if err := f.AdvanceOne(); err != nil {
			return err
		}
		if onTick != nil {
			onTick(f.CurrentTick())
		}
	}
	return nil
}

// TestRealTimeAdvancesOverWallClock verifies the pacing loop advances
// roughly one tick per tick duration at 1x speed.
func TestRealTimeAdvancesOverWallClock(t *testing.T) {
	adv := &fakeAdvancer{}
	d := NewRealTime(adv, 10*time.Millisecond, Hooks{})

	d.Start()
	time.Sleep(120 * time.Millisecond)
	d.Stop()

	got := adv.CurrentTick()
	if got < 5 || got > 20 {
		t.Errorf("tick = %d, want roughly 12 (range [5,20] for test tolerance)", got)
	}
}

// TestRealTimeSpeedMultiplier verifies a higher speed advances more ticks
// in the same wall-clock window.
func TestRealTimeSpeedMultiplier(t *testing.T) {
	adv := &fakeAdvancer{}
	d := NewRealTime(adv, 10*time.Millisecond, Hooks{})
	d.SetSpeed(4.0)

	d.Start()
	time.Sleep(120 * time.Millisecond)
	d.Stop()

	got := adv.CurrentTick()
	if got < 20 {
		t.Errorf("tick = %d at 4x speed, want at least 20", got)
	}
}

// TestSetSpeedRejectsNonPositive verifies the constraint check.
func TestSetSpeedRejectsNonPositive(t *testing.T) {
	d := NewRealTime(&fakeAdvancer{}, 10*time.Millisecond, Hooks{})
	if err := d.SetSpeed(0); err == nil {
		t.Error("expected error for zero speed")
	}
	if err := d.SetSpeed(-1); err == nil {
		t.Error("expected error for negative speed")
	}
}

// TestHeadlessRun verifies the headless driver drains to the sentinel
// tick with no pacing delay.
func TestHeadlessRun(t *testing.T) {
	adv := &fakeAdvancer{}
	h := NewHeadless(adv)

	var seen []int64
	if err := h.Run(50, func(tick int64) {
		seen = append(seen, tick)
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if adv.CurrentTick() != 50 {
		t.Errorf("CurrentTick = %d, want 50", adv.CurrentTick())
	}
	if len(seen) != 50 {
		t.Errorf("onTick called %d times, want 50", len(seen))
	}
}

// TestStopIsIdempotent verifies a second Stop call doesn't block or panic.
func TestStopIsIdempotent(t *testing.T) {
	d := NewRealTime(&fakeAdvancer{}, 10*time.Millisecond, Hooks{})
	d.Start()
	time.Sleep(20 * time.Millisecond)
	d.Stop()
	d.Stop()
}
