// Package driver provides the two ways a match can be run: RealTime, which
// paces ticks against the wall clock at a configurable speed, and
// Headless, which drains every scheduled event as fast as possible with no
// pacing at all (used for stress tests and result-only simulation runs).
//
// Grounded on the teacher's Engine.Start/Stop loop (internal/game/engine.go)
// — a time.Ticker-driven goroutine gated by a stop channel and a mutex —
// generalized with fractional-tick carry and a speed multiplier, neither of
// which the teacher's fixed-TPS ticker needed.
package driver

import (
	"runtime"
	"sync"
	"time"

	"github.com/fight-club/matchsim/internal/errs"
)

// Advancer is anything that can be driven tick by tick. *match.Match
// satisfies it: AdvanceOne calls Scheduler.Advance, whose handlers run the
// physics/vision/AI dispatch for the tick, then updates the match clock and
// half-time state.
type Advancer interface {
	AdvanceOne() error
	CurrentTick() int64
}

// BulkAdvancer is anything that can run every event it has scheduled up to
// a sentinel tick as fast as possible, with no per-tick wall-clock pacing.
// *match.Match satisfies this by delegating to scheduler.Scheduler's
// RunUntilDrained.
type BulkAdvancer interface {
	RunUntilDrained(maxTick int64, onTick func(tick int64)) error
	CurrentTick() int64
}

// Hooks are optional callbacks the driver invokes around each batch of
// ticks — used to publish a snapshot or record wall-clock pacing metrics
// without the driver itself depending on the control plane.
type Hooks struct {
	OnTick     func(tick int64)
	OnBehind   func(ticksBehind int64) // called when real time has outrun the simulation
}

// RealTime paces ticks against the wall clock. Each tick is TickDuration
// real seconds by default; Speed scales that — 2.0 runs twice as fast as
// real time, 0.5 half as fast.
type RealTime struct {
	adv          Advancer
	tickDuration time.Duration
	hooks        Hooks

	mu      sync.Mutex
	speed   float64
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRealTime creates a real-time driver at 1x speed.
func NewRealTime(adv Advancer, tickDuration time.Duration, hooks Hooks) *RealTime {
	return &RealTime{
		adv:          adv,
		tickDuration: tickDuration,
		hooks:        hooks,
		speed:        1.0,
	}
}

// SetSpeed changes the pacing multiplier, safe to call while running.
func (r *RealTime) SetSpeed(speed float64) error {
	if speed <= 0 {
		return errs.New(errs.KindConstraint, "speed must be positive")
	}
	r.mu.Lock()
	r.speed = speed
	r.mu.Unlock()
	return nil
}

// Speed returns the current pacing multiplier.
func (r *RealTime) Speed() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speed
}

// Start launches the pacing loop on a new goroutine. A no-op if already
// running.
func (r *RealTime) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	go r.loop()
}

// Stop signals the pacing loop to exit and waits for it to finish the
// tick currently in flight.
func (r *RealTime) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	stopCh := r.doneCh
	r.mu.Unlock()

	<-stopCh
}

// loop implements the fractional-tick-carry pacing algorithm: each
// iteration measures elapsed wall time since the last iteration, converts
// it to a (possibly fractional) tick count scaled by Speed, carries the
// fractional remainder forward, and advances by however many whole ticks
// accumulated, all in the same iteration. When more than four ticks are
// owed at once, OnBehind is called with the count before they are
// advanced. When no whole tick is owed, the loop yields without sleeping
// for its first 50 idle iterations, then sleeps 4 ms per iteration until
// a tick is owed again.
func (r *RealTime) loop() {
	defer close(r.doneCh)

	last := time.Now()
	var carry float64 // ticks owed but not yet advanced, always in [0, 1)
	idle := 0         // consecutive iterations with no whole tick owed

	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		now := time.Now()
		elapsed := now.Sub(last)
		last = now

		r.mu.Lock()
		speed := r.speed
		r.mu.Unlock()

		owed := carry + elapsed.Seconds()*speed/r.tickDuration.Seconds()
		whole := int64(owed)
		carry = owed - float64(whole)

		if whole > 4 && r.hooks.OnBehind != nil {
			r.hooks.OnBehind(whole)
		}

		for i := int64(0); i < whole; i++ {
			if err := r.adv.AdvanceOne(); err != nil {
				return
			}
			if r.hooks.OnTick != nil {
				r.hooks.OnTick(r.adv.CurrentTick())
			}
		}

		if whole > 0 {
			idle = 0
		} else if idle < 50 {
			// Nothing due yet — yield without sleeping to keep latency low.
			idle++
			runtime.Gosched()
		} else {
			// Still nothing due — back off to short sleeps rather than busy-spinning.
			time.Sleep(4 * time.Millisecond)
		}
	}
}

// Headless drains every scheduled event with no wall-clock pacing at all —
// for batch simulation runs and stress tests where only the final result
// matters, not real-time playback.
type Headless struct {
	adv BulkAdvancer
}

// NewHeadless creates a headless driver over adv.
func NewHeadless(adv BulkAdvancer) *Headless {
	return &Headless{adv: adv}
}

// Run drains every event scheduled up to sentinelTick — the caller's
// deterministic upper bound on how long the match can possibly run — and
// returns once the scheduler reports itself drained, calling onTick after
// each tick reached if provided.
func (h *Headless) Run(sentinelTick int64, onTick func(tick int64)) error {
	return h.adv.RunUntilDrained(sentinelTick, onTick)
}
