// Package ball wraps ballphysics.State with the higher-level bookkeeping the
// rest of the match engine actually touches: held/stopped/on-ground flags,
// holder identity, the derived 2D position, and (de)serialization for the
// control-plane snapshot.
package ball

import (
	"github.com/fight-club/matchsim/internal/ballphysics"
	"github.com/fight-club/matchsim/internal/geom"
)

// IsStoppedSpeed is the §3.1 threshold for the `is_stopped` flag — distinct
// from ballphysics.Config.StopSpeed, which governs when the physics step
// itself snaps velocity to zero.
const IsStoppedSpeed = 0.1

// Ball is the match-visible ball state.
type Ball struct {
	cfg   ballphysics.Config
	state ballphysics.State

	Position2D geom.Vec2 // derived: (Position.x, Position.z)
	OnGround   bool
	IsStopped  bool
	IsHeld     bool
	HeldBy     string // player id, "" if not held
}

// New creates a ball at rest on the kickoff spot.
func New(cfg ballphysics.Config) *Ball {
	b := &Ball{cfg: cfg}
	b.Reposition(0, 0)
	return b
}

// Position returns the current 3D position.
func (b *Ball) Position() geom.Vec3 { return b.state.Position }

// Velocity returns the current 3D velocity.
func (b *Ball) Velocity() geom.Vec3 { return b.state.Velocity }

// Speed returns the cached scalar speed.
func (b *Ball) Speed() float64 { return b.state.Speed }

// Update advances ball physics by dt seconds using the given air density,
// unless the ball is currently held (a no-op per §4.5). Must be called every
// ball-physics tick.
func (b *Ball) Update(dt, airDensity float64) {
	if b.IsHeld {
		return
	}
	b.state = ballphysics.Step(b.state, b.cfg, dt, airDensity)
	b.syncDerived()
}

// Reposition places the ball stationary on the ground at (x, y), with an
// optional height h (defaults to the ball radius, i.e. resting). Zeroes
// velocity and spin, and releases any holder.
func (b *Ball) Reposition(x, y float64, h ...float64) {
	height := b.cfg.Radius
	if len(h) > 0 {
		height = h[0]
	}
	b.state = ballphysics.State{Position: geom.Vec3{x, height, y}}
	b.IsHeld = false
	b.HeldBy = ""
	b.syncDerived()
}

// DropKick places the ball airborne at (x, y, h) with zero velocity and
// releases it from any holder — the initial state of a goal kick or
// keeper's punt before a kick intention imparts velocity.
func (b *Ball) DropKick(x, y float64, h float64) {
	if h <= 0 {
		h = 1.5
	}
	b.state = ballphysics.State{Position: geom.Vec3{x, h, y}}
	b.IsHeld = false
	b.HeldBy = ""
	b.syncDerived()
}

// Possess marks the ball as held by playerID, freezing physics integration.
func (b *Ball) Possess(playerID string) {
	b.IsHeld = true
	b.HeldBy = playerID
	b.state.Velocity = geom.Vec3{}
	b.state.Speed = 0
	b.syncDerived()
}

// Release clears held state without moving the ball, e.g. immediately
// before a kick intention applies an impulse.
func (b *Ball) Release() {
	b.IsHeld = false
	b.HeldBy = ""
}

// ApplyImpulse adds to the ball's velocity directly — used by kick/pass/shot
// intentions to launch the ball. Has no effect while held; callers must
// Release first.
func (b *Ball) ApplyImpulse(v geom.Vec3) {
	if b.IsHeld {
		return
	}
	b.state.Velocity = b.state.Velocity.Add(v)
	b.state.Speed = b.state.Velocity.Len()
}

func (b *Ball) syncDerived() {
	b.Position2D = geom.To2D(b.state.Position)
	b.OnGround = ballphysics.OnGround(b.state, b.cfg)
	b.IsStopped = b.state.Speed < IsStoppedSpeed
}

// Snapshot is an immutable, value-typed copy of ball state safe to hand
// across the lock-free snapshot boundary to the control plane.
type Snapshot struct {
	X, Y, Z       float64
	VX, VY, VZ    float64
	Speed         float64
	OnGround      bool
	IsStopped     bool
	IsHeld        bool
	HeldBy        string
}

// ToSnapshot copies the current state into a Snapshot value.
func (b *Ball) ToSnapshot() Snapshot {
	p, v := b.state.Position, b.state.Velocity
	return Snapshot{
		X: p[0], Y: p[1], Z: p[2],
		VX: v[0], VY: v[1], VZ: v[2],
		Speed:     b.state.Speed,
		OnGround:  b.OnGround,
		IsStopped: b.IsStopped,
		IsHeld:    b.IsHeld,
		HeldBy:    b.HeldBy,
	}
}
