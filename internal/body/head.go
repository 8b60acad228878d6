package body

import (
	"github.com/fight-club/matchsim/internal/geom"
	"github.com/fight-club/matchsim/internal/rng"
)

// HeadBehavior discriminates the five head-movement states.
type HeadBehavior int

const (
	HeadFollowBody HeadBehavior = iota
	HeadLookAtTarget
	HeadLookAtDestination
	HeadCheckShoulder
	HeadLookAround
)

// HeadState tracks the player's current head behavior and its timing.
type HeadState struct {
	Behavior         HeadBehavior
	TargetRelAngle   float64
	StartedTick      int64
	EndTick          int64
	NextLookAroundAt int64
}

// headRotationRate is the head's angular speed in radians/sec.
const headRotationRate = 6.0

// UpdateHead advances the head-movement state machine by one physics
// step. destination is the body's current movement target, kept current
// while LOOK_AT_DESTINATION is active. The probabilistic entry into
// LOOK_AT_DESTINATION is not decided here — see TriggerLookAtDestination.
func (b *Body) UpdateHead(dt float64, currentTick int64, source *rng.Source, destination *geom.Vec2) {
	h := &b.Head

	if h.Behavior != HeadFollowBody && currentTick >= h.EndTick {
		h.Behavior = HeadFollowBody
		h.TargetRelAngle = 0
	}

	if h.Behavior == HeadFollowBody {
		if h.NextLookAroundAt == 0 {
			h.NextLookAroundAt = currentTick + int64(source.IntRange(800, 2500))
		}
		if currentTick >= h.NextLookAroundAt {
			angle := source.FloatRange(-MaxHeadAngle*0.8, MaxHeadAngle*0.8)
			h.Behavior = HeadLookAround
			h.TargetRelAngle = angle
			h.StartedTick = currentTick
			h.EndTick = currentTick + 350
			h.NextLookAroundAt = currentTick + int64(source.IntRange(800, 2500))
		}
	} else if h.Behavior == HeadLookAtDestination && destination != nil {
		b.computeLookAtDestination(*destination)
	}

	b.rotateHeadToward(h.TargetRelAngle, dt)
}

// TriggerLookAtDestination probabilistically breaks FollowBody into
// LookAtDestination — a 5% chance per AI tick while moving (§4.7.5). Callers
// must invoke this once per AI tick, not once per physics tick, or the
// trigger rate inflates by the physics/AI tick ratio.
func (b *Body) TriggerLookAtDestination(source *rng.Source, currentTick int64, destination geom.Vec2, moving bool) {
	if b.Head.Behavior != HeadFollowBody || !moving || !source.Chance(0.05) {
		return
	}
	b.Head.Behavior = HeadLookAtDestination
	b.Head.StartedTick = currentTick
	b.Head.EndTick = currentTick + 400
	b.computeLookAtDestination(destination)
}

func (b *Body) computeLookAtDestination(destination geom.Vec2) {
	toDest := destination.Sub(b.Position)
	if toDest.Len() < 1e-9 {
		return
	}
	bodyAngle := geom.AngleOf(b.BodyDir)
	destAngle := geom.AngleOf(toDest)
	b.Head.TargetRelAngle = geom.ClampFloat(geom.SignedAngleDiff(bodyAngle, destAngle), -MaxHeadAngle, MaxHeadAngle)
}

// TriggerLookAtTarget interrupts FollowBody/LookAround to look directly at
// target for durationMs — used for ball-watching and marking checks.
func (b *Body) TriggerLookAtTarget(target geom.Vec2, currentTick int64, durationMs int) {
	b.Head.Behavior = HeadLookAtTarget
	b.Head.StartedTick = currentTick
	b.Head.EndTick = currentTick + int64(durationMs)
	b.computeLookAtDestination(target)
}

// TriggerCheckShoulder interrupts FollowBody for a quick over-the-shoulder
// glance — the AI calls this before receiving a pass under pressure.
func (b *Body) TriggerCheckShoulder(source *rng.Source, currentTick int64) {
	sign := 1.0
	if source.Chance(0.5) {
		sign = -1.0
	}
	b.Head.Behavior = HeadCheckShoulder
	b.Head.TargetRelAngle = sign * MaxHeadAngle
	b.Head.StartedTick = currentTick
	b.Head.EndTick = currentTick + 300
}

func (b *Body) rotateHeadToward(target float64, dt float64) {
	delta := target - b.HeadAngle
	maxStep := headRotationRate * dt
	if delta > maxStep {
		delta = maxStep
	} else if delta < -maxStep {
		delta = -maxStep
	}
	b.HeadAngle = geom.ClampFloat(b.HeadAngle+delta, -MaxHeadAngle, MaxHeadAngle)
}
