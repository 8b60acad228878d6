package body

import (
	"math"

	"github.com/fight-club/matchsim/internal/geom"
)

// DefaultMaxSpeed is the sprint ceiling used when an intention doesn't
// specify one via SpeedHint.
const DefaultMaxSpeed = 9.5

// ArriveRadius is the distance at which Arrive begins scaling target speed
// toward zero.
const ArriveRadius = 2.0

// TargetRadius is the distance at which Arrive's target speed reaches
// zero.
const TargetRadius = 0.3

// AvoidanceRadius is the neighbor radius collision avoidance repels
// within.
const AvoidanceRadius = 2.0

// AvoidanceForceScale is the coefficient in the avoidance repulsion curve.
const AvoidanceForceScale = 8.0

// SteeringOutput is the reusable result every steering behavior fills in.
type SteeringOutput struct {
	Linear               geom.Vec2
	FaceDirection        geom.Vec2 // unit vector
	Arrived              bool
	ResolvedMovementMode MovementMode
	MaxSpeed             float64
}

// Seek produces a straight-line pursuit of target at maxSpeed, facing the
// direction of travel (ModeForward).
func Seek(b *Body, target geom.Vec2, maxSpeed float64) SteeringOutput {
	toTarget := target.Sub(b.Position)
	dir := geom.NormalizeOrZero(toTarget)
	desired := dir.Mul(maxSpeed)
	return SteeringOutput{
		Linear:               desired.Sub(b.Velocity),
		FaceDirection:        dir,
		ResolvedMovementMode: ModeForward,
		MaxSpeed:             maxSpeed,
	}
}

// Arrive seeks target but decelerates within ArriveRadius, resolves
// AUTO movement mode from the angle between body facing and travel
// direction, applies the angle-speed penalty, and anticipates the final
// face direction as the player closes in.
func Arrive(b *Body, target geom.Vec2, faceTarget *geom.Vec2, maxSpeed float64, mode MovementMode) SteeringOutput {
	toTarget := target.Sub(b.Position)
	dist := toTarget.Len()
	dir := geom.NormalizeOrZero(toTarget)

	targetSpeed := maxSpeed
	arrived := false
	if dist < TargetRadius {
		targetSpeed = 0
		arrived = true
	} else if dist < ArriveRadius {
		targetSpeed = maxSpeed * (dist - TargetRadius) / (ArriveRadius - TargetRadius)
	}

	bodyAngle := geom.AngleOf(b.BodyDir)
	travelAngle := geom.AngleOf(dir)
	angleToMovement := geom.SignedAngleDiff(bodyAngle, travelAngle)
	absAngle := math.Abs(angleToMovement)

	resolved := mode
	if mode == ModeAuto {
		switch {
		case absAngle > math.Pi*0.5 && dist < 3.0:
			resolved = ModeBackward
		case absAngle > 72.0*math.Pi/180.0:
			if angleToMovement > 0 {
				resolved = ModeStrafeRight
			} else {
				resolved = ModeStrafeLeft
			}
		default:
			resolved = ModeForward
		}
	}

	angleSpeedFactor := math.Max(0.4, math.Cos(absAngle/2))
	targetSpeed *= angleSpeedFactor

	desired := dir.Mul(targetSpeed)

	face := dir
	if faceTarget != nil && dist < 3.0 {
		finalDir := geom.NormalizeOrZero(faceTarget.Sub(b.Position))
		t := 1 - dist/3.0
		face = geom.NormalizeOrZero(geom.LerpVec2(dir, finalDir, geom.Clamp01(t)))
	}

	return SteeringOutput{
		Linear:               desired.Sub(b.Velocity),
		FaceDirection:        face,
		Arrived:              arrived,
		ResolvedMovementMode: resolved,
		MaxSpeed:             maxSpeed,
	}
}

// Pursue is a stub: seek the target's current position. A true intercept
// prediction (using target velocity) is a candidate future refinement,
// not required by any current intention type.
func Pursue(b *Body, targetPos geom.Vec2, targetVel geom.Vec2, maxSpeed float64) SteeringOutput {
	return Seek(b, targetPos, maxSpeed)
}

// Face turns toward target with zero linear motion — holding position
// while tracking a player or the ball.
func Face(b *Body, target geom.Vec2) SteeringOutput {
	dir := geom.NormalizeOrZero(target.Sub(b.Position))
	return SteeringOutput{
		FaceDirection:        dir,
		ResolvedMovementMode: ModeForward,
		MaxSpeed:             0,
	}
}

// NeighborQuery looks up nearby entity positions for collision avoidance
// — satisfied by a thin adapter over spatial.Grid plus the caller's
// position slice.
type NeighborQuery interface {
	Neighbors(pos geom.Vec2, radius float64) []geom.Vec2
}

// ApplyCollisionAvoidance adds a repulsive modifier to out.Linear for up
// to the 8 nearest neighbors within AvoidanceRadius, scaled by
// AvoidanceForceScale*(1-d/r)^2. A no-op when the primary behavior left
// the player idle (MaxSpeed == 0 and Linear == zero vector).
func ApplyCollisionAvoidance(out SteeringOutput, selfPos geom.Vec2, neighbors []geom.Vec2) SteeringOutput {
	if out.MaxSpeed == 0 && out.Linear == (geom.Vec2{}) {
		return out
	}

	type scored struct {
		pos geom.Vec2
		d   float64
	}
	near := make([]scored, 0, len(neighbors))
	for _, n := range neighbors {
		d := selfPos.Sub(n).Len()
		if d > 0 && d < AvoidanceRadius {
			near = append(near, scored{n, d})
		}
	}

	// Partial selection of the 8 closest — insertion into a small slice is
	// cheaper than a full sort for the expected neighbor counts.
	limit := 8
	for i := 0; i < len(near); i++ {
		minIdx := i
		for j := i + 1; j < len(near); j++ {
			if near[j].d < near[minIdx].d {
				minIdx = j
			}
		}
		near[i], near[minIdx] = near[minIdx], near[i]
		if i+1 >= limit {
			break
		}
	}
	if len(near) > limit {
		near = near[:limit]
	}

	repulsion := geom.Vec2{}
	for _, n := range near {
		away := geom.NormalizeOrZero(selfPos.Sub(n.pos))
		mag := AvoidanceForceScale * math.Pow(1-n.d/AvoidanceRadius, 2)
		repulsion = repulsion.Add(away.Mul(mag))
	}

	out.Linear = out.Linear.Add(repulsion)
	return out
}
