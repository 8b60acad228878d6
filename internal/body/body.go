package body

import (
	"github.com/fight-club/matchsim/internal/errs"
	"github.com/fight-club/matchsim/internal/geom"
)

var errHeadAngleOutOfRange = errs.New(errs.KindConstraint, "head angle exceeds +/-80 degrees from body")

// Body is a player's kinematic state: position, velocity, facing
// direction, and head orientation. Combat/possession/stamina state lives
// elsewhere; this struct is purely "where is the player and which way are
// they facing."
type Body struct {
	Position geom.Vec2
	Velocity geom.Vec2
	BodyDir  geom.Vec2 // unit vector

	HeadAngle float64 // radians, relative to BodyDir, clamped to +/-80deg
	Head      HeadState
}

// MaxHeadAngle is the +/-80 degree clamp on head rotation relative to the
// body, expressed in radians.
const MaxHeadAngle = 80.0 * 3.14159265358979 / 180.0

// New creates a body at rest, facing +X, at pos.
func New(pos geom.Vec2) *Body {
	return &Body{
		Position: pos,
		BodyDir:  geom.Vec2{1, 0},
		Head:     HeadState{Behavior: HeadFollowBody},
	}
}

// SetBodyAngle sets BodyDir from an absolute heading in radians.
func (b *Body) SetBodyAngle(theta float64) {
	b.BodyDir = geom.FromAngle(theta)
}

// BodyAngle returns the current heading in radians.
func (b *Body) BodyAngle() float64 {
	return geom.AngleOf(b.BodyDir)
}

// SetHeadAngleStrict sets the head's relative angle, rejecting anything
// outside +/-80 degrees rather than clamping it.
func (b *Body) SetHeadAngleStrict(relAngle float64) error {
	if relAngle > MaxHeadAngle || relAngle < -MaxHeadAngle {
		return errHeadAngleOutOfRange
	}
	b.HeadAngle = relAngle
	return nil
}

// SetHeadAngleClamped sets the head's relative angle, silently clamping
// to +/-80 degrees.
func (b *Body) SetHeadAngleClamped(relAngle float64) {
	b.HeadAngle = geom.ClampFloat(relAngle, -MaxHeadAngle, MaxHeadAngle)
}

// LookAtClamped rotates the head toward target, expressed relative to
// BodyDir, clamped to +/-80 degrees — the smallest signed rotation that
// points the head at target.
func (b *Body) LookAtClamped(target geom.Vec2) {
	toTarget := target.Sub(b.Position)
	if toTarget.Len() < 1e-9 {
		return
	}
	bodyAngle := geom.AngleOf(b.BodyDir)
	targetAngle := geom.AngleOf(toTarget)
	rel := geom.SignedAngleDiff(bodyAngle, targetAngle)
	b.SetHeadAngleClamped(rel)
}
