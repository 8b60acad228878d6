package body

import (
	"math"

	"github.com/fight-club/matchsim/internal/geom"
)

// MinAngularSpeed and MaxAngularSpeed bound how fast BodyDir can rotate,
// interpolated by current speed.
const (
	MinAngularSpeed = 2.0 // rad/s, at rest
	MaxAngularSpeed = 8.0 // rad/s, at full sprint
)

// BrakeDeceleration is applied when steering calls for no linear force but
// the player is still moving — stopping on a dime, not gliding.
const BrakeDeceleration = 12.0

// linearEpsilon and speedEpsilon gate when braking kicks in.
const (
	linearEpsilon = 1e-3
	speedEpsilon  = 1e-2
)

// Integrate advances Body by one fixed physics step (conventionally 16ms)
// given this tick's steering output, in the five-stage order specified for
// the physics integrator: linear accel, angular steering, braking, speed
// clamp, position integration.
func Integrate(b *Body, out SteeringOutput, dt float64) {
	b.Velocity = b.Velocity.Add(out.Linear.Mul(dt))

	if out.FaceDirection != (geom.Vec2{}) {
		bodyAngle := geom.AngleOf(b.BodyDir)
		targetAngle := geom.AngleOf(out.FaceDirection)
		delta := geom.SignedAngleDiff(bodyAngle, targetAngle)

		// Angular-speed ramp is keyed to the sprint ceiling, not this
		// intention's own speed hint — a player walking near their 1.5 m/s
		// WALK ceiling still turns at a walking rate, not a sprinting one.
		speed := b.Velocity.Len()
		t := geom.Clamp01(speed / DefaultMaxSpeed)
		angularSpeed := geom.Lerp(MinAngularSpeed, MaxAngularSpeed, t)

		maxStep := angularSpeed * dt
		if math.Abs(delta) < maxStep {
			bodyAngle += delta
		} else if delta > 0 {
			bodyAngle += maxStep
		} else {
			bodyAngle -= maxStep
		}
		b.BodyDir = geom.FromAngle(bodyAngle)
	}

	if out.Linear.Len() < linearEpsilon && b.Velocity.Len() > speedEpsilon {
		speed := b.Velocity.Len()
		dir := b.Velocity.Mul(1 / speed)
		newSpeed := speed - BrakeDeceleration*dt
		if newSpeed < 0 {
			newSpeed = 0
		}
		b.Velocity = dir.Mul(newSpeed)
	}

	maxSpeed := out.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = DefaultMaxSpeed
	}
	if speed := b.Velocity.Len(); speed > maxSpeed {
		b.Velocity = b.Velocity.Mul(maxSpeed / speed)
	}

	b.Position = b.Position.Add(b.Velocity.Mul(dt))
}
