// Package ballphysics implements the pure kinematic simulation of the ball:
// gravity, velocity-dependent quadratic drag with a drag-crisis transition,
// ground bounce, sliding friction, and a stop threshold. It knows nothing
// about holders, possession, or the rest of the match — see package ball for
// that wrapper.
package ballphysics

import (
	"math"

	"github.com/fight-club/matchsim/internal/geom"
)

// Config collects the tunable physical constants, grounded on §4.4. The zero
// value is invalid; use DefaultConfig.
type Config struct {
	Gravity          float64 // m/s^2
	Radius           float64 // m
	Mass             float64 // kg
	Restitution      float64 // ground bounce coefficient
	GroundFriction   float64 // sliding friction coefficient (mu_gr)
	AirViscosity     float64 // mu, Pa*s
	StopSpeed        float64 // below this, velocity snaps to zero (m/s)
	MinDragSpeed     float64 // below this, drag is skipped entirely (m/s)
	DragCrisisRe     float64 // Reynolds number at the center of the transition
	DragCrisisWidth  float64 // width of the tanh transition
	DragSubcritical  float64 // C_d below the drag crisis
	DragSupercritical float64 // C_d above the drag crisis
}

// DefaultConfig is a regulation size-5 football: 22cm diameter, 0.43kg,
// standard air/ground constants from §4.4.
func DefaultConfig() Config {
	return Config{
		Gravity:           9.81,
		Radius:            0.11,
		Mass:              0.43,
		Restitution:       0.7,
		GroundFriction:    0.3,
		AirViscosity:      1.81e-5,
		StopSpeed:         0.05,
		MinDragSpeed:      0.01,
		DragCrisisRe:      2e5,
		DragCrisisWidth:   1.5e5,
		DragSubcritical:   0.47,
		DragSupercritical: 0.20,
	}
}

// AirDensity returns rho(T) = 1.2041 * (293.15 / T_kelvin), per §4.4.
func AirDensity(tempKelvin float64) float64 {
	return 1.2041 * (293.15 / tempKelvin)
}

// State is the pure kinematic state of the ball: position and velocity in
// world space, plus spin (unused by the ground-collision-only contract of
// this spec, carried for forward compatibility with post/crossbar physics).
type State struct {
	Position geom.Vec3
	Velocity geom.Vec3
	Spin     geom.Vec3
	Speed    float64 // cached |Velocity|
}

// Step integrates State forward by dt seconds using semi-implicit Euler,
// following the five-stage sequence of §4.4: gravity, drag, position
// integration, ground collision, speed recompute. airDensity should be
// AirDensity(ambientTempKelvin); callers that don't model temperature can
// pass AirDensity(293.15) for a standard 20C day.
func Step(s State, cfg Config, dt, airDensity float64) State {
	vel := s.Velocity

	// 1. Gravity acts on vertical velocity only.
	vel[1] -= cfg.Gravity * dt

	// 2. Quadratic drag with drag-crisis blending.
	speed := vel.Len()
	if speed > cfg.MinDragSpeed {
		diameter := 2 * cfg.Radius
		re := airDensity * speed * diameter / cfg.AirViscosity
		blend := 0.5 * (1 + math.Tanh((re-cfg.DragCrisisRe)/cfg.DragCrisisWidth))
		cd := cfg.DragSubcritical + blend*(cfg.DragSupercritical-cfg.DragSubcritical)

		area := math.Pi * cfg.Radius * cfg.Radius
		dragAccelMag := 0.5 * airDensity * cd * area * speed * speed / cfg.Mass
		dragDir := vel.Mul(-1 / speed)
		dragAccel := dragDir.Mul(dragAccelMag)

		vel = applyDragWithoutSignFlip(vel, dragAccel, dt)
	}

	// 3. Integrate position.
	pos := s.Position.Add(vel.Mul(dt))

	// 4. Ground collision.
	onGround := pos[1] <= cfg.Radius
	if onGround {
		pos[1] = cfg.Radius
		if math.Abs(vel[1]) < 0.1 {
			vel[1] = 0
		} else if vel[1] < 0 {
			vel[1] = -vel[1] * cfg.Restitution
		}

		horiz := geom.Vec2{vel[0], vel[2]}
		horizSpeed := horiz.Len()
		if horizSpeed > 0 {
			decel := cfg.GroundFriction * cfg.Gravity * dt
			if decel >= horizSpeed {
				vel[0], vel[2] = 0, 0
			} else {
				scale := (horizSpeed - decel) / horizSpeed
				vel[0] *= scale
				vel[2] *= scale
			}
		}
	}

	// 5. Recompute cached speed; snap to rest below the stop threshold.
	newSpeed := vel.Len()
	if newSpeed < cfg.StopSpeed {
		vel = geom.Vec3{}
		newSpeed = 0
	}

	return State{Position: pos, Velocity: vel, Spin: s.Spin, Speed: newSpeed}
}

// applyDragWithoutSignFlip applies dragAccel*dt to vel component-wise, but
// never lets a component cross zero and reverse sign purely from drag — per
// §4.4, such a component is clamped to zero instead.
func applyDragWithoutSignFlip(vel, dragAccel geom.Vec3, dt float64) geom.Vec3 {
	out := vel
	for i := 0; i < 3; i++ {
		delta := dragAccel[i] * dt
		next := vel[i] + delta
		if (vel[i] > 0 && next < 0) || (vel[i] < 0 && next > 0) {
			out[i] = 0
		} else {
			out[i] = next
		}
	}
	return out
}

// OnGround reports whether s is resting on the turf, per the invariant
// `on_ground <=> position.y <= radius + epsilon`.
func OnGround(s State, cfg Config) bool {
	const epsilon = 1e-6
	return s.Position[1] <= cfg.Radius+epsilon
}
