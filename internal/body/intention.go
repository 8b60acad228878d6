// Package body implements player kinematics: the steering behaviors that
// turn an AI intention into a desired velocity/facing, the fixed-step
// physics integrator that turns steering into motion, and the five-state
// head-movement system layered on top of body orientation.
//
// Grounded on the teacher's Player struct and its per-tick Update
// (internal/game/player.go) — a flat, JSON-tagged state struct advanced
// once per tick — generalized from "chase nearest enemy" combat AI into a
// steering-behavior pipeline driven by an explicit Intention contract.
package body

import "github.com/fight-club/matchsim/internal/geom"

// IntentionType discriminates the kind of directive an AI decision
// produces for a tick.
type IntentionType int

const (
	IntentionIdle IntentionType = iota
	IntentionMoveTo
	IntentionMoveWithVelocity
	IntentionEngagePlayer
	IntentionReceivePass
	IntentionDribble
	IntentionShoot
	IntentionPass
	IntentionTackle
	IntentionMarkPlayer
	IntentionSetPieceTake
	IntentionSetPieceHold
	IntentionKeeperSet
	IntentionKeeperDive
)

// SpeedHint is the AI's coarse desired pace, refined by steering into an
// actual target speed.
type SpeedHint int

const (
	SpeedIdle SpeedHint = iota
	SpeedWalk
	SpeedJog
	SpeedRun
	SpeedSprint
)

// MovementMode discriminates the locomotion style. Arrive resolves ModeAuto
// from the body-to-travel angle and reports the result; its angle-speed
// penalty depends on that angle, not on the mode.
type MovementMode int

const (
	ModeAuto MovementMode = iota
	ModeForward
	ModeBackward
	ModeStrafeLeft
	ModeStrafeRight
)

// Intention is the AI→steering contract: one per player per AI
// re-decision tick, consumed every physics tick until replaced.
type Intention struct {
	Type            IntentionType
	TargetPosition  *geom.Vec2
	TargetVelocity  *geom.Vec2
	TargetPlayerID  string
	FaceTarget      *geom.Vec2
	LookAtTarget    *geom.Vec2
	SpeedHint       SpeedHint
	MovementMode    MovementMode
	ScanTarget      string
	Power           float64
	Curve           float64
	TacticalReason  string
	Signal          string
}

// SpeedForHint maps a SpeedHint to a reference speed in m/s, consistent
// with the integrator's 9.5 m/s sprint ceiling.
func SpeedForHint(h SpeedHint) float64 {
	switch h {
	case SpeedWalk:
		return 1.5
	case SpeedJog:
		return 4.0
	case SpeedRun:
		return 7.0
	case SpeedSprint:
		return 9.5
	default:
		return 0
	}
}
