package match

import (
	"github.com/fight-club/matchsim/internal/body"
	"github.com/fight-club/matchsim/internal/scheduler"
	"github.com/fight-club/matchsim/internal/vision"
)

// Player is one matchday squad member: identity, the kinematic Body the
// physics/steering pipeline drives, the current AI Intention, the
// perception state Vision refreshes, and the scheduler handles needed to
// reschedule or cancel its recurring events on substitution.
//
// Grounded on the teacher's flat, JSON-tagged Player struct
// (internal/game/player.go) — same "one struct holds everything this
// entity needs" shape, generalized from combat stats to football
// attributes and steering/vision state.
type Player struct {
	ID           string
	TeamID       string
	SquadNumber  int
	IsGoalkeeper bool
	OnPitch      bool

	SlotX, SlotY float64 // normalized formation slot, [-1,1]^2

	Body      *body.Body
	Intention body.Intention

	VisionAttrs    vision.Attributes
	Perceived      vision.PerceivedWorld

	physicsHandle scheduler.Handle
	visionHandle  scheduler.Handle
	aiHandle      scheduler.Handle

	DistanceCovered float64 // meters, accumulated each physics tick
	Touches         int
	Goals           int
}
