// Package vision implements each player's perceived-world snapshot: who
// and where the ball and other players appear to be, refreshed on a
// per-player scan cadence derived from attributes rather than a single
// global tick rate.
//
// Grounded on the teacher's event-driven rescheduling pattern (the AI
// decision loop re-arming itself via the scheduler rather than running on
// a fixed global rate) — generalized from combat target-acquisition into
// a perception snapshot with an attribute-derived, possession-aware scan
// interval.
package vision

import (
	"time"

	"github.com/fight-club/matchsim/internal/geom"
	"github.com/fight-club/matchsim/internal/rng"
)

// PerceivedBall is the perceiving player's view of the ball — at MVP
// fidelity this is a direct copy of ground truth, not yet subject to
// noise, memory decay, or occlusion.
type PerceivedBall struct {
	Position geom.Vec2
	Velocity geom.Vec2
	IsHeld   bool
	HeldBy   string
}

// PerceivedPlayer is the perceiving player's view of one other player.
type PerceivedPlayer struct {
	PlayerID string
	TeamID   string
	Position geom.Vec2
	Velocity geom.Vec2
}

// PerceivedWorld is one player's snapshot of the match, refreshed each
// scan.
type PerceivedWorld struct {
	Ball         PerceivedBall
	Players      []PerceivedPlayer
	FocusPlayer  string // "" means focus is the ball
	ScannedAtTick int64
}

// Attributes are the player ratings that derive scan frequency.
type Attributes struct {
	Awareness     float64 // 0..1
	Anticipation  float64 // 0..1
	VisionRating  float64 // 0..1
}

// ScanFrequency returns the interval between scans, interpolated from
// attributes, using the attacking or defending coefficient set depending on
// whether the player's team currently has possession. Higher-rated players
// scan more often (a lower interval) either way.
//
// Attacking favors anticipation and vision rating — reading the run and the
// passing lane. Defending weighs awareness heaviest and runs a tighter
// overall range — tracking an unpredictable opponent rewards more frequent
// rescans even for a lower-rated player.
func ScanFrequency(attrs Attributes, attacking bool) time.Duration {
	var t float64
	var lo, hi float64
	if attacking {
		t = 0.5*attrs.Awareness + 0.3*attrs.Anticipation + 0.2*attrs.VisionRating
		lo, hi = 1500, 300
	} else {
		t = 0.6*attrs.Awareness + 0.15*attrs.Anticipation + 0.25*attrs.VisionRating
		lo, hi = 1300, 250
	}
	ms := geom.Lerp(lo, hi, geom.Clamp01(t))
	return time.Duration(ms) * time.Millisecond
}

// Scan captures ground truth into a fresh PerceivedWorld and picks a new
// focus: the ball with 80% probability, otherwise a uniformly random
// other perceived player.
func Scan(ball PerceivedBall, others []PerceivedPlayer, currentTick int64, source *rng.Source) PerceivedWorld {
	world := PerceivedWorld{
		Ball:          ball,
		Players:       others,
		ScannedAtTick: currentTick,
	}

	if len(others) > 0 && !source.Chance(0.8) {
		idx := source.Pick(len(others))
		world.FocusPlayer = others[idx].PlayerID
	}

	return world
}

// FocusPosition resolves the current focus to a world position — the
// ball's if FocusPlayer is unset, otherwise the focused player's, falling
// back to the ball if the focused player has since left the snapshot
// (e.g. substituted mid-scan-interval).
func (w PerceivedWorld) FocusPosition() geom.Vec2 {
	if w.FocusPlayer == "" {
		return w.Ball.Position
	}
	for _, p := range w.Players {
		if p.PlayerID == w.FocusPlayer {
			return p.Position
		}
	}
	return w.Ball.Position
}
