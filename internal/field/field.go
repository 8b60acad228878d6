// Package field models pitch dimensions and the fixed markings on it
// (penalty areas, goal areas, goals, center circle, penalty spots). A Field
// is immutable after construction and shared read-only by every other
// component.
package field

import "github.com/fight-club/matchsim/internal/geom"

const yardToMeter = 0.9144
const footToMeter = 0.3048

// Config is the tunable set of pitch dimensions, expressed in yards to match
// the source convention, converted to meters internally. The zero value is
// invalid; use DefaultConfig.
type Config struct {
	LengthYards        float64 // goal-to-goal
	WidthYards         float64 // touchline-to-touchline
	GoalWidthYards      float64
	GoalHeightFeet      float64
	GoalDepthYards      float64
	PenaltyAreaWidthYards  float64 // along goal line
	PenaltyAreaDepthYards  float64
	GoalAreaWidthYards     float64
	GoalAreaDepthYards     float64
	CenterCircleRadiusYards float64
	PenaltySpotYards       float64 // distance from goal line
}

// DefaultConfig reproduces the dimensions in §6.1: 115yd x 74yd pitch, an
// 8yd x 8ft x 2yd goal, 18x44yd penalty area, 6x20yd goal area, 10yd center
// circle, and a penalty spot 12yd out with arc radius equal to the center
// circle.
func DefaultConfig() Config {
	return Config{
		LengthYards:             115,
		WidthYards:              74,
		GoalWidthYards:          8,
		GoalHeightFeet:          8,
		GoalDepthYards:          2,
		PenaltyAreaWidthYards:   44,
		PenaltyAreaDepthYards:   18,
		GoalAreaWidthYards:      20,
		GoalAreaDepthYards:      6,
		CenterCircleRadiusYards: 10,
		PenaltySpotYards:        12,
	}
}

// Field holds derived, immutable pitch geometry in meters, centered on the
// origin: x in [-Length/2, +Length/2], y in [-Width/2, +Width/2].
type Field struct {
	Length, Width float64 // meters

	GoalWidth, GoalHeight, GoalDepth float64

	// HomeGoalLineX / AwayGoalLineX are the x-coordinates of each team's own
	// goal line; home defends the negative-x end by convention.
	HomeGoalLineX, AwayGoalLineX float64

	HomePenaltyArea, AwayPenaltyArea geom.Rect
	HomeGoalArea, AwayGoalArea       geom.Rect
	HomeGoal, AwayGoal               geom.Rect // goal mouth, on the goal line

	CenterCircleRadius float64
	PenaltyArcRadius   float64
	HomePenaltySpot    geom.Vec2
	AwayPenaltySpot    geom.Vec2
}

// New builds a Field from cfg, converting yards/feet to meters.
func New(cfg Config) *Field {
	length := cfg.LengthYards * yardToMeter
	width := cfg.WidthYards * yardToMeter

	homeX := -length / 2
	awayX := length / 2

	f := &Field{
		Length:             length,
		Width:              width,
		GoalWidth:          cfg.GoalWidthYards * yardToMeter,
		GoalHeight:         cfg.GoalHeightFeet * footToMeter,
		GoalDepth:          cfg.GoalDepthYards * yardToMeter,
		HomeGoalLineX:      homeX,
		AwayGoalLineX:      awayX,
		CenterCircleRadius: cfg.CenterCircleRadiusYards * yardToMeter,
		PenaltyArcRadius:   cfg.CenterCircleRadiusYards * yardToMeter,
	}

	paWidth := cfg.PenaltyAreaWidthYards * yardToMeter
	paDepth := cfg.PenaltyAreaDepthYards * yardToMeter
	gaWidth := cfg.GoalAreaWidthYards * yardToMeter
	gaDepth := cfg.GoalAreaDepthYards * yardToMeter
	goalWidth := f.GoalWidth
	spotDist := cfg.PenaltySpotYards * yardToMeter

	f.HomePenaltyArea = geom.Rect{MinX: homeX, MaxX: homeX + paDepth, MinY: -paWidth / 2, MaxY: paWidth / 2}
	f.AwayPenaltyArea = geom.Rect{MinX: awayX - paDepth, MaxX: awayX, MinY: -paWidth / 2, MaxY: paWidth / 2}

	f.HomeGoalArea = geom.Rect{MinX: homeX, MaxX: homeX + gaDepth, MinY: -gaWidth / 2, MaxY: gaWidth / 2}
	f.AwayGoalArea = geom.Rect{MinX: awayX - gaDepth, MaxX: awayX, MinY: -gaWidth / 2, MaxY: gaWidth / 2}

	f.HomeGoal = geom.Rect{MinX: homeX - f.GoalDepth, MaxX: homeX, MinY: -goalWidth / 2, MaxY: goalWidth / 2}
	f.AwayGoal = geom.Rect{MinX: awayX, MaxX: awayX + f.GoalDepth, MinY: -goalWidth / 2, MaxY: goalWidth / 2}

	f.HomePenaltySpot = geom.Vec2{homeX + spotDist, 0}
	f.AwayPenaltySpot = geom.Vec2{awayX - spotDist, 0}

	return f
}

// Bounds returns the playable rectangle of the pitch.
func (f *Field) Bounds() geom.Rect {
	return geom.Rect{MinX: f.HomeGoalLineX, MaxX: f.AwayGoalLineX, MinY: -f.Width / 2, MaxY: f.Width / 2}
}

// Side classifies which touchline/goal-line boundary (if any) a point has
// crossed. Used by the match engine to detect throw-ins, goal kicks, and
// corners.
type Side int

const (
	Inside Side = iota
	OutLeftTouch
	OutRightTouch
	OutHomeGoalLine
	OutAwayGoalLine
)

// Classify reports which boundary p lies beyond, if any.
func (f *Field) Classify(p geom.Vec2) Side {
	if p[1] < -f.Width/2 {
		return OutLeftTouch
	}
	if p[1] > f.Width/2 {
		return OutRightTouch
	}
	if p[0] < f.HomeGoalLineX {
		return OutHomeGoalLine
	}
	if p[0] > f.AwayGoalLineX {
		return OutAwayGoalLine
	}
	return Inside
}

// BallCrossedGoal reports whether point p, at height h, is inside the given
// goal's mouth — i.e. a scored goal. Height must be below the crossbar.
func (f *Field) BallCrossedGoal(p geom.Vec2, h float64, goal geom.Rect) bool {
	return h <= f.GoalHeight && goal.Contains(p)
}

// ClampOutsidePenaltyArc pushes p to lie outside the penalty arc around the
// given penalty spot (used to enforce encroachment during penalty kicks).
func (f *Field) ClampOutsidePenaltyArc(p, spot geom.Vec2) geom.Vec2 {
	return geom.ClampOutsideCircle(p, spot, f.PenaltyArcRadius)
}

// ClampOutsideCenterCircle pushes p to lie outside the center circle (used
// during kickoffs, when the non-kicking team must retreat).
func (f *Field) ClampOutsideCenterCircle(p geom.Vec2) geom.Vec2 {
	return geom.ClampOutsideCircle(p, geom.Vec2{}, f.CenterCircleRadius)
}
