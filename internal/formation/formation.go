// Package formation implements the team's spatial model: a four-edge
// axis-aligned region of the pitch, and the linear slot<->world coordinate
// transform players are placed with.
package formation

import "github.com/fight-club/matchsim/internal/geom"

// Side identifies which goal a team defends.
type Side int

const (
	Left  Side = -1
	Right Side = 1
)

// AABB is a team's four independent edges in world coordinates.
type AABB struct {
	Back, Front, Left, Right float64
	DefendingSide            Side
}

// DefaultHome returns the teacher-default kickoff placement for the team
// defending the left-hand goal: back = goalLineX + 22m, front = -1m, left =
// -30m, right = +30m.
func DefaultHome(goalLineX float64) AABB {
	return AABB{
		Back:          goalLineX + 22,
		Front:         -1,
		Left:          -30,
		Right:         30,
		DefendingSide: Left,
	}
}

// DefaultAway returns the mirrored default for the team defending the
// right-hand goal.
func DefaultAway(goalLineX float64) AABB {
	return AABB{
		Back:          goalLineX - 22,
		Front:         1,
		Left:          -30,
		Right:         30,
		DefendingSide: Right,
	}
}

// SlotToWorld maps a normalized slot (sx, sy) in [-1, 1]^2 to a world point.
// sy interpolates Back..Front (t_y = (sy+1)/2); sx interpolates Left..Right
// (t_x = (sx+1)/2).
func (a AABB) SlotToWorld(sx, sy float64) geom.Vec2 {
	ty := (sy + 1) / 2
	tx := (sx + 1) / 2
	wx := geom.Lerp(a.Back, a.Front, ty)
	wy := geom.Lerp(a.Left, a.Right, tx)
	return geom.Vec2{wx, wy}
}

// WorldToSlot is the inverse of SlotToWorld.
func (a AABB) WorldToSlot(w geom.Vec2) (sx, sy float64) {
	ty := 0.0
	if a.Front != a.Back {
		ty = (w[0] - a.Back) / (a.Front - a.Back)
	}
	tx := 0.0
	if a.Right != a.Left {
		tx = (w[1] - a.Left) / (a.Right - a.Left)
	}
	return tx*2 - 1, ty*2 - 1
}

// Translate shifts all four edges by (dx, dy).
func (a *AABB) Translate(dx, dy float64) {
	a.Back += dx
	a.Front += dx
	a.Left += dy
	a.Right += dy
}

// SetWidth resizes the Left/Right edges around their current midpoint so the
// side-to-side span maps tacticalWidth in [0,1] linearly onto 18-32m,
// symmetric about the current center.
func (a *AABB) SetWidth(tacticalWidth float64) {
	if tacticalWidth < 0 {
		tacticalWidth = 0
	}
	if tacticalWidth > 1 {
		tacticalWidth = 1
	}
	span := geom.Lerp(18, 32, tacticalWidth)
	mid := (a.Left + a.Right) / 2
	a.Left = mid - span/2
	a.Right = mid + span/2
}

// Depth reports the team's back-to-front span (always positive).
func (a AABB) Depth() float64 {
	d := a.Front - a.Back
	if d < 0 {
		return -d
	}
	return d
}
