// Package geom defines the 2D/3D vector and rectangle types shared by every
// simulation component, and the ground-plane mapping convention between
// them: a world 2D point (x, y) maps to the 3D point (x, h, y) — x and z are
// the pitch plane, y is height off the turf.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a point or direction on the pitch plane (x = goal-to-goal axis,
// y = touchline-to-touchline axis).
type Vec2 = mgl64.Vec2

// Vec3 is a point or direction in world space, used only by the ball:
// (x, y, z) = (world_x, height, world_y).
type Vec3 = mgl64.Vec3

// To3D lifts a ground point to world space at the given height.
func To3D(v Vec2, height float64) Vec3 {
	return Vec3{v[0], height, v[1]}
}

// To2D drops the height component, per the ground-plane mapping convention.
func To2D(v Vec3) Vec2 {
	return Vec2{v[0], v[2]}
}

// Rect is an axis-aligned rectangle in world 2D coordinates.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewRectCentered builds a rectangle of the given width/height centered at c.
func NewRectCentered(c Vec2, width, height float64) Rect {
	hw, hh := width/2, height/2
	return Rect{MinX: c[0] - hw, MinY: c[1] - hh, MaxX: c[0] + hw, MaxY: c[1] + hh}
}

// Contains reports whether p lies within the rectangle (inclusive).
func (r Rect) Contains(p Vec2) bool {
	return p[0] >= r.MinX && p[0] <= r.MaxX && p[1] >= r.MinY && p[1] <= r.MaxY
}

// Width and Height report the rectangle's extents.
func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Clamp pulls p to the nearest point inside (or on the boundary of) r.
func Clamp(p Vec2, r Rect) Vec2 {
	return Vec2{
		math.Max(r.MinX, math.Min(r.MaxX, p[0])),
		math.Max(r.MinY, math.Min(r.MaxY, p[1])),
	}
}

// ClampOutsideCircle pushes p radially outward if it lies within radius of
// center, leaving it untouched otherwise. Used for the penalty-arc and
// center-circle encroachment rules.
func ClampOutsideCircle(p, center Vec2, radius float64) Vec2 {
	d := p.Sub(center)
	dist := d.Len()
	if dist >= radius || dist < 1e-9 {
		if dist < 1e-9 {
			return center.Add(Vec2{radius, 0})
		}
		return p
	}
	return center.Add(d.Mul(radius / dist))
}

// Lerp linearly interpolates between a and b by t (unclamped).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpVec2 linearly interpolates between a and b by t.
func LerpVec2(a, b Vec2, t float64) Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

// Clamp01 clamps x to [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// ClampFloat clamps x to [lo, hi].
func ClampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// AngleOf returns the angle of v in radians, matching math.Atan2(v.Y, v.X).
func AngleOf(v Vec2) float64 {
	return math.Atan2(v[1], v[0])
}

// FromAngle returns the unit vector pointing at angle theta (radians).
func FromAngle(theta float64) Vec2 {
	return Vec2{math.Cos(theta), math.Sin(theta)}
}

// SignedAngleDiff returns the smallest signed angle (radians, in (-pi, pi])
// to rotate `from` by to reach `to`.
func SignedAngleDiff(from, to float64) float64 {
	d := math.Mod(to-from, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// NormalizeOrZero returns v normalized, or the zero vector if v is
// (near-)zero length — avoids NaN propagation from mgl64.Vec2.Normalize on a
// zero vector.
func NormalizeOrZero(v Vec2) Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return v.Mul(1 / l)
}
