package geom

import (
	"fmt"
	"math"
)

// Vec2 is a point or direction on the arena plane.
type Vec2 struct {
	X float64
	Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }
func (v Vec2) Angle() float64       { return math.Atan2(v.Y, v.X) }
func (v Vec2) String() string       { return fmt.Sprintf("{%.2f, %.2f}", v.X, v.Y) }

// Finite reports whether both coordinates are neither NaN nor infinite.
func (v Vec2) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Clamp limits v to the rectangle [lo, hi].
func (v Vec2) Clamp(lo, hi Vec2) Vec2 {
	return Vec2{math.Min(math.Max(v.X, lo.X), hi.X), math.Min(math.Max(v.Y, lo.Y), hi.Y)}
}

func (v Vec2) DistSq(o Vec2) float64 {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y
}

// Normalize returns the unit vector, or zero for a zero-length input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// FromAngle returns the unit vector pointing at angle radians.
func FromAngle(angle float64) Vec2 {
	return Vec2{math.Cos(angle), math.Sin(angle)}
}

// MoveToward steps from toward to by at most maxStep. The second result
// reports whether to was reached.
func MoveToward(from, to Vec2, maxStep float64) (Vec2, bool) {
	if !to.Finite() {
		return from, true
	}
	d := to.Sub(from)
	l := d.Len()
	if l <= maxStep || l == 0 {
		return to, true
	}
	return from.Add(d.Scale(maxStep / l)), false
}
