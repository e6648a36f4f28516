package impulse

import (
	"fmt"
	"math"

	"github.com/setanarut/vec"
)

// BB is an axis-aligned 2D bounding box. (left, bottom, right, top)
type BB struct {
	L, B, R, T float64
}

// NewBB is convenience constructor for BB structs.
func NewBB(l, b, r, t float64) BB {
	return BB{L: l, B: b, R: r, T: t}
}

func (bb BB) String() string {
	return fmt.Sprintf("%v %v %v %v", bb.L, bb.B, bb.R, bb.T)
}

// NewBBForExtents constructs a BB centered on a point with the given extents (half sizes).
func NewBBForExtents(c vec.Vec2, hw, hh float64) BB {
	return BB{
		L: c.X - hw,
		B: c.Y - hh,
		R: c.X + hw,
		T: c.Y + hh,
	}
}

// NewBBForCircle constructs a BB for a circle with the given position and radius.
func NewBBForCircle(p vec.Vec2, r float64) BB {
	return NewBBForExtents(p, r, r)
}

// Intersects returns true if a and b intersect.
func (bb BB) Intersects(b BB) bool {
	return bb.L <= b.R && b.L <= bb.R && bb.B <= b.T && b.B <= bb.T
}

// ContainsVect returns true if bb contains v.
func (bb BB) ContainsVect(v vec.Vec2) bool {
	return bb.L <= v.X && bb.R >= v.X && bb.B <= v.Y && bb.T >= v.Y
}

// Merge returns a bounding box that holds both bounding boxes.
func (bb BB) Merge(b BB) BB {
	return BB{
		math.Min(bb.L, b.L),
		math.Min(bb.B, b.B),
		math.Max(bb.R, b.R),
		math.Max(bb.T, b.T),
	}
}

// Expand returns a bounding box that holds both bb and v.
func (bb BB) Expand(v vec.Vec2) BB {
	return BB{
		math.Min(bb.L, v.X),
		math.Min(bb.B, v.Y),
		math.Max(bb.R, v.X),
		math.Max(bb.T, v.Y),
	}
}

// Grow returns bb enlarged by r on every side.
func (bb BB) Grow(r float64) BB {
	return BB{bb.L - r, bb.B - r, bb.R + r, bb.T + r}
}

// Center returns the center of a bounding box.
func (bb BB) Center() vec.Vec2 {
	return vec.Vec2{X: bb.L, Y: bb.B}.Lerp(vec.Vec2{X: bb.R, Y: bb.T}, 0.5)
}

// Area returns the area of the bounding box.
func (bb BB) Area() float64 {
	return (bb.R - bb.L) * (bb.T - bb.B)
}

// MergedArea returns the area of the box holding both bb and b.
func (bb BB) MergedArea(b BB) float64 {
	return (math.Max(bb.R, b.R) - math.Min(bb.L, b.L)) * (math.Max(bb.T, b.T) - math.Min(bb.B, b.B))
}

// Proximity returns the Manhattan distance between the centers of bb and
// b, doubled.
func (bb BB) Proximity(b BB) float64 {
	return math.Abs(bb.L+bb.R-b.L-b.R) + math.Abs(bb.B+bb.T-b.B-b.T)
}
