package impulse

import (
	"math"

	"github.com/setanarut/vec"
)

// MomentForBox calculates the moment of inertia for a solid box.
func MomentForBox(mass, width, height float64) float64 {
	return mass * (width*width + height*height) / 12.0
}

// MomentForCircle calculates the moment of inertia for a circle.
//
// r1 and r2 are the inner and outer radii. A solid circle has an inner
// radius of 0. offset is the displacement of the circle's center from the
// axis of rotation.
func MomentForCircle(mass, r1, r2 float64, offset vec.Vec2) float64 {
	return mass * (0.5*(r1*r1+r2*r2) + magSq(offset))
}

// MomentForSegment calculates the moment of inertia for a capsule.
func MomentForSegment(mass float64, a, b vec.Vec2, radius float64) float64 {
	offset := a.Lerp(b, 0.5)
	length := b.Sub(a).Mag() + 2.0*radius
	return mass * ((length*length+4.0*radius*radius)/12.0 + magSq(offset))
}

// MomentForPoly calculates the moment of inertia for a solid polygon about
// the origin. The offset is added to each vertex.
func MomentForPoly(mass float64, verts []vec.Vec2, offset vec.Vec2) float64 {
	count := len(verts)
	if count == 2 {
		return MomentForSegment(mass, verts[0].Add(offset), verts[1].Add(offset), 0)
	}

	var sum1 float64
	var sum2 float64
	for i := range count {
		v1 := verts[i].Add(offset)
		v2 := verts[(i+1)%count].Add(offset)

		a := v2.Cross(v1)
		b := v1.Dot(v1) + v1.Dot(v2) + v2.Dot(v2)

		sum1 += a * b
		sum2 += a
	}

	return (mass * sum1) / (6.0 * sum2)
}

// AreaForCircle returns area of a hollow circle with inner radius r1 and outer radius r2.
func AreaForCircle(r1, r2 float64) float64 {
	return math.Pi * math.Abs(r1*r1-r2*r2)
}

// AreaForSegment calculates the area of a fattened (capsule shaped) line segment.
func AreaForSegment(a, b vec.Vec2, r float64) float64 {
	return r * (math.Pi*r + 2.0*b.Sub(a).Mag())
}

// AreaForPoly returns the area of a polygon regardless of winding.
func AreaForPoly(verts []vec.Vec2) float64 {
	return math.Abs(signedArea(verts))
}

// CentroidForPoly calculates the natural centroid of a polygon.
func CentroidForPoly(verts []vec.Vec2) vec.Vec2 {
	var sum float64
	vsum := vec.Vec2{}
	count := len(verts)

	for i := range count {
		v1 := verts[i]
		v2 := verts[(i+1)%count]
		cross := v1.Cross(v2)

		sum += cross
		vsum = vsum.Add(v1.Add(v2).Scale(cross))
	}

	return vsum.Scale(1.0 / (3.0 * sum))
}
