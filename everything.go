package impulse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/vec"
)

const (
	infinity     float64 = math.MaxFloat64
	magicEpsilon float64 = 1e-5
	twoPi        float64 = 2 * math.Pi
)

const (
	// Value for group signifying that a shape is in no group.
	NoGroup uint = 0
	// Value for Filter categories signifying that a shape is in every category.
	AllCategories uint = ^uint(0)
)

// FilterAll is a collision filter value for a shape that will collide with
// anything except FilterNone.
var FilterAll = Filter{NoGroup, AllCategories, AllCategories}

// FilterNone is a collision filter value for a shape that does not collide
// with anything.
var FilterNone = Filter{NoGroup, ^AllCategories, ^AllCategories}

// Filter is fast collision filtering type that is used to determine if two
// shapes are handed to the narrow phase at all.
type Filter struct {
	// Two objects with the same non-zero group value do not collide.
	// This is generally used to group objects in a composite object together to disable self collisions.
	Group uint
	// A bitmask of user definable categories that this object belongs to.
	Categories uint
	// A bitmask of user definable category types that this object object collides with.
	Mask uint
}

// Reject returns true if the two filters exclude each other: same non-zero
// group, or a category/mask mismatch in either direction.
func (f Filter) Reject(other Filter) bool {
	return (f.Group != 0 && f.Group == other.Group) ||
		(f.Categories&other.Mask) == 0 ||
		(other.Categories&f.Mask) == 0
}

func kScalarBody(body *Body, r, n vec.Vec2) float64 {
	rcn := r.Cross(n)
	return body.massInverse + body.momentInverse*rcn*rcn
}

// kScalar returns the combined mobility of a and b along n at the anchor
// offsets r1 and r2.
func kScalar(a, b *Body, r1, r2, n vec.Vec2) float64 {
	return kScalarBody(a, r1, n) + kScalarBody(b, r2, n)
}

// kTensor returns the inverse of the 2x2 point mobility matrix of a and b,
// with softness added to the diagonal before inversion.
func kTensor(a, b *Body, r1, r2 vec.Vec2, softness float64) mgl64.Mat2 {
	mSum := a.massInverse + b.massInverse

	// start with Identity*mSum
	k11 := mSum + softness
	k12 := 0.0
	k22 := mSum + softness

	// add the influence from r1
	aIInv := a.momentInverse
	k11 += r1.Y * r1.Y * aIInv
	k12 += -r1.X * r1.Y * aIInv
	k22 += r1.X * r1.X * aIInv

	// add the influence from r2
	bIInv := b.momentInverse
	k11 += r2.Y * r2.Y * bIInv
	k12 += -r2.X * r2.Y * bIInv
	k22 += r2.X * r2.X * bIInv

	// column major, symmetric
	k := mgl64.Mat2{k11, k12, k12, k22}
	return k.Inv()
}

func mulMat2(m mgl64.Mat2, v vec.Vec2) vec.Vec2 {
	r := m.Mul2x1(mgl64.Vec2{v.X, v.Y})
	return vec.Vec2{X: r[0], Y: r[1]}
}

func clamp(f, min, max float64) float64 {
	if f > min {
		return math.Min(f, max)
	}
	return math.Min(min, max)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(f, 1))
}

// clampMag clamps the magnitude of vect to m.
func clampMag(vect vec.Vec2, m float64) vec.Vec2 {
	if vect.Dot(vect) > m*m {
		return vect.Scale(m / vect.Mag())
	}
	return vect
}

func magSq(a vec.Vec2) float64 {
	return a.Dot(a)
}

// normalize returns the unit vector of a and its length. A zero vector is
// returned unchanged with length 0.
func normalize(a vec.Vec2) (vec.Vec2, float64) {
	l := a.Mag()
	if l == 0 {
		return vec.Vec2{}, 0
	}
	return a.Scale(1 / l), l
}

func closestPointOnSegment(p, a, b vec.Vec2) (vec.Vec2, float64) {
	delta := b.Sub(a)
	t := clamp01(delta.Dot(p.Sub(a)) / magSq(delta))
	return a.Add(delta.Scale(t)), t
}

func relativeVelocity(a, b *Body, r1, r2 vec.Vec2) vec.Vec2 {
	return r2.Perp().Scale(b.w).Add(b.velocity).Sub(r1.Perp().Scale(a.w).Add(a.velocity))
}

func normalRelativeVelocity(a, b *Body, r1, r2, n vec.Vec2) float64 {
	return relativeVelocity(a, b, r1, r2).Dot(n)
}

// applyImpulses applies j to b and -j to a at the given anchor offsets.
func applyImpulses(a, b *Body, r1, r2, j vec.Vec2) {
	b.velocity.X += j.X * b.massInverse
	b.velocity.Y += j.Y * b.massInverse
	b.w += b.momentInverse * (r2.X*j.Y - r2.Y*j.X)

	j.X = -j.X
	j.Y = -j.Y
	a.velocity.X += j.X * a.massInverse
	a.velocity.Y += j.Y * a.massInverse
	a.w += a.momentInverse * (r1.X*j.Y - r1.Y*j.X)
}

func applyBiasImpulses(a, b *Body, r1, r2, j vec.Vec2) {
	b.vBias.X += j.X * b.massInverse
	b.vBias.Y += j.Y * b.massInverse
	b.wBias += b.momentInverse * (r2.X*j.Y - r2.Y*j.X)

	j.X = -j.X
	j.Y = -j.Y
	a.vBias.X += j.X * a.massInverse
	a.vBias.Y += j.Y * a.massInverse
	a.wBias += a.momentInverse * (r1.X*j.Y - r1.Y*j.X)
}

// applyAngularImpulses applies j to b and -j to a.
func applyAngularImpulses(a, b *Body, j float64) {
	a.w -= j * a.momentInverse
	b.w += j * b.momentInverse
}
