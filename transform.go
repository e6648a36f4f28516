package impulse

import (
	"github.com/setanarut/vec"
)

// Transform represents a 2D affine transformation using a 2x3 matrix.
//
//	| a  c  tx |   -> X' = a * X + c * Y + tx
//	| b  d  ty |   -> Y' = b * X + d * Y + ty
//
// Bodies only ever hold rigid transforms (rotation + translation).
type Transform struct {
	a, b, c, d, tx, ty float64
}

// NewTransformIdentity creates and returns an identity transformation.
func NewTransformIdentity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

// NewTransformTranspose returns a new transformation matrix in transposed order.
func NewTransformTranspose(a, c, tx, b, d, ty float64) Transform {
	return Transform{a, b, c, d, tx, ty}
}

// NewTransformRigid creates a rigid transformation that rotates by rotation
// radians and then translates by translate.
func NewTransformRigid(translate vec.Vec2, rotation float64) Transform {
	rot := vec.ForAngle(rotation)
	return NewTransformTranspose(
		rot.X, -rot.Y, translate.X,
		rot.Y, rot.X, translate.Y,
	)
}

// NewTransformRigidInverse returns the inverse of a given rigid transformation.
func NewTransformRigidInverse(t Transform) Transform {
	return NewTransformTranspose(
		t.d, -t.c, t.c*t.ty-t.tx*t.d,
		-t.b, t.a, t.tx*t.b-t.a*t.ty,
	)
}

// Apply applies the transformation to point p.
func (t Transform) Apply(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: t.a*p.X + t.c*p.Y + t.tx,
		Y: t.b*p.X + t.d*p.Y + t.ty,
	}
}

// ApplyVector applies only the linear part of the transformation to v.
func (t Transform) ApplyVector(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: t.a*v.X + t.c*v.Y,
		Y: t.b*v.X + t.d*v.Y,
	}
}

// Mult multiplies this and t2
func (t Transform) Mult(t2 Transform) Transform {
	return NewTransformTranspose(
		t.a*t2.a+t.c*t2.b, t.a*t2.c+t.c*t2.d, t.a*t2.tx+t.c*t2.ty+t.tx,
		t.b*t2.a+t.d*t2.b, t.b*t2.c+t.d*t2.d, t.b*t2.tx+t.d*t2.ty+t.ty,
	)
}
