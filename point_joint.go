package impulse

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/vec"
)

// PointJoint holds an anchor on each body at the same world point. Both
// bodies may still rotate freely around it.
type PointJoint struct {
	*Constraint
	AnchorA, AnchorB vec.Vec2

	r1, r2 vec.Vec2
	k      mgl64.Mat2

	jAcc, bias vec.Vec2
}

// NewPointJoint joins a and b at the world point pivot.
func NewPointJoint(a, b *Body, pivot vec.Vec2) (*PointJoint, error) {
	if a == nil || b == nil {
		return nil, errNilBody
	}
	return NewPointJoint2(a, b, a.WorldToLocal(pivot), b.WorldToLocal(pivot))
}

// NewPointJoint2 joins a and b at the body local anchors anchorA and anchorB.
func NewPointJoint2(a, b *Body, anchorA, anchorB vec.Vec2) (*PointJoint, error) {
	joint := &PointJoint{
		AnchorA: anchorA,
		AnchorB: anchorB,
	}
	c, err := newConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = c
	return joint, nil
}

// NewFixedPointJoint pins the body local anchor of body to the world point pivot.
func NewFixedPointJoint(body *Body, anchor, pivot vec.Vec2) (*PointJoint, error) {
	return NewPointJoint2(newAnchorBody(), body, pivot, anchor)
}

func (joint *PointJoint) preStep(invDt float64) {
	a := joint.bodyA
	b := joint.bodyB

	joint.r1 = a.transform.ApplyVector(joint.AnchorA)
	joint.r2 = b.transform.ApplyVector(joint.AnchorB)

	// Calculate mass tensor
	joint.k = kTensor(a, b, joint.r1, joint.r2, joint.Softness)

	// calculate bias velocity
	delta := b.position.Add(joint.r2).Sub(a.position.Add(joint.r1))
	joint.err = delta.Mag()
	joint.bias = delta.Scale(-joint.BiasFactor * invDt)

	applyImpulses(a, b, joint.r1, joint.r2, joint.jAcc)
}

func (joint *PointJoint) solve() {
	a := joint.bodyA
	b := joint.bodyB

	r1 := joint.r1
	r2 := joint.r2

	// compute relative velocity
	vr := relativeVelocity(a, b, r1, r2)

	j := mulMat2(joint.k, joint.bias.Sub(vr).Sub(joint.jAcc.Scale(joint.Softness)))
	jOld := joint.jAcc
	joint.jAcc = clampMag(joint.jAcc.Add(j), joint.MaxImpulse)
	j = joint.jAcc.Sub(jOld)

	applyImpulses(a, b, r1, r2, j)
}

// AccumulatedImpulse returns the impulse applied to B during the last step.
func (joint *PointJoint) AccumulatedImpulse() vec.Vec2 {
	return joint.jAcc
}
