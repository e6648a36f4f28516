package impulse

import (
	"github.com/setanarut/vec"
)

// PinJoint keeps the anchors of two bodies at a fixed distance, like a
// massless rod.
type PinJoint struct {
	*Constraint
	AnchorA, AnchorB vec.Vec2
	Distance         float64

	r1, r2, n          vec.Vec2
	nMass, jnAcc, bias float64
}

// NewPinJoint joins the body local anchors of a and b at their current distance.
func NewPinJoint(a, b *Body, anchorA, anchorB vec.Vec2) (*PinJoint, error) {
	if a == nil || b == nil {
		return nil, errNilBody
	}
	joint := &PinJoint{
		AnchorA: anchorA,
		AnchorB: anchorB,
		n:       vec.Vec2{X: 1},
	}
	c, err := newConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = c

	p1 := a.transform.Apply(anchorA)
	p2 := b.transform.Apply(anchorB)
	joint.Distance = p2.Sub(p1).Mag()
	return joint, nil
}

// NewFixedPinJoint keeps the body local anchor of body at its current
// distance from the world point pivot.
func NewFixedPinJoint(body *Body, anchor, pivot vec.Vec2) (*PinJoint, error) {
	return NewPinJoint(newAnchorBody(), body, pivot, anchor)
}

func (joint *PinJoint) preStep(invDt float64) {
	a := joint.bodyA
	b := joint.bodyB

	joint.r1 = a.transform.ApplyVector(joint.AnchorA)
	joint.r2 = b.transform.ApplyVector(joint.AnchorB)

	delta := b.position.Add(joint.r2).Sub(a.position.Add(joint.r1))
	n, dist := normalize(delta)
	if dist != 0 {
		joint.n = n
	}

	joint.nMass = 1 / (kScalar(a, b, joint.r1, joint.r2, joint.n) + joint.Softness)

	joint.err = dist - joint.Distance
	joint.bias = joint.biasVelocity(joint.err, invDt)

	applyImpulses(a, b, joint.r1, joint.r2, joint.n.Scale(joint.jnAcc))
}

func (joint *PinJoint) solve() {
	a := joint.bodyA
	b := joint.bodyB
	n := joint.n

	vrn := normalRelativeVelocity(a, b, joint.r1, joint.r2, n)

	jn := (joint.bias - vrn - joint.Softness*joint.jnAcc) * joint.nMass
	jnOld := joint.jnAcc
	joint.jnAcc = joint.clampImpulse(jnOld + jn)
	jn = joint.jnAcc - jnOld

	applyImpulses(a, b, joint.r1, joint.r2, n.Scale(jn))
}

// AccumulatedImpulse returns the signed impulse along the pin axis.
func (joint *PinJoint) AccumulatedImpulse() float64 {
	return joint.jnAcc
}
