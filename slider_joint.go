package impulse

import (
	"fmt"

	"github.com/setanarut/vec"
)

// SliderJoint keeps the distance between two anchors within [Min, Max],
// like a rope (Min = 0) or a telescopic rod.
type SliderJoint struct {
	*Constraint

	AnchorA, AnchorB vec.Vec2
	Min, Max         float64

	state     LimitState
	r1, r2, n vec.Vec2
	nMass     float64

	jnAcc, bias float64
}

// NewSliderJoint limits the distance of the body local anchors of a and b to [min, max].
func NewSliderJoint(a, b *Body, anchorA, anchorB vec.Vec2, min, max float64) (*SliderJoint, error) {
	if min < 0 || min > max {
		return nil, fmt.Errorf("%w: slider range [%v, %v]", ErrInvalidValue, min, max)
	}
	joint := &SliderJoint{
		AnchorA: anchorA,
		AnchorB: anchorB,
		Min:     min,
		Max:     max,
		n:       vec.Vec2{X: 1},
	}
	c, err := newConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = c
	return joint, nil
}

// NewFixedSliderJoint limits the distance between the body local anchor
// of body and the world point pivot to [min, max].
func NewFixedSliderJoint(body *Body, anchor, pivot vec.Vec2, min, max float64) (*SliderJoint, error) {
	return NewSliderJoint(newAnchorBody(), body, pivot, anchor, min, max)
}

// State returns the bound the joint pressed against at the last step.
func (joint *SliderJoint) State() LimitState {
	return joint.state
}

func (joint *SliderJoint) preStep(invDt float64) {
	a := joint.bodyA
	b := joint.bodyB

	joint.r1 = a.transform.ApplyVector(joint.AnchorA)
	joint.r2 = b.transform.ApplyVector(joint.AnchorB)

	delta := b.position.Add(joint.r2).Sub(a.position.Add(joint.r1))
	n, dist := normalize(delta)
	if dist != 0 {
		joint.n = n
	}

	state := LimitInactive
	joint.err = 0
	if dist > joint.Max {
		state = LimitUpper
		joint.err = dist - joint.Max
	} else if dist < joint.Min {
		state = LimitLower
		joint.err = dist - joint.Min
	}
	if state != joint.state {
		joint.jnAcc = 0
		joint.state = state
	}
	if state == LimitInactive {
		return
	}

	// calculate the mass normal
	joint.nMass = 1.0 / (kScalar(a, b, joint.r1, joint.r2, joint.n) + joint.Softness)

	// calculate bias velocity
	joint.bias = joint.biasVelocity(joint.err, invDt)

	applyImpulses(a, b, joint.r1, joint.r2, joint.n.Scale(joint.jnAcc))
}

func (joint *SliderJoint) solve() {
	if joint.state == LimitInactive {
		return
	}

	a := joint.bodyA
	b := joint.bodyB
	n := joint.n
	r1 := joint.r1
	r2 := joint.r2

	vrn := normalRelativeVelocity(a, b, r1, r2, n)

	jn := (joint.bias - vrn - joint.Softness*joint.jnAcc) * joint.nMass
	jnOld := joint.jnAcc
	joint.jnAcc = joint.clampLimit(joint.state, jnOld+jn)
	jn = joint.jnAcc - jnOld

	applyImpulses(a, b, r1, r2, n.Scale(jn))
}

// AccumulatedImpulse returns the signed impulse along the joint axis.
func (joint *SliderJoint) AccumulatedImpulse() float64 {
	return joint.jnAcc
}
