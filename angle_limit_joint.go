package impulse

import "fmt"

// AngleLimitJoint keeps the rotation of B relative to A within [Lower, Upper].
// It only pushes once a bound is crossed and never pulls back towards it.
type AngleLimitJoint struct {
	*Constraint
	Lower, Upper float64

	state            LimitState
	iSum, bias, jAcc float64
}

// NewAngleLimitJoint limits the relative rotation of a and b to [lower, upper].
func NewAngleLimitJoint(a, b *Body, lower, upper float64) (*AngleLimitJoint, error) {
	if lower > upper {
		return nil, fmt.Errorf("%w: angle limit lower %v > upper %v", ErrInvalidValue, lower, upper)
	}
	joint := &AngleLimitJoint{
		Lower: lower,
		Upper: upper,
	}
	c, err := newConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = c
	return joint, nil
}

// NewFixedAngleLimitJoint limits the total rotation of body to [lower, upper].
func NewFixedAngleLimitJoint(body *Body, lower, upper float64) (*AngleLimitJoint, error) {
	return NewAngleLimitJoint(newAnchorBody(), body, lower, upper)
}

// State returns the bound the joint pressed against at the last step.
func (joint *AngleLimitJoint) State() LimitState {
	return joint.state
}

func (joint *AngleLimitJoint) preStep(invDt float64) {
	rel := joint.relativeRotation()

	state := LimitInactive
	joint.err = 0
	if rel < joint.Lower {
		state = LimitLower
		joint.err = rel - joint.Lower
	} else if rel > joint.Upper {
		state = LimitUpper
		joint.err = rel - joint.Upper
	}
	if state != joint.state {
		// the old impulse pushed the other way
		joint.jAcc = 0
		joint.state = state
	}
	if state == LimitInactive {
		return
	}

	joint.iSum = joint.angularMass()
	joint.bias = joint.biasVelocity(joint.err, invDt)

	applyAngularImpulses(joint.bodyA, joint.bodyB, joint.jAcc)
}

func (joint *AngleLimitJoint) solve() {
	if joint.state == LimitInactive {
		return
	}
	a := joint.bodyA
	b := joint.bodyB

	wr := b.w - a.w

	j := (joint.bias - wr - joint.Softness*joint.jAcc) * joint.iSum
	jOld := joint.jAcc
	joint.jAcc = joint.clampLimit(joint.state, jOld+j)
	j = joint.jAcc - jOld

	applyAngularImpulses(a, b, j)
}

// AccumulatedImpulse returns the signed angular impulse applied to B.
func (joint *AngleLimitJoint) AccumulatedImpulse() float64 {
	return joint.jAcc
}
