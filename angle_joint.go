package impulse

// AngleJoint holds the rotation of B relative to A at TargetAngle.
type AngleJoint struct {
	*Constraint
	TargetAngle float64

	iSum, bias, jAcc float64
}

// NewAngleJoint keeps the current relative rotation of a and b.
func NewAngleJoint(a, b *Body) (*AngleJoint, error) {
	if a == nil || b == nil {
		return nil, errNilBody
	}
	joint := &AngleJoint{}
	c, err := newConstraint(joint, a, b)
	if err != nil {
		return nil, err
	}
	joint.Constraint = c
	joint.TargetAngle = c.relativeRotation()
	return joint, nil
}

// NewFixedAngleJoint holds the total rotation of body at angle.
func NewFixedAngleJoint(body *Body, angle float64) (*AngleJoint, error) {
	joint, err := NewAngleJoint(newAnchorBody(), body)
	if err != nil {
		return nil, err
	}
	joint.TargetAngle = angle
	return joint, nil
}

func (joint *AngleJoint) preStep(invDt float64) {
	joint.iSum = joint.angularMass()
	joint.err = joint.relativeRotation() - joint.TargetAngle
	joint.bias = joint.biasVelocity(joint.err, invDt)

	applyAngularImpulses(joint.bodyA, joint.bodyB, joint.jAcc)
}

func (joint *AngleJoint) solve() {
	a := joint.bodyA
	b := joint.bodyB

	wr := b.w - a.w

	j := (joint.bias - wr - joint.Softness*joint.jAcc) * joint.iSum
	jOld := joint.jAcc
	joint.jAcc = joint.clampImpulse(jOld + j)
	j = joint.jAcc - jOld

	applyAngularImpulses(a, b, j)
}

// AccumulatedImpulse returns the signed angular impulse applied to B.
func (joint *AngleJoint) AccumulatedImpulse() float64 {
	return joint.jAcc
}
