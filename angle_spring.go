package impulse

import "fmt"

// AngleSpring turns the rotation of B relative to A towards RestAngle with
// a damped torque.
type AngleSpring struct {
	*Constraint
	RestAngle float64
	Stiffness float64
	Damping   float64
}

// NewAngleSpring joins a and b with a rotary spring at rest at their current relative rotation.
func NewAngleSpring(a, b *Body, stiffness, damping float64) (*AngleSpring, error) {
	if stiffness < 0 || damping < 0 {
		return nil, fmt.Errorf("%w: spring parameters must not be negative", ErrInvalidValue)
	}
	spring := &AngleSpring{
		Stiffness: stiffness,
		Damping:   damping,
	}
	c, err := newConstraint(spring, a, b)
	if err != nil {
		return nil, err
	}
	spring.Constraint = c
	spring.RestAngle = c.relativeRotation()
	return spring, nil
}

// NewFixedAngleSpring turns the total rotation of body towards angle.
func NewFixedAngleSpring(body *Body, angle, stiffness, damping float64) (*AngleSpring, error) {
	spring, err := NewAngleSpring(newAnchorBody(), body, stiffness, damping)
	if err != nil {
		return nil, err
	}
	spring.RestAngle = angle
	return spring, nil
}

func (spring *AngleSpring) preStep(float64) {
	a := spring.bodyA
	b := spring.bodyB

	spring.err = spring.relativeRotation() - spring.RestAngle
	torque := -(spring.Stiffness*spring.err + spring.Damping*(b.w-a.w))

	b.ApplyTorque(torque)
	a.ApplyTorque(-torque)
}
