package impulse

import (
	"fmt"

	"github.com/setanarut/vec"
)

// LinearSpring pulls two anchors towards RestLength with a damped spring
// force. It works through the force accumulators of the bodies and holds
// no impulse state.
type LinearSpring struct {
	*Constraint
	AnchorA, AnchorB vec.Vec2
	RestLength       float64
	Stiffness        float64
	Damping          float64

	n vec.Vec2
}

// NewLinearSpring joins the body local anchors of a and b with a spring at rest at restLength.
func NewLinearSpring(a, b *Body, anchorA, anchorB vec.Vec2, restLength, stiffness, damping float64) (*LinearSpring, error) {
	if restLength < 0 || stiffness < 0 || damping < 0 {
		return nil, fmt.Errorf("%w: spring parameters must not be negative", ErrInvalidValue)
	}
	spring := &LinearSpring{
		AnchorA:    anchorA,
		AnchorB:    anchorB,
		RestLength: restLength,
		Stiffness:  stiffness,
		Damping:    damping,
		n:          vec.Vec2{X: 1},
	}
	c, err := newConstraint(spring, a, b)
	if err != nil {
		return nil, err
	}
	spring.Constraint = c
	return spring, nil
}

// NewFixedLinearSpring joins the body local anchor of body with the world point pivot.
func NewFixedLinearSpring(body *Body, anchor, pivot vec.Vec2, restLength, stiffness, damping float64) (*LinearSpring, error) {
	return NewLinearSpring(newAnchorBody(), body, pivot, anchor, restLength, stiffness, damping)
}

func (spring *LinearSpring) preStep(float64) {
	a := spring.bodyA
	b := spring.bodyB

	r1 := a.transform.ApplyVector(spring.AnchorA)
	r2 := b.transform.ApplyVector(spring.AnchorB)
	p1 := a.position.Add(r1)
	p2 := b.position.Add(r2)

	n, dist := normalize(p2.Sub(p1))
	if dist != 0 {
		spring.n = n
	}
	spring.err = dist - spring.RestLength

	vrn := normalRelativeVelocity(a, b, r1, r2, spring.n)
	f := spring.n.Scale(-(spring.Stiffness*spring.err + spring.Damping*vrn))

	b.ApplyForceAtWorldPoint(f, p2)
	a.ApplyForceAtWorldPoint(f.Neg(), p1)
}
