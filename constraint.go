package impulse

import (
	"fmt"
	"math"

	"github.com/setanarut/vec"
)

// Constrainer is implemented by every joint and spring of the package:
// PointJoint, PinJoint, AngleJoint, AngleLimitJoint, SliderJoint,
// LinearSpring and AngleSpring. The set is closed.
type Constrainer interface {
	constraint() *Constraint
}

// Constraint holds the state shared by all joints and springs: the two
// bodies, the error correction parameters and the breakage state.
//
// Joints accumulate impulses that are warm started every step. Springs
// apply forces during PreStep and are not touched by Solve.
type Constraint struct {
	UserData any

	// BiasFactor is the fraction of the error corrected per step.
	BiasFactor float64
	// Softness is added to the effective mass diagonal. Zero is rigid.
	Softness float64
	// Breakpoint is the error magnitude above which the constraint disables
	// itself. Defaults to +Inf.
	Breakpoint float64
	// MaxImpulse caps the accumulated impulse. Defaults to +Inf.
	MaxImpulse float64
	// CollideBodies allows collisions between the two bodies.
	CollideBodies bool

	class        Constrainer
	bodyA, bodyB *Body
	world        *World
	handle       Handle
	err          float64
	enabled      bool
	disposed     bool
}

func newConstraint(class Constrainer, a, b *Body) (*Constraint, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: constraint needs two bodies", ErrInvalidValue)
	}
	if a == b {
		return nil, fmt.Errorf("%w: constraint bodies must differ", ErrInvalidValue)
	}
	return &Constraint{
		BiasFactor:    0.2,
		Breakpoint:    math.Inf(1),
		MaxImpulse:    math.Inf(1),
		CollideBodies: true,
		class:         class,
		bodyA:         a,
		bodyB:         b,
		enabled:       true,
	}, nil
}

func (c *Constraint) constraint() *Constraint {
	return c
}

func (c *Constraint) String() string {
	return fmt.Sprintf("%T between %v and %v", c.class, c.bodyA, c.bodyB)
}

// BodyA returns the first body of the constraint.
func (c *Constraint) BodyA() *Body {
	return c.bodyA
}

// BodyB returns the second body of the constraint.
func (c *Constraint) BodyB() *Body {
	return c.bodyB
}

// Handle returns the handle of the constraint in its World.
func (c *Constraint) Handle() Handle {
	return c.handle
}

// Error returns the geometric error measured at the last PreStep.
func (c *Constraint) Error() float64 {
	return c.err
}

// Enabled reports whether the constraint takes part in solving.
func (c *Constraint) Enabled() bool {
	return c.enabled
}

// SetEnabled enables or disables the constraint. Enabling a constraint
// clears its error and accumulated impulse.
func (c *Constraint) SetEnabled(enabled bool) {
	if enabled && !c.enabled {
		c.err = 0
		c.resetImpulse()
	}
	c.enabled = enabled
}

// IsDisposed reports whether the constraint was disposed.
func (c *Constraint) IsDisposed() bool {
	return c.disposed
}

// Dispose marks the constraint as dead. The World drops it at its next
// validation pass.
func (c *Constraint) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.world != nil {
		c.world.collect()
	}
}

// Validate disposes the constraint when either of its bodies is disposed
// and reports whether the constraint is still alive.
func (c *Constraint) Validate() bool {
	if c.disposed {
		return false
	}
	if c.bodyA.disposed || c.bodyB.disposed {
		c.disposed = true
		if c.world != nil && c.world.Settings.Debug {
			c.world.Logger.Println("impulse: disposing", c, "of disposed body")
		}
		return false
	}
	return true
}

// Impulse returns the magnitude of the accumulated impulse. Springs
// report zero.
func (c *Constraint) Impulse() float64 {
	switch j := c.class.(type) {
	case *PointJoint:
		return j.jAcc.Mag()
	case *PinJoint:
		return math.Abs(j.jnAcc)
	case *AngleJoint:
		return math.Abs(j.jAcc)
	case *AngleLimitJoint:
		return math.Abs(j.jAcc)
	case *SliderJoint:
		return math.Abs(j.jnAcc)
	}
	return 0
}

// PreStep runs the first phase of the constraint. A constraint whose error
// from the previous step exceeds its Breakpoint is disabled here and a
// ConstraintBrokeEvent is emitted.
func (c *Constraint) PreStep(invDt float64) {
	if !c.enabled || c.disposed {
		return
	}
	if math.Abs(c.err) > c.Breakpoint {
		c.enabled = false
		c.resetImpulse()
		if c.world != nil {
			c.world.emit(ConstraintBrokeEvent{Constraint: c, Error: c.err})
			if c.world.Settings.Debug {
				c.world.Logger.Printf("impulse: %v broke, error %.4g > %.4g", c, c.err, c.Breakpoint)
			}
		}
		return
	}

	switch j := c.class.(type) {
	case *PointJoint:
		j.preStep(invDt)
	case *PinJoint:
		j.preStep(invDt)
	case *AngleJoint:
		j.preStep(invDt)
	case *AngleLimitJoint:
		j.preStep(invDt)
	case *SliderJoint:
		j.preStep(invDt)
	case *LinearSpring:
		j.preStep(invDt)
	case *AngleSpring:
		j.preStep(invDt)
	}
}

// Solve runs one solver pass of the constraint.
func (c *Constraint) Solve() {
	if !c.enabled || c.disposed {
		return
	}
	switch j := c.class.(type) {
	case *PointJoint:
		j.solve()
	case *PinJoint:
		j.solve()
	case *AngleJoint:
		j.solve()
	case *AngleLimitJoint:
		j.solve()
	case *SliderJoint:
		j.solve()
	}
}

func (c *Constraint) resetImpulse() {
	switch j := c.class.(type) {
	case *PointJoint:
		j.jAcc = vec.Vec2{}
	case *PinJoint:
		j.jnAcc = 0
	case *AngleJoint:
		j.jAcc = 0
	case *AngleLimitJoint:
		j.jAcc = 0
		j.state = LimitInactive
	case *SliderJoint:
		j.jnAcc = 0
		j.state = LimitInactive
	}
}

// biasVelocity is the Baumgarte velocity that corrects BiasFactor of err
// in one step.
func (c *Constraint) biasVelocity(err, invDt float64) float64 {
	return -c.BiasFactor * invDt * err
}

func (c *Constraint) clampImpulse(j float64) float64 {
	return clamp(j, -c.MaxImpulse, c.MaxImpulse)
}

// relativeRotation is the unwrapped rotation of B relative to A.
func (c *Constraint) relativeRotation() float64 {
	return c.bodyB.TotalRotation() - c.bodyA.TotalRotation()
}

// angularMass is 1/(aInvI + bInvI + Softness).
func (c *Constraint) angularMass() float64 {
	return 1.0 / (c.bodyA.momentInverse + c.bodyB.momentInverse + c.Softness)
}

// LimitState tells which bound a limit joint is pressing against.
type LimitState uint8

const (
	LimitInactive LimitState = iota
	LimitLower
	LimitUpper
)

func (s LimitState) String() string {
	switch s {
	case LimitLower:
		return "lower"
	case LimitUpper:
		return "upper"
	}
	return "inactive"
}

// clampLimit keeps the accumulated impulse of a limit one-signed: a lower
// limit only pushes in the positive direction, an upper limit only in the
// negative one.
func (c *Constraint) clampLimit(state LimitState, acc float64) float64 {
	if state == LimitUpper {
		return clamp(acc, -c.MaxImpulse, 0)
	}
	return clamp(acc, 0, c.MaxImpulse)
}
