package impulse_test

import (
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/setanarut/impulse"
	"github.com/setanarut/vec"
)

const dt = 1.0 / 60.0

func newBodyAt(t *testing.T, w *impulse.World, pos vec.Vec2) *impulse.Body {
	t.Helper()
	body, err := impulse.NewBody(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	body.SetPosition(pos)
	if _, err := w.AddBody(body); err != nil {
		t.Fatal(err)
	}
	return body
}

func newPinnedPair(t *testing.T) (*impulse.World, *impulse.Body, *impulse.Body, *impulse.PinJoint) {
	t.Helper()
	w := impulse.NewWorld()
	a := newBodyAt(t, w, vec.Vec2{})
	b := newBodyAt(t, w, vec.Vec2{X: 5})
	joint, err := impulse.NewPinJoint(a, b, vec.Vec2{}, vec.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddConstraint(joint); err != nil {
		t.Fatal(err)
	}
	return w, a, b, joint
}

func TestPinJointSatisfied(t *testing.T) {
	w, _, b, joint := newPinnedPair(t)

	if joint.Distance != 5 {
		t.Fatalf("expected distance 5, got %v", joint.Distance)
	}
	w.Step(dt)
	if joint.Impulse() > 1e-9 {
		t.Errorf("satisfied joint applied impulse %v", joint.Impulse())
	}
	if b.Velocity() != (vec.Vec2{}) {
		t.Errorf("satisfied joint moved body: %v", b.Velocity())
	}
}

func TestPinJointConvergesWithoutOvershoot(t *testing.T) {
	g := NewWithT(t)
	w, _, b, joint := newPinnedPair(t)

	b.SetPosition(vec.Vec2{X: 6})
	prev := math.Inf(1)
	for i := range 10 {
		w.Step(dt)
		e := joint.Error()
		g.Expect(math.Abs(e)).To(BeNumerically("<=", prev+1e-12), "step %d", i)
		g.Expect(e).To(BeNumerically(">", -2), "step %d", i)
		prev = math.Abs(e)
	}
	g.Expect(prev).To(BeNumerically("<", 1))

	for range 60 {
		w.Step(dt)
	}
	g.Expect(math.Abs(joint.Error())).To(BeNumerically("<", 0.01))
}

func TestBreakpointDisablesOnce(t *testing.T) {
	g := NewWithT(t)
	w, a, b, joint := newPinnedPair(t)
	joint.Breakpoint = 0.5

	var broke []impulse.ConstraintBrokeEvent
	w.Events.Subscribe(impulse.CONSTRAINT_BROKE, func(e impulse.Event) {
		broke = append(broke, e.(impulse.ConstraintBrokeEvent))
	})

	b.SetPosition(vec.Vec2{X: 6})
	w.Step(dt)
	g.Expect(joint.Enabled()).To(BeTrue())
	w.Step(dt)
	g.Expect(joint.Enabled()).To(BeFalse())
	g.Expect(broke).To(HaveLen(1))
	g.Expect(broke[0].Constraint).To(BeIdenticalTo(joint.Constraint))
	g.Expect(broke[0].Error).To(BeNumerically("~", 1, 1e-9))
	g.Expect(joint.Impulse()).To(BeZero())

	va, vb := a.Velocity(), b.Velocity()
	joint.Solve()
	g.Expect(a.Velocity()).To(Equal(va))
	g.Expect(b.Velocity()).To(Equal(vb))

	for range 10 {
		w.Step(dt)
	}
	g.Expect(broke).To(HaveLen(1))
	g.Expect(a.Velocity()).To(Equal(va))
	g.Expect(b.Velocity()).To(Equal(vb))
}

func TestReenableClearsError(t *testing.T) {
	w, _, b, joint := newPinnedPair(t)
	joint.Breakpoint = 0.5
	b.SetPosition(vec.Vec2{X: 6})
	w.Step(dt)
	w.Step(dt)
	if joint.Enabled() {
		t.Fatal("joint should be broken")
	}

	joint.Breakpoint = math.Inf(1)
	joint.SetEnabled(true)
	if joint.Error() != 0 {
		t.Errorf("re-enabled joint kept error %v", joint.Error())
	}
	w.Step(dt)
	if !joint.Enabled() || joint.Impulse() == 0 {
		t.Error("re-enabled joint should be solving again")
	}
}

func TestAngleLimitPushesOneWay(t *testing.T) {
	g := NewWithT(t)
	w := impulse.NewWorld()
	body := newBodyAt(t, w, vec.Vec2{})
	body.SetAngularVelocity(5)

	limit, err := impulse.NewFixedAngleLimitJoint(body, -0.5, 0.5)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = w.AddConstraint(limit)
	g.Expect(err).NotTo(HaveOccurred())

	var sawUpper, sawLower bool
	for range 240 {
		w.Step(dt)
		switch limit.State() {
		case impulse.LimitUpper:
			sawUpper = true
			g.Expect(limit.AccumulatedImpulse()).To(BeNumerically("<=", 0))
		case impulse.LimitLower:
			sawLower = true
			g.Expect(limit.AccumulatedImpulse()).To(BeNumerically(">=", 0))
		default:
			g.Expect(limit.AccumulatedImpulse()).To(BeZero())
		}
		g.Expect(body.TotalRotation()).To(BeNumerically("<", 0.7))
		g.Expect(body.TotalRotation()).To(BeNumerically(">", -0.7))
	}
	g.Expect(sawUpper).To(BeTrue())
	g.Expect(sawLower).To(BeTrue())
}

func TestAngleLimitRejectsInvertedRange(t *testing.T) {
	body, _ := impulse.NewBody(1, 1)
	if _, err := impulse.NewFixedAngleLimitJoint(body, 1, -1); !errors.Is(err, impulse.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestAngleJointHoldsRotation(t *testing.T) {
	g := NewWithT(t)
	w := impulse.NewWorld()
	a := newBodyAt(t, w, vec.Vec2{})
	b := newBodyAt(t, w, vec.Vec2{X: 2})
	b.SetAngle(0.3)

	joint, err := impulse.NewAngleJoint(a, b)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(joint.TargetAngle).To(BeNumerically("~", 0.3, 1e-12))
	_, err = w.AddConstraint(joint)
	g.Expect(err).NotTo(HaveOccurred())

	a.SetAngularVelocity(2)
	for range 120 {
		w.Step(dt)
	}
	rel := b.TotalRotation() - a.TotalRotation()
	g.Expect(rel).To(BeNumerically("~", 0.3, 0.01))
	g.Expect(a.AngularVelocity()).To(BeNumerically("~", b.AngularVelocity(), 1e-6))
}

func TestSliderJointActsAsRope(t *testing.T) {
	g := NewWithT(t)
	w := impulse.NewWorld()
	body := newBodyAt(t, w, vec.Vec2{X: 1})
	body.SetVelocity(vec.Vec2{X: 5})

	rope, err := impulse.NewFixedSliderJoint(body, vec.Vec2{}, vec.Vec2{}, 0, 2)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = w.AddConstraint(rope)
	g.Expect(err).NotTo(HaveOccurred())

	var taut bool
	for range 60 {
		w.Step(dt)
		if rope.State() == impulse.LimitUpper {
			taut = true
			g.Expect(rope.AccumulatedImpulse()).To(BeNumerically("<=", 0))
		}
		g.Expect(body.Position().Mag()).To(BeNumerically("<", 2.2))
	}
	g.Expect(taut).To(BeTrue())
	g.Expect(body.Velocity().X).To(BeNumerically("<", 5))
}

func TestSliderJointRejectsBadRange(t *testing.T) {
	body, _ := impulse.NewBody(1, 1)
	for _, r := range [][2]float64{{-1, 1}, {2, 1}} {
		if _, err := impulse.NewFixedSliderJoint(body, vec.Vec2{}, vec.Vec2{}, r[0], r[1]); err == nil {
			t.Errorf("range %v should be rejected", r)
		}
	}
}

func TestFixedPointJointHangs(t *testing.T) {
	w := impulse.NewWorld()
	w.Gravity = vec.Vec2{Y: -9.81}
	body := newBodyAt(t, w, vec.Vec2{X: 1})

	joint, err := impulse.NewFixedPointJoint(body, vec.Vec2{X: -1}, vec.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddConstraint(joint); err != nil {
		t.Fatal(err)
	}
	for range 180 {
		w.Step(dt)
		if joint.Error() > 0.1 {
			t.Fatalf("point joint drifted by %v", joint.Error())
		}
	}
	if body.Position().Y >= 0 {
		t.Errorf("body should swing down, at %v", body.Position())
	}
}

func TestLinearSpringForce(t *testing.T) {
	g := NewWithT(t)
	w := impulse.NewWorld()
	body := newBodyAt(t, w, vec.Vec2{X: 2})

	spring, err := impulse.NewFixedLinearSpring(body, vec.Vec2{}, vec.Vec2{}, 1, 10, 0)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = w.AddConstraint(spring)
	g.Expect(err).NotTo(HaveOccurred())

	w.Step(0.1)
	g.Expect(body.Velocity().X).To(BeNumerically("~", -1, 1e-12))
	g.Expect(spring.Error()).To(BeNumerically("~", 1, 1e-12))
	g.Expect(spring.Impulse()).To(BeZero())
	g.Expect(body.Force()).To(Equal(vec.Vec2{}))
}

func TestSpringsRejectNegativeParameters(t *testing.T) {
	body, _ := impulse.NewBody(1, 1)
	if _, err := impulse.NewFixedLinearSpring(body, vec.Vec2{}, vec.Vec2{}, 1, -1, 0); err == nil {
		t.Error("negative stiffness should be rejected")
	}
	if _, err := impulse.NewFixedAngleSpring(body, 0, 1, -1); err == nil {
		t.Error("negative damping should be rejected")
	}
}

func TestAngleSpringTorque(t *testing.T) {
	g := NewWithT(t)
	w := impulse.NewWorld()
	body := newBodyAt(t, w, vec.Vec2{})
	body.SetAngle(0.5)

	spring, err := impulse.NewFixedAngleSpring(body, 0, 2, 0)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = w.AddConstraint(spring)
	g.Expect(err).NotTo(HaveOccurred())

	w.Step(0.1)
	g.Expect(body.AngularVelocity()).To(BeNumerically("~", -0.1, 1e-12))
}

func TestConstraintValidation(t *testing.T) {
	g := NewWithT(t)

	a, _ := impulse.NewBody(1, 1)
	_, err := impulse.NewPinJoint(a, a, vec.Vec2{}, vec.Vec2{})
	g.Expect(errors.Is(err, impulse.ErrInvalidValue)).To(BeTrue())

	_, err = impulse.NewPinJoint(nil, a, vec.Vec2{}, vec.Vec2{})
	g.Expect(errors.Is(err, impulse.ErrInvalidValue)).To(BeTrue())

	w := impulse.NewWorld()
	s1, s2 := impulse.NewStaticBody(), impulse.NewStaticBody()
	static, err := impulse.NewPinJoint(s1, s2, vec.Vec2{}, vec.Vec2{})
	g.Expect(err).NotTo(HaveOccurred())
	_, err = w.AddConstraint(static)
	g.Expect(errors.Is(err, impulse.ErrInvalidValue)).To(BeTrue())

	other := impulse.NewWorld()
	b := newBodyAt(t, other, vec.Vec2{X: 1})
	c := newBodyAt(t, w, vec.Vec2{X: 2})
	foreign, err := impulse.NewPinJoint(c, b, vec.Vec2{}, vec.Vec2{})
	g.Expect(err).NotTo(HaveOccurred())
	_, err = w.AddConstraint(foreign)
	g.Expect(errors.Is(err, impulse.ErrForeign)).To(BeTrue())
}

func TestDisposedBodyCascades(t *testing.T) {
	g := NewWithT(t)
	w, a, b, joint := newPinnedPair(t)

	var removed int
	w.Events.Subscribe(impulse.CONSTRAINT_REMOVED, func(impulse.Event) { removed++ })

	a.Dispose()
	g.Expect(joint.IsDisposed()).To(BeTrue())
	g.Expect(w.Constraints()).To(BeEmpty())
	g.Expect(b.Constraints()).To(BeEmpty())
	g.Expect(w.Bodies()).To(ConsistOf(b))
	g.Expect(removed).To(Equal(1))

	w.Step(dt)
	g.Expect(removed).To(Equal(1))
}

func TestStaleConstraintHandle(t *testing.T) {
	w, _, _, joint := newPinnedPair(t)
	h := joint.Handle()
	if _, ok := w.Constraint(h); !ok {
		t.Fatal("live handle should resolve")
	}
	w.RemoveConstraint(joint)
	if _, ok := w.Constraint(h); ok {
		t.Error("stale handle should not resolve")
	}
}

func hangFromPin(t *testing.T, softness float64) *impulse.PinJoint {
	t.Helper()
	w := impulse.NewWorld()
	w.Gravity = vec.Vec2{Y: -10}
	bob := newBodyAt(t, w, vec.Vec2{Y: -2})
	rod, err := impulse.NewFixedPinJoint(bob, vec.Vec2{}, vec.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	rod.Softness = softness
	if _, err := w.AddConstraint(rod); err != nil {
		t.Fatal(err)
	}
	for range 300 {
		w.Step(dt)
	}
	return rod
}

func TestSoftJointSagsFurther(t *testing.T) {
	g := NewWithT(t)

	// steady state: BiasFactor*err = g*dt²*(1 + Softness*m)
	rigid := hangFromPin(t, 0)
	soft := hangFromPin(t, 1)

	g.Expect(rigid.Error()).To(BeNumerically("~", 10*dt*dt/0.2, 1e-4))
	g.Expect(soft.Error()).To(BeNumerically("~", 2*10*dt*dt/0.2, 1e-4))
	g.Expect(rigid.Impulse()).To(BeNumerically("~", 10*dt, 1e-4))
	g.Expect(soft.Impulse()).To(BeNumerically("~", 10*dt, 1e-4))
}

func TestMaxImpulseCapsJoints(t *testing.T) {
	g := NewWithT(t)

	w, _, b, pin := newPinnedPair(t)
	pin.MaxImpulse = 0.05
	b.SetPosition(vec.Vec2{X: 8})

	free, _, freeB, freePin := newPinnedPair(t)
	freeB.SetPosition(vec.Vec2{X: 8})

	for i := range 10 {
		w.Step(dt)
		free.Step(dt)
		g.Expect(pin.Impulse()).To(BeNumerically("<=", 0.05+1e-12), "step %d", i)
	}
	g.Expect(pin.Impulse()).To(BeNumerically("~", 0.05, 1e-12))
	g.Expect(pin.Error()).To(BeNumerically(">", freePin.Error()))

	w = impulse.NewWorld()
	body := newBodyAt(t, w, vec.Vec2{X: 2})
	point, err := impulse.NewFixedPointJoint(body, vec.Vec2{}, vec.Vec2{})
	g.Expect(err).NotTo(HaveOccurred())
	point.MaxImpulse = 0.1
	_, err = w.AddConstraint(point)
	g.Expect(err).NotTo(HaveOccurred())
	for i := range 10 {
		w.Step(dt)
		g.Expect(point.Impulse()).To(BeNumerically("<=", 0.1+1e-12), "step %d", i)
	}
	g.Expect(body.Velocity().Mag()).To(BeNumerically("<=", 1+1e-9))
}

func TestLimitSwitchResetsImpulse(t *testing.T) {
	g := NewWithT(t)
	w := impulse.NewWorld()
	body := newBodyAt(t, w, vec.Vec2{X: 4})
	slider, err := impulse.NewFixedSliderJoint(body, vec.Vec2{}, vec.Vec2{}, 2, 3)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = w.AddConstraint(slider)
	g.Expect(err).NotTo(HaveOccurred())

	moveTo := func(x float64) {
		body.SetPosition(vec.Vec2{X: x})
		body.SetVelocity(vec.Vec2{})
		w.Step(dt)
	}

	moveTo(4)
	g.Expect(slider.State()).To(Equal(impulse.LimitUpper))
	g.Expect(slider.AccumulatedImpulse()).To(BeNumerically("~", -0.2*60, 1e-9))

	moveTo(1)
	g.Expect(slider.State()).To(Equal(impulse.LimitLower))
	g.Expect(slider.AccumulatedImpulse()).To(BeNumerically("~", 0.2*60, 1e-9))

	moveTo(2.5)
	g.Expect(slider.State()).To(Equal(impulse.LimitInactive))
	g.Expect(slider.AccumulatedImpulse()).To(BeZero())

	limit, err := impulse.NewFixedAngleLimitJoint(body, -0.5, 0.5)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = w.AddConstraint(limit)
	g.Expect(err).NotTo(HaveOccurred())

	turnTo := func(angle float64) {
		body.SetAngle(angle)
		body.SetAngularVelocity(0)
		moveTo(2.5)
	}

	turnTo(1)
	g.Expect(limit.State()).To(Equal(impulse.LimitUpper))
	g.Expect(limit.AccumulatedImpulse()).To(BeNumerically("<", 0))

	turnTo(-1)
	g.Expect(limit.State()).To(Equal(impulse.LimitLower))
	g.Expect(limit.AccumulatedImpulse()).To(BeNumerically(">", 0))

	turnTo(0)
	g.Expect(limit.State()).To(Equal(impulse.LimitInactive))
	g.Expect(limit.AccumulatedImpulse()).To(BeZero())
}
