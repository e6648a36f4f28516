package impulse

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/setanarut/vec"
)

// Contact is a single contact point of an Arbiter.
type Contact struct {
	// Position is the world position of the contact.
	Position vec.Vec2
	// Normal points from the first shape of the arbiter to the second.
	Normal vec.Vec2
	// Separation is negative when the shapes overlap.
	Separation float64
	// ID matches the contact with the one of the previous step.
	ID ContactID

	r1, r2       vec.Vec2
	nMass, tMass float64
	bias, bounce float64

	jnAcc, jtAcc, jBias float64
}

// NormalImpulse returns the accumulated normal impulse.
func (c *Contact) NormalImpulse() float64 {
	return c.jnAcc
}

// TangentImpulse returns the accumulated friction impulse.
func (c *Contact) TangentImpulse() float64 {
	return c.jtAcc
}

// BiasImpulse returns the accumulated positional correction impulse of the
// current step.
func (c *Contact) BiasImpulse() float64 {
	return c.jBias
}

// Arbiter tracks a pair of colliding shapes. It persists until the shapes
// separate so accumulated impulses can be carried over between steps.
type Arbiter struct {
	UserData any

	shapeA, shapeB *Shape
	bodyA, bodyB   *Body
	friction       float64
	restitution    float64
	contacts       []Contact
	scratch        []Contact // previous contact buffer, reused by Collide
	held           []Contact // contacts of a vetoed step, matched by the next Collide
	settings       *Settings
	touching       bool
}

// NewArbiter returns an arbiter for the pair. The shape with the lower id
// always becomes the first shape, so the result does not depend on argument order.
func NewArbiter(a, b *Shape, settings *Settings) *Arbiter {
	if b.id < a.id {
		a, b = b, a
	}
	arb := &Arbiter{
		shapeA:   a,
		shapeB:   b,
		bodyA:    a.body,
		bodyB:    b.body,
		settings: settings,
	}
	arb.updateCoefficients()
	return arb
}

func (arb *Arbiter) String() string {
	return fmt.Sprintf("Arbiter %d-%d, %d contacts", arb.shapeA.id, arb.shapeB.id, len(arb.contacts))
}

func (arb *Arbiter) updateCoefficients() {
	arb.friction = arb.settings.FrictionRule.Combine(arb.shapeA.Friction, arb.shapeB.Friction)
	arb.restitution = (arb.shapeA.Restitution + arb.shapeB.Restitution) / 2
}

// Collide refreshes the contacts from the narrow phase. Fresh contacts are
// capped at MaxContactsToDetect, sorted deepest first and capped again at
// MaxContactsToResolve. A contact whose ID was present in the previous step
// inherits its accumulated normal and tangent impulse.
func (arb *Arbiter) Collide(np NarrowPhase) int {
	arb.updateCoefficients()

	fresh := np.Collide(arb.shapeA, arb.shapeB, arb.scratch[:0])
	if len(fresh) > arb.settings.MaxContactsToDetect {
		fresh = fresh[:arb.settings.MaxContactsToDetect]
	}
	slices.SortStableFunc(fresh, func(a, b Contact) int {
		return cmp.Compare(a.Separation, b.Separation)
	})
	if len(fresh) > arb.settings.MaxContactsToResolve {
		fresh = fresh[:arb.settings.MaxContactsToResolve]
	}

	previous := arb.contacts
	if len(previous) == 0 {
		previous = arb.held
	}
	for i := range fresh {
		con := &fresh[i]
		con.jnAcc = 0
		con.jtAcc = 0
		for j := range previous {
			old := &previous[j]
			if old.ID == con.ID {
				con.jnAcc = old.jnAcc
				con.jtAcc = old.jtAcc
				break
			}
		}
	}

	arb.held = arb.held[:0]
	arb.scratch = arb.contacts[:0]
	arb.contacts = fresh
	return len(fresh)
}

// veto runs the collision callbacks of both shapes. A false return clears
// the contacts for this step, the arbiter itself is kept and its impulses
// are held for the next Collide.
func (arb *Arbiter) veto() bool {
	if len(arb.contacts) == 0 {
		return false
	}
	for _, f := range [2]CollisionFunc{arb.shapeA.OnCollision, arb.shapeB.OnCollision} {
		if f != nil && !f(arb) {
			arb.held = append(arb.held[:0], arb.contacts...)
			arb.contacts = arb.contacts[:0]
			return true
		}
	}
	return false
}

// Responds reports whether the arbiter generates impulses. Detection goes on
// when either shape ignores collision response.
func (arb *Arbiter) Responds() bool {
	return !arb.shapeA.IgnoresCollisionResponse && !arb.shapeB.IgnoresCollisionResponse
}

// PreStepImpulse computes anchors, effective masses, the penetration bias
// and the bounce velocity of every contact. The World runs it for every
// arbiter before any of them is warm started with ApplyCachedImpulse.
func (arb *Arbiter) PreStepImpulse(invDt float64) {
	if !arb.Responds() {
		return
	}
	a := arb.bodyA
	b := arb.bodyB
	biasFactor := arb.settings.BiasFactor
	slop := arb.settings.AllowedPenetration

	for i := range arb.contacts {
		con := &arb.contacts[i]
		n := con.Normal

		con.r1 = con.Position.Sub(a.position)
		con.r2 = con.Position.Sub(b.position)

		// Calculate the mass normal and mass tangent.
		con.nMass = 1.0 / kScalar(a, b, con.r1, con.r2, n)
		con.tMass = 1.0 / kScalar(a, b, con.r1, con.r2, n.Perp())

		// Calculate the target bias velocity.
		con.bias = -biasFactor * invDt * math.Min(0, slop+con.Separation)
		con.jBias = 0.0

		// Calculate the target bounce velocity.
		con.bounce = normalRelativeVelocity(a, b, con.r1, con.r2, n) * arb.restitution
	}
}

// ApplyCachedImpulse applies the accumulated impulses carried over from the
// previous step.
func (arb *Arbiter) ApplyCachedImpulse() {
	if !arb.Responds() {
		return
	}
	for i := range arb.contacts {
		con := &arb.contacts[i]
		j := con.Normal.RotateComplex(vec.Vec2{X: con.jnAcc, Y: con.jtAcc})
		applyImpulses(arb.bodyA, arb.bodyB, con.r1, con.r2, j)
	}
}

// ApplyImpulse runs one solver pass over the contacts.
func (arb *Arbiter) ApplyImpulse() {
	if !arb.Responds() {
		return
	}
	a := arb.bodyA
	b := arb.bodyB
	friction := arb.friction

	for i := range arb.contacts {
		con := &arb.contacts[i]
		n := con.Normal
		nMass := con.nMass
		r1 := con.r1
		r2 := con.r2

		vb1 := a.vBias.Add(r1.Perp().Scale(a.wBias))
		vb2 := b.vBias.Add(r2.Perp().Scale(b.wBias))
		vr := relativeVelocity(a, b, r1, r2)

		vbn := vb2.Sub(vb1).Dot(n)
		vrn := vr.Dot(n)
		vrt := vr.Dot(n.Perp())

		jbn := (con.bias - vbn) * nMass
		jbnOld := con.jBias
		con.jBias = math.Max(jbnOld+jbn, 0)

		jn := -(con.bounce + vrn) * nMass
		jnOld := con.jnAcc
		con.jnAcc = math.Max(jnOld+jn, 0)

		jtMax := friction * con.jnAcc
		jt := -vrt * con.tMass
		jtOld := con.jtAcc
		con.jtAcc = clamp(jtOld+jt, -jtMax, jtMax)

		applyBiasImpulses(a, b, r1, r2, n.Scale(con.jBias-jbnOld))
		applyImpulses(a, b, r1, r2, n.RotateComplex(vec.Vec2{
			X: con.jnAcc - jnOld,
			Y: con.jtAcc - jtOld,
		}))
	}
}

// TotalImpulse returns the sum of the accumulated normal and friction
// impulses, as applied to the second body.
func (arb *Arbiter) TotalImpulse() vec.Vec2 {
	var sum vec.Vec2
	for i := range arb.contacts {
		con := &arb.contacts[i]
		sum = sum.Add(con.Normal.RotateComplex(vec.Vec2{X: con.jnAcc, Y: con.jtAcc}))
	}
	return sum
}

// Count returns the number of contacts of the current step.
func (arb *Arbiter) Count() int {
	return len(arb.contacts)
}

// Contacts returns the contacts of the current step. The slice is reused
// by the next step.
func (arb *Arbiter) Contacts() []Contact {
	return arb.contacts
}

// Friction returns the combined friction coefficient of the pair.
func (arb *Arbiter) Friction() float64 {
	return arb.friction
}

// Restitution returns the combined restitution coefficient of the pair.
func (arb *Arbiter) Restitution() float64 {
	return arb.restitution
}

// Shapes returns the colliding shapes, lower id first.
func (arb *Arbiter) Shapes() (*Shape, *Shape) {
	return arb.shapeA, arb.shapeB
}

// Bodies returns the bodies of the colliding shapes.
func (arb *Arbiter) Bodies() (*Body, *Body) {
	return arb.bodyA, arb.bodyB
}

// Touching reports whether the arbiter has had contacts since it was created.
func (arb *Arbiter) Touching() bool {
	return arb.touching
}

func (arb *Arbiter) key() pairKey {
	return pairKey{arb.shapeA.id, arb.shapeB.id}
}

type pairKey struct {
	lo, hi uint64
}

func makePairKey(a, b *Shape) pairKey {
	if b.id < a.id {
		a, b = b, a
	}
	return pairKey{a.id, b.id}
}
