package impulse

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/setanarut/vec"
)

var bodyCur atomic.Uint64

// Body is a rigid body: mass properties, kinematic state and the per-step
// force, torque and impulse accumulators.
//
// The body origin is its center of mass. Anchors and shape geometry are
// expressed relative to it.
type Body struct {
	// UserData is an object that this body is associated with.
	//
	// You can use this get a reference to your game object or controller object from within callbacks.
	UserData any

	// LinearDrag is the coefficient k of the linear drag force -k*v.
	LinearDrag float64
	// QuadraticDrag is the coefficient k2 of the quadratic drag force -k2*|v|*v.
	// Zero disables the quadratic term.
	QuadraticDrag float64
	// AngularDrag is the coefficient k of the rotational drag torque -k*w*|w|.
	AngularDrag float64
	// IgnoresGravity excludes the body from the World gravity.
	IgnoresGravity bool

	id          uint64
	world       *World
	handle      Handle
	shapes      []*Shape
	constraints []*Constraint

	mass          float64
	massInverse   float64
	moment        float64
	momentInverse float64

	position    vec.Vec2
	angle       float64 // wrapped into [0, 2π)
	revolutions int
	velocity    vec.Vec2
	w           float64 // angular velocity

	force          vec.Vec2
	torque         float64
	impulse        vec.Vec2
	angularImpulse float64

	vBias vec.Vec2 // "pseudo-velocities" used for eliminating overlap. (Erin Catto)
	wBias float64  // "pseudo-velocities" used for eliminating overlap. (Erin Catto)

	transform Transform
	static    bool
	disposed  bool
}

// NewBody initializes a dynamic rigid body with the given mass and moment of inertia.
//
// Both values must be strictly positive. Guessing the moment of inertia is
// usually a bad idea. Use the moment estimation functions MomentFor*().
func NewBody(mass, moment float64) (*Body, error) {
	body := newBody()
	if err := body.SetMass(mass); err != nil {
		return nil, err
	}
	if err := body.SetMoment(moment); err != nil {
		return nil, err
	}
	return body, nil
}

// NewStaticBody returns a body with infinite mass and moment. Static bodies
// are never integrated.
func NewStaticBody() *Body {
	body := newBody()
	body.static = true
	body.mass = infinity
	body.moment = infinity
	return body
}

func newBody() *Body {
	return &Body{
		id:        bodyCur.Add(1),
		transform: NewTransformIdentity(),
	}
}

// String returns body id as string
func (b *Body) String() string {
	return fmt.Sprint("Body ", b.id, ", Shapes ", len(b.shapes))
}

// ID returns the process-unique id of the body.
func (b *Body) ID() uint64 {
	return b.id
}

// Handle returns the handle of the body in its World. The zero Handle is
// returned if the body was never added.
func (b *Body) Handle() Handle {
	return b.handle
}

// World returns the world the body belongs to, or nil.
func (b *Body) World() *World {
	return b.world
}

// Shapes returns the collision shapes attached to the body.
func (b *Body) Shapes() []*Shape {
	return b.shapes
}

// Constraints returns the constraints that reference the body.
func (b *Body) Constraints() []*Constraint {
	return b.constraints
}

// IsStatic reports whether the body has infinite mass.
func (b *Body) IsStatic() bool {
	return b.static
}

// Mass returns mass of the body
func (b *Body) Mass() float64 {
	return b.mass
}

// InverseMass returns 1/mass, or 0 for static bodies.
func (b *Body) InverseMass() float64 {
	return b.massInverse
}

// SetMass sets mass of the body. The mass of a dynamic body must be positive.
func (b *Body) SetMass(mass float64) error {
	if b.static {
		return fmt.Errorf("%w: cannot set the mass of a static body", ErrInvalidValue)
	}
	if !(mass > 0) || math.IsInf(mass, 1) {
		return fmt.Errorf("%w: mass must be positive and finite, got %v", ErrInvalidValue, mass)
	}
	b.mass = mass
	b.massInverse = 1 / mass
	return nil
}

// Moment returns moment of inertia of the body.
func (b *Body) Moment() float64 {
	return b.moment
}

// InverseMoment returns 1/moment, or 0 for static bodies.
func (b *Body) InverseMoment() float64 {
	return b.momentInverse
}

// SetMoment sets moment of inertia of the body. The moment of a dynamic body
// must be positive.
func (b *Body) SetMoment(moment float64) error {
	if b.static {
		return fmt.Errorf("%w: cannot set the moment of a static body", ErrInvalidValue)
	}
	if !(moment > 0) || math.IsInf(moment, 1) {
		return fmt.Errorf("%w: moment of inertia must be positive and finite, got %v", ErrInvalidValue, moment)
	}
	b.moment = moment
	b.momentInverse = 1 / moment
	return nil
}

// Position returns the position of the body.
func (b *Body) Position() vec.Vec2 {
	return b.position
}

// SetPosition sets the position of the body.
func (b *Body) SetPosition(position vec.Vec2) {
	b.position = position
	b.updateTransform()
}

// Angle returns the rotation of the body wrapped into [0, 2π).
func (b *Body) Angle() float64 {
	return b.angle
}

// Revolutions returns the number of full turns the body has made. Negative
// values count clockwise turns.
func (b *Body) Revolutions() int {
	return b.revolutions
}

// TotalRotation returns the unwrapped rotation Angle() + 2π*Revolutions().
func (b *Body) TotalRotation() float64 {
	return b.angle + float64(b.revolutions)*twoPi
}

// SetAngle sets the total rotation of the body.
func (b *Body) SetAngle(angle float64) {
	b.revolutions = 0
	b.wrapAngle(angle)
	b.updateTransform()
}

func (b *Body) wrapAngle(angle float64) {
	turns := math.Floor(angle / twoPi)
	a := angle - turns*twoPi
	if a >= twoPi {
		a -= twoPi
		turns++
	}
	b.angle = a
	b.revolutions += int(turns)
}

// Rotation returns the rotation vector of the body.
func (b *Body) Rotation() vec.Vec2 {
	return vec.Vec2{X: b.transform.a, Y: b.transform.b}
}

// Velocity returns the velocity of the body.
func (b *Body) Velocity() vec.Vec2 {
	return b.velocity
}

// SetVelocity sets the velocity of the body.
func (b *Body) SetVelocity(v vec.Vec2) {
	b.velocity = v
}

// AngularVelocity returns the angular velocity of the body.
func (b *Body) AngularVelocity() float64 {
	return b.w
}

// SetAngularVelocity sets the angular velocity of the body.
func (b *Body) SetAngularVelocity(w float64) {
	b.w = w
}

// Force returns the force accumulated for the current step.
func (b *Body) Force() vec.Vec2 {
	return b.force
}

// Torque returns the torque accumulated for the current step.
func (b *Body) Torque() float64 {
	return b.torque
}

// Transform returns body's transform
func (b *Body) Transform() Transform {
	return b.transform
}

func (b *Body) updateTransform() {
	b.transform = NewTransformRigid(b.position, b.angle)
}

// ApplyForce adds f to the force accumulator. Static bodies ignore forces
// and impulses.
func (b *Body) ApplyForce(f vec.Vec2) {
	if b.static {
		return
	}
	b.force = b.force.Add(f)
}

// ApplyTorque adds t to the torque accumulator.
func (b *Body) ApplyTorque(t float64) {
	if b.static {
		return
	}
	b.torque += t
}

// ApplyForceAtWorldPoint applies a force at world point, adding the torque
// it produces about the center of mass.
func (b *Body) ApplyForceAtWorldPoint(force, point vec.Vec2) {
	if b.static {
		return
	}
	b.force = b.force.Add(force)
	r := point.Sub(b.position)
	b.torque += r.Cross(force)
}

// ApplyForceAtLocalPoint applies a body-local force at a body-local point.
func (b *Body) ApplyForceAtLocalPoint(force, point vec.Vec2) {
	b.ApplyForceAtWorldPoint(b.transform.ApplyVector(force), b.transform.Apply(point))
}

// ApplyImpulse adds j to the impulse buffer. Buffered impulses are applied
// once, during the next velocity integration.
func (b *Body) ApplyImpulse(j vec.Vec2) {
	if b.static {
		return
	}
	b.impulse = b.impulse.Add(j)
}

// ApplyAngularImpulse adds j to the angular impulse buffer.
func (b *Body) ApplyAngularImpulse(j float64) {
	if b.static {
		return
	}
	b.angularImpulse += j
}

// ApplyImpulseAtWorldPoint buffers an impulse applied at world point.
func (b *Body) ApplyImpulseAtWorldPoint(impulse, point vec.Vec2) {
	if b.static {
		return
	}
	b.impulse = b.impulse.Add(impulse)
	r := point.Sub(b.position)
	b.angularImpulse += r.Cross(impulse)
}

// ClearForces resets the force, torque and impulse accumulators.
func (b *Body) ClearForces() {
	b.force = vec.Vec2{}
	b.torque = 0
	b.impulse = vec.Vec2{}
	b.angularImpulse = 0
}

// IntegrateVelocity applies drag, gravity, the accumulated force and torque
// and the buffered impulses to the velocity of the body.
//
// Static and disposed bodies are left untouched.
func (b *Body) IntegrateVelocity(gravity vec.Vec2, dt float64) {
	if b.static || b.disposed {
		return
	}

	force := b.force
	torque := b.torque
	if b.LinearDrag != 0 {
		force = force.Sub(b.velocity.Scale(b.LinearDrag))
	}
	if b.QuadraticDrag != 0 {
		force = force.Sub(b.velocity.Scale(b.QuadraticDrag * b.velocity.Mag()))
	}
	if b.AngularDrag != 0 {
		torque -= b.AngularDrag * b.w * math.Abs(b.w)
	}

	acc := force.Scale(b.massInverse)
	if !b.IgnoresGravity {
		acc = acc.Add(gravity)
	}

	b.velocity = b.velocity.Add(b.impulse.Scale(b.massInverse)).Add(acc.Scale(dt))
	b.w += b.angularImpulse*b.momentInverse + torque*b.momentInverse*dt

	b.impulse = vec.Vec2{}
	b.angularImpulse = 0
}

// IntegratePosition advances position and rotation using the velocity plus
// the bias velocity accumulated by the contact solver. The bias velocity is
// reset afterwards.
func (b *Body) IntegratePosition(dt float64) {
	if b.static || b.disposed {
		return
	}
	b.position = b.position.Add(b.velocity.Add(b.vBias).Scale(dt))
	b.wrapAngle(b.angle + (b.w+b.wBias)*dt)
	b.updateTransform()

	b.vBias = vec.Vec2{}
	b.wBias = 0
}

// IsDisposed reports whether the body was disposed.
func (b *Body) IsDisposed() bool {
	return b.disposed
}

// Dispose marks the body as dead. Constraints and arbiters referencing it
// are disposed by the next validation pass of the World. Disposing twice is
// a no-op.
func (b *Body) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	if b.world != nil {
		b.world.emit(BodyDisposedEvent{Body: b})
		b.world.collect()
	}
}

// WorldToLocal converts from world to body local coordinates.
func (b *Body) WorldToLocal(point vec.Vec2) vec.Vec2 {
	return NewTransformRigidInverse(b.transform).Apply(point)
}

// LocalToWorld converts from body local to world coordinates.
func (b *Body) LocalToWorld(point vec.Vec2) vec.Vec2 {
	return b.transform.Apply(point)
}

// VelocityAtWorldPoint returns the world velocity of a point given in world coordinates.
func (b *Body) VelocityAtWorldPoint(point vec.Vec2) vec.Vec2 {
	r := point.Sub(b.position)
	return b.velocity.Add(r.Perp().Scale(b.w))
}

// VelocityAtLocalPoint returns the world velocity of a point given in body local coordinates.
func (b *Body) VelocityAtLocalPoint(point vec.Vec2) vec.Vec2 {
	r := b.transform.ApplyVector(point)
	return b.velocity.Add(r.Perp().Scale(b.w))
}

// KineticEnergy returns the kinetic energy of this body.
func (b *Body) KineticEnergy() float64 {
	if b.static {
		return 0
	}
	// Need to do some fudging to avoid NaNs
	vsq := b.velocity.Dot(b.velocity)
	wsq := b.w * b.w
	var e float64
	if vsq != 0 {
		e += 0.5 * vsq * b.mass
	}
	if wsq != 0 {
		e += 0.5 * wsq * b.moment
	}
	return e
}

func (b *Body) attachShape(shape *Shape) {
	b.shapes = append(b.shapes, shape)
	if b.world != nil {
		b.world.shapes = append(b.world.shapes, shape)
	}
}

func (b *Body) attachConstraint(c *Constraint) {
	b.constraints = append(b.constraints, c)
}

func (b *Body) detachConstraint(c *Constraint) {
	for i, other := range b.constraints {
		if other == c {
			b.constraints = append(b.constraints[:i], b.constraints[i+1:]...)
			return
		}
	}
}

// newAnchorBody returns the static body used by the fixed constraint
// variants. It sits at the origin so its local space is world space.
func newAnchorBody() *Body {
	return NewStaticBody()
}
