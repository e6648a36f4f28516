package impulse

import (
	"fmt"
	"log"
	"slices"

	"github.com/setanarut/vec"
)

// World owns bodies, constraints, controllers and the arbiters of touching
// shapes, and advances them with Step.
type World struct {
	Settings Settings
	// Gravity is the acceleration applied to every dynamic body that does not ignore it.
	Gravity vec.Vec2
	Events  Events
	// Logger receives lifecycle diagnostics when Settings.Debug is set.
	Logger *log.Logger

	BroadPhase  BroadPhase
	NarrowPhase NarrowPhase

	bodies      arena[*Body]
	constraints arena[*Constraint]
	controllers arena[Controller]

	arbiters   []*Arbiter
	arbiterMap map[pairKey]*Arbiter
	shapes     []*Shape

	// per step snapshots
	bodyBuf       []*Body
	constraintBuf []*Constraint
	controllerBuf []Controller

	stepCount uint64
	locked    bool
	dirty     bool
	purging   bool
	flushing  bool
}

// NewWorld returns a World with DefaultSettings and no gravity.
func NewWorld() *World {
	return &World{
		Settings:    DefaultSettings(),
		Events:      NewEvents(),
		Logger:      log.Default(),
		BroadPhase:  &SweepBroadPhase{},
		NarrowPhase: &DistanceNarrowPhase{},
		arbiterMap:  make(map[pairKey]*Arbiter),
	}
}

// NewWorldWithSettings returns a World using settings, which are validated first.
func NewWorldWithSettings(settings Settings) (*World, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	w := NewWorld()
	w.Settings = settings
	return w, nil
}

// IsLocked returns true from inside a step callback.
func (w *World) IsLocked() bool {
	return w.locked
}

// StepCount returns the number of completed steps.
func (w *World) StepCount() uint64 {
	return w.stepCount
}

// AddBody adds a body and its shapes to the world. Adding a body twice is a
// no-op that returns its existing handle. A body added from inside a step
// takes part from the next step on.
func (w *World) AddBody(body *Body) (Handle, error) {
	if body == nil {
		return Handle{}, errNilBody
	}
	if body.disposed {
		return Handle{}, fmt.Errorf("%w: %v", ErrDisposed, body)
	}
	if body.world == w {
		return body.handle, nil
	}
	if body.world != nil {
		return Handle{}, fmt.Errorf("%w: %v", ErrForeign, body)
	}

	body.world = w
	body.handle = w.bodies.insert(body)
	body.updateTransform()
	for _, shape := range body.shapes {
		shape.update()
		w.shapes = append(w.shapes, shape)
	}
	w.emit(BodyAddedEvent{Body: body})
	return body.handle, nil
}

// RemoveBody disposes the body. It is dropped together with its
// constraints and arbiters by the next validation pass.
func (w *World) RemoveBody(body *Body) {
	if body == nil || body.world != w {
		return
	}
	body.Dispose()
}

// Body returns the body for h, or false if h is stale.
func (w *World) Body(h Handle) (*Body, bool) {
	return w.bodies.get(h)
}

// Bodies returns the bodies in insertion order.
func (w *World) Bodies() []*Body {
	return w.bodies.values(nil)
}

// BodyCount returns the number of bodies in the world.
func (w *World) BodyCount() int {
	return w.bodies.len()
}

// Shapes returns the shapes of all bodies in the world.
func (w *World) Shapes() []*Shape {
	return w.shapes
}

// AddConstraint adds a joint or spring. Both bodies must belong to this
// world, except for the private anchor body of the fixed variants.
func (w *World) AddConstraint(c Constrainer) (Handle, error) {
	if c == nil {
		return Handle{}, fmt.Errorf("%w: nil constraint", ErrInvalidValue)
	}
	con := c.constraint()
	if con == nil {
		return Handle{}, fmt.Errorf("%w: uninitialized constraint", ErrInvalidValue)
	}
	if con.disposed {
		return Handle{}, fmt.Errorf("%w: %v", ErrDisposed, con)
	}
	if con.world == w {
		return con.handle, nil
	}
	if con.world != nil {
		return Handle{}, fmt.Errorf("%w: %v", ErrForeign, con)
	}
	a, b := con.bodyA, con.bodyB
	if a.static && b.static {
		return Handle{}, fmt.Errorf("%w: constraint between two static bodies", ErrInvalidValue)
	}
	for _, body := range [2]*Body{a, b} {
		if body.disposed {
			return Handle{}, fmt.Errorf("%w: %v", ErrDisposed, body)
		}
		if body.world != w && !(body.static && body.world == nil) {
			return Handle{}, fmt.Errorf("%w: %v is not in this world", ErrForeign, body)
		}
	}

	con.world = w
	con.handle = w.constraints.insert(con)
	a.attachConstraint(con)
	b.attachConstraint(con)
	w.emit(ConstraintAddedEvent{Constraint: con})
	return con.handle, nil
}

// RemoveConstraint disposes the constraint.
func (w *World) RemoveConstraint(c Constrainer) {
	con := c.constraint()
	if con == nil || con.world != w {
		return
	}
	con.Dispose()
}

// Constraint returns the constraint for h, or false if h is stale.
func (w *World) Constraint(h Handle) (*Constraint, bool) {
	return w.constraints.get(h)
}

// Constraints returns the constraints in insertion order.
func (w *World) Constraints() []*Constraint {
	return w.constraints.values(nil)
}

// AddController adds a controller that is updated at the start of every step.
func (w *World) AddController(c Controller) (Handle, error) {
	if c == nil {
		return Handle{}, fmt.Errorf("%w: nil controller", ErrInvalidValue)
	}
	if controllerDisposed(c) {
		return Handle{}, fmt.Errorf("%w: controller", ErrDisposed)
	}
	h := w.controllers.insert(c)
	w.emit(ControllerAddedEvent{Controller: c})
	return h, nil
}

// RemoveController removes the controller for h and reports whether it was found.
func (w *World) RemoveController(h Handle) bool {
	c, ok := w.controllers.remove(h)
	if ok {
		w.emit(ControllerRemovedEvent{Controller: c})
	}
	return ok
}

// Controllers returns the controllers in insertion order.
func (w *World) Controllers() []Controller {
	return w.controllers.values(nil)
}

// Arbiters returns the arbiters of the last step in creation order.
func (w *World) Arbiters() []*Arbiter {
	return w.arbiters
}

// ArbiterFor returns the arbiter of the pair, in either order, or nil.
func (w *World) ArbiterFor(a, b *Shape) *Arbiter {
	return w.arbiterMap[makePairKey(a, b)]
}

// KineticEnergy returns the summed kinetic energy of all bodies.
func (w *World) KineticEnergy() float64 {
	var e float64
	for _, b := range w.bodies.all() {
		e += b.KineticEnergy()
	}
	return e
}

// Step advances the world by dt.
//
// Order: validate, controllers, collide, arbiter pre-step, arbiter warm
// start, constraint pre-step, Settings.Iterations solver passes, velocity integration,
// position integration, clear forces. Events are delivered after the step.
// Calling Step from a callback running inside Step panics.
func (w *World) Step(dt float64) {
	if w.locked {
		log.Panicln("impulse: World.Step called from inside a step callback")
	}
	if dt <= 0 {
		return
	}
	invDt := 1 / dt

	w.locked = true
	{
		w.purge()

		w.bodyBuf = w.bodies.values(w.bodyBuf[:0])
		w.constraintBuf = w.constraints.values(w.constraintBuf[:0])
		w.controllerBuf = w.controllers.values(w.controllerBuf[:0])

		for _, c := range w.controllerBuf {
			if !controllerDisposed(c) {
				c.Update(dt)
			}
		}

		w.collide()

		for _, arb := range w.arbiters {
			arb.PreStepImpulse(invDt)
		}
		for _, arb := range w.arbiters {
			arb.ApplyCachedImpulse()
		}
		for _, c := range w.constraintBuf {
			c.PreStep(invDt)
		}

		for range w.Settings.Iterations {
			for _, arb := range w.arbiters {
				arb.ApplyImpulse()
			}
			for _, c := range w.constraintBuf {
				c.Solve()
			}
		}

		for _, body := range w.bodyBuf {
			body.IntegrateVelocity(w.Gravity, dt)
		}
		for _, body := range w.bodyBuf {
			body.IntegratePosition(dt)
		}
		for _, body := range w.bodyBuf {
			body.ClearForces()
		}

		w.stepCount++
	}
	w.locked = false

	clear(w.bodyBuf)
	clear(w.constraintBuf)
	clear(w.controllerBuf)

	if w.dirty {
		w.purge()
	}
	w.flush()
}

// collide creates arbiters for new overlapping pairs, refreshes the
// contacts of every arbiter and tears down the ones without contacts.
func (w *World) collide() {
	for _, shape := range w.shapes {
		shape.update()
	}

	w.BroadPhase.Pairs(w.shapes, func(a, b *Shape) {
		if w.queryReject(a, b) {
			return
		}
		key := makePairKey(a, b)
		if _, ok := w.arbiterMap[key]; ok {
			return
		}
		arb := NewArbiter(a, b, &w.Settings)
		w.arbiterMap[key] = arb
		w.arbiters = append(w.arbiters, arb)
	})

	n := 0
	for _, arb := range w.arbiters {
		if w.queryReject(arb.shapeA, arb.shapeB) || arb.Collide(w.NarrowPhase) == 0 {
			w.removeArbiter(arb)
			continue
		}
		if !arb.touching {
			arb.touching = true
			w.emit(CollisionBeginEvent{ShapeA: arb.shapeA, ShapeB: arb.shapeB})
		}
		arb.veto()
		w.arbiters[n] = arb
		n++
	}
	clear(w.arbiters[n:])
	w.arbiters = w.arbiters[:n]
}

// queryReject returns true if shapes a and b must not collide.
func (w *World) queryReject(a, b *Shape) bool {
	ba, bb := a.body, b.body
	if ba == bb {
		return true
	}
	if ba.disposed || bb.disposed {
		return true
	}
	if ba.static && bb.static {
		return true
	}
	if a.Filter.Reject(b.Filter) {
		return true
	}
	return rejectConstraints(ba, bb)
}

func rejectConstraints(a, b *Body) bool {
	for _, c := range a.constraints {
		if !c.CollideBodies && !c.disposed &&
			((c.bodyA == a && c.bodyB == b) || (c.bodyA == b && c.bodyB == a)) {
			return true
		}
	}
	return false
}

func (w *World) removeArbiter(arb *Arbiter) {
	delete(w.arbiterMap, arb.key())
	if arb.touching {
		arb.touching = false
		w.emit(SeparateEvent{ShapeA: arb.shapeA, ShapeB: arb.shapeB})
	}
}

// collect drops disposed objects now, or after the step when locked.
func (w *World) collect() {
	if w.locked || w.purging {
		w.dirty = true
		return
	}
	w.purge()
}

// purge runs validation passes until nothing is left to remove. Events of
// a pass are only queued, so listeners never run while the lists are being
// rewritten. Outside of a step they are delivered once the lists are
// consistent again; a listener that disposes more objects triggers the
// next pass from there.
func (w *World) purge() {
	if w.purging {
		w.dirty = true
		return
	}
	w.purging = true
	for {
		w.dirty = false
		w.validate()
		if !w.dirty {
			break
		}
	}
	w.purging = false
	if !w.locked {
		w.flush()
	}
}

// validate is one validation pass: constraints of disposed bodies are
// disposed, and disposed bodies, constraints, controllers and the arbiters
// of disposed bodies are removed.
func (w *World) validate() {
	w.constraints.removeFunc(func(c *Constraint) bool {
		return !c.Validate()
	}, func(c *Constraint) {
		c.bodyA.detachConstraint(c)
		c.bodyB.detachConstraint(c)
		c.world = nil
		if w.Settings.Debug {
			w.Logger.Println("impulse: removed", c)
		}
		w.emit(ConstraintRemovedEvent{Constraint: c})
	})

	n := 0
	for _, arb := range w.arbiters {
		if arb.bodyA.disposed || arb.bodyB.disposed {
			w.removeArbiter(arb)
			continue
		}
		w.arbiters[n] = arb
		n++
	}
	clear(w.arbiters[n:])
	w.arbiters = w.arbiters[:n]

	w.shapes = slices.DeleteFunc(w.shapes, func(s *Shape) bool {
		return s.body.disposed
	})

	w.bodies.removeFunc(func(b *Body) bool {
		return b.disposed
	}, func(b *Body) {
		b.world = nil
		if w.Settings.Debug {
			w.Logger.Println("impulse: removed", b)
		}
		w.emit(BodyRemovedEvent{Body: b})
	})

	w.controllers.removeFunc(controllerDisposed, func(c Controller) {
		w.emit(ControllerRemovedEvent{Controller: c})
	})
}

// emit queues an event. Outside of a step it is delivered right away.
func (w *World) emit(event Event) {
	w.Events.emit(event)
	if !w.locked && !w.purging {
		w.flush()
	}
}

func (w *World) flush() {
	if w.flushing {
		return
	}
	w.flushing = true
	w.Events.flush()
	w.flushing = false
}
