package scenario

import (
	"math"

	"github.com/setanarut/impulse"
	"github.com/setanarut/impulse/internal/config"
	"github.com/setanarut/vec"
)

func newBall(w *impulse.World, sc config.SceneConfig, pos vec.Vec2) (*impulse.Body, *impulse.Shape, error) {
	body, err := impulse.NewBody(sc.Mass, impulse.MomentForCircle(sc.Mass, 0, sc.Radius, vec.Vec2{}))
	if err != nil {
		return nil, nil, err
	}
	body.SetPosition(pos)
	body.LinearDrag = sc.LinearDrag
	shape, err := impulse.NewCircle(body, sc.Radius, vec.Vec2{})
	if err != nil {
		return nil, nil, err
	}
	shape.Friction = sc.Friction
	shape.Restitution = sc.Restitution
	if _, err := w.AddBody(body); err != nil {
		return nil, nil, err
	}
	return body, shape, nil
}

func newGround(w *impulse.World, sc config.SceneConfig) (*impulse.Body, error) {
	ground := impulse.NewStaticBody()
	seg, err := impulse.NewSegment(ground, vec.Vec2{X: -100}, vec.Vec2{X: 100}, 0)
	if err != nil {
		return nil, err
	}
	seg.Friction = sc.Friction
	seg.Restitution = sc.Restitution
	if _, err := w.AddBody(ground); err != nil {
		return nil, err
	}
	return ground, nil
}

// buildDrop drops a ball from Height onto a flat ground.
func buildDrop(w *impulse.World, sc config.SceneConfig) (*impulse.Body, error) {
	if _, err := newGround(w, sc); err != nil {
		return nil, err
	}
	ball, _, err := newBall(w, sc, vec.Vec2{X: 0, Y: sc.Height})
	return ball, err
}

// buildPendulum swings a bob on a rigid rod of length Height around the origin.
func buildPendulum(w *impulse.World, sc config.SceneConfig) (*impulse.Body, error) {
	bob, _, err := newBall(w, sc, vec.Vec2{X: sc.Height, Y: 0})
	if err != nil {
		return nil, err
	}
	bob.SetVelocity(vec.Vec2{X: 0, Y: -sc.Speed})

	rod, err := impulse.NewFixedPinJoint(bob, vec.Vec2{}, vec.Vec2{})
	if err != nil {
		return nil, err
	}
	if sc.Breakpoint > 0 {
		rod.Breakpoint = sc.Breakpoint
	}
	if _, err := w.AddConstraint(rod); err != nil {
		return nil, err
	}
	return bob, nil
}

// buildSlide launches a box along a rough floor at Speed.
func buildSlide(w *impulse.World, sc config.SceneConfig) (*impulse.Body, error) {
	floor := impulse.NewStaticBody()
	floor.SetPosition(vec.Vec2{X: 0, Y: -0.5})
	floorShape, err := impulse.NewBox(floor, 200, 1)
	if err != nil {
		return nil, err
	}
	floorShape.Friction = sc.Friction
	if _, err := w.AddBody(floor); err != nil {
		return nil, err
	}

	size := 2 * sc.Radius
	box, err := impulse.NewBody(sc.Mass, impulse.MomentForBox(sc.Mass, size, size))
	if err != nil {
		return nil, err
	}
	box.SetPosition(vec.Vec2{X: 0, Y: sc.Radius - 0.005})
	box.SetVelocity(vec.Vec2{X: sc.Speed})
	box.LinearDrag = sc.LinearDrag
	boxShape, err := impulse.NewBox(box, size, size)
	if err != nil {
		return nil, err
	}
	boxShape.Friction = sc.Friction
	if _, err := w.AddBody(box); err != nil {
		return nil, err
	}
	return box, nil
}

// buildChain hangs Links balls from a fixed point at Height, each joined to
// the previous one and limited to a quarter turn of bending.
func buildChain(w *impulse.World, sc config.SceneConfig) (*impulse.Body, error) {
	links := max(sc.Links, 1)
	spacing := 2.5 * sc.Radius
	pivot := vec.Vec2{X: 0, Y: sc.Height}

	var prev *impulse.Body
	for i := range links {
		pos := pivot.Add(vec.Vec2{X: spacing * float64(i+1)})
		link, shape, err := newBall(w, sc, pos)
		if err != nil {
			return nil, err
		}
		shape.Filter = impulse.Filter{Group: 1, Categories: impulse.AllCategories, Mask: impulse.AllCategories}

		var joint impulse.Constrainer
		if prev == nil {
			joint, err = impulse.NewFixedPointJoint(link, vec.Vec2{X: -spacing}, pivot)
		} else {
			joint, err = impulse.NewPointJoint(prev, link, pos.Sub(vec.Vec2{X: spacing / 2}))
		}
		if err != nil {
			return nil, err
		}
		if _, err := w.AddConstraint(joint); err != nil {
			return nil, err
		}

		if prev != nil {
			bend, err := impulse.NewAngleLimitJoint(prev, link, -math.Pi/4, math.Pi/4)
			if err != nil {
				return nil, err
			}
			bend.CollideBodies = false
			if _, err := w.AddConstraint(bend); err != nil {
				return nil, err
			}
		}
		prev = link
	}
	return prev, nil
}

// buildSpring hangs a box from a damped spring with a rope that stops it
// from stretching past twice the rest length.
func buildSpring(w *impulse.World, sc config.SceneConfig) (*impulse.Body, error) {
	pivot := vec.Vec2{X: 0, Y: sc.Height}
	rest := 1.0

	size := 2 * sc.Radius
	box, err := impulse.NewBody(sc.Mass, impulse.MomentForBox(sc.Mass, size, size))
	if err != nil {
		return nil, err
	}
	box.SetPosition(pivot.Sub(vec.Vec2{Y: rest}))
	box.LinearDrag = sc.LinearDrag
	if _, err := impulse.NewBox(box, size, size); err != nil {
		return nil, err
	}
	if _, err := w.AddBody(box); err != nil {
		return nil, err
	}

	spring, err := impulse.NewFixedLinearSpring(box, vec.Vec2{}, pivot, rest, sc.Stiffness, sc.Damping)
	if err != nil {
		return nil, err
	}
	rope, err := impulse.NewFixedSliderJoint(box, vec.Vec2{}, pivot, 0, 2*rest)
	if err != nil {
		return nil, err
	}
	upright, err := impulse.NewFixedAngleSpring(box, 0, sc.Stiffness, sc.Damping)
	if err != nil {
		return nil, err
	}
	for _, c := range []impulse.Constrainer{spring, rope, upright} {
		if _, err := w.AddConstraint(c); err != nil {
			return nil, err
		}
	}
	return box, nil
}
