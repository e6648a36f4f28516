package impulse

import "github.com/setanarut/vec"

// Controller is updated by the World once per step, before collision
// detection. Controllers typically apply forces to bodies.
//
// A controller that also implements IsDisposed() bool is removed from the
// World the first step it reports true.
type Controller interface {
	Update(dt float64)
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(dt float64)

// Update calls f(dt).
func (f ControllerFunc) Update(dt float64) {
	f(dt)
}

type disposer interface {
	IsDisposed() bool
}

func controllerDisposed(c Controller) bool {
	d, ok := c.(disposer)
	return ok && d.IsDisposed()
}

// GravityField is a controller that applies a uniform acceleration to a
// set of bodies, on top of the World gravity.
type GravityField struct {
	Acceleration vec.Vec2
	Bodies       []*Body
	disposed     bool
}

// Update implements Controller.
func (g *GravityField) Update(float64) {
	for _, b := range g.Bodies {
		if b.static || b.disposed {
			continue
		}
		b.ApplyForce(g.Acceleration.Scale(b.mass))
	}
}

// Dispose makes the World drop the field at the next step.
func (g *GravityField) Dispose() {
	g.disposed = true
}

// IsDisposed implements the optional disposal contract of Controller.
func (g *GravityField) IsDisposed() bool {
	return g.disposed
}
