// Package scenario builds small demo worlds from a run configuration and
// records how a tracked body moves through them.
package scenario

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/setanarut/impulse"
	"github.com/setanarut/impulse/internal/config"
	"github.com/setanarut/vec"
)

// Scene is a world ready to be stepped plus the body whose motion is recorded.
type Scene struct {
	World   *impulse.World
	Tracked *impulse.Body
}

type builder func(w *impulse.World, sc config.SceneConfig) (*impulse.Body, error)

var builders = map[string]builder{
	"drop":     buildDrop,
	"pendulum": buildPendulum,
	"slide":    buildSlide,
	"chain":    buildChain,
	"spring":   buildSpring,
}

// Names returns the known scenario names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(builders))
}

// Build creates the world described by cfg.
func Build(cfg *config.Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	build, ok := builders[cfg.Scenario]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", cfg.Scenario)
	}
	w, err := impulse.NewWorldWithSettings(cfg.Solver)
	if err != nil {
		return nil, err
	}
	w.Gravity = vec.Vec2{X: 0, Y: cfg.Gravity}
	if cfg.BroadPhase == config.BroadPhaseTree {
		w.BroadPhase = &impulse.TreeBroadPhase{}
	}
	tracked, err := build(w, cfg.Scene)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Scenario, err)
	}
	return &Scene{World: w, Tracked: tracked}, nil
}

// Sample is the state of the tracked body after a step.
type Sample struct {
	Time   float64
	X, Y   float64
	Speed  float64
	Angle  float64
	Energy float64
}

// Trace is the outcome of a run.
type Trace struct {
	Scenario    string
	Samples     []Sample
	Collisions  int
	Separations int
	Breaks      int
	StepsTaken  int
}

// Heights returns the Y coordinate of every sample.
func (t *Trace) Heights() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Y
	}
	return out
}

// Speeds returns the speed of every sample.
func (t *Trace) Speeds() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Speed
	}
	return out
}

// Energies returns the kinetic energy of the world at every sample.
func (t *Trace) Energies() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Energy
	}
	return out
}

// MaxHeight returns the highest Y reached at or after time from.
func (t *Trace) MaxHeight(from float64) float64 {
	best := -1e300
	for _, s := range t.Samples {
		if s.Time >= from && s.Y > best {
			best = s.Y
		}
	}
	return best
}

// Last returns the last sample, or the zero Sample.
func (t *Trace) Last() Sample {
	if len(t.Samples) == 0 {
		return Sample{}
	}
	return t.Samples[len(t.Samples)-1]
}

// Run builds the scene and steps it cfg.Steps times. The run stops early
// with ctx.Err() when ctx is done, returning the partial trace.
func Run(ctx context.Context, cfg *config.Config) (*Trace, error) {
	scene, err := Build(cfg)
	if err != nil {
		return nil, err
	}

	trace := &Trace{
		Scenario: cfg.Scenario,
		Samples:  make([]Sample, 0, cfg.Steps+1),
	}
	w := scene.World
	w.Events.Subscribe(impulse.COLLISION_BEGIN, func(impulse.Event) { trace.Collisions++ })
	w.Events.Subscribe(impulse.SEPARATE, func(impulse.Event) { trace.Separations++ })
	w.Events.Subscribe(impulse.CONSTRAINT_BROKE, func(impulse.Event) { trace.Breaks++ })

	trace.Samples = append(trace.Samples, sample(scene, 0))
	for i := range cfg.Steps {
		select {
		case <-ctx.Done():
			return trace, ctx.Err()
		default:
		}
		w.Step(cfg.Dt)
		trace.StepsTaken++
		trace.Samples = append(trace.Samples, sample(scene, float64(i+1)*cfg.Dt))
	}
	return trace, nil
}

func sample(scene *Scene, t float64) Sample {
	b := scene.Tracked
	p := b.Position()
	return Sample{
		Time:   t,
		X:      p.X,
		Y:      p.Y,
		Speed:  b.Velocity().Mag(),
		Angle:  b.TotalRotation(),
		Energy: scene.World.KineticEnergy(),
	}
}
