package config

import (
	"fmt"
	"os"

	"github.com/setanarut/impulse"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 1.0 / 60.0
	DefaultSteps    = 600
	DefaultGravity  = -9.81
	DefaultHeight   = 5.0
	DefaultRadius   = 0.5
	DefaultFriction = 0.5
)

// Broad phases a config may select.
const (
	BroadPhaseSweep = "sweep"
	BroadPhaseTree  = "tree"
)

type Config struct {
	Scenario   string           `yaml:"scenario"`
	Dt         float64          `yaml:"dt"`
	Steps      int              `yaml:"steps"`
	Gravity    float64          `yaml:"gravity"`
	BroadPhase string           `yaml:"broad_phase"`
	Solver     impulse.Settings `yaml:"solver"`
	Scene      SceneConfig      `yaml:"scene"`
}

type SceneConfig struct {
	Height      float64 `yaml:"height"`
	Radius      float64 `yaml:"radius"`
	Mass        float64 `yaml:"mass"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
	Speed       float64 `yaml:"speed"`
	Links       int     `yaml:"links"`
	Stiffness   float64 `yaml:"stiffness"`
	Damping     float64 `yaml:"damping"`
	Breakpoint  float64 `yaml:"breakpoint"`
	LinearDrag  float64 `yaml:"linear_drag"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:   "drop",
		Dt:         DefaultDt,
		Steps:      DefaultSteps,
		Gravity:    DefaultGravity,
		BroadPhase: BroadPhaseSweep,
		Solver:     impulse.DefaultSettings(),
		Scene: SceneConfig{
			Height:   DefaultHeight,
			Radius:   DefaultRadius,
			Mass:     1,
			Friction: DefaultFriction,
			Links:    5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run parameters and the solver settings.
func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", impulse.ErrInvalidValue, c.Dt)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1, got %d", impulse.ErrInvalidValue, c.Steps)
	}
	if !(c.Scene.Mass > 0) {
		return fmt.Errorf("%w: scene mass must be positive, got %v", impulse.ErrInvalidValue, c.Scene.Mass)
	}
	if !(c.Scene.Radius > 0) {
		return fmt.Errorf("%w: scene radius must be positive, got %v", impulse.ErrInvalidValue, c.Scene.Radius)
	}
	switch c.BroadPhase {
	case "", BroadPhaseSweep, BroadPhaseTree:
	default:
		return fmt.Errorf("%w: unknown broad phase %q", impulse.ErrInvalidValue, c.BroadPhase)
	}
	if c.Scene.Restitution < 0 || c.Scene.Friction < 0 {
		return fmt.Errorf("%w: friction and restitution must not be negative", impulse.ErrInvalidValue)
	}
	return c.Solver.Validate()
}
