package config

import (
	"maps"
	"slices"

	"github.com/setanarut/impulse"
)

func preset(scenario string, steps int, scene SceneConfig) *Config {
	cfg := DefaultConfig()
	cfg.Scenario = scenario
	cfg.Steps = steps
	if scene.Mass == 0 {
		scene.Mass = 1
	}
	if scene.Radius == 0 {
		scene.Radius = DefaultRadius
	}
	cfg.Scene = scene
	return cfg
}

func withFrictionRule(cfg *Config, rule impulse.FrictionRule) *Config {
	cfg.Solver.FrictionRule = rule
	return cfg
}

var Presets = map[string]map[string]*Config{
	"drop": {
		"elastic": preset("drop", 600, SceneConfig{Height: 5, Restitution: 1}),
		"plastic": preset("drop", 300, SceneConfig{Height: 5, Restitution: 0}),
		"bouncy":  preset("drop", 900, SceneConfig{Height: 8, Restitution: 0.7, Friction: 0.2}),
	},
	"pendulum": {
		"short": preset("pendulum", 600, SceneConfig{Height: 2, Speed: 0}),
		"swing": preset("pendulum", 900, SceneConfig{Height: 4, Speed: 3}),
		"fragile": preset("pendulum", 600, SceneConfig{
			Height: 3, Speed: 20, Breakpoint: 0.05,
		}),
	},
	"slide": {
		"rough":   preset("slide", 300, SceneConfig{Speed: 10, Friction: 0.6}),
		"icy":     preset("slide", 600, SceneConfig{Speed: 10, Friction: 0.05}),
		"dragged": preset("slide", 300, SceneConfig{Speed: 10, Friction: 0, LinearDrag: 0.5}),
		"minimum": withFrictionRule(preset("slide", 300, SceneConfig{Speed: 10, Friction: 0.6}), impulse.FrictionMinimum),
	},
	"chain": {
		"short": preset("chain", 600, SceneConfig{Links: 4, Height: 6}),
		"long":  preset("chain", 900, SceneConfig{Links: 12, Height: 10}),
	},
	"spring": {
		"soft":   preset("spring", 600, SceneConfig{Height: 3, Stiffness: 10, Damping: 0.5}),
		"stiff":  preset("spring", 600, SceneConfig{Height: 3, Stiffness: 200, Damping: 2}),
		"undamp": preset("spring", 600, SceneConfig{Height: 3, Stiffness: 20}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scenario, name string) *Config {
	if p, ok := Presets[scenario]; ok {
		if cfg, ok := p[name]; ok {
			c := *cfg
			return &c
		}
	}
	return nil
}

// ListPresets returns the preset names of a scenario in sorted order.
func ListPresets(scenario string) []string {
	if p, ok := Presets[scenario]; ok {
		return slices.Sorted(maps.Keys(p))
	}
	return nil
}

// ListScenarios returns the scenarios that have presets, sorted.
func ListScenarios() []string {
	return slices.Sorted(maps.Keys(Presets))
}
