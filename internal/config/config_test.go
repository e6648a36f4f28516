package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/impulse"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "drop" {
		t.Errorf("expected scenario drop, got %s", cfg.Scenario)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"no steps", func(c *Config) { c.Steps = 0 }},
		{"zero mass", func(c *Config) { c.Scene.Mass = 0 }},
		{"negative restitution", func(c *Config) { c.Scene.Restitution = -1 }},
		{"bad solver", func(c *Config) { c.Solver.Iterations = 0 }},
		{"unknown broad phase", func(c *Config) { c.BroadPhase = "grid" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(cfg)
		if err := cfg.Validate(); !errors.Is(err, impulse.ErrInvalidValue) {
			t.Errorf("%s: expected ErrInvalidValue, got %v", tt.name, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impulse.yaml")
	cfg := GetPreset("slide", "minimum")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip changed the config:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "scenario: chain\nsolver:\n  iterations: 20\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scenario != "chain" || cfg.Solver.Iterations != 20 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Solver.MaxContactsToDetect != 16 {
		t.Errorf("defaults lost: dt=%v detect=%d", cfg.Dt, cfg.Solver.MaxContactsToDetect)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("solver:\n  friction_rule: sticky\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected an error for an unknown friction rule")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("dt: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalid); !errors.Is(err, impulse.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("drop", "elastic")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Scene.Restitution != 1 {
		t.Errorf("expected restitution 1, got %f", cfg.Scene.Restitution)
	}

	cfg.Scene.Restitution = 0
	if GetPreset("drop", "elastic").Scene.Restitution != 1 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("drop", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "elastic") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, scenario := range ListScenarios() {
		names := ListPresets(scenario)
		if len(names) == 0 {
			t.Errorf("no presets for %s", scenario)
		}
		for _, name := range names {
			cfg := GetPreset(scenario, name)
			if cfg.Scenario != scenario {
				t.Errorf("%s/%s: scenario is %s", scenario, name, cfg.Scenario)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", scenario, name, err)
			}
		}
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}
