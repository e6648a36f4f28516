package impulse

import (
	"fmt"
	"math"
)

// FrictionRule selects how the friction coefficients of two shapes are
// combined into the coefficient of their arbiter.
type FrictionRule uint8

const (
	FrictionAverage FrictionRule = iota
	FrictionMinimum
)

// Combine returns the pair coefficient for a and b.
func (r FrictionRule) Combine(a, b float64) float64 {
	if r == FrictionMinimum {
		return math.Min(a, b)
	}
	return (a + b) / 2
}

func (r FrictionRule) String() string {
	switch r {
	case FrictionAverage:
		return "average"
	case FrictionMinimum:
		return "minimum"
	}
	return fmt.Sprintf("FrictionRule(%d)", uint8(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r FrictionRule) MarshalText() ([]byte, error) {
	switch r {
	case FrictionAverage, FrictionMinimum:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("%w: unknown friction rule %d", ErrInvalidValue, uint8(r))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *FrictionRule) UnmarshalText(text []byte) error {
	switch string(text) {
	case "average", "":
		*r = FrictionAverage
	case "minimum":
		*r = FrictionMinimum
	default:
		return fmt.Errorf("%w: unknown friction rule %q", ErrInvalidValue, text)
	}
	return nil
}

// Settings is the solver configuration consumed by a World.
type Settings struct {
	// MaxContactsToDetect caps the contacts kept from the narrow phase before sorting.
	MaxContactsToDetect int `yaml:"max_contacts_to_detect"`
	// MaxContactsToResolve caps the contacts per arbiter after sorting deepest first.
	MaxContactsToResolve int `yaml:"max_contacts_to_resolve"`
	// Iterations is the number of solver passes per step.
	Iterations int `yaml:"iterations"`
	// BiasFactor is the fraction of contact penetration corrected per step.
	BiasFactor float64 `yaml:"bias_factor"`
	// AllowedPenetration is the overlap left uncorrected to keep resting contacts from jittering.
	AllowedPenetration float64      `yaml:"allowed_penetration"`
	FrictionRule       FrictionRule `yaml:"friction_rule"`
	// Debug enables lifecycle logging through World.Logger.
	Debug bool `yaml:"debug"`
}

// DefaultSettings returns the settings a World uses when none are given.
func DefaultSettings() Settings {
	return Settings{
		MaxContactsToDetect:  16,
		MaxContactsToResolve: 8,
		Iterations:           10,
		BiasFactor:           0.2,
		AllowedPenetration:   0.01,
		FrictionRule:         FrictionAverage,
	}
}

// Validate checks the ranges of every field.
func (s Settings) Validate() error {
	if s.MaxContactsToDetect < 1 {
		return fmt.Errorf("%w: max_contacts_to_detect must be at least 1, got %d", ErrInvalidValue, s.MaxContactsToDetect)
	}
	if s.MaxContactsToResolve < 1 || s.MaxContactsToResolve > s.MaxContactsToDetect {
		return fmt.Errorf("%w: max_contacts_to_resolve must be in [1, %d], got %d",
			ErrInvalidValue, s.MaxContactsToDetect, s.MaxContactsToResolve)
	}
	if s.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidValue, s.Iterations)
	}
	if s.BiasFactor < 0 || s.BiasFactor > 1 || math.IsNaN(s.BiasFactor) {
		return fmt.Errorf("%w: bias_factor must be in [0, 1], got %v", ErrInvalidValue, s.BiasFactor)
	}
	if s.AllowedPenetration < 0 || math.IsNaN(s.AllowedPenetration) {
		return fmt.Errorf("%w: allowed_penetration must not be negative, got %v", ErrInvalidValue, s.AllowedPenetration)
	}
	if s.FrictionRule > FrictionMinimum {
		return fmt.Errorf("%w: unknown friction rule %d", ErrInvalidValue, uint8(s.FrictionRule))
	}
	return nil
}
