package impulse_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/setanarut/impulse"
	"gopkg.in/yaml.v3"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	if err := impulse.DefaultSettings().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*impulse.Settings)
	}{
		{"no detection", func(s *impulse.Settings) { s.MaxContactsToDetect = 0 }},
		{"resolve above detect", func(s *impulse.Settings) { s.MaxContactsToResolve = 17 }},
		{"no iterations", func(s *impulse.Settings) { s.Iterations = 0 }},
		{"bias above one", func(s *impulse.Settings) { s.BiasFactor = 1.5 }},
		{"negative slop", func(s *impulse.Settings) { s.AllowedPenetration = -0.1 }},
		{"unknown rule", func(s *impulse.Settings) { s.FrictionRule = 9 }},
	}
	for _, tt := range tests {
		s := impulse.DefaultSettings()
		tt.modify(&s)
		if err := s.Validate(); !errors.Is(err, impulse.ErrInvalidValue) {
			t.Errorf("%s: expected ErrInvalidValue, got %v", tt.name, err)
		}
	}
}

func TestFrictionRuleCombine(t *testing.T) {
	if got := impulse.FrictionAverage.Combine(0.2, 0.6); got != 0.4 {
		t.Errorf("average = %v", got)
	}
	if got := impulse.FrictionMinimum.Combine(0.2, 0.6); got != 0.2 {
		t.Errorf("minimum = %v", got)
	}
}

func TestSettingsYAML(t *testing.T) {
	g := NewWithT(t)

	var s impulse.Settings
	err := yaml.Unmarshal([]byte("iterations: 4\nfriction_rule: minimum\n"), &s)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Iterations).To(Equal(4))
	g.Expect(s.FrictionRule).To(Equal(impulse.FrictionMinimum))

	out, err := yaml.Marshal(impulse.DefaultSettings())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(out)).To(ContainSubstring("friction_rule: average"))

	err = yaml.Unmarshal([]byte("friction_rule: sticky\n"), &s)
	g.Expect(err).To(HaveOccurred())
}
