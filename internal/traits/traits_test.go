package traits

import (
	"testing"

	"github.com/talgya/waggle/internal/entropy"
)

func TestGenerateInRange(t *testing.T) {
	gen := NewGenerator(entropy.NewSource(1))

	for i := 0; i < 1000; i++ {
		p := gen.Generate()
		for name, v := range map[string]float64{
			"creativity":           p.Creativity,
			"social_tendency":      p.SocialTendency,
			"energy_pattern":       p.EnergyPattern,
			"risk_tolerance":       p.RiskTolerance,
			"communication_style":  p.CommunicationStyle,
			"aesthetic_preference": p.AestheticPreference,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("draw %d: %s = %v, want [0,1]", i, name, v)
			}
		}
		if len(p.Colors) < 2 || len(p.Colors) > 4 {
			t.Fatalf("draw %d: got %d colors, want 2-4", i, len(p.Colors))
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewGenerator(entropy.NewSource(42)).Generate()
	b := NewGenerator(entropy.NewSource(42)).Generate()

	if a.Creativity != b.Creativity || a.SocialTendency != b.SocialTendency ||
		a.EnergyPattern != b.EnergyPattern || a.RiskTolerance != b.RiskTolerance ||
		a.CommunicationStyle != b.CommunicationStyle || a.AestheticPreference != b.AestheticPreference {
		t.Fatalf("same seed produced different vectors:\n%+v\n%+v", a, b)
	}
	if len(a.Colors) != len(b.Colors) {
		t.Fatalf("same seed produced different color counts: %d vs %d", len(a.Colors), len(b.Colors))
	}
	for i := range a.Colors {
		if a.Colors[i] != b.Colors[i] {
			t.Fatalf("color %d: %q vs %q", i, a.Colors[i], b.Colors[i])
		}
	}
}

func TestBuildingStyleThresholds(t *testing.T) {
	tests := []struct {
		creativity, aesthetic float64
		want                  BuildingStyle
	}{
		{0.9, 0.7, StyleChaotic},
		{0.8, 0.7, StyleOrganic},
		{0.2, 0.3, StyleGeometric},
		{0.5, 0.5, StyleStructured},
		{0.9, 0.5, StyleStructured}, // creative but indifferent to looks
	}
	for _, tt := range tests {
		p := PersonalityVector{Creativity: tt.creativity, AestheticPreference: tt.aesthetic}
		if got := p.BuildingStyle(); got != tt.want {
			t.Errorf("creativity=%v aesthetic=%v: got %v, want %v",
				tt.creativity, tt.aesthetic, got, tt.want)
		}
	}
}

func TestDanceIntensityThresholds(t *testing.T) {
	tests := []struct {
		comm float64
		want DanceIntensity
	}{
		{0.9, DanceDramatic},
		{0.7, DanceEnthusiastic},
		{0.5, DanceModerate},
		{0.2, DanceSubtle},
	}
	for _, tt := range tests {
		p := PersonalityVector{CommunicationStyle: tt.comm}
		if got := p.DanceIntensity(); got != tt.want {
			t.Errorf("comm=%v: got %v, want %v", tt.comm, got, tt.want)
		}
	}
}

func TestForagingStrategyThresholds(t *testing.T) {
	tests := []struct {
		risk, social float64
		want         ForagingStrategy
	}{
		{0.8, 0.0, ForageExploratory},
		{0.8, 0.9, ForageExploratory}, // risk wins over social
		{0.5, 0.8, ForageSocial},
		{0.1, 0.2, ForageCautious},
		{0.5, 0.5, ForageEfficient},
	}
	for _, tt := range tests {
		p := PersonalityVector{RiskTolerance: tt.risk, SocialTendency: tt.social}
		if got := p.ForagingStrategy(); got != tt.want {
			t.Errorf("risk=%v social=%v: got %v, want %v", tt.risk, tt.social, got, tt.want)
		}
	}
}

func TestPaletteSelectionPriority(t *testing.T) {
	// Aesthetic preference outranks everything else.
	p := PersonalityVector{AestheticPreference: 0.8, Creativity: 0.9, EnergyPattern: 0.9}
	if got := paletteFor(&p); got[0] != paletteIridescent[0] {
		t.Fatalf("high aesthetic should pick iridescent, got %v", got)
	}

	p = PersonalityVector{Creativity: 0.8}
	if got := paletteFor(&p); got[0] != paletteWildflower[0] {
		t.Fatalf("high creativity should pick wildflower, got %v", got)
	}

	p = PersonalityVector{}
	if got := paletteFor(&p); got[0] != paletteClassic[0] {
		t.Fatalf("plain personality should pick classic, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	p := PersonalityVector{Creativity: 1.5, SocialTendency: -0.2, EnergyPattern: 0.5}
	p.Clamp()
	if p.Creativity != 1 {
		t.Errorf("creativity: got %v, want 1", p.Creativity)
	}
	if p.SocialTendency != 0 {
		t.Errorf("social tendency: got %v, want 0", p.SocialTendency)
	}
	if p.EnergyPattern != 0.5 {
		t.Errorf("energy pattern: got %v, want 0.5", p.EnergyPattern)
	}
}

func TestCommunicationStyleBlend(t *testing.T) {
	// Communication style can never exceed 0.4*soc + 0.4*energy + 0.2.
	gen := NewGenerator(entropy.NewSource(7))
	for i := 0; i < 500; i++ {
		p := gen.Generate()
		max := 0.4*p.SocialTendency + 0.4*p.EnergyPattern + 0.2
		if p.CommunicationStyle > max+1e-9 {
			t.Fatalf("draw %d: comm %v exceeds blend bound %v", i, p.CommunicationStyle, max)
		}
	}
}
