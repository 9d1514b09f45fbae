// Package traits provides the personality model for bees: six continuous
// traits in [0,1] plus categorical attributes derived from them by fixed
// threshold rules.
package traits

import (
	"github.com/talgya/waggle/internal/entropy"
)

// PersonalityVector holds the six continuous traits. The categorical
// attributes (building style, dance intensity, foraging strategy) are pure
// functions of the current trait values; Colors is fixed at generation time.
type PersonalityVector struct {
	Creativity          float64 `json:"creativity"`
	SocialTendency      float64 `json:"social_tendency"`
	EnergyPattern       float64 `json:"energy_pattern"`
	RiskTolerance       float64 `json:"risk_tolerance"`
	CommunicationStyle  float64 `json:"communication_style"`
	AestheticPreference float64 `json:"aesthetic_preference"`

	Colors []string `json:"colors"`
}

// BuildingStyle classifies how a bee approaches construction.
type BuildingStyle uint8

const (
	StyleStructured BuildingStyle = iota
	StyleGeometric
	StyleOrganic
	StyleChaotic
)

func (b BuildingStyle) String() string {
	switch b {
	case StyleGeometric:
		return "geometric"
	case StyleOrganic:
		return "organic"
	case StyleChaotic:
		return "chaotic"
	default:
		return "structured"
	}
}

// DanceIntensity classifies how expressively a bee dances.
type DanceIntensity uint8

const (
	DanceSubtle DanceIntensity = iota
	DanceModerate
	DanceEnthusiastic
	DanceDramatic
)

func (d DanceIntensity) String() string {
	switch d {
	case DanceModerate:
		return "moderate"
	case DanceEnthusiastic:
		return "enthusiastic"
	case DanceDramatic:
		return "dramatic"
	default:
		return "subtle"
	}
}

// ForagingStrategy classifies how a bee searches for flowers.
type ForagingStrategy uint8

const (
	ForageEfficient ForagingStrategy = iota
	ForageExploratory
	ForageSocial
	ForageCautious
)

func (f ForagingStrategy) String() string {
	switch f {
	case ForageExploratory:
		return "exploratory"
	case ForageSocial:
		return "social"
	case ForageCautious:
		return "cautious"
	default:
		return "efficient"
	}
}

// BuildingStyle derives the construction style from the current traits.
// High creativity splits organic/chaotic on an 0.85 creativity boundary;
// low creativity with low aesthetic preference reads as geometric.
func (p *PersonalityVector) BuildingStyle() BuildingStyle {
	switch {
	case p.Creativity > 0.85 && p.AestheticPreference > 0.6:
		return StyleChaotic
	case p.Creativity > 0.7 && p.AestheticPreference > 0.6:
		return StyleOrganic
	case p.Creativity < 0.3 && p.AestheticPreference < 0.4:
		return StyleGeometric
	default:
		return StyleStructured
	}
}

// DanceIntensity derives dance expressiveness from communication style.
func (p *PersonalityVector) DanceIntensity() DanceIntensity {
	switch {
	case p.CommunicationStyle > 0.8:
		return DanceDramatic
	case p.CommunicationStyle > 0.6:
		return DanceEnthusiastic
	case p.CommunicationStyle > 0.35:
		return DanceModerate
	default:
		return DanceSubtle
	}
}

// ForagingStrategy derives the search style from risk and social traits.
func (p *PersonalityVector) ForagingStrategy() ForagingStrategy {
	switch {
	case p.RiskTolerance > 0.7:
		return ForageExploratory
	case p.SocialTendency > 0.7:
		return ForageSocial
	case p.RiskTolerance < 0.25:
		return ForageCautious
	default:
		return ForageEfficient
	}
}

// Palette buckets, in priority order of the selection rule below.
var (
	paletteIridescent = []string{"#b39ddb", "#80deea", "#f48fb1", "#ce93d8", "#a5d6a7"}
	paletteWildflower = []string{"#e57373", "#ffb74d", "#9575cd", "#4db6ac", "#f06292"}
	paletteSunburst   = []string{"#ffd54f", "#ffb300", "#ff8a65", "#ffe082", "#ffa726"}
	paletteMeadow     = []string{"#aed581", "#81c784", "#dce775", "#66bb6a", "#c5e1a5"}
	paletteClassic    = []string{"#fdd835", "#212121", "#fbc02d", "#424242", "#f9a825"}
)

// paletteFor picks the palette bucket by a priority rule over trait
// thresholds: the first matching rule wins.
func paletteFor(p *PersonalityVector) []string {
	switch {
	case p.AestheticPreference > 0.75:
		return paletteIridescent
	case p.Creativity > 0.7:
		return paletteWildflower
	case p.EnergyPattern > 0.65:
		return paletteSunburst
	case p.SocialTendency > 0.6:
		return paletteMeadow
	default:
		return paletteClassic
	}
}

// Generator produces personality vectors from an explicit random source.
type Generator struct {
	rng *entropy.Source
}

// NewGenerator creates a trait generator drawing from src.
func NewGenerator(src *entropy.Source) *Generator {
	return &Generator{rng: src}
}

// Generate produces a fully populated, in-range personality vector.
// The four primary traits are independent uniform draws; communication
// style blends social tendency and energy pattern (0.4/0.4) with noise
// (0.2); aesthetic preference blends creativity (0.6) with noise (0.4).
func (g *Generator) Generate() PersonalityVector {
	p := PersonalityVector{
		Creativity:     g.rng.Float64(),
		SocialTendency: g.rng.Float64(),
		EnergyPattern:  g.rng.Float64(),
		RiskTolerance:  g.rng.Float64(),
	}
	p.CommunicationStyle = clamp01(0.4*p.SocialTendency + 0.4*p.EnergyPattern + 0.2*g.rng.Float64())
	p.AestheticPreference = clamp01(0.6*p.Creativity + 0.4*g.rng.Float64())

	// Keep a random-length prefix (2–4 entries) of the chosen palette,
	// preserving palette order.
	palette := paletteFor(&p)
	keep := 2 + g.rng.Intn(3)
	p.Colors = append([]string(nil), palette[:keep]...)

	return p
}

// Clamp forces every trait back into [0,1]. Called after any mutation.
func (p *PersonalityVector) Clamp() {
	p.Creativity = clamp01(p.Creativity)
	p.SocialTendency = clamp01(p.SocialTendency)
	p.EnergyPattern = clamp01(p.EnergyPattern)
	p.RiskTolerance = clamp01(p.RiskTolerance)
	p.CommunicationStyle = clamp01(p.CommunicationStyle)
	p.AestheticPreference = clamp01(p.AestheticPreference)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
