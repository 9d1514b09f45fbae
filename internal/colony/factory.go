// Bee factory — combines a generated personality with initial physical and
// behavioral state into a complete agent record.
package colony

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/talgya/waggle/internal/entropy"
	"github.com/talgya/waggle/internal/traits"
)

// Factory creates bees. It owns a trait generator and draws from the same
// source so a seeded run produces identical bees in identical order.
type Factory struct {
	rng *entropy.Source
	gen *traits.Generator
}

// NewFactory creates a bee factory drawing from src.
func NewFactory(src *entropy.Source) *Factory {
	return &Factory{rng: src, gen: traits.NewGenerator(src)}
}

// NewBee creates a complete bee at the given position. Initial energy and
// happiness derive from the personality; the activity always starts as
// exploring with a single "birth" history entry.
func (f *Factory) NewBee(pos orb.Point) *Bee {
	p := f.gen.Generate()

	b := &Bee{
		ID:          uuid.NewString(),
		Name:        f.nameFor(&p),
		Personality: p,
		Position:    pos,
		Velocity:    orb.Point{},
		Heading:     f.rng.Angle(),
		Size:        0.8 + f.rng.Float64()*0.4,
		Activity:    ActivityExploring,
		Energy:      clampScalar(70 + p.EnergyPattern*30),
		Happiness:   clampScalar(60 + p.SocialTendency*20 + p.Creativity*20),
	}
	b.History = append(b.History, SnapshotOf(&b.Personality, "birth", 0))
	return b
}

// nameFor derives a display name: walk the traits in fixed order, take the
// first that crosses the high (0.6) or low (0.4) threshold, map it to a
// name bucket, and append a random two-digit suffix.
func (f *Factory) nameFor(p *traits.PersonalityVector) string {
	type scored struct {
		value     float64
		high, low []string
	}
	ordered := []scored{
		{p.Creativity, creativeNames, plainNames},
		{p.SocialTendency, socialNames, soloNames},
		{p.EnergyPattern, energeticNames, mellowNames},
		{p.RiskTolerance, boldNames, carefulNames},
		{p.CommunicationStyle, chattyNames, quietNames},
		{p.AestheticPreference, aestheteNames, plainNames},
	}

	base := "Bee"
	for _, s := range ordered {
		if s.value > 0.6 {
			base = s.high[f.rng.Intn(len(s.high))]
			break
		}
		if s.value < 0.4 {
			base = s.low[f.rng.Intn(len(s.low))]
			break
		}
	}

	return fmt.Sprintf("%s-%02d", base, 10+f.rng.Intn(90))
}

func clampScalar(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Name buckets, one pair (high/low) per trait.
var (
	creativeNames  = []string{"Fresco", "Mosaic", "Doodle", "Muse", "Pollock", "Tessel"}
	socialNames    = []string{"Buzzy", "Mingle", "Chorus", "Gather", "Huddle", "Swarm"}
	energeticNames = []string{"Zippy", "Bolt", "Dynamo", "Flicker", "Rocket", "Spark"}
	boldNames      = []string{"Dash", "Venture", "Scout", "Maverick", "Ranger", "Pioneer"}
	chattyNames    = []string{"Waggle", "Echo", "Herald", "Chatter", "Signal", "Trill"}
	aestheteNames  = []string{"Petal", "Prism", "Gilda", "Luster", "Opal", "Shimmer"}

	plainNames   = []string{"Drone", "Worker", "Steady", "Amber", "Honey", "Clover"}
	soloNames    = []string{"Wisp", "Quill", "Solo", "Hermit", "Drift", "Lone"}
	mellowNames  = []string{"Dozy", "Lull", "Breeze", "Gentle", "Slow", "Moss"}
	carefulNames = []string{"Tidy", "Prudence", "Anchor", "Keeper", "Warden", "Thrift"}
	quietNames   = []string{"Hush", "Murmur", "Still", "Whisper", "Soft", "Mum"}
)
