package engine

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/talgya/waggle/internal/colony"
	"github.com/talgya/waggle/internal/traits"
)

func TestCompatibilityIdenticalPersonalities(t *testing.T) {
	p := traits.PersonalityVector{
		Creativity: 0.5, SocialTendency: 0.5,
		EnergyPattern: 0.5, CommunicationStyle: 0.5,
	}
	a := &colony.Bee{Personality: p}
	b := &colony.Bee{Personality: p}

	if got := Compatibility(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("identical personalities: got %v, want 1.0", got)
	}
}

func TestCompatibilityPracticalCreativeSplit(t *testing.T) {
	a := &colony.Bee{Personality: traits.PersonalityVector{Creativity: 0.9}}
	b := &colony.Bee{Personality: traits.PersonalityVector{Creativity: 0.1}}

	// Raw creativity closeness would be 0.2; the split rule lifts it to 0.8.
	// Other traits are identical (all zero), so the total is
	// 0.3*1 + 0.3*0.8 + 0.2*1 + 0.2*1 = 0.94.
	if got := Compatibility(a, b); math.Abs(got-0.94) > 1e-9 {
		t.Fatalf("practical/creative split: got %v, want 0.94", got)
	}
}

func TestCompatibilitySymmetric(t *testing.T) {
	a := &colony.Bee{Personality: traits.PersonalityVector{
		Creativity: 0.8, SocialTendency: 0.3, EnergyPattern: 0.6, CommunicationStyle: 0.4,
	}}
	b := &colony.Bee{Personality: traits.PersonalityVector{
		Creativity: 0.2, SocialTendency: 0.9, EnergyPattern: 0.1, CommunicationStyle: 0.7,
	}}
	if Compatibility(a, b) != Compatibility(b, a) {
		t.Fatal("compatibility is not symmetric")
	}
}

// highCompatBees places two nearly identical, highly social bees 10 units
// apart so the only gate left is the 10% formation roll.
func highCompatBees(e *Engine) (*colony.Bee, *colony.Bee) {
	p := traits.PersonalityVector{
		Creativity: 0.5, SocialTendency: 0.95,
		EnergyPattern: 0.5, CommunicationStyle: 0.5,
	}
	a := &colony.Bee{ID: "a", Name: "A", Personality: p, Position: orb.Point{100, 100}, Happiness: 50}
	b := &colony.Bee{ID: "b", Name: "B", Personality: p, Position: orb.Point{110, 100}, Happiness: 50}
	e.world.insert(a)
	e.world.insert(b)
	return a, b
}

func TestSocialPassFormsFriendship(t *testing.T) {
	e := New(Config{Seed: 5, InitialPopulation: 1, FlowerCount: 1})
	e.world.remove(e.world.Bees[0].ID)
	a, b := highCompatBees(e)

	// Compatibility 1.0 clears the threshold; the 10% roll succeeds within
	// a bounded number of passes with overwhelming probability.
	formed := false
	for i := 0; i < 500; i++ {
		e.socialPass()
		if a.HasFriend(b.ID) {
			formed = true
			break
		}
	}
	if !formed {
		t.Fatal("no friendship after 500 passes")
	}

	if !b.HasFriend(a.ID) {
		t.Fatal("friendship is not symmetric")
	}
	if a.Happiness != 65 || b.Happiness != 65 {
		t.Fatalf("happiness after formation: got %v/%v, want 65/65", a.Happiness, b.Happiness)
	}

	// Already friends: further passes change nothing.
	e.socialPass()
	if len(a.Friends) != 1 || len(b.Friends) != 1 {
		t.Fatalf("friend lists grew after formation: %v / %v", a.Friends, b.Friends)
	}
	if a.Happiness != 65 || b.Happiness != 65 {
		t.Fatal("happiness changed after friendship already existed")
	}
}

func TestSocialPassRespectsDistance(t *testing.T) {
	e := New(Config{Seed: 5, InitialPopulation: 1, FlowerCount: 1})
	e.world.remove(e.world.Bees[0].ID)
	a, b := highCompatBees(e)
	b.Position = orb.Point{200, 100} // 100 units away

	for i := 0; i < 500; i++ {
		e.socialPass()
	}
	if a.HasFriend(b.ID) {
		t.Fatal("friendship formed across 100 units, radius is 30")
	}
}

func TestSocialPassThreshold(t *testing.T) {
	e := New(Config{Seed: 5, InitialPopulation: 1, FlowerCount: 1})
	e.world.remove(e.world.Bees[0].ID)

	// Wildly mismatched, antisocial personalities: compatibility stays
	// below the (high, since avg social tendency is 0) threshold of 0.6.
	a := &colony.Bee{ID: "a", Personality: traits.PersonalityVector{
		Creativity: 0.5, EnergyPattern: 1.0, CommunicationStyle: 1.0,
	}, Position: orb.Point{100, 100}}
	b := &colony.Bee{ID: "b", Personality: traits.PersonalityVector{
		Creativity: 0.5, EnergyPattern: 0.0, CommunicationStyle: 0.0,
	}, Position: orb.Point{105, 100}}
	e.world.insert(a)
	e.world.insert(b)

	for i := 0; i < 500; i++ {
		e.socialPass()
	}
	if a.HasFriend(b.ID) {
		t.Fatal("friendship formed below the compatibility threshold")
	}
}
