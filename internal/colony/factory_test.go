package colony

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/talgya/waggle/internal/entropy"
)

func TestNewBeeDeterministic(t *testing.T) {
	a := NewFactory(entropy.NewSource(42)).NewBee(orb.Point{100, 100})
	b := NewFactory(entropy.NewSource(42)).NewBee(orb.Point{100, 100})

	if a.Name != b.Name {
		t.Errorf("names differ: %q vs %q", a.Name, b.Name)
	}
	if a.Energy != b.Energy {
		t.Errorf("energy differs: %v vs %v", a.Energy, b.Energy)
	}
	if a.Happiness != b.Happiness {
		t.Errorf("happiness differs: %v vs %v", a.Happiness, b.Happiness)
	}
	if a.Personality.Creativity != b.Personality.Creativity {
		t.Errorf("creativity differs: %v vs %v", a.Personality.Creativity, b.Personality.Creativity)
	}
}

func TestNewBeeInitialState(t *testing.T) {
	f := NewFactory(entropy.NewSource(7))

	for i := 0; i < 200; i++ {
		b := f.NewBee(orb.Point{50, 50})

		wantEnergy := 70 + b.Personality.EnergyPattern*30
		if b.Energy != wantEnergy {
			t.Fatalf("bee %d energy: got %v, want %v", i, b.Energy, wantEnergy)
		}

		wantHappiness := 60 + b.Personality.SocialTendency*20 + b.Personality.Creativity*20
		if wantHappiness > 100 {
			wantHappiness = 100
		}
		if b.Happiness != wantHappiness {
			t.Fatalf("bee %d happiness: got %v, want %v", i, b.Happiness, wantHappiness)
		}

		if b.Activity != ActivityExploring {
			t.Fatalf("bee %d activity: got %v, want exploring", i, b.Activity)
		}
		if b.Velocity[0] != 0 || b.Velocity[1] != 0 {
			t.Fatalf("bee %d velocity: got %v, want zero", i, b.Velocity)
		}
		if b.Size < 0.8 || b.Size > 1.2 {
			t.Fatalf("bee %d size: got %v, want [0.8,1.2]", i, b.Size)
		}
		if b.Age != 0 {
			t.Fatalf("bee %d age: got %v, want 0", i, b.Age)
		}
		if len(b.History) != 1 || b.History[0].Tag != "birth" {
			t.Fatalf("bee %d history: got %+v, want single birth entry", i, b.History)
		}
	}
}

func TestNewBeeUniqueIDs(t *testing.T) {
	f := NewFactory(entropy.NewSource(3))
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		b := f.NewBee(orb.Point{})
		if seen[b.ID] {
			t.Fatalf("duplicate id after %d bees: %s", i, b.ID)
		}
		seen[b.ID] = true
	}
}

func TestActivityFromString(t *testing.T) {
	for i, name := range activityNames {
		a, ok := ActivityFromString(name)
		if !ok || a != Activity(i) {
			t.Errorf("%q: got (%v, %v), want (%v, true)", name, a, ok, Activity(i))
		}
	}
	if _, ok := ActivityFromString("moping"); ok {
		t.Error("unknown activity name should not resolve")
	}
}

func TestHasAchievementAndFriendHelpers(t *testing.T) {
	b := &Bee{
		Friends:      []string{"a", "b"},
		KnownFlowers: []string{"f1"},
		Achievements: []Achievement{{Type: AchievementFirstFlower}},
	}
	if !b.HasFriend("a") || b.HasFriend("c") {
		t.Error("HasFriend lookup wrong")
	}
	if !b.KnowsFlower("f1") || b.KnowsFlower("f2") {
		t.Error("KnowsFlower lookup wrong")
	}
	if !b.HasAchievement(AchievementFirstFlower) || b.HasAchievement(AchievementArtist) {
		t.Error("HasAchievement lookup wrong")
	}
}
