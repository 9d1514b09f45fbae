// Package colony provides the bee data model and the agent factory.
package colony

import (
	"github.com/paulmach/orb"

	"github.com/talgya/waggle/internal/traits"
)

// Activity is the current behavior mode of a bee, one of a fixed closed set.
type Activity uint8

const (
	ActivityForaging Activity = iota
	ActivityBuilding
	ActivityDancing
	ActivityResting
	ActivitySocializing
	ActivityExploring
	ActivityPatrolling // declared but dormant: never chosen by the weighted rotation
)

var activityNames = [...]string{
	"foraging", "building", "dancing", "resting",
	"socializing", "exploring", "patrolling",
}

func (a Activity) String() string {
	if int(a) < len(activityNames) {
		return activityNames[a]
	}
	return "unknown"
}

// ActivityFromString maps a name back to an Activity. Used by the admin
// intervention endpoint; returns false for unknown names.
func ActivityFromString(name string) (Activity, bool) {
	for i, n := range activityNames {
		if n == name {
			return Activity(i), true
		}
	}
	return 0, false
}

// Bee is one simulated agent. The colony owns every Bee record; bees
// reference each other and flowers strictly by id, never by pointer, so
// removal can never leave an owning cycle behind.
type Bee struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Personality traits.PersonalityVector `json:"personality"`

	// Physical state.
	Position orb.Point  `json:"position"`
	Velocity orb.Point  `json:"velocity"`
	Heading  float64    `json:"heading"`
	Size     float64    `json:"size"`
	Target   *orb.Point `json:"target,omitempty"`

	Activity Activity `json:"activity"`

	// Bounded scalars, always in [0,100].
	Energy    float64 `json:"energy"`
	Happiness float64 `json:"happiness"`

	// Social relations by id. Friendship is symmetric.
	Friends       []string `json:"friends"`
	Collaborators []string `json:"collaborators"`

	// Memory and output streams.
	KnownFlowers []string          `json:"known_flowers"`
	Projects     []BuildingProject `json:"projects"`
	Dances       []DanceMessage    `json:"dances"`

	Age float64 `json:"age"` // simulated seconds, monotonic

	Achievements []Achievement         `json:"achievements"`
	History      []PersonalitySnapshot `json:"history"`
}

// HasFriend reports whether id is in the bee's friend list.
func (b *Bee) HasFriend(id string) bool {
	for _, f := range b.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// KnowsFlower reports whether the bee remembers the given flower.
func (b *Bee) KnowsFlower(id string) bool {
	for _, f := range b.KnownFlowers {
		if f == id {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the bee already unlocked the given type.
func (b *Bee) HasAchievement(t AchievementType) bool {
	for _, a := range b.Achievements {
		if a.Type == t {
			return true
		}
	}
	return false
}

// BuildingProject is a construction effort owned by one bee.
type BuildingProject struct {
	ID        string               `json:"id"`
	Kind      string               `json:"kind"` // "art" or "honeycomb"
	Style     traits.BuildingStyle `json:"style"`
	Position  orb.Point            `json:"position"`
	StartedAt float64              `json:"started_at"` // sim-time seconds
}

// DanceKind tags the payload variant of a dance message.
type DanceKind uint8

const (
	// DanceWaggle advertises a flower location.
	DanceWaggle DanceKind = iota
	// DanceTremble recruits helpers to a build site.
	DanceTremble
)

func (k DanceKind) String() string {
	if k == DanceTremble {
		return "tremble"
	}
	return "waggle"
}

// DanceMessage is an emitted dance. Exactly one payload field is set,
// keyed by Kind.
type DanceMessage struct {
	ID   string    `json:"id"`
	Kind DanceKind `json:"kind"`
	At   float64   `json:"at"` // sim-time seconds

	Flower *FlowerRef `json:"flower,omitempty"` // waggle only
	Site   *SiteRef   `json:"site,omitempty"`   // tremble only

	Audience []string `json:"audience"` // bee ids that witnessed the dance
}

// FlowerRef points at a flower by id, carrying the details an audience
// needs without holding the flower record itself.
type FlowerRef struct {
	FlowerID string    `json:"flower_id"`
	Quality  float64   `json:"quality"`
	Position orb.Point `json:"position"`
}

// SiteRef points at a building project by id.
type SiteRef struct {
	ProjectID string    `json:"project_id"`
	Position  orb.Point `json:"position"`
}

// PersonalitySnapshot records the trait values at a drift event.
type PersonalitySnapshot struct {
	Tag string  `json:"tag"` // "birth" or "drift"
	At  float64 `json:"at"`

	Creativity          float64 `json:"creativity"`
	SocialTendency      float64 `json:"social_tendency"`
	EnergyPattern       float64 `json:"energy_pattern"`
	RiskTolerance       float64 `json:"risk_tolerance"`
	CommunicationStyle  float64 `json:"communication_style"`
	AestheticPreference float64 `json:"aesthetic_preference"`
}

// SnapshotOf captures the current trait values of p.
func SnapshotOf(p *traits.PersonalityVector, tag string, at float64) PersonalitySnapshot {
	return PersonalitySnapshot{
		Tag:                 tag,
		At:                  at,
		Creativity:          p.Creativity,
		SocialTendency:      p.SocialTendency,
		EnergyPattern:       p.EnergyPattern,
		RiskTolerance:       p.RiskTolerance,
		CommunicationStyle:  p.CommunicationStyle,
		AestheticPreference: p.AestheticPreference,
	}
}

// AchievementType enumerates the closed set of unlockable achievements.
type AchievementType string

const (
	AchievementFirstFlower     AchievementType = "first_flower"
	AchievementMasterBuilder   AchievementType = "master_builder"
	AchievementSocialButterfly AchievementType = "social_butterfly"
	AchievementArtist          AchievementType = "artist"
)

// Rarity tiers an achievement for presentation.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Achievement is one unlock record. A bee never holds two achievements of
// the same type.
type Achievement struct {
	ID          string          `json:"id"`
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UnlockedAt  float64         `json:"unlocked_at"` // sim-time seconds
	Rarity      Rarity          `json:"rarity"`
}

// Hive is the colony's structure: a center point plus accumulated build
// cells contributed by building bees.
type Hive struct {
	Center orb.Point   `json:"center"`
	Cells  []BuildCell `json:"cells"`
}

// BuildCell is one completed construction cell in the hive.
type BuildCell struct {
	ProjectID string               `json:"project_id"`
	BuilderID string               `json:"builder_id"`
	Kind      string               `json:"kind"`
	Style     traits.BuildingStyle `json:"style"`
	Position  orb.Point            `json:"position"`
}

// Culture collects emergent colony-level records. Populated
// opportunistically; never load-bearing for simulation correctness.
type Culture struct {
	Traditions        []string `json:"traditions"`
	ArtisticMovements []string `json:"artistic_movements"`
	SocialNorms       []string `json:"social_norms"`
}
