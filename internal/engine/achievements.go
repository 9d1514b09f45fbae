// Achievement evaluation. Pure and idempotent: re-running on unchanged
// state emits nothing new.
package engine

import (
	"github.com/google/uuid"

	"github.com/talgya/waggle/internal/colony"
	"github.com/talgya/waggle/internal/traits"
)

type achievementRule struct {
	typ         colony.AchievementType
	title       string
	description string
	rarity      colony.Rarity
	unlocked    func(b *colony.Bee) bool
}

// Checked in this order; order is part of the contract since unlocks are
// recorded as an ordered sequence.
var achievementRules = []achievementRule{
	{
		typ:         colony.AchievementFirstFlower,
		title:       "First Bloom",
		description: "Discovered a first flower",
		rarity:      colony.RarityCommon,
		unlocked: func(b *colony.Bee) bool {
			return len(b.KnownFlowers) >= 1
		},
	},
	{
		typ:         colony.AchievementMasterBuilder,
		title:       "Master Builder",
		description: "Started five building projects",
		rarity:      colony.RarityUncommon,
		unlocked: func(b *colony.Bee) bool {
			return len(b.Projects) >= 5
		},
	},
	{
		typ:         colony.AchievementSocialButterfly,
		title:       "Social Butterfly",
		description: "Made ten friends",
		rarity:      colony.RarityRare,
		unlocked: func(b *colony.Bee) bool {
			return len(b.Friends) >= 10
		},
	},
	{
		typ:         colony.AchievementArtist,
		title:       "Colony Artist",
		description: "Created free-form art with a wildly creative mind",
		rarity:      colony.RarityLegendary,
		unlocked: func(b *colony.Bee) bool {
			if b.Personality.Creativity <= 0.8 {
				return false
			}
			for _, p := range b.Projects {
				if p.Style == traits.StyleOrganic || p.Style == traits.StyleChaotic {
					return true
				}
			}
			return false
		},
	},
}

// EvaluateAchievements returns the new unlocks for the bee's current
// state, skipping any type the bee already holds. The caller appends the
// results; this function never mutates the bee.
func EvaluateAchievements(b *colony.Bee, now float64) []colony.Achievement {
	var out []colony.Achievement
	for _, rule := range achievementRules {
		if b.HasAchievement(rule.typ) || !rule.unlocked(b) {
			continue
		}
		out = append(out, colony.Achievement{
			ID:          uuid.NewString(),
			Type:        rule.typ,
			Title:       rule.title,
			Description: rule.description,
			UnlockedAt:  now,
			Rarity:      rule.rarity,
		})
	}
	return out
}
