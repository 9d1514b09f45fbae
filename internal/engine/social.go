// Pairwise social resolution: compatibility scoring and friendship
// formation across the whole population each tick.
package engine

import (
	"fmt"
	"math"

	"github.com/paulmach/orb/planar"

	"github.com/talgya/waggle/internal/colony"
)

const friendshipRadius = 30.0

// Compatibility scores how well two personalities suit friendship, in
// [0,1]. Creativity rewards either strong similarity or a clear
// practical/creative split; the other traits reward plain closeness.
func Compatibility(a, b *colony.Bee) float64 {
	pa, pb := a.Personality, b.Personality

	social := 1 - math.Abs(pa.SocialTendency-pb.SocialTendency)

	creative := 1 - math.Abs(pa.Creativity-pb.Creativity)
	split := (pa.Creativity > 0.7 && pb.Creativity < 0.3) ||
		(pb.Creativity > 0.7 && pa.Creativity < 0.3)
	if split && creative < 0.8 {
		creative = 0.8
	}

	energy := 1 - math.Abs(pa.EnergyPattern-pb.EnergyPattern)
	comm := 1 - math.Abs(pa.CommunicationStyle-pb.CommunicationStyle)

	return 0.3*social + 0.3*creative + 0.2*energy + 0.2*comm
}

// socialPass examines every unordered pair of non-friends within
// friendshipRadius and forms friendships probabilistically. Quadratic in
// population by design; fine at colony scale (tens of bees).
func (e *Engine) socialPass() {
	bees := e.world.Bees
	for i := 0; i < len(bees); i++ {
		for j := i + 1; j < len(bees); j++ {
			a, b := bees[i], bees[j]
			if a.HasFriend(b.ID) {
				continue
			}
			if planar.Distance(a.Position, b.Position) >= friendshipRadius {
				continue
			}

			score := Compatibility(a, b)
			threshold := 0.6 - 0.2*(a.Personality.SocialTendency+b.Personality.SocialTendency)/2
			if score <= threshold || !e.rng.Chance(0.10) {
				continue
			}

			a.Friends = append(a.Friends, b.ID)
			b.Friends = append(b.Friends, a.ID)
			a.Happiness = capScalar(a.Happiness + 15)
			b.Happiness = capScalar(b.Happiness + 15)
			e.emit("social", fmt.Sprintf("%s and %s became friends", a.Name, b.Name))
		}
	}
}
