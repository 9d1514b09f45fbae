// Colony aggregate — the root object every resolver operates on.
package engine

import (
	"fmt"

	"github.com/talgya/waggle/internal/colony"
	"github.com/talgya/waggle/internal/environment"
)

// Colony holds the complete simulation state: all bees, the hive, the
// environment, aggregate statistics, and the emergent culture record.
// Mutation happens only inside the engine; external collaborators read
// snapshots.
type Colony struct {
	Bees     []*colony.Bee            `json:"bees"`
	BeeIndex map[string]*colony.Bee   `json:"-"`
	Hive     colony.Hive              `json:"hive"`
	Env      *environment.Environment `json:"environment"`
	Stats    Stats                    `json:"stats"`
	Culture  colony.Culture           `json:"culture"`
}

// Stats are the per-tick population aggregates.
type Stats struct {
	Population        int     `json:"population"`
	AvgHappiness      float64 `json:"avg_happiness"`
	AvgEnergy         float64 `json:"avg_energy"`
	CulturalDiversity float64 `json:"cultural_diversity"`
}

// updateStats recomputes the aggregates. A zero-population colony reports
// zeros for every average rather than propagating a division by zero.
func (c *Colony) updateStats() {
	n := len(c.Bees)
	c.Stats = Stats{Population: n}
	if n == 0 {
		return
	}

	var happiness, energy, creativity float64
	for _, b := range c.Bees {
		happiness += b.Happiness
		energy += b.Energy
		creativity += b.Personality.Creativity
	}
	c.Stats.AvgHappiness = happiness / float64(n)
	c.Stats.AvgEnergy = energy / float64(n)

	mean := creativity / float64(n)
	var variance float64
	for _, b := range c.Bees {
		d := b.Personality.Creativity - mean
		variance += d * d
	}
	variance /= float64(n)

	diversity := variance * 4
	if diversity > 1 {
		diversity = 1
	}
	c.Stats.CulturalDiversity = diversity
}

// insert adds a bee to the aggregate.
func (c *Colony) insert(b *colony.Bee) {
	c.Bees = append(c.Bees, b)
	c.BeeIndex[b.ID] = b
}

// remove deletes the bee and scrubs its id from every other bee's friend
// and collaborator lists so no dangling reference survives the call.
// Returns false when the id is absent (a no-op, not an error).
func (c *Colony) remove(id string) bool {
	if _, ok := c.BeeIndex[id]; !ok {
		return false
	}
	delete(c.BeeIndex, id)
	for i, b := range c.Bees {
		if b.ID == id {
			c.Bees = append(c.Bees[:i], c.Bees[i+1:]...)
			break
		}
	}
	for _, b := range c.Bees {
		b.Friends = scrub(b.Friends, id)
		b.Collaborators = scrub(b.Collaborators, id)
	}
	return true
}

func scrub(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Copy returns a deep snapshot sharing no mutable state with the live
// colony.
func (c *Colony) Copy() *Colony {
	cp := &Colony{
		BeeIndex: make(map[string]*colony.Bee, len(c.Bees)),
		Hive: colony.Hive{
			Center: c.Hive.Center,
			Cells:  append([]colony.BuildCell(nil), c.Hive.Cells...),
		},
		Env:   c.Env.Copy(),
		Stats: c.Stats,
		Culture: colony.Culture{
			Traditions:        append([]string(nil), c.Culture.Traditions...),
			ArtisticMovements: append([]string(nil), c.Culture.ArtisticMovements...),
			SocialNorms:       append([]string(nil), c.Culture.SocialNorms...),
		},
	}
	for _, b := range c.Bees {
		bc := copyBee(b)
		cp.Bees = append(cp.Bees, bc)
		cp.BeeIndex[bc.ID] = bc
	}
	return cp
}

func copyBee(b *colony.Bee) *colony.Bee {
	bc := *b
	if b.Target != nil {
		t := *b.Target
		bc.Target = &t
	}
	bc.Personality.Colors = append([]string(nil), b.Personality.Colors...)
	bc.Friends = append([]string(nil), b.Friends...)
	bc.Collaborators = append([]string(nil), b.Collaborators...)
	bc.KnownFlowers = append([]string(nil), b.KnownFlowers...)
	bc.Projects = append([]colony.BuildingProject(nil), b.Projects...)
	bc.Achievements = append([]colony.Achievement(nil), b.Achievements...)
	bc.History = append([]colony.PersonalitySnapshot(nil), b.History...)
	bc.Dances = make([]colony.DanceMessage, len(b.Dances))
	for i, d := range b.Dances {
		dc := d
		if d.Flower != nil {
			f := *d.Flower
			dc.Flower = &f
		}
		if d.Site != nil {
			s := *d.Site
			dc.Site = &s
		}
		dc.Audience = append([]string(nil), d.Audience...)
		bc.Dances[i] = dc
	}
	return &bc
}

// FormatSimTime renders a sim-time value as "Day N, <time of day>".
func FormatSimTime(simTime float64) string {
	const dayLength = 240.0
	day := int(simTime/dayLength) + 1
	frac := simTime/dayLength - float64(int(simTime/dayLength))
	part := "morning"
	switch {
	case frac >= 0.75:
		part = "night"
	case frac >= 0.5:
		part = "evening"
	case frac >= 0.25:
		part = "midday"
	}
	return fmt.Sprintf("Day %d, %s", day, part)
}
