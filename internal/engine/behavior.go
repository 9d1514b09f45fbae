// Per-bee behavior resolution: movement integration, activity selection,
// activity execution, needs decay, trait drift, and achievement checks.
package engine

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/talgya/waggle/internal/colony"
	"github.com/talgya/waggle/internal/environment"
	"github.com/talgya/waggle/internal/traits"
)

const (
	arrivalRadius = 5.0
	forageRadius  = 20.0
	danceRadius   = 50.0
	socialRadius  = 40.0
	lonelyRadius  = 60.0
)

func cos(x float64) float64 { return math.Cos(x) }
func sin(x float64) float64 { return math.Sin(x) }

// updateBee runs one tick for one bee. Order is fixed: physics, the rare
// activity re-roll, activity execution, needs decay, trait drift, then
// achievement evaluation.
func (e *Engine) updateBee(b *colony.Bee, dt float64) {
	b.Age += dt

	e.movePhysics(b, dt)

	if e.rng.Chance(0.01) {
		e.rerollActivity(b)
	}
	e.executeActivity(b, dt)
	e.decayNeeds(b, dt)
	e.driftTraits(b)

	for _, a := range EvaluateAchievements(b, e.simTime) {
		b.Achievements = append(b.Achievements, a)
		e.pendingUnlocks = append(e.pendingUnlocks, UnlockRecord{
			BeeID: b.ID, BeeName: b.Name, Record: a,
		})
		e.emit("achievement", fmt.Sprintf("%s unlocked %q (%s)", b.Name, a.Title, a.Rarity))
	}
}

// movePhysics integrates position. Target-directed steering when a target
// is set, otherwise occasional random wander. A small smooth jitter from
// the noise field keeps idle bees from freezing in place.
func (e *Engine) movePhysics(b *colony.Bee, dt float64) {
	speed := 50 + b.Personality.EnergyPattern*100

	if b.Target != nil {
		d := planar.Distance(b.Position, *b.Target)
		if d < arrivalRadius {
			b.Target = nil
			b.Velocity[0] *= 0.8
			b.Velocity[1] *= 0.8
		} else {
			b.Heading = math.Atan2((*b.Target)[1]-b.Position[1], (*b.Target)[0]-b.Position[0])
			b.Velocity = orb.Point{cos(b.Heading) * speed, sin(b.Heading) * speed}
		}
	} else if e.rng.Chance(0.02) {
		b.Heading = e.rng.Angle()
		b.Velocity = orb.Point{cos(b.Heading) * speed * 0.3, sin(b.Heading) * speed * 0.3}
	}

	phase := idPhase(b.ID)
	jx := e.jitter.Eval3(e.simTime*0.5, b.Age*0.13, phase) * 8
	jy := e.jitter.Eval3(e.simTime*0.5, b.Age*0.13, phase+5) * 8

	b.Position[0] += (b.Velocity[0] + jx) * dt
	b.Position[1] += (b.Velocity[1] + jy) * dt
	b.Position = environment.ClampToBounds(b.Position)
}

// idPhase maps a bee id to a stable small float so each bee samples its
// own slice of the jitter field.
func idPhase(id string) float64 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return float64(h.Sum32()%1000) / 100.0
}

// rerollActivity picks a new activity by weighted random choice. The
// options are walked in a fixed order so a fixed draw always resolves to
// the same activity. Patrolling carries no weight here; it is reachable
// only through the admin intervention path.
func (e *Engine) rerollActivity(b *colony.Bee) {
	p := b.Personality
	restWeight := (100 - b.Energy) / 100
	if restWeight < 0.1 {
		restWeight = 0.1
	}

	options := []struct {
		activity colony.Activity
		weight   float64
	}{
		{colony.ActivityForaging, 0.3 + p.RiskTolerance*0.2},
		{colony.ActivityBuilding, 0.2 + p.Creativity*0.3},
		{colony.ActivitySocializing, 0.1 + p.SocialTendency*0.4},
		{colony.ActivityExploring, 0.2 + p.RiskTolerance*0.2},
		{colony.ActivityDancing, 0.1 + p.CommunicationStyle*0.2},
		{colony.ActivityResting, restWeight},
	}

	var total float64
	for _, o := range options {
		total += o.weight
	}

	draw := e.rng.Float64() * total
	for _, o := range options {
		draw -= o.weight
		if draw <= 0 {
			if o.activity != b.Activity {
				b.Target = nil
			}
			b.Activity = o.activity
			return
		}
	}
	b.Activity = options[len(options)-1].activity
}

func (e *Engine) executeActivity(b *colony.Bee, dt float64) {
	switch b.Activity {
	case colony.ActivityForaging:
		e.forage(b)
	case colony.ActivityBuilding:
		e.build(b)
	case colony.ActivityDancing:
		e.dance(b)
	case colony.ActivitySocializing:
		e.socialize(b)
	case colony.ActivityExploring:
		e.explore(b)
	case colony.ActivityResting:
		e.rest(b, dt)
	case colony.ActivityPatrolling:
		e.patrol(b)
	}
}

// forage steers toward the most attractive flower and records it on
// arrival. Known low-quality flowers are skipped; known flowers above
// quality 0.7 stay worth revisiting.
func (e *Engine) forage(b *colony.Bee) {
	target := e.forageTarget(b)
	if target == nil {
		return
	}
	d := planar.Distance(b.Position, target.Position)
	if d >= forageRadius {
		t := target.Position
		b.Target = &t
		return
	}

	if !b.KnowsFlower(target.ID) {
		b.KnownFlowers = append(b.KnownFlowers, target.ID)
		if target.DiscoveredBy == "" {
			target.DiscoveredBy = b.ID
			e.emit("forage", fmt.Sprintf("%s discovered a %s flower", b.Name, target.Type))
		}
		b.Happiness = capScalar(b.Happiness + 10)
	}
	target.LastVisited = e.simTime

	if target.Quality > 0.8 && b.Personality.CommunicationStyle > 0.5 {
		b.Activity = colony.ActivityDancing
		b.Target = nil
	}
}

func (e *Engine) forageTarget(b *colony.Bee) *environment.Flower {
	var best *environment.Flower
	bestDist := math.MaxFloat64
	for _, f := range e.world.Env.Flowers {
		if b.KnowsFlower(f.ID) && f.Quality <= 0.7 {
			continue
		}
		d := planar.Distance(b.Position, f.Position)
		if d < bestDist {
			best = f
			bestDist = d
		}
	}
	return best
}

// build starts a new construction project near the hive center for
// sufficiently creative bees, occasionally recruiting collaborators with
// a tremble dance.
func (e *Engine) build(b *colony.Bee) {
	if b.Personality.Creativity <= 0.6 || !e.rng.Chance(0.05) {
		return
	}

	kind := "honeycomb"
	if b.Personality.Creativity > 0.8 {
		kind = "art"
	}
	center := e.world.Hive.Center
	pos := environment.ClampToBounds(orb.Point{
		center[0] + (e.rng.Float64()-0.5)*80,
		center[1] + (e.rng.Float64()-0.5)*80,
	})

	proj := colony.BuildingProject{
		ID:        uuid.NewString(),
		Kind:      kind,
		Style:     b.Personality.BuildingStyle(),
		Position:  pos,
		StartedAt: e.simTime,
	}
	b.Projects = append(b.Projects, proj)
	t := pos
	b.Target = &t

	e.world.Hive.Cells = append(e.world.Hive.Cells, colony.BuildCell{
		ProjectID: proj.ID,
		BuilderID: b.ID,
		Kind:      kind,
		Style:     proj.Style,
		Position:  pos,
	})
	e.emit("build", fmt.Sprintf("%s started a %s %s project", b.Name, proj.Style, kind))

	if b.Personality.CommunicationStyle > 0.6 {
		e.trembleDance(b, &proj)
	}
	e.checkArtisticMovement(proj.Style)
}

// trembleDance recruits nearby receptive bees to a build site. Witnesses
// become collaborators on both sides.
func (e *Engine) trembleDance(b *colony.Bee, proj *colony.BuildingProject) {
	msg := colony.DanceMessage{
		ID:   uuid.NewString(),
		Kind: colony.DanceTremble,
		At:   e.simTime,
		Site: &colony.SiteRef{ProjectID: proj.ID, Position: proj.Position},
	}
	for _, other := range e.world.Bees {
		if other.ID == b.ID || other.Personality.SocialTendency <= 0.3 {
			continue
		}
		if planar.Distance(b.Position, other.Position) >= danceRadius {
			continue
		}
		msg.Audience = append(msg.Audience, other.ID)
		if !hasEntry(b.Collaborators, other.ID) {
			b.Collaborators = append(b.Collaborators, other.ID)
			other.Collaborators = append(other.Collaborators, b.ID)
		}
		t := proj.Position
		other.Target = &t
	}
	b.Dances = appendDance(b.Dances, msg)
	if len(msg.Audience) > 0 {
		e.emit("build", fmt.Sprintf("%s recruited %d helpers with a tremble dance", b.Name, len(msg.Audience)))
	}
}

// dance advertises the best known flower. Receptive bees within range
// join the audience and learn the flower.
func (e *Engine) dance(b *colony.Bee) {
	if !e.rng.Chance(0.10) || len(b.KnownFlowers) == 0 {
		return
	}

	var best *environment.Flower
	for _, id := range b.KnownFlowers {
		f := e.world.Env.Flower(id)
		if f == nil {
			continue
		}
		if best == nil || f.Quality > best.Quality {
			best = f
		}
	}
	if best == nil {
		return
	}

	msg := colony.DanceMessage{
		ID:   uuid.NewString(),
		Kind: colony.DanceWaggle,
		At:   e.simTime,
		Flower: &colony.FlowerRef{
			FlowerID: best.ID,
			Quality:  best.Quality,
			Position: best.Position,
		},
	}
	for _, other := range e.world.Bees {
		if other.ID == b.ID || other.Personality.SocialTendency <= 0.3 {
			continue
		}
		if planar.Distance(b.Position, other.Position) >= danceRadius {
			continue
		}
		msg.Audience = append(msg.Audience, other.ID)
		if !other.KnowsFlower(best.ID) {
			other.KnownFlowers = append(other.KnownFlowers, best.ID)
		}
	}
	b.Dances = appendDance(b.Dances, msg)

	if len(msg.Audience) >= 3 {
		e.recordTradition(b)
	}
}

// appendDance keeps the most recent dances, bounded.
func appendDance(dances []colony.DanceMessage, msg colony.DanceMessage) []colony.DanceMessage {
	dances = append(dances, msg)
	if len(dances) > 20 {
		dances = dances[len(dances)-20:]
	}
	return dances
}

// socialize approaches a random nearby bee. Happiness rises only when a
// partner is actually found.
func (e *Engine) socialize(b *colony.Bee) {
	var nearby []*colony.Bee
	for _, other := range e.world.Bees {
		if other.ID == b.ID {
			continue
		}
		if planar.Distance(b.Position, other.Position) < socialRadius {
			nearby = append(nearby, other)
		}
	}
	if len(nearby) == 0 {
		return
	}
	partner := nearby[e.rng.Intn(len(nearby))]
	t := partner.Position
	b.Target = &t
	b.Happiness = capScalar(b.Happiness + 1)
}

// explore heads toward a fresh point away from the hive. A new bearing is
// chosen only once the previous one is reached.
func (e *Engine) explore(b *colony.Bee) {
	if b.Target != nil {
		return
	}
	angle := e.rng.Angle()
	dist := 100 + b.Personality.RiskTolerance*200
	center := e.world.Hive.Center
	t := environment.ClampToBounds(orb.Point{
		center[0] + cos(angle)*dist,
		center[1] + sin(angle)*dist,
	})
	b.Target = &t
}

func (e *Engine) rest(b *colony.Bee, dt float64) {
	b.Energy = capScalar(b.Energy + 20*dt)
	b.Velocity[0] *= 0.9
	b.Velocity[1] *= 0.9
	if b.Energy > 80 {
		b.Activity = colony.ActivityExploring
		b.Target = nil
	}
}

// patrol circles the hive perimeter. Only reachable through the admin
// intervention path.
func (e *Engine) patrol(b *colony.Bee) {
	if b.Target != nil {
		return
	}
	angle := e.rng.Angle()
	center := e.world.Hive.Center
	t := environment.ClampToBounds(orb.Point{
		center[0] + cos(angle)*150,
		center[1] + sin(angle)*150,
	})
	b.Target = &t
}

// decayNeeds applies the per-tick drains. Highly social bees drain extra
// happiness when nobody is within earshot.
func (e *Engine) decayNeeds(b *colony.Bee, dt float64) {
	b.Energy = floorScalar(b.Energy - (1+b.Personality.EnergyPattern)*dt*2)
	b.Happiness = floorScalar(b.Happiness - dt*0.5)

	if b.Personality.SocialTendency > 0.7 && !e.anyNearby(b, lonelyRadius) {
		b.Happiness = floorScalar(b.Happiness - dt*2)
	}
}

func (e *Engine) anyNearby(b *colony.Bee, radius float64) bool {
	for _, other := range e.world.Bees {
		if other.ID == b.ID {
			continue
		}
		if planar.Distance(b.Position, other.Position) < radius {
			return true
		}
	}
	return false
}

// driftTraits rarely nudges one trait by a small amount and records the
// event in the bee's personality history.
func (e *Engine) driftTraits(b *colony.Bee) {
	if !e.rng.Chance(0.0005) {
		return
	}

	delta := (e.rng.Float64() - 0.5) * 0.04
	switch e.rng.Intn(6) {
	case 0:
		b.Personality.Creativity += delta
	case 1:
		b.Personality.SocialTendency += delta
	case 2:
		b.Personality.EnergyPattern += delta
	case 3:
		b.Personality.RiskTolerance += delta
	case 4:
		b.Personality.CommunicationStyle += delta
	case 5:
		b.Personality.AestheticPreference += delta
	}
	b.Personality.Clamp()
	b.History = append(b.History, colony.SnapshotOf(&b.Personality, "drift", e.simTime))
}

// recordTradition notes a well-attended dance as an emergent tradition,
// once per dancer.
func (e *Engine) recordTradition(b *colony.Bee) {
	entry := b.Name + "'s dance gathering"
	if hasEntry(e.world.Culture.Traditions, entry) {
		return
	}
	e.world.Culture.Traditions = append(e.world.Culture.Traditions, entry)
	e.emit("social", fmt.Sprintf("a tradition formed around %s's dances", b.Name))
}

// checkArtisticMovement scans the colony for three art projects sharing a
// style and records the movement once.
func (e *Engine) checkArtisticMovement(style traits.BuildingStyle) {
	entry := style.String() + " movement"
	if hasEntry(e.world.Culture.ArtisticMovements, entry) {
		return
	}
	count := 0
	for _, b := range e.world.Bees {
		for _, p := range b.Projects {
			if p.Kind == "art" && p.Style == style {
				count++
			}
		}
	}
	if count >= 3 {
		e.world.Culture.ArtisticMovements = append(e.world.Culture.ArtisticMovements, entry)
		e.emit("build", "an artistic movement emerged: "+entry)
	}
}

func capScalar(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

func floorScalar(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
