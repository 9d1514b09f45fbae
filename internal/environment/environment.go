// Package environment provides the world around the bees: the bounded
// field, the flower population, and weather/season/time-of-day state.
package environment

import (
	"fmt"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/paulmach/orb"

	"github.com/talgya/waggle/internal/entropy"
)

// Field bounds. Positions are clamped to Margin inside the edges.
const (
	Width  = 800.0
	Height = 600.0
	Margin = 20.0
)

// Flower is a shared, read-mostly nectar source. DiscoveredBy and
// LastVisited are the only fields mutated after creation, and only by the
// discovering bee's foraging action.
type Flower struct {
	ID          string    `json:"id"`
	Position    orb.Point `json:"position"`
	Type        string    `json:"type"`
	Quality     float64   `json:"quality"` // [0,1]
	DiscoveredBy string   `json:"discovered_by,omitempty"`
	LastVisited float64   `json:"last_visited"` // sim-time seconds
}

// Environment aggregates flowers and ambient conditions.
type Environment struct {
	Flowers []*Flower `json:"flowers"`
	Weather Weather   `json:"weather"`
	Season  string    `json:"season"`
	TimeOfDay string  `json:"time_of_day"`

	flowerIndex map[string]*Flower
	weatherNoise opensimplex.Noise
}

// Weather is observational state derived from a smooth noise field. It is
// reported in snapshots but never modulates core behavior constants.
type Weather struct {
	Description string  `json:"description"`
	Intensity   float64 `json:"intensity"` // [0,1]
}

var flowerTypes = []string{"lavender", "clover", "sunflower", "poppy", "thistle"}

// New generates an environment with count flowers scattered inside the
// bounds, seeded deterministically from src.
func New(src *entropy.Source, seed int64, count int) *Environment {
	env := &Environment{
		flowerIndex:  make(map[string]*Flower, count),
		weatherNoise: opensimplex.NewNormalized(seed),
		Season:       "spring",
		TimeOfDay:    "morning",
	}
	for i := 0; i < count; i++ {
		f := &Flower{
			ID:   uuid.NewString(),
			Type: flowerTypes[src.Intn(len(flowerTypes))],
			Position: orb.Point{
				Margin + src.Float64()*(Width-2*Margin),
				Margin + src.Float64()*(Height-2*Margin),
			},
			Quality: src.Float64(),
		}
		env.Flowers = append(env.Flowers, f)
		env.flowerIndex[f.ID] = f
	}
	env.Advance(0)
	return env
}

// Flower looks up a flower by id. Bees remember flowers by id only, so
// every read goes through this table.
func (e *Environment) Flower(id string) *Flower {
	return e.flowerIndex[id]
}

// Advance updates weather, season, and time-of-day for the given sim time.
// Weather drifts along an opensimplex field so it changes smoothly, never
// by jumps.
func (e *Environment) Advance(simTime float64) {
	v := e.weatherNoise.Eval2(simTime*0.002, 0)
	e.Weather.Intensity = v
	switch {
	case v > 0.75:
		e.Weather.Description = "bright sunshine"
	case v > 0.5:
		e.Weather.Description = "scattered clouds"
	case v > 0.25:
		e.Weather.Description = "overcast"
	default:
		e.Weather.Description = "light rain"
	}

	// One sim-day lasts 240 seconds; four days per season.
	day := simTime / 240.0
	frac := day - float64(int(day))
	switch {
	case frac < 0.25:
		e.TimeOfDay = "morning"
	case frac < 0.5:
		e.TimeOfDay = "midday"
	case frac < 0.75:
		e.TimeOfDay = "evening"
	default:
		e.TimeOfDay = "night"
	}

	seasons := [...]string{"spring", "summer", "autumn", "winter"}
	e.Season = seasons[int(day/4)%4]
}

// Copy returns a read-only deep copy for snapshots. The copy keeps a
// lookup table but shares no flower records with the live environment.
func (e *Environment) Copy() *Environment {
	cp := &Environment{
		Weather:     e.Weather,
		Season:      e.Season,
		TimeOfDay:   e.TimeOfDay,
		flowerIndex: make(map[string]*Flower, len(e.Flowers)),
	}
	for _, f := range e.Flowers {
		fc := *f
		cp.Flowers = append(cp.Flowers, &fc)
		cp.flowerIndex[fc.ID] = &fc
	}
	return cp
}

// ClampToBounds forces a point to Margin inside the field edges.
func ClampToBounds(p orb.Point) orb.Point {
	if p[0] < Margin {
		p[0] = Margin
	}
	if p[0] > Width-Margin {
		p[0] = Width - Margin
	}
	if p[1] < Margin {
		p[1] = Margin
	}
	if p[1] > Height-Margin {
		p[1] = Height - Margin
	}
	return p
}

// Center returns the hive center point.
func Center() orb.Point {
	return orb.Point{Width / 2, Height / 2}
}

// Describe summarizes current conditions for logs and the status endpoint.
func (e *Environment) Describe() string {
	return fmt.Sprintf("%s, %s %s", e.Weather.Description, e.Season, e.TimeOfDay)
}
