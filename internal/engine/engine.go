// Package engine drives the colony simulation: the per-tick advance loop,
// the behavior and social resolvers, achievement evaluation, aggregate
// statistics, and observer notification.
package engine

import (
	"log/slog"
	"sync"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/paulmach/orb"

	"github.com/talgya/waggle/internal/colony"
	"github.com/talgya/waggle/internal/entropy"
	"github.com/talgya/waggle/internal/environment"
)

// MaxDelta caps the simulated seconds a single Advance call may cover.
// Larger external gaps (stalls, suspended hosts) are discarded, not
// accumulated, to keep the integration stable.
const MaxDelta = 0.1

// Observer receives the colony after every tick, in registration order.
// The callback is synchronous; observers must treat the colony as
// read-only and must not call back into the engine during notification.
type Observer interface {
	ColonyUpdated(c *Colony)
}

// Event is a notable occurrence in the colony.
type Event struct {
	Tick        uint64  `json:"tick"`
	SimTime     float64 `json:"sim_time" db:"sim_time"`
	Description string  `json:"description" db:"description"`
	Category    string  `json:"category" db:"category"` // "social", "forage", "build", "achievement", "lifecycle"
}

// UnlockRecord pairs an achievement with the bee that earned it, for the
// chronicle.
type UnlockRecord struct {
	BeeID   string
	BeeName string
	Record  colony.Achievement
}

// Config controls engine construction.
type Config struct {
	Seed              int64 // 0 = crypto-seeded (no replay)
	InitialPopulation int
	FlowerCount       int
}

// Engine owns the colony and advances it. One mutex guards every entry
// point so mutations from the API only ever interleave between ticks,
// never during one.
type Engine struct {
	mu      sync.Mutex
	world   *Colony
	rng     *entropy.Source
	factory *colony.Factory
	jitter  opensimplex.Noise

	simTime float64
	tick    uint64
	speed   float64
	paused  bool
	running bool

	observers []Observer

	events         []Event
	pendingEvents  []Event
	pendingUnlocks []UnlockRecord

	lastReport float64
}

// New creates an engine with a fresh colony: an initial population placed
// around the hive center and a seeded flower field.
func New(cfg Config) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}
	src := entropy.NewSource(seed)

	if cfg.InitialPopulation <= 0 {
		cfg.InitialPopulation = 12
	}
	if cfg.FlowerCount <= 0 {
		cfg.FlowerCount = 15
	}

	e := &Engine{
		rng:     src,
		factory: colony.NewFactory(src),
		jitter:  opensimplex.New(seed + 1),
		speed:   1.0,
		world: &Colony{
			BeeIndex: make(map[string]*colony.Bee),
			Hive:     colony.Hive{Center: environment.Center()},
			Env:      environment.New(src, seed+2, cfg.FlowerCount),
		},
	}

	center := environment.Center()
	for i := 0; i < cfg.InitialPopulation; i++ {
		angle := src.Angle()
		dist := 30 + src.Float64()*80
		pos := environment.ClampToBounds(orb.Point{
			center[0] + dist*cos(angle),
			center[1] + dist*sin(angle),
		})
		e.world.insert(e.factory.NewBee(pos))
	}
	e.world.updateStats()
	return e
}

// Advance moves the simulation forward by dt simulated seconds: per-bee
// behavior, the pairwise social pass, environment drift, aggregate stats,
// then synchronous observer notification.
func (e *Engine) Advance(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if dt <= 0 {
		return
	}
	if dt > MaxDelta {
		dt = MaxDelta
	}

	e.tick++
	e.simTime += dt

	for _, b := range e.world.Bees {
		e.updateBee(b, dt)
	}
	e.socialPass()
	e.world.Env.Advance(e.simTime)
	e.world.updateStats()
	e.maybeReport()

	for _, o := range e.observers {
		o.ColonyUpdated(e.world)
	}
}

// Snapshot returns a deep copy of the colony. Safe to read from any
// goroutine; mutations to the copy never touch the live state.
func (e *Engine) Snapshot() *Colony {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Copy()
}

// Subscribe registers an observer. Notification order follows
// registration order.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Unsubscribe removes a previously registered observer.
func (e *Engine) Unsubscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cur := range e.observers {
		if cur == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// AddBee inserts one new bee via the factory. A nil position defaults to
// the hive center. The bee becomes visible in the next snapshot.
func (e *Engine) AddBee(pos *orb.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := environment.Center()
	if pos != nil {
		p = environment.ClampToBounds(*pos)
	}
	b := e.factory.NewBee(p)
	e.world.insert(b)
	e.emit("lifecycle", b.Name+" joined the colony")
}

// RemoveBee removes the bee and scrubs its id from every other bee's
// friend and collaborator lists in the same call. Absent ids are a no-op.
func (e *Engine) RemoveBee(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.world.BeeIndex[id]
	if !ok {
		return
	}
	name := b.Name
	if e.world.remove(id) {
		e.emit("lifecycle", name+" left the colony")
	}
}

// SetActivity forces a bee into the given activity. This is the admin
// intervention path and the only way a bee ever patrols.
func (e *Engine) SetActivity(id string, a colony.Activity) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.world.BeeIndex[id]
	if !ok {
		return false
	}
	b.Activity = a
	b.Target = nil
	e.emit("lifecycle", b.Name+" was directed to "+a.String())
	return true
}

// Run drives the scheduler loop: real elapsed time scaled by the speed
// multiplier becomes the advance delta. Blocks until Stop.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("colony engine started", "speed", e.Speed())

	const frame = 50 * time.Millisecond
	last := time.Now()

	for e.isRunning() {
		if e.isPaused() {
			// Paused: keep resetting the baseline so resuming computes a
			// fresh delta with no catch-up jump.
			time.Sleep(frame)
			last = time.Now()
			continue
		}

		now := time.Now()
		dt := now.Sub(last).Seconds() * e.Speed()
		last = now

		e.Advance(dt)
		time.Sleep(frame)
	}
	slog.Info("colony engine stopped", "tick", e.Tick())
}

// Stop ends the Run loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Pause suspends ticking without stopping the loop.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

// Resume continues ticking. The next delta is computed freshly; paused
// wall time is never replayed.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
}

// SetSpeed changes the time multiplier (0 behaves like pause).
func (e *Engine) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
}

// Speed returns the current time multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Tick returns the number of processed ticks.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// SimTime returns the accumulated simulated seconds.
func (e *Engine) SimTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.simTime
}

func (e *Engine) isRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) isPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused || e.speed <= 0
}

// RecentEvents returns up to limit of the most recent events.
func (e *Engine) RecentEvents(limit int) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := 0
	if limit > 0 && len(e.events) > limit {
		start = len(e.events) - limit
	}
	return append([]Event(nil), e.events[start:]...)
}

// DrainEvents hands pending events to the chronicle and clears the queue.
func (e *Engine) DrainEvents() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.pendingEvents
	e.pendingEvents = nil
	return out
}

// DrainUnlocks hands pending achievement unlocks to the chronicle.
func (e *Engine) DrainUnlocks() []UnlockRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.pendingUnlocks
	e.pendingUnlocks = nil
	return out
}

// emit records an event. Caller must hold e.mu.
func (e *Engine) emit(category, description string) {
	ev := Event{
		Tick:        e.tick,
		SimTime:     e.simTime,
		Description: description,
		Category:    category,
	}
	e.events = append(e.events, ev)
	e.pendingEvents = append(e.pendingEvents, ev)

	// Bounded in-memory history.
	if len(e.events) > 1000 {
		e.events = e.events[len(e.events)-1000:]
	}
}

// maybeReport logs a colony summary every 60 simulated seconds, and takes
// the chance to record emergent social norms.
func (e *Engine) maybeReport() {
	if e.simTime-e.lastReport < 60 {
		return
	}
	e.lastReport = e.simTime

	unlocked := 0
	friendships := 0
	for _, b := range e.world.Bees {
		unlocked += len(b.Achievements)
		friendships += len(b.Friends)
	}
	friendships /= 2 // symmetric, counted from both sides

	slog.Info("colony report",
		"sim_time", FormatSimTime(e.simTime),
		"tick", e.tick,
		"population", e.world.Stats.Population,
		"avg_happiness", e.world.Stats.AvgHappiness,
		"avg_energy", e.world.Stats.AvgEnergy,
		"diversity", e.world.Stats.CulturalDiversity,
		"friendships", friendships,
		"achievements", unlocked,
		"conditions", e.world.Env.Describe(),
	)

	if friendships > len(e.world.Bees) && !hasEntry(e.world.Culture.SocialNorms, "tight-knit colony") {
		e.world.Culture.SocialNorms = append(e.world.Culture.SocialNorms, "tight-knit colony")
		e.emit("social", "the colony has grown tight-knit: friendships outnumber bees")
	}
}

func hasEntry(list []string, entry string) bool {
	for _, v := range list {
		if v == entry {
			return true
		}
	}
	return false
}
