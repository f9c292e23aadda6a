package simulation

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/ai"
	"github.com/pixil98/go-realm/internal/behavior"
	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/commands"
	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/loot"
	"github.com/pixil98/go-realm/internal/persistence"
	"github.com/pixil98/go-realm/internal/spawning"
	"github.com/pixil98/go-realm/internal/world"
)

// maxStep caps the simulated time of a single tick so a stalled process does
// not teleport everything on resume.
const maxStep = time.Second

// Stats describes the tick loop.
type Stats struct {
	Ticks        uint64
	Overruns     uint64
	LastTick     time.Time
	LastDuration time.Duration
}

// Simulation advances every zone once per tick.
type Simulation struct {
	world   *world.World
	batcher *events.Batcher
	queue   *commands.Queue
	repo    persistence.Repository

	combat  *combat.Resolver
	chars   *behavior.Processor
	decider *ai.Decider
	spawner *spawning.Spawner

	tuning       world.Tuning
	tickInterval time.Duration
	zones        []string
	rng          *rand.Rand

	mu       sync.Mutex
	stats    Stats
	lastTick time.Time
}

// New wires a Simulation over an existing world.
func New(w *world.World, b *events.Batcher, q *commands.Queue, repo persistence.Repository, opts ...SimulationOpt) *Simulation {
	s := &Simulation{
		world:        w,
		batcher:      b,
		queue:        q,
		repo:         repo,
		tuning:       w.Tuning(),
		tickInterval: world.DefaultTickInterval,
		rng:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.combat = combat.NewResolver(w, b)
	s.chars = behavior.NewProcessor(w, s.combat, loot.NewResolver(repo, s.rng), repo)
	s.decider = ai.NewDecider(s.tuning, s.rng)
	s.spawner = spawning.NewSpawner(w, repo, s.rng)
	return s
}

// Init creates the configured zones and lays out their nests.
func (s *Simulation) Init(ctx context.Context) error {
	for _, zoneId := range s.zones {
		n, err := s.spawner.PopulateZone(ctx, zoneId)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "zone initialized", "zone", zoneId, "nests", n)
	}
	return nil
}

// Tick drains pending intents and then advances every zone. Failures inside
// a zone are logged and contained so the remaining zones still run.
func (s *Simulation) Tick(ctx context.Context) error {
	start := time.Now()
	now := s.world.Now()
	dt := s.step(now)

	s.applyIntents(ctx)

	for _, zoneId := range s.world.ZoneIds() {
		s.tickZone(ctx, zoneId, now, dt)
	}

	s.record(now, time.Since(start))
	return nil
}

// step returns the seconds elapsed since the previous tick.
func (s *Simulation) step(now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.tickInterval
	if !s.lastTick.IsZero() {
		d = now.Sub(s.lastTick)
	}
	s.lastTick = now
	d = min(max(d, 0), maxStep)
	return d.Seconds()
}

func (s *Simulation) record(now time.Time, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Ticks++
	s.stats.LastTick = now
	s.stats.LastDuration = took
	if took > s.tickInterval {
		s.stats.Overruns++
		slog.Warn("tick overran interval", "took", took, "interval", s.tickInterval, "tick", s.stats.Ticks)
	}
}

// Stats returns a copy of the loop counters.
func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}
