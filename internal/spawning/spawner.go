package spawning

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/persistence"
	"github.com/pixil98/go-realm/internal/world"
)

// TemplateLister lists every enemy template for nest generation.
type TemplateLister interface {
	FindAllEnemyTemplates(ctx context.Context) (map[string]*persistence.EnemyTemplate, error)
}

// Spawner keeps nests populated.
type Spawner struct {
	world     *world.World
	templates TemplateLister
	rng       *rand.Rand
}

// NewSpawner creates a Spawner over w.
func NewSpawner(w *world.World, templates TemplateLister, rng *rand.Rand) *Spawner {
	return &Spawner{world: w, templates: templates, rng: rng}
}

// Tick runs one spawn pass over every nest of a zone.
func (s *Spawner) Tick(ctx context.Context, zoneId string, now time.Time) {
	for _, n := range s.world.Nests(zoneId) {
		if n.Occupancy() >= n.MaxCapacity {
			s.world.TouchNest(zoneId, n.Id, now)
			continue
		}
		if now.Before(n.LastSpawnCheckTime.Add(n.RespawnDelay)) {
			continue
		}

		e, err := s.world.SpawnEnemyFromNest(ctx, zoneId, n.Id)
		if err != nil {
			slog.WarnContext(ctx, "nest spawn failed", "zone", zoneId, "nest", n.Id, "template", n.TemplateId, "error", err)
			continue
		}
		slog.DebugContext(ctx, "enemy spawned", "zone", zoneId, "nest", n.Id, "enemy", e.Id)
	}
}

// PopulateZone lays out nests for every template that spawns in the zone.
// Zones that already have nests are left alone.
func (s *Spawner) PopulateZone(ctx context.Context, zoneId string) (int, error) {
	s.world.EnsureZone(zoneId)
	if len(s.world.Nests(zoneId)) > 0 {
		return 0, nil
	}

	templates, err := s.templates.FindAllEnemyTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing enemy templates: %w", err)
	}

	ids := make([]string, 0, len(templates))
	for id, t := range templates {
		if t.SpawnsIn(zoneId) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	t := s.world.Tuning()
	nt := t.Nests
	count := 0
	for _, id := range ids {
		n := s.intBetween(nt.PerTemplateMin, nt.PerTemplateMax)
		for i := 0; i < n; i++ {
			radius := s.floatBetween(nt.RadiusMin, nt.RadiusMax)
			nest := world.SpawnNest{
				Id:              fmt.Sprintf("%s-%s-%d", zoneId, id, i),
				TemplateId:      id,
				Center:          s.center(t, radius),
				Radius:          radius,
				MaxCapacity:     s.intBetween(nt.CapacityMin, nt.CapacityMax),
				CurrentEnemyIds: map[string]struct{}{},
				RespawnDelay:    s.durationBetween(nt.DelayMin, nt.DelayMax),
			}
			if err := s.world.AddNest(zoneId, nest); err != nil {
				return count, fmt.Errorf("adding nest %s: %w", nest.Id, err)
			}
			count++
		}
	}

	slog.InfoContext(ctx, "zone populated", "zone", zoneId, "templates", len(ids), "nests", count)
	return count, nil
}

// center picks a nest center that keeps the whole nest inside the zone.
func (s *Spawner) center(t world.Tuning, radius float64) geom.Point {
	return geom.Pt(
		s.floatBetween(radius, max(radius, t.ZoneWidth-radius)),
		s.floatBetween(radius, max(radius, t.ZoneHeight-radius)),
	)
}

func (s *Spawner) intBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Spawner) floatBetween(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Spawner) durationBetween(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(s.rng.Int64N(int64(hi-lo)+1))
}
