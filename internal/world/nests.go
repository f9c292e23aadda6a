package world

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/persistence"
)

// AddNest registers a spawn nest in a zone.
func (w *World) AddNest(zoneId string, n SpawnNest) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return ErrZoneNotFound
	}
	nc := n.clone()
	z.nests[nc.Id] = &nc
	if !slices.Contains(z.nestOrder, nc.Id) {
		z.nestOrder = append(z.nestOrder, nc.Id)
	}
	return nil
}

// Nests returns copies of a zone's nests in insertion order.
func (w *World) Nests(zoneId string) []SpawnNest {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return nil
	}
	out := make([]SpawnNest, 0, len(z.nestOrder))
	for _, id := range z.nestOrder {
		out = append(out, z.nests[id].clone())
	}
	return out
}

// TouchNest stamps the nest's last spawn check time.
func (w *World) TouchNest(zoneId, nestId string, at time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return false
	}
	n, ok := z.nests[nestId]
	if !ok {
		return false
	}
	n.LastSpawnCheckTime = at
	return true
}

// SpawnEnemyFromNest materializes one enemy of the nest's template at a
// random point inside the nest radius. The check time is stamped whether or
// not the template could be resolved.
func (w *World) SpawnEnemyFromNest(ctx context.Context, zoneId, nestId string) (EnemyInstance, error) {
	w.mu.Lock()
	n, err := w.nest(zoneId, nestId)
	if err != nil {
		w.mu.Unlock()
		return EnemyInstance{}, err
	}
	if n.Occupancy() >= n.MaxCapacity {
		w.mu.Unlock()
		return EnemyInstance{}, ErrNestFull
	}
	templateId := n.TemplateId
	w.mu.Unlock()

	tmpl, lookupErr := w.templates.FindEnemyTemplate(ctx, templateId)

	w.mu.Lock()
	defer w.mu.Unlock()

	// The nest may have changed while the lock was released.
	n, err = w.nest(zoneId, nestId)
	if err != nil {
		return EnemyInstance{}, err
	}
	now := w.now()
	n.LastSpawnCheckTime = now

	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			return EnemyInstance{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateId)
		}
		return EnemyInstance{}, fmt.Errorf("looking up template %s: %w", templateId, lookupErr)
	}
	if tmpl == nil {
		return EnemyInstance{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateId)
	}
	if n.Occupancy() >= n.MaxCapacity {
		return EnemyInstance{}, ErrNestFull
	}

	e := w.instantiate(templateId, tmpl, n)
	n.CurrentEnemyIds[e.Id] = struct{}{}
	w.addEnemy(w.zones[zoneId], e)
	return e.Clone(), nil
}

func (w *World) nest(zoneId, nestId string) (*SpawnNest, error) {
	z, ok := w.zones[zoneId]
	if !ok {
		return nil, ErrZoneNotFound
	}
	n, ok := z.nests[nestId]
	if !ok {
		return nil, ErrNestNotFound
	}
	return n, nil
}

// instantiate copies template stats into a fresh enemy. Template fields left
// at zero fall back to the tuning defaults.
func (w *World) instantiate(templateId string, tmpl *persistence.EnemyTemplate, n *SpawnNest) EnemyInstance {
	t := w.tuning

	pos := w.randomPointInCircle(n.Center, n.Radius)
	wander := tmpl.WanderRadius
	if wander <= 0 {
		wander = t.EnemyWanderRadius
	}

	return EnemyInstance{
		Id:            w.newId(),
		TemplateId:    templateId,
		Name:          tmpl.Name,
		Level:         tmpl.Level,
		Position:      pos,
		AIState:       AIIdle,
		CurrentHealth: tmpl.MaxHealth,
		MaxHealth:     tmpl.MaxHealth,
		Attack:        tmpl.Attack,
		Defense:       tmpl.Defense,
		Speed:         orDefault(tmpl.Speed, t.EnemySpeed),
		AttackRange:   orDefault(tmpl.AttackRange, t.EnemyAttackRange),
		AggroRange:    orDefault(tmpl.AggroRange, t.EnemyAggroRange),
		NestId:        n.Id,
		Anchor:        pos,
		WanderRadius:  wander,
	}
}

// RandomPointInCircle returns a uniformly distributed point within radius of
// center, clamped to the zone bounds.
func (w *World) RandomPointInCircle(center geom.Point, radius float64) geom.Point {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.randomPointInCircle(center, radius)
}

func (w *World) randomPointInCircle(center geom.Point, radius float64) geom.Point {
	angle := w.rng.Float64() * 2 * math.Pi
	r := radius * math.Sqrt(w.rng.Float64())
	p := center.Add(math.Cos(angle)*r, math.Sin(angle)*r)
	p.X = math.Min(math.Max(p.X, 0), w.tuning.ZoneWidth)
	p.Y = math.Min(math.Max(p.Y, 0), w.tuning.ZoneHeight)
	return p
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
