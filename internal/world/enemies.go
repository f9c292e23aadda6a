package world

import (
	"math"
	"time"

	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/geom"
)

func (w *World) enemy(zoneId, enemyId string) *EnemyInstance {
	z, ok := w.zones[zoneId]
	if !ok {
		return nil
	}
	return z.enemies[enemyId]
}

// Enemy returns a copy of one enemy.
func (w *World) Enemy(zoneId, enemyId string) (EnemyInstance, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil {
		return EnemyInstance{}, false
	}
	return e.Clone(), true
}

// Enemies returns copies of every enemy in a zone, dying ones included.
func (w *World) Enemies(zoneId string) []EnemyInstance {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return nil
	}
	out := make([]EnemyInstance, 0, len(z.enemyOrder))
	for _, id := range z.enemyOrder {
		out = append(out, z.enemies[id].Clone())
	}
	return out
}

// AddEnemy places an enemy in the zone. When the enemy names a nest it is
// tracked there, and a full nest refuses it.
func (w *World) AddEnemy(zoneId string, e EnemyInstance) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return ErrZoneNotFound
	}
	if _, exists := z.enemies[e.Id]; exists {
		return ErrEnemyExists
	}
	if e.NestId != "" {
		n, ok := z.nests[e.NestId]
		if !ok {
			return ErrNestNotFound
		}
		if n.Occupancy() >= n.MaxCapacity {
			return ErrNestFull
		}
		n.CurrentEnemyIds[e.Id] = struct{}{}
	}

	w.addEnemy(z, e)
	return nil
}

func (w *World) addEnemy(z *zone, e EnemyInstance) {
	ec := e.Clone()
	if ec.AIState == "" {
		ec.AIState = AIIdle
	}
	z.enemies[ec.Id] = &ec
	z.enemyOrder = append(z.enemyOrder, ec.Id)

	w.events.QueueSpawn(z.id, events.SpawnNotice{
		Id:         ec.Id,
		Kind:       events.KindEnemy,
		TemplateId: ec.TemplateId,
		Position:   ec.Position,
		Health:     ec.CurrentHealth,
		MaxHealth:  ec.MaxHealth,
	})
}

// RemoveEnemy deletes an enemy and frees its nest slot.
func (w *World) RemoveEnemy(zoneId, enemyId, reason string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return false
	}
	e, ok := z.enemies[enemyId]
	if !ok {
		return false
	}
	if n, ok := z.nests[e.NestId]; ok {
		delete(n.CurrentEnemyIds, enemyId)
	}
	delete(z.enemies, enemyId)
	z.enemyOrder = removeId(z.enemyOrder, enemyId)

	w.events.QueueDespawn(zoneId, events.DespawnNotice{Id: enemyId, Kind: string(events.KindEnemy), Reason: reason})
	return true
}

func (w *World) SetEnemyPosition(zoneId, enemyId string, p geom.Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil || !p.Valid() {
		return false
	}
	if e.Position == p {
		return true
	}
	e.Position = p
	w.events.QueueEntity(zoneId, events.PositionUpdate(events.KindEnemy, e.Id, p))
	return true
}

// SetEnemyTarget sets or clears (nil) the enemy movement target.
func (w *World) SetEnemyTarget(zoneId, enemyId string, p *geom.Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil {
		return false
	}
	if p == nil {
		e.Target = nil
	} else {
		e.Target = p.Ptr()
	}
	return true
}

func (w *World) SetEnemyAIState(zoneId, enemyId string, s AIState) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil {
		return false
	}
	if e.AIState == s {
		return true
	}
	e.AIState = s
	w.events.QueueEntity(zoneId, events.StateUpdate(events.KindEnemy, e.Id, string(s)))
	return true
}

func (w *World) SetEnemyCurrentTarget(zoneId, enemyId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil {
		return false
	}
	if e.CurrentTargetId == charId {
		return true
	}
	e.CurrentTargetId = charId
	target := charId
	w.events.QueueEntity(zoneId, events.EntityUpdate{Id: e.Id, Kind: events.KindEnemy, TargetId: &target})
	return true
}

func (w *World) SetEnemyLastAttackTime(zoneId, enemyId string, t time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil {
		return false
	}
	e.LastAttackTime = t
	return true
}

// AdjustEnemyHealth adds delta to an enemy's health, clamped to [0, MaxHealth],
// and returns the result. Reaching zero marks the enemy dying.
func (w *World) AdjustEnemyHealth(zoneId, enemyId string, delta float64) (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil {
		return 0, false
	}
	if e.IsDying {
		return e.CurrentHealth, true
	}

	health := min(max(e.CurrentHealth+delta, 0), e.MaxHealth)
	if health != e.CurrentHealth {
		e.CurrentHealth = health
		w.events.QueueEntity(zoneId, events.HealthUpdate(events.KindEnemy, e.Id, e.CurrentHealth, e.MaxHealth))
	}
	if health <= 0 {
		w.markDying(zoneId, e)
	}
	return health, true
}

// RestoreEnemyHealth heals an enemy to full.
func (w *World) RestoreEnemyHealth(zoneId, enemyId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil || e.IsDying {
		return false
	}
	if e.CurrentHealth != e.MaxHealth {
		e.CurrentHealth = e.MaxHealth
		w.events.QueueEntity(zoneId, events.HealthUpdate(events.KindEnemy, e.Id, e.CurrentHealth, e.MaxHealth))
	}
	return true
}

// MarkEnemyDead forces an enemy into the dying state.
func (w *World) MarkEnemyDead(zoneId, enemyId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil {
		return false
	}
	w.markDying(zoneId, e)
	return true
}

func (w *World) markDying(zoneId string, e *EnemyInstance) {
	if e.IsDying {
		return
	}
	e.IsDying = true
	e.DeathTimestamp = w.now()
	e.AIState = AIDead
	e.Target = nil
	e.CurrentTargetId = ""

	w.events.QueueEntity(zoneId, events.StateUpdate(events.KindEnemy, e.Id, string(AIDead)))
	w.events.QueueDeath(zoneId, events.DeathNotice{Id: e.Id, Kind: events.KindEnemy, Position: e.Position})
}

// StartEnemyKnockback pushes a dying enemy away from the given point.
func (w *World) StartEnemyKnockback(zoneId, enemyId string, from geom.Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil || !e.IsDying {
		return false
	}
	dx, dy := geom.Away(from, e.Position)
	e.Knockback = &Knockback{
		VX: dx * w.tuning.KnockbackSpeed,
		VY: dy * w.tuning.KnockbackSpeed,
	}
	return true
}

// AdvanceDyingEnemy slides a dying enemy along its knockback, slowing to a
// stop over the decay window. It reports true once the window has elapsed
// and the enemy should be removed.
func (w *World) AdvanceDyingEnemy(zoneId, enemyId string, dt float64) (expired bool, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.enemy(zoneId, enemyId)
	if e == nil || !e.IsDying {
		return false, false
	}

	elapsed := w.now().Sub(e.DeathTimestamp)
	decay := w.tuning.EnemyDeathDecay
	if elapsed >= decay {
		return true, true
	}

	if e.Knockback != nil && dt > 0 {
		f := 1.0
		if decay > 0 {
			f = 1 - float64(elapsed)/float64(decay)
		}
		p := e.Position.Add(e.Knockback.VX*f*dt, e.Knockback.VY*f*dt)
		p.X = math.Min(math.Max(p.X, 0), w.tuning.ZoneWidth)
		p.Y = math.Min(math.Max(p.Y, 0), w.tuning.ZoneHeight)
		if p != e.Position {
			e.Position = p
			w.events.QueueEntity(zoneId, events.PositionUpdate(events.KindEnemy, e.Id, p))
		}
	}
	return false, true
}
