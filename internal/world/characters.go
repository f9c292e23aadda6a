package world

import (
	"log/slog"
	"time"

	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/geom"
)

// character looks up a live character. Callers must hold w.mu.
func (w *World) character(zoneId, charId string) *RuntimeCharacter {
	z, ok := w.zones[zoneId]
	if !ok {
		return nil
	}
	return z.characters[charId]
}

// Character returns a copy of one character.
func (w *World) Character(zoneId, charId string) (RuntimeCharacter, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return RuntimeCharacter{}, false
	}
	return c.Clone(), true
}

// CharacterIds returns the characters of a zone in insertion order.
func (w *World) CharacterIds(zoneId string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return nil
	}
	return append([]string(nil), z.charOrder...)
}

// Characters returns copies of every character in a zone.
func (w *World) Characters(zoneId string) []RuntimeCharacter {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return nil
	}
	out := make([]RuntimeCharacter, 0, len(z.charOrder))
	for _, id := range z.charOrder {
		out = append(out, z.characters[id].Clone())
	}
	return out
}

// CharactersOf returns copies of the characters a user owns in a zone.
func (w *World) CharactersOf(zoneId, ownerId string) []RuntimeCharacter {
	var out []RuntimeCharacter
	for _, c := range w.Characters(zoneId) {
		if c.OwnerId == ownerId {
			out = append(out, c)
		}
	}
	return out
}

func (w *World) queueCharState(zoneId string, c *RuntimeCharacter) {
	w.events.QueueEntity(zoneId, events.StateUpdate(events.KindCharacter, c.Id, string(c.State)))
}

func (w *World) queueCharHealth(zoneId string, c *RuntimeCharacter) {
	w.events.QueueEntity(zoneId, events.HealthUpdate(events.KindCharacter, c.Id, c.CurrentHealth, c.BaseHealth))
}

// SetCharacterState changes the momentary state. Dead characters only leave
// the dead state through RespawnCharacter, and the dead state is only entered
// through KillCharacter.
func (w *World) SetCharacterState(zoneId, charId string, state CharacterState) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() || state == StateDead {
		return false
	}
	if c.State == state {
		return true
	}

	c.State = state
	if state != StateAttacking {
		c.AttackTarget = ""
	}
	w.queueCharState(zoneId, c)
	return true
}

// SetCharacterPosition moves a character without touching its anchor.
func (w *World) SetCharacterPosition(zoneId, charId string, p geom.Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || !p.Valid() {
		return false
	}
	c.Position = p.Ptr()
	w.events.QueueEntity(zoneId, events.PositionUpdate(events.KindCharacter, c.Id, p))
	return true
}

// RepairCharacterPosition places a character with no position at p and
// anchors it there. Characters enter a zone unplaced, so this is routine.
func (w *World) RepairCharacterPosition(zoneId, charId string, p geom.Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return false
	}
	slog.Debug("placing character", "zone", zoneId, "character", charId, "x", p.X, "y", p.Y)
	c.Position = p.Ptr()
	c.Anchor = p
	w.events.QueueEntity(zoneId, events.PositionUpdate(events.KindCharacter, c.Id, p))
	return true
}

// SetCharacterMoveTarget handles a player move order: the destination becomes
// the new anchor and every conflicting target and standing command is
// dropped.
func (w *World) SetCharacterMoveTarget(zoneId, charId string, p geom.Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() || !p.Valid() {
		return false
	}
	c.Target = p.Ptr()
	c.Anchor = p
	c.AttackTarget = ""
	c.TargetItem = ""
	c.CommandState = CommandNone
	c.State = StateMoving
	w.queueCharState(zoneId, c)
	return true
}

// ReturnCharacterToAnchor walks the character back to its anchor, keeping any
// standing command.
func (w *World) ReturnCharacterToAnchor(zoneId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() {
		return false
	}
	c.Target = c.Anchor.Ptr()
	c.AttackTarget = ""
	c.TargetItem = ""
	c.State = StateMoving
	w.queueCharState(zoneId, c)
	return true
}

// SetCharacterLeashTarget forces the character home, overriding whatever it
// was doing including standing commands.
func (w *World) SetCharacterLeashTarget(zoneId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() {
		return false
	}
	c.Target = c.Anchor.Ptr()
	c.AttackTarget = ""
	c.TargetItem = ""
	c.CommandState = CommandNone
	c.State = StateMoving
	w.queueCharState(zoneId, c)
	return true
}

// SetCharacterChaseTarget sets a movement target without changing state or
// anchor, used while closing in on an attack target.
func (w *World) SetCharacterChaseTarget(zoneId, charId string, p geom.Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() || !p.Valid() {
		return false
	}
	c.Target = p.Ptr()
	return true
}

func (w *World) ClearCharacterMoveTarget(zoneId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return false
	}
	c.Target = nil
	return true
}

// SetCharacterAttackTarget engages an enemy. A missing, dying or dead enemy
// sends the character back to idle and reports false.
func (w *World) SetCharacterAttackTarget(zoneId, charId, enemyId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() {
		return false
	}

	e := w.zones[zoneId].enemies[enemyId]
	if e == nil || !e.Alive() {
		c.AttackTarget = ""
		c.Target = nil
		if c.State != StateIdle {
			c.State = StateIdle
			w.queueCharState(zoneId, c)
		}
		return false
	}

	c.AttackTarget = enemyId
	c.TargetItem = ""
	c.Target = nil
	c.State = StateAttacking
	target := enemyId
	state := string(c.State)
	w.events.QueueEntity(zoneId, events.EntityUpdate{Id: c.Id, Kind: events.KindCharacter, State: &state, TargetId: &target})
	return true
}

// ClearCharacterAttackTarget disengages and returns the character to idle.
// A chase in progress is abandoned with it.
func (w *World) ClearCharacterAttackTarget(zoneId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return false
	}
	c.AttackTarget = ""
	if c.State == StateAttacking {
		c.Target = nil
		c.State = StateIdle
		w.queueCharState(zoneId, c)
	}
	return true
}

// SetCharacterLootTarget sends the character to pick up a ground item. The
// standing command is kept so an area loot can resume afterwards.
func (w *World) SetCharacterLootTarget(zoneId, charId, itemId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() {
		return false
	}
	item := w.zones[zoneId].items[itemId]
	if item == nil {
		return false
	}
	c.TargetItem = itemId
	c.AttackTarget = ""
	c.Target = item.Position.Ptr()
	c.State = StateMovingToLoot
	w.queueCharState(zoneId, c)
	return true
}

func (w *World) ClearCharacterLootTarget(zoneId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return false
	}
	c.TargetItem = ""
	c.Target = nil
	return true
}

// SetCharacterLootArea starts a standing area-loot command.
func (w *World) SetCharacterLootArea(zoneId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() {
		return false
	}
	c.CommandState = CommandLootArea
	c.AttackTarget = ""
	c.TargetItem = ""
	c.Target = nil
	c.State = StateLootingArea
	w.queueCharState(zoneId, c)
	return true
}

func (w *World) SetCharacterCommandState(zoneId, charId string, cs CommandState) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return false
	}
	c.CommandState = cs
	return true
}

func (w *World) SetCharacterLastAttackTime(zoneId, charId string, t time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return false
	}
	c.LastAttackTime = t
	return true
}

// AdjustCharacterHealth adds delta to the character's health, clamped to
// [0, BaseHealth]. Reaching zero kills the character.
func (w *World) AdjustCharacterHealth(zoneId, charId string, delta float64) (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return 0, false
	}
	if c.IsDead() {
		return c.CurrentHealth, true
	}
	w.setCharacterHealth(zoneId, c, c.CurrentHealth+delta)
	return c.CurrentHealth, true
}

// SetCharacterHealth sets health outright, with the same clamping and death
// handling as AdjustCharacterHealth.
func (w *World) SetCharacterHealth(zoneId, charId string, health float64) (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return 0, false
	}
	if c.IsDead() {
		return c.CurrentHealth, true
	}
	w.setCharacterHealth(zoneId, c, health)
	return c.CurrentHealth, true
}

func (w *World) setCharacterHealth(zoneId string, c *RuntimeCharacter, health float64) {
	clamped := min(max(health, 0), c.BaseHealth)
	if clamped != c.CurrentHealth {
		c.CurrentHealth = clamped
		w.queueCharHealth(zoneId, c)
	}
	if clamped <= 0 {
		w.kill(zoneId, c, w.now())
	}
}

// KillCharacter moves a character to the dead state at the given time.
func (w *World) KillCharacter(zoneId, charId string, at time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || c.IsDead() {
		return false
	}
	if c.CurrentHealth != 0 {
		c.CurrentHealth = 0
		w.queueCharHealth(zoneId, c)
	}
	w.kill(zoneId, c, at)
	return true
}

func (w *World) kill(zoneId string, c *RuntimeCharacter, at time.Time) {
	if c.IsDead() {
		return
	}
	c.State = StateDead
	c.TimeOfDeath = &at
	c.AttackTarget = ""
	c.TargetItem = ""
	c.Target = nil
	c.CommandState = CommandNone
	w.queueCharState(zoneId, c)

	pos := c.Anchor
	if c.Position != nil {
		pos = *c.Position
	}
	w.events.QueueDeath(zoneId, events.DeathNotice{Id: c.Id, Kind: events.KindCharacter, Position: pos})
}

// RespawnCharacter revives a dead character at its anchor with full health.
func (w *World) RespawnCharacter(zoneId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil || !c.IsDead() {
		return false
	}
	c.CurrentHealth = c.BaseHealth
	c.State = StateIdle
	c.TimeOfDeath = nil
	c.Position = c.Anchor.Ptr()
	c.Target = nil
	c.AttackTarget = ""
	c.TargetItem = ""
	c.CommandState = CommandNone

	w.events.QueueSpawn(zoneId, events.SpawnNotice{
		Id:        c.Id,
		Kind:      events.KindCharacter,
		OwnerId:   c.OwnerId,
		Position:  c.Anchor,
		Health:    c.CurrentHealth,
		MaxHealth: c.BaseHealth,
	})
	w.queueCharState(zoneId, c)
	w.queueCharHealth(zoneId, c)
	w.events.QueueEntity(zoneId, events.PositionUpdate(events.KindCharacter, c.Id, c.Anchor))
	return true
}

// SetCharacterLevel records a level reached through experience.
func (w *World) SetCharacterLevel(zoneId, charId string, level int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.character(zoneId, charId)
	if c == nil {
		return false
	}
	c.Level = level
	return true
}
