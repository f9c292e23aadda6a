package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/pixil98/go-realm/internal/ai"
	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/world"
)

// tickZone runs one zone: characters, dying enemies, live enemies, nests,
// item despawns, then the event flush. The flush runs even if the zone
// panicked part way through.
func (s *Simulation) tickZone(ctx context.Context, zoneId string, now time.Time, dt float64) {
	defer s.flush(ctx, zoneId)
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "zone tick failed", "zone", zoneId, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	for _, charId := range s.world.CharacterIds(zoneId) {
		s.tickCharacter(ctx, zoneId, charId, now, dt)
	}

	s.tickDyingEnemies(zoneId, dt)
	s.tickEnemies(ctx, zoneId, now, dt)
	s.spawner.Tick(ctx, zoneId, now)
	s.sweepItems(zoneId, now)
}

func (s *Simulation) flush(ctx context.Context, zoneId string) {
	if err := s.batcher.Flush(zoneId); err != nil {
		slog.ErrorContext(ctx, "flushing zone events", "zone", zoneId, "error", err)
	}
}

// tickCharacter resolves one character's state and then its movement.
func (s *Simulation) tickCharacter(ctx context.Context, zoneId, charId string, now time.Time, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "character tick failed", "zone", zoneId, "character", charId, "panic", fmt.Sprint(r))
		}
	}()

	res := s.chars.ProcessTick(ctx, zoneId, charId, now, dt)
	if !res.Found {
		return
	}
	s.moveCharacter(zoneId, res.Character, dt)
}

func (s *Simulation) moveCharacter(zoneId string, c world.RuntimeCharacter, dt float64) {
	if c.IsDead() || c.Position == nil || c.Target == nil {
		return
	}
	step := geom.SimulateMovement(*c.Position, c.Target, s.tuning.CharacterMoveSpeed, dt)
	if step.Position != *c.Position {
		s.world.SetCharacterPosition(zoneId, c.Id, step.Position)
	}
}

// tickDyingEnemies slides dying enemies and removes those whose decay window
// has passed.
func (s *Simulation) tickDyingEnemies(zoneId string, dt float64) {
	for _, e := range s.world.Enemies(zoneId) {
		if !e.IsDying {
			continue
		}
		expired, ok := s.world.AdvanceDyingEnemy(zoneId, e.Id, dt)
		if ok && expired {
			s.world.RemoveEnemy(zoneId, e.Id, "decayed")
		}
	}
}

func (s *Simulation) tickEnemies(ctx context.Context, zoneId string, now time.Time, dt float64) {
	for _, e := range s.world.Enemies(zoneId) {
		if e.IsDying {
			continue
		}
		s.tickEnemy(ctx, zoneId, e, now, dt)
	}
}

func (s *Simulation) tickEnemy(ctx context.Context, zoneId string, e world.EnemyInstance, now time.Time, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "enemy tick failed", "zone", zoneId, "enemy", e.Id, "panic", fmt.Sprint(r))
		}
	}()

	chars := s.world.Characters(zoneId)
	d := s.decider.Decide(e, chars, now)

	s.world.SetEnemyAIState(zoneId, e.Id, d.State)
	s.world.SetEnemyCurrentTarget(zoneId, e.Id, d.TargetId)
	if d.Restore {
		s.world.RestoreEnemyHealth(zoneId, e.Id)
	}
	if d.State == world.AIDead {
		s.world.MarkEnemyDead(zoneId, e.Id)
		return
	}

	switch d.Kind {
	case ai.Attack:
		s.world.SetEnemyTarget(zoneId, e.Id, nil)
		if d.StampAttack {
			s.world.SetEnemyLastAttackTime(zoneId, e.Id, now)
		}
		s.enemyAttack(zoneId, e, d.TargetId)

	case ai.MoveTo:
		p := d.Point
		s.world.SetEnemyTarget(zoneId, e.Id, &p)
		e.Target = &p
		s.moveEnemy(zoneId, e, chars, d.State, dt)

	case ai.Idle:
		if e.Target == nil || d.State != world.AIIdle {
			break
		}
		// A released leash keeps walking home; any other leftover point is
		// an abandoned chase.
		if *e.Target == e.Anchor {
			s.moveEnemy(zoneId, e, chars, d.State, dt)
		} else {
			s.world.SetEnemyTarget(zoneId, e.Id, nil)
		}
	}
}

func (s *Simulation) enemyAttack(zoneId string, e world.EnemyInstance, charId string) {
	c, ok := s.world.Character(zoneId, charId)
	if !ok || c.IsDead() {
		return
	}
	s.combat.HandleAttack(combat.EnemyCombatant{Enemy: e}, combat.CharacterCombatant{Character: c}, zoneId)
	s.world.SetEnemyAIState(zoneId, e.Id, world.AICooldown)
}

// moveEnemy advances an enemy toward its target, refusing steps that would
// overlap a living character.
func (s *Simulation) moveEnemy(zoneId string, e world.EnemyInstance, chars []world.RuntimeCharacter, state world.AIState, dt float64) {
	obstacles := make([]geom.Point, 0, len(chars))
	for _, c := range chars {
		if c.Position != nil && !c.IsDead() {
			obstacles = append(obstacles, *c.Position)
		}
	}

	step := geom.SimulateMovementWithCollision(e.Position, e.Target, e.Speed, dt, obstacles, geom.Collider{
		EntityRadius:   s.tuning.EntityRadius,
		ObstacleRadius: s.tuning.ObstacleRadius,
	})
	s.world.SetEnemyPosition(zoneId, e.Id, step.Position)

	if !step.Reached {
		return
	}
	s.world.SetEnemyTarget(zoneId, e.Id, nil)
	switch state {
	case world.AIWandering:
		s.world.SetEnemyAIState(zoneId, e.Id, world.AIIdle)
	case world.AILeashed:
		s.world.RestoreEnemyHealth(zoneId, e.Id)
		s.world.SetEnemyAIState(zoneId, e.Id, world.AIIdle)
	}
}

func (s *Simulation) sweepItems(zoneId string, now time.Time) {
	for _, item := range s.world.DroppedItems(zoneId) {
		if !now.Before(item.DespawnTime) {
			s.world.RemoveDroppedItem(zoneId, item.Id, "expired")
		}
	}
}
