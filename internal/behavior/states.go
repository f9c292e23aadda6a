package behavior

import (
	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/world"
)

func (p *Processor) handleIdle(t *tick) {
	c := t.char

	if e, ok := nearestEnemy(t.pos, c.AggroRange, p.world.Enemies(t.zoneId)); ok {
		p.world.SetCharacterAttackTarget(t.zoneId, c.Id, e.Id)
		return
	}

	if c.CommandState == world.CommandLootArea {
		p.world.SetCharacterState(t.zoneId, c.Id, world.StateLootingArea)
		return
	}

	eps := p.tuning.AnchorEpsilon
	if geom.DistSq(t.pos, c.Anchor) > eps*eps {
		p.world.ReturnCharacterToAnchor(t.zoneId, c.Id)
		return
	}

	if c.CommandState != world.CommandNone {
		p.world.SetCharacterCommandState(t.zoneId, c.Id, world.CommandNone)
	}
}

func (p *Processor) handleMoving(t *tick) {
	c := t.char

	if c.Target == nil {
		p.world.SetCharacterState(t.zoneId, c.Id, world.StateIdle)
		return
	}
	if geom.DistSq(t.pos, *c.Target) > p.tuning.ArrivalEpsilonSq {
		return
	}

	p.world.SetCharacterPosition(t.zoneId, c.Id, *c.Target)
	p.world.ClearCharacterMoveTarget(t.zoneId, c.Id)
	p.world.SetCharacterState(t.zoneId, c.Id, world.StateIdle)
	if c.CommandState != world.CommandNone && c.CommandState != world.CommandLootArea {
		p.world.SetCharacterCommandState(t.zoneId, c.Id, world.CommandNone)
	}
}

func (p *Processor) handleAttacking(t *tick) {
	c := t.char

	e, ok := p.world.Enemy(t.zoneId, c.AttackTarget)
	if !ok || !e.Alive() {
		p.world.ClearCharacterAttackTarget(t.zoneId, c.Id)
		return
	}

	if geom.DistSq(t.pos, e.Position) > c.AttackRange*c.AttackRange {
		p.world.SetCharacterChaseTarget(t.zoneId, c.Id, e.Position)
		return
	}

	if c.Target != nil {
		p.world.ClearCharacterMoveTarget(t.zoneId, c.Id)
	}
	if t.now.Before(c.LastAttackTime.Add(c.AttackSpeed)) {
		return
	}

	res := p.combat.HandleAttack(combat.CharacterCombatant{Character: c}, combat.EnemyCombatant{Enemy: e}, t.zoneId)
	p.world.SetCharacterLastAttackTime(t.zoneId, c.Id, t.now)
	t.result.Attacks = append(t.result.Attacks, AttackOutcome{EnemyId: e.Id, Result: res})

	if res.TargetDied {
		t.result.TargetDied = true
		p.onKill(t, e)
		p.world.ClearCharacterAttackTarget(t.zoneId, c.Id)
	}
}

func (p *Processor) handleMovingToLoot(t *tick) {
	c := t.char

	item, ok := p.world.DroppedItem(t.zoneId, c.TargetItem)
	if !ok {
		p.finishLoot(t)
		return
	}

	r := p.tuning.PickupRange
	if geom.DistSq(t.pos, item.Position) > r*r {
		if c.Target == nil || *c.Target != item.Position {
			p.world.SetCharacterChaseTarget(t.zoneId, c.Id, item.Position)
		}
		return
	}

	if !p.pickup(t, item) {
		p.world.ClearCharacterLootTarget(t.zoneId, c.Id)
		p.world.SetCharacterCommandState(t.zoneId, c.Id, world.CommandNone)
		p.world.SetCharacterState(t.zoneId, c.Id, world.StateIdle)
		return
	}
	p.finishLoot(t)
}

// finishLoot ends a single pickup, resuming an area loot when one stands.
func (p *Processor) finishLoot(t *tick) {
	c := t.char
	p.world.ClearCharacterLootTarget(t.zoneId, c.Id)
	if c.CommandState == world.CommandLootArea {
		p.world.SetCharacterState(t.zoneId, c.Id, world.StateLootingArea)
		return
	}
	p.world.SetCharacterState(t.zoneId, c.Id, world.StateIdle)
	p.world.SetCharacterCommandState(t.zoneId, c.Id, world.CommandNone)
}

func (p *Processor) handleLootingArea(t *tick) {
	c := t.char

	claimed := map[string]bool{}
	if c.TargetItem != "" {
		claimed[c.TargetItem] = true
	}
	for _, sib := range p.world.CharactersOf(t.zoneId, c.OwnerId) {
		if sib.Id == c.Id || sib.TargetItem == "" {
			continue
		}
		if sib.State == world.StateMovingToLoot || sib.State == world.StateLootingArea {
			claimed[sib.TargetItem] = true
		}
	}

	var best world.DroppedItem
	found := false
	bestSq := c.AggroRange * c.AggroRange
	for _, item := range p.world.DroppedItems(t.zoneId) {
		if claimed[item.Id] {
			continue
		}
		dsq := geom.DistSq(t.pos, item.Position)
		if dsq > bestSq || (found && dsq >= bestSq) {
			continue
		}
		best, bestSq, found = item, dsq, true
	}

	if found {
		p.world.SetCharacterLootTarget(t.zoneId, c.Id, best.Id)
		return
	}

	p.world.SetCharacterCommandState(t.zoneId, c.Id, world.CommandNone)
	p.world.ReturnCharacterToAnchor(t.zoneId, c.Id)
}

// nearestEnemy returns the closest live enemy within r of pos. Ties keep the
// first one found.
func nearestEnemy(pos geom.Point, r float64, enemies []world.EnemyInstance) (world.EnemyInstance, bool) {
	var best world.EnemyInstance
	found := false
	bestSq := r * r
	for _, e := range enemies {
		if !e.Alive() {
			continue
		}
		dsq := geom.DistSq(pos, e.Position)
		if dsq > bestSq || (found && dsq >= bestSq) {
			continue
		}
		best, bestSq, found = e, dsq, true
	}
	return best, found
}
