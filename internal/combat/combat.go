package combat

import (
	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/geom"
)

// Store is the part of the zone store combat writes through.
type Store interface {
	AdjustCharacterHealth(zoneId, charId string, delta float64) (float64, bool)
	AdjustEnemyHealth(zoneId, enemyId string, delta float64) (float64, bool)
	StartEnemyKnockback(zoneId, enemyId string, from geom.Point) bool
}

// Result describes one resolved attack.
type Result struct {
	DamageDealt         int
	TargetDied          bool
	TargetCurrentHealth float64
	// Applied is false when the target could not be found in the store.
	Applied bool
}

// Resolver applies attacks to the zone store and reports the visual cue for
// each one.
type Resolver struct {
	store  Store
	events events.Queue
}

// NewResolver creates a Resolver writing through store and queueing combat
// actions on q.
func NewResolver(store Store, q events.Queue) *Resolver {
	return &Resolver{store: store, events: q}
}

// HandleAttack resolves one attack. Zero damage leaves the store untouched
// and queues nothing.
func (r *Resolver) HandleAttack(attacker, defender Combatant, zoneId string) Result {
	dmg := Damage(attacker.AttackValue(), defender.DefenseValue())
	if dmg == 0 {
		return Result{TargetCurrentHealth: defender.CurrentHealth(), Applied: true}
	}

	var health float64
	var ok bool
	switch defender.CombatKind() {
	case events.KindCharacter:
		health, ok = r.store.AdjustCharacterHealth(zoneId, defender.CombatId(), -float64(dmg))
	case events.KindEnemy:
		health, ok = r.store.AdjustEnemyHealth(zoneId, defender.CombatId(), -float64(dmg))
	}
	if !ok {
		return Result{}
	}

	res := Result{
		DamageDealt:         dmg,
		TargetCurrentHealth: health,
		TargetDied:          health <= 0,
		Applied:             true,
	}
	if res.TargetDied && defender.CombatKind() == events.KindEnemy {
		r.store.StartEnemyKnockback(zoneId, defender.CombatId(), attacker.CombatPosition())
	}

	r.events.QueueCombat(zoneId, events.CombatAction{
		AttackerId:   attacker.CombatId(),
		AttackerKind: attacker.CombatKind(),
		TargetId:     defender.CombatId(),
		TargetKind:   defender.CombatKind(),
		Damage:       dmg,
		TargetDied:   res.TargetDied,
	})
	return res
}
