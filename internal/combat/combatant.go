package combat

import (
	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/world"
)

// Combatant is anything that can attack or be attacked.
type Combatant interface {
	CombatId() string
	CombatKind() events.EntityKind
	AttackValue() int
	DefenseValue() int
	CombatPosition() geom.Point
	CurrentHealth() float64
}

// CharacterCombatant adapts a character snapshot for the combat system.
type CharacterCombatant struct {
	Character world.RuntimeCharacter
}

func (c CharacterCombatant) CombatId() string              { return c.Character.Id }
func (c CharacterCombatant) CombatKind() events.EntityKind { return events.KindCharacter }
func (c CharacterCombatant) AttackValue() int              { return c.Character.EffectiveAttack }
func (c CharacterCombatant) DefenseValue() int             { return c.Character.EffectiveDefense }
func (c CharacterCombatant) CurrentHealth() float64        { return c.Character.CurrentHealth }

func (c CharacterCombatant) CombatPosition() geom.Point {
	if c.Character.Position == nil {
		return c.Character.Anchor
	}
	return *c.Character.Position
}

// EnemyCombatant adapts an enemy snapshot for the combat system.
type EnemyCombatant struct {
	Enemy world.EnemyInstance
}

func (c EnemyCombatant) CombatId() string              { return c.Enemy.Id }
func (c EnemyCombatant) CombatKind() events.EntityKind { return events.KindEnemy }
func (c EnemyCombatant) AttackValue() int              { return c.Enemy.Attack }
func (c EnemyCombatant) DefenseValue() int             { return c.Enemy.Defense }
func (c EnemyCombatant) CombatPosition() geom.Point    { return c.Enemy.Position }
func (c EnemyCombatant) CurrentHealth() float64        { return c.Enemy.CurrentHealth }
