package behavior

import (
	"context"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/loot"
	"github.com/pixil98/go-realm/internal/persistence"
	"github.com/pixil98/go-realm/internal/world"
)

// Repository is the persistence the character state machine writes through.
type Repository interface {
	FindEnemyTemplate(ctx context.Context, id string) (*persistence.EnemyTemplate, error)
	AddXp(ctx context.Context, characterId string, amount int) (int, error)
	AddItemToUser(ctx context.Context, ownerId, templateId string, qty int) (*persistence.InventoryItem, error)
}

// LootRoller rolls a loot table.
type LootRoller interface {
	CalculateLootDrops(ctx context.Context, tableId string) []loot.Drop
}

// AttackOutcome records one attack a character made this tick.
type AttackOutcome struct {
	EnemyId string
	combat.Result
}

// Result summarizes one character's tick.
type Result struct {
	Character         world.RuntimeCharacter
	Attacks           []AttackOutcome
	DiedThisTick      bool
	RespawnedThisTick bool
	TargetDied        bool
	PickedUpItem      string
	Found             bool
}

// tick carries the state of one character's evaluation.
type tick struct {
	ctx    context.Context
	zoneId string
	char   world.RuntimeCharacter
	pos    geom.Point
	now    time.Time
	dt     float64
	result *Result
}

type handler func(p *Processor, t *tick)

// Processor runs the per-character state machine.
type Processor struct {
	world    *world.World
	combat   *combat.Resolver
	loot     LootRoller
	repo     Repository
	tuning   world.Tuning
	handlers map[world.CharacterState]handler

	mu sync.Mutex
	// pendingXp holds experience that failed to persist, keyed by
	// character id, until a later grant succeeds.
	pendingXp map[string]int
	// deaths holds the time of death already reported per zone character.
	deaths map[deathKey]time.Time
}

type deathKey struct {
	zoneId string
	charId string
}

// NewProcessor creates a Processor.
func NewProcessor(w *world.World, cr *combat.Resolver, lr LootRoller, repo Repository) *Processor {
	return &Processor{
		world:  w,
		combat: cr,
		loot:   lr,
		repo:      repo,
		tuning:    w.Tuning(),
		pendingXp: map[string]int{},
		deaths:    map[deathKey]time.Time{},
		handlers: map[world.CharacterState]handler{
			world.StateIdle:         (*Processor).handleIdle,
			world.StateMoving:       (*Processor).handleMoving,
			world.StateAttacking:    (*Processor).handleAttacking,
			world.StateMovingToLoot: (*Processor).handleMovingToLoot,
			world.StateLootingArea:  (*Processor).handleLootingArea,
			world.StateDead:         func(*Processor, *tick) {},
		},
	}
}

// ProcessTick advances one character by dt seconds.
func (p *Processor) ProcessTick(ctx context.Context, zoneId, charId string, now time.Time, dt float64) (res Result) {
	c, ok := p.world.Character(zoneId, charId)
	if !ok {
		p.forgetDeath(zoneId, charId)
		return res
	}
	res.Found = true

	if p.pendingExperience(charId) > 0 {
		p.grantXp(ctx, zoneId, c, 0)
	}

	if c.Position == nil {
		p.world.RepairCharacterPosition(zoneId, charId, p.tuning.SpawnPoint)
		c, _ = p.world.Character(zoneId, charId)
	}

	defer func() {
		if c, ok := p.world.Character(zoneId, charId); ok {
			res.Character = c
		}
	}()

	if c.IsDead() {
		if c.TimeOfDeath != nil && !now.Before(c.TimeOfDeath.Add(p.tuning.RespawnDelay)) {
			res.RespawnedThisTick = p.world.RespawnCharacter(zoneId, charId)
			p.forgetDeath(zoneId, charId)
			return res
		}
		res.DiedThisTick = p.reportDeath(zoneId, c)
		return res
	}
	p.forgetDeath(zoneId, charId)

	if c.CurrentHealth <= 0 {
		if p.world.KillCharacter(zoneId, charId, now) {
			if dead, ok := p.world.Character(zoneId, charId); ok {
				res.DiedThisTick = p.reportDeath(zoneId, dead)
			}
		}
		return res
	}

	if c.CurrentHealth < c.BaseHealth && c.State != world.StateAttacking {
		heal := c.BaseHealth * (p.tuning.RegenPercentPerSec / 100) * dt
		if h, ok := p.world.AdjustCharacterHealth(zoneId, charId, heal); ok {
			c.CurrentHealth = h
		}
	}

	if p.checkLeash(zoneId, c) {
		return res
	}

	h, ok := p.handlers[c.State]
	if !ok {
		p.world.SetCharacterState(zoneId, charId, world.StateIdle)
		return res
	}
	h(p, &tick{
		ctx:    ctx,
		zoneId: zoneId,
		char:   c,
		pos:    *c.Position,
		now:    now,
		dt:     dt,
		result: &res,
	})
	return res
}

// checkLeash sends a character that strayed too far back to its anchor. It
// reports whether the leash engaged this tick.
func (p *Processor) checkLeash(zoneId string, c world.RuntimeCharacter) bool {
	if geom.DistSq(*c.Position, c.Anchor) <= c.LeashDistance*c.LeashDistance {
		return false
	}
	if c.State == world.StateMoving && c.Target != nil && *c.Target == c.Anchor {
		return false
	}
	return p.world.SetCharacterLeashTarget(zoneId, c.Id)
}

// reportDeath reports whether c's current death has not been seen by an
// earlier tick. Deaths caused outside the processor, such as an enemy attack,
// surface on the character's next tick.
func (p *Processor) reportDeath(zoneId string, c world.RuntimeCharacter) bool {
	if c.TimeOfDeath == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	key := deathKey{zoneId: zoneId, charId: c.Id}
	if seen, ok := p.deaths[key]; ok && seen.Equal(*c.TimeOfDeath) {
		return false
	}
	p.deaths[key] = *c.TimeOfDeath
	return true
}

func (p *Processor) forgetDeath(zoneId, charId string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.deaths, deathKey{zoneId: zoneId, charId: charId})
}
