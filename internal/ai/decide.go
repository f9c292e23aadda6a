package ai

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/world"
)

// Kind is the action an enemy takes this tick.
type Kind int

const (
	Idle Kind = iota
	MoveTo
	Attack
)

func (k Kind) String() string {
	switch k {
	case MoveTo:
		return "move_to"
	case Attack:
		return "attack"
	default:
		return "idle"
	}
}

// Decision is the outcome of one AI evaluation. Deciding never mutates the
// zone; the caller applies the decision through the store.
type Decision struct {
	Kind  Kind
	State world.AIState
	// TargetId is the character the enemy is engaged with afterwards, empty
	// when disengaged.
	TargetId string
	Point    geom.Point
	// StampAttack asks the caller to record now as the last attack time.
	StampAttack bool
	// Restore asks the caller to heal the enemy to full, used when a leash
	// is released.
	Restore bool
}

// Decider evaluates enemy behavior.
type Decider struct {
	tuning world.Tuning
	rng    *rand.Rand
}

// NewDecider creates a Decider. rng drives wandering.
func NewDecider(t world.Tuning, rng *rand.Rand) *Decider {
	return &Decider{tuning: t, rng: rng}
}

// Decide picks the action for one live enemy given the characters of its
// zone.
func (d *Decider) Decide(e world.EnemyInstance, chars []world.RuntimeCharacter, now time.Time) Decision {
	if e.CurrentHealth <= 0 || e.IsDying {
		return Decision{Kind: Idle, State: world.AIDead}
	}

	state := e.AIState
	target, hasTarget := findTarget(chars, e.CurrentTargetId)
	if !hasTarget && isEngaged(state) {
		state = world.AIIdle
	}

	if state == world.AICooldown {
		if now.Sub(e.LastAttackTime) < d.tuning.EnemyAttackCooldown {
			return Decision{Kind: Idle, State: world.AICooldown, TargetId: e.CurrentTargetId}
		}
		state = world.AIChasing
	}

	if hasTarget {
		dist := geom.Dist(e.Position, *target.Position)
		if dist <= e.AttackRange {
			return Decision{Kind: Attack, State: world.AIAttacking, TargetId: target.Id, StampAttack: true}
		}
		if dist <= e.AggroRange {
			return Decision{Kind: MoveTo, State: world.AIChasing, TargetId: target.Id, Point: *target.Position}
		}
		if isEngaged(state) {
			state = world.AIIdle
		}
	}

	return d.disengaged(e, state, chars)
}

func (d *Decider) disengaged(e world.EnemyInstance, state world.AIState, chars []world.RuntimeCharacter) Decision {
	if geom.Dist(e.Position, e.Anchor) > e.WanderRadius*d.tuning.LeashFactor {
		return Decision{Kind: MoveTo, State: world.AILeashed, Point: e.Anchor}
	}

	switch state {
	case world.AILeashed:
		return Decision{Kind: Idle, State: world.AIIdle, Restore: true}

	case world.AIWandering:
		if e.Target != nil {
			return Decision{Kind: MoveTo, State: world.AIWandering, Point: *e.Target}
		}
		return Decision{Kind: Idle, State: world.AIIdle}

	case world.AIIdle:
		if c, ok := nearestCharacter(e, chars); ok {
			return Decision{Kind: MoveTo, State: world.AIChasing, TargetId: c.Id, Point: *c.Position}
		}
		if d.rng.Float64() < d.tuning.WanderChance {
			return Decision{Kind: MoveTo, State: world.AIWandering, Point: d.wanderPoint(e)}
		}
	}

	return Decision{Kind: Idle, State: world.AIIdle}
}

func (d *Decider) wanderPoint(e world.EnemyInstance) geom.Point {
	angle := d.rng.Float64() * 2 * math.Pi
	r := e.WanderRadius * math.Sqrt(d.rng.Float64())
	p := e.Anchor.Add(math.Cos(angle)*r, math.Sin(angle)*r)
	p.X = math.Min(math.Max(p.X, 0), d.tuning.ZoneWidth)
	p.Y = math.Min(math.Max(p.Y, 0), d.tuning.ZoneHeight)
	return p
}

func isEngaged(s world.AIState) bool {
	return s == world.AIAttacking || s == world.AICooldown || s == world.AIChasing
}

func targetable(c world.RuntimeCharacter) bool {
	return !c.IsDead() && c.CurrentHealth > 0 && c.Position != nil
}

func findTarget(chars []world.RuntimeCharacter, id string) (world.RuntimeCharacter, bool) {
	if id == "" {
		return world.RuntimeCharacter{}, false
	}
	for _, c := range chars {
		if c.Id == id {
			return c, targetable(c)
		}
	}
	return world.RuntimeCharacter{}, false
}

// nearestCharacter returns the closest live character within aggro range.
// Ties keep the first one found.
func nearestCharacter(e world.EnemyInstance, chars []world.RuntimeCharacter) (world.RuntimeCharacter, bool) {
	var best world.RuntimeCharacter
	found := false
	bestSq := e.AggroRange * e.AggroRange
	for _, c := range chars {
		if !targetable(c) {
			continue
		}
		dsq := geom.DistSq(e.Position, *c.Position)
		if dsq > bestSq || (found && dsq >= bestSq) {
			continue
		}
		best, bestSq, found = c, dsq, true
	}
	return best, found
}
