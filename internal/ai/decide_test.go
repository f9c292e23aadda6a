package ai

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/world"
	"github.com/pixil98/go-testutil"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func enemyAt(p geom.Point, state world.AIState) world.EnemyInstance {
	return world.EnemyInstance{
		Id:            "e1",
		Position:      p,
		Anchor:        geom.Pt(100, 100),
		AIState:       state,
		CurrentHealth: 30,
		MaxHealth:     30,
		AttackRange:   35,
		AggroRange:    120,
		WanderRadius:  80,
	}
}

func charAt(id string, p geom.Point) world.RuntimeCharacter {
	return world.RuntimeCharacter{
		Id:            id,
		Position:      p.Ptr(),
		State:         world.StateIdle,
		CurrentHealth: 50,
		BaseHealth:    50,
	}
}

func noWander() world.Tuning {
	t := world.DefaultTuning()
	t.WanderChance = 0
	return t
}

func TestDecider_Decide(t *testing.T) {
	deadChar := charAt("dead", geom.Pt(110, 100))
	deadChar.State = world.StateDead
	deadChar.CurrentHealth = 0

	tests := map[string]struct {
		enemy       func() world.EnemyInstance
		chars       []world.RuntimeCharacter
		expKind     Kind
		expState    world.AIState
		expTargetId string
		expPoint    geom.Point
		expStamp    bool
		expRestore  bool
	}{
		"no health forces dead": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(100, 100), world.AIChasing)
				e.CurrentHealth = 0
				return e
			},
			expKind:  Idle,
			expState: world.AIDead,
		},
		"idle aggroes nearest live character": {
			enemy: func() world.EnemyInstance { return enemyAt(geom.Pt(100, 100), world.AIIdle) },
			chars: []world.RuntimeCharacter{
				charAt("far", geom.Pt(200, 100)),
				deadChar,
				charAt("near", geom.Pt(160, 100)),
				charAt("outside", geom.Pt(300, 100)),
			},
			expKind:     MoveTo,
			expState:    world.AIChasing,
			expTargetId: "near",
			expPoint:    geom.Pt(160, 100),
		},
		"idle with nobody around stays idle": {
			enemy:    func() world.EnemyInstance { return enemyAt(geom.Pt(100, 100), world.AIIdle) },
			chars:    []world.RuntimeCharacter{charAt("outside", geom.Pt(300, 100))},
			expKind:  Idle,
			expState: world.AIIdle,
		},
		"target in attack range attacks": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(100, 100), world.AIChasing)
				e.CurrentTargetId = "c1"
				return e
			},
			chars:       []world.RuntimeCharacter{charAt("c1", geom.Pt(120, 100))},
			expKind:     Attack,
			expState:    world.AIAttacking,
			expTargetId: "c1",
			expStamp:    true,
		},
		"target in aggro range is chased": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(100, 100), world.AIAttacking)
				e.CurrentTargetId = "c1"
				return e
			},
			chars:       []world.RuntimeCharacter{charAt("c1", geom.Pt(180, 100))},
			expKind:     MoveTo,
			expState:    world.AIChasing,
			expTargetId: "c1",
			expPoint:    geom.Pt(180, 100),
		},
		"dead target is dropped": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(100, 100), world.AIChasing)
				e.CurrentTargetId = "dead"
				return e
			},
			chars:    []world.RuntimeCharacter{deadChar},
			expKind:  Idle,
			expState: world.AIIdle,
		},
		"missing target falls back to aggro scan": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(100, 100), world.AIAttacking)
				e.CurrentTargetId = "gone"
				return e
			},
			chars:       []world.RuntimeCharacter{charAt("c2", geom.Pt(150, 100))},
			expKind:     MoveTo,
			expState:    world.AIChasing,
			expTargetId: "c2",
			expPoint:    geom.Pt(150, 100),
		},
		"cooldown waits": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(100, 100), world.AICooldown)
				e.CurrentTargetId = "c1"
				e.LastAttackTime = testNow.Add(-500 * time.Millisecond)
				return e
			},
			chars:       []world.RuntimeCharacter{charAt("c1", geom.Pt(120, 100))},
			expKind:     Idle,
			expState:    world.AICooldown,
			expTargetId: "c1",
		},
		"cooldown expired attacks again": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(100, 100), world.AICooldown)
				e.CurrentTargetId = "c1"
				e.LastAttackTime = testNow.Add(-2 * time.Second)
				return e
			},
			chars:       []world.RuntimeCharacter{charAt("c1", geom.Pt(120, 100))},
			expKind:     Attack,
			expState:    world.AIAttacking,
			expTargetId: "c1",
			expStamp:    true,
		},
		"too far from anchor leashes": {
			enemy:    func() world.EnemyInstance { return enemyAt(geom.Pt(300, 100), world.AIIdle) },
			expKind:  MoveTo,
			expState: world.AILeashed,
			expPoint: geom.Pt(100, 100),
		},
		"target beyond aggro range while far from home leashes": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(300, 100), world.AIChasing)
				e.CurrentTargetId = "c1"
				return e
			},
			chars:    []world.RuntimeCharacter{charAt("c1", geom.Pt(500, 100))},
			expKind:  MoveTo,
			expState: world.AILeashed,
			expPoint: geom.Pt(100, 100),
		},
		"leash released inside range": {
			enemy:      func() world.EnemyInstance { return enemyAt(geom.Pt(150, 100), world.AILeashed) },
			chars:      []world.RuntimeCharacter{charAt("c1", geom.Pt(160, 100))},
			expKind:    Idle,
			expState:   world.AIIdle,
			expRestore: true,
		},
		"wandering keeps heading to its point": {
			enemy: func() world.EnemyInstance {
				e := enemyAt(geom.Pt(100, 100), world.AIWandering)
				e.Target = geom.Pt(140, 120).Ptr()
				return e
			},
			chars:    []world.RuntimeCharacter{charAt("c1", geom.Pt(110, 100))},
			expKind:  MoveTo,
			expState: world.AIWandering,
			expPoint: geom.Pt(140, 120),
		},
		"wandering without a point goes idle": {
			enemy:    func() world.EnemyInstance { return enemyAt(geom.Pt(100, 100), world.AIWandering) },
			expKind:  Idle,
			expState: world.AIIdle,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDecider(noWander(), rand.New(rand.NewPCG(1, 1)))
			got := d.Decide(tt.enemy(), tt.chars, testNow)

			testutil.AssertEqual(t, "kind", got.Kind, tt.expKind)
			testutil.AssertEqual(t, "state", got.State, tt.expState)
			testutil.AssertEqual(t, "target", got.TargetId, tt.expTargetId)
			testutil.AssertEqual(t, "point", got.Point, tt.expPoint)
			testutil.AssertEqual(t, "stamp", got.StampAttack, tt.expStamp)
			testutil.AssertEqual(t, "restore", got.Restore, tt.expRestore)
		})
	}
}

func TestDecider_Wander(t *testing.T) {
	tuning := world.DefaultTuning()
	tuning.WanderChance = 1
	d := NewDecider(tuning, rand.New(rand.NewPCG(7, 9)))

	e := enemyAt(geom.Pt(100, 100), world.AIIdle)
	for i := 0; i < 500; i++ {
		got := d.Decide(e, nil, testNow)
		testutil.AssertEqual(t, "kind", got.Kind, MoveTo)
		testutil.AssertEqual(t, "state", got.State, world.AIWandering)
		if geom.Dist(got.Point, e.Anchor) > e.WanderRadius+1e-9 {
			t.Fatalf("wander point %v outside radius", got.Point)
		}
	}
}
