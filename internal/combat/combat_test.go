package combat

import (
	"testing"

	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/world"
	"github.com/pixil98/go-testutil"
)

type recordingStore struct {
	health     map[string]float64
	writes     int
	knockbacks []string
}

func (s *recordingStore) adjust(id string, delta float64) (float64, bool) {
	h, ok := s.health[id]
	if !ok {
		return 0, false
	}
	s.writes++
	h = max(h+delta, 0)
	s.health[id] = h
	return h, true
}

func (s *recordingStore) AdjustCharacterHealth(_ string, id string, delta float64) (float64, bool) {
	return s.adjust(id, delta)
}

func (s *recordingStore) AdjustEnemyHealth(_ string, id string, delta float64) (float64, bool) {
	return s.adjust(id, delta)
}

func (s *recordingStore) StartEnemyKnockback(_ string, id string, _ geom.Point) bool {
	s.knockbacks = append(s.knockbacks, id)
	return true
}

type recordingQueue struct {
	events.Queue
	combat []events.CombatAction
}

func (q *recordingQueue) QueueCombat(_ string, a events.CombatAction) {
	q.combat = append(q.combat, a)
}

func TestDamage(t *testing.T) {
	tests := map[string]struct {
		attack    int
		defense   int
		expDamage int
	}{
		"attack beats defense": {attack: 10, defense: 3, expDamage: 7},
		"equal":                {attack: 5, defense: 5, expDamage: 0},
		"defense beats attack": {attack: 2, defense: 9, expDamage: 0},
		"no defense":           {attack: 4, defense: 0, expDamage: 4},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "damage", Damage(tt.attack, tt.defense), tt.expDamage)
		})
	}
}

func TestDamage_NeverNegative(t *testing.T) {
	for a := -20; a <= 20; a++ {
		for d := -20; d <= 20; d++ {
			got := Damage(a, d)
			if got < 0 || got != max(0, a-d) {
				t.Fatalf("Damage(%d, %d) = %d", a, d, got)
			}
		}
	}
}

func hero(attack, defense int) CharacterCombatant {
	return CharacterCombatant{Character: world.RuntimeCharacter{
		Id:               "c1",
		Position:         geom.Pt(0, 0).Ptr(),
		CurrentHealth:    50,
		BaseHealth:       50,
		EffectiveAttack:  attack,
		EffectiveDefense: defense,
	}}
}

func goblin(attack, defense int, health float64) EnemyCombatant {
	return EnemyCombatant{Enemy: world.EnemyInstance{
		Id:            "e1",
		Position:      geom.Pt(10, 0),
		CurrentHealth: health,
		MaxHealth:     30,
		Attack:        attack,
		Defense:       defense,
	}}
}

func TestResolver_HandleAttack(t *testing.T) {
	tests := map[string]struct {
		attacker     Combatant
		defender     Combatant
		expDamage    int
		expHealth    float64
		expDied      bool
		expWrites    int
		expActions   int
		expKnockback int
	}{
		"character hits enemy": {
			attacker:   hero(10, 0),
			defender:   goblin(5, 2, 30),
			expDamage:  8,
			expHealth:  22,
			expWrites:  1,
			expActions: 1,
		},
		"character kills enemy": {
			attacker:     hero(40, 0),
			defender:     goblin(5, 2, 30),
			expDamage:    38,
			expHealth:    0,
			expDied:      true,
			expWrites:    1,
			expActions:   1,
			expKnockback: 1,
		},
		"enemy hits character": {
			attacker:   goblin(9, 0, 30),
			defender:   hero(0, 4),
			expDamage:  5,
			expHealth:  45,
			expWrites:  1,
			expActions: 1,
		},
		"equal attack and defense writes nothing": {
			attacker:  hero(5, 0),
			defender:  goblin(5, 5, 30),
			expDamage: 0,
			expHealth: 30,
		},
		"overwhelming defense writes nothing": {
			attacker:  goblin(3, 0, 30),
			defender:  hero(0, 10),
			expDamage: 0,
			expHealth: 50,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store := &recordingStore{health: map[string]float64{"c1": 50, "e1": 30}}
			q := &recordingQueue{}
			r := NewResolver(store, q)

			res := r.HandleAttack(tt.attacker, tt.defender, "meadow")

			testutil.AssertEqual(t, "damage", res.DamageDealt, tt.expDamage)
			testutil.AssertEqual(t, "health", res.TargetCurrentHealth, tt.expHealth)
			testutil.AssertEqual(t, "died", res.TargetDied, tt.expDied)
			testutil.AssertEqual(t, "applied", res.Applied, true)
			testutil.AssertEqual(t, "store writes", store.writes, tt.expWrites)
			testutil.AssertEqual(t, "combat actions", len(q.combat), tt.expActions)
			testutil.AssertEqual(t, "knockbacks", len(store.knockbacks), tt.expKnockback)
		})
	}
}

func TestResolver_HandleAttack_MissingTarget(t *testing.T) {
	store := &recordingStore{health: map[string]float64{}}
	q := &recordingQueue{}
	r := NewResolver(store, q)

	res := r.HandleAttack(hero(10, 0), goblin(0, 0, 30), "meadow")
	testutil.AssertEqual(t, "applied", res.Applied, false)
	testutil.AssertEqual(t, "combat actions", len(q.combat), 0)
}
