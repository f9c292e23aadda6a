package world

import (
	"time"

	"github.com/pixil98/go-realm/internal/geom"
)

// CharacterState is the momentary behavior of a character.
type CharacterState string

const (
	StateIdle         CharacterState = "idle"
	StateMoving       CharacterState = "moving"
	StateAttacking    CharacterState = "attacking"
	StateMovingToLoot CharacterState = "moving_to_loot"
	StateLootingArea  CharacterState = "looting_area"
	StateDead         CharacterState = "dead"
)

// CharacterStates lists every character state.
var CharacterStates = []CharacterState{
	StateIdle, StateMoving, StateAttacking, StateMovingToLoot, StateLootingArea, StateDead,
}

// CommandState is a standing multi-tick intent that outlives the momentary
// state.
type CommandState string

const (
	CommandNone     CommandState = ""
	CommandLootArea CommandState = "loot_area"
)

// AIState is the enemy behavior state.
type AIState string

const (
	AIIdle      AIState = "IDLE"
	AIChasing   AIState = "CHASING"
	AIAttacking AIState = "ATTACKING"
	AICooldown  AIState = "COOLDOWN"
	AIWandering AIState = "WANDERING"
	AILeashed   AIState = "LEASHED"
	AIDead      AIState = "DEAD"
)

// PlayerSession ties a connected user to the characters they have in a zone.
type PlayerSession struct {
	UserId       string
	SessionId    string
	CharacterIds []string
	JoinedAt     time.Time
}

func (p PlayerSession) clone() PlayerSession {
	p.CharacterIds = append([]string(nil), p.CharacterIds...)
	return p
}

// RuntimeCharacter is the live projection of a persisted character.
type RuntimeCharacter struct {
	Id      string
	OwnerId string
	Name    string
	Level   int

	Position *geom.Point
	Target   *geom.Point
	Anchor   geom.Point

	State        CharacterState
	CommandState CommandState
	AttackTarget string
	TargetItem   string

	CurrentHealth float64
	BaseHealth    float64

	BaseAttack       int
	BaseDefense      int
	EffectiveAttack  int
	EffectiveDefense int

	AttackRange   float64
	AggroRange    float64
	LeashDistance float64
	AttackSpeed   time.Duration

	LastAttackTime time.Time
	TimeOfDeath    *time.Time
}

// Clone returns a copy that shares no pointers with c.
func (c RuntimeCharacter) Clone() RuntimeCharacter {
	if c.Position != nil {
		c.Position = c.Position.Ptr()
	}
	if c.Target != nil {
		c.Target = c.Target.Ptr()
	}
	if c.TimeOfDeath != nil {
		t := *c.TimeOfDeath
		c.TimeOfDeath = &t
	}
	return c
}

// IsDead reports whether the character is in the dead state.
func (c RuntimeCharacter) IsDead() bool {
	return c.State == StateDead
}

// Knockback is the transient slide applied to a dying enemy.
type Knockback struct {
	VX float64
	VY float64
}

// EnemyInstance is one live enemy. Stats are copied from the template at
// spawn and never re-read.
type EnemyInstance struct {
	Id         string
	TemplateId string
	Name       string
	Level      int

	Position geom.Point
	Target   *geom.Point
	AIState  AIState

	CurrentHealth float64
	MaxHealth     float64
	Attack        int
	Defense       int
	Speed         float64
	AttackRange   float64
	AggroRange    float64

	CurrentTargetId string
	LastAttackTime  time.Time

	NestId       string
	Anchor       geom.Point
	WanderRadius float64

	IsDying        bool
	DeathTimestamp time.Time
	Knockback      *Knockback
}

// Clone returns a copy that shares no pointers with e.
func (e EnemyInstance) Clone() EnemyInstance {
	if e.Target != nil {
		e.Target = e.Target.Ptr()
	}
	if e.Knockback != nil {
		k := *e.Knockback
		e.Knockback = &k
	}
	return e
}

// Alive reports whether the enemy can still act and be targeted.
func (e EnemyInstance) Alive() bool {
	return !e.IsDying && e.CurrentHealth > 0
}

// SpawnNest is a fixed area that keeps a number of enemies of one template
// alive.
type SpawnNest struct {
	Id                 string
	TemplateId         string
	Center             geom.Point
	Radius             float64
	MaxCapacity        int
	CurrentEnemyIds    map[string]struct{}
	RespawnDelay       time.Duration
	LastSpawnCheckTime time.Time
}

func (n SpawnNest) clone() SpawnNest {
	ids := make(map[string]struct{}, len(n.CurrentEnemyIds))
	for id := range n.CurrentEnemyIds {
		ids[id] = struct{}{}
	}
	n.CurrentEnemyIds = ids
	return n
}

// Occupancy returns the number of enemies currently tracked by the nest.
func (n SpawnNest) Occupancy() int {
	return len(n.CurrentEnemyIds)
}

// DroppedItem is loot lying on the ground.
type DroppedItem struct {
	Id             string
	ItemTemplateId string
	Position       geom.Point
	Quantity       int
	TimeDropped    time.Time
	DespawnTime    time.Time
}

// Snapshot is the full visible state of a zone.
type Snapshot struct {
	Type       string              `json:"type"`
	Zone       string              `json:"zone"`
	Characters []CharacterSnapshot `json:"characters"`
	Enemies    []EnemySnapshot     `json:"enemies"`
	Items      []ItemSnapshot      `json:"items"`
}

type CharacterSnapshot struct {
	Id        string         `json:"id"`
	OwnerId   string         `json:"owner_id"`
	Name      string         `json:"name"`
	Level     int            `json:"level"`
	Position  *geom.Point    `json:"position,omitempty"`
	State     CharacterState `json:"state"`
	Health    float64        `json:"health"`
	MaxHealth float64        `json:"max_health"`
}

type EnemySnapshot struct {
	Id         string     `json:"id"`
	TemplateId string     `json:"template_id"`
	Name       string     `json:"name"`
	Position   geom.Point `json:"position"`
	State      AIState    `json:"state"`
	Health     float64    `json:"health"`
	MaxHealth  float64    `json:"max_health"`
	Dying      bool       `json:"dying,omitempty"`
}

type ItemSnapshot struct {
	Id             string     `json:"id"`
	ItemTemplateId string     `json:"item_template_id"`
	Quantity       int        `json:"quantity"`
	Position       geom.Point `json:"position"`
}
