package events

import "github.com/pixil98/go-realm/internal/geom"

// EntityKind distinguishes characters from enemies in payloads.
type EntityKind string

const (
	KindCharacter EntityKind = "character"
	KindEnemy     EntityKind = "enemy"
)

// EntityUpdate is a partial diff of one entity. Nil fields did not change
// this tick.
type EntityUpdate struct {
	Id        string     `json:"id"`
	Kind      EntityKind `json:"kind"`
	X         *float64   `json:"x,omitempty"`
	Y         *float64   `json:"y,omitempty"`
	Health    *float64   `json:"health,omitempty"`
	MaxHealth *float64   `json:"max_health,omitempty"`
	State     *string    `json:"state,omitempty"`
	TargetId  *string    `json:"target_id,omitempty"`
}

// PositionUpdate builds a diff carrying only a position.
func PositionUpdate(kind EntityKind, id string, p geom.Point) EntityUpdate {
	x, y := p.X, p.Y
	return EntityUpdate{Id: id, Kind: kind, X: &x, Y: &y}
}

// HealthUpdate builds a diff carrying only health values.
func HealthUpdate(kind EntityKind, id string, health, maxHealth float64) EntityUpdate {
	return EntityUpdate{Id: id, Kind: kind, Health: &health, MaxHealth: &maxHealth}
}

// StateUpdate builds a diff carrying only a behavior state.
func StateUpdate(kind EntityKind, id string, state string) EntityUpdate {
	return EntityUpdate{Id: id, Kind: kind, State: &state}
}

// merge folds newer values from u into e.
func (e *EntityUpdate) merge(u EntityUpdate) {
	if u.X != nil {
		e.X = u.X
	}
	if u.Y != nil {
		e.Y = u.Y
	}
	if u.Health != nil {
		e.Health = u.Health
	}
	if u.MaxHealth != nil {
		e.MaxHealth = u.MaxHealth
	}
	if u.State != nil {
		e.State = u.State
	}
	if u.TargetId != nil {
		e.TargetId = u.TargetId
	}
}

// CombatAction is a visual cue for one resolved attack.
type CombatAction struct {
	AttackerId   string     `json:"attacker_id"`
	AttackerKind EntityKind `json:"attacker_kind"`
	TargetId     string     `json:"target_id"`
	TargetKind   EntityKind `json:"target_kind"`
	Damage       int        `json:"damage"`
	TargetDied   bool       `json:"target_died,omitempty"`
}

// DeathNotice announces that an entity died.
type DeathNotice struct {
	Id       string     `json:"id"`
	Kind     EntityKind `json:"kind"`
	Position geom.Point `json:"position"`
}

// SpawnNotice announces a new entity in the zone.
type SpawnNotice struct {
	Id         string     `json:"id"`
	Kind       EntityKind `json:"kind"`
	TemplateId string     `json:"template_id,omitempty"`
	OwnerId    string     `json:"owner_id,omitempty"`
	Position   geom.Point `json:"position"`
	Health     float64    `json:"health"`
	MaxHealth  float64    `json:"max_health"`
}

// DespawnNotice announces that an entity or item left the zone.
type DespawnNotice struct {
	Id     string `json:"id"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
}

// ItemDrop announces an item on the ground.
type ItemDrop struct {
	Id             string     `json:"id"`
	ItemTemplateId string     `json:"item_template_id"`
	Quantity       int        `json:"quantity"`
	Position       geom.Point `json:"position"`
}

// ItemPickup announces that a character picked up a ground item.
type ItemPickup struct {
	ItemId      string `json:"item_id"`
	CharacterId string `json:"character_id"`
	OwnerId     string `json:"owner_id"`
}

// Batch is the per-zone payload published once per tick.
type Batch struct {
	Type        string          `json:"type"`
	Zone        string          `json:"zone"`
	Tick        uint64          `json:"tick"`
	Entities    []EntityUpdate  `json:"entities,omitempty"`
	Combat      []CombatAction  `json:"combat,omitempty"`
	Deaths      []DeathNotice   `json:"deaths,omitempty"`
	Spawns      []SpawnNotice   `json:"spawns,omitempty"`
	Despawns    []DespawnNotice `json:"despawns,omitempty"`
	ItemDrops   []ItemDrop      `json:"item_drops,omitempty"`
	ItemPickups []ItemPickup    `json:"item_pickups,omitempty"`
}

// Empty reports whether the batch carries nothing worth sending.
func (b *Batch) Empty() bool {
	return len(b.Entities) == 0 && len(b.Combat) == 0 && len(b.Deaths) == 0 &&
		len(b.Spawns) == 0 && len(b.Despawns) == 0 && len(b.ItemDrops) == 0 && len(b.ItemPickups) == 0
}
