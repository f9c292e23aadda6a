package persistence

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

// Character is the persisted record of a playable character. Runtime state
// (position, behavior) lives in the zone store and is never written back.
type Character struct {
	OwnerId       string   `json:"owner_id" bson:"owner_id"`
	Name          string   `json:"name" bson:"name"`
	Class         string   `json:"class,omitempty" bson:"class,omitempty"`
	Level         int      `json:"level" bson:"level"`
	Experience    int      `json:"experience" bson:"experience"`
	BaseHealth    float64  `json:"base_health" bson:"base_health"`
	BaseAttack    int      `json:"base_attack" bson:"base_attack"`
	BaseDefense   int      `json:"base_defense" bson:"base_defense"`
	AttackRange   float64  `json:"attack_range,omitempty" bson:"attack_range,omitempty"`
	AggroRange    float64  `json:"aggro_range,omitempty" bson:"aggro_range,omitempty"`
	LeashDistance float64  `json:"leash_distance,omitempty" bson:"leash_distance,omitempty"`
	AttackSpeedMs int      `json:"attack_speed_ms,omitempty" bson:"attack_speed_ms,omitempty"`
	Equipped      []string `json:"equipped,omitempty" bson:"equipped,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (c *Character) Validate() error {
	el := errors.NewErrorList()
	if c.OwnerId == "" {
		el.Add(fmt.Errorf("owner_id is required"))
	}
	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if c.BaseHealth <= 0 {
		el.Add(fmt.Errorf("base_health must be positive"))
	}
	if c.BaseAttack < 0 || c.BaseDefense < 0 {
		el.Add(fmt.Errorf("base_attack and base_defense must not be negative"))
	}
	return el.Err()
}

// EnemyTemplate defines a kind of enemy. Live enemies copy their stats from
// the template at spawn time.
type EnemyTemplate struct {
	Name         string   `json:"name" bson:"name"`
	Level        int      `json:"level" bson:"level"`
	MaxHealth    float64  `json:"max_health" bson:"max_health"`
	Attack       int      `json:"attack" bson:"attack"`
	Defense      int      `json:"defense" bson:"defense"`
	Speed        float64  `json:"speed" bson:"speed"`
	AttackRange  float64  `json:"attack_range,omitempty" bson:"attack_range,omitempty"`
	AggroRange   float64  `json:"aggro_range,omitempty" bson:"aggro_range,omitempty"`
	WanderRadius float64  `json:"wander_radius,omitempty" bson:"wander_radius,omitempty"`
	XpReward     int      `json:"xp_reward,omitempty" bson:"xp_reward,omitempty"`
	LootTable    string   `json:"loot_table,omitempty" bson:"loot_table,omitempty"`
	Zones        []string `json:"zones,omitempty" bson:"zones,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (t *EnemyTemplate) Validate() error {
	el := errors.NewErrorList()
	if t.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if t.MaxHealth <= 0 {
		el.Add(fmt.Errorf("max_health must be positive"))
	}
	if t.Speed < 0 {
		el.Add(fmt.Errorf("speed must not be negative"))
	}
	return el.Err()
}

// SpawnsIn reports whether the template populates the given zone. Templates
// without a zone list populate every zone.
func (t *EnemyTemplate) SpawnsIn(zoneId string) bool {
	if len(t.Zones) == 0 {
		return true
	}
	for _, z := range t.Zones {
		if z == zoneId {
			return true
		}
	}
	return false
}

// ExperienceReward returns the XP granted for a kill.
func (t *EnemyTemplate) ExperienceReward() int {
	if t.XpReward > 0 {
		return t.XpReward
	}
	return BaseExpForLevel(t.Level)
}

// ItemTemplate defines an item that can drop or sit in an inventory.
type ItemTemplate struct {
	Name         string `json:"name" bson:"name"`
	Type         string `json:"type" bson:"type"`
	Stackable    bool   `json:"stackable,omitempty" bson:"stackable,omitempty"`
	MaxStack     int    `json:"max_stack,omitempty" bson:"max_stack,omitempty"`
	AttackBonus  int    `json:"attack_bonus,omitempty" bson:"attack_bonus,omitempty"`
	DefenseBonus int    `json:"defense_bonus,omitempty" bson:"defense_bonus,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (t *ItemTemplate) Validate() error {
	el := errors.NewErrorList()
	if t.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if t.MaxStack < 0 {
		el.Add(fmt.Errorf("max_stack must not be negative"))
	}
	return el.Err()
}

// LootEntry is one independently rolled line of a loot table.
type LootEntry struct {
	Item        string  `json:"item" bson:"item"`
	DropChance  float64 `json:"drop_chance" bson:"drop_chance"`
	MinQuantity int     `json:"min_quantity" bson:"min_quantity"`
	MaxQuantity int     `json:"max_quantity" bson:"max_quantity"`
}

// LootTable lists what an enemy may drop.
type LootTable struct {
	Entries []LootEntry `json:"entries" bson:"entries"`
}

// Validate satisfies storage.ValidatingSpec.
func (t *LootTable) Validate() error {
	el := errors.NewErrorList()
	for i, e := range t.Entries {
		if e.Item == "" {
			el.Add(fmt.Errorf("entry %d: item is required", i))
		}
		if e.DropChance < 0 || e.DropChance > 100 {
			el.Add(fmt.Errorf("entry %d: drop_chance must be within [0, 100]", i))
		}
		if e.MinQuantity < 1 || e.MaxQuantity < e.MinQuantity {
			el.Add(fmt.Errorf("entry %d: quantity range [%d, %d] is invalid", i, e.MinQuantity, e.MaxQuantity))
		}
	}
	return el.Err()
}

// InventoryItem is a stack of one item template owned by a user.
type InventoryItem struct {
	Id         string    `json:"id" bson:"id"`
	TemplateId string    `json:"template_id" bson:"template_id"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	AcquiredAt time.Time `json:"acquired_at" bson:"acquired_at"`
}

// StatBonus is the attack/defense delta granted by equipment.
type StatBonus struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
}
