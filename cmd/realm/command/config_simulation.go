package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/world"
)

// SimulationConfig overrides tuning constants. Zero values keep the
// defaults.
type SimulationConfig struct {
	RespawnDelay        string      `json:"respawn_delay"`
	RegenPercentPerSec  float64     `json:"regen_percent_per_sec"`
	AggroRange          float64     `json:"aggro_range"`
	AttackRange         float64     `json:"attack_range"`
	LeashDistance       float64     `json:"leash_distance"`
	MoveSpeed           float64     `json:"move_speed"`
	PickupRange         float64     `json:"pickup_range"`
	ItemDespawn         string      `json:"item_despawn"`
	DeathDecay          string      `json:"death_decay"`
	EnemyAttackCooldown string      `json:"enemy_attack_cooldown"`
	LeashFactor         float64     `json:"leash_factor"`
	WanderChance        float64     `json:"wander_chance"`
	ZoneWidth           float64     `json:"zone_width"`
	ZoneHeight          float64     `json:"zone_height"`
	SpawnPoint          *geom.Point `json:"spawn_point,omitempty"`
}

func (c *SimulationConfig) durations() map[string]string {
	return map[string]string{
		"respawn_delay":         c.RespawnDelay,
		"item_despawn":          c.ItemDespawn,
		"death_decay":           c.DeathDecay,
		"enemy_attack_cooldown": c.EnemyAttackCooldown,
	}
}

func (c *SimulationConfig) validate() error {
	el := errors.NewErrorList()

	for name, v := range c.durations() {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil {
			el.Add(fmt.Errorf("parsing simulation.%s: %w", name, err))
		} else if d < 0 {
			el.Add(fmt.Errorf("simulation.%s must not be negative", name))
		}
	}

	for name, v := range map[string]float64{
		"regen_percent_per_sec": c.RegenPercentPerSec,
		"aggro_range":           c.AggroRange,
		"attack_range":          c.AttackRange,
		"leash_distance":        c.LeashDistance,
		"move_speed":            c.MoveSpeed,
		"pickup_range":          c.PickupRange,
		"leash_factor":          c.LeashFactor,
		"zone_width":            c.ZoneWidth,
		"zone_height":           c.ZoneHeight,
	} {
		if v < 0 {
			el.Add(fmt.Errorf("simulation.%s must not be negative", name))
		}
	}

	if c.WanderChance < 0 || c.WanderChance > 1 {
		el.Add(fmt.Errorf("simulation.wander_chance must be between 0 and 1"))
	}
	if c.SpawnPoint != nil && !c.SpawnPoint.Valid() {
		el.Add(fmt.Errorf("simulation.spawn_point is not a valid point"))
	}

	return el.Err()
}

// BuildTuning applies the overrides to the default tuning.
func (c *SimulationConfig) BuildTuning() world.Tuning {
	t := world.DefaultTuning()

	setDuration(&t.RespawnDelay, c.RespawnDelay)
	setDuration(&t.ItemDespawnDuration, c.ItemDespawn)
	setDuration(&t.EnemyDeathDecay, c.DeathDecay)
	setDuration(&t.EnemyAttackCooldown, c.EnemyAttackCooldown)

	setFloat(&t.RegenPercentPerSec, c.RegenPercentPerSec)
	setFloat(&t.DefaultAggroRange, c.AggroRange)
	setFloat(&t.DefaultAttackRange, c.AttackRange)
	setFloat(&t.DefaultLeashDistance, c.LeashDistance)
	setFloat(&t.CharacterMoveSpeed, c.MoveSpeed)
	setFloat(&t.PickupRange, c.PickupRange)
	setFloat(&t.LeashFactor, c.LeashFactor)
	setFloat(&t.WanderChance, c.WanderChance)
	setFloat(&t.ZoneWidth, c.ZoneWidth)
	setFloat(&t.ZoneHeight, c.ZoneHeight)

	if c.SpawnPoint != nil {
		t.SpawnPoint = *c.SpawnPoint
	}
	return t
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
