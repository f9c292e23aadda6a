package world

import (
	"time"

	"github.com/pixil98/go-realm/internal/geom"
)

const (
	DefaultTickInterval = 100 * time.Millisecond

	RespawnDelay       = 5 * time.Second
	RegenPercentPerSec = 1.0

	DefaultAggroRange    = 150.0
	DefaultAttackRange   = 40.0
	DefaultLeashDistance = 400.0
	DefaultAttackSpeed   = 1000 * time.Millisecond
	CharacterMoveSpeed   = 120.0

	PickupRange         = 30.0
	ItemDespawnDuration = 60 * time.Second
	LootScatter         = 12.0

	EnemyDeathDecay     = 1500 * time.Millisecond
	EnemyAttackCooldown = 1500 * time.Millisecond
	EnemyAttackRange    = 35.0
	EnemyAggroRange     = 120.0
	EnemyWanderRadius   = 80.0
	EnemySpeed          = 60.0
	LeashFactor         = 2.0
	WanderChance        = 0.02
	KnockbackSpeed      = 160.0

	EntityRadius   = 12.0
	ObstacleRadius = 12.0

	// AnchorEpsilon is how far an idle character may drift from its anchor
	// before walking back.
	AnchorEpsilon = 5.0
	// ArrivalEpsilonSq is the squared distance at which a moving character
	// counts as arrived.
	ArrivalEpsilonSq = 1.0

	DefaultZoneWidth  = 2000.0
	DefaultZoneHeight = 2000.0
)

// DefaultSpawnPoint is where characters without a position are placed.
var DefaultSpawnPoint = geom.Point{X: 100, Y: 100}

// Tuning carries every numeric knob of the simulation. The zero value is not
// useful; start from DefaultTuning.
type Tuning struct {
	RespawnDelay       time.Duration
	RegenPercentPerSec float64

	DefaultAggroRange    float64
	DefaultAttackRange   float64
	DefaultLeashDistance float64
	DefaultAttackSpeed   time.Duration
	CharacterMoveSpeed   float64

	PickupRange         float64
	ItemDespawnDuration time.Duration
	LootScatter         float64

	EnemyDeathDecay     time.Duration
	EnemyAttackCooldown time.Duration
	EnemyAttackRange    float64
	EnemyAggroRange     float64
	EnemyWanderRadius   float64
	EnemySpeed          float64
	LeashFactor         float64
	WanderChance        float64
	KnockbackSpeed      float64

	EntityRadius   float64
	ObstacleRadius float64

	AnchorEpsilon    float64
	ArrivalEpsilonSq float64

	SpawnPoint geom.Point
	ZoneWidth  float64
	ZoneHeight float64

	Nests NestTuning
}

// NestTuning bounds the randomized nest layout generated per enemy template.
type NestTuning struct {
	PerTemplateMin int
	PerTemplateMax int
	RadiusMin      float64
	RadiusMax      float64
	CapacityMin    int
	CapacityMax    int
	DelayMin       time.Duration
	DelayMax       time.Duration
}

// DefaultTuning returns the stock simulation constants.
func DefaultTuning() Tuning {
	return Tuning{
		RespawnDelay:         RespawnDelay,
		RegenPercentPerSec:   RegenPercentPerSec,
		DefaultAggroRange:    DefaultAggroRange,
		DefaultAttackRange:   DefaultAttackRange,
		DefaultLeashDistance: DefaultLeashDistance,
		DefaultAttackSpeed:   DefaultAttackSpeed,
		CharacterMoveSpeed:   CharacterMoveSpeed,
		PickupRange:          PickupRange,
		ItemDespawnDuration:  ItemDespawnDuration,
		LootScatter:          LootScatter,
		EnemyDeathDecay:      EnemyDeathDecay,
		EnemyAttackCooldown:  EnemyAttackCooldown,
		EnemyAttackRange:     EnemyAttackRange,
		EnemyAggroRange:      EnemyAggroRange,
		EnemyWanderRadius:    EnemyWanderRadius,
		EnemySpeed:           EnemySpeed,
		LeashFactor:          LeashFactor,
		WanderChance:         WanderChance,
		KnockbackSpeed:       KnockbackSpeed,
		EntityRadius:         EntityRadius,
		ObstacleRadius:       ObstacleRadius,
		AnchorEpsilon:        AnchorEpsilon,
		ArrivalEpsilonSq:     ArrivalEpsilonSq,
		SpawnPoint:           DefaultSpawnPoint,
		ZoneWidth:            DefaultZoneWidth,
		ZoneHeight:           DefaultZoneHeight,
		Nests: NestTuning{
			PerTemplateMin: 1,
			PerTemplateMax: 3,
			RadiusMin:      60,
			RadiusMax:      160,
			CapacityMin:    2,
			CapacityMax:    5,
			DelayMin:       5 * time.Second,
			DelayMax:       15 * time.Second,
		},
	}
}
