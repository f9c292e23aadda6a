package command

import (
	"testing"
	"time"

	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/persistence"
	"github.com/pixil98/go-realm/internal/world"
	"github.com/pixil98/go-testutil"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		TickInterval: "100ms",
		Zones:        []string{"meadow"},
		Storage: StorageConfig{
			Driver:         StorageDriverFile,
			Characters:     AssetConfig[*persistence.Character]{Path: dir},
			Inventories:    AssetConfig[*persistence.Inventory]{Path: dir},
			EnemyTemplates: AssetConfig[*persistence.EnemyTemplate]{Path: dir},
			ItemTemplates:  AssetConfig[*persistence.ItemTemplate]{Path: dir},
			LootTables:     AssetConfig[*persistence.LootTable]{Path: dir},
		},
		Listener: ListenerConfig{Port: 8080},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(c *Config)
		expErr string
	}{
		"valid": {
			mutate: func(c *Config) {},
		},
		"default tick interval": {
			mutate: func(c *Config) { c.TickInterval = "" },
		},
		"unparseable tick interval": {
			mutate: func(c *Config) { c.TickInterval = "fast" },
			expErr: "parsing tick_interval",
		},
		"tick interval too short": {
			mutate: func(c *Config) { c.TickInterval = "1ms" },
			expErr: "tick_interval must be at least",
		},
		"empty zone id": {
			mutate: func(c *Config) { c.Zones = append(c.Zones, "") },
			expErr: "zone 1: id must not be empty",
		},
		"missing asset path": {
			mutate: func(c *Config) { c.Storage.LootTables.Path = "" },
			expErr: "loot_tables: path is required",
		},
		"unknown storage driver": {
			mutate: func(c *Config) { c.Storage.Driver = "postgres" },
			expErr: "unknown storage driver",
		},
		"mongo needs uri": {
			mutate: func(c *Config) {
				c.Storage.Driver = StorageDriverMongo
				c.Storage.Mongo.Database = "realm"
			},
			expErr: "mongo.uri is required",
		},
		"mongo skips asset paths": {
			mutate: func(c *Config) {
				c.Storage = StorageConfig{
					Driver: StorageDriverMongo,
					Mongo:  MongoConfig{Uri: "mongodb://localhost:27017", Database: "realm", Timeout: "5s"},
				}
			},
		},
		"bad nats timeout": {
			mutate: func(c *Config) { c.Nats.StartTimeout = "soon" },
			expErr: "parsing nats.start_timeout",
		},
		"listener port required": {
			mutate: func(c *Config) { c.Listener.Port = 0 },
			expErr: "listener.port must be set",
		},
		"listener path": {
			mutate: func(c *Config) { c.Listener.Path = "ws" },
			expErr: "listener.path must start with /",
		},
		"negative range": {
			mutate: func(c *Config) { c.Simulation.AggroRange = -1 },
			expErr: "simulation.aggro_range must not be negative",
		},
		"wander chance above one": {
			mutate: func(c *Config) { c.Simulation.WanderChance = 2 },
			expErr: "wander_chance must be between 0 and 1",
		},
		"bad duration override": {
			mutate: func(c *Config) { c.Simulation.DeathDecay = "long" },
			expErr: "parsing simulation.death_decay",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			testutil.AssertEqual(t, "err", err, nil)
		})
	}
}

func TestConfig_TickInterval(t *testing.T) {
	tests := map[string]struct {
		interval string
		exp      time.Duration
	}{
		"unset":      {interval: "", exp: world.DefaultTickInterval},
		"configured": {interval: "50ms", exp: 50 * time.Millisecond},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Config{TickInterval: tt.interval}
			testutil.AssertEqual(t, "interval", cfg.tickInterval(), tt.exp)
		})
	}
}

func TestSimulationConfig_BuildTuning(t *testing.T) {
	spawn := geom.Pt(10, 20)
	cfg := SimulationConfig{
		RespawnDelay: "2s",
		AggroRange:   90,
		WanderChance: 0.5,
		SpawnPoint:   &spawn,
	}

	got := cfg.BuildTuning()
	def := world.DefaultTuning()

	testutil.AssertEqual(t, "respawn delay", got.RespawnDelay, 2*time.Second)
	testutil.AssertEqual(t, "aggro range", got.DefaultAggroRange, 90.0)
	testutil.AssertEqual(t, "wander chance", got.WanderChance, 0.5)
	testutil.AssertEqual(t, "spawn point", got.SpawnPoint, spawn)
	testutil.AssertEqual(t, "untouched decay", got.EnemyDeathDecay, def.EnemyDeathDecay)
	testutil.AssertEqual(t, "untouched speed", got.CharacterMoveSpeed, def.CharacterMoveSpeed)
}
