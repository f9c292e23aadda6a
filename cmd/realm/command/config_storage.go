package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/persistence"
	"github.com/pixil98/go-realm/internal/storage"
)

type StorageDriver string

const (
	StorageDriverFile  StorageDriver = "file"
	StorageDriverMongo StorageDriver = "mongo"
)

type StorageConfig struct {
	Driver StorageDriver `json:"driver"`

	Characters     AssetConfig[*persistence.Character]     `json:"characters"`
	Inventories    AssetConfig[*persistence.Inventory]     `json:"inventories"`
	EnemyTemplates AssetConfig[*persistence.EnemyTemplate] `json:"enemy_templates"`
	ItemTemplates  AssetConfig[*persistence.ItemTemplate]  `json:"item_templates"`
	LootTables     AssetConfig[*persistence.LootTable]     `json:"loot_tables"`

	Mongo MongoConfig `json:"mongo"`
}

func (c *StorageConfig) driver() StorageDriver {
	if c.Driver == "" {
		return StorageDriverFile
	}
	return c.Driver
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	switch c.driver() {
	case StorageDriverFile:
		el.Add(c.Characters.Validate("characters"))
		el.Add(c.Inventories.Validate("inventories"))
		el.Add(c.EnemyTemplates.Validate("enemy_templates"))
		el.Add(c.ItemTemplates.Validate("item_templates"))
		el.Add(c.LootTables.Validate("loot_tables"))
	case StorageDriverMongo:
		el.Add(c.Mongo.validate())
	default:
		el.Add(fmt.Errorf("unknown storage driver %q", c.Driver))
	}

	return el.Err()
}

// BuildRepository opens the configured backend.
func (c *StorageConfig) BuildRepository(ctx context.Context) (persistence.Repository, error) {
	switch c.driver() {
	case StorageDriverMongo:
		return c.Mongo.BuildMongoRepository(ctx)
	case StorageDriverFile:
		return c.BuildFileRepository()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.Driver)
	}
}

func (c *StorageConfig) BuildFileRepository() (*persistence.FileRepository, error) {
	chars, err := c.Characters.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating character store: %w", err)
	}
	invs, err := c.Inventories.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating inventory store: %w", err)
	}
	enemies, err := c.EnemyTemplates.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating enemy template store: %w", err)
	}
	items, err := c.ItemTemplates.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating item template store: %w", err)
	}
	loot, err := c.LootTables.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating loot table store: %w", err)
	}

	return persistence.NewFileRepository(chars, invs, enemies, items, loot), nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}

type MongoConfig struct {
	Uri      string `json:"uri"`
	Database string `json:"database"`
	Timeout  string `json:"timeout"`
}

func (c *MongoConfig) validate() error {
	el := errors.NewErrorList()

	if c.Uri == "" {
		el.Add(fmt.Errorf("mongo.uri is required"))
	}
	if c.Database == "" {
		el.Add(fmt.Errorf("mongo.database is required"))
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			el.Add(fmt.Errorf("parsing mongo.timeout: %w", err))
		}
	}

	return el.Err()
}

func (c *MongoConfig) BuildMongoRepository(ctx context.Context) (*persistence.MongoRepository, error) {
	var timeout time.Duration
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing timeout: %w", err)
		}
		timeout = d
	}
	return persistence.NewMongoRepository(ctx, c.Uri, c.Database, timeout)
}
