package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/storage"
)

// FileRepository keeps all persistent records in JSON asset directories.
type FileRepository struct {
	Characters     storage.Storer[*Character]
	Inventories    storage.Storer[*Inventory]
	EnemyTemplates storage.Storer[*EnemyTemplate]
	ItemTemplates  storage.Storer[*ItemTemplate]
	LootTables     storage.Storer[*LootTable]

	// serializes read-modify-write cycles on characters and inventories
	mu  sync.Mutex
	now func() time.Time
}

// NewFileRepository wires the given stores together.
func NewFileRepository(
	chars storage.Storer[*Character],
	invs storage.Storer[*Inventory],
	enemies storage.Storer[*EnemyTemplate],
	items storage.Storer[*ItemTemplate],
	loot storage.Storer[*LootTable],
) *FileRepository {
	return &FileRepository{
		Characters:     chars,
		Inventories:    invs,
		EnemyTemplates: enemies,
		ItemTemplates:  items,
		LootTables:     loot,
		now:            time.Now,
	}
}

func (r *FileRepository) FindEnemyTemplate(_ context.Context, id string) (*EnemyTemplate, error) {
	t := r.EnemyTemplates.Get(id)
	if t == nil {
		return nil, fmt.Errorf("enemy template %q: %w", id, ErrNotFound)
	}
	return t, nil
}

func (r *FileRepository) FindAllEnemyTemplates(_ context.Context) (map[string]*EnemyTemplate, error) {
	return r.EnemyTemplates.GetAll(), nil
}

func (r *FileRepository) FindItemTemplate(_ context.Context, id string) (*ItemTemplate, error) {
	t := r.ItemTemplates.Get(id)
	if t == nil {
		return nil, fmt.Errorf("item template %q: %w", id, ErrNotFound)
	}
	return t, nil
}

func (r *FileRepository) FindLootTable(_ context.Context, id string) (*LootTable, error) {
	t := r.LootTables.Get(id)
	if t == nil {
		return nil, fmt.Errorf("loot table %q: %w", id, ErrNotFound)
	}
	return t, nil
}

func (r *FileRepository) FindCharactersByOwner(_ context.Context, ownerId string) (map[string]*Character, error) {
	return r.Characters.Filter(func(_ string, c *Character) bool {
		return c.OwnerId == ownerId
	}), nil
}

func (r *FileRepository) AddXp(_ context.Context, characterId string, amount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.Characters.Get(characterId)
	if c == nil {
		return 0, fmt.Errorf("%w: %s", ErrCharacterNotFound, characterId)
	}

	updated := *c
	applyExperience(&updated, amount)
	if err := r.Characters.Save(characterId, &updated); err != nil {
		return c.Level, fmt.Errorf("saving character %s: %w", characterId, err)
	}
	return updated.Level, nil
}

func (r *FileRepository) AddItemToUser(_ context.Context, ownerId, templateId string, qty int) (*InventoryItem, error) {
	tmpl := r.ItemTemplates.Get(templateId)
	if tmpl == nil {
		return nil, fmt.Errorf("item template %q: %w", templateId, ErrNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inv := r.inventory(ownerId).Clone()
	item, err := inv.Add(templateId, tmpl, qty, r.now())
	if err != nil {
		return nil, err
	}
	if err := r.Inventories.Save(ownerId, inv); err != nil {
		return nil, fmt.Errorf("saving inventory of %s: %w", ownerId, err)
	}
	return item, nil
}

func (r *FileRepository) CalculateEffectiveStats(_ context.Context, characterId string) (StatBonus, error) {
	c := r.Characters.Get(characterId)
	if c == nil {
		return StatBonus{}, fmt.Errorf("%w: %s", ErrCharacterNotFound, characterId)
	}

	equipped := make([]*ItemTemplate, 0, len(c.Equipped))
	for _, id := range c.Equipped {
		equipped = append(equipped, r.ItemTemplates.Get(id))
	}
	return EffectiveStats(equipped), nil
}

func (r *FileRepository) GetInventory(_ context.Context, ownerId string) (*Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inventory(ownerId).Clone(), nil
}

func (r *FileRepository) SortInventory(_ context.Context, ownerId string, mode SortMode) (*Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv := r.inventory(ownerId).Clone()
	if err := inv.Sort(mode, r.ItemTemplates.Get); err != nil {
		return nil, err
	}
	if err := r.Inventories.Save(ownerId, inv); err != nil {
		return nil, fmt.Errorf("saving inventory of %s: %w", ownerId, err)
	}
	return inv.Clone(), nil
}

func (r *FileRepository) inventory(ownerId string) *Inventory {
	if inv := r.Inventories.Get(ownerId); inv != nil {
		return inv
	}
	return NewInventory()
}
