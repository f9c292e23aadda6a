package persistence

import "context"

// Repository is the narrow persistence surface the simulation consumes.
// Lookups of missing records return ErrNotFound.
type Repository interface {
	FindEnemyTemplate(ctx context.Context, id string) (*EnemyTemplate, error)
	FindAllEnemyTemplates(ctx context.Context) (map[string]*EnemyTemplate, error)
	FindItemTemplate(ctx context.Context, id string) (*ItemTemplate, error)
	FindLootTable(ctx context.Context, id string) (*LootTable, error)
	FindCharactersByOwner(ctx context.Context, ownerId string) (map[string]*Character, error)

	// AddXp grants experience and returns the character's resulting level.
	AddXp(ctx context.Context, characterId string, amount int) (int, error)
	// AddItemToUser stores qty of a template in the owner's inventory.
	AddItemToUser(ctx context.Context, ownerId, templateId string, qty int) (*InventoryItem, error)
	// CalculateEffectiveStats returns the equipment bonus of a character.
	CalculateEffectiveStats(ctx context.Context, characterId string) (StatBonus, error)

	GetInventory(ctx context.Context, ownerId string) (*Inventory, error)
	SortInventory(ctx context.Context, ownerId string, mode SortMode) (*Inventory, error)
}
