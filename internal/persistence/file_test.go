package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-testutil"
)

func newTestFileRepository(t *testing.T) *FileRepository {
	t.Helper()

	chars, err := storage.NewFileStore[*Character](t.TempDir())
	if err != nil {
		t.Fatalf("creating character store: %v", err)
	}
	invs, err := storage.NewFileStore[*Inventory](t.TempDir())
	if err != nil {
		t.Fatalf("creating inventory store: %v", err)
	}
	enemies, err := storage.NewFileStore[*EnemyTemplate](t.TempDir())
	if err != nil {
		t.Fatalf("creating enemy store: %v", err)
	}
	items, err := storage.NewFileStore[*ItemTemplate](t.TempDir())
	if err != nil {
		t.Fatalf("creating item store: %v", err)
	}
	loot, err := storage.NewFileStore[*LootTable](t.TempDir())
	if err != nil {
		t.Fatalf("creating loot store: %v", err)
	}

	mustSave := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}
	mustSave(chars.Save("hero-1", &Character{OwnerId: "alice", Name: "Hero", Level: 1, BaseHealth: 100, Equipped: []string{"sword", "shield"}}))
	mustSave(chars.Save("hero-2", &Character{OwnerId: "alice", Name: "Sidekick", Level: 1, BaseHealth: 80}))
	mustSave(chars.Save("rogue-1", &Character{OwnerId: "bob", Name: "Rogue", Level: 1, BaseHealth: 70}))
	mustSave(items.Save("sword", sword))
	mustSave(items.Save("shield", shield))
	mustSave(items.Save("potion", potion))
	mustSave(enemies.Save("goblin", &EnemyTemplate{Name: "Goblin", MaxHealth: 30, Speed: 40}))

	return NewFileRepository(chars, invs, enemies, items, loot)
}

func TestFileRepository_FindCharactersByOwner(t *testing.T) {
	r := newTestFileRepository(t)

	chars, err := r.FindCharactersByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "count", len(chars), 2)
}

func TestFileRepository_FindMissing(t *testing.T) {
	r := newTestFileRepository(t)
	ctx := context.Background()

	_, err := r.FindEnemyTemplate(ctx, "dragon")
	testutil.AssertEqual(t, "enemy not found", errors.Is(err, ErrNotFound), true)
	_, err = r.FindLootTable(ctx, "dragon-hoard")
	testutil.AssertEqual(t, "loot not found", errors.Is(err, ErrNotFound), true)

	tmpl, err := r.FindEnemyTemplate(ctx, "goblin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "name", tmpl.Name, "Goblin")
}

func TestFileRepository_AddXp(t *testing.T) {
	r := newTestFileRepository(t)
	ctx := context.Background()

	level, err := r.AddXp(ctx, "hero-1", 350)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "level", level, 2)
	testutil.AssertEqual(t, "stored experience", r.Characters.Get("hero-1").Experience, 350)

	_, err = r.AddXp(ctx, "nobody", 10)
	testutil.AssertEqual(t, "missing character", errors.Is(err, ErrCharacterNotFound), true)
}

func TestFileRepository_AddItemToUser(t *testing.T) {
	r := newTestFileRepository(t)
	ctx := context.Background()

	item, err := r.AddItemToUser(ctx, "alice", "potion", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "quantity", item.Quantity, 4)

	_, err = r.AddItemToUser(ctx, "alice", "potion", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inv, err := r.GetInventory(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "slots", len(inv.Items), 1)
	testutil.AssertEqual(t, "stacked", inv.Items[0].Quantity, 6)

	_, err = r.AddItemToUser(ctx, "alice", "unknown", 1)
	testutil.AssertEqual(t, "unknown template", errors.Is(err, ErrNotFound), true)
}

func TestFileRepository_AddItemToUser_Full(t *testing.T) {
	r := newTestFileRepository(t)
	ctx := context.Background()

	err := r.Inventories.Save("bob", &Inventory{Capacity: 1, Items: []*InventoryItem{{Id: "x", TemplateId: "sword", Quantity: 1}}})
	if err != nil {
		t.Fatalf("seeding inventory: %v", err)
	}

	item, err := r.AddItemToUser(ctx, "bob", "shield", 1)
	testutil.AssertEqual(t, "full", errors.Is(err, ErrInventoryFull), true)
	if item != nil {
		t.Errorf("expected no item, got %+v", item)
	}
	testutil.AssertEqual(t, "unchanged", len(r.Inventories.Get("bob").Items), 1)
}

func TestFileRepository_CalculateEffectiveStats(t *testing.T) {
	r := newTestFileRepository(t)

	b, err := r.CalculateEffectiveStats(context.Background(), "hero-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "bonus", b, StatBonus{Attack: 5, Defense: 3})
}

func TestFileRepository_SortInventory(t *testing.T) {
	r := newTestFileRepository(t)
	ctx := context.Background()

	for _, id := range []string{"sword", "potion", "shield"} {
		if _, err := r.AddItemToUser(ctx, "alice", id, 1); err != nil {
			t.Fatalf("seeding %s: %v", id, err)
		}
	}

	inv, err := r.SortInventory(ctx, "alice", SortByName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "first", inv.Items[0].TemplateId, "potion")
	testutil.AssertEqual(t, "persisted order", r.Inventories.Get("alice").Items[2].TemplateId, "sword")
}
