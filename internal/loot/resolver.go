package loot

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/pixil98/go-realm/internal/persistence"
)

// Drop is one item produced by a loot roll.
type Drop struct {
	ItemTemplateId string
	Quantity       int
}

// TableFinder looks up loot tables by id.
type TableFinder interface {
	FindLootTable(ctx context.Context, id string) (*persistence.LootTable, error)
}

// Resolver rolls loot tables.
type Resolver struct {
	tables TableFinder
	rng    *rand.Rand
}

// NewResolver creates a Resolver. A nil rng uses a randomly seeded source.
func NewResolver(tables TableFinder, rng *rand.Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Resolver{tables: tables, rng: rng}
}

// CalculateLootDrops rolls every entry of the table independently. A missing
// table or an empty id yields no drops.
func (r *Resolver) CalculateLootDrops(ctx context.Context, tableId string) []Drop {
	if tableId == "" {
		return nil
	}

	table, err := r.tables.FindLootTable(ctx, tableId)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			slog.WarnContext(ctx, "loading loot table", "table", tableId, "error", err)
		}
		return nil
	}
	if table == nil {
		return nil
	}

	return Roll(table, r.rng)
}

// Roll evaluates each entry with one uniform percentage roll in [0, 100).
// An entry drops when roll < drop chance, so 0 never drops and 100 always
// does; quantity is uniform in [min, max].
func Roll(table *persistence.LootTable, rng *rand.Rand) []Drop {
	var drops []Drop
	for _, e := range table.Entries {
		roll := rng.Float64() * 100
		if roll >= e.DropChance {
			continue
		}

		lo, hi := e.MinQuantity, e.MaxQuantity
		if lo < 1 {
			lo = 1
		}
		if hi < lo {
			hi = lo
		}
		drops = append(drops, Drop{
			ItemTemplateId: e.Item,
			Quantity:       lo + rng.IntN(hi-lo+1),
		})
	}
	return drops
}
