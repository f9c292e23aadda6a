package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func lookupString(raw bson.Raw, keys ...string) string {
	v, err := raw.LookupErr(keys...)
	if err != nil {
		return ""
	}
	s, _ := v.StringValueOK()
	return s
}

func lookupInt(raw bson.Raw, keys ...string) int64 {
	v, err := raw.LookupErr(keys...)
	if err != nil {
		return -1
	}
	n, _ := v.AsInt64OK()
	return n
}

func TestMongoDocs_FieldNames(t *testing.T) {
	tests := map[string]struct {
		doc       any
		expFields map[string]string
		expAbsent []string
	}{
		"character": {
			doc: characterDoc{Id: "hero-1", Character: Character{
				OwnerId:    "alice",
				Name:       "Hero",
				Level:      2,
				Experience: 350,
				BaseHealth: 100,
			}},
			expFields: map[string]string{
				"_id":         "hero-1",
				"owner_id":    "alice",
				"name":        "Hero",
				"level":       "2",
				"experience":  "350",
				"base_health": "100",
			},
			expAbsent: []string{"class", "equipped", "attack_speed_ms", "id"},
		},
		"inventory": {
			doc: inventoryDoc{Id: "alice", Inventory: Inventory{
				Capacity: 20,
				Items:    []*InventoryItem{{Id: "i1", TemplateId: "potion", Quantity: 3}},
			}},
			expFields: map[string]string{
				"_id":      "alice",
				"capacity": "20",
			},
		},
		"enemy template": {
			doc: enemyTemplateDoc{Id: "goblin", EnemyTemplate: EnemyTemplate{
				Name:      "Goblin",
				MaxHealth: 30,
				LootTable: "goblin-loot",
			}},
			expFields: map[string]string{
				"_id":        "goblin",
				"max_health": "30",
				"loot_table": "goblin-loot",
			},
			expAbsent: []string{"xp_reward", "zones"},
		},
		"loot table": {
			doc: lootTableDoc{Id: "goblin-loot"},
			expFields: map[string]string{
				"_id": "goblin-loot",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := bson.Marshal(tt.doc)
			testutil.AssertEqual(t, "err", err, nil)

			var got bson.M
			err = bson.Unmarshal(data, &got)
			testutil.AssertEqual(t, "err", err, nil)

			for key, exp := range tt.expFields {
				testutil.AssertEqual(t, key, fmt.Sprint(got[key]), exp)
			}
			for _, key := range tt.expAbsent {
				_, ok := got[key]
				testutil.AssertEqual(t, key+" omitted", ok, false)
			}
		})
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find enemy template", func(mt *mtest.T) {
		r := newMongoRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.enemy_templates", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "goblin"},
			{Key: "name", Value: "Goblin"},
			{Key: "max_health", Value: 30.0},
			{Key: "xp_reward", Value: 25},
		}))

		tmpl, err := r.FindEnemyTemplate(ctx, "goblin")
		testutil.AssertEqual(mt.T, "err", err, nil)
		testutil.AssertEqual(mt.T, "name", tmpl.Name, "Goblin")
		testutil.AssertEqual(mt.T, "max health", tmpl.MaxHealth, 30.0)
		testutil.AssertEqual(mt.T, "xp", tmpl.XpReward, 25)

		evt := mt.GetStartedEvent()
		testutil.AssertEqual(mt.T, "command", evt.CommandName, "find")
		testutil.AssertEqual(mt.T, "collection", lookupString(evt.Command, "find"), "enemy_templates")
		testutil.AssertEqual(mt.T, "filter", lookupString(evt.Command, "filter", "_id"), "goblin")
	})

	mt.Run("missing template", func(mt *mtest.T) {
		r := newMongoRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.enemy_templates", mtest.FirstBatch))

		_, err := r.FindEnemyTemplate(ctx, "dragon")
		testutil.AssertEqual(mt.T, "not found", errors.Is(err, ErrNotFound), true)
	})

	mt.Run("characters by owner", func(mt *mtest.T) {
		r := newMongoRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.characters", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "hero-1"}, {Key: "owner_id", Value: "alice"}, {Key: "name", Value: "Hero"}, {Key: "level", Value: 3}},
			bson.D{{Key: "_id", Value: "hero-2"}, {Key: "owner_id", Value: "alice"}, {Key: "name", Value: "Sidekick"}, {Key: "level", Value: 1}},
		))

		chars, err := r.FindCharactersByOwner(ctx, "alice")
		testutil.AssertEqual(mt.T, "err", err, nil)
		testutil.AssertEqual(mt.T, "count", len(chars), 2)
		testutil.AssertEqual(mt.T, "level", chars["hero-1"].Level, 3)
		testutil.AssertEqual(mt.T, "name", chars["hero-2"].Name, "Sidekick")

		evt := mt.GetStartedEvent()
		testutil.AssertEqual(mt.T, "filter", lookupString(evt.Command, "filter", "owner_id"), "alice")
	})

	mt.Run("load inventory", func(mt *mtest.T) {
		r := newMongoRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.inventories", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "alice"},
			{Key: "capacity", Value: 5},
			{Key: "items", Value: bson.A{
				bson.D{{Key: "id", Value: "i1"}, {Key: "template_id", Value: "potion"}, {Key: "quantity", Value: 3}},
			}},
		}))

		inv, err := r.GetInventory(ctx, "alice")
		testutil.AssertEqual(mt.T, "err", err, nil)
		testutil.AssertEqual(mt.T, "capacity", inv.Capacity, 5)
		testutil.AssertEqual(mt.T, "items", len(inv.Items), 1)
		testutil.AssertEqual(mt.T, "template", inv.Items[0].TemplateId, "potion")
		testutil.AssertEqual(mt.T, "quantity", inv.Items[0].Quantity, 3)
	})

	mt.Run("missing inventory starts empty", func(mt *mtest.T) {
		r := newMongoRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.inventories", mtest.FirstBatch))

		inv, err := r.GetInventory(ctx, "bob")
		testutil.AssertEqual(mt.T, "err", err, nil)
		testutil.AssertEqual(mt.T, "capacity", inv.Capacity, DefaultInventoryCapacity)
		testutil.AssertEqual(mt.T, "items", len(inv.Items), 0)
	})
}

func TestMongoRepository_AddXp(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	tests := map[string]struct {
		amount        int
		after         bson.D
		expLevel      int
		expLevelWrite bool
		expErr        error
	}{
		"below the next level": {
			amount: 50,
			after: bson.D{
				{Key: "_id", Value: "hero-1"}, {Key: "level", Value: 1}, {Key: "experience", Value: 150},
			},
			expLevel: 1,
		},
		"crosses a level": {
			amount: 50,
			after: bson.D{
				{Key: "_id", Value: "hero-1"}, {Key: "level", Value: 1}, {Key: "experience", Value: 320},
			},
			expLevel:      2,
			expLevelWrite: true,
		},
		"missing character": {
			amount: 50,
			expErr: ErrCharacterNotFound,
		},
	}

	for name, tt := range tests {
		mt.Run(name, func(mt *mtest.T) {
			r := newMongoRepository(mt.DB, time.Second)
			var value any
			if tt.after != nil {
				value = tt.after
			}
			mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: value}))
			if tt.expLevelWrite {
				mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
			}

			level, err := r.AddXp(context.Background(), "hero-1", tt.amount)

			inc := mt.GetStartedEvent()
			testutil.AssertEqual(mt.T, "command", inc.CommandName, "findAndModify")
			testutil.AssertEqual(mt.T, "filter", lookupString(inc.Command, "query", "_id"), "hero-1")
			testutil.AssertEqual(mt.T, "increment", lookupInt(inc.Command, "update", "$inc", "experience"), int64(tt.amount))

			if tt.expErr != nil {
				testutil.AssertEqual(mt.T, "err", errors.Is(err, tt.expErr), true)
				return
			}
			testutil.AssertEqual(mt.T, "err", err, nil)
			testutil.AssertEqual(mt.T, "level", level, tt.expLevel)

			set := mt.GetStartedEvent()
			testutil.AssertEqual(mt.T, "level written", set != nil, tt.expLevelWrite)
			if set != nil {
				testutil.AssertEqual(mt.T, "set level", lookupInt(set.Command, "updates", "0", "u", "$set", "level"), int64(tt.expLevel))
				testutil.AssertEqual(mt.T, "level guard", lookupInt(set.Command, "updates", "0", "q", "level", "$lt"), int64(tt.expLevel))
			}
		})
	}
}

func TestMongoRepository_AddItemToUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upserts the inventory", func(mt *mtest.T) {
		r := newMongoRepository(mt.DB, time.Second)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.item_templates", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "potion"}, {Key: "name", Value: "Potion"}, {Key: "type", Value: "consumable"},
				{Key: "stackable", Value: true}, {Key: "max_stack", Value: 10},
			}),
			mtest.CreateCursorResponse(0, "test.inventories", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		item, err := r.AddItemToUser(context.Background(), "alice", "potion", 3)
		testutil.AssertEqual(mt.T, "err", err, nil)
		testutil.AssertEqual(mt.T, "quantity", item.Quantity, 3)

		events := mt.GetAllStartedEvents()
		testutil.AssertEqual(mt.T, "commands", len(events), 3)

		save := events[2].Command
		testutil.AssertEqual(mt.T, "collection", lookupString(save, "update"), "inventories")
		testutil.AssertEqual(mt.T, "filter", lookupString(save, "updates", "0", "q", "_id"), "alice")
		testutil.AssertEqual(mt.T, "document id", lookupString(save, "updates", "0", "u", "_id"), "alice")
		testutil.AssertEqual(mt.T, "stored template", lookupString(save, "updates", "0", "u", "items", "0", "template_id"), "potion")
		upsert, _ := save.Lookup("updates", "0", "upsert").BooleanOK()
		testutil.AssertEqual(mt.T, "upsert", upsert, true)
	})

	mt.Run("unknown template", func(mt *mtest.T) {
		r := newMongoRepository(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.item_templates", mtest.FirstBatch))

		_, err := r.AddItemToUser(context.Background(), "alice", "relic", 1)
		testutil.AssertEqual(mt.T, "not found", errors.Is(err, ErrNotFound), true)
	})
}
