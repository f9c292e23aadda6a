package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoTimeout = 5 * time.Second

// MongoRepository stores characters, inventories and templates in MongoDB.
// Every document uses the record id as its _id.
type MongoRepository struct {
	client *mongo.Client

	characters     *mongo.Collection
	inventories    *mongo.Collection
	enemyTemplates *mongo.Collection
	itemTemplates  *mongo.Collection
	lootTables     *mongo.Collection

	timeout time.Duration
	now     func() time.Time
}

type characterDoc struct {
	Id        string `bson:"_id"`
	Character `bson:",inline"`
}

type inventoryDoc struct {
	Id        string `bson:"_id"`
	Inventory `bson:",inline"`
}

type enemyTemplateDoc struct {
	Id            string `bson:"_id"`
	EnemyTemplate `bson:",inline"`
}

type itemTemplateDoc struct {
	Id           string `bson:"_id"`
	ItemTemplate `bson:",inline"`
}

type lootTableDoc struct {
	Id        string `bson:"_id"`
	LootTable `bson:",inline"`
}

// NewMongoRepository connects to uri, pings the server and ensures indexes.
func NewMongoRepository(ctx context.Context, uri, database string, timeout time.Duration) (*MongoRepository, error) {
	if timeout <= 0 {
		timeout = defaultMongoTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	r := newMongoRepository(client.Database(database), timeout)

	_, err = r.characters.Indexes().CreateOne(cctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating owner_id index: %w", err)
	}

	return r, nil
}

func newMongoRepository(db *mongo.Database, timeout time.Duration) *MongoRepository {
	return &MongoRepository{
		client:         db.Client(),
		characters:     db.Collection("characters"),
		inventories:    db.Collection("inventories"),
		enemyTemplates: db.Collection("enemy_templates"),
		itemTemplates:  db.Collection("item_templates"),
		lootTables:     db.Collection("loot_tables"),
		timeout:        timeout,
		now:            time.Now,
	}
}

// Close disconnects the client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) findOne(ctx context.Context, coll *mongo.Collection, id string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %q: %w", coll.Name(), id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("finding %s %q: %w", coll.Name(), id, err)
	}
	return nil
}

func (r *MongoRepository) FindEnemyTemplate(ctx context.Context, id string) (*EnemyTemplate, error) {
	var doc enemyTemplateDoc
	if err := r.findOne(ctx, r.enemyTemplates, id, &doc); err != nil {
		return nil, err
	}
	return &doc.EnemyTemplate, nil
}

func (r *MongoRepository) FindAllEnemyTemplates(ctx context.Context) (map[string]*EnemyTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.enemyTemplates.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing enemy templates: %w", err)
	}
	var docs []enemyTemplateDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding enemy templates: %w", err)
	}

	out := make(map[string]*EnemyTemplate, len(docs))
	for i := range docs {
		out[docs[i].Id] = &docs[i].EnemyTemplate
	}
	return out, nil
}

func (r *MongoRepository) FindItemTemplate(ctx context.Context, id string) (*ItemTemplate, error) {
	var doc itemTemplateDoc
	if err := r.findOne(ctx, r.itemTemplates, id, &doc); err != nil {
		return nil, err
	}
	return &doc.ItemTemplate, nil
}

func (r *MongoRepository) FindLootTable(ctx context.Context, id string) (*LootTable, error) {
	var doc lootTableDoc
	if err := r.findOne(ctx, r.lootTables, id, &doc); err != nil {
		return nil, err
	}
	return &doc.LootTable, nil
}

func (r *MongoRepository) FindCharactersByOwner(ctx context.Context, ownerId string) (map[string]*Character, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.characters.Find(ctx, bson.M{"owner_id": ownerId})
	if err != nil {
		return nil, fmt.Errorf("listing characters of %s: %w", ownerId, err)
	}
	var docs []characterDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding characters of %s: %w", ownerId, err)
	}

	out := make(map[string]*Character, len(docs))
	for i := range docs {
		out[docs[i].Id] = &docs[i].Character
	}
	return out, nil
}

// AddXp increments experience in place so concurrent grants never overwrite
// each other, then raises the stored level if the new total crosses a
// threshold.
func (r *MongoRepository) AddXp(ctx context.Context, characterId string, amount int) (int, error) {
	if amount <= 0 {
		var doc characterDoc
		if err := r.findOne(ctx, r.characters, characterId, &doc); err != nil {
			if errors.Is(err, ErrNotFound) {
				return 0, fmt.Errorf("%w: %s", ErrCharacterNotFound, characterId)
			}
			return 0, err
		}
		return doc.Level, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc characterDoc
	err := r.characters.FindOneAndUpdate(ctx,
		bson.M{"_id": characterId},
		bson.M{"$inc": bson.M{"experience": amount}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("%w: %s", ErrCharacterNotFound, characterId)
	}
	if err != nil {
		return 0, fmt.Errorf("updating experience of %s: %w", characterId, err)
	}

	level := LevelForExp(doc.Experience)
	if level <= doc.Level {
		return doc.Level, nil
	}
	_, err = r.characters.UpdateOne(ctx,
		bson.M{"_id": characterId, "level": bson.M{"$lt": level}},
		bson.M{"$set": bson.M{"level": level}},
	)
	if err != nil {
		return 0, fmt.Errorf("updating level of %s: %w", characterId, err)
	}
	return level, nil
}

func (r *MongoRepository) AddItemToUser(ctx context.Context, ownerId, templateId string, qty int) (*InventoryItem, error) {
	tmpl, err := r.FindItemTemplate(ctx, templateId)
	if err != nil {
		return nil, err
	}

	inv, err := r.GetInventory(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	item, err := inv.Add(templateId, tmpl, qty, r.now())
	if err != nil {
		return nil, err
	}
	if err := r.saveInventory(ctx, ownerId, inv); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *MongoRepository) CalculateEffectiveStats(ctx context.Context, characterId string) (StatBonus, error) {
	var doc characterDoc
	if err := r.findOne(ctx, r.characters, characterId, &doc); err != nil {
		if errors.Is(err, ErrNotFound) {
			return StatBonus{}, fmt.Errorf("%w: %s", ErrCharacterNotFound, characterId)
		}
		return StatBonus{}, err
	}

	equipped := make([]*ItemTemplate, 0, len(doc.Equipped))
	for _, id := range doc.Equipped {
		t, err := r.FindItemTemplate(ctx, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return StatBonus{}, err
		}
		equipped = append(equipped, t)
	}
	return EffectiveStats(equipped), nil
}

func (r *MongoRepository) GetInventory(ctx context.Context, ownerId string) (*Inventory, error) {
	var doc inventoryDoc
	err := r.findOne(ctx, r.inventories, ownerId, &doc)
	if errors.Is(err, ErrNotFound) {
		return NewInventory(), nil
	}
	if err != nil {
		return nil, err
	}
	return &doc.Inventory, nil
}

func (r *MongoRepository) SortInventory(ctx context.Context, ownerId string, mode SortMode) (*Inventory, error) {
	inv, err := r.GetInventory(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	templates := map[string]*ItemTemplate{}
	for _, it := range inv.Items {
		if _, ok := templates[it.TemplateId]; ok {
			continue
		}
		t, err := r.FindItemTemplate(ctx, it.TemplateId)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		templates[it.TemplateId] = t
	}

	if err := inv.Sort(mode, func(id string) *ItemTemplate { return templates[id] }); err != nil {
		return nil, err
	}
	if err := r.saveInventory(ctx, ownerId, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *MongoRepository) saveInventory(ctx context.Context, ownerId string, inv *Inventory) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.inventories.ReplaceOne(ctx,
		bson.M{"_id": ownerId},
		inventoryDoc{Id: ownerId, Inventory: *inv},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saving inventory of %s: %w", ownerId, err)
	}
	return nil
}
