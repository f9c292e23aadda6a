package events

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Publisher delivers encoded payloads to the transport.
type Publisher interface {
	PublishToZone(zoneId string, data []byte) error
	PublishToPlayer(userId string, data []byte) error
}

// Queue is the write side of the batcher used by the zone store and the
// simulation.
type Queue interface {
	QueueEntity(zoneId string, u EntityUpdate)
	QueueCombat(zoneId string, a CombatAction)
	QueueDeath(zoneId string, d DeathNotice)
	QueueSpawn(zoneId string, s SpawnNotice)
	QueueDespawn(zoneId string, d DespawnNotice)
	QueueItemDrop(zoneId string, d ItemDrop)
	QueueItemPickup(zoneId string, p ItemPickup)
}

type pending struct {
	order    []string
	entities map[string]*EntityUpdate
	batch    Batch
}

// Batcher accumulates per-zone diffs and publishes them once per flush.
// Entity diffs for the same id are coalesced, latest value wins.
type Batcher struct {
	mu    sync.Mutex
	pub   Publisher
	zones map[string]*pending
	ticks map[string]uint64
}

// NewBatcher creates a Batcher publishing through pub.
func NewBatcher(pub Publisher) *Batcher {
	return &Batcher{
		pub:   pub,
		zones: make(map[string]*pending),
		ticks: make(map[string]uint64),
	}
}

func (b *Batcher) zone(zoneId string) *pending {
	p, ok := b.zones[zoneId]
	if !ok {
		p = &pending{entities: make(map[string]*EntityUpdate)}
		b.zones[zoneId] = p
	}
	return p
}

func (b *Batcher) QueueEntity(zoneId string, u EntityUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.zone(zoneId)
	key := string(u.Kind) + ":" + u.Id
	if e, ok := p.entities[key]; ok {
		e.merge(u)
		return
	}
	cp := u
	p.entities[key] = &cp
	p.order = append(p.order, key)
}

func (b *Batcher) QueueCombat(zoneId string, a CombatAction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.zone(zoneId)
	p.batch.Combat = append(p.batch.Combat, a)
}

func (b *Batcher) QueueDeath(zoneId string, d DeathNotice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.zone(zoneId)
	p.batch.Deaths = append(p.batch.Deaths, d)
}

func (b *Batcher) QueueSpawn(zoneId string, s SpawnNotice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.zone(zoneId)
	p.batch.Spawns = append(p.batch.Spawns, s)
}

func (b *Batcher) QueueDespawn(zoneId string, d DespawnNotice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.zone(zoneId)
	p.batch.Despawns = append(p.batch.Despawns, d)
}

func (b *Batcher) QueueItemDrop(zoneId string, d ItemDrop) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.zone(zoneId)
	p.batch.ItemDrops = append(p.batch.ItemDrops, d)
}

func (b *Batcher) QueueItemPickup(zoneId string, pk ItemPickup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.zone(zoneId)
	p.batch.ItemPickups = append(p.batch.ItemPickups, pk)
}

// Take removes and returns the pending batch of a zone without publishing.
// The tick counter advances even for empty batches.
func (b *Batcher) Take(zoneId string) Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ticks[zoneId]++
	p, ok := b.zones[zoneId]
	if !ok {
		return Batch{Type: "tick", Zone: zoneId, Tick: b.ticks[zoneId]}
	}
	delete(b.zones, zoneId)

	batch := p.batch
	batch.Type = "tick"
	batch.Zone = zoneId
	batch.Tick = b.ticks[zoneId]
	for _, key := range p.order {
		batch.Entities = append(batch.Entities, *p.entities[key])
	}
	return batch
}

// Flush publishes everything queued for the zone since the previous flush.
// Empty batches are not published.
func (b *Batcher) Flush(zoneId string) error {
	batch := b.Take(zoneId)
	if batch.Empty() {
		return nil
	}

	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encoding batch for zone %s: %w", zoneId, err)
	}
	if err := b.pub.PublishToZone(zoneId, data); err != nil {
		return fmt.Errorf("publishing batch for zone %s: %w", zoneId, err)
	}
	return nil
}

// SendToPlayer encodes v and publishes it to a single user.
func (b *Batcher) SendToPlayer(userId string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message for %s: %w", userId, err)
	}
	return b.pub.PublishToPlayer(userId, data)
}
