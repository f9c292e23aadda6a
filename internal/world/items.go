package world

import (
	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/geom"
)

// AddDroppedItem puts loot on the ground and schedules its despawn.
func (w *World) AddDroppedItem(zoneId, itemTemplateId string, qty int, pos geom.Point) (DroppedItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok || qty <= 0 {
		return DroppedItem{}, false
	}

	now := w.now()
	item := &DroppedItem{
		Id:             w.newId(),
		ItemTemplateId: itemTemplateId,
		Position:       pos,
		Quantity:       qty,
		TimeDropped:    now,
		DespawnTime:    now.Add(w.tuning.ItemDespawnDuration),
	}
	z.items[item.Id] = item
	z.itemOrder = append(z.itemOrder, item.Id)

	w.events.QueueItemDrop(zoneId, events.ItemDrop{
		Id:             item.Id,
		ItemTemplateId: item.ItemTemplateId,
		Quantity:       item.Quantity,
		Position:       item.Position,
	})
	return *item, true
}

// RemoveDroppedItem takes an item off the ground.
func (w *World) RemoveDroppedItem(zoneId, itemId, reason string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return false
	}
	if _, ok := z.items[itemId]; !ok {
		return false
	}
	delete(z.items, itemId)
	z.itemOrder = removeId(z.itemOrder, itemId)

	w.events.QueueDespawn(zoneId, events.DespawnNotice{Id: itemId, Kind: "item", Reason: reason})
	return true
}

func (w *World) DroppedItem(zoneId, itemId string) (DroppedItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return DroppedItem{}, false
	}
	item, ok := z.items[itemId]
	if !ok {
		return DroppedItem{}, false
	}
	return *item, true
}

// DroppedItems lists the ground items of a zone in drop order.
func (w *World) DroppedItems(zoneId string) []DroppedItem {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return nil
	}
	out := make([]DroppedItem, 0, len(z.itemOrder))
	for _, id := range z.itemOrder {
		out = append(out, *z.items[id])
	}
	return out
}

// PickupDroppedItem removes an item that a character picked up and announces
// the pickup.
func (w *World) PickupDroppedItem(zoneId, itemId, charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return false
	}
	if _, ok := z.items[itemId]; !ok {
		return false
	}
	ownerId := ""
	if c, ok := z.characters[charId]; ok {
		ownerId = c.OwnerId
	}
	delete(z.items, itemId)
	z.itemOrder = removeId(z.itemOrder, itemId)

	w.events.QueueItemPickup(zoneId, events.ItemPickup{ItemId: itemId, CharacterId: charId, OwnerId: ownerId})
	w.events.QueueDespawn(zoneId, events.DespawnNotice{Id: itemId, Kind: "item", Reason: "picked_up"})
	return true
}
