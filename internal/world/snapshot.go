package world

// Snapshot captures everything visible in a zone.
func (w *World) Snapshot(zoneId string) (Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return Snapshot{}, false
	}

	snap := Snapshot{
		Type:       "snapshot",
		Zone:       zoneId,
		Characters: make([]CharacterSnapshot, 0, len(z.charOrder)),
		Enemies:    make([]EnemySnapshot, 0, len(z.enemyOrder)),
		Items:      make([]ItemSnapshot, 0, len(z.itemOrder)),
	}
	for _, id := range z.charOrder {
		c := z.characters[id].Clone()
		snap.Characters = append(snap.Characters, CharacterSnapshot{
			Id:        c.Id,
			OwnerId:   c.OwnerId,
			Name:      c.Name,
			Level:     c.Level,
			Position:  c.Position,
			State:     c.State,
			Health:    c.CurrentHealth,
			MaxHealth: c.BaseHealth,
		})
	}
	for _, id := range z.enemyOrder {
		e := z.enemies[id]
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			Id:         e.Id,
			TemplateId: e.TemplateId,
			Name:       e.Name,
			Position:   e.Position,
			State:      e.AIState,
			Health:     e.CurrentHealth,
			MaxHealth:  e.MaxHealth,
			Dying:      e.IsDying,
		})
	}
	for _, id := range z.itemOrder {
		it := z.items[id]
		snap.Items = append(snap.Items, ItemSnapshot{
			Id:             it.Id,
			ItemTemplateId: it.ItemTemplateId,
			Quantity:       it.Quantity,
			Position:       it.Position,
		})
	}
	return snap, true
}
