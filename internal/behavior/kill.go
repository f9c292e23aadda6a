package behavior

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-realm/internal/persistence"
	"github.com/pixil98/go-realm/internal/world"
)

// onKill grants experience to the killer's living party and drops the
// enemy's loot.
func (p *Processor) onKill(t *tick, e world.EnemyInstance) {
	ctx := t.ctx

	var xp int
	var table string
	tmpl, err := p.repo.FindEnemyTemplate(ctx, e.TemplateId)
	if err != nil {
		slog.WarnContext(ctx, "enemy template lookup failed", "zone", t.zoneId, "template", e.TemplateId, "error", err)
		xp = persistence.BaseExpForLevel(e.Level)
	} else {
		xp = tmpl.ExperienceReward()
		table = tmpl.LootTable
	}

	for _, member := range p.world.CharactersOf(t.zoneId, t.char.OwnerId) {
		if member.IsDead() {
			continue
		}
		p.grantXp(ctx, t.zoneId, member, xp)
	}

	if table == "" {
		return
	}
	for _, d := range p.loot.CalculateLootDrops(ctx, table) {
		pos := p.world.RandomPointInCircle(e.Position, p.tuning.LootScatter)
		p.world.AddDroppedItem(t.zoneId, d.ItemTemplateId, d.Quantity, pos)
	}
}

// grantXp persists xp plus anything still pending for the character. A
// failed write keeps the whole amount pending for the next attempt.
func (p *Processor) grantXp(ctx context.Context, zoneId string, c world.RuntimeCharacter, xp int) {
	p.mu.Lock()
	amount := p.pendingXp[c.Id] + xp
	delete(p.pendingXp, c.Id)
	p.mu.Unlock()
	if amount <= 0 {
		return
	}

	level, err := p.repo.AddXp(ctx, c.Id, amount)
	if err != nil {
		p.mu.Lock()
		p.pendingXp[c.Id] += amount
		p.mu.Unlock()
		slog.ErrorContext(ctx, "granting experience", "zone", zoneId, "character", c.Id, "amount", amount, "error", err)
		return
	}
	if level != c.Level {
		p.world.SetCharacterLevel(zoneId, c.Id, level)
		slog.InfoContext(ctx, "character leveled", "character", c.Id, "level", level)
	}
}

func (p *Processor) pendingExperience(charId string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pendingXp[charId]
}

// pickup moves a ground item into the owner's inventory. The ground item is
// only removed once the inventory accepted it.
func (p *Processor) pickup(t *tick, item world.DroppedItem) bool {
	ctx := t.ctx
	c := t.char

	_, err := p.repo.AddItemToUser(ctx, c.OwnerId, item.ItemTemplateId, item.Quantity)
	if err != nil {
		slog.WarnContext(ctx, "pickup failed", "zone", t.zoneId, "character", c.Id, "item", item.Id, "error", err)
		return false
	}

	if !p.world.PickupDroppedItem(t.zoneId, item.Id, c.Id) {
		slog.ErrorContext(ctx, "critical inventory inconsistency: item granted but not removed from ground",
			"zone", t.zoneId, "character", c.Id, "owner", c.OwnerId, "item", item.Id, "template", item.ItemTemplateId)
	}
	t.result.PickedUpItem = item.Id
	return true
}
