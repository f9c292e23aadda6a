package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-realm/internal/commands"
	"github.com/pixil98/go-realm/internal/geom"
	"github.com/pixil98/go-realm/internal/persistence"
	"github.com/pixil98/go-realm/internal/world"
)

// ErrorMessage is sent to a single user when an intent could not be carried
// out.
type ErrorMessage struct {
	Type    string `json:"type"`
	Intent  string `json:"intent,omitempty"`
	Message string `json:"message"`
}

// InventoryMessage carries a user's inventory.
type InventoryMessage struct {
	Type     string                       `json:"type"`
	Mode     string                       `json:"mode,omitempty"`
	Capacity int                          `json:"capacity"`
	Items    []*persistence.InventoryItem `json:"items"`
}

// applyIntents runs every queued intent before any zone advances.
func (s *Simulation) applyIntents(ctx context.Context) {
	for _, in := range s.queue.Drain() {
		s.applyIntent(ctx, in)
	}
}

func (s *Simulation) applyIntent(ctx context.Context, in commands.Intent) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "intent failed", "type", in.Type, "user", in.UserId, "panic", fmt.Sprint(r))
		}
	}()

	var err error
	switch in.Type {
	case commands.KindEnterZone:
		err = s.enterZone(ctx, in)
	case commands.KindLeaveZone, commands.KindDisconnect:
		s.leave(ctx, in)
	case commands.KindMoveTo:
		for _, c := range s.selectCharacters(in) {
			s.world.SetCharacterMoveTarget(in.Zone, c.Id, *in.Point)
		}
	case commands.KindAttack:
		for _, c := range s.selectCharacters(in) {
			s.world.SetCharacterAttackTarget(in.Zone, c.Id, in.TargetId)
		}
	case commands.KindLootItem:
		s.lootItem(in)
	case commands.KindLootArea:
		for _, c := range s.selectCharacters(in) {
			s.world.SetCharacterLootArea(in.Zone, c.Id)
		}
	case commands.KindSortInventory:
		err = s.sortInventory(ctx, in)
	default:
		err = commands.NewUserError(fmt.Sprintf("unknown intent type %q", in.Type))
	}

	if err != nil {
		slog.WarnContext(ctx, "intent rejected", "type", in.Type, "user", in.UserId, "error", err)
		s.sendError(in, err)
	}
}

func (s *Simulation) sendError(in commands.Intent, err error) {
	msg := ErrorMessage{Type: "error", Intent: string(in.Type), Message: err.Error()}
	if sendErr := s.batcher.SendToPlayer(in.UserId, msg); sendErr != nil {
		slog.Warn("sending error to user", "user", in.UserId, "error", sendErr)
	}
}

// enterZone hydrates the user's characters into the zone and sends them the
// zone snapshot.
func (s *Simulation) enterZone(ctx context.Context, in commands.Intent) error {
	if _, ok := s.world.Player(in.Zone, in.UserId); !ok {
		records, err := s.repo.FindCharactersByOwner(ctx, in.UserId)
		if err != nil {
			return fmt.Errorf("loading characters: %w", err)
		}

		ids := make([]string, 0, len(records))
		for id := range records {
			if len(in.CharacterIds) == 0 || slices.Contains(in.CharacterIds, id) {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return commands.NewUserError("no characters to enter with")
		}
		slices.Sort(ids)

		chars := make([]world.RuntimeCharacter, 0, len(ids))
		for _, id := range ids {
			bonus, err := s.repo.CalculateEffectiveStats(ctx, id)
			if err != nil {
				slog.WarnContext(ctx, "calculating effective stats", "character", id, "error", err)
			}
			chars = append(chars, s.hydrate(id, records[id], bonus))
		}

		sessionId := in.SessionId
		if sessionId == "" {
			sessionId = uuid.NewString()
		}
		err = s.world.AddPlayer(in.Zone, world.PlayerSession{UserId: in.UserId, SessionId: sessionId, JoinedAt: in.ReceivedAt}, chars)
		if err != nil {
			return fmt.Errorf("entering zone %s: %w", in.Zone, err)
		}
		slog.InfoContext(ctx, "player entered zone", "zone", in.Zone, "user", in.UserId, "characters", len(chars))

		if _, err := s.spawner.PopulateZone(ctx, in.Zone); err != nil {
			slog.ErrorContext(ctx, "populating zone", "zone", in.Zone, "error", err)
		}
	}

	snap, ok := s.world.Snapshot(in.Zone)
	if !ok {
		return world.ErrZoneNotFound
	}
	return s.batcher.SendToPlayer(in.UserId, snap)
}

// hydrate builds the runtime projection of a persisted character. The
// position stays unset until the first tick places it.
func (s *Simulation) hydrate(id string, c *persistence.Character, bonus persistence.StatBonus) world.RuntimeCharacter {
	t := s.tuning

	attackSpeed := t.DefaultAttackSpeed
	if c.AttackSpeedMs > 0 {
		attackSpeed = time.Duration(c.AttackSpeedMs) * time.Millisecond
	}

	return world.RuntimeCharacter{
		Id:               id,
		OwnerId:          c.OwnerId,
		Name:             c.Name,
		Level:            c.Level,
		Anchor:           t.SpawnPoint,
		State:            world.StateIdle,
		CurrentHealth:    c.BaseHealth,
		BaseHealth:       c.BaseHealth,
		BaseAttack:       c.BaseAttack,
		BaseDefense:      c.BaseDefense,
		EffectiveAttack:  c.BaseAttack + bonus.Attack,
		EffectiveDefense: c.BaseDefense + bonus.Defense,
		AttackRange:      orDefault(c.AttackRange, t.DefaultAttackRange),
		AggroRange:       orDefault(c.AggroRange, t.DefaultAggroRange),
		LeashDistance:    orDefault(c.LeashDistance, t.DefaultLeashDistance),
		AttackSpeed:      attackSpeed,
	}
}

func (s *Simulation) leave(ctx context.Context, in commands.Intent) {
	zones := []string{in.Zone}
	if in.Zone == "" {
		zones = s.world.ZonesOfPlayer(in.UserId)
	}
	for _, zoneId := range zones {
		if s.world.RemovePlayer(zoneId, in.UserId) {
			slog.InfoContext(ctx, "player left zone", "zone", zoneId, "user", in.UserId, "reason", in.Type)
		}
	}
}

// selectCharacters returns the living characters an intent addresses: the
// listed ids, or every character the user has in the zone.
func (s *Simulation) selectCharacters(in commands.Intent) []world.RuntimeCharacter {
	var out []world.RuntimeCharacter
	for _, c := range s.world.CharactersOf(in.Zone, in.UserId) {
		if c.IsDead() {
			continue
		}
		if len(in.CharacterIds) > 0 && !slices.Contains(in.CharacterIds, c.Id) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// lootItem sends the addressed character closest to the item.
func (s *Simulation) lootItem(in commands.Intent) {
	item, ok := s.world.DroppedItem(in.Zone, in.ItemId)
	if !ok {
		return
	}

	var best string
	bestSq := 0.0
	for _, c := range s.selectCharacters(in) {
		pos := c.Anchor
		if c.Position != nil {
			pos = *c.Position
		}
		dsq := geom.DistSq(pos, item.Position)
		if best == "" || dsq < bestSq {
			best, bestSq = c.Id, dsq
		}
	}
	if best != "" {
		s.world.SetCharacterLootTarget(in.Zone, best, item.Id)
	}
}

func (s *Simulation) sortInventory(ctx context.Context, in commands.Intent) error {
	mode, err := persistence.ParseSortMode(in.Mode)
	if err != nil {
		return commands.NewUserError(err.Error())
	}
	inv, err := s.repo.SortInventory(ctx, in.UserId, mode)
	if err != nil {
		return fmt.Errorf("sorting inventory: %w", err)
	}
	return s.batcher.SendToPlayer(in.UserId, InventoryMessage{
		Type:     "inventory",
		Mode:     string(mode),
		Capacity: inv.Capacity,
		Items:    inv.Items,
	})
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
