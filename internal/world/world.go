package world

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/persistence"
)

// TemplateFinder resolves enemy templates for spawning.
type TemplateFinder interface {
	FindEnemyTemplate(ctx context.Context, id string) (*persistence.EnemyTemplate, error)
}

type zone struct {
	id string

	players     map[string]*PlayerSession
	playerOrder []string

	characters map[string]*RuntimeCharacter
	charOrder  []string

	enemies    map[string]*EnemyInstance
	enemyOrder []string

	nests     map[string]*SpawnNest
	nestOrder []string

	items     map[string]*DroppedItem
	itemOrder []string
}

func newZone(id string) *zone {
	return &zone{
		id:         id,
		players:    make(map[string]*PlayerSession),
		characters: make(map[string]*RuntimeCharacter),
		enemies:    make(map[string]*EnemyInstance),
		nests:      make(map[string]*SpawnNest),
		items:      make(map[string]*DroppedItem),
	}
}

// World is the single source of truth for all zone state. All access must go
// through its methods; reads return copies and every mutation queues the
// matching diff.
type World struct {
	mu    sync.Mutex
	zones map[string]*zone
	order []string

	events    events.Queue
	templates TemplateFinder
	tuning    Tuning
	now       func() time.Time
	rng       *rand.Rand
	newId     func() string
}

// New creates an empty World that reports changes to q.
func New(q events.Queue, templates TemplateFinder, opts ...WorldOpt) *World {
	w := &World{
		zones:     make(map[string]*zone),
		events:    q,
		templates: templates,
		tuning:    DefaultTuning(),
		now:       time.Now,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		newId:     defaultId,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Tuning returns the constants this world was built with.
func (w *World) Tuning() Tuning {
	return w.tuning
}

// Now returns the world clock.
func (w *World) Now() time.Time {
	return w.now()
}

// EnsureZone creates the zone if it does not exist yet. It reports whether
// the zone was created.
func (w *World) EnsureZone(zoneId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, created := w.ensureZone(zoneId)
	return created
}

func (w *World) ensureZone(zoneId string) (*zone, bool) {
	if z, ok := w.zones[zoneId]; ok {
		return z, false
	}
	z := newZone(zoneId)
	w.zones[zoneId] = z
	w.order = append(w.order, zoneId)
	return z, true
}

// ZoneIds returns every zone id in creation order.
func (w *World) ZoneIds() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.order)
}

// HasZone reports whether the zone exists.
func (w *World) HasZone(zoneId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.zones[zoneId]
	return ok
}

// AddPlayer registers a session and its characters in a zone, creating the
// zone on first entry.
func (w *World) AddPlayer(zoneId string, session PlayerSession, chars []RuntimeCharacter) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, _ := w.ensureZone(zoneId)
	if _, exists := z.players[session.UserId]; exists {
		return ErrPlayerExists
	}
	for _, c := range chars {
		if _, exists := z.characters[c.Id]; exists {
			return ErrCharacterConflict
		}
	}

	ps := session.clone()
	ps.CharacterIds = ps.CharacterIds[:0]
	if ps.JoinedAt.IsZero() {
		ps.JoinedAt = w.now()
	}

	for _, c := range chars {
		rc := c.Clone()
		rc.OwnerId = session.UserId
		if rc.State == "" {
			rc.State = StateIdle
		}
		z.characters[rc.Id] = &rc
		z.charOrder = append(z.charOrder, rc.Id)
		ps.CharacterIds = append(ps.CharacterIds, rc.Id)

		pos := rc.Anchor
		if rc.Position != nil {
			pos = *rc.Position
		}
		w.events.QueueSpawn(zoneId, events.SpawnNotice{
			Id:        rc.Id,
			Kind:      events.KindCharacter,
			OwnerId:   rc.OwnerId,
			Position:  pos,
			Health:    rc.CurrentHealth,
			MaxHealth: rc.BaseHealth,
		})
	}

	z.players[ps.UserId] = &ps
	z.playerOrder = append(z.playerOrder, ps.UserId)
	return nil
}

// RemovePlayer drops a session and all of its characters from the zone. The
// zone itself stays alive.
func (w *World) RemovePlayer(zoneId string, userId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return false
	}
	ps, ok := z.players[userId]
	if !ok {
		return false
	}

	for _, charId := range ps.CharacterIds {
		if _, ok := z.characters[charId]; !ok {
			continue
		}
		delete(z.characters, charId)
		z.charOrder = removeId(z.charOrder, charId)
		w.events.QueueDespawn(zoneId, events.DespawnNotice{
			Id:     charId,
			Kind:   string(events.KindCharacter),
			Reason: "left",
		})
	}

	delete(z.players, userId)
	z.playerOrder = removeId(z.playerOrder, userId)
	return true
}

// Player returns a copy of the session for a user in a zone.
func (w *World) Player(zoneId string, userId string) (PlayerSession, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return PlayerSession{}, false
	}
	ps, ok := z.players[userId]
	if !ok {
		return PlayerSession{}, false
	}
	return ps.clone(), true
}

// PlayerIds returns the users present in a zone in join order.
func (w *World) PlayerIds(zoneId string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	z, ok := w.zones[zoneId]
	if !ok {
		return nil
	}
	return slices.Clone(z.playerOrder)
}

// ZonesOfPlayer returns every zone the user currently has a session in.
func (w *World) ZonesOfPlayer(userId string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for _, id := range w.order {
		if _, ok := w.zones[id].players[userId]; ok {
			out = append(out, id)
		}
	}
	return out
}

func removeId(ids []string, id string) []string {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}
