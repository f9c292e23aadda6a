package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/geom"
)

// Kind names a client intent.
type Kind string

const (
	KindEnterZone     Kind = "enter_zone"
	KindLeaveZone     Kind = "leave_zone"
	KindMoveTo        Kind = "move_to"
	KindAttack        Kind = "attack"
	KindLootItem      Kind = "loot_item"
	KindLootArea      Kind = "loot_area"
	KindSortInventory Kind = "sort_inventory"
	// KindDisconnect is raised by the transport when a session ends.
	KindDisconnect Kind = "disconnect"
)

// Intent is a validated client command waiting for the next tick.
type Intent struct {
	Type         Kind        `json:"type"`
	Zone         string      `json:"zone,omitempty"`
	CharacterIds []string    `json:"character_ids,omitempty"`
	Point        *geom.Point `json:"point,omitempty"`
	TargetId     string      `json:"target_id,omitempty"`
	ItemId       string      `json:"item_id,omitempty"`
	Mode         string      `json:"mode,omitempty"`

	UserId     string    `json:"-"`
	SessionId  string    `json:"-"`
	ReceivedAt time.Time `json:"-"`
}

// Validate checks that the intent carries what its kind needs.
func (i *Intent) Validate() error {
	el := errors.NewErrorList()

	if i.UserId == "" {
		el.Add(fmt.Errorf("user is required"))
	}

	switch i.Type {
	case KindEnterZone, KindLootArea:
		if i.Zone == "" {
			el.Add(fmt.Errorf("zone is required"))
		}
	case KindLeaveZone, KindDisconnect:
	case KindMoveTo:
		if i.Zone == "" {
			el.Add(fmt.Errorf("zone is required"))
		}
		if i.Point == nil || !i.Point.Valid() {
			el.Add(fmt.Errorf("a valid point is required"))
		}
	case KindAttack:
		if i.Zone == "" {
			el.Add(fmt.Errorf("zone is required"))
		}
		if i.TargetId == "" {
			el.Add(fmt.Errorf("target_id is required"))
		}
	case KindLootItem:
		if i.Zone == "" {
			el.Add(fmt.Errorf("zone is required"))
		}
		if i.ItemId == "" {
			el.Add(fmt.Errorf("item_id is required"))
		}
	case KindSortInventory:
		if i.Mode == "" {
			el.Add(fmt.Errorf("mode is required"))
		}
	default:
		el.Add(fmt.Errorf("unknown intent type %q", i.Type))
	}

	return el.Err()
}

// Decode parses a client frame into an intent for userId. Clients cannot
// raise disconnects themselves.
func Decode(data []byte, userId, sessionId string, now time.Time) (Intent, error) {
	var i Intent
	if err := json.Unmarshal(data, &i); err != nil {
		return Intent{}, NewUserError(fmt.Sprintf("malformed command: %v", err))
	}
	if i.Type == KindDisconnect {
		return Intent{}, NewUserError("unknown intent type \"disconnect\"")
	}

	i.UserId = userId
	i.SessionId = sessionId
	i.ReceivedAt = now
	if err := i.Validate(); err != nil {
		return Intent{}, NewUserError(err.Error())
	}
	return i, nil
}
