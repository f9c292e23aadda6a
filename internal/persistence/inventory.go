package persistence

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultInventoryCapacity is the slot count of a freshly created inventory.
const DefaultInventoryCapacity = 30

// Inventory is the persistent item storage shared by all of a user's
// characters.
type Inventory struct {
	Capacity int              `json:"capacity" bson:"capacity"`
	Items    []*InventoryItem `json:"items" bson:"items"`
}

// NewInventory creates an empty inventory with the default capacity.
func NewInventory() *Inventory {
	return &Inventory{Capacity: DefaultInventoryCapacity}
}

// Validate satisfies storage.ValidatingSpec.
func (inv *Inventory) Validate() error {
	if inv.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	if inv.Capacity > 0 && len(inv.Items) > inv.Capacity {
		return fmt.Errorf("%d items exceed capacity %d", len(inv.Items), inv.Capacity)
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without touching cached
// records until the write succeeds.
func (inv *Inventory) Clone() *Inventory {
	c := &Inventory{Capacity: inv.Capacity, Items: make([]*InventoryItem, 0, len(inv.Items))}
	for _, it := range inv.Items {
		cp := *it
		c.Items = append(c.Items, &cp)
	}
	return c
}

// Add places qty of a template into the inventory. Stackable templates top
// up existing stacks first; anything that does not fit in free slots fails
// the whole add with ErrInventoryFull. The returned item is the stack that
// received the last unit.
func (inv *Inventory) Add(templateId string, tmpl *ItemTemplate, qty int, now time.Time) (*InventoryItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	stackable := tmpl != nil && tmpl.Stackable
	maxStack := 1
	if stackable {
		maxStack = tmpl.MaxStack
		if maxStack <= 0 {
			maxStack = qty
			for _, it := range inv.Items {
				if it.TemplateId == templateId {
					maxStack += it.Quantity
				}
			}
		}
	}

	// Work out the plan before touching anything.
	remaining := qty
	topUps := map[*InventoryItem]int{}
	if stackable {
		for _, it := range inv.Items {
			if remaining == 0 {
				break
			}
			if it.TemplateId != templateId || it.Quantity >= maxStack {
				continue
			}
			n := min(maxStack-it.Quantity, remaining)
			topUps[it] = n
			remaining -= n
		}
	}
	newStacks := (remaining + maxStack - 1) / maxStack
	if inv.Capacity > 0 && len(inv.Items)+newStacks > inv.Capacity {
		return nil, ErrInventoryFull
	}

	var last *InventoryItem
	for _, it := range inv.Items {
		if n, ok := topUps[it]; ok {
			it.Quantity += n
			last = it
		}
	}
	for remaining > 0 {
		n := min(maxStack, remaining)
		last = &InventoryItem{
			Id:         uuid.NewString(),
			TemplateId: templateId,
			Quantity:   n,
			AcquiredAt: now,
		}
		inv.Items = append(inv.Items, last)
		remaining -= n
	}

	return last, nil
}

// SortMode selects the ordering applied by Sort.
type SortMode string

const (
	SortByName     SortMode = "name"
	SortByType     SortMode = "type"
	SortByQuantity SortMode = "quantity"
	SortByRecent   SortMode = "recent"
)

// ParseSortMode validates a client supplied sort mode.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(s)); m {
	case SortByName, SortByType, SortByQuantity, SortByRecent:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
	}
}

// Sort orders the inventory in place. lookup resolves template ids; unknown
// templates sort by id.
func (inv *Inventory) Sort(mode SortMode, lookup func(string) *ItemTemplate) error {
	name := func(it *InventoryItem) string {
		if t := lookup(it.TemplateId); t != nil {
			return strings.ToLower(t.Name)
		}
		return it.TemplateId
	}
	kind := func(it *InventoryItem) string {
		if t := lookup(it.TemplateId); t != nil {
			return t.Type
		}
		return ""
	}

	var cmp func(a, b *InventoryItem) int
	switch mode {
	case SortByName:
		cmp = func(a, b *InventoryItem) int { return strings.Compare(name(a), name(b)) }
	case SortByType:
		cmp = func(a, b *InventoryItem) int {
			if c := strings.Compare(kind(a), kind(b)); c != 0 {
				return c
			}
			return strings.Compare(name(a), name(b))
		}
	case SortByQuantity:
		cmp = func(a, b *InventoryItem) int {
			if a.Quantity != b.Quantity {
				return b.Quantity - a.Quantity
			}
			return strings.Compare(name(a), name(b))
		}
	case SortByRecent:
		cmp = func(a, b *InventoryItem) int { return b.AcquiredAt.Compare(a.AcquiredAt) }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSortMode, mode)
	}

	slices.SortStableFunc(inv.Items, cmp)
	return nil
}

// EffectiveStats sums the bonuses of the given equipped templates.
func EffectiveStats(equipped []*ItemTemplate) StatBonus {
	var b StatBonus
	for _, t := range equipped {
		if t == nil {
			continue
		}
		b.Attack += t.AttackBonus
		b.Defense += t.DefenseBonus
	}
	return b
}
