package inventory

import (
	"strings"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

// Slot names an equip slot for items of power.
type Slot string

const (
	SlotHead  Slot = "head"
	SlotNeck  Slot = "neck"
	SlotBody  Slot = "body"
	SlotHands Slot = "hands"
	SlotBelt  Slot = "belt"
	SlotBoots Slot = "boots"
	// SlotRing is the declared slot of a ring; it resolves to SlotRing1 or SlotRing2.
	SlotRing  Slot = "ring"
	SlotRing1 Slot = "ring1"
	SlotRing2 Slot = "ring2"
)

// ringSlots are filled in order by items declaring SlotRing.
var ringSlots = []Slot{SlotRing1, SlotRing2}

// PowerLoadout is the resolved equip state of the items of power.
type PowerLoadout struct {
	// Equipped maps each claimed slot to the item in it.
	Equipped map[Slot]*character.Item
	// Unequipped holds unequipped items and items demoted by slot contention,
	// in insertion order.
	Unequipped []*character.Item
}

// ItemIn returns the item occupying s, if any.
func (l PowerLoadout) ItemIn(s Slot) (*character.Item, bool) {
	it, ok := l.Equipped[s]
	return it, ok
}

// SlotOf returns the slot an equipped item resolved to.
func (l PowerLoadout) SlotOf(id string) (Slot, bool) {
	for s, it := range l.Equipped {
		if it.ID == id {
			return s, true
		}
	}
	return "", false
}

// ParseSlot lower-cases and trims s. Ring variants ("ring1", "Ring 2") all
// declare the generic ring slot.
func ParseSlot(s string) Slot {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
	if strings.HasPrefix(key, "ring") {
		return SlotRing
	}
	return Slot(key)
}

// ResolveItemsOfPower walks items in insertion order and assigns each equipped
// magic item to its slot. Rings take ring1 then ring2. An item whose slot is
// already taken, or that declares no slot, is demoted to Unequipped.
// Non-magic items are ignored.
//
// Postcondition: at most two rings and at most one item per other slot are equipped.
func ResolveItemsOfPower(items []*character.Item) PowerLoadout {
	out := PowerLoadout{Equipped: make(map[Slot]*character.Item)}
	for _, it := range items {
		if it == nil || it.MagicItem == nil {
			continue
		}
		if !it.MagicItem.Equipped {
			out.Unequipped = append(out.Unequipped, it)
			continue
		}
		slot, ok := freeSlot(out.Equipped, ParseSlot(it.MagicItem.Slot))
		if !ok {
			out.Unequipped = append(out.Unequipped, it)
			continue
		}
		out.Equipped[slot] = it
	}
	return out
}

// freeSlot returns the concrete slot declared can occupy, if one is free.
func freeSlot(taken map[Slot]*character.Item, declared Slot) (Slot, bool) {
	if declared == "" {
		return "", false
	}
	if declared == SlotRing {
		for _, s := range ringSlots {
			if _, used := taken[s]; !used {
				return s, true
			}
		}
		return "", false
	}
	if _, used := taken[declared]; used {
		return "", false
	}
	return declared, true
}
