package inventory

import (
	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

// Change is the outcome of an equip or attunement request. When Status is not
// issue.None the request was rejected and Updates is empty.
type Change struct {
	Status  issue.Kind
	Issue   *issue.Issue
	Slot    Slot
	Attuned bool
	Updates []character.Update
}

// Applied reports whether the request was accepted.
func (c Change) Applied() bool { return c.Status == issue.None }

func rejected(i issue.Issue) Change {
	return Change{Status: i.Kind, Issue: &i}
}

// CountAttuned returns the number of magic items currently attuned.
func CountAttuned(items []*character.Item) int {
	n := 0
	for _, it := range items {
		if it != nil && it.MagicItem != nil && it.MagicItem.Attunement {
			n++
		}
	}
	return n
}

// CanAttune reports whether one more item may be attuned under maxAttunements.
func CanAttune(items []*character.Item, maxAttunements int) bool {
	return CountAttuned(items) < maxAttunements
}

func findMagic(items []*character.Item, id string) (*character.Item, bool) {
	for _, it := range items {
		if it != nil && it.ID == id && it.MagicItem != nil {
			return it, true
		}
	}
	return nil, false
}

// Equip proposes equipping the magic item id. The item is attuned as well when
// capacity remains; otherwise it is equipped unattuned.
//
// Postcondition: items are not mutated. An unknown id yields
// issue.InvalidSelection; a full slot yields issue.CapacityExceeded. Equipping
// an already equipped item is accepted with no updates.
func Equip(items []*character.Item, id string, maxAttunements int) Change {
	it, ok := findMagic(items, id)
	if !ok {
		return rejected(issue.Invalid("items."+id, "no magic item with id %q", id))
	}
	loadout := ResolveItemsOfPower(items)
	if s, equipped := loadout.SlotOf(id); equipped {
		return Change{Slot: s, Attuned: it.MagicItem.Attunement}
	}

	declared := ParseSlot(it.MagicItem.Slot)
	slot, free := freeSlot(loadout.Equipped, declared)
	if !free {
		if declared == "" {
			return rejected(issue.Invalid("items."+id+".system.slot", "item declares no slot"))
		}
		return rejected(issue.Capacity("items."+id+".system.slot", "slot %q is full", declared))
	}

	ch := Change{Slot: slot, Attuned: it.MagicItem.Attunement}
	ch.Updates = append(ch.Updates, character.ItemUpdate(id, "system.equipped", it.MagicItem.Equipped, true))
	if !it.MagicItem.Attunement && CanAttune(items, maxAttunements) {
		ch.Attuned = true
		ch.Updates = append(ch.Updates, character.ItemUpdate(id, "system.attunement", false, true))
	}
	return ch
}

// Unequip proposes unequipping the magic item id. Unequipping ends its attunement.
func Unequip(items []*character.Item, id string) Change {
	it, ok := findMagic(items, id)
	if !ok {
		return rejected(issue.Invalid("items."+id, "no magic item with id %q", id))
	}
	var ch Change
	if it.MagicItem.Equipped {
		ch.Updates = append(ch.Updates, character.ItemUpdate(id, "system.equipped", true, false))
	}
	if it.MagicItem.Attunement {
		ch.Updates = append(ch.Updates, character.ItemUpdate(id, "system.attunement", true, false))
	}
	return ch
}

// ToggleAttunement proposes setting the attunement of id to target.
//
// Postcondition: when target is true and capacity is already met the request
// is rejected with issue.CapacityExceeded and the caller must revert any
// optimistic state. Setting the current value is accepted with no updates.
func ToggleAttunement(items []*character.Item, id string, target bool, maxAttunements int) Change {
	it, ok := findMagic(items, id)
	if !ok {
		return rejected(issue.Invalid("items."+id, "no magic item with id %q", id))
	}
	if it.MagicItem.Attunement == target {
		return Change{Attuned: target}
	}
	if target && !CanAttune(items, maxAttunements) {
		return rejected(issue.Capacity("items."+id+".system.attunement",
			"attunement capacity %d reached", maxAttunements))
	}
	return Change{
		Attuned: target,
		Updates: []character.Update{character.ItemUpdate(id, "system.attunement", !target, target)},
	}
}
