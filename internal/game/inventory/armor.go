package inventory

import (
	"strings"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

// APTotal is a current/max armor-point pair.
type APTotal struct {
	Current int
	Max     int
}

// ArmorLoadout is the resolved armor state of a character.
type ArmorLoadout struct {
	// Equipped maps each normalized location (including the shared arms and
	// legs areas) to its equipped pieces in insertion order.
	Equipped map[character.Location][]*character.Item
	// Unequipped holds armor pieces that are not equipped.
	Unequipped []*character.Item
	// Totals holds the protection at each of character.ArmorLocations after
	// natural deflection is applied.
	Totals map[character.Location]APTotal
}

// NormalizeLocation maps a free-form armor location onto a Location by
// substring. Single limbs are matched before the shared limb pairs so "Left
// Arm" is leftarm while "Arms" and "Arms+" are arms.
func NormalizeLocation(s string) character.Location {
	key := strings.ToLower(s)
	compact := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	for _, limb := range []character.Location{character.LocLeftArm, character.LocRightArm, character.LocLeftLeg, character.LocRightLeg} {
		if strings.Contains(compact, string(limb)) {
			return limb
		}
	}
	switch {
	case strings.Contains(key, "head"):
		return character.LocHead
	case strings.Contains(key, "body"), strings.Contains(key, "torso"):
		return character.LocBody
	case strings.Contains(key, "arm"):
		return character.LocArms
	case strings.Contains(key, "leg"):
		return character.LocLegs
	case strings.Contains(key, "shield"):
		return character.LocShield
	}
	return character.LocOther
}

// ResolveArmor groups armor items by location and totals the protection at
// each fine-grained location.
//
// Direct pieces contribute currentAP and ap. A shared arms or legs piece
// contributes its derived AP for the side (falling back to ap) to current and
// its ap to max. Natural deflection is applied last, independently for current
// and max: stacking deflection adds, non-stacking deflection competes and the
// higher value wins. The shield has no natural deflection.
//
// Postcondition: Totals has an entry for every location in character.ArmorLocations.
func ResolveArmor(items []*character.Item, nd map[character.Location]character.Deflection) ArmorLoadout {
	out := ArmorLoadout{
		Equipped: make(map[character.Location][]*character.Item),
		Totals:   make(map[character.Location]APTotal, len(character.ArmorLocations)),
	}
	for _, it := range items {
		if it == nil || it.Armor == nil {
			continue
		}
		if !it.Armor.Equipped {
			out.Unequipped = append(out.Unequipped, it)
			continue
		}
		loc := NormalizeLocation(it.Armor.Location)
		out.Equipped[loc] = append(out.Equipped[loc], it)
	}

	for _, loc := range character.ArmorLocations {
		out.Totals[loc] = applyDeflection(out.armorAt(loc), nd[loc], loc.IsBodyPart())
	}
	return out
}

// ArmorAt returns the worn armor at loc before natural deflection.
func (l ArmorLoadout) ArmorAt(loc character.Location) APTotal {
	return l.armorAt(loc)
}

func (l ArmorLoadout) armorAt(loc character.Location) APTotal {
	var t APTotal
	for _, it := range l.Equipped[loc] {
		t.Current += it.Armor.CurrentAP
		t.Max += it.Armor.AP
	}
	if shared, left, ok := loc.Side(); ok {
		for _, it := range l.Equipped[shared] {
			t.Current += it.Armor.SideAP(left)
			t.Max += it.Armor.AP
		}
	}
	return t
}

func applyDeflection(armor APTotal, nd character.Deflection, hasND bool) APTotal {
	if !hasND {
		return armor
	}
	if nd.Stacks {
		return APTotal{Current: armor.Current + nd.Current, Max: armor.Max + nd.Max}
	}
	return APTotal{Current: max(armor.Current, nd.Current), Max: max(armor.Max, nd.Max)}
}
