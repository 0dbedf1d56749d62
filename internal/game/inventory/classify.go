// Package inventory aggregates owned items: it buckets them by type, resolves
// equip-slot contention, totals armor per body location, tracks attunement
// capacity, and allocates armor-point reductions.
package inventory

import "github.com/cory-johannsen/ruleforge/internal/game/character"

// Buckets partitions items by type. Order inside each bucket is insertion order.
type Buckets struct {
	Skills     []*character.Item
	Weapons    []*character.Item
	Armor      []*character.Item
	MagicItems []*character.Item
	Species    []*character.Item
	Paths      []*character.Item
	Spells     []*character.Item
	Talents    []*character.Item
	Gear       []*character.Item
	// Other holds items whose type is not recognized.
	Other []*character.Item
}

// Classify partitions items into Buckets.
//
// Postcondition: every item lands in exactly one bucket.
func Classify(items []*character.Item) Buckets {
	var b Buckets
	for _, it := range items {
		if it == nil {
			continue
		}
		switch it.Type {
		case character.TypeSkill:
			b.Skills = append(b.Skills, it)
		case character.TypeWeapon:
			b.Weapons = append(b.Weapons, it)
		case character.TypeArmor:
			b.Armor = append(b.Armor, it)
		case character.TypeMagicItem:
			b.MagicItems = append(b.MagicItems, it)
		case character.TypeSpecies:
			b.Species = append(b.Species, it)
		case character.TypePath:
			b.Paths = append(b.Paths, it)
		case character.TypeSpell:
			b.Spells = append(b.Spells, it)
		case character.TypeTalent:
			b.Talents = append(b.Talents, it)
		case character.TypeGear:
			b.Gear = append(b.Gear, it)
		default:
			b.Other = append(b.Other, it)
		}
	}
	return b
}

// Len returns the number of classified items.
func (b Buckets) Len() int {
	return len(b.Skills) + len(b.Weapons) + len(b.Armor) + len(b.MagicItems) +
		len(b.Species) + len(b.Paths) + len(b.Spells) + len(b.Talents) + len(b.Gear) + len(b.Other)
}
