package character

import (
	"fmt"
	"strings"
)

// ItemType is the type discriminator of an owned item record.
type ItemType string

const (
	TypeSkill     ItemType = "skill"
	TypeWeapon    ItemType = "weapon"
	TypeArmor     ItemType = "armor"
	TypeMagicItem ItemType = "magicItem"
	TypeSpecies   ItemType = "species"
	TypePath      ItemType = "path"
	TypeSpell     ItemType = "spell"
	TypeTalent    ItemType = "talent"
	TypeGear      ItemType = "gear"
)

// itemTypeAliases maps lower-cased discriminators seen in records to their canonical type.
var itemTypeAliases = map[string]ItemType{
	"skill":       TypeSkill,
	"weapon":      TypeWeapon,
	"armor":       TypeArmor,
	"armour":      TypeArmor,
	"magicitem":   TypeMagicItem,
	"magic_item":  TypeMagicItem,
	"itemofpower": TypeMagicItem,
	"species":     TypeSpecies,
	"path":        TypePath,
	"spell":       TypeSpell,
	"talent":      TypeTalent,
	"gear":        TypeGear,
	"equipment":   TypeGear,
}

// CanonicalItemType maps a record discriminator onto a known ItemType.
//
// Postcondition: ok is false when s is not recognized; the trimmed input is returned as-is.
func CanonicalItemType(s string) (ItemType, bool) {
	s = strings.TrimSpace(s)
	if t, ok := itemTypeAliases[strings.ToLower(s)]; ok {
		return t, true
	}
	return ItemType(s), false
}

// Skill is the payload of a skill item.
type Skill struct {
	Rank      Rank   `mapstructure:"rank"`
	Category  string `mapstructure:"category"`
	Attribute string `mapstructure:"attribute"`
	MiscBonus int    `mapstructure:"miscBonus"`
	IsCore    bool   `mapstructure:"isCore"`
}

// Weapon is the payload of a weapon item.
type Weapon struct {
	Attribute  string   `mapstructure:"attribute"`
	Skill      string   `mapstructure:"skill"`
	MiscBonus  int      `mapstructure:"miscBonus"`
	Damage     int      `mapstructure:"damage"`
	DamageType string   `mapstructure:"damageType"`
	Critical   int      `mapstructure:"critical"`
	Qualities  []string `mapstructure:"qualities"`
	Melee      bool     `mapstructure:"melee"`
}

// HasQuality reports whether the weapon carries quality q, ignoring case.
func (w *Weapon) HasQuality(q string) bool {
	for _, have := range w.Qualities {
		if strings.EqualFold(strings.TrimSpace(have), q) {
			return true
		}
	}
	return false
}

// Armor is the payload of an armor item.
//
// DerivedLeftAP and DerivedRightAP are only meaningful for pieces covering a
// limb pair; nil means "not yet reduced" and reads as AP.
type Armor struct {
	AP             int    `mapstructure:"ap"`
	CurrentAP      int    `mapstructure:"currentAP"`
	Location       string `mapstructure:"location"`
	Equipped       bool   `mapstructure:"equipped"`
	DerivedLeftAP  *int   `mapstructure:"derivedLeftAP"`
	DerivedRightAP *int   `mapstructure:"derivedRightAP"`
}

// SideAP returns the remaining AP on one side of a limb-pair piece.
func (a *Armor) SideAP(left bool) int {
	p := a.DerivedRightAP
	if left {
		p = a.DerivedLeftAP
	}
	if p == nil {
		return a.AP
	}
	return *p
}

// MagicItem is the payload of a magic item (item of power).
type MagicItem struct {
	Slot       string `mapstructure:"slot"`
	Equipped   bool   `mapstructure:"equipped"`
	Attunement bool   `mapstructure:"attunement"`
}

// Spell is the payload of a spell item.
type Spell struct {
	Skill      string `mapstructure:"skill"`
	Difficulty int    `mapstructure:"difficulty"`
	Critical   int    `mapstructure:"critical"`
	Damage     int    `mapstructure:"damage"`
	DamageType string `mapstructure:"damageType"`
}

// SkillGrant names a skill and the rank a species or path grants in it.
type SkillGrant struct {
	Name      string `mapstructure:"name"`
	Rank      Rank   `mapstructure:"rank"`
	Attribute string `mapstructure:"attribute"`
	Category  string `mapstructure:"category"`
}

// Species is the payload of a species item.
type Species struct {
	Attributes map[string]int `mapstructure:"attributes"`
	Skills     []SkillGrant   `mapstructure:"skills"`
}

// Path is the payload of a path item.
type Path struct {
	Tier   int          `mapstructure:"tier"`
	Skills []SkillGrant `mapstructure:"skills"`
}

// Item is one owned item. Exactly one payload pointer matching Type is set for
// known types; Data always holds the normalized system payload.
type Item struct {
	ID   string
	Name string
	Type ItemType

	Skill     *Skill
	Weapon    *Weapon
	Armor     *Armor
	MagicItem *MagicItem
	Spell     *Spell
	Species   *Species
	Path      *Path

	Data map[string]any
}

// Inventory is an ordered arena of items indexed by id. Iteration order is
// insertion order, which every slot and armor rule depends on.
type Inventory struct {
	items []*Item
	index map[string]int
}

// NewInventory returns an Inventory holding items in the given order.
// Items with a duplicate id after the first are dropped.
func NewInventory(items ...*Item) *Inventory {
	inv := &Inventory{index: make(map[string]int, len(items))}
	for _, it := range items {
		_ = inv.Add(it)
	}
	return inv
}

// Add appends it to the inventory.
//
// Precondition: it must be non-nil.
// Postcondition: returns an error and leaves the inventory unchanged if it.ID is already present.
func (inv *Inventory) Add(it *Item) error {
	if _, exists := inv.index[it.ID]; exists {
		return fmt.Errorf("inventory: item id %q already present", it.ID)
	}
	inv.index[it.ID] = len(inv.items)
	inv.items = append(inv.items, it)
	return nil
}

// Get returns the item with the given id.
func (inv *Inventory) Get(id string) (*Item, bool) {
	i, ok := inv.index[id]
	if !ok {
		return nil, false
	}
	return inv.items[i], true
}

// All returns the items in insertion order. The slice is a copy; the items are shared.
func (inv *Inventory) All() []*Item {
	out := make([]*Item, len(inv.items))
	copy(out, inv.items)
	return out
}

// Len returns the number of items.
func (inv *Inventory) Len() int { return len(inv.items) }

// OfType returns the items of type t in insertion order.
func (inv *Inventory) OfType(t ItemType) []*Item {
	var out []*Item
	for _, it := range inv.items {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// SkillNamed returns the first skill whose name equals name, ignoring case.
func (inv *Inventory) SkillNamed(name string) (*Item, bool) {
	for _, it := range inv.items {
		if it.Type == TypeSkill && it.Skill != nil && strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return nil, false
}
