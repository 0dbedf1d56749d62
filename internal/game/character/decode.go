package character

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

type characterSystem struct {
	Attributes        Attributes              `mapstructure:"attributes"`
	Defenses          Defenses                `mapstructure:"defenses"`
	HP                Gauge                   `mapstructure:"hp"`
	Sanity            Gauge                   `mapstructure:"sanity"`
	NaturalDeflection map[Location]Deflection `mapstructure:"naturalDeflection"`
	Species           string                  `mapstructure:"species"`
	Level             int                     `mapstructure:"level"`
	Experience        int                     `mapstructure:"experience"`
}

func decodeInto(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Decode maps a normalized character record into the typed model.
//
// Precondition: rec must be the output of Normalize.
// Postcondition: returns a Character and its Inventory, or a non-nil error
// naming the field mapstructure rejected.
func Decode(rec Record) (*Character, *Inventory, error) {
	sysMap, _ := asMap(rec["system"])
	var sys characterSystem
	if err := decodeInto(sysMap, &sys); err != nil {
		return nil, nil, fmt.Errorf("decoding character system: %w", err)
	}
	var flags Flags
	if fm, ok := asMap(rec["flags"]); ok {
		if err := decodeInto(fm, &flags); err != nil {
			return nil, nil, fmt.Errorf("decoding character flags: %w", err)
		}
	}
	id, _ := rec["_id"].(string)
	name, _ := rec["name"].(string)
	c := &Character{
		ID:                id,
		Name:              name,
		Level:             sys.Level,
		Experience:        sys.Experience,
		Species:           sys.Species,
		Attributes:        sys.Attributes,
		Defenses:          sys.Defenses,
		NaturalDeflection: sys.NaturalDeflection,
		HP:                sys.HP,
		Sanity:            sys.Sanity,
		Flags:             flags,
	}
	if c.NaturalDeflection == nil {
		c.NaturalDeflection = make(map[Location]Deflection, len(BodyParts))
	}

	inv := NewInventory()
	list, _ := rec["items"].([]any)
	for i, raw := range list {
		m, ok := asMap(raw)
		if !ok {
			continue
		}
		it, err := DecodeItem(Record(m))
		if err != nil {
			return nil, nil, fmt.Errorf("decoding item %d: %w", i, err)
		}
		if err := inv.Add(it); err != nil {
			return nil, nil, fmt.Errorf("decoding item %d: %w", i, err)
		}
	}
	return c, inv, nil
}

// DecodeItem maps a normalized item record into an Item with its typed payload.
//
// Precondition: rec must be the output of NormalizeItem (or part of a normalized character).
func DecodeItem(rec Record) (*Item, error) {
	it := &Item{}
	it.ID, _ = rec["_id"].(string)
	it.Name, _ = rec["name"].(string)
	typ, _ := rec["type"].(string)
	it.Type = ItemType(typ)
	sys, _ := asMap(rec["system"])
	it.Data = sys

	var err error
	switch it.Type {
	case TypeSkill:
		it.Skill = &Skill{}
		err = decodeInto(sys, it.Skill)
	case TypeWeapon:
		it.Weapon = &Weapon{}
		err = decodeInto(sys, it.Weapon)
	case TypeArmor:
		it.Armor = &Armor{}
		err = decodeInto(sys, it.Armor)
	case TypeMagicItem:
		it.MagicItem = &MagicItem{}
		err = decodeInto(sys, it.MagicItem)
	case TypeSpell:
		it.Spell = &Spell{}
		err = decodeInto(sys, it.Spell)
	case TypeSpecies:
		it.Species = &Species{}
		err = decodeInto(sys, it.Species)
	case TypePath:
		it.Path = &Path{}
		err = decodeInto(sys, it.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload of %q: %w", it.Type, it.ID, err)
	}
	return it, nil
}

// Load normalizes rec and decodes it. It never fails: if decoding the
// normalized record is rejected, the issue is noted and a fully defaulted
// character with an empty inventory is returned instead.
func (n *Normalizer) Load(rec Record) (*Character, *Inventory, []issue.Issue) {
	norm, issues := n.Normalize(rec)
	c, inv, err := Decode(norm)
	if err == nil {
		return c, inv, issues
	}
	n.logger.Warn("decoding normalized record; falling back to defaults", zap.Error(err))
	issues = append(issues, issue.Malformed("", "record could not be decoded: %v", err))
	blank, _ := n.Normalize(Record{"_id": norm["_id"], "name": norm["name"]})
	c, inv, err = Decode(blank)
	if err != nil {
		// Decoding the default record cannot fail unless the model itself is broken.
		panic(fmt.Sprintf("character: default record failed to decode: %v", err))
	}
	return c, inv, issues
}
