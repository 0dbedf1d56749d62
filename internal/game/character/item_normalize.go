package character

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// systemNormalizer repairs the system payload of one item type in place.
type systemNormalizer func(f *fixer, sys map[string]any, prefix string)

// itemNormalizers dispatches on the item type discriminator. Types absent from
// the table keep whatever object payload they carry.
var itemNormalizers = map[ItemType]systemNormalizer{
	TypeSkill:     normalizeSkill,
	TypeWeapon:    normalizeWeapon,
	TypeArmor:     normalizeArmor,
	TypeMagicItem: normalizeMagicItem,
	TypeSpell:     normalizeSpell,
	TypeSpecies:   normalizeSpecies,
	TypePath:      normalizePath,
}

func normalizeItem(f *fixer, it map[string]any, prefix string) map[string]any {
	f.str(it, "_id", prefix, "")
	f.str(it, "name", prefix, "")

	raw := f.str(it, "type", prefix, string(TypeGear))
	t, _ := CanonicalItemType(raw)
	if t == "" {
		f.note(join(prefix, "type"), "empty type; defaulted to %q", TypeGear)
		t = TypeGear
	}
	it["type"] = string(t)

	sysPrefix := join(prefix, "system")
	sys := f.object(it, "system", prefix)
	if fn, ok := itemNormalizers[t]; ok {
		fn(f, sys, sysPrefix)
	}
	return it
}

func normalizeSkill(f *fixer, sys map[string]any, prefix string) {
	f.rank(sys, "rank", prefix)
	f.str(sys, "category", prefix, "")
	f.token(sys, "attribute", prefix, "")
	f.integer(sys, "miscBonus", prefix, 0)
	f.boolean(sys, "isCore", prefix, false)
}

func normalizeWeapon(f *fixer, sys map[string]any, prefix string) {
	f.token(sys, "attribute", prefix, "none")
	f.str(sys, "skill", prefix, "")
	f.integer(sys, "miscBonus", prefix, 0)
	f.atLeast(sys, "damage", prefix, 0, 0)
	f.str(sys, "damageType", prefix, "")
	f.atLeast(sys, "critical", prefix, 0, 0)
	f.stringList(sys, "qualities", prefix)
	f.boolean(sys, "melee", prefix, true)
}

func normalizeArmor(f *fixer, sys map[string]any, prefix string) {
	ap := f.atLeast(sys, "ap", prefix, 0, 0)
	if _, present := sys["currentAP"]; present {
		f.within(sys, "currentAP", prefix, ap, 0, ap)
	} else {
		f.note(join(prefix, "currentAP"), "missing; defaulted to ap %d", ap)
		sys["currentAP"] = ap
	}
	f.str(sys, "location", prefix, "")
	f.boolean(sys, "equipped", prefix, false)
	for _, key := range []string{"derivedLeftAP", "derivedRightAP"} {
		v, present := sys[key]
		if !present {
			continue
		}
		if _, ok := asInt(v); !ok {
			f.note(join(prefix, key), "expected integer, got %T; removed so it reads as ap", v)
			delete(sys, key)
			continue
		}
		f.within(sys, key, prefix, ap, 0, ap)
	}
}

func normalizeMagicItem(f *fixer, sys map[string]any, prefix string) {
	f.token(sys, "slot", prefix, "")
	f.boolean(sys, "equipped", prefix, false)
	f.boolean(sys, "attunement", prefix, false)
}

func normalizeSpell(f *fixer, sys map[string]any, prefix string) {
	f.str(sys, "skill", prefix, "Spellcasting")
	f.atLeast(sys, "difficulty", prefix, 0, 0)
	f.atLeast(sys, "critical", prefix, 0, 0)
	f.atLeast(sys, "damage", prefix, 0, 0)
	f.str(sys, "damageType", prefix, "")
}

func normalizeSpecies(f *fixer, sys map[string]any, prefix string) {
	attrs := f.object(sys, "attributes", prefix)
	attrPrefix := join(prefix, "attributes")
	// A key already in canonical form wins over any spelling that folds onto
	// it; among non-canonical spellings the first in sorted order wins.
	keys := slices.Sorted(maps.Keys(attrs))
	for _, key := range keys {
		name := strings.ToLower(strings.TrimSpace(key))
		if _, known := (Attributes{}).Get(name); !known {
			f.note(join(attrPrefix, key), "unknown attribute; dropped")
			delete(attrs, key)
		}
	}
	for _, key := range keys {
		name := strings.ToLower(strings.TrimSpace(key))
		if _, kept := attrs[key]; !kept || name == key {
			continue
		}
		if _, dup := attrs[name]; dup {
			f.note(join(attrPrefix, key), "duplicates %q; dropped", name)
		} else {
			attrs[name] = attrs[key]
		}
		delete(attrs, key)
	}
	for key := range attrs {
		f.integer(attrs, key, attrPrefix, 0)
	}
	normalizeGrants(f, sys, prefix)
}

func normalizePath(f *fixer, sys map[string]any, prefix string) {
	f.atLeast(sys, "tier", prefix, 1, 1)
	normalizeGrants(f, sys, prefix)
}

func normalizeGrants(f *fixer, sys map[string]any, prefix string) {
	grants := f.objects(sys, "skills", prefix)
	listPrefix := join(prefix, "skills")
	for i, g := range grants {
		gp := join(listPrefix, strconv.Itoa(i))
		f.str(g, "name", gp, "")
		f.rank(g, "rank", gp)
		f.token(g, "attribute", gp, "")
		f.str(g, "category", gp, "")
	}
}
