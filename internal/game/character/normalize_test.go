package character_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

// scalarGen draws a JSON scalar of any kind, including wrong-shaped ones.
func scalarGen() *rapid.Generator[any] {
	return rapid.OneOf(
		rapid.Just[any](nil),
		rapid.Map(rapid.Bool(), func(b bool) any { return b }),
		rapid.Map(rapid.IntRange(-50, 50), func(i int) any { return i }),
		rapid.Map(rapid.Float64Range(-50, 50), func(f float64) any { return f }),
		rapid.Map(rapid.SampledFrom([]string{"", "3", "abc", "front", "Back-Flank", "adept", "true"}), func(s string) any { return s }),
	)
}

// valueGen draws a scalar, a small object of scalars, or a small list of scalars.
func valueGen() *rapid.Generator[any] {
	keys := []string{"value", "max", "current", "stacks", "facing", "avoid", "speciesBonus", "rank", "ap", "currentAP"}
	return rapid.OneOf(
		scalarGen(),
		rapid.Map(rapid.MapOfN(rapid.SampledFrom(keys), scalarGen(), 0, 4), func(m map[string]any) any { return m }),
		rapid.Map(rapid.SliceOfN(scalarGen(), 0, 3), func(l []any) any { return l }),
	)
}

func itemGen() *rapid.Generator[any] {
	return rapid.Custom(func(t *rapid.T) any {
		sys := map[string]any{}
		for _, k := range rapid.SliceOfN(rapid.SampledFrom([]string{
			"rank", "attribute", "miscBonus", "ap", "currentAP", "location", "equipped",
			"derivedLeftAP", "slot", "attunement", "qualities", "skills", "attributes", "damage",
		}), 0, 6).Draw(t, "sysKeys") {
			sys[k] = valueGen().Draw(t, "sysValue")
		}
		it := map[string]any{
			"type":   rapid.SampledFrom([]string{"skill", "weapon", "armor", "magicItem", "species", "path", "spell", "talent", "mystery", ""}).Draw(t, "type"),
			"system": sys,
		}
		if rapid.Bool().Draw(t, "hasID") {
			it["_id"] = rapid.SampledFrom([]string{"a", "b", "item-1", "item-0"}).Draw(t, "id")
		}
		return it
	})
}

func partialRecordGen() *rapid.Generator[character.Record] {
	return rapid.Custom(func(t *rapid.T) character.Record {
		rec := character.Record{}
		sys := map[string]any{}
		for _, k := range rapid.SliceOfN(rapid.SampledFrom([]string{
			"attributes", "defenses", "hp", "sanity", "naturalDeflection", "species", "level", "experience",
		}), 0, 8).Draw(t, "keys") {
			sys[k] = valueGen().Draw(t, "value")
		}
		if rapid.Bool().Draw(t, "hasSystem") {
			rec["system"] = sys
		}
		if rapid.Bool().Draw(t, "hasItems") {
			rec["items"] = rapid.SliceOfN(itemGen(), 0, 4).Draw(t, "items")
		}
		if rapid.Bool().Draw(t, "hasFlags") {
			rec["flags"] = valueGen().Draw(t, "flags")
		}
		return rec
	})
}

func TestNormalize_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rec := partialRecordGen().Draw(rt, "record")
		once, _ := character.Normalize(rec)
		twice, issues := character.Normalize(once)
		assert.Equal(rt, once, twice)
		assert.Empty(rt, issues, "second pass must not repair anything")
	})
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	rec := character.Record{"system": map[string]any{"attributes": "broken"}}
	_, _ = character.Normalize(rec)
	assert.Equal(t, "broken", rec["system"].(map[string]any)["attributes"])
}

func TestNormalize_EmptyRecordDefaults(t *testing.T) {
	out, issues := character.Normalize(nil)
	require.NotEmpty(t, issues)
	assert.True(t, issue.Has(issues, issue.MalformedInput))

	c, inv, err := character.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())
	for _, name := range character.AttributeNames {
		a, ok := c.Attributes.Get(name)
		require.True(t, ok)
		assert.Equal(t, character.Attribute{Value: 1}, a, name)
	}
	assert.Equal(t, character.FacingFront, c.Defenses.Facing)
	assert.Equal(t, 0, c.Defenses.AvoidBonus)
	assert.Equal(t, character.Gauge{Value: 1, Max: 1}, c.HP)
	assert.Equal(t, character.Gauge{Value: 10, Max: 10}, c.Sanity)
	assert.Equal(t, 1, c.Level)
	for _, part := range character.BodyParts {
		assert.Equal(t, character.Deflection{}, c.Deflection(part), part)
	}
	assert.False(t, c.Flags.IsMonster)
}

func TestNormalize_CoercesAndClamps(t *testing.T) {
	rec := character.Record{
		"system": map[string]any{
			"attributes": map[string]any{
				"physique": map[string]any{"value": "6"},
				"finesse":  map[string]any{"value": -3.0},
				"mind":     "not an object",
				"soul":     map[string]any{"value": 4.7, "speciesBonus": 1.0},
			},
			"defenses": map[string]any{"facing": "Back Flank", "avoidBonus": 2.0},
			"level":    8.0,
		},
		"flags": map[string]any{"isMonster": "true"},
	}
	c, _, issues := character.NewNormalizer(nil).Load(rec)
	assert.Equal(t, 6, c.Attributes.Physique.Value)
	assert.Equal(t, 0, c.Attributes.Finesse.Value)
	assert.Equal(t, 1, c.Attributes.Mind.Value)
	assert.Equal(t, 4, c.Attributes.Soul.Value)
	assert.Equal(t, 1, c.Attributes.Soul.SpeciesBonus)
	assert.Equal(t, character.FacingBackFlank, c.Defenses.Facing)
	assert.Equal(t, 2, c.Defenses.AvoidBonus)
	assert.Equal(t, 8, c.Level)
	assert.True(t, c.Flags.IsMonster)
	assert.True(t, issue.Has(issues, issue.MalformedInput))
}

func TestNormalize_UnknownFacingDefaultsToFront(t *testing.T) {
	rec := character.Record{"system": map[string]any{"defenses": map[string]any{"facing": "sideways"}}}
	c, _, issues := character.NewNormalizer(nil).Load(rec)
	assert.Equal(t, character.FacingFront, c.Defenses.Facing)
	found := false
	for _, i := range issues {
		if i.Path == "system.defenses.facing" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNormalize_ItemsAssignedStableIDs(t *testing.T) {
	rec := character.Record{
		"items": []any{
			map[string]any{"type": "skill", "name": "Acrobatics"},
			"garbage",
			map[string]any{"_id": "w1", "type": "weapon"},
			map[string]any{"_id": "w1", "type": "weapon"},
		},
	}
	_, inv, _ := character.NewNormalizer(nil).Load(rec)
	require.Equal(t, 3, inv.Len())
	all := inv.All()
	assert.Equal(t, "item-0", all[0].ID)
	assert.Equal(t, "w1", all[1].ID)
	assert.NotEqual(t, "w1", all[2].ID)
}

func TestNormalizeItem_ArmorCurrentAPClampedAndDefaulted(t *testing.T) {
	n := character.NewNormalizer(nil)

	out, _ := n.NormalizeItem(character.Record{"_id": "a", "type": "armor", "system": map[string]any{"ap": 4, "currentAP": 9, "derivedLeftAP": "x", "derivedRightAP": -2}})
	it, err := character.DecodeItem(out)
	require.NoError(t, err)
	require.NotNil(t, it.Armor)
	assert.Equal(t, 4, it.Armor.CurrentAP)
	assert.Nil(t, it.Armor.DerivedLeftAP)
	require.NotNil(t, it.Armor.DerivedRightAP)
	assert.Equal(t, 0, *it.Armor.DerivedRightAP)
	assert.Equal(t, 4, it.Armor.SideAP(true))
	assert.Equal(t, 0, it.Armor.SideAP(false))

	out, _ = n.NormalizeItem(character.Record{"_id": "b", "type": "Armour", "system": map[string]any{"ap": 3}})
	it, err = character.DecodeItem(out)
	require.NoError(t, err)
	assert.Equal(t, character.TypeArmor, it.Type)
	assert.Equal(t, 3, it.Armor.CurrentAP)
}

func TestNormalizeItem_WeaponDefaults(t *testing.T) {
	out, _ := character.NewNormalizer(nil).NormalizeItem(character.Record{"_id": "w", "type": "weapon", "system": map[string]any{"qualities": "Agile, Reach"}})
	it, err := character.DecodeItem(out)
	require.NoError(t, err)
	assert.Equal(t, "none", it.Weapon.Attribute)
	assert.True(t, it.Weapon.Melee)
	assert.Equal(t, []string{"Agile", "Reach"}, it.Weapon.Qualities)
	assert.True(t, it.Weapon.HasQuality("agile"))
}

func TestNormalizeItem_UnknownTypeKeptAsGeneric(t *testing.T) {
	out, issues := character.NewNormalizer(nil).NormalizeItem(character.Record{"_id": "x", "name": "Idol", "type": "relic", "system": map[string]any{"glow": true}})
	it, err := character.DecodeItem(out)
	require.NoError(t, err)
	assert.Equal(t, character.ItemType("relic"), it.Type)
	assert.Equal(t, true, it.Data["glow"])
	assert.Empty(t, issues)
}

func TestNormalizeItem_SpeciesAttributesFolded(t *testing.T) {
	out, _ := character.NewNormalizer(nil).NormalizeItem(character.Record{
		"_id": "s", "type": "species",
		"system": map[string]any{
			"attributes": map[string]any{"Physique": 2.0, "luck": 3},
			"skills":     []any{map[string]any{"name": "Athletics", "rank": "Practiced"}, 7},
		},
	})
	it, err := character.DecodeItem(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"physique": 2}, it.Species.Attributes)
	require.Len(t, it.Species.Skills, 1)
	assert.Equal(t, character.RankPracticed, it.Species.Skills[0].Rank)
}

func TestNormalizeItem_SpeciesAttributeCollisionNoted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		variant := rapid.SampledFrom([]string{"Physique", "PHYSIQUE", " physique "}).Draw(rt, "variant")
		out, issues := character.NewNormalizer(nil).NormalizeItem(character.Record{
			"_id": "s", "type": "species",
			"system": map[string]any{"attributes": map[string]any{variant: 5, "physique": 2}},
		})
		it, err := character.DecodeItem(out)
		require.NoError(rt, err)
		assert.Equal(rt, map[string]int{"physique": 2}, it.Species.Attributes)
		var noted []issue.Issue
		for _, i := range issues {
			if strings.HasPrefix(i.Path, "system.attributes.") {
				noted = append(noted, i)
			}
		}
		require.Len(rt, noted, 1)
		assert.Equal(rt, issue.MalformedInput, noted[0].Kind)
		assert.Equal(rt, "system.attributes."+variant, noted[0].Path)
	})

	out, issues := character.NewNormalizer(nil).NormalizeItem(character.Record{
		"_id": "s", "type": "species",
		"system": map[string]any{"attributes": map[string]any{"Soul": 1, "SOUL": 3}},
	})
	it, err := character.DecodeItem(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"soul": 3}, it.Species.Attributes, "SOUL sorts before Soul")
	assert.True(t, issue.Has(issues, issue.MalformedInput))
}
