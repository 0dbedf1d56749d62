package defense_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/defense"
)

func skill(name string, rank character.Rank) *character.Item {
	return &character.Item{ID: name, Name: name, Type: character.TypeSkill, Skill: &character.Skill{Rank: rank}}
}

func attrs(phy, fin, mind int) character.Attributes {
	return character.Attributes{
		Physique: character.Attribute{Value: phy},
		Finesse:  character.Attribute{Value: fin},
		Mind:     character.Attribute{Value: mind},
	}
}

func TestComputeBase_Basics(t *testing.T) {
	d := defense.ComputeBase(attrs(7, 9, 1), character.DefenseBonuses{Resilience: 1, Avoid: -10}, nil, defense.SheetParrySkills)
	assert.Equal(t, 3, d.Resilience)
	assert.Equal(t, 4, d.Avoid)
	assert.Equal(t, 1, d.Grit)
	assert.Equal(t, 4, d.TotalResilience)
	assert.Equal(t, 1, d.TotalAvoid)
	assert.Equal(t, 1, d.TotalGrit)
	assert.Equal(t, 2, d.BasePassiveDodge)
	assert.Equal(t, 0, d.BasePassiveParry)
	assert.Equal(t, character.FacingFront, d.Facing)
}

func TestComputeBase_PassivesFromSkills(t *testing.T) {
	skills := []*character.Item{
		skill("acrobatics", character.RankExpert),
		skill("Sword", character.RankAdept),
		skill("Heavy Weaponry", character.RankMastered),
		skill("Polearm", character.RankExperienced),
	}
	sheet := defense.ComputeBase(attrs(2, 4, 2), character.DefenseBonuses{}, skills, defense.SheetParrySkills)
	assert.Equal(t, 2, sheet.BasePassiveDodge)
	assert.Equal(t, 3, sheet.BasePassiveParry)

	combat := defense.ComputeBase(attrs(2, 4, 2), character.DefenseBonuses{}, skills, defense.CombatParrySkills)
	assert.Equal(t, 6, combat.BasePassiveParry)
}

func TestComputeBase_FinesseDodgeBeatsLowAcrobatics(t *testing.T) {
	d := defense.ComputeBase(attrs(2, 12, 2), character.DefenseBonuses{}, []*character.Item{skill("Acrobatics", character.RankAdept)}, nil)
	assert.Equal(t, 3, d.BasePassiveDodge)
}

func TestApplyFacing_BackFlankExample(t *testing.T) {
	d := character.Defenses{Avoid: 3, BasePassiveDodge: 4, BasePassiveParry: 6, Facing: character.FacingBackFlank}
	out := defense.ApplyFacing(d)
	assert.Equal(t, 2, out.PassiveDodge)
	assert.Equal(t, 0, out.PassiveParry)
	assert.Equal(t, -2, out.AvoidPenalty)
	assert.Equal(t, 1, out.TotalAvoid)
}

func TestApplyFacing_Table(t *testing.T) {
	base := character.Defenses{Avoid: 1, BasePassiveDodge: 8, BasePassiveParry: 6}
	cases := []struct {
		facing            character.Facing
		dodge, parry, pen int
		totalAvoid        int
	}{
		{character.FacingFront, 8, 6, 0, 1},
		{character.FacingFlank, 8, 6, -1, 0},
		{character.FacingBackFlank, 4, 0, -2, 0},
		{character.FacingBack, 2, 0, -2, 0},
		{character.Facing("sideways"), 8, 6, 0, 1},
	}
	for _, c := range cases {
		out := defense.SetFacing(base, c.facing)
		assert.Equal(t, c.dodge, out.PassiveDodge, c.facing)
		assert.Equal(t, c.parry, out.PassiveParry, c.facing)
		assert.Equal(t, c.pen, out.AvoidPenalty, c.facing)
		assert.Equal(t, c.totalAvoid, out.TotalAvoid, c.facing)
	}
}

// TestDefenseFloor covers every attribute, bonus and facing combination.
func TestDefenseFloor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := attrs(rapid.IntRange(0, 30).Draw(rt, "phy"), rapid.IntRange(0, 30).Draw(rt, "fin"), rapid.IntRange(0, 30).Draw(rt, "mind"))
		b := character.DefenseBonuses{
			Resilience: rapid.IntRange(-50, 50).Draw(rt, "rb"),
			Avoid:      rapid.IntRange(-50, 50).Draw(rt, "ab"),
			Grit:       rapid.IntRange(-50, 50).Draw(rt, "gb"),
		}
		facing := rapid.SampledFrom([]character.Facing{character.FacingFront, character.FacingFlank, character.FacingBackFlank, character.FacingBack}).Draw(rt, "facing")
		d := defense.SetFacing(defense.ComputeBase(a, b, nil, defense.SheetParrySkills), facing)
		assert.GreaterOrEqual(rt, d.TotalResilience, 1)
		assert.GreaterOrEqual(rt, d.TotalGrit, 1)
		assert.GreaterOrEqual(rt, d.TotalAvoid, 0)
		assert.LessOrEqual(rt, d.AvoidPenalty, 0)
	})
}

// TestSetFacing_Reversible checks re-applying facings never compounds penalties.
func TestSetFacing_Reversible(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := defense.ComputeBase(attrs(4, rapid.IntRange(0, 30).Draw(rt, "fin"), 4), character.DefenseBonuses{}, nil, nil)
		front := defense.ApplyFacing(d)
		facings := rapid.SliceOf(rapid.SampledFrom([]character.Facing{character.FacingFlank, character.FacingBackFlank, character.FacingBack})).Draw(rt, "path")
		cur := front
		for _, f := range facings {
			cur = defense.SetFacing(cur, f)
		}
		assert.Equal(rt, front, defense.SetFacing(cur, character.FacingFront))
	})
}

func TestRecompute_KeepsFacing(t *testing.T) {
	prev := character.Defenses{Facing: character.FacingBack, AvoidBonus: 2}
	d := defense.Recompute(prev, attrs(4, 8, 4), nil, defense.SheetParrySkills)
	assert.Equal(t, character.FacingBack, d.Facing)
	assert.Equal(t, 2, d.AvoidBonus)
	assert.Equal(t, 0, d.PassiveDodge)
	assert.Equal(t, 4, d.TotalAvoid)
}

func TestFacingUpdates(t *testing.T) {
	prev := defense.ApplyFacing(character.Defenses{Avoid: 2, BasePassiveDodge: 2})
	next := defense.SetFacing(prev, character.FacingFlank)
	ups := defense.FacingUpdates(prev, next)
	require.Len(t, ups, 3)
	assert.Equal(t, "system.defenses.facing", ups[0].Path)
	assert.Equal(t, "flank", ups[0].Value)
	assert.Empty(t, defense.FacingUpdates(next, next))
}
