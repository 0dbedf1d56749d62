package combat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/combat"
	"github.com/cory-johannsen/ruleforge/internal/game/dice"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

func intp(v int) *int { return &v }

func attrs(phy, fin int) character.Attributes {
	return character.Attributes{
		Physique: character.Attribute{Value: phy},
		Finesse:  character.Attribute{Value: fin},
		Mind:     character.Attribute{Value: 2},
	}
}

func sword(qualities ...string) *character.Item {
	return &character.Item{ID: "w1", Name: "Longsword", Type: character.TypeWeapon, Weapon: &character.Weapon{
		Attribute: "physique", Skill: "Sword", Damage: 5, Qualities: qualities, Melee: true,
	}}
}

func swordSkill(rank character.Rank) *character.Item {
	return &character.Item{ID: "s1", Name: "Sword", Type: character.TypeSkill, Skill: &character.Skill{Rank: rank, Attribute: "physique"}}
}

func TestMishapFor(t *testing.T) {
	assert.Equal(t, combat.MishapCritical, combat.MishapFor(5, 0))
	assert.Equal(t, combat.MishapSevere, combat.MishapFor(5, 1))
	assert.Equal(t, combat.MishapModerate, combat.MishapFor(5, 2))
	assert.Equal(t, combat.MishapModerate, combat.MishapFor(5, 3))
	assert.Equal(t, combat.MishapMinor, combat.MishapFor(5, 4))
	assert.Equal(t, combat.MishapNone, combat.MishapFor(5, 5))
	assert.Equal(t, combat.MishapModerate, combat.MishapFor(3, 0))
}

func TestMishapFor_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		req := rapid.IntRange(0, 20).Draw(rt, "required")
		got := rapid.IntRange(0, 40).Draw(rt, "successes")
		m := combat.MishapFor(req, got)
		if got >= req {
			assert.Equal(rt, combat.MishapNone, m)
			return
		}
		assert.NotEqual(rt, combat.MishapNone, m)
		if m == combat.MishapCritical {
			assert.Equal(rt, 0, got)
			assert.GreaterOrEqual(rt, req-got, 4)
		}
	})
}

func TestDamageBonus(t *testing.T) {
	a := attrs(7, 5)
	assert.Equal(t, 2, combat.DamageBonus(sword("Agile").Weapon, a))
	assert.Equal(t, 3, combat.DamageBonus(sword("brutish").Weapon, a))
	assert.Equal(t, 3, combat.DamageBonus(sword().Weapon, a))
	assert.Equal(t, 0, combat.DamageBonus(&character.Weapon{Attribute: "none"}, a))
	assert.Equal(t, 1, combat.HalfDamage(3))
	assert.Equal(t, 1, combat.HalfDamage(0))
	assert.Equal(t, 4, combat.HalfDamage(9))
}

func TestTargetDefenses_HypotheticalFacing(t *testing.T) {
	target := &combat.Target{ID: "t", Defenses: character.Defenses{
		Avoid: 3, BasePassiveDodge: 4, BasePassiveParry: 6, Facing: character.FacingFront,
	}}
	before := *target
	v := combat.TargetDefenses(target, character.FacingBackFlank)
	assert.Equal(t, 2, v.PassiveDodge)
	assert.Equal(t, 0, v.PassiveParry)
	assert.Equal(t, 1, v.TotalAvoid)
	assert.Equal(t, before, *target)

	front := combat.TargetDefenses(target, character.FacingFront)
	assert.Equal(t, 13, combat.Difficulty(front, true))
	assert.Equal(t, 7, combat.Difficulty(front, false))
}

func TestNewTarget_UsesCombatParryList(t *testing.T) {
	c := &character.Character{ID: "ogre", Attributes: attrs(4, 4), Defenses: character.Defenses{Facing: character.FacingFlank}}
	heavy := &character.Item{Name: "Heavy Weaponry", Type: character.TypeSkill, Skill: &character.Skill{Rank: character.RankExpert}}
	tgt := combat.NewTarget(c, []*character.Item{heavy})
	assert.Equal(t, 4, tgt.Defenses.BasePassiveParry)
	assert.Equal(t, character.FacingFlank, tgt.Defenses.Facing)
}

func TestAttack_HitWithCritical(t *testing.T) {
	r := combat.NewResolver(dice.NewFixedRoller(12, 12, 12, 12, 8, 1), combat.Options{}, nil)
	res, err := r.Attack(context.Background(), combat.AttackRequest{
		Attributes: attrs(4, 2),
		Weapon:     sword(),
		Skill:      swordSkill(character.RankAdept),
		DT:         intp(3),
	})
	require.NoError(t, err)
	assert.Equal(t, issue.None, res.Status)
	assert.Equal(t, 6, res.Pool)
	assert.Equal(t, 9, res.Roll.Successes)
	assert.True(t, res.Succeeded)
	assert.Equal(t, 6, res.Excess)
	assert.Equal(t, 4, res.CriticalThreshold)
	assert.True(t, res.CanCritical)
	assert.Equal(t, 7, res.TotalDamage)
	assert.Equal(t, 3, res.HalfDamage)
	assert.Equal(t, []combat.Stage{combat.StageTargetSelection, combat.StageDifficulty, combat.StageRolling, combat.StageOutcome}, res.Stages)
	assert.Equal(t, combat.MishapNone, res.Mishap)
}

func TestAttack_AgainstTargetRangedIgnoresParry(t *testing.T) {
	bow := &character.Item{ID: "b", Type: character.TypeWeapon, Weapon: &character.Weapon{Attribute: "finesse", Damage: 4, Critical: 2}}
	target := &combat.Target{ID: "t", Defenses: character.Defenses{Avoid: 2, BasePassiveDodge: 1, BasePassiveParry: 5}}
	r := combat.NewResolver(dice.NewFixedRoller(8, 8, 8, 8), combat.Options{}, nil)
	res, err := r.Attack(context.Background(), combat.AttackRequest{
		Attributes: attrs(1, 8), Weapon: bow, Target: target, Facing: character.FacingFlank,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Target)
	assert.Equal(t, 2, res.DT)
	assert.Equal(t, 4, res.Pool)
	assert.Equal(t, 2, res.Excess)
	assert.True(t, res.CanCritical)
}

func TestAttack_AbortedWithoutTargetOrDT(t *testing.T) {
	roller := dice.NewFixedRoller(12, 12)
	r := combat.NewResolver(roller, combat.Options{}, nil)
	res, err := r.Attack(context.Background(), combat.AttackRequest{Attributes: attrs(4, 4), Weapon: sword()})
	require.NoError(t, err)
	assert.True(t, res.Aborted())
	assert.Empty(t, res.Roll.Dice)
	assert.Equal(t, 2, roller.Remaining())
	assert.NotContains(t, res.Stages, combat.StageRolling)
}

func TestAttack_CancelledContextRollsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	roller := dice.NewFixedRoller(12, 12, 12, 12)
	r := combat.NewResolver(roller, combat.Options{}, nil)
	res, err := r.Attack(ctx, combat.AttackRequest{Attributes: attrs(4, 4), Weapon: sword(), DT: intp(1)})
	require.NoError(t, err)
	assert.Equal(t, issue.Aborted, res.Status)
	assert.Equal(t, 4, roller.Remaining())
	assert.False(t, res.Succeeded)
}

func TestAttack_RollerFailureIsError(t *testing.T) {
	r := combat.NewResolver(dice.NewFixedRoller(), combat.Options{}, nil)
	_, err := r.Attack(context.Background(), combat.AttackRequest{Attributes: attrs(4, 4), Weapon: sword(), DT: intp(1)})
	require.ErrorIs(t, err, dice.ErrExhausted)
}

func TestCast_MishapExample(t *testing.T) {
	spell := &character.Item{ID: "sp", Type: character.TypeSpell, Spell: &character.Spell{Difficulty: 5, Damage: 6}}
	caster := &character.Item{Name: "Spellcasting", Type: character.TypeSkill, Skill: &character.Skill{Rank: character.RankLearned, Attribute: "mind"}}

	r := combat.NewResolver(dice.NewFixedRoller(1, 2), combat.Options{}, nil)
	res, err := r.Cast(context.Background(), combat.CastRequest{Attributes: attrs(1, 1), Spell: spell, Skill: caster})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pool)
	assert.Equal(t, 5, res.DT)
	assert.False(t, res.Succeeded)
	assert.Equal(t, combat.MishapCritical, res.Mishap)

	r = combat.NewResolver(dice.NewFixedRoller(8, 2), combat.Options{}, nil)
	res, err = r.Cast(context.Background(), combat.CastRequest{Attributes: attrs(1, 1), Spell: spell, Skill: caster})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Roll.Successes)
	assert.Equal(t, combat.MishapSevere, res.Mishap)
}

func TestCheck(t *testing.T) {
	r := combat.NewResolver(dice.NewFixedRoller(9, 3), combat.Options{DefaultCritical: 1}, nil)
	res, err := r.Check(context.Background(), combat.CheckRequest{Attributes: attrs(4, 4), Attribute: "physique", DT: intp(0)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pool)
	assert.True(t, res.Succeeded)
	assert.Equal(t, 1, res.Excess)
	assert.True(t, res.CanCritical)

	res, err = r.Check(context.Background(), combat.CheckRequest{Attributes: attrs(4, 4), Attribute: "physique"})
	require.NoError(t, err)
	assert.True(t, res.Aborted())
}

func TestCheck_MiscBonusAppliesBeforeFloor(t *testing.T) {
	r := combat.NewResolver(dice.NewFixedRoller(9, 9, 9), combat.Options{}, nil)
	res, err := r.Check(context.Background(), combat.CheckRequest{
		Attributes: attrs(1, 1), Attribute: "physique", MiscBonus: 2, DT: intp(0),
	})
	require.NoError(t, err)
	assert.Equal(t, dice.Pool(1, character.RankUntrained, 2), res.Pool)
	assert.Equal(t, 2, res.Pool)

	rapid.Check(t, func(rt *rapid.T) {
		phy := rapid.IntRange(0, 12).Draw(rt, "physique")
		misc := rapid.IntRange(-4, 6).Draw(rt, "misc")
		skillMisc := rapid.IntRange(-2, 3).Draw(rt, "skillMisc")
		rank := rapid.SampledFrom([]character.Rank{
			character.RankUntrained, character.RankLearned, character.RankAdept,
		}).Draw(rt, "rank")
		skill := &character.Item{Skill: &character.Skill{Rank: rank, Attribute: "physique", MiscBonus: skillMisc}}
		faces := make([]int, 40)
		for i := range faces {
			faces[i] = 1
		}
		r := combat.NewResolver(dice.NewFixedRoller(faces...), combat.Options{}, nil)
		res, err := r.Check(context.Background(), combat.CheckRequest{
			Attributes: attrs(phy, 1), Skill: skill, MiscBonus: misc, DT: intp(0),
		})
		require.NoError(rt, err)
		assert.Equal(rt, dice.Pool(phy, rank, skillMisc+misc), res.Pool)
	})
}
