package progression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/progression"
)

func TestTalentsAndSpells_CountParity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(0, 40).Draw(rt, "level")
		odd, even := 0, 0
		for l := 1; l <= level; l++ {
			if l%2 == 1 {
				odd++
			} else {
				even++
			}
		}
		assert.Equal(rt, odd, progression.Talents(level))
		assert.Equal(rt, even, progression.SpellsLearned(level, true))
		assert.Equal(rt, 0, progression.SpellsLearned(level, false))
	})
}

func TestPathsAllowed(t *testing.T) {
	assert.Equal(t, 1, progression.PathsAllowed(1, false))
	assert.Equal(t, 1, progression.PathsAllowed(5, false))
	assert.Equal(t, 2, progression.PathsAllowed(6, false))
	assert.Equal(t, 3, progression.PathsAllowed(11, false))
	assert.Equal(t, 0, progression.PathsAllowed(11, true))
}

func TestTiers(t *testing.T) {
	assert.Equal(t, 1, progression.MaxTier(4))
	assert.Equal(t, 2, progression.MaxTier(5))
	assert.Equal(t, 3, progression.MaxTier(10))
	assert.Equal(t, progression.TierLevels{Tier1: 12, Tier2: 8, Tier3: 3}, progression.Tiers(12))
	assert.Equal(t, progression.TierLevels{Tier1: 3}, progression.Tiers(3))
}

func TestMaxAttunements(t *testing.T) {
	assert.Equal(t, 3, progression.MaxAttunements(4, 2))
	assert.Equal(t, 0, progression.MaxAttunements(1, 0))
	assert.Equal(t, 0, progression.MaxAttunements(3, -5))
}

func TestHasSpellcasting(t *testing.T) {
	learned := &character.Item{Name: "Arcane Spellcasting", Type: character.TypeSkill, Skill: &character.Skill{Rank: character.RankLearned}}
	untrained := &character.Item{Name: "Spellcasting", Type: character.TypeSkill, Skill: &character.Skill{Rank: character.RankUntrained}}
	assert.True(t, progression.HasSpellcasting([]*character.Item{untrained, learned}))
	assert.False(t, progression.HasSpellcasting([]*character.Item{untrained}))
}

func TestCompute(t *testing.T) {
	c := &character.Character{Level: 8, Attributes: character.Attributes{Soul: character.Attribute{Value: 1}}}
	p := progression.Compute(c, nil)
	assert.Equal(t, progression.Progression{
		Level: 8, Talents: 4, SpellsLearned: 0, PathsAllowed: 2, MaxTier: 2,
		Tiers: progression.TierLevels{Tier1: 8, Tier2: 4}, MaxAttunements: 3,
	}, p)
}

func TestLevelUp(t *testing.T) {
	c := &character.Character{Level: 4}
	u := progression.LevelUp(c)
	assert.Equal(t, character.ActorUpdate("system.level", 4, 5), u)
	assert.Equal(t, 4, c.Level)

	g := progression.Gained(c, nil)
	assert.Equal(t, 1, g.Talents)
	assert.Equal(t, 1, g.MaxTier)
	assert.Equal(t, 5, g.Level)
}
