// Package progression derives level-gated counts: talents, spells learned,
// paths allowed, tier access and attunement capacity.
package progression

import (
	"strings"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

// SpellcastingSkill is the substring that marks a skill as a spellcasting skill.
const SpellcastingSkill = "spellcasting"

// Progression is the full set of level-derived counts for one character.
type Progression struct {
	Level          int
	Talents        int
	SpellsLearned  int
	PathsAllowed   int
	MaxTier        int
	Tiers          TierLevels
	MaxAttunements int
}

// TierLevels are the effective levels in each path tier.
type TierLevels struct {
	Tier1 int
	Tier2 int
	Tier3 int
}

// Talents returns the number of odd levels in [1, level].
func Talents(level int) int {
	if level < 1 {
		return 0
	}
	return (level + 1) / 2
}

// SpellsLearned returns the number of even levels in [2, level], or 0 when
// the character has no spellcasting skill.
func SpellsLearned(level int, hasSpellcasting bool) int {
	if !hasSpellcasting || level < 2 {
		return 0
	}
	return level / 2
}

// PathsAllowed returns one path plus one more every five levels; monsters take no paths.
func PathsAllowed(level int, isMonster bool) int {
	if isMonster || level < 1 {
		return 0
	}
	return 1 + (level-1)/5
}

// MaxTier returns the highest path tier available at level.
func MaxTier(level int) int {
	switch {
	case level >= 10:
		return 3
	case level >= 5:
		return 2
	}
	return 1
}

// Tiers returns the effective level in each tier.
//
// Postcondition: every field is >= 0.
func Tiers(level int) TierLevels {
	return TierLevels{
		Tier1: max(0, level),
		Tier2: max(0, level-4),
		Tier3: max(0, level-9),
	}
}

// MaxAttunements returns max(0, floor(level/4) + soul).
func MaxAttunements(level, soul int) int {
	return max(0, level/4+soul)
}

// HasSpellcasting reports whether skills contains a skill whose name contains
// "spellcasting" (ignoring case) at rank learned or above.
func HasSpellcasting(skills []*character.Item) bool {
	for _, s := range skills {
		if s == nil || s.Skill == nil {
			continue
		}
		if strings.Contains(strings.ToLower(s.Name), SpellcastingSkill) && s.Skill.Rank.AtLeast(character.RankLearned) {
			return true
		}
	}
	return false
}

// Compute derives every progression count for a character.
func Compute(c *character.Character, skills []*character.Item) Progression {
	level := c.Level
	return Progression{
		Level:          level,
		Talents:        Talents(level),
		SpellsLearned:  SpellsLearned(level, HasSpellcasting(skills)),
		PathsAllowed:   PathsAllowed(level, c.Flags.IsMonster),
		MaxTier:        MaxTier(level),
		Tiers:          Tiers(level),
		MaxAttunements: MaxAttunements(level, c.Attributes.Soul.Value),
	}
}

// LevelUp proposes raising c by one level.
//
// Postcondition: c is not mutated; the single update targets system.level
// with the current level as its expected prior value.
func LevelUp(c *character.Character) character.Update {
	return character.ActorUpdate("system.level", c.Level, c.Level+1)
}

// Gained reports the counts that grow when moving from level to level+1.
func Gained(c *character.Character, skills []*character.Item) Progression {
	before := Compute(c, skills)
	next := *c
	next.Level++
	after := Compute(&next, skills)
	return Progression{
		Level:          after.Level,
		Talents:        after.Talents - before.Talents,
		SpellsLearned:  after.SpellsLearned - before.SpellsLearned,
		PathsAllowed:   after.PathsAllowed - before.PathsAllowed,
		MaxTier:        after.MaxTier - before.MaxTier,
		Tiers:          TierLevels{Tier1: after.Tiers.Tier1 - before.Tiers.Tier1, Tier2: after.Tiers.Tier2 - before.Tiers.Tier2, Tier3: after.Tiers.Tier3 - before.Tiers.Tier3},
		MaxAttunements: after.MaxAttunements - before.MaxAttunements,
	}
}
