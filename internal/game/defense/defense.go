// Package defense derives base defenses and facing-adjusted passive defenses.
package defense

import (
	"strings"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

// AcrobaticsSkill is the skill whose rank feeds passive dodge.
const AcrobaticsSkill = "Acrobatics"

// SheetParrySkills are the weapon skills that grant passive parry on the character sheet.
var SheetParrySkills = []string{"Sword", "Axe", "Cudgel", "Polearm", "Unarmed"}

// CombatParrySkills are the weapon skills that grant passive parry when
// resolving an attack against a target. It differs from SheetParrySkills by Heavy Weaponry.
var CombatParrySkills = []string{"Sword", "Axe", "Cudgel", "Polearm", "Unarmed", "Heavy Weaponry"}

var dodgeByRank = map[character.Rank]int{
	character.RankAdept:       1,
	character.RankExperienced: 1,
	character.RankExpert:      2,
	character.RankMastered:    3,
}

var parryByRank = map[character.Rank]int{
	character.RankPracticed:   1,
	character.RankAdept:       2,
	character.RankExperienced: 3,
	character.RankExpert:      4,
	character.RankMastered:    6,
}

// AcrobaticsDodge returns the passive dodge granted by an acrobatics rank.
func AcrobaticsDodge(r character.Rank) int { return dodgeByRank[r] }

// WeaponParry returns the passive parry granted by a weapon skill rank.
func WeaponParry(r character.Rank) int { return parryByRank[r] }

// ComputeBase derives facing-independent defenses.
//
// skills are the character's owned skill items; parrySkills selects which of
// them count toward passive parry.
//
// Postcondition: Resilience, Avoid, Grit and their totals are >= 1; Facing is
// FacingFront and the facing-dependent fields equal the front row of the facing table.
func ComputeBase(attrs character.Attributes, bonuses character.DefenseBonuses, skills []*character.Item, parrySkills []string) character.Defenses {
	d := character.Defenses{
		Resilience:      atLeastOne(attrs.Physique.Value / 2),
		Avoid:           atLeastOne(attrs.Finesse.Value / 2),
		Grit:            atLeastOne(attrs.Mind.Value / 2),
		ResilienceBonus: bonuses.Resilience,
		AvoidBonus:      bonuses.Avoid,
		GritBonus:       bonuses.Grit,
		Facing:          character.FacingFront,
	}
	d.TotalResilience = atLeastOne(d.Resilience + d.ResilienceBonus)
	d.TotalAvoid = atLeastOne(d.Avoid + d.AvoidBonus)
	d.TotalGrit = atLeastOne(d.Grit + d.GritBonus)

	dodge := attrs.Finesse.Value / 4
	parry := 0
	for _, s := range skills {
		if s == nil || s.Skill == nil {
			continue
		}
		if strings.EqualFold(s.Name, AcrobaticsSkill) {
			dodge = max(dodge, AcrobaticsDodge(s.Skill.Rank))
		}
		if containsFold(parrySkills, s.Name) {
			parry = max(parry, WeaponParry(s.Skill.Rank))
		}
	}
	d.BasePassiveDodge = dodge
	d.BasePassiveParry = parry
	d.PassiveDodge = dodge
	d.PassiveParry = parry
	return d
}

// Recompute derives base defenses like ComputeBase but carries over the
// persisted facing of prev and applies it.
func Recompute(prev character.Defenses, attrs character.Attributes, skills []*character.Item, parrySkills []string) character.Defenses {
	d := ComputeBase(attrs, prev.Bonuses(), skills, parrySkills)
	facing, _ := character.ParseFacing(string(prev.Facing))
	d.Facing = facing
	return ApplyFacing(d)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func containsFold(list []string, name string) bool {
	for _, s := range list {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
