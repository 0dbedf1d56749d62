package dice

import (
	"strings"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

// rankBonus maps a skill rank to the dice it adds to a pool.
var rankBonus = map[character.Rank]int{
	character.RankPracticed:   1,
	character.RankAdept:       2,
	character.RankExperienced: 3,
	character.RankExpert:      4,
	character.RankMastered:    6,
}

// RankBonus returns the pool dice granted by rank; unlisted ranks grant 0.
func RankBonus(rank character.Rank) int {
	return rankBonus[rank]
}

// CombinedAttribute resolves an attribute reference against attrs. A single
// name yields that attribute's value; a combination "a_b" yields the floored
// average of both.
//
// Postcondition: ok is false when any referenced name is unknown or the
// reference is empty or "none"; value is then 0.
func CombinedAttribute(attrs character.Attributes, name string) (value int, ok bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" {
		return 0, false
	}
	parts := strings.Split(name, "_")
	if len(parts) == 1 {
		a, known := attrs.Get(parts[0])
		if !known {
			return 0, false
		}
		return a.Value, true
	}
	if len(parts) != 2 {
		return 0, false
	}
	a, okA := attrs.Get(parts[0])
	b, okB := attrs.Get(parts[1])
	if !okA || !okB {
		return 0, false
	}
	return floorDiv(a.Value+b.Value, 2), true
}

// Pool computes the number of dice rolled for a check.
//
// The rank bonus is added to attrValue; an untrained pool is then halved
// (floored) before miscBonus applies.
//
// Postcondition: return value >= 1.
func Pool(attrValue int, rank character.Rank, miscBonus int) int {
	pool := attrValue + RankBonus(rank)
	if rank == character.RankUntrained {
		pool = floorDiv(pool, 2)
	}
	pool += miscBonus
	if pool < 1 {
		return 1
	}
	return pool
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// SkillPool computes the pool for a skill check.
//
// Postcondition: ok is false when the skill names an unknown attribute; the
// attribute then contributes 0 and the pool is still >= 1.
func SkillPool(attrs character.Attributes, s *character.Skill) (pool int, ok bool) {
	attr, ok := CombinedAttribute(attrs, s.Attribute)
	return Pool(attr, s.Rank, s.MiscBonus), ok
}

// WeaponPool computes the pool for an attack with w. The weapon's own
// attribute is used unless it is empty or "none", in which case the
// governing skill's attribute is used. The governing skill may be nil, which
// rolls untrained. Misc bonuses of weapon and skill add up.
//
// Postcondition: ok is false when no known attribute could be resolved.
func WeaponPool(attrs character.Attributes, w *character.Weapon, s *character.Skill) (pool int, ok bool) {
	ref := w.Attribute
	if isNone(ref) && s != nil {
		ref = s.Attribute
	}
	attr, ok := CombinedAttribute(attrs, ref)
	rank, misc := character.RankUntrained, w.MiscBonus
	if s != nil {
		rank = s.Rank
		misc += s.MiscBonus
	}
	return Pool(attr, rank, misc), ok
}

func isNone(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return ref == "" || ref == "none"
}
