package defense

import "github.com/cory-johannsen/ruleforge/internal/game/character"

// facingRow is one row of the facing table.
type facingRow struct {
	dodgeDivisor int // 0 means the passive is lost entirely
	keepParry    bool
	avoidPenalty int
}

var facingTable = map[character.Facing]facingRow{
	character.FacingFront:     {dodgeDivisor: 1, keepParry: true, avoidPenalty: 0},
	character.FacingFlank:     {dodgeDivisor: 1, keepParry: true, avoidPenalty: -1},
	character.FacingBackFlank: {dodgeDivisor: 2, keepParry: false, avoidPenalty: -2},
	character.FacingBack:      {dodgeDivisor: 4, keepParry: false, avoidPenalty: -2},
}

// ApplyFacing derives the facing-dependent fields of d from its Facing and its
// base passive values. Unknown facings are treated as front.
//
// TotalAvoid is re-derived from Avoid and AvoidBonus before the penalty, so
// applying twice gives the same result as applying once.
//
// Postcondition: TotalAvoid >= 0; AvoidPenalty <= 0; no other field but the
// facing-dependent ones changes.
func ApplyFacing(d character.Defenses) character.Defenses {
	row, ok := facingTable[d.Facing]
	if !ok {
		d.Facing = character.FacingFront
		row = facingTable[character.FacingFront]
	}
	d.PassiveDodge = d.BasePassiveDodge / row.dodgeDivisor
	d.PassiveParry = 0
	if row.keepParry {
		d.PassiveParry = d.BasePassiveParry
	}
	d.AvoidPenalty = row.avoidPenalty
	d.TotalAvoid = max(0, atLeastOne(d.Avoid+d.AvoidBonus)+row.avoidPenalty)
	return d
}

// SetFacing changes the facing of d and re-applies the facing table from the
// persisted base passives. Base passives are not recomputed.
func SetFacing(d character.Defenses, f character.Facing) character.Defenses {
	d.Facing = f
	return ApplyFacing(d)
}

// FacingUpdates proposes the record changes for moving from prev to next.
func FacingUpdates(prev, next character.Defenses) []character.Update {
	var out []character.Update
	add := func(field string, from, to any) {
		if from != to {
			out = append(out, character.ActorUpdate("system.defenses."+field, from, to))
		}
	}
	add("facing", string(prev.Facing), string(next.Facing))
	add("passiveDodge", prev.PassiveDodge, next.PassiveDodge)
	add("passiveParry", prev.PassiveParry, next.PassiveParry)
	add("avoidPenalty", prev.AvoidPenalty, next.AvoidPenalty)
	add("totalAvoid", prev.TotalAvoid, next.TotalAvoid)
	return out
}
