// Package combat resolves attacks, spell casts and plain checks as a
// four-stage pipeline: target selection, difficulty determination, rolling
// and outcome. Each invocation resolves exactly once and never mutates its inputs.
package combat

import (
	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/defense"
	"github.com/cory-johannsen/ruleforge/internal/game/dice"
)

// DefaultCriticalThreshold is the excess successes a weapon without its own
// critical rating needs for a critical.
const DefaultCriticalThreshold = 4

// Stage is one step of a resolution.
type Stage int

const (
	StageTargetSelection Stage = iota
	StageDifficulty
	StageRolling
	StageOutcome
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageTargetSelection:
		return "target_selection"
	case StageDifficulty:
		return "difficulty"
	case StageRolling:
		return "rolling"
	case StageOutcome:
		return "outcome"
	}
	return "unknown"
}

// MarshalText encodes s as its name.
func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Target is a snapshot of a defender. It is read, never written.
type Target struct {
	ID       string
	Defenses character.Defenses
}

// NewTarget snapshots c as a target, recomputing its base passives with the
// combat parry skill list.
func NewTarget(c *character.Character, skills []*character.Item) *Target {
	d := defense.ComputeBase(c.Attributes, c.Defenses.Bonuses(), skills, defense.CombatParrySkills)
	d.Facing = c.Defenses.Facing
	return &Target{ID: c.ID, Defenses: defense.ApplyFacing(d)}
}

// TargetView is a target's effective defenses under a hypothetical facing.
type TargetView struct {
	ID           string
	Facing       character.Facing
	TotalAvoid   int
	PassiveDodge int
	PassiveParry int
	AvoidPenalty int
}

// TargetDefenses evaluates t's defenses as if it faced the attacker with f,
// regardless of the facing persisted on t.
//
// Postcondition: t is not modified.
func TargetDefenses(t *Target, f character.Facing) TargetView {
	d := defense.SetFacing(t.Defenses, f)
	return TargetView{
		ID:           t.ID,
		Facing:       d.Facing,
		TotalAvoid:   d.TotalAvoid,
		PassiveDodge: d.PassiveDodge,
		PassiveParry: d.PassiveParry,
		AvoidPenalty: d.AvoidPenalty,
	}
}

// Difficulty returns the successes needed to hit the viewed target. Passive
// parry only applies to melee attacks.
func Difficulty(v TargetView, melee bool) int {
	dt := v.TotalAvoid + v.PassiveDodge
	if melee {
		dt += v.PassiveParry
	}
	return dt
}

// DamageBonus returns the attribute bonus a weapon adds to its damage.
// Agile uses finesse and Brutish uses physique; otherwise the weapon's own
// attribute applies unless it is "none". Each bonus is half the attribute, floored.
func DamageBonus(w *character.Weapon, attrs character.Attributes) int {
	switch {
	case w.HasQuality("Agile"):
		return attrs.Finesse.Value / 2
	case w.HasQuality("Brutish"):
		return attrs.Physique.Value / 2
	}
	v, _ := dice.CombinedAttribute(attrs, w.Attribute)
	return v / 2
}

// HalfDamage returns the damage a partial effect deals: half, floored, at least 1.
func HalfDamage(damage int) int {
	return max(1, damage/2)
}
