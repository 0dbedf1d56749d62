// Package sheet runs the recalculation pass: it combines every calculator
// into one derived-stat Snapshot of a character.
package sheet

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/combat"
	"github.com/cory-johannsen/ruleforge/internal/game/defense"
	"github.com/cory-johannsen/ruleforge/internal/game/dice"
	"github.com/cory-johannsen/ruleforge/internal/game/inventory"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
	"github.com/cory-johannsen/ruleforge/internal/game/progression"
)

// Rules are the tunable constants of derived stats.
type Rules struct {
	CarryBase        int
	CarryPerPhysique int
	SinBase          int
	DefaultCritical  int
}

// DefaultRules are the stock constants.
var DefaultRules = Rules{CarryBase: 10, CarryPerPhysique: 5, SinBase: 3, DefaultCritical: combat.DefaultCriticalThreshold}

// SkillLine is the derived pool of one owned skill.
type SkillLine struct {
	ItemID    string
	Name      string
	Rank      character.Rank
	Attribute string
	Pool      int
}

// WeaponLine is the derived attack profile of one owned weapon.
type WeaponLine struct {
	ItemID            string
	Name              string
	Skill             string
	Pool              int
	BaseDamage        int
	DamageBonus       int
	TotalDamage       int
	HalfDamage        int
	CriticalThreshold int
	Melee             bool
}

// Attunement is the current and maximum number of attuned items.
type Attunement struct {
	Current int
	Max     int
}

// Snapshot is the complete derived state of a character for one pass.
type Snapshot struct {
	Character   *character.Character
	Defenses    character.Defenses
	Buckets     inventory.Buckets
	Skills      []SkillLine
	Weapons     []WeaponLine
	Armor       inventory.ArmorLoadout
	Power       inventory.PowerLoadout
	Attunement  Attunement
	Progression progression.Progression

	CarryingCapacity int
	SinThreshold     int

	// Issues notes unknown attribute references met while sizing pools.
	Issues []issue.Issue
}

// SkillPool returns the pool of the owned skill named name, ignoring case.
func (s Snapshot) SkillPool(name string) (int, bool) {
	for _, l := range s.Skills {
		if strings.EqualFold(l.Name, name) {
			return l.Pool, true
		}
	}
	return 0, false
}

// Weapon returns the weapon line for an item id.
func (s Snapshot) Weapon(id string) (WeaponLine, bool) {
	for _, w := range s.Weapons {
		if w.ItemID == id {
			return w, true
		}
	}
	return WeaponLine{}, false
}

// BaseUpdates proposes the record changes that persist this pass's defenses,
// including the base passive snapshot, relative to what the record held.
func (s Snapshot) BaseUpdates() []character.Update {
	prev := s.Character.Defenses
	next := s.Defenses
	var out []character.Update
	add := func(field string, from, to int) {
		if from != to {
			out = append(out, character.ActorUpdate("system.defenses."+field, from, to))
		}
	}
	add("resilience", prev.Resilience, next.Resilience)
	add("avoid", prev.Avoid, next.Avoid)
	add("grit", prev.Grit, next.Grit)
	add("totalResilience", prev.TotalResilience, next.TotalResilience)
	add("totalGrit", prev.TotalGrit, next.TotalGrit)
	add("basePassiveDodge", prev.BasePassiveDodge, next.BasePassiveDodge)
	add("basePassiveParry", prev.BasePassiveParry, next.BasePassiveParry)
	return append(out, defense.FacingUpdates(prev, next)...)
}

// Deriver runs recalculation passes.
type Deriver struct {
	rules  Rules
	logger *zap.Logger
}

// NewDeriver creates a Deriver. A nil logger disables logging.
func NewDeriver(rules Rules, logger *zap.Logger) *Deriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules.DefaultCritical <= 0 {
		rules.DefaultCritical = combat.DefaultCriticalThreshold
	}
	return &Deriver{rules: rules, logger: logger}
}

// Derive computes the snapshot of c and its items. Nothing is cached; every
// call recomputes from the inputs.
//
// Precondition: c and inv come from a normalized record.
// Postcondition: c and inv are not modified.
func (d *Deriver) Derive(c *character.Character, inv *character.Inventory) Snapshot {
	items := inv.All()
	b := inventory.Classify(items)
	snap := Snapshot{
		Character:   c,
		Buckets:     b,
		Defenses:    defense.Recompute(c.Defenses, c.Attributes, b.Skills, defense.SheetParrySkills),
		Armor:       inventory.ResolveArmor(b.Armor, c.NaturalDeflection),
		Power:       inventory.ResolveItemsOfPower(b.MagicItems),
		Progression: progression.Compute(c, b.Skills),

		CarryingCapacity: d.rules.CarryBase + d.rules.CarryPerPhysique*c.Attributes.Physique.Value,
		SinThreshold:     d.rules.SinBase + c.Attributes.Soul.Value,
	}
	snap.Attunement = Attunement{Current: inventory.CountAttuned(b.MagicItems), Max: snap.Progression.MaxAttunements}

	for _, it := range b.Skills {
		pool, ok := dice.SkillPool(c.Attributes, it.Skill)
		if !ok {
			snap.Issues = append(snap.Issues, issue.Invalid("items."+it.ID+".system.attribute", "unknown attribute %q contributes 0", it.Skill.Attribute))
		}
		snap.Skills = append(snap.Skills, SkillLine{ItemID: it.ID, Name: it.Name, Rank: it.Skill.Rank, Attribute: it.Skill.Attribute, Pool: pool})
	}
	for _, it := range b.Weapons {
		w := it.Weapon
		var skill *character.Skill
		if s, ok := inv.SkillNamed(w.Skill); ok {
			skill = s.Skill
		}
		pool, ok := dice.WeaponPool(c.Attributes, w, skill)
		if !ok {
			snap.Issues = append(snap.Issues, issue.Invalid("items."+it.ID+".system.attribute", "no known attribute for %q; contributes 0", w.Attribute))
		}
		bonus := combat.DamageBonus(w, c.Attributes)
		crit := w.Critical
		if crit <= 0 {
			crit = d.rules.DefaultCritical
		}
		snap.Weapons = append(snap.Weapons, WeaponLine{
			ItemID:            it.ID,
			Name:              it.Name,
			Skill:             w.Skill,
			Pool:              pool,
			BaseDamage:        w.Damage,
			DamageBonus:       bonus,
			TotalDamage:       w.Damage + bonus,
			HalfDamage:        combat.HalfDamage(w.Damage + bonus),
			CriticalThreshold: crit,
			Melee:             w.Melee,
		})
	}
	if snap.Attunement.Current > snap.Attunement.Max {
		d.logger.Warn("attunements exceed capacity",
			zap.String("character", c.ID),
			zap.Int("current", snap.Attunement.Current),
			zap.Int("max", snap.Attunement.Max),
		)
	}
	return snap
}

// Load normalizes rec and derives its snapshot. Normalization issues are
// prepended to the snapshot's issues.
func (d *Deriver) Load(rec character.Record) (Snapshot, *character.Inventory) {
	c, inv, issues := character.NewNormalizer(d.logger).Load(rec)
	snap := d.Derive(c, inv)
	snap.Issues = append(issues, snap.Issues...)
	return snap, inv
}
