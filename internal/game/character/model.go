// Package character defines the character record, its strongly typed model,
// and the normalization pass that turns partial records into that model.
package character

import "strings"

// Attribute names as they appear in records and skill/weapon references.
const (
	AttrPhysique = "physique"
	AttrFinesse  = "finesse"
	AttrMind     = "mind"
	AttrPresence = "presence"
	AttrSoul     = "soul"
)

// AttributeNames lists the five attributes in record order.
var AttributeNames = []string{AttrPhysique, AttrFinesse, AttrMind, AttrPresence, AttrSoul}

// Attribute is one attribute score. Value is the effective score; the bonus
// fields record how much of it came from species and flexible allocations.
type Attribute struct {
	Value         int `mapstructure:"value"`
	SpeciesBonus  int `mapstructure:"speciesBonus"`
	FlexibleBonus int `mapstructure:"flexibleBonus"`
}

// Attributes holds the five named attributes of a character.
type Attributes struct {
	Physique Attribute `mapstructure:"physique"`
	Finesse  Attribute `mapstructure:"finesse"`
	Mind     Attribute `mapstructure:"mind"`
	Presence Attribute `mapstructure:"presence"`
	Soul     Attribute `mapstructure:"soul"`
}

// Get returns the attribute with the given lower-case name.
//
// Postcondition: ok is false for unknown names and the zero Attribute is returned.
func (a Attributes) Get(name string) (Attribute, bool) {
	switch name {
	case AttrPhysique:
		return a.Physique, true
	case AttrFinesse:
		return a.Finesse, true
	case AttrMind:
		return a.Mind, true
	case AttrPresence:
		return a.Presence, true
	case AttrSoul:
		return a.Soul, true
	default:
		return Attribute{}, false
	}
}

// Value returns the effective value of the named attribute, or 0 if unknown.
func (a Attributes) Value(name string) int {
	attr, _ := a.Get(name)
	return attr.Value
}

// Set replaces the named attribute. Unknown names are ignored and reported as false.
func (a *Attributes) Set(name string, attr Attribute) bool {
	switch name {
	case AttrPhysique:
		a.Physique = attr
	case AttrFinesse:
		a.Finesse = attr
	case AttrMind:
		a.Mind = attr
	case AttrPresence:
		a.Presence = attr
	case AttrSoul:
		a.Soul = attr
	default:
		return false
	}
	return true
}

// Facing is the orientation of a defender relative to an attacker.
type Facing string

const (
	FacingFront     Facing = "front"
	FacingFlank     Facing = "flank"
	FacingBackFlank Facing = "backflank"
	FacingBack      Facing = "back"
)

// Valid reports whether f is one of the four known facings.
func (f Facing) Valid() bool {
	switch f {
	case FacingFront, FacingFlank, FacingBackFlank, FacingBack:
		return true
	}
	return false
}

// ParseFacing matches s against the known facings, ignoring case, spaces,
// dashes, and underscores.
//
// Postcondition: ok is false and FacingFront is returned for unknown input.
func ParseFacing(s string) (Facing, bool) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
	f := Facing(key)
	if f.Valid() {
		return f, true
	}
	return FacingFront, false
}

// Defenses holds base, bonus, and total defenses plus facing-adjusted passives.
//
// Facing and the two base passive fields persist across recalculation passes;
// every other field is recomputed on each pass.
type Defenses struct {
	Resilience int `mapstructure:"resilience"`
	Avoid      int `mapstructure:"avoid"`
	Grit       int `mapstructure:"grit"`

	ResilienceBonus int `mapstructure:"resilienceBonus"`
	AvoidBonus      int `mapstructure:"avoidBonus"`
	GritBonus       int `mapstructure:"gritBonus"`

	TotalResilience int `mapstructure:"totalResilience"`
	TotalAvoid      int `mapstructure:"totalAvoid"`
	TotalGrit       int `mapstructure:"totalGrit"`

	Facing           Facing `mapstructure:"facing"`
	PassiveDodge     int    `mapstructure:"passiveDodge"`
	PassiveParry     int    `mapstructure:"passiveParry"`
	BasePassiveDodge int    `mapstructure:"basePassiveDodge"`
	BasePassiveParry int    `mapstructure:"basePassiveParry"`
	AvoidPenalty     int    `mapstructure:"avoidPenalty"`
}

// Bonuses returns the three flat defense bonuses.
func (d Defenses) Bonuses() DefenseBonuses {
	return DefenseBonuses{Resilience: d.ResilienceBonus, Avoid: d.AvoidBonus, Grit: d.GritBonus}
}

// DefenseBonuses are the flat bonuses added to base defenses before flooring.
type DefenseBonuses struct {
	Resilience int
	Avoid      int
	Grit       int
}

// Deflection is the natural deflection of one body part.
type Deflection struct {
	Current int  `mapstructure:"current"`
	Max     int  `mapstructure:"max"`
	Stacks  bool `mapstructure:"stacks"`
}

// Gauge is a value/max pair such as hit points or sanity.
type Gauge struct {
	Value int `mapstructure:"value"`
	Max   int `mapstructure:"max"`
}

// Flags carries record-level switches.
type Flags struct {
	IsMonster bool `mapstructure:"isMonster"`
}

// Character is the fully populated, strongly typed form of a character record.
// Items are held separately in an Inventory and never point back here.
type Character struct {
	ID   string
	Name string

	Level      int
	Experience int
	Species    string

	Attributes        Attributes
	Defenses          Defenses
	NaturalDeflection map[Location]Deflection
	HP                Gauge
	Sanity            Gauge
	Flags             Flags
}

// Deflection returns the natural deflection at part, or the zero value.
func (c *Character) Deflection(part Location) Deflection {
	if c.NaturalDeflection == nil {
		return Deflection{}
	}
	return c.NaturalDeflection[part]
}
