package inventory

import (
	"github.com/cory-johannsen/ruleforge/internal/game/character"
	"github.com/cory-johannsen/ruleforge/internal/game/issue"
)

// NDDelta is the change to natural deflection at one location.
type NDDelta struct {
	Location character.Location
	From     int
	To       int
}

// Consumed returns the armor points taken from natural deflection.
func (d NDDelta) Consumed() int { return d.From - d.To }

// ArmorDelta is the change to one AP field of one armor piece.
type ArmorDelta struct {
	ItemID string
	// Field is "currentAP", "derivedLeftAP" or "derivedRightAP".
	Field string
	From  int
	To    int
	// wasSet is false when a derived field was absent and read as ap.
	wasSet bool
}

// Consumed returns the armor points taken from the piece.
func (d ArmorDelta) Consumed() int { return d.From - d.To }

// Allocation is the result of distributing an AP reduction over a location.
type Allocation struct {
	Location  character.Location
	Requested int
	// Amount is the requested reduction after clamping into [1, Available].
	Amount    int
	Available int
	Consumed  int
	ND        *NDDelta
	Armor     []ArmorDelta
	Issues    []issue.Issue
}

// Allocate distributes a reduction of amount armor points at location.
//
// Consumption is greedy and ordered: stacking natural deflection first, then
// equipped pieces covering location directly in insertion order, then, for a
// single limb, the side of each shared arms or legs piece. Non-stacking
// deflection competes with armor rather than absorbing and is never consumed.
//
// An amount outside [1, available] is clamped and noted as
// issue.InvalidSelection. Nothing is consumed when no capacity is available.
//
// Postcondition: Consumed == Amount <= Available; every delta has To >= 0.
func Allocate(location character.Location, amount int, nd character.Deflection, items []*character.Item) Allocation {
	direct, shared, left := coveringPieces(location, items)
	hasND := location.IsBodyPart() && nd.Stacks && nd.Current > 0

	available := 0
	if hasND {
		available += nd.Current
	}
	for _, it := range direct {
		available += it.Armor.CurrentAP
	}
	for _, it := range shared {
		available += it.Armor.SideAP(left)
	}

	a := Allocation{Location: location, Requested: amount, Available: available}
	switch {
	case available == 0:
		a.Issues = append(a.Issues, issue.Invalid(string(location), "no armor points available"))
		return a
	case amount < 1:
		a.Issues = append(a.Issues, issue.Invalid(string(location), "reduction %d below 1; clamped to 1", amount))
		amount = 1
	case amount > available:
		a.Issues = append(a.Issues, issue.Invalid(string(location), "reduction %d exceeds available %d; clamped", amount, available))
		amount = available
	}
	a.Amount = amount

	remaining := amount
	if hasND {
		take := min(nd.Current, remaining)
		a.ND = &NDDelta{Location: location, From: nd.Current, To: nd.Current - take}
		remaining -= take
	}
	for _, it := range direct {
		if remaining == 0 {
			break
		}
		take := min(it.Armor.CurrentAP, remaining)
		if take == 0 {
			continue
		}
		a.Armor = append(a.Armor, ArmorDelta{ItemID: it.ID, Field: "currentAP", From: it.Armor.CurrentAP, To: it.Armor.CurrentAP - take, wasSet: true})
		remaining -= take
	}
	field, ptrSet := "derivedRightAP", func(ar *character.Armor) bool { return ar.DerivedRightAP != nil }
	if left {
		field, ptrSet = "derivedLeftAP", func(ar *character.Armor) bool { return ar.DerivedLeftAP != nil }
	}
	for _, it := range shared {
		if remaining == 0 {
			break
		}
		have := it.Armor.SideAP(left)
		take := min(have, remaining)
		if take == 0 {
			continue
		}
		a.Armor = append(a.Armor, ArmorDelta{ItemID: it.ID, Field: field, From: have, To: have - take, wasSet: ptrSet(it.Armor)})
		remaining -= take
	}
	a.Consumed = amount - remaining
	return a
}

// coveringPieces returns the equipped armor covering location directly and,
// for a single limb, the shared limb-pair pieces and the side.
func coveringPieces(location character.Location, items []*character.Item) (direct, shared []*character.Item, left bool) {
	sharedLoc, left, isLimb := location.Side()
	for _, it := range items {
		if it == nil || it.Armor == nil || !it.Armor.Equipped {
			continue
		}
		switch NormalizeLocation(it.Armor.Location) {
		case location:
			direct = append(direct, it)
		case sharedLoc:
			if isLimb {
				shared = append(shared, it)
			}
		}
	}
	return direct, shared, left
}

// Updates returns the record changes the allocation proposes.
func (a Allocation) Updates() []character.Update {
	var out []character.Update
	if a.ND != nil && a.ND.Consumed() > 0 {
		out = append(out, character.ActorUpdate(
			"system.naturalDeflection."+string(a.ND.Location)+".current", a.ND.From, a.ND.To))
	}
	for _, d := range a.Armor {
		var from any = d.From
		if !d.wasSet {
			from = nil
		}
		out = append(out, character.ItemUpdate(d.ItemID, "system."+d.Field, from, d.To))
	}
	return out
}
