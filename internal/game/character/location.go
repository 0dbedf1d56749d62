package character

// Location identifies a body part or an armor coverage area.
type Location string

const (
	LocHead     Location = "head"
	LocBody     Location = "body"
	LocLeftArm  Location = "leftarm"
	LocRightArm Location = "rightarm"
	LocLeftLeg  Location = "leftleg"
	LocRightLeg Location = "rightleg"
	// LocArms and LocLegs are coverage areas protecting both limbs of the pair.
	LocArms   Location = "arms"
	LocLegs   Location = "legs"
	LocShield Location = "shield"
	// LocOther collects armor whose location could not be recognized.
	LocOther Location = "other"
)

// BodyParts lists the six body parts that carry natural deflection.
var BodyParts = []Location{LocHead, LocBody, LocLeftArm, LocRightArm, LocLeftLeg, LocRightLeg}

// ArmorLocations lists the fine-grained locations armor totals are computed for.
var ArmorLocations = []Location{LocHead, LocBody, LocLeftArm, LocRightArm, LocLeftLeg, LocRightLeg, LocShield}

// IsBodyPart reports whether l carries natural deflection.
func (l Location) IsBodyPart() bool {
	for _, p := range BodyParts {
		if p == l {
			return true
		}
	}
	return false
}

// Side splits a limb location into its shared coverage area and side.
//
// Postcondition: ok is false for locations that are not a single limb.
func (l Location) Side() (shared Location, left bool, ok bool) {
	switch l {
	case LocLeftArm:
		return LocArms, true, true
	case LocRightArm:
		return LocArms, false, true
	case LocLeftLeg:
		return LocLegs, true, true
	case LocRightLeg:
		return LocLegs, false, true
	}
	return "", false, false
}
