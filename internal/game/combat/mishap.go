package combat

// Mishap is the severity of a failed spell cast.
type Mishap string

const (
	MishapNone     Mishap = ""
	MishapMinor    Mishap = "minor"
	MishapModerate Mishap = "moderate"
	MishapSevere   Mishap = "severe"
	MishapCritical Mishap = "critical"
)

// MishapFor grades a failure by how many successes were missing. One missing
// success is Minor, two or three Moderate, four or more Severe. Rolling no
// successes at all while missing four or more is Critical.
//
// Postcondition: returns MishapNone when successes >= required.
func MishapFor(required, successes int) Mishap {
	missing := required - successes
	switch {
	case missing <= 0:
		return MishapNone
	case missing == 1:
		return MishapMinor
	case missing <= 3:
		return MishapModerate
	case successes == 0:
		return MishapCritical
	}
	return MishapSevere
}
