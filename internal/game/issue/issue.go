// Package issue defines the result variants the rules engine reports instead of
// failing: malformed input that was repaired, capacity violations, invalid
// selections that were clamped, and aborted resolutions.
package issue

import "fmt"

// Kind classifies a rules-level problem.
type Kind int

const (
	// None is the zero Kind; an operation with status None was applied.
	None Kind = iota
	// MalformedInput marks a missing or wrongly shaped field that was replaced by a default.
	MalformedInput
	// CapacityExceeded marks a rejected operation that would break an attunement or slot limit.
	CapacityExceeded
	// InvalidSelection marks an out-of-range or unknown input that was clamped or zeroed.
	InvalidSelection
	// Aborted marks a resolution cancelled before any dice were rolled.
	Aborted
)

// String returns the snake_case label for k.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case MalformedInput:
		return "malformed_input"
	case CapacityExceeded:
		return "capacity_exceeded"
	case InvalidSelection:
		return "invalid_selection"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MarshalText encodes k as its label.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Issue is one noted problem. Path names the record field involved using
// dotted notation, e.g. "system.attributes.soul.value".
type Issue struct {
	Kind   Kind
	Path   string
	Detail string
}

// String renders the issue for logs and CLI output.
func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
	}
	return fmt.Sprintf("%s at %s: %s", i.Kind, i.Path, i.Detail)
}

// Malformed is shorthand for a MalformedInput issue.
func Malformed(path, format string, args ...any) Issue {
	return Issue{Kind: MalformedInput, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// Invalid is shorthand for an InvalidSelection issue.
func Invalid(path, format string, args ...any) Issue {
	return Issue{Kind: InvalidSelection, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// Capacity is shorthand for a CapacityExceeded issue.
func Capacity(path, format string, args ...any) Issue {
	return Issue{Kind: CapacityExceeded, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// Has reports whether any issue in list is of kind k.
func Has(list []Issue, k Kind) bool {
	for _, i := range list {
		if i.Kind == k {
			return true
		}
	}
	return false
}
