// Package dice provides the randomness abstraction, dice-pool sizing and
// success counting for d12 pool checks.
package dice

import "fmt"

// Sides is the number of faces on every pool die.
const Sides = 12

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Bands are the die faces at which a die starts scoring one and two successes.
//
// Invariant: 1 <= Single <= Double.
type Bands struct {
	Single int
	Double int
}

// DefaultBands scores 8-11 as one success and 12 as two.
var DefaultBands = Bands{Single: 8, Double: 12}

// Successes returns the successes a single die face scores under b.
func (b Bands) Successes(face int) int {
	switch {
	case face >= b.Double:
		return 2
	case face >= b.Single:
		return 1
	}
	return 0
}

// Count sums the successes of every face in results.
//
// Postcondition: 0 <= return value <= 2*len(results).
func (b Bands) Count(results []int) int {
	total := 0
	for _, face := range results {
		total += b.Successes(face)
	}
	return total
}

// CountSuccesses counts results under DefaultBands.
func CountSuccesses(results []int) int {
	return DefaultBands.Count(results)
}

// Result holds the full audit trail of one pool roll.
//
// Postcondition: Successes == bands.Count(Dice) for the bands it was resolved under.
type Result struct {
	Pool      int   // number of dice requested
	Dice      []int // individual die faces in roll order
	Successes int
}

// String returns a human-readable audit string such as "4d12 [8 12 5 11] = 4 successes".
func (r Result) String() string {
	return fmt.Sprintf("%dd%d %v = %d successes", r.Pool, Sides, r.Dice, r.Successes)
}
