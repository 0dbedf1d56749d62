package character

import "strings"

// Rank is a skill training rank.
type Rank string

const (
	RankUntrained   Rank = "untrained"
	RankLearned     Rank = "learned"
	RankPracticed   Rank = "practiced"
	RankAdept       Rank = "adept"
	RankExperienced Rank = "experienced"
	RankExpert      Rank = "expert"
	RankMastered    Rank = "mastered"
)

// Ranks lists every rank in ascending order; the index is the ordinal.
var Ranks = []Rank{RankUntrained, RankLearned, RankPracticed, RankAdept, RankExperienced, RankExpert, RankMastered}

// Ordinal returns 0 (untrained) through 6 (mastered). Unknown ranks are 0.
func (r Rank) Ordinal() int {
	for i, known := range Ranks {
		if known == r {
			return i
		}
	}
	return 0
}

// AtLeast reports whether r is the same as or above other.
func (r Rank) AtLeast(other Rank) bool {
	return r.Ordinal() >= other.Ordinal()
}

// ParseRank matches s case-insensitively against the known ranks.
//
// Postcondition: ok is false and RankUntrained is returned for unknown input.
func ParseRank(s string) (Rank, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Ranks {
		if string(r) == s {
			return r, true
		}
	}
	return RankUntrained, false
}
