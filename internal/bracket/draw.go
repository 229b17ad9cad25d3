// Package bracket builds group schedules and seeds cup rounds from group
// standings.
package bracket

import (
	"math/rand"

	"padel-app/internal/apperr"
	"padel-app/internal/model"
	"padel-app/internal/score"
)

// CupSize is the number of qualifiers a cup starts with.
const CupSize = 4

// Pairing is one scheduled meeting between two competitors.
type Pairing struct {
	A string
	B string
}

// Fixture is a cup match to create.
type Fixture struct {
	Round model.CupRound
	A     string
	B     string
}

// Qualifier is a competitor carried out of a group into the cup.
type Qualifier struct {
	CompetitorID string
	Name         string
	// Group is the position of the source group in the draw.
	Group int
	// Rank is the effective standings rank inside that group.
	Rank int
}

// AssignBlocks splits items into groups contiguous blocks. Sizes differ by at
// most one and earlier groups take the remainder.
func AssignBlocks[T any](items []T, groups int) ([][]T, error) {
	if groups < 1 {
		return nil, apperr.Validationf("invalid_group_count", "group count must be at least 1, got %d", groups)
	}
	if len(items) < 2*groups {
		return nil, apperr.Validationf("not_enough_pairs", "%d pairs cannot fill %d groups of at least two", len(items), groups)
	}
	size, rest := len(items)/groups, len(items)%groups
	out := make([][]T, 0, groups)
	start := 0
	for g := 0; g < groups; g++ {
		n := size
		if g < rest {
			n++
		}
		out = append(out, items[start:start+n])
		start += n
	}
	return out, nil
}

// RoundRobin lists every pairing of ids once, i before j, in input order.
func RoundRobin(ids []string) []Pairing {
	out := make([]Pairing, 0, len(ids)*(len(ids)-1)/2)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			out = append(out, Pairing{A: ids[i], B: ids[j]})
		}
	}
	return out
}

// QualifiersPerGroup returns how many competitors each of groupCount groups
// sends to the cup.
func QualifiersPerGroup(groupCount int) (int, error) {
	if groupCount < 1 || CupSize%groupCount != 0 {
		return 0, apperr.Validationf("invalid_group_count", "a cup of %d cannot be drawn from %d groups", CupSize, groupCount)
	}
	return CupSize / groupCount, nil
}

// DrawSemifinals pairs the qualifiers of each group, listed in rank order,
// into two semifinals. Group winners go to pot 1 first, then runners-up, so
// pot 1 holds the best half. Each pot 1 entry meets a pot 2 entry drawn at
// random, avoiding two qualifiers of the same group whenever possible.
func DrawSemifinals(perGroup [][]Qualifier, rng *rand.Rand) ([]Fixture, error) {
	ordered := interleave(perGroup)
	if len(ordered) != CupSize {
		return nil, apperr.Validationf("invalid_qualifiers", "a cup needs exactly %d qualifiers, got %d", CupSize, len(ordered))
	}
	seen := map[string]bool{}
	for _, q := range ordered {
		if q.CompetitorID == "" || seen[q.CompetitorID] {
			return nil, apperr.Validation("invalid_qualifiers", "qualifiers must be distinct competitors")
		}
		seen[q.CompetitorID] = true
	}

	half := len(ordered) / 2
	pot1, pot2 := ordered[:half], ordered[half:]

	var clean, all [][]int
	for _, perm := range permutations(len(pot2)) {
		all = append(all, perm)
		if !sameGroupClash(pot1, pot2, perm) {
			clean = append(clean, perm)
		}
	}
	candidates := clean
	if len(candidates) == 0 {
		candidates = all
	}
	pick := candidates[rng.Intn(len(candidates))]

	out := make([]Fixture, 0, half)
	for i, j := range pick {
		out = append(out, Fixture{
			Round: model.RoundSemifinal,
			A:     pot1[i].CompetitorID,
			B:     pot2[j].CompetitorID,
		})
	}
	return out, nil
}

// interleave orders qualifiers by rank first and group position second.
func interleave(perGroup [][]Qualifier) []Qualifier {
	var out []Qualifier
	for rank := 0; ; rank++ {
		added := false
		for _, group := range perGroup {
			if rank < len(group) {
				out = append(out, group[rank])
				added = true
			}
		}
		if !added {
			return out
		}
	}
}

func sameGroupClash(pot1, pot2 []Qualifier, perm []int) bool {
	for i, j := range perm {
		if pot1[i].Group == pot2[j].Group {
			return true
		}
	}
	return false
}

// permutations lists every ordering of 0..n-1 in lexicographic order.
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, rest := range permutations(n - 1) {
		for pos := 0; pos <= len(rest); pos++ {
			perm := make([]int, 0, n)
			perm = append(perm, rest[:pos]...)
			perm = append(perm, n-1)
			perm = append(perm, rest[pos:]...)
			out = append(out, perm)
		}
	}
	return out
}

// Finals builds the final and the third place match from two confirmed
// semifinals.
func Finals(semis []model.Match) ([]Fixture, error) {
	if len(semis) != 2 {
		return nil, apperr.StateConflict("semifinals_missing", "the cup needs exactly two semifinals")
	}
	var winners, losers []string
	for _, m := range semis {
		if m.State != model.MatchConfirmed {
			return nil, apperr.StateConflict("semifinals_pending", "both semifinals must be confirmed first")
		}
		side, ok := score.Winner(m.Score)
		if !ok {
			return nil, apperr.StateConflict("semifinals_pending", "a semifinal has no decided result")
		}
		winners = append(winners, m.CompetitorID(side))
		losers = append(losers, m.CompetitorID(side.Other()))
	}
	return []Fixture{
		{Round: model.RoundFinal, A: winners[0], B: winners[1]},
		{Round: model.RoundThirdPlace, A: losers[0], B: losers[1]},
	}, nil
}
