package standings

import (
	"padel-app/internal/model"
	"padel-app/internal/score"
)

type pairKey struct{ lo, hi string }

func keyOf(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// headToHead indexes direct encounters between competitors. A pair that met
// more than once is decided by the number of wins.
type headToHead map[pairKey]map[string]int

func indexHeadToHead(valid []model.Match) headToHead {
	index := headToHead{}
	for _, m := range valid {
		side, ok := score.Winner(m.Score)
		if !ok {
			continue
		}
		key := keyOf(m.CompetitorAID, m.CompetitorBID)
		wins := index[key]
		if wins == nil {
			wins = map[string]int{}
			index[key] = wins
		}
		wins[m.CompetitorID(side)]++
	}
	return index
}

// winner returns the id of the competitor that won the direct encounter, or
// "" when they never met or the encounters cancel out.
func (h headToHead) winner(a, b string) string {
	wins := h[keyOf(a, b)]
	switch {
	case wins[a] > wins[b]:
		return a
	case wins[b] > wins[a]:
		return b
	}
	return ""
}

func (h headToHead) decided(a, b string) bool {
	return h.winner(a, b) != ""
}

// HeadToHead returns the id of whichever of idA and idB won their direct
// encounter among the valid matches, or "" if there is none.
func HeadToHead(idA, idB string, matches []model.Match) string {
	return indexHeadToHead(Valid(matches)).winner(idA, idB)
}
