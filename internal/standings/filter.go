package standings

import (
	"padel-app/internal/model"
	"padel-app/internal/score"
)

// Counts reports whether a match contributes to standings: it must be
// confirmed or awaiting confirmation and carry a complete result. Disputed
// matches stay out until resolved.
func Counts(m model.Match) bool {
	if m.State != model.MatchConfirmed && m.State != model.MatchAwaitingConfirmation {
		return false
	}
	if m.CompetitorAID == "" || m.CompetitorBID == "" {
		return false
	}
	return score.Normalize(m.Score).Complete
}

// Valid keeps the matches that count, preserving order.
func Valid(matches []model.Match) []model.Match {
	out := make([]model.Match, 0, len(matches))
	for _, m := range matches {
		if Counts(m) {
			out = append(out, m)
		}
	}
	return out
}
