// Package confirm implements the two-party result confirmation protocol.
//
// A result moves pending -> awaiting_confirmation -> confirmed. When the
// second side reports a different score the match goes to in_review, keeping
// the first report as canonical and the second as shadow, until someone
// resolves it. Confirmed matches only change through an admin reset.
//
// The functions in this file are pure: they validate, then return the next
// match value, and never touch their input.
package confirm

import (
	"padel-app/internal/apperr"
	"padel-app/internal/model"
	"padel-app/internal/score"
)

type Outcome string

const (
	OutcomeSubmitted     Outcome = "submitted"
	OutcomeEdited        Outcome = "edited"
	OutcomeConfirmed     Outcome = "confirmed"
	OutcomeConflict      Outcome = "conflict"
	OutcomeReviewUpdated Outcome = "review_updated"
	OutcomeResolved      Outcome = "resolved"
	OutcomeReset         Outcome = "reset"
)

type Resolution string

const (
	AcceptCanonical Resolution = "acceptCanonical"
	AcceptShadow    Resolution = "acceptShadow"
	Manual          Resolution = "manual"
)

func (r Resolution) Valid() bool {
	return r == AcceptCanonical || r == AcceptShadow || r == Manual
}

// Actor is whoever triggers a transition: a competitor, an admin, or both.
type Actor struct {
	CompetitorID string
	Admin        bool
}

func (a Actor) String() string {
	switch {
	case a.CompetitorID != "":
		return a.CompetitorID
	case a.Admin:
		return "admin"
	}
	return "anonymous"
}

// PrepareScore fills the match format into a set score and checks it.
func PrepareScore(m model.Match, sc model.Score) (model.Score, error) {
	sc = sc.Clone()
	if sc.Kind() == model.FormatSets {
		sc.Format = model.FormatSets
		if sc.NumSets == 0 {
			sc.NumSets = m.NumSets
		}
	}
	if err := score.Validate(sc, m.NumSets); err != nil {
		return model.Score{}, err
	}
	return sc, nil
}

// Submit applies a score reported by side. The score must already be in the
// match frame.
func Submit(m model.Match, side model.Side, sc model.Score) (model.Match, Outcome, error) {
	if side != model.SideA && side != model.SideB {
		return m, "", apperr.Validation("not_participant", "submitter does not play in this match")
	}
	if m.State == model.MatchConfirmed {
		return m, "", apperr.StateConflict("already_confirmed", "match result is already confirmed")
	}
	prepared, err := PrepareScore(m, sc)
	if err != nil {
		return m, "", err
	}

	next := m.Clone()
	switch m.State {
	case model.MatchPending, "":
		next.State = model.MatchAwaitingConfirmation
		next.SubmittedBy = side
		next.Score = prepared
		next.Shadow = nil
		return next, OutcomeSubmitted, nil

	case model.MatchAwaitingConfirmation:
		if side == m.SubmittedBy {
			next.Score = prepared
			return next, OutcomeEdited, nil
		}
		if score.Equal(m.Score, prepared) {
			next.State = model.MatchConfirmed
			return next, OutcomeConfirmed, nil
		}
		next.State = model.MatchInReview
		next.Shadow = &prepared
		return next, OutcomeConflict, nil

	case model.MatchInReview:
		if side == m.SubmittedBy {
			next.Score = prepared
		} else {
			next.Shadow = &prepared
		}
		return next, OutcomeReviewUpdated, nil
	}
	return m, "", apperr.StateConflict("unknown_state", "match is in an unknown state")
}

// Resolve settles a match in review. Admins may apply any resolution and are
// the only ones allowed to enter a manual score. A participant may only
// concede: the canonical reporter can accept the shadow, the other side can
// accept the canonical result.
func Resolve(m model.Match, res Resolution, actor Actor, manual *model.Score) (model.Match, error) {
	if !res.Valid() {
		return m, apperr.Validationf("invalid_resolution", "unknown resolution %q", res)
	}
	if m.State != model.MatchInReview {
		return m, apperr.StateConflict("not_in_review", "only matches in review can be resolved")
	}
	if err := authorizeResolution(m, res, actor); err != nil {
		return m, err
	}

	next := m.Clone()
	switch res {
	case AcceptCanonical:
	case AcceptShadow:
		if m.Shadow == nil {
			return m, apperr.StateConflict("no_shadow", "match has no alternate result to accept")
		}
		next.Score = m.Shadow.Clone()
	case Manual:
		if manual == nil {
			return m, apperr.Validation("score_required", "manual resolution needs a score")
		}
		prepared, err := PrepareScore(m, *manual)
		if err != nil {
			return m, err
		}
		next.Score = prepared
	}
	next.Shadow = nil
	next.State = model.MatchConfirmed
	return next, nil
}

func authorizeResolution(m model.Match, res Resolution, actor Actor) error {
	if actor.Admin {
		return nil
	}
	if res == Manual {
		return apperr.Validation("admin_required", "only an admin can set a manual result")
	}
	side, ok := m.SideOf(actor.CompetitorID)
	if !ok {
		return apperr.Validation("not_participant", "resolver does not play in this match")
	}
	if res == AcceptShadow && side != m.SubmittedBy {
		return apperr.Validation("resolution_not_allowed", "only the first reporter can accept the other result")
	}
	if res == AcceptCanonical && side == m.SubmittedBy {
		return apperr.Validation("resolution_not_allowed", "the first reporter cannot accept their own result")
	}
	return nil
}

// Reset reopens a match, clearing every result field.
func Reset(m model.Match, actor Actor) (model.Match, error) {
	if !actor.Admin {
		return m, apperr.Validation("admin_required", "only an admin can reset a match")
	}
	next := m.Clone()
	next.State = model.MatchPending
	next.Score = model.Score{}
	next.Shadow = nil
	next.SubmittedBy = ""
	return next, nil
}
