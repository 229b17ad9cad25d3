package confirm

import (
	"context"
	"errors"
	"log/slog"

	"padel-app/internal/apperr"
	"padel-app/internal/model"
	"padel-app/internal/score"
	"padel-app/internal/store"
)

// Store is the persistence the service needs. UpdateMatch must only write
// when the stored state still equals expected and the stored revision still
// equals the one on the match.
type Store interface {
	GetMatch(ctx context.Context, id string) (model.Match, error)
	UpdateMatch(ctx context.Context, m model.Match, expected model.MatchState) error
}

type Publisher interface {
	Publish(e model.MatchEvent)
}

type Service struct {
	store  Store
	events Publisher
	logger *slog.Logger
}

func NewService(st Store, events Publisher, logger *slog.Logger) *Service {
	return &Service{store: st, events: events, logger: logger}
}

type SubmitRequest struct {
	MatchID string
	ActorID string
	// Side, when set, must agree with the actor's side in the match.
	Side  model.Side
	Frame score.Frame
	Score model.Score
}

type ResolveRequest struct {
	MatchID    string
	Actor      Actor
	Resolution Resolution
	Score      *model.Score
}

type Result struct {
	State   model.MatchState `json:"state"`
	Outcome Outcome          `json:"outcome"`
	Message string           `json:"message"`
	Match   model.Match      `json:"match"`
}

var messages = map[Outcome]string{
	OutcomeSubmitted:     "Result saved, waiting for the other pair to confirm.",
	OutcomeEdited:        "Result updated, still waiting for confirmation.",
	OutcomeConfirmed:     "Both pairs agree, result confirmed.",
	OutcomeConflict:      "Results differ, the match is now under review.",
	OutcomeReviewUpdated: "Result updated, the match stays under review.",
	OutcomeResolved:      "Review resolved, result confirmed.",
	OutcomeReset:         "Match reopened.",
}

// SubmitResult records a score reported by one of the two pairs.
func (s *Service) SubmitResult(ctx context.Context, req SubmitRequest) (Result, error) {
	if !req.Frame.Valid() {
		return Result{}, apperr.Validationf("invalid_frame", "unknown score frame %q", req.Frame)
	}
	m, err := s.load(ctx, req.MatchID)
	if err != nil {
		return Result{}, err
	}
	side, ok := m.SideOf(req.ActorID)
	if !ok {
		return Result{}, apperr.Validation("not_participant", "submitter does not play in this match")
	}
	if req.Side != "" && req.Side != side {
		return Result{}, apperr.Validation("side_mismatch", "submitter plays on the other side")
	}

	next, outcome, err := Submit(m, side, score.ToMatchFrame(req.Score, req.Frame, side))
	if err != nil {
		return Result{}, err
	}
	return s.commit(ctx, m, next, outcome, req.ActorID)
}

// ResolveConflict settles a match that is under review.
func (s *Service) ResolveConflict(ctx context.Context, req ResolveRequest) (Result, error) {
	m, err := s.load(ctx, req.MatchID)
	if err != nil {
		return Result{}, err
	}
	next, err := Resolve(m, req.Resolution, req.Actor, req.Score)
	if err != nil {
		return Result{}, err
	}
	return s.commit(ctx, m, next, OutcomeResolved, req.Actor.String())
}

// Reset reopens a match for an admin.
func (s *Service) Reset(ctx context.Context, matchID string, actor Actor) (Result, error) {
	m, err := s.load(ctx, matchID)
	if err != nil {
		return Result{}, err
	}
	next, err := Reset(m, actor)
	if err != nil {
		return Result{}, err
	}
	return s.commit(ctx, m, next, OutcomeReset, actor.String())
}

func (s *Service) load(ctx context.Context, matchID string) (model.Match, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Match{}, apperr.NotFound("match", matchID)
	}
	if err != nil {
		return model.Match{}, apperr.Collaborator("load match", err)
	}
	return m, nil
}

// commit writes next only if nobody moved the match since it was read, then
// publishes the audit event.
func (s *Service) commit(ctx context.Context, prev, next model.Match, outcome Outcome, actor string) (Result, error) {
	err := s.store.UpdateMatch(ctx, next, prev.State)
	switch {
	case errors.Is(err, store.ErrStateChanged):
		return Result{}, apperr.StateConflict("concurrent_update", "match changed while saving, reload and try again")
	case errors.Is(err, store.ErrNotFound):
		return Result{}, apperr.NotFound("match", prev.ID)
	case err != nil:
		return Result{}, apperr.Collaborator("save match", err)
	}

	next.Revision = prev.Revision + 1

	s.logger.InfoContext(ctx, "match transition",
		"match_id", next.ID,
		"actor", actor,
		"outcome", outcome,
		"from", prev.State,
		"to", next.State,
	)
	if s.events != nil {
		s.events.Publish(model.MatchEvent{
			MatchID: next.ID,
			Actor:   actor,
			Action:  string(outcome),
			State:   next.State,
		})
	}
	return Result{State: next.State, Outcome: outcome, Message: messages[outcome], Match: next}, nil
}
