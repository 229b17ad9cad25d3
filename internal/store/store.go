package store

import (
	"context"
	"errors"

	"padel-app/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrStateChanged is returned by UpdateMatch when the stored match was
	// written after the caller read it.
	ErrStateChanged = errors.New("match state changed")
	// ErrDuplicate is returned by CreateMatch when the cup already has a
	// match for a single-match round (final, third place).
	ErrDuplicate = errors.New("already exists")
)

type Store interface {
	ListTournaments(ctx context.Context) ([]model.Tournament, error)
	GetTournament(ctx context.Context, id string) (model.Tournament, error)
	CreateTournament(ctx context.Context, t model.Tournament) (model.Tournament, error)
	// DeleteTournament removes the tournament and everything created under it.
	DeleteTournament(ctx context.Context, id string) error

	ListGroups(ctx context.Context, tournamentID string) ([]model.Group, error)
	GetGroup(ctx context.Context, id string) (model.Group, error)
	CreateGroup(ctx context.Context, g model.Group) (model.Group, error)
	// DeleteGroup removes the group with its competitors, matches and overrides.
	DeleteGroup(ctx context.Context, id string) error

	ListCompetitors(ctx context.Context, groupID string) ([]model.Competitor, error)
	GetCompetitor(ctx context.Context, id string) (model.Competitor, error)
	CreateCompetitor(ctx context.Context, c model.Competitor) (model.Competitor, error)

	ListGroupMatches(ctx context.Context, groupID string) ([]model.Match, error)
	ListCupMatches(ctx context.Context, cupID string) ([]model.Match, error)
	GetMatch(ctx context.Context, id string) (model.Match, error)
	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)
	// UpdateMatch writes the result fields of m only if the stored state is
	// still expected and the stored revision still equals m.Revision. A
	// successful write bumps the revision.
	UpdateMatch(ctx context.Context, m model.Match, expected model.MatchState) error

	GetCup(ctx context.Context, id string) (model.Cup, error)
	CreateCup(ctx context.Context, c model.Cup) (model.Cup, error)

	ListOverrides(ctx context.Context, groupID string) ([]model.Override, error)
	UpsertOverride(ctx context.Context, o model.Override) error
	DeleteOverride(ctx context.Context, groupID, competitorID string) error
	DeleteGroupOverrides(ctx context.Context, groupID string) error
	DeleteTournamentOverrides(ctx context.Context, tournamentID string) error

	RecordEvent(ctx context.Context, e model.MatchEvent) error

	Close() error
}
