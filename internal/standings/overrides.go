package standings

import (
	"context"
	"errors"

	"padel-app/internal/apperr"
	"padel-app/internal/model"
	"padel-app/internal/store"
)

// OverrideStore persists rank hints.
type OverrideStore interface {
	GetGroup(ctx context.Context, id string) (model.Group, error)
	GetTournament(ctx context.Context, id string) (model.Tournament, error)
	GetCompetitor(ctx context.Context, id string) (model.Competitor, error)
	ListOverrides(ctx context.Context, groupID string) ([]model.Override, error)
	UpsertOverride(ctx context.Context, o model.Override) error
	DeleteOverride(ctx context.Context, groupID, competitorID string) error
	DeleteGroupOverrides(ctx context.Context, groupID string) error
	DeleteTournamentOverrides(ctx context.Context, tournamentID string) error
}

// Overrides manages operator rank hints. Whether a hint has any effect is
// decided by Compute, which applies it only inside a true tie.
type Overrides struct {
	store OverrideStore
}

func NewOverrides(st OverrideStore) *Overrides {
	return &Overrides{store: st}
}

func (o *Overrides) List(ctx context.Context, groupID string) ([]model.Override, error) {
	if _, err := o.store.GetGroup(ctx, groupID); err != nil {
		return nil, lookupError(err, "group", groupID)
	}
	out, err := o.store.ListOverrides(ctx, groupID)
	if err != nil {
		return nil, apperr.Collaborator("load overrides", err)
	}
	return out, nil
}

// Set stores rank for the competitor, replacing any earlier hint.
func (o *Overrides) Set(ctx context.Context, groupID, competitorID string, rank int) (model.Override, error) {
	if rank < 1 {
		return model.Override{}, apperr.Validationf("invalid_rank", "rank must be at least 1, got %d", rank)
	}
	if _, err := o.store.GetGroup(ctx, groupID); err != nil {
		return model.Override{}, lookupError(err, "group", groupID)
	}
	c, err := o.store.GetCompetitor(ctx, competitorID)
	if err != nil {
		return model.Override{}, lookupError(err, "competitor", competitorID)
	}
	if c.GroupID != groupID {
		return model.Override{}, apperr.Validation("not_in_group", "competitor does not play in this group")
	}
	override := model.Override{GroupID: groupID, CompetitorID: competitorID, Rank: rank}
	if err := o.store.UpsertOverride(ctx, override); err != nil {
		return model.Override{}, lookupError(err, "group", groupID)
	}
	return override, nil
}

func (o *Overrides) Clear(ctx context.Context, groupID, competitorID string) error {
	if err := o.store.DeleteOverride(ctx, groupID, competitorID); err != nil {
		return lookupError(err, "override", competitorID)
	}
	return nil
}

func (o *Overrides) ClearGroup(ctx context.Context, groupID string) error {
	if _, err := o.store.GetGroup(ctx, groupID); err != nil {
		return lookupError(err, "group", groupID)
	}
	if err := o.store.DeleteGroupOverrides(ctx, groupID); err != nil {
		return apperr.Collaborator("delete overrides", err)
	}
	return nil
}

func (o *Overrides) ClearTournament(ctx context.Context, tournamentID string) error {
	if _, err := o.store.GetTournament(ctx, tournamentID); err != nil {
		return lookupError(err, "tournament", tournamentID)
	}
	if err := o.store.DeleteTournamentOverrides(ctx, tournamentID); err != nil {
		return apperr.Collaborator("delete overrides", err)
	}
	return nil
}

func lookupError(err error, entity, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Collaborator("load "+entity, err)
}
