package standings

import (
	"context"
	"errors"

	"padel-app/internal/apperr"
	"padel-app/internal/model"
	"padel-app/internal/store"

	"golang.org/x/sync/errgroup"
)

// Source is the part of the store the standings loader reads.
type Source interface {
	GetGroup(ctx context.Context, id string) (model.Group, error)
	ListGroupMatches(ctx context.Context, groupID string) ([]model.Match, error)
	ListOverrides(ctx context.Context, groupID string) ([]model.Override, error)
}

type Service struct {
	src  Source
	opts Options
}

func NewService(src Source, opts Options) *Service {
	return &Service{src: src, opts: opts}
}

func (s *Service) Options() Options {
	return s.opts
}

// GroupStandings reads one snapshot of a group and computes its table.
func (s *Service) GroupStandings(ctx context.Context, groupID string) ([]Row, error) {
	var (
		matches   []model.Match
		overrides []model.Override
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.src.GetGroup(gCtx, groupID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("group", groupID)
			}
			return apperr.Collaborator("load group", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.src.ListGroupMatches(gCtx, groupID)
		if err != nil {
			return apperr.Collaborator("load group matches", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		overrides, err = s.src.ListOverrides(gCtx, groupID)
		if err != nil {
			return apperr.Collaborator("load overrides", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Compute(matches, OverrideMap(overrides), s.opts), nil
}

func OverrideMap(overrides []model.Override) map[string]int {
	out := make(map[string]int, len(overrides))
	for _, o := range overrides {
		out[o.CompetitorID] = o.Rank
	}
	return out
}
