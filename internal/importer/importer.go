// Package importer creates tournaments from an ordered list of pairs: groups
// by positional blocks, then a full round robin inside each group.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"padel-app/internal/apperr"
	"padel-app/internal/bracket"
	"padel-app/internal/model"
	"padel-app/internal/store"
)

// Store is what an import writes to.
type Store interface {
	CreateTournament(ctx context.Context, t model.Tournament) (model.Tournament, error)
	CreateGroup(ctx context.Context, g model.Group) (model.Group, error)
	CreateCompetitor(ctx context.Context, c model.Competitor) (model.Competitor, error)
	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)
	DeleteTournament(ctx context.Context, id string) error
}

type Request struct {
	Name    string   `json:"name"`
	NumSets int      `json:"num_sets"`
	Groups  int      `json:"groups"`
	Pairs   []string `json:"pairs"`
}

type Summary struct {
	Tournament  model.Tournament `json:"tournament"`
	Groups      []model.Group    `json:"groups"`
	Competitors int              `json:"competitors"`
	Matches     int              `json:"matches"`
}

// Import validates req and writes the tournament, its groups, competitors and
// pending round robin matches.
func Import(ctx context.Context, st Store, req Request, logger *slog.Logger) (Summary, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Summary{}, apperr.Validation("name_required", "tournament name is required")
	}
	if req.NumSets != 2 && req.NumSets != 3 {
		return Summary{}, apperr.Validationf("invalid_num_sets", "number of sets must be 2 or 3, got %d", req.NumSets)
	}
	pairs := make([]string, 0, len(req.Pairs))
	seen := map[string]bool{}
	for _, p := range req.Pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			return Summary{}, apperr.Validationf("duplicate_pair", "pair %q listed twice", p)
		}
		seen[key] = true
		pairs = append(pairs, p)
	}
	blocks, err := bracket.AssignBlocks(pairs, req.Groups)
	if err != nil {
		return Summary{}, err
	}

	t, err := st.CreateTournament(ctx, model.Tournament{Name: name, NumSets: req.NumSets})
	if err != nil {
		return Summary{}, apperr.Collaborator("create tournament", err)
	}
	out := Summary{Tournament: t}
	if err := populate(ctx, st, t, blocks, &out); err != nil {
		// Drop the partial tournament; nothing of a failed import stays visible.
		if derr := st.DeleteTournament(context.WithoutCancel(ctx), t.ID); derr != nil {
			logger.ErrorContext(ctx, "roll back failed import", "tournament_id", t.ID, "error", derr)
		}
		return Summary{}, err
	}

	logger.InfoContext(ctx, "tournament imported",
		"tournament_id", t.ID,
		"groups", len(out.Groups),
		"competitors", out.Competitors,
		"matches", out.Matches,
	)
	return out, nil
}

// populate writes the groups, competitors and matches of t into out.
func populate(ctx context.Context, st Store, t model.Tournament, blocks [][]string, out *Summary) error {
	seed := 0
	for g, block := range blocks {
		group, err := st.CreateGroup(ctx, model.Group{
			TournamentID: t.ID,
			Name:         GroupName(g),
			Position:     g,
		})
		if err != nil {
			return collaborator("create group", err)
		}
		out.Groups = append(out.Groups, group)

		ids := make([]string, 0, len(block))
		for _, pair := range block {
			seed++
			c, err := st.CreateCompetitor(ctx, model.Competitor{
				TournamentID: t.ID,
				GroupID:      group.ID,
				Name:         pair,
				Seed:         seed,
			})
			if err != nil {
				return collaborator("create competitor", err)
			}
			ids = append(ids, c.ID)
			out.Competitors++
		}

		for _, p := range bracket.RoundRobin(ids) {
			_, err := st.CreateMatch(ctx, model.Match{
				TournamentID:  t.ID,
				GroupID:       group.ID,
				CompetitorAID: p.A,
				CompetitorBID: p.B,
				NumSets:       t.NumSets,
				State:         model.MatchPending,
			})
			if err != nil {
				return collaborator("create match", err)
			}
			out.Matches++
		}
	}
	return nil
}

// GroupName labels groups A, B, C and so on.
func GroupName(position int) string {
	if position < 26 {
		return fmt.Sprintf("Group %c", 'A'+position)
	}
	return fmt.Sprintf("Group %d", position+1)
}

func collaborator(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.StateConflict("import_interrupted", op+": parent record disappeared during import")
	}
	return apperr.Collaborator(op, err)
}
