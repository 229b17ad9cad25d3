package bracket

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"

	"padel-app/internal/apperr"
	"padel-app/internal/model"
	"padel-app/internal/standings"
	"padel-app/internal/store"

	"golang.org/x/sync/errgroup"
)

// CupStore is the persistence the cup service needs.
type CupStore interface {
	GetTournament(ctx context.Context, id string) (model.Tournament, error)
	GetGroup(ctx context.Context, id string) (model.Group, error)
	GetCup(ctx context.Context, id string) (model.Cup, error)
	CreateCup(ctx context.Context, c model.Cup) (model.Cup, error)
	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)
	ListCupMatches(ctx context.Context, cupID string) ([]model.Match, error)
}

// Standings reads the current table of a group.
type Standings interface {
	GroupStandings(ctx context.Context, groupID string) ([]standings.Row, error)
}

type CupService struct {
	store     CupStore
	standings Standings
	logger    *slog.Logger
}

func NewCupService(st CupStore, table Standings, logger *slog.Logger) *CupService {
	return &CupService{store: st, standings: table, logger: logger}
}

type SeedRequest struct {
	TournamentID string   `json:"-"`
	Name         string   `json:"name"`
	GroupIDs     []string `json:"group_ids"`
	// Seed feeds the draw. Zero keeps the draw reproducible per cup name.
	Seed int64 `json:"seed"`
}

type CupDraw struct {
	Cup     model.Cup     `json:"cup"`
	Matches []model.Match `json:"matches"`
}

// SeedCup takes the top of each group's standings and draws the semifinals.
func (s *CupService) SeedCup(ctx context.Context, req SeedRequest) (CupDraw, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CupDraw{}, apperr.Validation("name_required", "cup name is required")
	}
	perGroup, err := QualifiersPerGroup(len(req.GroupIDs))
	if err != nil {
		return CupDraw{}, err
	}
	seen := map[string]bool{}
	for _, id := range req.GroupIDs {
		if seen[id] {
			return CupDraw{}, apperr.Validationf("duplicate_group", "group %q listed twice", id)
		}
		seen[id] = true
	}

	tournament, err := s.store.GetTournament(ctx, req.TournamentID)
	if err != nil {
		return CupDraw{}, translate(err, "tournament", req.TournamentID)
	}

	qualifiers := make([][]Qualifier, len(req.GroupIDs))
	g, gCtx := errgroup.WithContext(ctx)
	for i, groupID := range req.GroupIDs {
		g.Go(func() error {
			group, err := s.store.GetGroup(gCtx, groupID)
			if err != nil {
				return translate(err, "group", groupID)
			}
			if group.TournamentID != tournament.ID {
				return apperr.Validationf("foreign_group", "group %q belongs to another tournament", groupID)
			}
			rows, err := s.standings.GroupStandings(gCtx, groupID)
			if err != nil {
				return err
			}
			if len(rows) < perGroup {
				return apperr.Validationf("not_enough_competitors", "group %q has %d ranked pairs, %d needed", group.Name, len(rows), perGroup)
			}
			for _, row := range rows[:perGroup] {
				if row.Unresolved {
					s.logger.WarnContext(gCtx, "seeding from an unresolved tie", "group_id", groupID, "competitor_id", row.CompetitorID)
				}
				qualifiers[i] = append(qualifiers[i], Qualifier{
					CompetitorID: row.CompetitorID,
					Name:         row.Name,
					Group:        i,
					Rank:         row.Rank,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CupDraw{}, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = nameSeed(name)
	}
	fixtures, err := DrawSemifinals(qualifiers, rand.New(rand.NewSource(seed)))
	if err != nil {
		return CupDraw{}, err
	}

	cup, err := s.store.CreateCup(ctx, model.Cup{TournamentID: tournament.ID, Name: name})
	if err != nil {
		return CupDraw{}, translate(err, "tournament", tournament.ID)
	}
	matches, err := s.createFixtures(ctx, tournament, cup, fixtures)
	if err != nil {
		return CupDraw{}, err
	}
	s.logger.InfoContext(ctx, "cup drawn", "cup_id", cup.ID, "tournament_id", tournament.ID, "groups", len(req.GroupIDs))
	return CupDraw{Cup: cup, Matches: matches}, nil
}

// CreateFinals adds the final and third place match once both semifinals are
// confirmed.
func (s *CupService) CreateFinals(ctx context.Context, cupID string) (CupDraw, error) {
	cup, err := s.store.GetCup(ctx, cupID)
	if err != nil {
		return CupDraw{}, translate(err, "cup", cupID)
	}
	tournament, err := s.store.GetTournament(ctx, cup.TournamentID)
	if err != nil {
		return CupDraw{}, translate(err, "tournament", cup.TournamentID)
	}
	existing, err := s.store.ListCupMatches(ctx, cupID)
	if err != nil {
		return CupDraw{}, apperr.Collaborator("load cup matches", err)
	}
	var semis []model.Match
	for _, m := range existing {
		switch m.Round {
		case model.RoundSemifinal:
			semis = append(semis, m)
		case model.RoundFinal, model.RoundThirdPlace:
			return CupDraw{}, apperr.StateConflict("finals_exist", "finals were already created for this cup")
		}
	}
	fixtures, err := Finals(semis)
	if err != nil {
		return CupDraw{}, err
	}
	matches, err := s.createFixtures(ctx, tournament, cup, fixtures)
	if err != nil {
		return CupDraw{}, err
	}
	s.logger.InfoContext(ctx, "cup finals created", "cup_id", cup.ID)
	return CupDraw{Cup: cup, Matches: matches}, nil
}

// CupMatches lists every match of a cup.
func (s *CupService) CupMatches(ctx context.Context, cupID string) ([]model.Match, error) {
	if _, err := s.store.GetCup(ctx, cupID); err != nil {
		return nil, translate(err, "cup", cupID)
	}
	matches, err := s.store.ListCupMatches(ctx, cupID)
	if err != nil {
		return nil, apperr.Collaborator("load cup matches", err)
	}
	return matches, nil
}

func (s *CupService) createFixtures(ctx context.Context, t model.Tournament, cup model.Cup, fixtures []Fixture) ([]model.Match, error) {
	out := make([]model.Match, 0, len(fixtures))
	for _, f := range fixtures {
		m, err := s.store.CreateMatch(ctx, model.Match{
			TournamentID:  t.ID,
			CupID:         cup.ID,
			Round:         f.Round,
			CompetitorAID: f.A,
			CompetitorBID: f.B,
			NumSets:       t.NumSets,
			State:         model.MatchPending,
		})
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.StateConflict("finals_exist", "finals were already created for this cup")
		}
		if err != nil {
			return nil, apperr.Collaborator("create cup match", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func translate(err error, entity, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Collaborator("load "+entity, err)
}

func nameSeed(name string) int64 {
	var h int64 = 1125899906842597
	for _, r := range name {
		h = 31*h + int64(r)
	}
	return h
}
