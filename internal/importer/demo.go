package importer

import (
	"context"
	"log/slog"
	"math/rand"

	"padel-app/internal/apperr"
	"padel-app/internal/model"
)

// DemoStore is what SeedDemo needs on top of an import.
type DemoStore interface {
	Store
	ListTournaments(ctx context.Context) ([]model.Tournament, error)
	ListGroupMatches(ctx context.Context, groupID string) ([]model.Match, error)
	UpdateMatch(ctx context.Context, m model.Match, expected model.MatchState) error
}

var demoPairs = []string{
	"Ana García / Bea Martín",
	"Carlos Ruiz / Dani López",
	"Elena Sanz / Fátima Gil",
	"Gonzalo Vera / Hugo Prieto",
	"Irene Moya / Julia Cano",
	"Kike Soler / Luis Pardo",
	"Marta Ibáñez / Nerea Rey",
	"Óscar Luna / Pablo Ortiz",
	"Quique Roldán / Raúl Peña",
}

// SeedDemo fills an empty store with a demo tournament where most group
// matches already have a confirmed result.
func SeedDemo(ctx context.Context, st DemoStore, logger *slog.Logger) error {
	existing, err := st.ListTournaments(ctx)
	if err != nil {
		return apperr.Collaborator("list tournaments", err)
	}
	if len(existing) > 0 {
		return nil
	}
	summary, err := Import(ctx, st, Request{Name: "Demo Open", NumSets: 3, Groups: 2, Pairs: demoPairs}, logger)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(42))
	for _, g := range summary.Groups {
		matches, err := st.ListGroupMatches(ctx, g.ID)
		if err != nil {
			return apperr.Collaborator("list group matches", err)
		}
		for _, m := range matches {
			if rng.Intn(4) == 0 {
				continue
			}
			m.Score = randomResult(rng)
			m.State = model.MatchConfirmed
			m.SubmittedBy = model.SideA
			if err := st.UpdateMatch(ctx, m, model.MatchPending); err != nil {
				return apperr.Collaborator("seed result", err)
			}
		}
	}
	logger.InfoContext(ctx, "demo tournament seeded", "tournament_id", summary.Tournament.ID)
	return nil
}

func randomResult(rng *rand.Rand) model.Score {
	winner := model.SideA
	if rng.Intn(2) == 0 {
		winner = model.SideB
	}
	won := func() model.Games { return model.Games{A: 6, B: rng.Intn(5)} }
	lost := func() model.Games { return model.Games{A: rng.Intn(5), B: 6} }

	var sets []model.Games
	if rng.Intn(3) == 0 {
		sets = []model.Games{won(), lost(), won()}
	} else {
		sets = []model.Games{won(), won()}
	}
	sc := model.SetScore(3, sets...)
	if winner == model.SideB {
		sc = sc.Swap()
	}
	return sc
}
