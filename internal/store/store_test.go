package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"padel-app/internal/model"
)

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			st, err := NewSQLiteStore(context.Background(), ":memory:", SQLiteOptions{})
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = st.Close() })
			return st
		},
	}
}

type fixture struct {
	tournament model.Tournament
	group      model.Group
	a, b       model.Competitor
	match      model.Match
}

func seed(t *testing.T, st Store) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error
	if f.tournament, err = st.CreateTournament(ctx, model.Tournament{Name: "Open", NumSets: 3}); err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	if f.group, err = st.CreateGroup(ctx, model.Group{TournamentID: f.tournament.ID, Name: "Group A"}); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if f.a, err = st.CreateCompetitor(ctx, model.Competitor{TournamentID: f.tournament.ID, GroupID: f.group.ID, Name: "Ana / Bea", Seed: 1}); err != nil {
		t.Fatalf("create competitor: %v", err)
	}
	if f.b, err = st.CreateCompetitor(ctx, model.Competitor{TournamentID: f.tournament.ID, GroupID: f.group.ID, Name: "Cris / Dani", Seed: 2}); err != nil {
		t.Fatalf("create competitor: %v", err)
	}
	f.match, err = st.CreateMatch(ctx, model.Match{
		TournamentID:  f.tournament.ID,
		GroupID:       f.group.ID,
		CompetitorAID: f.a.ID,
		CompetitorBID: f.b.ID,
		NumSets:       3,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return f
}

func TestStoreMatchLifecycle(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(t)
			ctx := context.Background()
			f := seed(t, st)

			got, err := st.GetMatch(ctx, f.match.ID)
			if err != nil {
				t.Fatalf("get match: %v", err)
			}
			if got.State != model.MatchPending || !got.Score.IsZero() {
				t.Fatalf("new match should be pending with no score: %+v", got)
			}
			if got.CompetitorAName != "Ana / Bea" || got.CompetitorBName != "Cris / Dani" {
				t.Fatalf("names not joined: %q %q", got.CompetitorAName, got.CompetitorBName)
			}

			got.Score = model.SetScore(3, model.Games{A: 6, B: 4}, model.Games{A: 6, B: 3})
			got.State = model.MatchAwaitingConfirmation
			got.SubmittedBy = model.SideA
			if err := st.UpdateMatch(ctx, got, model.MatchPending); err != nil {
				t.Fatalf("update match: %v", err)
			}

			stale := got
			stale.SubmittedBy = model.SideB
			if err := st.UpdateMatch(ctx, stale, model.MatchPending); !errors.Is(err, ErrStateChanged) {
				t.Fatalf("expected ErrStateChanged, got %v", err)
			}

			// Same state, but written since the stale copy was read.
			edited := got
			edited.Revision = 1
			edited.Score = model.SetScore(3, model.Games{A: 7, B: 5}, model.Games{A: 6, B: 3})
			if err := st.UpdateMatch(ctx, edited, model.MatchAwaitingConfirmation); err != nil {
				t.Fatalf("edit match: %v", err)
			}
			if err := st.UpdateMatch(ctx, stale, model.MatchAwaitingConfirmation); !errors.Is(err, ErrStateChanged) {
				t.Fatalf("stale revision should be rejected, got %v", err)
			}
			got, err = st.GetMatch(ctx, f.match.ID)
			if err != nil {
				t.Fatalf("reload match: %v", err)
			}
			if got.Revision != 2 || got.Score.Sets[0].A != 7 {
				t.Fatalf("edit not stored: %+v", got)
			}

			shadow := model.SetScore(3, model.Games{A: 6, B: 4}, model.Games{A: 3, B: 6}, model.Games{A: 2, B: 6})
			got.Shadow = &shadow
			got.State = model.MatchInReview
			if err := st.UpdateMatch(ctx, got, model.MatchAwaitingConfirmation); err != nil {
				t.Fatalf("update to review: %v", err)
			}

			matches, err := st.ListGroupMatches(ctx, f.group.ID)
			if err != nil {
				t.Fatalf("list matches: %v", err)
			}
			if len(matches) != 1 {
				t.Fatalf("expected 1 match, got %d", len(matches))
			}
			stored := matches[0]
			if stored.State != model.MatchInReview || stored.SubmittedBy != model.SideA {
				t.Fatalf("unexpected stored match %+v", stored)
			}
			if stored.Shadow == nil || len(stored.Shadow.Sets) != 3 || stored.Score.Sets[1].B != 3 {
				t.Fatalf("scores not persisted: %+v", stored)
			}

			missing := got
			missing.ID = "missing"
			if err := st.UpdateMatch(ctx, missing, model.MatchInReview); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreRejectsGroupAndCupMatch(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(t)
			f := seed(t, st)
			_, err := st.CreateMatch(context.Background(), model.Match{
				TournamentID:  f.tournament.ID,
				GroupID:       f.group.ID,
				CupID:         "cup",
				CompetitorAID: f.a.ID,
				CompetitorBID: f.b.ID,
			})
			if !errors.Is(err, model.ErrGroupAndCup) {
				t.Fatalf("expected ErrGroupAndCup, got %v", err)
			}
		})
	}
}

func TestStoreOverrides(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(t)
			ctx := context.Background()
			f := seed(t, st)

			if err := st.UpsertOverride(ctx, model.Override{GroupID: f.group.ID, CompetitorID: f.a.ID, Rank: 2}); err != nil {
				t.Fatalf("upsert: %v", err)
			}
			if err := st.UpsertOverride(ctx, model.Override{GroupID: f.group.ID, CompetitorID: f.a.ID, Rank: 1}); err != nil {
				t.Fatalf("upsert again: %v", err)
			}
			if err := st.UpsertOverride(ctx, model.Override{GroupID: f.group.ID, CompetitorID: f.b.ID, Rank: 2}); err != nil {
				t.Fatalf("upsert b: %v", err)
			}
			overrides, err := st.ListOverrides(ctx, f.group.ID)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(overrides) != 2 {
				t.Fatalf("expected 2 overrides, got %+v", overrides)
			}
			for _, o := range overrides {
				if o.CompetitorID == f.a.ID && o.Rank != 1 {
					t.Fatalf("upsert did not replace rank: %+v", o)
				}
			}

			if err := st.DeleteOverride(ctx, f.group.ID, f.a.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := st.DeleteOverride(ctx, f.group.ID, f.a.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
			if err := st.DeleteTournamentOverrides(ctx, f.tournament.ID); err != nil {
				t.Fatalf("delete tournament overrides: %v", err)
			}
			overrides, _ = st.ListOverrides(ctx, f.group.ID)
			if len(overrides) != 0 {
				t.Fatalf("expected no overrides, got %+v", overrides)
			}

			if err := st.UpsertOverride(ctx, model.Override{GroupID: "nope", CompetitorID: f.a.ID, Rank: 1}); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for unknown group, got %v", err)
			}
		})
	}
}

func TestStoreDeleteGroupCascades(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(t)
			ctx := context.Background()
			f := seed(t, st)
			if err := st.UpsertOverride(ctx, model.Override{GroupID: f.group.ID, CompetitorID: f.a.ID, Rank: 1}); err != nil {
				t.Fatalf("upsert: %v", err)
			}

			if err := st.DeleteGroup(ctx, f.group.ID); err != nil {
				t.Fatalf("delete group: %v", err)
			}
			if _, err := st.GetGroup(ctx, f.group.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("group still present: %v", err)
			}
			if _, err := st.GetMatch(ctx, f.match.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("match still present: %v", err)
			}
			overrides, _ := st.ListOverrides(ctx, f.group.ID)
			if len(overrides) != 0 {
				t.Fatalf("overrides survived group deletion")
			}
			if err := st.DeleteGroup(ctx, f.group.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreCupMatches(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(t)
			ctx := context.Background()
			f := seed(t, st)

			cup, err := st.CreateCup(ctx, model.Cup{TournamentID: f.tournament.ID, Name: "Gold"})
			if err != nil {
				t.Fatalf("create cup: %v", err)
			}
			if _, err := st.CreateMatch(ctx, model.Match{
				TournamentID:  f.tournament.ID,
				CupID:         cup.ID,
				Round:         model.RoundSemifinal,
				CompetitorAID: f.a.ID,
				CompetitorBID: f.b.ID,
				NumSets:       3,
			}); err != nil {
				t.Fatalf("create cup match: %v", err)
			}
			matches, err := st.ListCupMatches(ctx, cup.ID)
			if err != nil {
				t.Fatalf("list cup matches: %v", err)
			}
			if len(matches) != 1 || matches[0].GroupID != "" || matches[0].Round != model.RoundSemifinal {
				t.Fatalf("unexpected cup matches %+v", matches)
			}
			groupMatches, _ := st.ListGroupMatches(ctx, f.group.ID)
			if len(groupMatches) != 1 {
				t.Fatalf("cup match leaked into group: %d", len(groupMatches))
			}
		})
	}
}

func TestStoreCupSingleRounds(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(t)
			ctx := context.Background()
			f := seed(t, st)

			cup, err := st.CreateCup(ctx, model.Cup{TournamentID: f.tournament.ID, Name: "Gold"})
			if err != nil {
				t.Fatalf("create cup: %v", err)
			}
			match := func(round model.CupRound) model.Match {
				return model.Match{
					TournamentID:  f.tournament.ID,
					CupID:         cup.ID,
					Round:         round,
					CompetitorAID: f.a.ID,
					CompetitorBID: f.b.ID,
					NumSets:       3,
				}
			}
			for i := 0; i < 2; i++ {
				if _, err := st.CreateMatch(ctx, match(model.RoundSemifinal)); err != nil {
					t.Fatalf("semifinal %d: %v", i, err)
				}
			}
			for _, round := range []model.CupRound{model.RoundFinal, model.RoundThirdPlace} {
				if _, err := st.CreateMatch(ctx, match(round)); err != nil {
					t.Fatalf("first %s: %v", round, err)
				}
				if _, err := st.CreateMatch(ctx, match(round)); !errors.Is(err, ErrDuplicate) {
					t.Fatalf("second %s: expected ErrDuplicate, got %v", round, err)
				}
			}
			matches, _ := st.ListCupMatches(ctx, cup.ID)
			if len(matches) != 4 {
				t.Fatalf("expected 4 cup matches, got %d", len(matches))
			}
		})
	}
}

func TestStoreDeleteTournament(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := open(t)
			ctx := context.Background()
			f := seed(t, st)
			other := seed(t, st)

			if _, err := st.CreateCup(ctx, model.Cup{TournamentID: f.tournament.ID, Name: "Gold"}); err != nil {
				t.Fatalf("create cup: %v", err)
			}
			if err := st.UpsertOverride(ctx, model.Override{GroupID: f.group.ID, CompetitorID: f.a.ID, Rank: 1}); err != nil {
				t.Fatalf("upsert override: %v", err)
			}
			if err := st.DeleteTournament(ctx, f.tournament.ID); err != nil {
				t.Fatalf("delete tournament: %v", err)
			}
			if _, err := st.GetTournament(ctx, f.tournament.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("tournament still there: %v", err)
			}
			if _, err := st.GetMatch(ctx, f.match.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("match still there: %v", err)
			}
			if _, err := st.GetCompetitor(ctx, f.a.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("competitor still there: %v", err)
			}
			if overrides, _ := st.ListOverrides(ctx, f.group.ID); len(overrides) != 0 {
				t.Fatalf("overrides still there: %+v", overrides)
			}
			if _, err := st.GetMatch(ctx, other.match.ID); err != nil {
				t.Fatalf("other tournament was touched: %v", err)
			}
			if err := st.DeleteTournament(ctx, f.tournament.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestSQLiteMigrations(t *testing.T) {
	ctx := context.Background()

	st, err := NewSQLiteStore(ctx, ":memory:", SQLiteOptions{})
	if err != nil {
		t.Fatalf("open with embedded migrations: %v", err)
	}
	defer st.Close()
	var applied int
	if err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 3 {
		t.Fatalf("applied = %d, want 3", applied)
	}
	f := seed(t, st)
	if f.match.Revision != 0 {
		t.Fatalf("new match revision = %d", f.match.Revision)
	}

	empty := t.TempDir()
	if err := os.WriteFile(filepath.Join(empty, "README"), []byte("no sql here"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cases := []struct {
		name string
		dir  string
	}{
		{"missing dir", filepath.Join(t.TempDir(), "nope")},
		{"no sql files", empty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := NewSQLiteStore(ctx, ":memory:", SQLiteOptions{MigrationsDir: tc.dir})
			if err == nil {
				_ = st.Close()
				t.Fatalf("expected an error for %s", tc.dir)
			}
		})
	}
}

func TestRebindDollar(t *testing.T) {
	got := rebindDollar(`SELECT 1 FROM t WHERE a = ? AND b = ?`)
	if got != `SELECT 1 FROM t WHERE a = $1 AND b = $2` {
		t.Fatalf("rebind = %q", got)
	}
}
