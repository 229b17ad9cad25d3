package standings

import (
	"context"
	"testing"

	"padel-app/internal/apperr"
	"padel-app/internal/model"
	"padel-app/internal/store"
)

func TestOverridesLifecycle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	tour, _ := st.CreateTournament(ctx, model.Tournament{Name: "Open", NumSets: 3})
	groupA, _ := st.CreateGroup(ctx, model.Group{TournamentID: tour.ID, Name: "Group A"})
	groupB, _ := st.CreateGroup(ctx, model.Group{TournamentID: tour.ID, Name: "Group B", Position: 1})
	inA, _ := st.CreateCompetitor(ctx, model.Competitor{TournamentID: tour.ID, GroupID: groupA.ID, Name: "Ana / Bea"})
	inB, _ := st.CreateCompetitor(ctx, model.Competitor{TournamentID: tour.ID, GroupID: groupB.ID, Name: "Cris / Dani"})

	o := NewOverrides(st)

	errCases := []struct {
		name       string
		group      string
		competitor string
		rank       int
		kind       apperr.Kind
	}{
		{"zero rank", groupA.ID, inA.ID, 0, apperr.KindValidation},
		{"unknown group", "missing", inA.ID, 1, apperr.KindNotFound},
		{"unknown competitor", groupA.ID, "missing", 1, apperr.KindNotFound},
		{"other group", groupA.ID, inB.ID, 1, apperr.KindValidation},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := o.Set(ctx, tc.group, tc.competitor, tc.rank)
			if got := apperr.KindOf(err); got != tc.kind {
				t.Fatalf("kind = %s, want %s (%v)", got, tc.kind, err)
			}
		})
	}

	if _, err := o.Set(ctx, groupA.ID, inA.ID, 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := o.Set(ctx, groupA.ID, inA.ID, 1); err != nil {
		t.Fatalf("set again: %v", err)
	}
	if _, err := o.Set(ctx, groupB.ID, inB.ID, 1); err != nil {
		t.Fatalf("set b: %v", err)
	}
	list, err := o.List(ctx, groupA.ID)
	if err != nil || len(list) != 1 || list[0].Rank != 1 {
		t.Fatalf("list = %+v, %v", list, err)
	}

	if err := o.Clear(ctx, groupA.ID, inA.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := o.Clear(ctx, groupA.ID, inA.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("second clear should be not found, got %v", err)
	}
	if err := o.ClearTournament(ctx, tour.ID); err != nil {
		t.Fatalf("clear tournament: %v", err)
	}
	if list, _ := o.List(ctx, groupB.ID); len(list) != 0 {
		t.Fatalf("tournament clear left %+v", list)
	}
	if err := o.ClearGroup(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := o.ClearTournament(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
