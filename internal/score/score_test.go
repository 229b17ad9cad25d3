package score

import (
	"errors"
	"testing"

	"padel-app/internal/apperr"
	"padel-app/internal/model"
)

func TestNormalizeThreeSets(t *testing.T) {
	sc := model.SetScore(3, model.Games{A: 6, B: 4}, model.Games{A: 4, B: 6}, model.Games{A: 7, B: 5})
	sum := Normalize(sc)

	if got := sum.SetsFor(model.SideA); got != 2 {
		t.Fatalf("sets for = %d, want 2", got)
	}
	if got := sum.SetsAgainst(model.SideA); got != 1 {
		t.Fatalf("sets against = %d, want 1", got)
	}
	if got := sum.GamesFor(model.SideA); got != 17 {
		t.Fatalf("games for = %d, want 17", got)
	}
	if got := sum.GamesAgainst(model.SideA); got != 15 {
		t.Fatalf("games against = %d, want 15", got)
	}
	if !sum.Complete {
		t.Fatalf("expected complete result")
	}
}

func TestNormalizeCompleteness(t *testing.T) {
	tests := []struct {
		name     string
		score    model.Score
		complete bool
	}{
		{"empty", model.Score{}, false},
		{"three sets one played", model.SetScore(3, model.Games{A: 6, B: 2}), false},
		{"three sets split", model.SetScore(3, model.Games{A: 6, B: 2}, model.Games{A: 3, B: 6}), false},
		{"three sets straight", model.SetScore(3, model.Games{A: 6, B: 2}, model.Games{A: 6, B: 3}), true},
		{"undeclared format decided", model.SetScore(0, model.Games{A: 2, B: 6}, model.Games{A: 3, B: 6}), true},
		{"two sets both played", model.SetScore(2, model.Games{A: 6, B: 2}, model.Games{A: 3, B: 6}), true},
		{"two sets one played", model.SetScore(2, model.Games{A: 6, B: 2}), false},
		{"legacy", model.GameScore(9, 7), true},
		{"legacy tied", model.GameScore(8, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.score).Complete; got != tt.complete {
				t.Fatalf("complete = %v, want %v", got, tt.complete)
			}
		})
	}
}

func TestNormalizeLegacyTotals(t *testing.T) {
	sum := Normalize(model.Score{Games: &model.Games{A: 5, B: 9}})
	if sum.GamesA != 5 || sum.GamesB != 9 || sum.SetsA != 0 || sum.SetsB != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name  string
		score model.Score
		want  model.Side
		ok    bool
	}{
		{"sets", model.SetScore(3, model.Games{A: 4, B: 6}, model.Games{A: 6, B: 4}, model.Games{A: 3, B: 6}), model.SideB, true},
		{"two sets split on games", model.SetScore(2, model.Games{A: 6, B: 4}, model.Games{A: 5, B: 7}), model.SideB, true},
		{"two sets level", model.SetScore(2, model.Games{A: 6, B: 4}, model.Games{A: 4, B: 6}), "", false},
		{"legacy", model.GameScore(9, 3), model.SideA, true},
		{"incomplete", model.SetScore(3, model.Games{A: 6, B: 4}), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Winner(tt.score)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("winner = %q/%v, want %q/%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		score   model.Score
		numSets int
		code    string
	}{
		{"tied legacy", model.GameScore(6, 6), 0, "tied_score"},
		{"tied set", model.SetScore(3, model.Games{A: 6, B: 6}, model.Games{A: 6, B: 2}), 3, "tied_set"},
		{"negative", model.SetScore(3, model.Games{A: -1, B: 6}, model.Games{A: 2, B: 6}), 3, "negative_score"},
		{"negative legacy", model.GameScore(-2, 6), 0, "negative_score"},
		{"empty", model.Score{}, 3, "score_required"},
		{"bad format", model.SetScore(5, model.Games{A: 6, B: 1}), 0, "invalid_num_sets"},
		{"format mismatch", model.SetScore(2, model.Games{A: 6, B: 1}, model.Games{A: 6, B: 1}), 3, "num_sets_mismatch"},
		{"too many sets", model.SetScore(2, model.Games{A: 6, B: 1}, model.Games{A: 1, B: 6}, model.Games{A: 6, B: 1}), 2, "too_many_sets"},
		{"gap", model.Score{Format: model.FormatSets, NumSets: 3, Sets: []*model.Games{nil, {A: 6, B: 1}, {A: 6, B: 1}}}, 3, "missing_set"},
		{"two sets with a gap", model.Score{Format: model.FormatSets, NumSets: 2, Sets: []*model.Games{{A: 6, B: 1}, nil, {A: 6, B: 1}}}, 2, "missing_set"},
		{"incomplete", model.SetScore(3, model.Games{A: 6, B: 1}), 3, "incomplete_score"},
		{"after decision", model.SetScore(3, model.Games{A: 6, B: 1}, model.Games{A: 6, B: 1}, model.Games{A: 1, B: 6}), 3, "set_after_decision"},
		{"two sets undecided", model.SetScore(2, model.Games{A: 6, B: 4}, model.Games{A: 4, B: 6}), 2, "tied_score"},
		{"mixed", model.Score{Format: model.FormatSets, NumSets: 3, Sets: []*model.Games{{A: 6, B: 1}, {A: 6, B: 1}}, Games: &model.Games{A: 1, B: 2}}, 3, "mixed_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.score, tt.numSets)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Code != tt.code {
				t.Fatalf("code = %q, want %q", appErr.Code, tt.code)
			}
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name    string
		score   model.Score
		numSets int
	}{
		{"straight sets", model.SetScore(3, model.Games{A: 6, B: 4}, model.Games{A: 6, B: 3}), 3},
		{"deciding set", model.SetScore(3, model.Games{A: 6, B: 4}, model.Games{A: 4, B: 6}, model.Games{A: 7, B: 5}), 3},
		{"format from match", model.SetScore(0, model.Games{A: 6, B: 4}, model.Games{A: 6, B: 3}), 3},
		{"two sets", model.SetScore(2, model.Games{A: 6, B: 4}, model.Games{A: 3, B: 6}), 2},
		{"two sets with unplayed third", model.Score{Format: model.FormatSets, NumSets: 2, Sets: []*model.Games{{A: 6, B: 4}, {A: 6, B: 3}, nil}}, 2},
		{"legacy", model.GameScore(9, 4), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.score, tt.numSets); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestToMatchFrame(t *testing.T) {
	own := model.SetScore(3, model.Games{A: 4, B: 6}, model.Games{A: 3, B: 6})

	fromB := ToMatchFrame(own, FrameOwn, model.SideB)
	want := model.SetScore(3, model.Games{A: 6, B: 4}, model.Games{A: 6, B: 3})
	if !Equal(fromB, want) {
		t.Fatalf("side B own frame not swapped: %+v", fromB)
	}
	if !Equal(ToMatchFrame(own, FrameOwn, model.SideA), own) {
		t.Fatalf("side A own frame must be unchanged")
	}
	if !Equal(ToMatchFrame(own, FrameMatch, model.SideB), own) {
		t.Fatalf("match frame must be unchanged")
	}
	if own.Sets[0].A != 4 {
		t.Fatalf("input score mutated")
	}
}

func TestEqual(t *testing.T) {
	a := model.SetScore(3, model.Games{A: 6, B: 4}, model.Games{A: 6, B: 3})
	if !Equal(a, a.Clone()) {
		t.Fatalf("clone must be equal")
	}
	if Equal(a, model.SetScore(3, model.Games{A: 6, B: 4}, model.Games{A: 6, B: 2})) {
		t.Fatalf("different sets reported equal")
	}
	if Equal(a, model.GameScore(12, 7)) {
		t.Fatalf("different formats reported equal")
	}
	padded := a.Clone()
	padded.Sets = append(padded.Sets, nil)
	if !Equal(a, padded) {
		t.Fatalf("trailing empty set must not matter")
	}
}
