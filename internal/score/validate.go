package score

import (
	"padel-app/internal/apperr"
	"padel-app/internal/model"
)

// Frame says how a submitted score is oriented.
type Frame string

const (
	// FrameMatch lists side A first, side B second.
	FrameMatch Frame = "match"
	// FrameOwn lists the submitter first, the opponent second.
	FrameOwn Frame = "own"
)

func (f Frame) Valid() bool {
	return f == "" || f == FrameMatch || f == FrameOwn
}

// ToMatchFrame converts a score submitted by side into side A / side B order.
func ToMatchFrame(sc model.Score, frame Frame, side model.Side) model.Score {
	if frame == FrameOwn && side == model.SideB {
		return sc.Swap()
	}
	return sc.Clone()
}

// Validate checks that sc is a complete, decided result playable under
// numSets. A zero numSets accepts whatever the score declares.
func Validate(sc model.Score, numSets int) error {
	switch sc.Kind() {
	case model.FormatSets:
		return validateSets(sc, numSets)
	case model.FormatGames:
		return validateGames(sc)
	case "":
		return apperr.Validation("score_required", "score is required")
	}
	return apperr.Validationf("invalid_format", "unknown score format %q", sc.Format)
}

func validateGames(sc model.Score) error {
	if len(sc.Sets) > 0 {
		return apperr.Validation("mixed_format", "a games score cannot carry sets")
	}
	if sc.Games == nil {
		return apperr.Validation("score_required", "games score is required")
	}
	if sc.Games.A < 0 || sc.Games.B < 0 {
		return apperr.Validation("negative_score", "games cannot be negative")
	}
	if sc.Games.A == sc.Games.B {
		return apperr.Validation("tied_score", "a match cannot end tied")
	}
	return nil
}

func validateSets(sc model.Score, numSets int) error {
	if sc.Games != nil {
		return apperr.Validation("mixed_format", "a set score cannot carry a flat games score")
	}
	if numSets != 0 && sc.NumSets != 0 && sc.NumSets != numSets {
		return apperr.Validationf("num_sets_mismatch", "match is played to %d sets, score declares %d", numSets, sc.NumSets)
	}
	format := sc.NumSets
	if format == 0 {
		format = numSets
	}
	if format != 2 && format != 3 {
		return apperr.Validationf("invalid_num_sets", "number of sets must be 2 or 3, got %d", format)
	}
	if populatedSets(sc.Sets) > format {
		return apperr.Validationf("too_many_sets", "at most %d sets can be reported", format)
	}

	gap := false
	setsA, setsB := 0, 0
	for i, set := range sc.Sets {
		if set == nil {
			gap = true
			continue
		}
		if gap {
			return apperr.Validationf("missing_set", "set %d reported without set %d", i+1, i)
		}
		if set.A < 0 || set.B < 0 {
			return apperr.Validationf("negative_score", "set %d has a negative score", i+1)
		}
		if set.A == set.B {
			return apperr.Validationf("tied_set", "set %d cannot end tied", i+1)
		}
		if format == 3 && (setsA == 2 || setsB == 2) {
			return apperr.Validationf("set_after_decision", "set %d reported after the match was decided", i+1)
		}
		if set.A > set.B {
			setsA++
		} else {
			setsB++
		}
	}

	decided := sc
	decided.NumSets = format
	if !Normalize(decided).Complete {
		return apperr.Validation("incomplete_score", "score does not finish the match")
	}
	if _, ok := Winner(decided); !ok {
		return apperr.Validation("tied_score", "a match cannot end tied")
	}
	return nil
}

// populatedSets counts the sets actually reported; forms send unplayed sets
// as null.
func populatedSets(sets []*model.Games) int {
	n := 0
	for _, set := range sets {
		if set != nil {
			n++
		}
	}
	return n
}
