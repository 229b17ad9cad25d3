// Package score derives set and game totals from match results and validates
// submitted scores.
package score

import "padel-app/internal/model"

// Summary is the normalized view of one result, in the match frame.
type Summary struct {
	SetsA    int
	SetsB    int
	GamesA   int
	GamesB   int
	Complete bool
}

func (s Summary) SetsFor(side model.Side) int {
	if side == model.SideB {
		return s.SetsB
	}
	return s.SetsA
}

func (s Summary) SetsAgainst(side model.Side) int {
	return s.SetsFor(side.Other())
}

func (s Summary) GamesFor(side model.Side) int {
	if side == model.SideB {
		return s.GamesB
	}
	return s.GamesA
}

func (s Summary) GamesAgainst(side model.Side) int {
	return s.GamesFor(side.Other())
}

// Normalize reduces a score to totals. It never fails; malformed input is
// the business of Validate.
func Normalize(sc model.Score) Summary {
	switch sc.Kind() {
	case model.FormatSets:
		return normalizeSets(sc)
	case model.FormatGames:
		if sc.Games == nil {
			return Summary{}
		}
		return Summary{
			GamesA:   sc.Games.A,
			GamesB:   sc.Games.B,
			Complete: sc.Games.A != sc.Games.B,
		}
	}
	return Summary{}
}

func normalizeSets(sc model.Score) Summary {
	var sum Summary
	for i, set := range sc.Sets {
		if i >= model.MaxSets {
			break
		}
		if set == nil {
			continue
		}
		sum.GamesA += set.A
		sum.GamesB += set.B
		switch {
		case set.A > set.B:
			sum.SetsA++
		case set.B > set.A:
			sum.SetsB++
		}
	}
	if sc.NumSets == 2 {
		sum.Complete = setPopulated(sc, 0) && setPopulated(sc, 1)
	} else {
		sum.Complete = sum.SetsA >= 2 || sum.SetsB >= 2
	}
	return sum
}

func setPopulated(sc model.Score, i int) bool {
	return i < len(sc.Sets) && sc.Sets[i] != nil
}

// Winner returns the side that won a complete result. Sets decide first,
// then total games (a two set format can end one set each).
func Winner(sc model.Score) (model.Side, bool) {
	sum := Normalize(sc)
	if !sum.Complete {
		return "", false
	}
	switch {
	case sum.SetsA > sum.SetsB:
		return model.SideA, true
	case sum.SetsB > sum.SetsA:
		return model.SideB, true
	case sum.GamesA > sum.GamesB:
		return model.SideA, true
	case sum.GamesB > sum.GamesA:
		return model.SideB, true
	}
	return "", false
}

// Equal compares two results field by field in the same frame.
func Equal(a, b model.Score) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case model.FormatGames:
		return gamesEqual(a.Games, b.Games)
	case model.FormatSets:
		if a.NumSets != b.NumSets {
			return false
		}
		for i := 0; i < model.MaxSets; i++ {
			if !gamesEqual(setAt(a, i), setAt(b, i)) {
				return false
			}
		}
		return true
	}
	return true
}

func setAt(sc model.Score, i int) *model.Games {
	if i < len(sc.Sets) {
		return sc.Sets[i]
	}
	return nil
}

func gamesEqual(a, b *model.Games) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
