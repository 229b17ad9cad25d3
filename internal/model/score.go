package model

type ScoreFormat string

const (
	FormatSets  ScoreFormat = "sets"
	FormatGames ScoreFormat = "games"

	MaxSets = 3
)

// Games is a pair of values for side A and side B.
type Games struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (g Games) Swap() Games {
	return Games{A: g.B, B: g.A}
}

// Score is a match result. It carries either per-set scores (Sets, NumSets)
// or a legacy flat game count (Games). The zero value means no result.
type Score struct {
	Format  ScoreFormat `json:"format,omitempty"`
	NumSets int         `json:"num_sets,omitempty"`
	Sets    []*Games    `json:"sets,omitempty"`
	Games   *Games      `json:"games,omitempty"`
}

func SetScore(numSets int, sets ...Games) Score {
	out := Score{Format: FormatSets, NumSets: numSets}
	for _, set := range sets {
		set := set
		out.Sets = append(out.Sets, &set)
	}
	return out
}

func GameScore(a, b int) Score {
	return Score{Format: FormatGames, Games: &Games{A: a, B: b}}
}

// Kind resolves which representation the score uses. An untagged score is
// treated as set based when any set is present and legacy otherwise.
func (s Score) Kind() ScoreFormat {
	if s.Format != "" {
		return s.Format
	}
	for _, set := range s.Sets {
		if set != nil {
			return FormatSets
		}
	}
	if s.Games != nil {
		return FormatGames
	}
	return ""
}

func (s Score) IsZero() bool {
	return s.Kind() == ""
}

func (s Score) Clone() Score {
	out := Score{Format: s.Format, NumSets: s.NumSets}
	if s.Sets != nil {
		out.Sets = make([]*Games, len(s.Sets))
		for i, set := range s.Sets {
			if set != nil {
				copied := *set
				out.Sets[i] = &copied
			}
		}
	}
	if s.Games != nil {
		copied := *s.Games
		out.Games = &copied
	}
	return out
}

// Swap returns the score seen from the other side.
func (s Score) Swap() Score {
	out := s.Clone()
	for i, set := range out.Sets {
		if set != nil {
			swapped := set.Swap()
			out.Sets[i] = &swapped
		}
	}
	if out.Games != nil {
		swapped := out.Games.Swap()
		out.Games = &swapped
	}
	return out
}
