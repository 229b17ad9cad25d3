// Package standings computes ranked group tables from match results.
package standings

import (
	"sort"
	"strings"

	"padel-app/internal/model"
	"padel-app/internal/score"
)

const (
	DefaultPointsWin  = 2
	DefaultPointsLoss = 1

	UnnamedCompetitor = "Unnamed pair"
)

// Options are the points awarded per match. The loser still scores.
type Options struct {
	PointsWin  int
	PointsLoss int
}

func DefaultOptions() Options {
	return Options{PointsWin: DefaultPointsWin, PointsLoss: DefaultPointsLoss}
}

type Row struct {
	CompetitorID string `json:"competitor_id"`
	Name         string `json:"name"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Lost         int    `json:"lost"`
	SetsFor      int    `json:"sets_for"`
	SetsAgainst  int    `json:"sets_against"`
	SetDiff      int    `json:"set_diff"`
	GamesFor     int    `json:"games_for"`
	GamesAgainst int    `json:"games_against"`
	GameDiff     int    `json:"game_diff"`
	Points       int    `json:"points"`

	// AutoRank ignores overrides, Rank applies them. Delta is positive when
	// an override moved the row up.
	AutoRank   int  `json:"auto_rank"`
	Rank       int  `json:"rank"`
	Delta      int  `json:"delta"`
	Overridden bool `json:"overridden"`

	// TieGroup numbers the true tie the row belongs to, 0 for none.
	TieGroup   int  `json:"tie_group,omitempty"`
	Unresolved bool `json:"unresolved_tie,omitempty"`
}

type tieKey struct {
	points, setDiff, gameDiff, gamesFor int
}

func (r Row) key() tieKey {
	return tieKey{r.Points, r.SetDiff, r.GameDiff, r.GamesFor}
}

// Compute builds the table for one group. overrides maps competitor id to a
// rank hint and only reorders competitors inside a true tie.
func Compute(matches []model.Match, overrides map[string]int, opts Options) []Row {
	valid := Valid(matches)
	rows := accumulate(valid, opts)
	if len(rows) == 0 {
		return rows
	}

	h2h := indexHeadToHead(valid)
	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j], h2h)
	})
	for i := range rows {
		rows[i].AutoRank = i + 1
	}

	for n, members := range trueTies(rows, h2h) {
		applyOverrides(rows, members, overrides)
		unresolved := 0
		for _, idx := range members {
			if !rows[idx].Overridden {
				unresolved++
			}
		}
		for _, idx := range members {
			rows[idx].TieGroup = n + 1
			rows[idx].Unresolved = unresolved >= 2
		}
	}

	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Delta = rows[i].AutoRank - rows[i].Rank
	}
	return rows
}

func accumulate(valid []model.Match, opts Options) []Row {
	index := map[string]*Row{}
	order := []string{}
	entry := func(id, name string) *Row {
		row, ok := index[id]
		if !ok {
			row = &Row{CompetitorID: id}
			index[id] = row
			order = append(order, id)
		}
		if row.Name == "" {
			row.Name = strings.TrimSpace(name)
		}
		return row
	}

	for _, m := range valid {
		sum := score.Normalize(m.Score)
		winner, decided := score.Winner(m.Score)
		sides := []struct {
			side model.Side
			row  *Row
		}{
			{model.SideA, entry(m.CompetitorAID, m.CompetitorAName)},
			{model.SideB, entry(m.CompetitorBID, m.CompetitorBName)},
		}
		for _, s := range sides {
			s.row.Played++
			s.row.SetsFor += sum.SetsFor(s.side)
			s.row.SetsAgainst += sum.SetsAgainst(s.side)
			s.row.GamesFor += sum.GamesFor(s.side)
			s.row.GamesAgainst += sum.GamesAgainst(s.side)
			if !decided {
				continue
			}
			if s.side == winner {
				s.row.Won++
				s.row.Points += opts.PointsWin
			} else {
				s.row.Lost++
				s.row.Points += opts.PointsLoss
			}
		}
	}

	rows := make([]Row, 0, len(order))
	for _, id := range order {
		row := *index[id]
		if row.Name == "" {
			row.Name = UnnamedCompetitor
		}
		row.SetDiff = row.SetsFor - row.SetsAgainst
		row.GameDiff = row.GamesFor - row.GamesAgainst
		rows = append(rows, row)
	}
	// Fix the starting order so the result never depends on match order.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].CompetitorID < rows[j].CompetitorID
	})
	return rows
}

func less(a, b Row, h2h headToHead) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.SetDiff != b.SetDiff {
		return a.SetDiff > b.SetDiff
	}
	if a.GameDiff != b.GameDiff {
		return a.GameDiff > b.GameDiff
	}
	if a.GamesFor != b.GamesFor {
		return a.GamesFor > b.GamesFor
	}
	switch h2h.winner(a.CompetitorID, b.CompetitorID) {
	case a.CompetitorID:
		return true
	case b.CompetitorID:
		return false
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.CompetitorID < b.CompetitorID
}

// trueTies returns, for every run of rows level on all statistics, the
// members that no direct encounter separates from the rest of the run.
// A member decided against anyone in its run is resolved and left out.
func trueTies(rows []Row, h2h headToHead) [][]int {
	var groups [][]int
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].key() == rows[start].key() {
			end++
		}
		if end-start >= 2 {
			var members []int
			for i := start; i < end; i++ {
				resolved := false
				for j := start; j < end; j++ {
					if i != j && h2h.decided(rows[i].CompetitorID, rows[j].CompetitorID) {
						resolved = true
						break
					}
				}
				if !resolved {
					members = append(members, i)
				}
			}
			if len(members) >= 2 {
				groups = append(groups, members)
			}
		}
		start = end
	}
	return groups
}

// applyOverrides reorders the rows at the given positions: overridden rows
// first by hint, the rest after them in their existing order.
func applyOverrides(rows []Row, positions []int, overrides map[string]int) {
	if len(overrides) == 0 {
		return
	}
	members := make([]Row, len(positions))
	for i, idx := range positions {
		members[i] = rows[idx]
		if _, ok := overrides[members[i].CompetitorID]; ok {
			members[i].Overridden = true
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.Overridden != b.Overridden {
			return a.Overridden
		}
		if a.Overridden {
			return overrides[a.CompetitorID] < overrides[b.CompetitorID]
		}
		return false
	})
	for i, idx := range positions {
		rows[idx] = members[i]
	}
}
