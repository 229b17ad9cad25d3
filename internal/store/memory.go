package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"padel-app/internal/model"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu          sync.RWMutex
	tournaments map[string]model.Tournament
	groups      map[string]model.Group
	competitors map[string]model.Competitor
	matches     map[string]model.Match
	cups        map[string]model.Cup
	overrides   map[string]map[string]model.Override
	events      []model.MatchEvent
	// lastStamp keeps creation times strictly increasing so listings keep
	// insertion order.
	lastStamp time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tournaments: make(map[string]model.Tournament),
		groups:      make(map[string]model.Group),
		competitors: make(map[string]model.Competitor),
		matches:     make(map[string]model.Match),
		cups:        make(map[string]model.Cup),
		overrides:   make(map[string]map[string]model.Override),
	}
}

func (s *MemoryStore) Close() error { return nil }

// stamp must be called with the write lock held.
func (s *MemoryStore) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = now
	return now
}

func (s *MemoryStore) ListTournaments(ctx context.Context) ([]model.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetTournament(ctx context.Context, id string) (model.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tournaments[id]
	if !ok {
		return model.Tournament{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) CreateTournament(ctx context.Context, t model.Tournament) (model.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.stamp()
	}
	s.tournaments[t.ID] = t
	return t, nil
}

func (s *MemoryStore) ListGroups(ctx context.Context, tournamentID string) ([]model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Group{}
	for _, g := range s.groups {
		if g.TournamentID == tournamentID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *MemoryStore) GetGroup(ctx context.Context, id string) (model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return model.Group{}, ErrNotFound
	}
	return g, nil
}

func (s *MemoryStore) CreateGroup(ctx context.Context, g model.Group) (model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tournaments[g.TournamentID]; !ok {
		return model.Group{}, ErrNotFound
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.stamp()
	}
	s.groups[g.ID] = g
	return g, nil
}

func (s *MemoryStore) DeleteTournament(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tournaments[id]; !ok {
		return ErrNotFound
	}
	for matchID, m := range s.matches {
		if m.TournamentID == id {
			delete(s.matches, matchID)
		}
	}
	for competitorID, c := range s.competitors {
		if c.TournamentID == id {
			delete(s.competitors, competitorID)
		}
	}
	for groupID, g := range s.groups {
		if g.TournamentID == id {
			delete(s.overrides, groupID)
			delete(s.groups, groupID)
		}
	}
	for cupID, c := range s.cups {
		if c.TournamentID == id {
			delete(s.cups, cupID)
		}
	}
	delete(s.tournaments, id)
	return nil
}

func (s *MemoryStore) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return ErrNotFound
	}
	for matchID, m := range s.matches {
		if m.GroupID == id {
			delete(s.matches, matchID)
		}
	}
	for competitorID, c := range s.competitors {
		if c.GroupID == id {
			delete(s.competitors, competitorID)
		}
	}
	delete(s.overrides, id)
	delete(s.groups, id)
	return nil
}

func (s *MemoryStore) ListCompetitors(ctx context.Context, groupID string) ([]model.Competitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Competitor{}
	for _, c := range s.competitors {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

func (s *MemoryStore) GetCompetitor(ctx context.Context, id string) (model.Competitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.competitors[id]
	if !ok {
		return model.Competitor{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) CreateCompetitor(ctx context.Context, c model.Competitor) (model.Competitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.GroupID != "" {
		if _, ok := s.groups[c.GroupID]; !ok {
			return model.Competitor{}, ErrNotFound
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.stamp()
	}
	s.competitors[c.ID] = c
	return c, nil
}

func (s *MemoryStore) ListGroupMatches(ctx context.Context, groupID string) ([]model.Match, error) {
	return s.listMatches(func(m model.Match) bool { return m.GroupID == groupID }), nil
}

func (s *MemoryStore) ListCupMatches(ctx context.Context, cupID string) ([]model.Match, error) {
	return s.listMatches(func(m model.Match) bool { return m.CupID == cupID }), nil
}

func (s *MemoryStore) listMatches(keep func(model.Match) bool) []model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Match{}
	for _, m := range s.matches {
		if keep(m) {
			out = append(out, s.withNames(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) withNames(m model.Match) model.Match {
	out := m.Clone()
	out.CompetitorAName = s.competitors[m.CompetitorAID].Name
	out.CompetitorBName = s.competitors[m.CompetitorBID].Name
	return out
}

func (s *MemoryStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, ErrNotFound
	}
	return s.withNames(m), nil
}

func (s *MemoryStore) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	if err := m.CheckPlacement(); err != nil {
		return model.Match{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.CupID != "" && m.Round.Single() {
		for _, existing := range s.matches {
			if existing.CupID == m.CupID && existing.Round == m.Round {
				return model.Match{}, ErrDuplicate
			}
		}
	}

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.State == "" {
		m.State = model.MatchPending
	}
	now := s.stamp()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.Revision = 0
	m.CompetitorAName, m.CompetitorBName = "", ""
	s.matches[m.ID] = m.Clone()
	return s.withNames(m), nil
}

func (s *MemoryStore) UpdateMatch(ctx context.Context, m model.Match, expected model.MatchState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.matches[m.ID]
	if !ok {
		return ErrNotFound
	}
	if current.State != expected || current.Revision != m.Revision {
		return ErrStateChanged
	}
	current.Score = m.Score.Clone()
	current.Shadow = nil
	if m.Shadow != nil {
		shadow := m.Shadow.Clone()
		current.Shadow = &shadow
	}
	current.State = m.State
	current.SubmittedBy = m.SubmittedBy
	current.Revision++
	current.UpdatedAt = time.Now().UTC()
	s.matches[m.ID] = current
	return nil
}

func (s *MemoryStore) GetCup(ctx context.Context, id string) (model.Cup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cups[id]
	if !ok {
		return model.Cup{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) CreateCup(ctx context.Context, c model.Cup) (model.Cup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tournaments[c.TournamentID]; !ok {
		return model.Cup{}, ErrNotFound
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.stamp()
	}
	s.cups[c.ID] = c
	return c, nil
}

func (s *MemoryStore) ListOverrides(ctx context.Context, groupID string) ([]model.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Override{}
	for _, o := range s.overrides[groupID] {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompetitorID < out[j].CompetitorID })
	return out, nil
}

func (s *MemoryStore) UpsertOverride(ctx context.Context, o model.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[o.GroupID]; !ok {
		return ErrNotFound
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = time.Now().UTC()
	}
	byCompetitor := s.overrides[o.GroupID]
	if byCompetitor == nil {
		byCompetitor = make(map[string]model.Override)
		s.overrides[o.GroupID] = byCompetitor
	}
	byCompetitor[o.CompetitorID] = o
	return nil
}

func (s *MemoryStore) DeleteOverride(ctx context.Context, groupID, competitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.overrides[groupID][competitorID]; !ok {
		return ErrNotFound
	}
	delete(s.overrides[groupID], competitorID)
	return nil
}

func (s *MemoryStore) DeleteGroupOverrides(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.overrides, groupID)
	return nil
}

func (s *MemoryStore) DeleteTournamentOverrides(ctx context.Context, tournamentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for groupID, g := range s.groups {
		if g.TournamentID == tournamentID {
			delete(s.overrides, groupID)
		}
	}
	return nil
}

func (s *MemoryStore) RecordEvent(ctx context.Context, e model.MatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.events = append(s.events, e)
	return nil
}

// Events returns the recorded audit trail for one match.
func (s *MemoryStore) Events(matchID string) []model.MatchEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.MatchEvent{}
	for _, e := range s.events {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}
	return out
}
