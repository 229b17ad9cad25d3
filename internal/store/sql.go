package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"padel-app/internal/model"

	"github.com/google/uuid"
)

// dialect holds what differs between the SQL backends. Queries are written
// with ? placeholders and rebound per dialect.
type dialect struct {
	bind    func(query string) string
	timeArg func(t time.Time) any
	// duplicate reports a unique constraint violation.
	duplicate func(err error) bool
}

// sqlStore implements Store over database/sql for both Postgres and SQLite.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.d.bind(query), args...)
}

func (s *sqlStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.d.bind(query), args...)
}

func (s *sqlStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.d.bind(query), args...)
}

func (s *sqlStore) exists(ctx context.Context, table, id string) (bool, error) {
	var one int
	err := s.queryRow(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sqlStore) ListTournaments(ctx context.Context) ([]model.Tournament, error) {
	rows, err := s.query(ctx, `SELECT id, name, num_sets, created_at FROM tournaments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	out := []model.Tournament{}
	for rows.Next() {
		t, err := scanTournamentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqlStore) GetTournament(ctx context.Context, id string) (model.Tournament, error) {
	t, err := scanTournamentRow(s.queryRow(ctx, `SELECT id, name, num_sets, created_at FROM tournaments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tournament{}, ErrNotFound
	}
	return t, err
}

func (s *sqlStore) CreateTournament(ctx context.Context, t model.Tournament) (model.Tournament, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx, `INSERT INTO tournaments (id, name, num_sets, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.NumSets, s.d.timeArg(t.CreatedAt))
	if err != nil {
		return model.Tournament{}, fmt.Errorf("insert tournament: %w", err)
	}
	return t, nil
}

func (s *sqlStore) ListGroups(ctx context.Context, tournamentID string) ([]model.Group, error) {
	rows, err := s.query(ctx, `SELECT id, tournament_id, name, position, created_at FROM tournament_groups WHERE tournament_id = ? ORDER BY position`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	out := []model.Group{}
	for rows.Next() {
		g, err := scanGroupRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *sqlStore) GetGroup(ctx context.Context, id string) (model.Group, error) {
	g, err := scanGroupRow(s.queryRow(ctx, `SELECT id, tournament_id, name, position, created_at FROM tournament_groups WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Group{}, ErrNotFound
	}
	return g, err
}

func (s *sqlStore) CreateGroup(ctx context.Context, g model.Group) (model.Group, error) {
	ok, err := s.exists(ctx, "tournaments", g.TournamentID)
	if err != nil {
		return model.Group{}, err
	}
	if !ok {
		return model.Group{}, ErrNotFound
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	_, err = s.exec(ctx, `INSERT INTO tournament_groups (id, tournament_id, name, position, created_at) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.TournamentID, g.Name, g.Position, s.d.timeArg(g.CreatedAt))
	if err != nil {
		return model.Group{}, fmt.Errorf("insert group: %w", err)
	}
	return g, nil
}

func (s *sqlStore) DeleteTournament(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tournament: %w", err)
	}
	for _, q := range []string{
		`DELETE FROM rank_overrides WHERE group_id IN (SELECT id FROM tournament_groups WHERE tournament_id = ?)`,
		`DELETE FROM matches WHERE tournament_id = ?`,
		`DELETE FROM competitors WHERE tournament_id = ?`,
		`DELETE FROM cups WHERE tournament_id = ?`,
		`DELETE FROM tournament_groups WHERE tournament_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, s.d.bind(q), id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete tournament: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, s.d.bind(`DELETE FROM tournaments WHERE id = ?`), id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete tournament: %w", err)
	}
	if err := checkAffected(res); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) DeleteGroup(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete group: %w", err)
	}
	for _, q := range []string{
		`DELETE FROM rank_overrides WHERE group_id = ?`,
		`DELETE FROM matches WHERE group_id = ?`,
		`DELETE FROM competitors WHERE group_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, s.d.bind(q), id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete group: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, s.d.bind(`DELETE FROM tournament_groups WHERE id = ?`), id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete group: %w", err)
	}
	if err := checkAffected(res); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) ListCompetitors(ctx context.Context, groupID string) ([]model.Competitor, error) {
	rows, err := s.query(ctx, `SELECT id, tournament_id, COALESCE(group_id, ''), name, seed, created_at FROM competitors WHERE group_id = ? ORDER BY seed`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	defer rows.Close()

	out := []model.Competitor{}
	for rows.Next() {
		c, err := scanCompetitorRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqlStore) GetCompetitor(ctx context.Context, id string) (model.Competitor, error) {
	c, err := scanCompetitorRow(s.queryRow(ctx, `SELECT id, tournament_id, COALESCE(group_id, ''), name, seed, created_at FROM competitors WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Competitor{}, ErrNotFound
	}
	return c, err
}

func (s *sqlStore) CreateCompetitor(ctx context.Context, c model.Competitor) (model.Competitor, error) {
	if c.GroupID != "" {
		ok, err := s.exists(ctx, "tournament_groups", c.GroupID)
		if err != nil {
			return model.Competitor{}, err
		}
		if !ok {
			return model.Competitor{}, ErrNotFound
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx, `INSERT INTO competitors (id, tournament_id, group_id, name, seed, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.TournamentID, nullString(c.GroupID), c.Name, c.Seed, s.d.timeArg(c.CreatedAt))
	if err != nil {
		return model.Competitor{}, fmt.Errorf("insert competitor: %w", err)
	}
	return c, nil
}

const matchColumns = `m.id, m.tournament_id, COALESCE(m.group_id, ''), COALESCE(m.cup_id, ''), m.round,
	m.competitor_a_id, m.competitor_b_id, COALESCE(ca.name, ''), COALESCE(cb.name, ''),
	m.num_sets, m.score_json, m.shadow_json, m.state, m.submitted_by, m.revision, m.created_at, m.updated_at
	FROM matches m
	LEFT JOIN competitors ca ON ca.id = m.competitor_a_id
	LEFT JOIN competitors cb ON cb.id = m.competitor_b_id`

func (s *sqlStore) ListGroupMatches(ctx context.Context, groupID string) ([]model.Match, error) {
	return s.listMatches(ctx, `SELECT `+matchColumns+` WHERE m.group_id = ? ORDER BY m.created_at, m.id`, groupID)
}

func (s *sqlStore) ListCupMatches(ctx context.Context, cupID string) ([]model.Match, error) {
	return s.listMatches(ctx, `SELECT `+matchColumns+` WHERE m.cup_id = ? ORDER BY m.created_at, m.id`, cupID)
}

func (s *sqlStore) listMatches(ctx context.Context, query string, args ...any) ([]model.Match, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	out := []model.Match{}
	for rows.Next() {
		m, err := scanMatchRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *sqlStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	m, err := scanMatchRow(s.queryRow(ctx, `SELECT `+matchColumns+` WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, ErrNotFound
	}
	return m, err
}

func (s *sqlStore) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	if err := m.CheckPlacement(); err != nil {
		return model.Match{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.State == "" {
		m.State = model.MatchPending
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.Revision = 0
	_, err := s.exec(ctx, `INSERT INTO matches (id, tournament_id, group_id, cup_id, round, competitor_a_id, competitor_b_id,
		num_sets, score_json, shadow_json, state, submitted_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.TournamentID, nullString(m.GroupID), nullString(m.CupID), string(m.Round),
		m.CompetitorAID, m.CompetitorBID, m.NumSets, scoreJSON(m.Score), shadowJSON(m.Shadow),
		string(m.State), string(m.SubmittedBy), s.d.timeArg(m.CreatedAt), s.d.timeArg(m.UpdatedAt))
	if err != nil {
		if s.d.duplicate(err) {
			return model.Match{}, ErrDuplicate
		}
		return model.Match{}, fmt.Errorf("insert match: %w", err)
	}
	return m, nil
}

func (s *sqlStore) UpdateMatch(ctx context.Context, m model.Match, expected model.MatchState) error {
	res, err := s.exec(ctx, `UPDATE matches SET score_json = ?, shadow_json = ?, state = ?, submitted_by = ?,
		revision = revision + 1, updated_at = ?
		WHERE id = ? AND state = ? AND revision = ?`,
		scoreJSON(m.Score), shadowJSON(m.Shadow), string(m.State), string(m.SubmittedBy),
		s.d.timeArg(time.Now().UTC()), m.ID, string(expected), m.Revision)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if affected > 0 {
		return nil
	}
	ok, err := s.exists(ctx, "matches", m.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return ErrStateChanged
}

func (s *sqlStore) GetCup(ctx context.Context, id string) (model.Cup, error) {
	var c model.Cup
	var createdAt sql.NullString
	err := s.queryRow(ctx, `SELECT id, tournament_id, name, created_at FROM cups WHERE id = ?`, id).
		Scan(&c.ID, &c.TournamentID, &c.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Cup{}, ErrNotFound
	}
	if err != nil {
		return model.Cup{}, err
	}
	c.CreatedAt, _ = parseTimeString(createdAt.String)
	return c, nil
}

func (s *sqlStore) CreateCup(ctx context.Context, c model.Cup) (model.Cup, error) {
	ok, err := s.exists(ctx, "tournaments", c.TournamentID)
	if err != nil {
		return model.Cup{}, err
	}
	if !ok {
		return model.Cup{}, ErrNotFound
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err = s.exec(ctx, `INSERT INTO cups (id, tournament_id, name, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.TournamentID, c.Name, s.d.timeArg(c.CreatedAt))
	if err != nil {
		return model.Cup{}, fmt.Errorf("insert cup: %w", err)
	}
	return c, nil
}

func (s *sqlStore) ListOverrides(ctx context.Context, groupID string) ([]model.Override, error) {
	rows, err := s.query(ctx, `SELECT group_id, competitor_id, rank_hint, updated_at FROM rank_overrides WHERE group_id = ? ORDER BY competitor_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	out := []model.Override{}
	for rows.Next() {
		var o model.Override
		var updatedAt sql.NullString
		if err := rows.Scan(&o.GroupID, &o.CompetitorID, &o.Rank, &updatedAt); err != nil {
			return nil, err
		}
		o.UpdatedAt, _ = parseTimeString(updatedAt.String)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *sqlStore) UpsertOverride(ctx context.Context, o model.Override) error {
	ok, err := s.exists(ctx, "tournament_groups", o.GroupID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = time.Now().UTC()
	}
	_, err = s.exec(ctx, `INSERT INTO rank_overrides (group_id, competitor_id, rank_hint, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (group_id, competitor_id) DO UPDATE SET rank_hint = excluded.rank_hint, updated_at = excluded.updated_at`,
		o.GroupID, o.CompetitorID, o.Rank, s.d.timeArg(o.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

func (s *sqlStore) DeleteOverride(ctx context.Context, groupID, competitorID string) error {
	res, err := s.exec(ctx, `DELETE FROM rank_overrides WHERE group_id = ? AND competitor_id = ?`, groupID, competitorID)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return checkAffected(res)
}

func (s *sqlStore) DeleteGroupOverrides(ctx context.Context, groupID string) error {
	if _, err := s.exec(ctx, `DELETE FROM rank_overrides WHERE group_id = ?`, groupID); err != nil {
		return fmt.Errorf("delete group overrides: %w", err)
	}
	return nil
}

func (s *sqlStore) DeleteTournamentOverrides(ctx context.Context, tournamentID string) error {
	_, err := s.exec(ctx, `DELETE FROM rank_overrides WHERE group_id IN (SELECT id FROM tournament_groups WHERE tournament_id = ?)`, tournamentID)
	if err != nil {
		return fmt.Errorf("delete tournament overrides: %w", err)
	}
	return nil
}

func (s *sqlStore) RecordEvent(ctx context.Context, e model.MatchEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := s.exec(ctx, `INSERT INTO match_events (id, match_id, actor, action, state, at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.MatchID, e.Actor, e.Action, string(e.State), s.d.timeArg(e.At))
	if err != nil {
		return fmt.Errorf("insert match event: %w", err)
	}
	return nil
}

func scanTournamentRow(scanner interface{ Scan(dest ...any) error }) (model.Tournament, error) {
	var t model.Tournament
	var createdAt sql.NullString
	if err := scanner.Scan(&t.ID, &t.Name, &t.NumSets, &createdAt); err != nil {
		return model.Tournament{}, err
	}
	t.CreatedAt, _ = parseTimeString(createdAt.String)
	return t, nil
}

func scanGroupRow(scanner interface{ Scan(dest ...any) error }) (model.Group, error) {
	var g model.Group
	var createdAt sql.NullString
	if err := scanner.Scan(&g.ID, &g.TournamentID, &g.Name, &g.Position, &createdAt); err != nil {
		return model.Group{}, err
	}
	g.CreatedAt, _ = parseTimeString(createdAt.String)
	return g, nil
}

func scanCompetitorRow(scanner interface{ Scan(dest ...any) error }) (model.Competitor, error) {
	var c model.Competitor
	var createdAt sql.NullString
	if err := scanner.Scan(&c.ID, &c.TournamentID, &c.GroupID, &c.Name, &c.Seed, &createdAt); err != nil {
		return model.Competitor{}, err
	}
	c.CreatedAt, _ = parseTimeString(createdAt.String)
	return c, nil
}

func scanMatchRow(scanner interface{ Scan(dest ...any) error }) (model.Match, error) {
	var m model.Match
	var round, state, submittedBy string
	var scoreData, shadowData, createdAt, updatedAt sql.NullString
	if err := scanner.Scan(
		&m.ID,
		&m.TournamentID,
		&m.GroupID,
		&m.CupID,
		&round,
		&m.CompetitorAID,
		&m.CompetitorBID,
		&m.CompetitorAName,
		&m.CompetitorBName,
		&m.NumSets,
		&scoreData,
		&shadowData,
		&state,
		&submittedBy,
		&m.Revision,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Match{}, err
	}
	m.Round = model.CupRound(round)
	m.State = model.MatchState(state)
	m.SubmittedBy = model.Side(submittedBy)
	m.CreatedAt, _ = parseTimeString(createdAt.String)
	m.UpdatedAt, _ = parseTimeString(updatedAt.String)
	if scoreData.Valid && scoreData.String != "" {
		if err := json.Unmarshal([]byte(scoreData.String), &m.Score); err != nil {
			return model.Match{}, fmt.Errorf("decode score of match %s: %w", m.ID, err)
		}
	}
	if shadowData.Valid && shadowData.String != "" && shadowData.String != "null" {
		var shadow model.Score
		if err := json.Unmarshal([]byte(shadowData.String), &shadow); err != nil {
			return model.Match{}, fmt.Errorf("decode shadow of match %s: %w", m.ID, err)
		}
		m.Shadow = &shadow
	}
	return m, nil
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scoreJSON(sc model.Score) string {
	return string(toJSON(sc))
}

func shadowJSON(sc *model.Score) any {
	if sc == nil {
		return nil
	}
	return string(toJSON(sc))
}

func toJSON(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func parseTimeString(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}

// rebindDollar turns ? placeholders into $1, $2, ...
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
