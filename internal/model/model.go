package model

import (
	"errors"
	"strings"
	"time"
)

type MatchState string

type Side string

type CupRound string

const (
	MatchPending              MatchState = "pending"
	MatchAwaitingConfirmation MatchState = "awaiting_confirmation"
	MatchConfirmed            MatchState = "confirmed"
	MatchInReview             MatchState = "in_review"

	SideA Side = "A"
	SideB Side = "B"

	RoundSemifinal  CupRound = "semifinal"
	RoundFinal      CupRound = "final"
	RoundThirdPlace CupRound = "third_place"
)

// Single reports whether a cup holds at most one match of the round.
func (r CupRound) Single() bool {
	return r == RoundFinal || r == RoundThirdPlace
}

func (s MatchState) Valid() bool {
	switch s {
	case MatchPending, MatchAwaitingConfirmation, MatchConfirmed, MatchInReview:
		return true
	}
	return false
}

func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

type Tournament struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NumSets   int       `json:"num_sets"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	Name         string    `json:"name"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
}

// Competitor is a registered pair of players.
type Competitor struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	GroupID      string    `json:"group_id"`
	Name         string    `json:"name"`
	Seed         int       `json:"seed"`
	CreatedAt    time.Time `json:"created_at"`
}

// PairName joins two player names the way pairs are displayed.
func PairName(first, second string) string {
	first = strings.TrimSpace(first)
	second = strings.TrimSpace(second)
	if first == "" {
		return second
	}
	if second == "" {
		return first
	}
	return first + " / " + second
}

type Cup struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrGroupAndCup = errors.New("match cannot belong to both a group and a cup")

type Match struct {
	ID              string     `json:"id"`
	TournamentID    string     `json:"tournament_id"`
	GroupID         string     `json:"group_id,omitempty"`
	CupID           string     `json:"cup_id,omitempty"`
	Round           CupRound   `json:"round,omitempty"`
	CompetitorAID   string     `json:"competitor_a_id"`
	CompetitorBID   string     `json:"competitor_b_id"`
	CompetitorAName string     `json:"competitor_a_name,omitempty"`
	CompetitorBName string     `json:"competitor_b_name,omitempty"`
	NumSets         int        `json:"num_sets"`
	Score           Score      `json:"score"`
	Shadow          *Score     `json:"shadow,omitempty"`
	State           MatchState `json:"state"`
	SubmittedBy     Side       `json:"submitted_by,omitempty"`
	// Revision counts result writes; updates must carry the revision they read.
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckPlacement enforces that a match sits in a group or a cup, never both.
func (m Match) CheckPlacement() error {
	if m.GroupID != "" && m.CupID != "" {
		return ErrGroupAndCup
	}
	return nil
}

// SideOf reports which side competitorID plays on.
func (m Match) SideOf(competitorID string) (Side, bool) {
	switch {
	case competitorID == "":
		return "", false
	case competitorID == m.CompetitorAID:
		return SideA, true
	case competitorID == m.CompetitorBID:
		return SideB, true
	}
	return "", false
}

func (m Match) CompetitorID(side Side) string {
	if side == SideB {
		return m.CompetitorBID
	}
	return m.CompetitorAID
}

func (m Match) Clone() Match {
	out := m
	out.Score = m.Score.Clone()
	if m.Shadow != nil {
		shadow := m.Shadow.Clone()
		out.Shadow = &shadow
	}
	return out
}

// Override is an operator supplied rank hint for a competitor inside a group.
type Override struct {
	GroupID      string    `json:"group_id"`
	CompetitorID string    `json:"competitor_id"`
	Rank         int       `json:"rank"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type MatchEvent struct {
	ID      string     `json:"id"`
	MatchID string     `json:"match_id"`
	Actor   string     `json:"actor"`
	Action  string     `json:"action"`
	State   MatchState `json:"state"`
	At      time.Time  `json:"at"`
}
