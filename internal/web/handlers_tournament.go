package web

import (
	"net/http"

	"padel-app/internal/apperr"
	"padel-app/internal/bracket"
	"padel-app/internal/importer"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleTournamentList(w http.ResponseWriter, r *http.Request) {
	tournaments, err := s.store.ListTournaments(r.Context())
	if err != nil {
		s.writeAppError(w, r, apperr.Collaborator("list tournaments", err))
		return
	}
	writeJSON(w, http.StatusOK, tournaments)
}

func (s *Server) handleTournamentCreate(w http.ResponseWriter, r *http.Request) {
	var req importer.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if req.NumSets == 0 {
		req.NumSets = s.opts.DefaultNumSets
	}
	summary, err := importer.Import(r.Context(), s.store, req, s.logger)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleGroupList(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if _, err := s.store.GetTournament(r.Context(), tournamentID); err != nil {
		s.writeAppError(w, r, lookupError(err, "tournament", tournamentID))
		return
	}
	groups, err := s.store.ListGroups(r.Context(), tournamentID)
	if err != nil {
		s.writeAppError(w, r, apperr.Collaborator("list groups", err))
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleTournamentOverridesClear(w http.ResponseWriter, r *http.Request) {
	if err := s.overrides.ClearTournament(r.Context(), chi.URLParam(r, "tournamentID")); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCupCreate(w http.ResponseWriter, r *http.Request) {
	var req bracket.SeedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	req.TournamentID = chi.URLParam(r, "tournamentID")
	draw, err := s.cups.SeedCup(r.Context(), req)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draw)
}

func (s *Server) handleCupMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.cups.CupMatches(r.Context(), chi.URLParam(r, "cupID"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleCupFinals(w http.ResponseWriter, r *http.Request) {
	draw, err := s.cups.CreateFinals(r.Context(), chi.URLParam(r, "cupID"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draw)
}
