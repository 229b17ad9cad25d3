package web

import (
	"errors"
	"net/http"

	"padel-app/internal/apperr"
	"padel-app/internal/store"

	"github.com/go-chi/chi/v5"
)

func lookupError(err error, entity, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Collaborator("load "+entity, err)
}

func (s *Server) handleGroupMatches(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if _, err := s.store.GetGroup(r.Context(), groupID); err != nil {
		s.writeAppError(w, r, lookupError(err, "group", groupID))
		return
	}
	matches, err := s.store.ListGroupMatches(r.Context(), groupID)
	if err != nil {
		s.writeAppError(w, r, apperr.Collaborator("list matches", err))
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleGroupStandings(w http.ResponseWriter, r *http.Request) {
	rows, err := s.standings.GroupStandings(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGroupDelete(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := s.store.DeleteGroup(r.Context(), groupID); err != nil {
		s.writeAppError(w, r, lookupError(err, "group", groupID))
		return
	}
	s.logger.InfoContext(r.Context(), "group deleted", "group_id", groupID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverrideList(w http.ResponseWriter, r *http.Request) {
	overrides, err := s.overrides.List(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overrides)
}

type overrideRequest struct {
	Rank int `json:"rank"`
}

func (s *Server) handleOverrideSet(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	override, err := s.overrides.Set(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "competitorID"), req.Rank)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, override)
}

func (s *Server) handleOverrideClear(w http.ResponseWriter, r *http.Request) {
	if err := s.overrides.Clear(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "competitorID")); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGroupOverridesClear(w http.ResponseWriter, r *http.Request) {
	if err := s.overrides.ClearGroup(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
