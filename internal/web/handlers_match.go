package web

import (
	"net/http"

	"padel-app/internal/confirm"
	"padel-app/internal/model"
	"padel-app/internal/score"

	"github.com/go-chi/chi/v5"
)

type resultRequest struct {
	ActorID string      `json:"actor_id"`
	Side    model.Side  `json:"side,omitempty"`
	Frame   score.Frame `json:"frame,omitempty"`
	Score   model.Score `json:"score"`
}

type resolveRequest struct {
	ActorID    string             `json:"actor_id,omitempty"`
	Resolution confirm.Resolution `json:"resolution"`
	Score      *model.Score       `json:"score,omitempty"`
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	res, err := s.confirm.SubmitResult(r.Context(), confirm.SubmitRequest{
		MatchID: chi.URLParam(r, "matchID"),
		ActorID: req.ActorID,
		Side:    req.Side,
		Frame:   req.Frame,
		Score:   req.Score,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	res, err := s.confirm.ResolveConflict(r.Context(), confirm.ResolveRequest{
		MatchID:    chi.URLParam(r, "matchID"),
		Actor:      confirm.Actor{CompetitorID: req.ActorID, Admin: s.isAdmin(r)},
		Resolution: req.Resolution,
		Score:      req.Score,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	res, err := s.confirm.Reset(r.Context(), chi.URLParam(r, "matchID"), confirm.Actor{Admin: true})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
