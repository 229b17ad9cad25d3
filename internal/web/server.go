// Package web exposes the tournament core over a JSON HTTP API.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"padel-app/internal/bracket"
	"padel-app/internal/confirm"
	"padel-app/internal/standings"
	"padel-app/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
)

type Options struct {
	AdminKeyHash      string
	DefaultNumSets    int
	CORSAllowOrigins  []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type Server struct {
	store        store.Store
	standings    *standings.Service
	overrides    *standings.Overrides
	confirm      *confirm.Service
	cups         *bracket.CupService
	logger       *slog.Logger
	adminKeyHash string
	opts         Options
}

func NewServer(st store.Store, events confirm.Publisher, table standings.Options, logger *slog.Logger, opts Options) *Server {
	if opts.DefaultNumSets == 0 {
		opts.DefaultNumSets = 3
	}
	standingsSvc := standings.NewService(st, table)
	return &Server{
		store:        st,
		standings:    standingsSvc,
		overrides:    standings.NewOverrides(st),
		confirm:      confirm.NewService(st, events, logger),
		cups:         bracket.NewCupService(st, standingsSvc, logger),
		logger:       logger,
		adminKeyHash: opts.AdminKeyHash,
		opts:         opts,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(corslib.New(corslib.Options{
		AllowedOrigins: s.opts.CORSAllowOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", adminKeyHeader},
		ExposedHeaders: []string{"X-Request-Id"},
	}).Handler)

	r.Get("/health", s.handleHealth)

	r.Get("/tournaments", s.handleTournamentList)
	r.Get("/tournaments/{tournamentID}/groups", s.handleGroupList)
	r.Get("/groups/{groupID}/matches", s.handleGroupMatches)
	r.Get("/groups/{groupID}/standings", s.handleGroupStandings)
	r.Get("/groups/{groupID}/overrides", s.handleOverrideList)
	r.Get("/cups/{cupID}/matches", s.handleCupMatches)

	r.Group(func(r chi.Router) {
		if s.opts.RateLimitEnabled {
			r.Use(RateLimit(s.opts.RateLimitRequests, s.opts.RateLimitWindow))
		}

		r.Post("/matches/{matchID}/result", s.handleSubmitResult)
		r.Post("/matches/{matchID}/resolve", s.handleResolve)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAdmin)

			r.Post("/tournaments", s.handleTournamentCreate)
			r.Delete("/tournaments/{tournamentID}/overrides", s.handleTournamentOverridesClear)
			r.Post("/tournaments/{tournamentID}/cups", s.handleCupCreate)
			r.Delete("/groups/{groupID}", s.handleGroupDelete)
			r.Delete("/groups/{groupID}/overrides", s.handleGroupOverridesClear)
			r.Put("/groups/{groupID}/overrides/{competitorID}", s.handleOverrideSet)
			r.Delete("/groups/{groupID}/overrides/{competitorID}", s.handleOverrideClear)
			r.Post("/matches/{matchID}/reset", s.handleReset)
			r.Post("/cups/{cupID}/finals", s.handleCupFinals)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
