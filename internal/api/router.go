// Package api exposes solve history and planned solutions over HTTP.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/dash-soft/hanoi/internal/history"
)

// NewRouter creates the Chi router with all routes and middleware.
// A nil db serves /health and /solve only.
func NewRouter(db *history.DB, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(db)
	solveH := NewSolveHandler(logger)

	r.Get("/health", healthH.Health)
	r.Get("/solve", solveH.Solve)

	if db != nil {
		sessionH := NewSessionHandler(history.NewSessionStore(db))
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionH.ListSessions)
			r.Get("/{id}", sessionH.GetSession)
		})
	}

	return r
}
