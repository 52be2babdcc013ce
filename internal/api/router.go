package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// Device endpoints (registry view: what the add-on reported)
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/stats", s.handleDeviceStats)

			r.Route("/{mac}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Get("/history", s.handleDeviceHistory)
				r.Post("/command", s.handleDeviceCommand)
				r.Post("/refresh", s.handleRefreshDevice)
			})
		})

		// Entity endpoints (typed view: lights, switches, diffusers)
		r.Route("/entities", func(r chi.Router) {
			r.Get("/", s.handleListEntities)
			r.Get("/{mac}", s.handleGetEntity)
		})

		// WebSocket for real-time state updates
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
