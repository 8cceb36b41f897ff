package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
//
// Paths are top-level, not versioned: the existing Home Assistant
// integration consumes them as-is.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/zones", s.handleZones)
	r.Get("/zones/state", s.handleZoneStates)
	r.Get("/lights", s.handleLights)
	r.Get("/lights/status", s.handleLightStatus)
	r.Get("/state", s.handleComponentState)
	r.Post("/command", s.handleCommand)

	return r
}
