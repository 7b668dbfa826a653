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
	r.Use(s.rateLimitMiddleware)

	// Health check and metrics (no auth required)
	r.Get("/health", s.handleHealth)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints (no auth required)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Timezone catalogue is public so the registration form can
		// populate its picker before an account exists.
		r.Get("/timezones", s.handleListTimezones)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/auth/me", func(r chi.Router) {
				r.Get("/", s.handleGetMe)
				r.Put("/", s.handleUpdateMe)
				r.Delete("/", s.handleDeleteMe)
			})

			r.Route("/greenhouses", func(r chi.Router) {
				r.Get("/", s.handleListGreenhouses)
				r.Post("/", s.handleCreateGreenhouse)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetGreenhouse)
					r.Put("/", s.handleRenameGreenhouse)
					r.Delete("/", s.handleDeleteGreenhouse)
					r.Get("/setpoint", s.handleGetSetpoint)
					r.Put("/setpoint", s.handlePutSetpoint)
					r.Get("/telemetry", s.handleListTelemetry)
					r.Get("/telemetry/latest", s.handleLatestTelemetry)
					r.Get("/connections", s.handleListConnections)
				})
			})

			r.Route("/plants", func(r chi.Router) {
				r.Get("/", s.handleListPlants)
				r.Get("/{id}", s.handleGetPlant)
			})
		})
	})

	return r
}
