package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/syncstat/internal/api/middleware"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		JSONError(w, ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		JSONError(w, ErrMethodNotAllowed)
	})

	// Health checks (public, no rate limit)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/ready", s.healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(s.limiter))

		r.Get("/summary", s.view("summary", summaryView))
		r.Get("/users", s.view("users", usersView))
		r.Get("/servers", s.view("servers", serversView))
		r.Get("/cleanup", s.view("cleanup", cleanupView))
		r.Get("/options", s.view("options", optionsView))
		r.Get("/activity", s.view("activity", activityView))

		r.Route("/models", func(r chi.Router) {
			r.Get("/", s.view("models", modelsView))
			r.Get("/types", s.view("model_types", modelTypesView))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.view("projects", projectsView))
			r.Get("/{project}", s.view("project", projectView))
			r.Get("/{project}/sections/{section}", s.view("project_section", sectionView))
		})
	})

	return r
}
