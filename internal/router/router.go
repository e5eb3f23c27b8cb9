package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gradeboard-dev/gradeboard/internal/middleware"
	"github.com/gradeboard-dev/gradeboard/internal/setup"
)

// New creates and configures the router with all the routes.
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	// CORS for the dashboard SPA
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	guard := deps.AuthMiddleware

	// Plain liveness check for Docker/ECS, plus Prometheus
	r.Get("/health", h.Health)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Ready)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireAuth())
				r.Get("/me", h.Me)
				r.Post("/logout", h.Logout)
			})
		})

		// Grading data, any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAuth())
			r.Get("/courses", h.ListCourses)
			r.Get("/courses/{course}/progress", h.CourseProgress)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(guard.AdminOnly())
			r.Get("/users", h.ListUsers)
		})
	})

	return r
}
