package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Core pipeline
		r.Post("/process-data", h.ProcessData)
		r.Get("/get-rankings", h.GetRankings)
		r.Post("/validate-data", h.ValidateData)

		// CSV ingestion
		r.Post("/upload", h.Upload)

		// Plan store
		r.Get("/plans", h.ListPlans)

		// Workbook downloads
		r.Route("/files", func(r chi.Router) {
			r.Get("/rankings", h.DownloadRankings)
			r.Get("/performance", h.DownloadPerformance)
		})
	})

	return r
}
