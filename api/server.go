/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request, echoed in the log line
  2. RealIP:        Client address from X-Forwarded-For / X-Real-IP
  3. RequestLogger: One zerolog line per request
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CORS:          Cross-origin requests from the front-end

ROUTE GROUPS:
  /health               Liveness
  /api/metrics/*        Stateless calculators
  /api/attendance/*     Enriched attendance records
  /api/clients/*        Enriched client records
  /api/performance/*    Enriched reviews
  /api/snapshots        Metric archive
  /api/agents/*         Per-agent trends
  /api/reports/*        Excel downloads

SECURITY NOTE:
  The gateway does not authenticate callers itself. Routes that read the
  backend forward the caller's bearer token, and the backend decides.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/metrics", func(r chi.Router) {
			r.Post("/attendance", h.AttendanceMetrics)
			r.Post("/policy", h.PolicyMetrics)
			r.Post("/performance", h.PerformanceMetrics)
		})

		r.Get("/attendance/{id}/metrics", h.GetAttendanceMetrics)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/expiring", h.ListExpiringPolicies)
			r.Get("/{id}/policy-status", h.GetClientPolicyStatus)
		})

		r.Get("/performance/{id}/metrics", h.GetPerformanceMetrics)

		r.Get("/snapshots", h.ListSnapshots)
		r.Get("/agents/{id}/performance-trend", h.GetPerformanceTrend)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/clients.xlsx", h.ClientsReport)
			r.Get("/attendance.xlsx", h.AttendanceReport)
			r.Get("/performance.xlsx", h.PerformanceReport)
		})
	})

	return r
}
