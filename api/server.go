/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers
  3. Logger:     Structured request logging through zerolog
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests
  6. Auth:       Bearer-token check on the evaluation/lookup group only

ROUTE GROUPS:
  /health               Liveness (always open)
  /metrics              Prometheus scrape (always open)
  /api/info             Service description (always open)
  /api/auth/token       Token exchange (always open)
  /api/*                Evaluation and lookups (bearer token when enabled)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Unknown route", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	r.Get("/health", h.Health)
	r.Get("/metrics", h.Metrics.Handler().ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/info", h.Info)
		r.Post("/auth/token", h.IssueToken)

		// Everything below requires a bearer token when auth is enabled.
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.Auth))

			r.Post("/evaluate", h.Evaluate)
			r.Post("/evaluate/batch", h.EvaluateBatch)
			r.Post("/analyze/text", h.AnalyzeText)

			r.Get("/rules", h.ListRules)
			r.Get("/minimums", h.GetMinimums)
			r.Get("/runs", h.ListRuns)
		})
	})

	return r
}

// requestLogger emits one structured log line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("http request")
		})
	}
}
