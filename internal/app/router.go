// Package app assembles the HTTP surface from configuration and handlers.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/raxzrrr/mockinvi/internal/adapter/httpserver"
	"github.com/raxzrrr/mockinvi/internal/adapter/observability"
	"github.com/raxzrrr/mockinvi/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(cfg.HTTPWriteTimeout))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limit the endpoints that trigger AI work
	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		wr.Post("/v1/interviews", srv.StartInterviewHandler())
		wr.Post("/v1/interviews/{id}/answers", srv.SubmitAnswersHandler())
		wr.Post("/v1/resume/extract", srv.ExtractResumeHandler())
	})
	// Read-only endpoints
	r.Get("/v1/interviews/{id}", srv.GetInterviewHandler())
	r.Get("/v1/courses", srv.ListCoursesHandler())

	// Admin endpoints, only when credentials are configured
	if cfg.AdminEnabled() {
		r.Group(func(ar chi.Router) {
			ar.Use(httpserver.AdminAuth(cfg.AdminUsername, cfg.AdminPasswordHash))
			ar.Put("/v1/admin/settings/generation-key", srv.SetGenerationKeyHandler())
			ar.Post("/v1/admin/courses", srv.CreateCourseHandler())
			ar.Put("/v1/admin/courses/{id}", srv.UpdateCourseHandler())
		})
	}

	// Health and metrics
	r.Get("/healthz", srv.HealthHandler())
	r.Get("/readyz", srv.ReadyHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return httpserver.SecurityHeaders(r)
}
