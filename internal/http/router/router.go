// Package router assembles the chi router: middleware chain, person
// routes, health check and metrics endpoint.
package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/people-api/internal/config"
	"github.com/aanand-mishra/people-api/internal/http/handlers/person"
	"github.com/aanand-mishra/people-api/internal/http/middleware"
	"github.com/aanand-mishra/people-api/internal/utils/response"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Service is the person service plus a reachability check.
type Service interface {
	person.Service
	Ping(ctx context.Context) error
}

// New builds the application's HTTP handler.
//
// Route table:
//
//	GET    /api/people        → list all people
//	POST   /api/people        → create a person
//	GET    /api/people/{id}   → get one person
//	PUT    /api/people/{id}   → partially update a person
//	PATCH  /api/people/{id}   → same as PUT
//	DELETE /api/people/{id}   → delete a person
//	GET    /healthz           → store reachability
//	GET    /metrics           → Prometheus exposition
func New(cfg config.HTTPServer, svc Service, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	// RealIP trusts client-supplied headers, so it is only safe behind a
	// proxy that sets them.
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Metrics)
	// CORS runs before the limiter so 429s still carry CORS headers.
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}).Handler)
	if cfg.RateLimit.RPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Handler)
	}

	r.Get("/healthz", health(svc))
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Route("/api/people", func(r chi.Router) {
		r.Get("/", person.GetList(svc))
		r.Post("/", person.New(svc))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", person.GetByID(svc))
			r.Put("/", person.Update(svc))
			r.Patch("/", person.Update(svc))
			r.Delete("/", person.Delete(svc))
		})
	})

	return r
}

func health(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
	}
}
