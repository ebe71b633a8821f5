// Package api provides the HTTP API of the railops engine.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/railops/railops/internal/api/handler"
	"github.com/railops/railops/internal/api/middleware"
	"github.com/railops/railops/internal/api/response"
	"github.com/railops/railops/internal/engine"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string

	// Metrics may be nil.
	Metrics *middleware.Metrics

	Engine *engine.Service

	// RateLimitPerMinute caps requests per client IP on the data routes.
	// Zero disables rate limiting.
	RateLimitPerMinute int

	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "railops-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no such resource")
	})

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Engine)
	dutyHandler := handler.NewDutyHandler(cfg.Engine)
	tripHandler := handler.NewTripHandler(cfg.Engine)
	unitHandler := handler.NewUnitHandler(cfg.Engine)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Group(func(r chi.Router) {
			if cfg.RateLimitPerMinute > 0 {
				r.Use(middleware.RateLimitByIP(middleware.PerMinute(cfg.RateLimitPerMinute)))
			}

			r.Route("/duties", func(r chi.Router) {
				r.Get("/", dutyHandler.Board)
				r.Route("/{dutyId}", func(r chi.Router) {
					r.Get("/", dutyHandler.GetDuty)
					r.Get("/status", dutyHandler.GetStatus)
				})
			})

			r.Get("/trips/{tripCode}/state", tripHandler.GetState)
			r.Get("/units/{unitId}/contact", unitHandler.GetContact)
		})
	})

	return r
}
