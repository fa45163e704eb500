package router

import (
	"net/http"

	"order-service/internal/handler"
	"order-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Orders    *handler.OrderHandler
	Analytics *handler.AnalyticsHandler
	Health    *handler.HealthHandler
	Metrics   http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, recorder middleware.RequestRecorder, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Outermost first: Recovery -> RequestID -> RealIP -> Logging -> Metrics -> CORS -> APIKeyAuth -> Actor
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))
	r.Use(middleware.Actor)

	// Unauthenticated
	r.Get("/health", h.Health.Check)
	r.Handle("/metrics", h.Metrics)

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.Orders.Create)
		r.Get("/", h.Orders.List)
		r.Get("/{orderNumber}", h.Orders.Get)
		r.Patch("/{orderNumber}/status", h.Orders.UpdateStatus)
		r.Post("/{orderNumber}/tracking", h.Orders.AddTracking)
		r.Post("/{orderNumber}/cancel", h.Orders.Cancel)
	})

	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/summary", h.Analytics.Summary)
		r.Get("/top-products", h.Analytics.TopProducts)
		r.Get("/dashboard", h.Analytics.Dashboard)
	})

	return r
}
