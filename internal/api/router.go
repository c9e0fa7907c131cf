package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"github.com/socialchef/mise/internal/middleware"
	"github.com/socialchef/mise/internal/sentry"
	"go.opentelemetry.io/otel"
)

// NewRouter wires the page, the state API and the health check.
func NewRouter(s *Server, serviceName string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(serviceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(serviceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(sentry.HTTPMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	r.Get("/health", s.HandleHealth)

	r.Get("/", s.HandleIndex)
	r.Post("/", s.HandleFormSubmit)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.HandleState)
		r.Put("/query", s.HandleSetQuery)
		r.Post("/submit", s.HandleSubmit)
	})

	return r
}
