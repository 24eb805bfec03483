// Package api provides the HTTP API for AirSight.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/observation"
	"github.com/airsight/airsight/internal/predict"
	"github.com/airsight/airsight/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// AirQuality is the gateway service behind /api/current,
	// /api/components and /api/forecast.
	AirQuality handler.Gateway

	// Store backs /api/store-air-quality.
	Store observation.Repository

	// News is the news summary service.
	News handler.NewsProvider

	// Recommend is the urban planning recommendation service.
	Recommend handler.Recommender

	// OSM is the map feature client.
	OSM handler.FeatureFetcher

	// Predictor generates the synthetic forecast/elevation data.
	Predictor *predict.Generator

	// Registry reports provider circuit status; nil uses the global one.
	Registry *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airsight-api"
	}

	predictor := cfg.Predictor
	if predictor == nil {
		predictor = predict.NewGenerator(nil)
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)

	// Permissive CORS for the dashboard frontend. Preflight passes through
	// to the catch-all OPTIONS handler so every OPTIONS gets a bodyless 204.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"*"},
		ExposedHeaders:     []string{"X-Request-Id"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))

	r.Use(middleware.ContentTypeJSON) // JSON content type
	r.Use(middleware.RequireJSON)     // Reject non-JSON bodies on POST

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	airQualityHandler := handler.NewAirQualityHandler(cfg.AirQuality, cfg.Store)
	newsHandler := handler.NewNewsHandler(cfg.News)
	predictHandler := handler.NewPredictHandler(predictor)
	urbanPlanningHandler := handler.NewUrbanPlanningHandler(cfg.Recommend)
	osmHandler := handler.NewOSMHandler(cfg.OSM)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.MethodFunc(http.MethodOptions, "/*", func(w http.ResponseWriter, req *http.Request) {
		response.NoContent(w, req)
	})

	r.Route("/api", func(r chi.Router) {
		// Ops endpoints (public)
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/status", opsHandler.SystemStatus)

		// Air quality endpoints - standard rate limiting
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/current", airQualityHandler.Current)
			r.Get("/components", airQualityHandler.Components)
			r.Get("/forecast", airQualityHandler.Forecast)
			r.Post("/store-air-quality", airQualityHandler.StoreAirQuality)
		})

		// Model-backed endpoints - strict rate limiting (paid upstreams)
		r.Group(func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Get("/news/air-quality", newsHandler.AirQualityNews)
			r.Get("/urban-planning/recommendations", urbanPlanningHandler.Recommendations)
			r.Post("/urban-planning/recommendations", urbanPlanningHandler.Recommendations)
		})

		// Mock/passthrough endpoints - standard rate limiting
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/predict/air-quality", predictHandler.AirQuality)
			r.Post("/predict/air-quality", predictHandler.AirQuality)
			r.Get("/predict/elevation", predictHandler.Elevation)
			r.Get("/osm/features", osmHandler.Features)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "route not found")
	})

	return r
}
