// Package main provides the entrypoint for the AirSight API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/airquality/openweather"
	"github.com/airsight/airsight/internal/api"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/config"
	"github.com/airsight/airsight/internal/database"
	"github.com/airsight/airsight/internal/news"
	"github.com/airsight/airsight/internal/news/newsapi"
	"github.com/airsight/airsight/internal/observation"
	"github.com/airsight/airsight/internal/osm"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/recommend"
	"github.com/airsight/airsight/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airsight-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSight API")

	cfg := config.Load()

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.AppEnv,
		OTLPEndpoint:   cfg.OTELEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTELEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Observation store: Postgres when DATABASE_URL is set, otherwise the
	// in-memory grid cache.
	var store observation.Repository = observation.NewMemoryRepository(observation.MemoryConfig{})
	if cfg.DatabaseURL != "" {
		pool, dbErr := database.Connect(ctx, database.ConfigFromEnv())
		if dbErr != nil {
			log.Fatal().Err(dbErr).Msg("failed to connect to database")
		}
		defer pool.Close()

		if migrateErr := database.Migrate(ctx, pool); migrateErr != nil {
			log.Fatal().Err(migrateErr).Msg("failed to apply database schema")
		}

		store = observation.NewPostgresRepository(pool)
		log.Info().Msg("postgres observation store initialized")
	} else {
		log.Info().Msg("using in-memory observation store")
	}

	// Pollution provider with a registered circuit breaker. The gateway
	// service owns the retry schedule, so the client is single-attempt.
	owHTTP := resilience.NewClient(resilience.SingleAttemptConfig(openweather.ProviderName))
	resilience.GlobalRegistry.Register(openweather.ProviderName, owHTTP)

	owClient := openweather.NewClient(openweather.ClientConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		HTTPClient: owHTTP,
		Logger:     log,
	})

	airQualityService := airquality.NewService(airquality.ServiceConfig{
		Provider: owClient,
		Store:    store,
		Logger:   log,
		Metrics:  providerMetrics,
	})
	log.Info().Msg("air quality gateway initialized")

	// News search plus optional AI summarization.
	newsHTTP := resilience.NewClient(resilience.DefaultClientConfig(newsapi.ProviderName))
	resilience.GlobalRegistry.Register(newsapi.ProviderName, newsHTTP)

	newsClient := newsapi.NewClient(newsapi.ClientConfig{
		APIKey:     cfg.NewsAPIKey,
		HTTPClient: newsHTTP,
		Logger:     log,
	})

	var summarizer news.Summarizer
	if cfg.OpenAIAPIKey != "" {
		summarizer = news.NewOpenAISummarizer(cfg.OpenAIAPIKey)
		log.Info().Msg("news summarizer initialized")
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, news summaries use the canned fallback")
	}

	newsService := news.NewService(news.ServiceConfig{
		Searcher:   newsClient,
		Summarizer: summarizer,
		Store:      store,
		Logger:     log,
		Metrics:    providerMetrics,
	})
	log.Info().Msg("news service initialized")

	// Urban planning recommendations via OpenRouter.
	var chatClient recommend.ChatClient
	if cfg.OpenRouterAPIKey != "" {
		chatClient = recommend.NewOpenRouterClient(cfg.OpenRouterAPIKey)
		log.Info().Msg("recommendation model client initialized")
	} else {
		log.Warn().Msg("OPENROUTER_API_KEY not set, recommendations use the fallback set")
	}

	recommendService := recommend.NewService(recommend.ServiceConfig{
		Client: chatClient,
		Logger: log,
	})

	// Overpass map features.
	osmHTTP := resilience.NewClient(resilience.DefaultClientConfig(osm.ProviderName))
	resilience.GlobalRegistry.Register(osm.ProviderName, osmHTTP)

	osmClient := osm.NewClient(osm.ClientConfig{
		HTTPClient: osmHTTP,
		Logger:     log,
	})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		AirQuality:  airQualityService,
		Store:       store,
		News:        newsService,
		Recommend:   recommendService,
		OSM:         osmClient,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
