// Package main provides the entrypoint for the AirSight refresh worker.
//
// The worker periodically warms the observation store for a set of
// monitored metro areas so dashboard reads stay fast even when the
// upstream provider is slow. It also exposes a health endpoint for
// Cloud Run style deployments.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/airquality/openweather"
	"github.com/airsight/airsight/internal/config"
	"github.com/airsight/airsight/internal/database"
	"github.com/airsight/airsight/internal/observation"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const defaultSchedule = "@every 10m"

func main() {
	const serviceName = "airsight-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSight worker")

	cfg := config.Load()

	if cfg.OpenWeatherAPIKey == "" {
		log.Fatal().Msg("OPENWEATHER_API_KEY is not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Same store selection as the API server: both processes pointed at
	// the same DATABASE_URL share observations.
	var store observation.Repository = observation.NewMemoryRepository(observation.MemoryConfig{})
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, database.ConfigFromEnv())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply database schema")
		}

		store = observation.NewPostgresRepository(pool)
		log.Info().Msg("postgres observation store initialized")
	} else {
		log.Warn().Msg("DATABASE_URL not set, observations are not shared with the API")
	}

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
	})

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  worker.DefaultRefreshConfig(),
		Logger:  log,
		Fetcher: airQualityService,
	})

	schedule := os.Getenv("REFRESH_SCHEDULE")
	if schedule == "" {
		schedule = defaultSchedule
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() {
		job.Run(ctx)
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("invalid refresh schedule")
	}

	// Run once at startup so the store is warm before the first tick.
	go job.Run(ctx)

	scheduler.Start()
	log.Info().Str("schedule", schedule).Msg("refresh scheduler started")

	// Health endpoint for platform probes.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"version": Version,
			"metrics": job.MetricsSnapshot(),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
