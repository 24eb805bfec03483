package airquality

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/aqi"
	"github.com/airsight/airsight/internal/observation"
	"github.com/airsight/airsight/internal/provider/resilience"
)

// Provider defines the interface for pollution data providers.
type Provider interface {
	// GetCurrent fetches the current reading for a location.
	GetCurrent(ctx context.Context, lat, lon float64) (*Reading, error)

	// GetForecast fetches hourly forecast readings for a location.
	GetForecast(ctx context.Context, lat, lon float64) ([]Reading, error)

	// Name returns the provider name for logging.
	Name() string
}

// Telemetry records upstream call metrics. Optional.
type Telemetry interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Provider is the pollution data provider.
	Provider Provider

	// Store receives successful current observations as a side channel
	// for other features. Optional.
	Store observation.Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// MaxAttempts is the upstream retry budget per request (default 3).
	MaxAttempts int

	// RetryInterval is the linear backoff unit: the wait after attempt n
	// is n x RetryInterval (default 1 second).
	RetryInterval time.Duration

	// ForecastHorizon caps how many forecast entries are returned
	// (default 24).
	ForecastHorizon int

	// Metrics receives per-call provider telemetry. Optional.
	Metrics Telemetry
}

// Service turns coordinates into standard AQI observations.
type Service struct {
	provider        Provider
	store           observation.Repository
	logger          zerolog.Logger
	retryPolicy     resilience.RetryPolicy
	forecastHorizon int
	metrics         Telemetry
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	retryInterval := cfg.RetryInterval
	if retryInterval == 0 {
		retryInterval = 1 * time.Second
	}

	forecastHorizon := cfg.ForecastHorizon
	if forecastHorizon <= 0 {
		forecastHorizon = 24
	}

	return &Service{
		provider: cfg.Provider,
		store:    cfg.Store,
		logger:   cfg.Logger,
		retryPolicy: resilience.RetryPolicy{
			MaxAttempts: maxAttempts,
			Delay:       resilience.LinearDelay(retryInterval),
		},
		forecastHorizon: forecastHorizon,
		metrics:         cfg.Metrics,
	}
}

// GetCurrent returns the converted current observation for a location.
// Coordinates are validated before any network call; upstream failures
// (transport errors, non-2xx, empty bodies) are retried with linear
// backoff and surface as *UpstreamError once the budget is exhausted.
func (s *Service) GetCurrent(ctx context.Context, lat, lon float64) (*Observation, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	reading, err := s.fetchCurrent(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	result, err := aqi.Convert(reading.SourceAQI, reading.Components)
	if err != nil {
		// Upstream delivered unusable numbers; not retryable.
		return nil, err
	}

	obs := &Observation{
		Timestamp:  reading.ObservedAt.UnixMilli(),
		Result:     result,
		Components: reading.Components,
		Location:   Location{Lat: lat, Lon: lon},
	}

	s.RecordObservation(ctx, obs)

	return obs, nil
}

// GetComponents returns named, unit-annotated pollutant concentrations.
func (s *Service) GetComponents(ctx context.Context, lat, lon float64) (map[string]Component, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	reading, err := s.fetchCurrent(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	return ComponentMap(reading.Components), nil
}

// GetForecast returns up to the forecast horizon of converted hourly
// points, each passed through the converter independently.
func (s *Service) GetForecast(ctx context.Context, lat, lon float64) ([]ForecastPoint, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	var readings []Reading
	start := time.Now()
	attempts, err := resilience.Do(ctx, s.retryPolicy, func(ctx context.Context) error {
		var fetchErr error
		readings, fetchErr = s.provider.GetForecast(ctx, lat, lon)
		if fetchErr != nil {
			return fetchErr
		}
		if len(readings) == 0 {
			return ErrInvalidUpstreamResponse
		}
		return nil
	})
	s.recordCall("forecast", start, err)
	if err != nil {
		s.logger.Error().Err(err).
			Int("attempts", attempts).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("forecast fetch failed")
		return nil, &UpstreamError{Attempts: attempts, Err: err}
	}

	if len(readings) > s.forecastHorizon {
		readings = readings[:s.forecastHorizon]
	}

	points := make([]ForecastPoint, 0, len(readings))
	for _, reading := range readings {
		result, err := aqi.Convert(reading.SourceAQI, reading.Components)
		if err != nil {
			return nil, err
		}
		points = append(points, ForecastPoint{
			Timestamp:  reading.ObservedAt.UnixMilli(),
			Result:     result,
			Components: reading.Components,
		})
	}

	return points, nil
}

// RecordObservation writes an observation to the store. Best effort: a
// store failure is logged, never surfaced to the caller.
func (s *Service) RecordObservation(ctx context.Context, obs *Observation) {
	if s.store == nil {
		return
	}

	rec := observation.Record{
		Result:     obs.Result,
		Components: obs.Components,
		Lat:        obs.Location.Lat,
		Lon:        obs.Location.Lon,
		ObservedAt: time.UnixMilli(obs.Timestamp),
	}
	if err := s.store.Store(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record observation")
	}
}

// fetchCurrent fetches one current reading with the retry policy applied.
func (s *Service) fetchCurrent(ctx context.Context, lat, lon float64) (*Reading, error) {
	var reading *Reading
	start := time.Now()
	attempts, err := resilience.Do(ctx, s.retryPolicy, func(ctx context.Context) error {
		var fetchErr error
		reading, fetchErr = s.provider.GetCurrent(ctx, lat, lon)
		if fetchErr != nil {
			return fetchErr
		}
		if reading == nil {
			return ErrInvalidUpstreamResponse
		}
		return nil
	})
	s.recordCall("current", start, err)
	if err != nil {
		s.logger.Error().Err(err).
			Int("attempts", attempts).
			Float64("lat", lat).
			Float64("lon", lon).
			Str("provider", s.provider.Name()).
			Msg("current reading fetch failed")
		return nil, &UpstreamError{Attempts: attempts, Err: err}
	}

	return reading, nil
}

// recordCall reports one retried provider call, including backoff time.
func (s *Service) recordCall(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordRequest(s.provider.Name(), operation, time.Since(start), err)
}

// validateCoordinates rejects non-finite or out-of-range coordinates.
func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Permanent marks an error as non-retryable for the retry combinator.
// Exposed for providers that can classify 4xx responses.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
