package airquality_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/aqi"
	"github.com/airsight/airsight/internal/observation"
)

type fakeProvider struct {
	reading      *airquality.Reading
	forecast     []airquality.Reading
	err          error
	failuresLeft int
	calls        int
}

func (f *fakeProvider) GetCurrent(context.Context, float64, float64) (*airquality.Reading, error) {
	f.calls++
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, f.err
	}
	if f.err != nil && f.failuresLeft == 0 && f.reading == nil {
		return nil, f.err
	}
	return f.reading, nil
}

func (f *fakeProvider) GetForecast(context.Context, float64, float64) ([]airquality.Reading, error) {
	f.calls++
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, f.err
	}
	if f.err != nil && f.failuresLeft == 0 && f.forecast == nil {
		return nil, f.err
	}
	return f.forecast, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func goodReading() *airquality.Reading {
	return &airquality.Reading{
		SourceAQI:  1,
		Components: aqi.Concentrations{PM25: 10, PM10: 20, O3: 15},
		ObservedAt: time.Unix(1724700000, 0),
	}
}

func newService(p *fakeProvider, store observation.Repository) *airquality.Service {
	return airquality.NewService(airquality.ServiceConfig{
		Provider:      p,
		Store:         store,
		Logger:        zerolog.Nop(),
		RetryInterval: time.Millisecond,
	})
}

func TestGetCurrent_ConvertsReading(t *testing.T) {
	provider := &fakeProvider{reading: goodReading()}
	svc := newService(provider, nil)

	obs, err := svc.GetCurrent(context.Background(), 37.7749, -122.4194)

	require.NoError(t, err)
	assert.Equal(t, 42, obs.Result.AQI)
	assert.Equal(t, aqi.LevelGood, obs.Result.Level)
	assert.Equal(t, "green", obs.Result.Color)
	assert.Equal(t, 1, obs.Result.SourceAQI)
	assert.Equal(t, int64(1724700000000), obs.Timestamp)
	assert.InDelta(t, 37.7749, obs.Location.Lat, 1e-9)
	assert.Equal(t, 1, provider.calls)
}

func TestGetCurrent_InvalidCoordinatesBeforeNetworkCall(t *testing.T) {
	provider := &fakeProvider{reading: goodReading()}
	svc := newService(provider, nil)

	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"nan lat", math.NaN(), 4.9},
		{"inf lon", 52.0, math.Inf(1)},
		{"lat out of range", 95, 4.9},
		{"lon out of range", 52.0, 181},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetCurrent(context.Background(), tc.lat, tc.lon)

			assert.ErrorIs(t, err, airquality.ErrInvalidCoordinates)
			assert.Equal(t, 0, provider.calls)
		})
	}
}

func TestGetCurrent_RetriesThenSucceeds(t *testing.T) {
	provider := &fakeProvider{
		reading:      goodReading(),
		err:          errors.New("connection refused"),
		failuresLeft: 2,
	}
	svc := newService(provider, nil)

	obs, err := svc.GetCurrent(context.Background(), 37.7749, -122.4194)

	require.NoError(t, err)
	assert.Equal(t, 42, obs.Result.AQI)
	assert.Equal(t, 3, provider.calls)
}

func TestGetCurrent_ExhaustsRetryBudget(t *testing.T) {
	cause := errors.New("connection refused")
	provider := &fakeProvider{err: cause, failuresLeft: 10}
	svc := newService(provider, nil)

	_, err := svc.GetCurrent(context.Background(), 37.7749, -122.4194)

	require.Error(t, err)
	assert.Equal(t, 3, provider.calls)

	var upstreamErr *airquality.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 3, upstreamErr.Attempts)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "3 attempts")
}

func TestGetCurrent_EmptyBodyIsRetryable(t *testing.T) {
	provider := &fakeProvider{
		err:          airquality.ErrInvalidUpstreamResponse,
		failuresLeft: 10,
	}
	svc := newService(provider, nil)

	_, err := svc.GetCurrent(context.Background(), 37.7749, -122.4194)

	require.Error(t, err)
	assert.Equal(t, 3, provider.calls)
	assert.ErrorIs(t, err, airquality.ErrInvalidUpstreamResponse)
}

func TestGetCurrent_RecordsObservation(t *testing.T) {
	provider := &fakeProvider{reading: goodReading()}
	store := observation.NewMemoryRepository(observation.MemoryConfig{})
	svc := newService(provider, store)

	_, err := svc.GetCurrent(context.Background(), 37.7749, -122.4194)
	require.NoError(t, err)

	rec, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, rec.Result.AQI)
	assert.InDelta(t, 37.7749, rec.Lat, 1e-9)
}

func TestGetComponents_AnnotatesValues(t *testing.T) {
	provider := &fakeProvider{reading: goodReading()}
	svc := newService(provider, nil)

	components, err := svc.GetComponents(context.Background(), 37.7749, -122.4194)

	require.NoError(t, err)
	assert.InDelta(t, 10.0, components["pm2_5"].Value, 1e-9)
	assert.Equal(t, "μg/m³", components["pm2_5"].Unit)
	assert.Equal(t, "Ozone", components["o3"].Name)
	assert.Len(t, components, 8)
}

func TestGetForecast_CapsAtHorizon(t *testing.T) {
	forecast := make([]airquality.Reading, 48)
	for i := range forecast {
		forecast[i] = airquality.Reading{
			SourceAQI:  2,
			Components: aqi.Concentrations{PM25: 10},
			ObservedAt: time.Unix(int64(1724700000+i*3600), 0),
		}
	}
	provider := &fakeProvider{forecast: forecast}
	svc := newService(provider, nil)

	points, err := svc.GetForecast(context.Background(), 37.7749, -122.4194)

	require.NoError(t, err)
	assert.Len(t, points, 24)

	// Chronological order is preserved.
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].Timestamp, points[i-1].Timestamp)
	}
}

func TestGetForecast_EmptyListRetriedThenFails(t *testing.T) {
	provider := &fakeProvider{forecast: []airquality.Reading{}}
	svc := newService(provider, nil)

	_, err := svc.GetForecast(context.Background(), 37.7749, -122.4194)

	require.Error(t, err)
	assert.Equal(t, 3, provider.calls)

	var upstreamErr *airquality.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.ErrorIs(t, err, airquality.ErrInvalidUpstreamResponse)
}

func TestGetCurrent_StoreFailureNotSurfaced(t *testing.T) {
	provider := &fakeProvider{reading: goodReading()}
	svc := newService(provider, failingStore{})

	obs, err := svc.GetCurrent(context.Background(), 37.7749, -122.4194)

	require.NoError(t, err)
	assert.NotNil(t, obs)
}

type recordedCall struct {
	provider  string
	operation string
	failed    bool
}

type fakeTelemetry struct {
	calls []recordedCall
}

func (f *fakeTelemetry) RecordRequest(provider, operation string, _ time.Duration, err error) {
	f.calls = append(f.calls, recordedCall{provider: provider, operation: operation, failed: err != nil})
}

func TestGetCurrent_RecordsProviderTelemetry(t *testing.T) {
	telemetry := &fakeTelemetry{}
	provider := &fakeProvider{reading: goodReading()}
	svc := airquality.NewService(airquality.ServiceConfig{
		Provider:      provider,
		Logger:        zerolog.Nop(),
		RetryInterval: time.Millisecond,
		Metrics:       telemetry,
	})

	_, err := svc.GetCurrent(context.Background(), 37.7749, -122.4194)
	require.NoError(t, err)

	// One telemetry record per retried call, not per attempt.
	require.Len(t, telemetry.calls, 1)
	assert.Equal(t, "fake", telemetry.calls[0].provider)
	assert.Equal(t, "current", telemetry.calls[0].operation)
	assert.False(t, telemetry.calls[0].failed)
}

func TestGetForecast_RecordsFailedTelemetry(t *testing.T) {
	telemetry := &fakeTelemetry{}
	provider := &fakeProvider{err: errors.New("connection refused"), failuresLeft: 10}
	svc := airquality.NewService(airquality.ServiceConfig{
		Provider:      provider,
		Logger:        zerolog.Nop(),
		RetryInterval: time.Millisecond,
		Metrics:       telemetry,
	})

	_, err := svc.GetForecast(context.Background(), 37.7749, -122.4194)
	require.Error(t, err)

	require.Len(t, telemetry.calls, 1)
	assert.Equal(t, "forecast", telemetry.calls[0].operation)
	assert.True(t, telemetry.calls[0].failed)
}

type failingStore struct{}

func (failingStore) Store(context.Context, observation.Record) error {
	return errors.New("store down")
}

func (failingStore) Latest(context.Context) (*observation.Record, error) {
	return nil, observation.ErrNoObservations
}

func (failingStore) LatestNear(context.Context, float64, float64) (*observation.Record, error) {
	return nil, observation.ErrNoObservations
}
