package observation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/aqi"
	"github.com/airsight/airsight/internal/observation"
)

func record(aqiValue int, lat, lon float64) observation.Record {
	level, description, color := aqi.Categorize(aqiValue)
	return observation.Record{
		Result: aqi.Result{
			AQI:         aqiValue,
			Level:       level,
			Description: description,
			Color:       color,
		},
		Components: aqi.Concentrations{PM25: float64(aqiValue) / 4},
		Lat:        lat,
		Lon:        lon,
		ObservedAt: time.Now(),
	}
}

func TestMemoryRepository_StoreAndLatest(t *testing.T) {
	repo := observation.NewMemoryRepository(observation.MemoryConfig{})

	require.NoError(t, repo.Store(context.Background(), record(42, 37.77, -122.42)))

	rec, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, rec.Result.AQI)
	assert.False(t, rec.StoredAt.IsZero())
}

func TestMemoryRepository_EmptyReturnsErrNoObservations(t *testing.T) {
	repo := observation.NewMemoryRepository(observation.MemoryConfig{})

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, observation.ErrNoObservations)

	_, err = repo.LatestNear(context.Background(), 37.77, -122.42)
	assert.ErrorIs(t, err, observation.ErrNoObservations)
}

func TestMemoryRepository_SameCellLastWriteWins(t *testing.T) {
	repo := observation.NewMemoryRepository(observation.MemoryConfig{})

	// Both points fall in the same 0.1 degree cell.
	require.NoError(t, repo.Store(context.Background(), record(42, 37.771, -122.419)))
	require.NoError(t, repo.Store(context.Background(), record(85, 37.779, -122.411)))

	rec, err := repo.LatestNear(context.Background(), 37.775, -122.415)
	require.NoError(t, err)
	assert.Equal(t, 85, rec.Result.AQI)
}

func TestMemoryRepository_DifferentCellsKeptSeparately(t *testing.T) {
	repo := observation.NewMemoryRepository(observation.MemoryConfig{})

	require.NoError(t, repo.Store(context.Background(), record(42, 37.77, -122.42)))
	require.NoError(t, repo.Store(context.Background(), record(120, 40.71, -74.01)))

	sf, err := repo.LatestNear(context.Background(), 37.77, -122.42)
	require.NoError(t, err)
	assert.Equal(t, 42, sf.Result.AQI)

	nyc, err := repo.LatestNear(context.Background(), 40.71, -74.01)
	require.NoError(t, err)
	assert.Equal(t, 120, nyc.Result.AQI)

	// Latest points at the most recent write overall.
	latest, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, latest.Result.AQI)
}

func TestMemoryRepository_TTLExpiry(t *testing.T) {
	repo := observation.NewMemoryRepository(observation.MemoryConfig{TTL: 10 * time.Millisecond})

	rec := record(42, 37.77, -122.42)
	rec.StoredAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Store(context.Background(), rec))

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, observation.ErrNoObservations)

	_, err = repo.LatestNear(context.Background(), 37.77, -122.42)
	assert.ErrorIs(t, err, observation.ErrNoObservations)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := observation.NewMemoryRepository(observation.MemoryConfig{})

	require.NoError(t, repo.Store(context.Background(), record(42, 37.77, -122.42)))

	first, err := repo.Latest(context.Background())
	require.NoError(t, err)
	first.Result.AQI = 999

	second, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, second.Result.AQI)
}

func TestMemoryRepository_ConcurrentAccess(t *testing.T) {
	repo := observation.NewMemoryRepository(observation.MemoryConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = repo.Store(context.Background(), record(n%300, 37.77, -122.42))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.Latest(context.Background())
		}()
	}
	wg.Wait()

	_, err := repo.Latest(context.Background())
	assert.NoError(t, err)
}
