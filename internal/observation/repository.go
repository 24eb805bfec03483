// Package observation stores the most recent air quality readings so other
// features (the news summary, the dashboard store endpoint) can reuse them
// without re-fetching from the upstream provider.
package observation

import (
	"context"
	"errors"
	"time"

	"github.com/airsight/airsight/internal/aqi"
)

// Repository errors.
var (
	// ErrNoObservations is returned when nothing has been recorded yet,
	// or every recorded entry has expired.
	ErrNoObservations = errors.New("no observations recorded")
)

// Record is a stored air quality observation.
type Record struct {
	Result     aqi.Result
	Components aqi.Concentrations
	Lat        float64
	Lon        float64

	// LocationName is an optional human-readable label, as supplied by
	// the store endpoint. Empty for gateway-recorded observations.
	LocationName string

	ObservedAt time.Time
	StoredAt   time.Time
}

// Repository persists observations and serves the latest ones back.
// Writes are last-write-wins per location cell.
type Repository interface {
	// Store records an observation, overwriting any previous one for the
	// same location cell.
	Store(ctx context.Context, rec Record) error

	// Latest returns the most recently stored observation anywhere.
	Latest(ctx context.Context) (*Record, error)

	// LatestNear returns the most recent observation for the location
	// cell containing lat/lon, falling back to ErrNoObservations.
	LatestNear(ctx context.Context, lat, lon float64) (*Record, error)
}
