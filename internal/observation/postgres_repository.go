package observation

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airsight/airsight/internal/aqi"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Observations are appended to a history table; reads take the newest row.
type PostgresRepository struct {
	pool     *pgxpool.Pool
	gridSize float64
}

// NewPostgresRepository creates a new PostgreSQL observation repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, gridSize: 0.1}
}

// Store appends an observation row.
func (r *PostgresRepository) Store(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO observations (
			aqi, source_aqi, level, color,
			co, no, no2, o3, so2, pm2_5, pm10, nh3,
			lat, lon, location_name, observed_at, stored_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now())
	`

	_, err := r.pool.Exec(ctx, query,
		rec.Result.AQI,
		rec.Result.SourceAQI,
		string(rec.Result.Level),
		rec.Result.Color,
		rec.Components.CO,
		rec.Components.NO,
		rec.Components.NO2,
		rec.Components.O3,
		rec.Components.SO2,
		rec.Components.PM25,
		rec.Components.PM10,
		rec.Components.NH3,
		rec.Lat,
		rec.Lon,
		rec.LocationName,
		rec.ObservedAt,
	)
	return err
}

// Latest returns the newest stored observation.
func (r *PostgresRepository) Latest(ctx context.Context) (*Record, error) {
	query := selectColumns + `
		FROM observations
		ORDER BY stored_at DESC
		LIMIT 1
	`
	return r.scanRecord(ctx, query)
}

// LatestNear returns the newest observation within the grid cell
// containing lat/lon.
func (r *PostgresRepository) LatestNear(ctx context.Context, lat, lon float64) (*Record, error) {
	query := selectColumns + `
		FROM observations
		WHERE lat >= $1 AND lat < $2 AND lon >= $3 AND lon < $4
		ORDER BY stored_at DESC
		LIMIT 1
	`

	cellLat := cellFloor(lat, r.gridSize)
	cellLon := cellFloor(lon, r.gridSize)
	return r.scanRecord(ctx, query, cellLat, cellLat+r.gridSize, cellLon, cellLon+r.gridSize)
}

// Level and color are stored for ad-hoc SQL but not read back: in Go they
// always derive from the AQI value.
const selectColumns = `
		SELECT
			aqi, source_aqi,
			co, no, no2, o3, so2, pm2_5, pm10, nh3,
			lat, lon, location_name, observed_at, stored_at
`

// scanRecord scans a single observation row.
func (r *PostgresRepository) scanRecord(ctx context.Context, query string, args ...interface{}) (*Record, error) {
	var rec Record

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rec.Result.AQI,
		&rec.Result.SourceAQI,
		&rec.Components.CO,
		&rec.Components.NO,
		&rec.Components.NO2,
		&rec.Components.O3,
		&rec.Components.SO2,
		&rec.Components.PM25,
		&rec.Components.PM10,
		&rec.Components.NH3,
		&rec.Lat,
		&rec.Lon,
		&rec.LocationName,
		&rec.ObservedAt,
		&rec.StoredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoObservations
		}
		return nil, err
	}

	rec.Result.Level, rec.Result.Description, rec.Result.Color = aqi.Categorize(rec.Result.AQI)
	return &rec, nil
}

func cellFloor(v, size float64) float64 {
	return math.Floor(v/size) * size
}
