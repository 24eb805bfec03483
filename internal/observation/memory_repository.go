package observation

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository keyed by location grid cell.
// Entries expire after a TTL; reads of expired entries behave as misses.
// Safe for concurrent use.
type MemoryRepository struct {
	gridSize float64
	ttl      time.Duration

	mu        sync.RWMutex
	records   map[string]*Record
	latestKey string
}

// MemoryConfig holds configuration for the in-memory repository.
type MemoryConfig struct {
	// GridSize is the cell size in degrees (default 0.1, ~11km at the
	// equator). Points in the same cell overwrite each other.
	GridSize float64

	// TTL bounds how long a record stays readable (default 1 hour).
	TTL time.Duration
}

// NewMemoryRepository creates an in-memory repository.
func NewMemoryRepository(cfg MemoryConfig) *MemoryRepository {
	if cfg.GridSize <= 0 {
		cfg.GridSize = 0.1
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 1 * time.Hour
	}
	return &MemoryRepository{
		gridSize: cfg.GridSize,
		ttl:      cfg.TTL,
		records:  make(map[string]*Record),
	}
}

// Store records an observation, overwriting the cell's previous entry.
func (r *MemoryRepository) Store(_ context.Context, rec Record) error {
	if rec.StoredAt.IsZero() {
		rec.StoredAt = time.Now()
	}

	key := r.cellKey(rec.Lat, rec.Lon)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key] = &rec
	r.latestKey = key
	return nil
}

// Latest returns the most recently stored, unexpired observation.
func (r *MemoryRepository) Latest(_ context.Context) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rec, ok := r.records[r.latestKey]; ok && !r.expired(rec) {
		copied := *rec
		return &copied, nil
	}

	// The latest cell may have been overwritten by an older write;
	// fall back to scanning for the freshest entry.
	var freshest *Record
	for _, rec := range r.records {
		if r.expired(rec) {
			continue
		}
		if freshest == nil || rec.StoredAt.After(freshest.StoredAt) {
			freshest = rec
		}
	}
	if freshest == nil {
		return nil, ErrNoObservations
	}
	copied := *freshest
	return &copied, nil
}

// LatestNear returns the unexpired observation for the cell containing
// lat/lon.
func (r *MemoryRepository) LatestNear(_ context.Context, lat, lon float64) (*Record, error) {
	key := r.cellKey(lat, lon)

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[key]
	if !ok || r.expired(rec) {
		return nil, ErrNoObservations
	}
	copied := *rec
	return &copied, nil
}

func (r *MemoryRepository) expired(rec *Record) bool {
	return time.Since(rec.StoredAt) > r.ttl
}

func (r *MemoryRepository) cellKey(lat, lon float64) string {
	cellLat := math.Floor(lat/r.gridSize) * r.gridSize
	cellLon := math.Floor(lon/r.gridSize) * r.gridSize
	return fmt.Sprintf("%.2f:%.2f", cellLat, cellLon)
}
