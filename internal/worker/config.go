// Package worker provides background observation refresh for AirSight.
package worker

import (
	"time"
)

// RefreshTarget represents a geographic region to refresh.
type RefreshTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are the lat/lon coordinates to refresh.
	// Typically the centers of monitored metro areas.
	Points []Point

	// Priority determines refresh order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// RefreshConfig holds configuration for the observation refresh job.
type RefreshConfig struct {
	// Targets are the geographic regions to refresh.
	// If empty, uses DefaultRefreshTargets.
	Targets []RefreshTarget

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:     DefaultRefreshTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultRefreshTargets returns the default refresh targets.
// Focuses on the Bay Area and other West Coast metros the dashboard
// surfaces by default.
func DefaultRefreshTargets() []RefreshTarget {
	return []RefreshTarget{
		{
			Name:     "San Francisco",
			Priority: 1,
			Points: []Point{
				{Lat: 37.7749, Lon: -122.4194}, // Civic Center
				{Lat: 37.8044, Lon: -122.2712}, // Oakland
				{Lat: 37.8716, Lon: -122.2727}, // Berkeley
			},
		},
		{
			Name:     "San Jose",
			Priority: 1,
			Points: []Point{
				{Lat: 37.3382, Lon: -121.8863}, // Downtown
				{Lat: 37.4220, Lon: -122.0841}, // Mountain View
			},
		},
		{
			Name:     "Sacramento",
			Priority: 2,
			Points: []Point{
				{Lat: 38.5816, Lon: -121.4944},
			},
		},
		{
			Name:     "Los Angeles",
			Priority: 2,
			Points: []Point{
				{Lat: 34.0522, Lon: -118.2437}, // Downtown
				{Lat: 34.0195, Lon: -118.4912}, // Santa Monica
				{Lat: 34.1478, Lon: -118.1445}, // Pasadena
			},
		},
		{
			Name:     "Fresno",
			Priority: 3,
			Points: []Point{
				{Lat: 36.7378, Lon: -119.7871},
			},
		},
		{
			Name:     "Portland",
			Priority: 3,
			Points: []Point{
				{Lat: 45.5152, Lon: -122.6784},
			},
		},
		{
			Name:     "Seattle",
			Priority: 3,
			Points: []Point{
				{Lat: 47.6062, Lon: -122.3321},
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c RefreshConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to refresh.
func (c RefreshConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
