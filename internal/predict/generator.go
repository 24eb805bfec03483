// Package predict generates synthetic air quality forecasts and elevation
// grids for dashboard prototyping. The data is mock: a seeded random walk,
// not a model.
package predict

import (
	"math/rand"
	"time"

	"github.com/airsight/airsight/internal/aqi"
)

const (
	// DefaultHours is the forecast horizon when the caller does not set one.
	DefaultHours = 24

	// maxStep bounds the hourly AQI random walk step.
	maxStep = 5

	// gridSpacing is the degree distance between elevation grid points.
	gridSpacing = 0.01
)

// Point is one synthetic hourly forecast value.
type Point struct {
	Timestamp int64     `json:"timestamp"`
	AQI       int       `json:"aqi"`
	Level     aqi.Level `json:"level"`
	Color     string    `json:"color"`
}

// ElevationPoint is one cell of the synthetic elevation grid.
type ElevationPoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation"`
}

// Generator produces synthetic series from a seeded random source.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator. A nil source seeds from the clock;
// tests inject a fixed source for deterministic output.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{
		rng: rand.New(src),
		now: time.Now,
	}
}

// GenerateForecast random-walks hourly AQI values starting from base.
// Values never go below zero; level/color stay consistent with each value.
func (g *Generator) GenerateForecast(base aqi.Result, hours int) []Point {
	if hours <= 0 {
		hours = DefaultHours
	}

	points := make([]Point, 0, hours)
	value := base.AQI
	start := g.now()

	for h := 1; h <= hours; h++ {
		value += g.rng.Intn(2*maxStep+1) - maxStep
		if value < 0 {
			value = 0
		}

		level, _, color := aqi.Categorize(value)
		points = append(points, Point{
			Timestamp: start.Add(time.Duration(h) * time.Hour).UnixMilli(),
			AQI:       value,
			Level:     level,
			Color:     color,
		})
	}
	return points
}

// GenerateElevationGrid produces a size×size grid of synthetic elevations
// centered on the given coordinates.
func (g *Generator) GenerateElevationGrid(lat, lon float64, size int) []ElevationPoint {
	if size <= 0 {
		size = 10
	}

	base := 20.0 + g.rng.Float64()*80.0
	half := float64(size) / 2

	points := make([]ElevationPoint, 0, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			points = append(points, ElevationPoint{
				Lat:       lat + (float64(i)-half)*gridSpacing,
				Lon:       lon + (float64(j)-half)*gridSpacing,
				Elevation: base + g.rng.Float64()*30.0,
			})
		}
	}
	return points
}
