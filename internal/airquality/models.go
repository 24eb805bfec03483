// Package airquality turns coordinates into standard AQI observations by
// orchestrating the upstream pollution provider and the AQI converter.
package airquality

import (
	"errors"
	"fmt"
	"time"

	"github.com/airsight/airsight/internal/aqi"
)

// Gateway errors.
var (
	// ErrInvalidCoordinates is returned for non-finite or out-of-range lat/lon.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidUpstreamResponse is returned when the provider answers 2xx
	// with an empty or malformed body. Treated as retryable.
	ErrInvalidUpstreamResponse = errors.New("invalid upstream response")
)

// UpstreamError is returned after the retry budget is exhausted.
// It carries the attempt count and the last underlying cause.
type UpstreamError struct {
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream provider unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Location is a geographic point.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Reading is one raw observation from the upstream provider: the vendor's
// 1-5 index plus pollutant concentrations, before conversion.
type Reading struct {
	SourceAQI  int
	Components aqi.Concentrations
	ObservedAt time.Time
}

// Observation is a converted current-conditions observation.
type Observation struct {
	// Timestamp is the observation time in epoch milliseconds.
	Timestamp  int64              `json:"timestamp"`
	Result     aqi.Result         `json:"result"`
	Components aqi.Concentrations `json:"components"`
	Location   Location           `json:"location"`
}

// ForecastPoint is one converted hourly forecast entry.
type ForecastPoint struct {
	Timestamp  int64              `json:"timestamp"`
	Result     aqi.Result         `json:"result"`
	Components aqi.Concentrations `json:"components"`
}

// Component is a named, unit-annotated pollutant value for the
// components endpoint.
type Component struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Name  string  `json:"name"`
}

// componentNames maps JSON field keys to display names.
var componentNames = map[string]string{
	"co":    "Carbon Monoxide",
	"no":    "Nitric Oxide",
	"no2":   "Nitrogen Dioxide",
	"o3":    "Ozone",
	"so2":   "Sulphur Dioxide",
	"pm2_5": "Fine Particulate Matter",
	"pm10":  "Coarse Particulate Matter",
	"nh3":   "Ammonia",
}

// ComponentMap annotates raw concentrations with units and display names.
func ComponentMap(c aqi.Concentrations) map[string]Component {
	values := map[string]float64{
		"co":    c.CO,
		"no":    c.NO,
		"no2":   c.NO2,
		"o3":    c.O3,
		"so2":   c.SO2,
		"pm2_5": c.PM25,
		"pm10":  c.PM10,
		"nh3":   c.NH3,
	}

	out := make(map[string]Component, len(values))
	for key, v := range values {
		out[key] = Component{
			Value: v,
			Unit:  "μg/m³",
			Name:  componentNames[key],
		}
	}
	return out
}
