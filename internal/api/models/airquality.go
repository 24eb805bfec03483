package models

import (
	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/aqi"
)

// CurrentAirQuality is the response body for GET /api/current.
type CurrentAirQuality struct {
	Timestamp      int64               `json:"timestamp"`
	AQI            int                 `json:"aqi"`
	OpenWeatherAQI int                 `json:"openWeatherAqi"`
	Level          aqi.Level           `json:"level"`
	Description    string              `json:"description"`
	Color          string              `json:"color"`
	Components     aqi.Concentrations  `json:"components"`
	Location       airquality.Location `json:"location"`
}

// NewCurrentAirQuality flattens an observation into the response shape.
func NewCurrentAirQuality(obs *airquality.Observation) CurrentAirQuality {
	return CurrentAirQuality{
		Timestamp:      obs.Timestamp,
		AQI:            obs.Result.AQI,
		OpenWeatherAQI: obs.Result.SourceAQI,
		Level:          obs.Result.Level,
		Description:    obs.Result.Description,
		Color:          obs.Result.Color,
		Components:     obs.Components,
		Location:       obs.Location,
	}
}

// ForecastEntry is one hourly point in the forecast response.
type ForecastEntry struct {
	Timestamp      int64              `json:"timestamp"`
	AQI            int                `json:"aqi"`
	OpenWeatherAQI int                `json:"openWeatherAqi"`
	Level          aqi.Level          `json:"level"`
	Color          string             `json:"color"`
	Components     aqi.Concentrations `json:"components"`
}

// Forecast is the response body for GET /api/forecast.
type Forecast struct {
	Forecast []ForecastEntry     `json:"forecast"`
	Location airquality.Location `json:"location"`
}

// NewForecast flattens forecast points into the response shape.
func NewForecast(points []airquality.ForecastPoint, loc airquality.Location) Forecast {
	entries := make([]ForecastEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, ForecastEntry{
			Timestamp:      p.Timestamp,
			AQI:            p.Result.AQI,
			OpenWeatherAQI: p.Result.SourceAQI,
			Level:          p.Result.Level,
			Color:          p.Result.Color,
			Components:     p.Components,
		})
	}
	return Forecast{Forecast: entries, Location: loc}
}

// StoreLocation is the optional location block in a store request.
type StoreLocation struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// StoreAirQualityRequest is the body for POST /api/store-air-quality.
// AQI, Level and Components are required.
type StoreAirQualityRequest struct {
	AQI        *int                `json:"aqi"`
	Level      string              `json:"level"`
	Components *aqi.Concentrations `json:"components"`
	Location   *StoreLocation      `json:"location,omitempty"`
}

// StoreAirQualityResponse acknowledges a stored observation.
type StoreAirQualityResponse struct {
	Success bool `json:"success"`
}
