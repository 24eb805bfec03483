// Package handler provides HTTP handlers for the AirSight API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/aqi"
	"github.com/airsight/airsight/internal/config"
	"github.com/airsight/airsight/internal/observation"
)

// Default coordinates (San Francisco) when lat/lon are omitted.
const (
	DefaultLat = 37.7749
	DefaultLon = -122.4194
)

// Gateway is the air quality service surface the handler needs.
type Gateway interface {
	GetCurrent(ctx context.Context, lat, lon float64) (*airquality.Observation, error)
	GetComponents(ctx context.Context, lat, lon float64) (map[string]airquality.Component, error)
	GetForecast(ctx context.Context, lat, lon float64) ([]airquality.ForecastPoint, error)
}

// AirQualityHandler handles the air quality endpoints.
type AirQualityHandler struct {
	gateway Gateway
	store   observation.Repository
}

// NewAirQualityHandler creates a new AirQualityHandler.
func NewAirQualityHandler(gateway Gateway, store observation.Repository) *AirQualityHandler {
	return &AirQualityHandler{
		gateway: gateway,
		store:   store,
	}
}

// Current handles GET /api/current - converted current conditions.
func (h *AirQualityHandler) Current(w http.ResponseWriter, r *http.Request) {
	if !requireCredential(w, r, "OPENWEATHER_API_KEY") {
		return
	}

	lat, lon, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	obs, err := h.gateway.GetCurrent(r.Context(), lat, lon)
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewCurrentAirQuality(obs))
}

// Components handles GET /api/components - named pollutant concentrations.
func (h *AirQualityHandler) Components(w http.ResponseWriter, r *http.Request) {
	if !requireCredential(w, r, "OPENWEATHER_API_KEY") {
		return
	}

	lat, lon, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	components, err := h.gateway.GetComponents(r.Context(), lat, lon)
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, components)
}

// Forecast handles GET /api/forecast - converted hourly forecast.
func (h *AirQualityHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	if !requireCredential(w, r, "OPENWEATHER_API_KEY") {
		return
	}

	lat, lon, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	points, err := h.gateway.GetForecast(r.Context(), lat, lon)
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}

	loc := airquality.Location{Lat: lat, Lon: lon}
	response.JSON(w, r, http.StatusOK, models.NewForecast(points, loc))
}

// StoreAirQuality handles POST /api/store-air-quality - client-pushed
// observation. Validation failures leave the store untouched.
func (h *AirQualityHandler) StoreAirQuality(w http.ResponseWriter, r *http.Request) {
	var input models.StoreAirQualityRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Validation(w, r, "invalid JSON body")
		return
	}

	if input.AQI == nil || input.Level == "" || input.Components == nil {
		response.Validation(w, r, "aqi, level and components are required")
		return
	}

	// Level/color are rederived from the AQI value so a mismatched client
	// level can never make the stored record inconsistent.
	level, description, color := aqi.Categorize(*input.AQI)

	rec := observation.Record{
		Result: aqi.Result{
			AQI:         *input.AQI,
			Level:       level,
			Description: description,
			Color:       color,
		},
		Components: *input.Components,
		Lat:        DefaultLat,
		Lon:        DefaultLon,
		ObservedAt: time.Now(),
	}
	if input.Location != nil {
		rec.Lat = input.Location.Lat
		rec.Lon = input.Location.Lon
		rec.LocationName = input.Location.Name
	}

	if err := h.store.Store(r.Context(), rec); err != nil {
		response.InternalError(w, r, "failed to store observation")
		return
	}

	response.JSON(w, r, http.StatusOK, models.StoreAirQualityResponse{Success: true})
}

// parseCoordinates extracts lat/lon query parameters. Each omitted
// parameter falls back to its default independently, so ?lat=... alone is
// valid. Writes a 400 and returns false on malformed input.
func parseCoordinates(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	lat := DefaultLat
	lon := DefaultLon

	if latStr := r.URL.Query().Get("lat"); latStr != "" {
		parsed, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			response.InvalidCoordinates(w, r, "lat must be a number")
			return 0, 0, false
		}
		lat = parsed
	}

	if lonStr := r.URL.Query().Get("lon"); lonStr != "" {
		parsed, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			response.InvalidCoordinates(w, r, "lon must be a number")
			return 0, 0, false
		}
		lon = parsed
	}

	return lat, lon, true
}

// requireCredential writes a 500 naming the missing credential and returns
// false when the environment variable is unset.
func requireCredential(w http.ResponseWriter, r *http.Request, key string) bool {
	if _, err := config.Require(key); err != nil {
		response.MissingConfiguration(w, r, err.Error())
		return false
	}
	return true
}

// writeGatewayError maps gateway errors to HTTP responses.
func writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	var upstreamErr *airquality.UpstreamError

	switch {
	case errors.Is(err, airquality.ErrInvalidCoordinates):
		response.InvalidCoordinates(w, r, "lat must be within [-90, 90] and lon within [-180, 180]")
	case errors.As(err, &upstreamErr):
		response.UpstreamUnavailable(w, r, upstreamErr.Error())
	case errors.Is(err, aqi.ErrInvalidConcentration):
		response.UpstreamUnavailable(w, r, "upstream provider returned invalid concentration values")
	default:
		response.InternalError(w, r, "failed to fetch air quality data")
	}
}
