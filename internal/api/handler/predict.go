package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/aqi"
	"github.com/airsight/airsight/internal/predict"
)

// defaultPredictBase seeds the random walk when no base AQI is supplied.
const defaultPredictBase = 50

// PredictHandler handles the synthetic prediction endpoints.
type PredictHandler struct {
	generator *predict.Generator
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(generator *predict.Generator) *PredictHandler {
	return &PredictHandler{generator: generator}
}

type predictRequest struct {
	AQI   *int `json:"aqi"`
	Hours int  `json:"hours"`
}

// AirQuality handles GET|POST /api/predict/air-quality - a synthetic
// hourly AQI forecast seeded from the supplied base value.
func (h *PredictHandler) AirQuality(w http.ResponseWriter, r *http.Request) {
	base := defaultPredictBase
	hours := predict.DefaultHours

	switch r.Method {
	case http.MethodPost:
		var input predictRequest
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Validation(w, r, "invalid JSON body")
			return
		}
		if input.AQI != nil {
			base = *input.AQI
		}
		if input.Hours > 0 {
			hours = input.Hours
		}
	default:
		query := r.URL.Query()
		if raw := query.Get("aqi"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				response.Validation(w, r, "aqi must be an integer")
				return
			}
			base = parsed
		}
		if raw := query.Get("hours"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				response.Validation(w, r, "hours must be a positive integer")
				return
			}
			hours = parsed
		}
	}

	if base < 0 {
		response.Validation(w, r, "aqi must be non-negative")
		return
	}

	level, description, color := aqi.Categorize(base)
	points := h.generator.GenerateForecast(aqi.Result{
		AQI:         base,
		Level:       level,
		Description: description,
		Color:       color,
	}, hours)

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"baseAqi":    base,
		"prediction": points,
	})
}

// Elevation handles GET /api/predict/elevation - a synthetic elevation grid
// around the requested coordinates.
func (h *PredictHandler) Elevation(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	size := 10
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 50 {
			response.Validation(w, r, "size must be between 1 and 50")
			return
		}
		size = parsed
	}

	grid := h.generator.GenerateElevationGrid(lat, lon, size)

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"lat":  lat,
		"lon":  lon,
		"size": size,
		"grid": grid,
	})
}
