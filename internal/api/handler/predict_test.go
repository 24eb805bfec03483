package handler_test

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/predict"
)

func newPredictHandler() *handler.PredictHandler {
	return handler.NewPredictHandler(predict.NewGenerator(rand.NewSource(42)))
}

func TestPredictAirQuality_GetDefaults(t *testing.T) {
	h := newPredictHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/predict/air-quality", http.NoBody)
	rec := httptest.NewRecorder()

	h.AirQuality(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		BaseAQI    int             `json:"baseAqi"`
		Prediction []predict.Point `json:"prediction"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 50, body.BaseAQI)
	assert.Len(t, body.Prediction, predict.DefaultHours)
}

func TestPredictAirQuality_PostBody(t *testing.T) {
	h := newPredictHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/predict/air-quality",
		strings.NewReader(`{"aqi": 120, "hours": 6}`))
	rec := httptest.NewRecorder()

	h.AirQuality(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		BaseAQI    int             `json:"baseAqi"`
		Prediction []predict.Point `json:"prediction"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 120, body.BaseAQI)
	assert.Len(t, body.Prediction, 6)
}

func TestPredictAirQuality_InvalidAQIParam(t *testing.T) {
	h := newPredictHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/predict/air-quality?aqi=abc", http.NoBody)
	rec := httptest.NewRecorder()

	h.AirQuality(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictAirQuality_NegativeAQIRejected(t *testing.T) {
	h := newPredictHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/predict/air-quality",
		strings.NewReader(`{"aqi": -5}`))
	rec := httptest.NewRecorder()

	h.AirQuality(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictElevation_GridShape(t *testing.T) {
	h := newPredictHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/predict/elevation?lat=37.7&lon=-122.4&size=5", http.NoBody)
	rec := httptest.NewRecorder()

	h.Elevation(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Size int                      `json:"size"`
		Grid []predict.ElevationPoint `json:"grid"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 5, body.Size)
	assert.Len(t, body.Grid, 25)
}

func TestPredictElevation_SizeBounds(t *testing.T) {
	h := newPredictHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/predict/elevation?size=100", http.NoBody)
	rec := httptest.NewRecorder()

	h.Elevation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
