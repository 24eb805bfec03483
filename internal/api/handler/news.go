package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/news"
)

// NewsProvider is the news service surface the handler needs.
type NewsProvider interface {
	GetAirQualityNews(ctx context.Context, location string, aqi int, level string) (*news.Summary, error)
}

// NewsHandler handles the news summary endpoint.
type NewsHandler struct {
	service NewsProvider
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(service NewsProvider) *NewsHandler {
	return &NewsHandler{service: service}
}

// AirQualityNews handles GET /api/news/air-quality - articles plus AI
// summary. Missing query params fall back to the latest stored observation
// inside the service.
func (h *NewsHandler) AirQualityNews(w http.ResponseWriter, r *http.Request) {
	if !requireCredential(w, r, "NEWSAPI_API_KEY") {
		return
	}
	if !requireCredential(w, r, "OPENAI_API_KEY") {
		return
	}

	query := r.URL.Query()
	location := query.Get("location")
	level := query.Get("level")

	aqiValue := 0
	if raw := query.Get("aqi"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Validation(w, r, "aqi must be an integer")
			return
		}
		aqiValue = parsed
	}

	summary, err := h.service.GetAirQualityNews(r.Context(), location, aqiValue, level)
	if err != nil {
		response.InternalError(w, r, "failed to fetch air quality news")
		return
	}

	response.JSON(w, r, http.StatusOK, summary)
}
