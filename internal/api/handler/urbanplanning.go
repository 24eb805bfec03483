package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/recommend"
)

// Recommender is the recommendation service surface the handler needs.
type Recommender interface {
	GetRecommendations(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// UrbanPlanningHandler handles the urban planning recommendation endpoint.
type UrbanPlanningHandler struct {
	service Recommender
}

// NewUrbanPlanningHandler creates a new UrbanPlanningHandler.
func NewUrbanPlanningHandler(service Recommender) *UrbanPlanningHandler {
	return &UrbanPlanningHandler{service: service}
}

// Recommendations handles GET|POST /api/urban-planning/recommendations.
func (h *UrbanPlanningHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	if !requireCredential(w, r, "OPENROUTER_API_KEY") {
		return
	}

	var req recommend.Request

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Validation(w, r, "invalid JSON body")
			return
		}
	default:
		query := r.URL.Query()
		req.Location = query.Get("location")
		req.Level = query.Get("level")
		if raw := query.Get("aqi"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				response.Validation(w, r, "aqi must be an integer")
				return
			}
			req.AQI = parsed
		}
		if raw := query.Get("concerns"); raw != "" {
			req.Concerns = strings.Split(raw, ",")
		}
	}

	recs, err := h.service.GetRecommendations(r.Context(), req)
	if err != nil {
		response.InternalError(w, r, "failed to generate recommendations")
		return
	}

	response.JSON(w, r, http.StatusOK, recs)
}
