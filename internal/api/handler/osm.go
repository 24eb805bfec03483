package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/osm"
)

// FeatureFetcher is the OSM client surface the handler needs.
type FeatureFetcher interface {
	GetFeatures(ctx context.Context, lat, lon float64, radius int) (*osm.FeatureCollection, error)
}

// OSMHandler handles the map feature endpoint.
type OSMHandler struct {
	client FeatureFetcher
}

// NewOSMHandler creates a new OSMHandler.
func NewOSMHandler(client FeatureFetcher) *OSMHandler {
	return &OSMHandler{client: client}
}

// Features handles GET /api/osm/features - green/industrial/traffic map
// features around the requested coordinates.
func (h *OSMHandler) Features(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	radius := 0
	if raw := r.URL.Query().Get("radius"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Validation(w, r, "radius must be a positive integer")
			return
		}
		radius = parsed
	}

	features, err := h.client.GetFeatures(r.Context(), lat, lon, radius)
	if err != nil {
		response.InternalError(w, r, "failed to fetch map features")
		return
	}

	response.JSON(w, r, http.StatusOK, features)
}
