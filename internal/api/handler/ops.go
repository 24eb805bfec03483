package handler

import (
	"net/http"
	"time"

	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. A nil registry falls back to the
// global provider registry.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	if registry == nil {
		registry = resilience.GlobalRegistry
	}
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /api/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /api/status - upstream provider circuit status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	overall := models.HealthStatusOK

	providers := make([]models.ProviderStatus, 0, h.registry.ProviderCount())
	for _, health := range h.registry.GetAllHealth() {
		status := models.HealthStatusOK
		if !health.IsHealthy() {
			status = models.HealthStatusDegraded
			overall = models.HealthStatusDegraded
		}
		providers = append(providers, models.ProviderStatus{
			Provider:      health.Name,
			Status:        status,
			CircuitState:  health.CircuitState.String(),
			LastSuccessAt: health.LastSuccessAt,
			LastFailureAt: health.LastFailureAt,
			LastError:     health.LastError,
		})
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:    overall,
		Time:      time.Now(),
		Providers: providers,
	})
}
