package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mabino/atmo/pkg/api/types"
	"github.com/mabino/atmo/pkg/bridge"
	"github.com/mabino/atmo/pkg/device"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	bridge *bridge.Bridge
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(b *bridge.Bridge) *HealthHandler {
	return &HealthHandler{bridge: b}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health status of the API and device backend
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "No device backend available"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	backendStatus := "available"
	if _, ok := h.bridge.Backend.(*device.NullBackend); ok {
		backendStatus = "unavailable"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if backendStatus != "available" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:    status,
		Backend:   backendStatus,
		Storage:   h.bridge.Store != nil,
		Mock:      h.bridge.Mock,
		Timestamp: time.Now(),
	})
}
