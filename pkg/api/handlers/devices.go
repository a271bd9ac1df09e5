package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mabino/atmo/pkg/api/types"
	"github.com/mabino/atmo/pkg/bridge"
	"github.com/mabino/atmo/pkg/discovery"
)

// DevicesHandler handles device discovery endpoints
type DevicesHandler struct {
	bridge *bridge.Bridge
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(b *bridge.Bridge) *DevicesHandler {
	return &DevicesHandler{bridge: b}
}

// ListDevices handles GET /devices
// @Summary      Scan for devices
// @Description  Scans the local network and returns every device found
// @Tags         devices
// @Produce      json
// @Param        timeout     query     number  false  "Scan timeout in seconds (default 5)"
// @Param        protocol    query     string  false  "Only devices offering this protocol"
// @Param        identifier  query     string  false  "Only the device with this identifier"
// @Success      200  {object}  discovery.ScanResult
// @Failure      400  {object}  types.ErrorResponse  "Invalid query"
// @Failure      500  {object}  types.ErrorResponse  "Scan failed"
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	var opts discovery.Options

	if raw := c.Query("timeout"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil || seconds <= 0 || seconds > 60 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error:   "invalid_timeout",
				Message: "Timeout must be between 0 and 60 seconds",
			})
			return
		}
		opts.Timeout = time.Duration(seconds * float64(time.Second))
	}

	protocol, err := discovery.ParseProtocol(c.Query("protocol"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}
	opts.Protocol = protocol
	opts.Identifier = c.Query("identifier")

	result, err := h.bridge.Scan(c.Request.Context(), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
