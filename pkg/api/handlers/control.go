package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mabino/atmo/pkg/api/types"
	"github.com/mabino/atmo/pkg/bridge"
	"github.com/mabino/atmo/pkg/device/schema"
)

// ControlHandler handles remote-control and power endpoints
type ControlHandler struct {
	bridge    *bridge.Bridge
	validator *schema.Validator
}

// NewControlHandler creates a new control handler
func NewControlHandler(b *bridge.Bridge, validator *schema.Validator) *ControlHandler {
	return &ControlHandler{bridge: b, validator: validator}
}

// SendCommand handles POST /devices/:id/command
// @Summary      Send a remote command
// @Description  Connects to the device, sends one remote-control command and disconnects
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Device identifier, name or address"
// @Param        request  body      types.CommandRequest  true  "Command to send"
// @Success      200      {object}  bridge.CommandResult
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      502      {object}  types.ErrorResponse  "Device error"
// @Router       /devices/{id}/command [post]
func (h *ControlHandler) SendCommand(c *gin.Context) {
	var req types.CommandRequest
	if !bindValidated(c, h.validator, schema.CommandRequest, &req) {
		return
	}

	result, err := h.bridge.Command(c.Request.Context(), c.Param("id"), req.Command, req.Action)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Power handles POST /devices/:id/power
// @Summary      Power on, off or read power state
// @Description  Connects to the device, performs one power action and disconnects
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Device identifier, name or address"
// @Param        request  body      types.PowerRequest  true  "Power action"
// @Success      200      {object}  bridge.PowerResult
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      501      {object}  types.ErrorResponse  "Power state not supported"
// @Failure      502      {object}  types.ErrorResponse  "Device error"
// @Router       /devices/{id}/power [post]
func (h *ControlHandler) Power(c *gin.Context) {
	var req types.PowerRequest
	if !bindValidated(c, h.validator, schema.PowerRequest, &req) {
		return
	}

	result, err := h.bridge.Power(c.Request.Context(), c.Param("id"), req.Action)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
