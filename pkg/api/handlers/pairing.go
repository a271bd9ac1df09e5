package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mabino/atmo/pkg/api/types"
	"github.com/mabino/atmo/pkg/bridge"
	"github.com/mabino/atmo/pkg/device/schema"
	"github.com/mabino/atmo/pkg/pairing"
)

// PairingHandler handles pairing endpoints
type PairingHandler struct {
	bridge    *bridge.Bridge
	validator *schema.Validator
}

// NewPairingHandler creates a new pairing handler
func NewPairingHandler(b *bridge.Bridge, validator *schema.Validator) *PairingHandler {
	return &PairingHandler{bridge: b, validator: validator}
}

// Pair handles POST /devices/:id/pairing
// @Summary      Pair a protocol
// @Description  Runs a pairing handshake. Without a PIN the response may be pin_required; retry with the PIN.
// @Tags         pairing
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Device identifier, name or address"
// @Param        request  body      types.PairRequest  true  "Protocol and optional PIN"
// @Success      200      {object}  pairing.Paired
// @Success      202      {object}  pairing.PinRequired
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      422      {object}  types.ErrorResponse  "Pairing failed"
// @Router       /devices/{id}/pairing [post]
func (h *PairingHandler) Pair(c *gin.Context) {
	var req types.PairRequest
	if !bindValidated(c, h.validator, schema.PairRequest, &req) {
		return
	}

	controller := h.bridge.Pairing()
	if req.DisplayName != "" {
		controller.DisplayName = req.DisplayName
	}

	outcome, err := controller.Pair(c.Request.Context(), pairing.Request{
		Identifier: c.Param("id"),
		Protocol:   req.Protocol,
		PIN:        req.PIN,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if _, ok := outcome.(*pairing.PinRequired); ok {
		c.JSON(http.StatusAccepted, outcome)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Unpair handles DELETE /devices/:id/pairing/:protocol
// @Summary      Remove stored credentials
// @Description  Clears the stored credentials of one protocol. Status is noop when nothing was stored.
// @Tags         pairing
// @Produce      json
// @Param        id        path      string  true  "Device identifier, name or address"
// @Param        protocol  path      string  true  "Protocol name"
// @Success      200       {object}  pairing.Unpaired
// @Failure      400       {object}  types.ErrorResponse  "Unknown protocol"
// @Failure      404       {object}  types.ErrorResponse  "Device not found"
// @Failure      503       {object}  types.ErrorResponse  "Storage disabled"
// @Router       /devices/{id}/pairing/{protocol} [delete]
func (h *PairingHandler) Unpair(c *gin.Context) {
	result, err := h.bridge.Pairing().Unpair(c.Request.Context(), pairing.Request{
		Identifier: c.Param("id"),
		Protocol:   c.Param("protocol"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
