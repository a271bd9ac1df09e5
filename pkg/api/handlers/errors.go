package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mabino/atmo/pkg/api/types"
	"github.com/mabino/atmo/pkg/control"
	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/device/schema"
	"github.com/mabino/atmo/pkg/pairing"
)

// writeError maps a bridge error to a status code and an ErrorResponse.
func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, types.ErrorResponse{Error: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, device.ErrNotFound), errors.Is(err, pairing.ErrDeviceNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, schema.ErrInvalidPayload):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, control.ErrUnsupportedCommand),
		errors.Is(err, control.ErrUnknownInputAction),
		errors.Is(err, control.ErrUnknownPowerAction),
		errors.Is(err, pairing.ErrUnknownProtocol):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, control.ErrPowerUnsupported):
		return http.StatusNotImplemented, "not_supported"
	case errors.Is(err, pairing.ErrStorageUnavailable), errors.Is(err, device.ErrNotConnected):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, pairing.ErrHandshakeFailed), errors.Is(err, pairing.ErrPINAborted):
		return http.StatusUnprocessableEntity, "pairing_failed"
	case errors.Is(err, device.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}

	var ce *control.ControlError
	var pe *pairing.Error
	if errors.As(err, &ce) || errors.As(err, &pe) {
		return http.StatusBadGateway, "device_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

// bindValidated decodes the request body into dst after validating it
// against schemaDoc. An empty body is treated as an empty object.
func bindValidated(c *gin.Context, v *schema.Validator, schemaDoc json.RawMessage, dst any) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return false
	}

	if err := v.Validate(schemaDoc, payload); err != nil {
		writeError(c, err)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return false
	}
	return true
}
