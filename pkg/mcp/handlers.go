package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/device/schema"
	"github.com/mabino/atmo/pkg/discovery"
	"github.com/mabino/atmo/pkg/pairing"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	backendStatus := "available"
	if _, ok := s.bridge.Backend.(*device.NullBackend); ok {
		backendStatus = "unavailable"
	}

	status := "healthy"
	if backendStatus != "available" {
		status = "degraded"
	}

	out := GetHealthOutput{
		Status:    status,
		Backend:   backendStatus,
		Storage:   s.bridge.Store != nil,
		Mock:      s.bridge.Mock,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleScanDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var opts discovery.Options
	args := request.GetArguments()

	if t, ok := args["timeout"].(float64); ok && t > 0 {
		opts.Timeout = time.Duration(t * float64(time.Second))
	}
	if p, ok := args["protocol"].(string); ok {
		protocol, err := discovery.ParseProtocol(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.Protocol = protocol
	}

	result, err := s.bridge.Scan(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %s", err)), nil
	}

	out := ScanDevicesOutput{
		Devices: result.Devices,
		Count:   len(result.Devices),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSendCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload := withoutKey(request.GetArguments(), "id")
	if err := s.validate(schema.CommandRequest, payload); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	command, _ := payload["command"].(string)
	action, _ := payload["action"].(string)

	result, err := s.bridge.Command(ctx, id, command, action)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

func (s *Server) handlePower(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload := withoutKey(request.GetArguments(), "id")
	if err := s.validate(schema.PowerRequest, payload); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action, _ := payload["action"].(string)

	result, err := s.bridge.Power(ctx, id, action)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

func (s *Server) handlePairDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload := withoutKey(request.GetArguments(), "id")
	if err := s.validate(schema.PairRequest, payload); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	protocol, _ := payload["protocol"].(string)
	pin, _ := payload["pin"].(string)

	outcome, err := s.bridge.Pairing().Pair(ctx, pairing.Request{
		Identifier: id,
		Protocol:   protocol,
		PIN:        pin,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJSON(outcome)), nil
}

func (s *Server) handleUnpairDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	protocol, err := requiredString(request, "protocol")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.bridge.Pairing().Unpair(ctx, pairing.Request{Identifier: id, Protocol: protocol})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// --- helpers ---

func (s *Server) validate(schemaDoc json.RawMessage, payload map[string]any) error {
	if s.validator == nil {
		return nil
	}
	if err := s.validator.Validate(schemaDoc, payload); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func withoutKey(args map[string]any, key string) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
