package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mabino/atmo/pkg/bridge"
	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/device/schema"
	"github.com/mabino/atmo/pkg/discovery"
	"github.com/mabino/atmo/pkg/storage"
)

func newTestServer() (*Server, *device.MockBackend) {
	backend := device.NewMockBackend()
	b := &bridge.Bridge{
		Scanner: discovery.NewMockScanner(),
		Backend: backend,
		Store:   storage.NewMemory(),
		Mock:    true,
	}
	return NewServer(b, schema.NewValidator()), backend
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func decode(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestGetHealth(t *testing.T) {
	s, _ := newTestServer()
	res, err := s.handleGetHealth(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	out := decode(t, res)
	if out["status"] != "healthy" || out["storage"] != true {
		t.Errorf("unexpected health %v", out)
	}
}

func TestScanDevices(t *testing.T) {
	s, _ := newTestServer()
	res, err := s.handleScanDevices(context.Background(), callRequest(map[string]any{"timeout": float64(1)}))
	if err != nil {
		t.Fatal(err)
	}
	out := decode(t, res)
	if out["count"] != float64(1) {
		t.Errorf("expected one device, got %v", out)
	}
}

func TestScanDevices_UnknownProtocol(t *testing.T) {
	s, _ := newTestServer()
	res, _ := s.handleScanDevices(context.Background(), callRequest(map[string]any{"protocol": "Telnet"}))
	if !res.IsError {
		t.Error("expected tool error")
	}
}

func TestSendCommand_PlayPauseFallback(t *testing.T) {
	s, backend := newTestServer()
	res, err := s.handleSendCommand(context.Background(), callRequest(map[string]any{
		"id":      "Living Room",
		"command": "play_pause",
	}))
	if err != nil {
		t.Fatal(err)
	}
	out := decode(t, res)
	if out["status"] != "ok" || out["action"] != "SingleTap" {
		t.Errorf("unexpected result %v", out)
	}

	presses := backend.Presses("11223344-5566-7788-9900-112233445566")
	if len(presses) != 1 || presses[0] != "play" {
		t.Errorf("expected fallback play, got %v", presses)
	}
}

func TestSendCommand_Invalid(t *testing.T) {
	s, _ := newTestServer()
	tests := []map[string]any{
		{"command": "up"},
		{"id": "Living Room"},
		{"id": "Living Room", "command": "up", "action": "Tap"},
		{"id": "Living Room", "command": "rewind"},
		{"id": "Attic", "command": "up"},
	}
	for _, args := range tests {
		res, err := s.handleSendCommand(context.Background(), callRequest(args))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("%v: expected tool error, got %s", args, resultText(t, res))
		}
	}
}

func TestPower(t *testing.T) {
	s, _ := newTestServer()
	ctx := context.Background()

	if res, _ := s.handlePower(ctx, callRequest(map[string]any{"id": "Living Room", "action": "on"})); res.IsError {
		t.Fatalf("unexpected error %s", resultText(t, res))
	}
	res, _ := s.handlePower(ctx, callRequest(map[string]any{"id": "Living Room", "action": "status"}))
	if out := decode(t, res); out["power_state"] != "On" {
		t.Errorf("expected On, got %v", out)
	}
}

func TestPairAndUnpair(t *testing.T) {
	s, _ := newTestServer()
	ctx := context.Background()

	res, _ := s.handlePairDevice(ctx, callRequest(map[string]any{"id": "Living Room", "protocol": "AirPlay"}))
	if out := decode(t, res); out["status"] != "pin_required" {
		t.Fatalf("expected pin_required, got %v", out)
	}

	res, _ = s.handlePairDevice(ctx, callRequest(map[string]any{"id": "Living Room", "protocol": "AirPlay", "pin": "5555"}))
	out := decode(t, res)
	if out["status"] != "paired" || !strings.HasSuffix(out["credentials"].(string), ":5555") {
		t.Fatalf("expected paired, got %v", out)
	}

	res, _ = s.handleUnpairDevice(ctx, callRequest(map[string]any{"id": "Living Room", "protocol": "AirPlay"}))
	if out := decode(t, res); out["status"] != "unpaired" || out["credentials_removed"] != true {
		t.Errorf("expected unpaired, got %v", out)
	}

	res, _ = s.handleUnpairDevice(ctx, callRequest(map[string]any{"id": "Living Room", "protocol": "AirPlay"}))
	if out := decode(t, res); out["status"] != "noop" {
		t.Errorf("expected noop, got %v", out)
	}
}
