package control

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/device/devicetest"
)

func TestDispatch_DirectionalCommands(t *testing.T) {
	for _, name := range []string{"home", "menu", "select", "up", "down", "left", "right"} {
		t.Run(name, func(t *testing.T) {
			h := &devicetest.Handle{}
			if err := Dispatch(context.Background(), h, name, device.DoubleTap); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			calls := h.Calls()
			if len(calls) != 1 {
				t.Fatalf("expected 1 call, got %v", calls)
			}
			if calls[0].Name != name || calls[0].Action != device.DoubleTap {
				t.Errorf("expected %s/DoubleTap, got %s/%s", name, calls[0].Name, calls[0].Action)
			}
		})
	}
}

func TestDispatch_CaseInsensitive(t *testing.T) {
	h := &devicetest.Handle{}
	if err := Dispatch(context.Background(), h, "MeNu", device.Hold); err != nil {
		t.Fatal(err)
	}
	if calls := h.Calls(); len(calls) != 1 || calls[0].Name != "menu" {
		t.Errorf("expected one menu call, got %v", calls)
	}
}

func TestDispatch_Unsupported(t *testing.T) {
	h := &devicetest.Handle{}
	err := Dispatch(context.Background(), h, "rewind", device.SingleTap)

	var ce *ControlError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ControlError, got %v", err)
	}
	if !errors.Is(err, ErrUnsupportedCommand) {
		t.Errorf("expected ErrUnsupportedCommand, got %v", err)
	}
	if err.Error() != "unsupported command: rewind" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if len(h.Calls()) != 0 {
		t.Errorf("expected no calls, got %v", h.Calls())
	}
}

func TestDispatch_PlayPauseToggle(t *testing.T) {
	h := &devicetest.Handle{}
	if err := Dispatch(context.Background(), h, "playpause", device.SingleTap); err != nil {
		t.Fatal(err)
	}
	if calls := h.Calls(); len(calls) != 1 || calls[0].Name != "play_pause" {
		t.Errorf("expected only the toggle, got %v", calls)
	}
}

func TestDispatch_PlayPauseFallback(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		state  device.DeviceState
		expect string
	}{
		{"refused while playing", device.ErrCommandRefused, device.StatePlaying, "pause"},
		{"refused while paused", device.ErrCommandRefused, device.StatePaused, "play"},
		{"unsupported while playing", device.ErrNotSupported, device.StatePlaying, "pause"},
		{"unsupported while idle", device.ErrNotSupported, device.StateIdle, "play"},
		{"unsupported with no state", device.ErrNotSupported, "", "play"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &devicetest.Handle{
				PlayPauseErr: fmt.Errorf("toggle: %w", tt.cause),
				State:        tt.state,
			}
			if err := Dispatch(context.Background(), h, "play_pause", device.SingleTap); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var fallback []string
			for _, c := range h.Calls() {
				if c.Name != "play_pause" {
					fallback = append(fallback, c.Name)
				}
			}
			if len(fallback) != 1 || fallback[0] != tt.expect {
				t.Errorf("expected exactly one %s, got %v", tt.expect, fallback)
			}
		})
	}
}

func TestDispatch_PlayPauseWithoutMetadata(t *testing.T) {
	h := &devicetest.Handle{
		PlayPauseErr: fmt.Errorf("toggle refused: %w", device.ErrCommandRefused),
		NoMetadata:   true,
	}
	err := Dispatch(context.Background(), h, "play_pause", device.SingleTap)

	var ce *ControlError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ControlError, got %v", err)
	}
	if ce.Error() != "toggle refused: command refused by device" {
		t.Errorf("expected original failure, got %q", ce.Error())
	}
	if calls := h.Calls(); len(calls) != 1 {
		t.Errorf("expected no fallback call, got %v", calls)
	}
}

func TestDispatch_PlayPauseMetadataError(t *testing.T) {
	h := &devicetest.Handle{
		PlayPauseErr: device.ErrNotSupported,
		MetadataErr:  errors.New("metadata unavailable"),
	}
	err := Dispatch(context.Background(), h, "play_pause", device.SingleTap)
	if !errors.Is(err, device.ErrNotSupported) {
		t.Errorf("expected original failure, got %v", err)
	}
	if calls := h.Calls(); len(calls) != 1 {
		t.Errorf("expected no fallback call, got %v", calls)
	}
}

func TestDispatch_PlayPauseOtherErrorSkipsFallback(t *testing.T) {
	h := &devicetest.Handle{
		PlayPauseErr: errors.New("socket hiccup"),
		State:        device.StatePlaying,
	}
	err := Dispatch(context.Background(), h, "play_pause", device.SingleTap)

	var ce *ControlError
	if !errors.As(err, &ce) || ce.Error() != "socket hiccup" {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if calls := h.Calls(); len(calls) != 1 {
		t.Errorf("expected no fallback call, got %v", calls)
	}
}

func TestDispatch_BackendErrorWrapped(t *testing.T) {
	h := &devicetest.Handle{Err: errors.New("device busy")}
	err := Dispatch(context.Background(), h, "up", device.SingleTap)

	var ce *ControlError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ControlError, got %v", err)
	}
	if ce.Error() != "device busy" {
		t.Errorf("expected backend message, got %q", ce.Error())
	}
	if IsFatal(err) {
		t.Error("expected non-fatal error")
	}
}

func TestDispatch_ConnectionLostIsFatal(t *testing.T) {
	h := &devicetest.Handle{Err: device.ErrConnectionLost}
	err := Dispatch(context.Background(), h, "select", device.SingleTap)

	var ce *ControlError
	if errors.As(err, &ce) {
		t.Fatalf("expected unwrapped error, got ControlError %v", err)
	}
	if !IsFatal(err) {
		t.Errorf("expected fatal error, got %v", err)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    device.InputAction
		wantErr bool
	}{
		{"", device.SingleTap, false},
		{"SingleTap", device.SingleTap, false},
		{"DoubleTap", device.DoubleTap, false},
		{"Hold", device.Hold, false},
		{"hold", device.SingleTap, true},
		{"Tap", device.SingleTap, true},
	}

	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAction(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrUnknownInputAction) {
				t.Errorf("ParseAction(%q) expected ErrUnknownInputAction, got %v", tt.in, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAction(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
