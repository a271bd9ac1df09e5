// Package control maps remote-control and power requests onto a connected
// device handle.
package control

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mabino/atmo/pkg/device"
)

// Commands lists the command names accepted by Dispatch.
var Commands = []string{"home", "menu", "select", "up", "down", "left", "right", "play_pause"}

// ParseAction parses an input action name. An empty name means SingleTap.
func ParseAction(name string) (device.InputAction, error) {
	if name == "" {
		return device.SingleTap, nil
	}
	action, ok := device.ParseInputAction(name)
	if !ok {
		return device.SingleTap, newError(ErrUnknownInputAction, "unknown input action: %s", name)
	}
	return action, nil
}

// Dispatch sends one remote-control command to the device. The command name
// is matched case-insensitively. Failures are returned as *ControlError
// unless the connection itself is gone (see IsFatal).
func Dispatch(ctx context.Context, h device.Handle, command string, action device.InputAction) error {
	command = strings.ToLower(command)

	remote := h.RemoteControl()
	if remote == nil {
		return newError(ErrUnsupportedCommand, "unsupported command: %s", command)
	}

	var press func(context.Context, device.InputAction) error
	switch command {
	case "home":
		press = remote.Home
	case "menu":
		press = remote.Menu
	case "select":
		press = remote.Select
	case "up":
		press = remote.Up
	case "down":
		press = remote.Down
	case "left":
		press = remote.Left
	case "right":
		press = remote.Right
	case "play_pause", "playpause":
		return playPause(ctx, h, remote)
	default:
		return newError(ErrUnsupportedCommand, "unsupported command: %s", command)
	}

	return wrap(press(ctx, action))
}

// playPause uses the unified toggle when the device has one. A device that
// does not support or refuses the toggle gets an explicit play or pause
// chosen from its reported playback state.
func playPause(ctx context.Context, h device.Handle, remote device.RemoteControl) error {
	err := remote.PlayPause(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, device.ErrNotSupported) && !errors.Is(err, device.ErrCommandRefused) {
		return wrap(err)
	}

	msg := err.Error()
	if msg == "" {
		msg = "play/pause command failed"
	}

	metadata := h.Metadata()
	if metadata == nil {
		return &ControlError{Msg: msg, Err: err}
	}

	playing, merr := metadata.Playing(ctx)
	if merr != nil {
		if IsFatal(merr) {
			return merr
		}
		return &ControlError{Msg: msg, Err: err}
	}

	state := device.StateIdle
	if playing != nil && playing.DeviceState != "" {
		state = playing.DeviceState
	}

	log.Debug().Str("device_state", string(state)).Err(err).Msg("Play/pause toggle unavailable, falling back")

	if state == device.StatePlaying {
		return wrap(remote.Pause(ctx))
	}
	return wrap(remote.Play(ctx))
}
