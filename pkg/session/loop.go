// Package session runs the line-delimited control protocol that keeps one
// device connection open across many command and power requests.
package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mabino/atmo/pkg/control"
	"github.com/mabino/atmo/pkg/device"
)

// State is the position of a Loop in its lifecycle.
type State int

const (
	StateReady State = iota
	StateProcessing
	StateClosed
)

// Loop services one device handle. It does not own the handle; the caller
// closes it after Run returns.
type Loop struct {
	Handle device.Handle
	In     *bufio.Reader
	Out    *Writer
	// Mock marks ok and closing responses as simulated.
	Mock   bool
	Logger zerolog.Logger

	state State
}

// State returns the current state.
func (l *Loop) State() State {
	return l.state
}

// Run reads messages until a close message, end of input, or a fatal
// failure. It reports whether the loop ended gracefully. A non-nil error is
// an input or output stream failure, or ctx.Err() once ctx is done.
func (l *Loop) Run(ctx context.Context) (graceful bool, err error) {
	l.state = StateReady
	defer func() { l.state = StateClosed }()

	for {
		line, readErr := ReadLine(ctx, l.In)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if len(line) == 0 && readErr != nil {
			if errors.Is(readErr, io.EOF) {
				l.Logger.Debug().Msg("Session input closed")
				return true, nil
			}
			return false, readErr
		}

		l.state = StateProcessing
		cont, fatal, err := l.handle(ctx, bytes.TrimSpace(line))
		if err != nil {
			return false, err
		}
		if fatal {
			return false, nil
		}
		if !cont {
			return true, nil
		}

		if readErr != nil {
			// Final line had no trailing newline.
			if errors.Is(readErr, io.EOF) {
				return true, nil
			}
			return false, readErr
		}
	}
}

// handle processes one trimmed line. cont is false when the loop should
// stop; fatal marks a stop caused by a failure.
func (l *Loop) handle(ctx context.Context, line []byte) (cont, fatal bool, err error) {
	if len(line) == 0 {
		return true, false, nil
	}

	msg, perr := ParseMessage(line)
	if perr != nil {
		return true, false, l.Out.Write(Response{Status: StatusError, Error: "invalid json"})
	}

	switch msg.Type {
	case TypeCommand:
		return l.command(ctx, msg)
	case TypePower:
		return l.power(ctx, msg)
	case TypeClose:
		l.Logger.Debug().Msg("Session close requested")
		return false, false, l.Out.Write(Response{Status: StatusClosing, Mock: l.Mock})
	default:
		return true, false, l.Out.Write(Response{Status: StatusError, Error: "unknown message type"})
	}
}

func (l *Loop) command(ctx context.Context, msg Message) (bool, bool, error) {
	if msg.Command == "" {
		return true, false, l.Out.Write(Response{Status: StatusError, Type: TypeCommand, Error: "missing command"})
	}

	name := strings.ToLower(msg.Command)
	action, err := parseAction(msg)
	if err == nil {
		err = control.Dispatch(ctx, l.Handle, name, action)
	}

	if err != nil {
		resp := Response{Status: StatusError, Type: TypeCommand, Command: msg.Command, Error: err.Error()}
		if !isRequestError(err) {
			l.Logger.Error().Err(err).Str("command", name).Msg("Command failed, closing session")
			resp.Fatal = true
			return false, true, l.Out.Write(resp)
		}
		l.Logger.Debug().Err(err).Str("command", name).Msg("Command rejected")
		return true, false, l.Out.Write(resp)
	}

	l.Logger.Debug().Str("command", name).Str("action", action.String()).Msg("Command sent")
	return true, false, l.Out.Write(Response{
		Status:  StatusOK,
		Type:    TypeCommand,
		Command: name,
		Action:  action.String(),
		Mock:    l.Mock,
	})
}

func (l *Loop) power(ctx context.Context, msg Message) (bool, bool, error) {
	if msg.Action == "" {
		return true, false, l.Out.Write(Response{Status: StatusError, Type: TypePower, Error: "missing action"})
	}

	res, err := control.ApplyPower(ctx, l.Handle, msg.Action)
	if err != nil {
		resp := Response{Status: StatusError, Type: TypePower, Action: msg.Action, Error: err.Error()}
		if !isRequestError(err) {
			l.Logger.Error().Err(err).Str("action", msg.Action).Msg("Power request failed, closing session")
			resp.Fatal = true
			return false, true, l.Out.Write(resp)
		}
		return true, false, l.Out.Write(resp)
	}

	return true, false, l.Out.Write(Response{
		Status:     StatusOK,
		Type:       TypePower,
		Power:      res.Power,
		PowerState: string(res.State),
	})
}

// parseAction defaults to SingleTap only when the action field is absent.
func parseAction(msg Message) (device.InputAction, error) {
	if msg.HasAction && msg.Action == "" {
		return device.SingleTap, &control.ControlError{
			Kind: control.ErrUnknownInputAction,
			Msg:  "unknown input action: ",
		}
	}
	return control.ParseAction(msg.Action)
}

// isRequestError reports whether err leaves the connection usable.
func isRequestError(err error) bool {
	var ce *control.ControlError
	return errors.As(err, &ce)
}
