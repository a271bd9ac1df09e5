package control

import (
	"context"
	"errors"
	"strings"

	"github.com/mabino/atmo/pkg/device"
)

// PowerResult is the outcome of a power action. Power is set for on/off,
// State for status.
type PowerResult struct {
	Power string
	State device.PowerState
}

// ApplyPower performs a power action ("on", "off" or "status", any case).
func ApplyPower(ctx context.Context, h device.Handle, action string) (PowerResult, error) {
	power := h.Power()

	switch strings.ToLower(action) {
	case "on":
		if power == nil {
			return PowerResult{}, newError(ErrPowerUnsupported, "power control not supported")
		}
		if err := power.TurnOn(ctx); err != nil {
			return PowerResult{}, wrap(err)
		}
		return PowerResult{Power: "on"}, nil
	case "off":
		if power == nil {
			return PowerResult{}, newError(ErrPowerUnsupported, "power control not supported")
		}
		if err := power.TurnOff(ctx); err != nil {
			return PowerResult{}, wrap(err)
		}
		return PowerResult{Power: "off"}, nil
	case "status":
		if power == nil {
			return PowerResult{}, newError(ErrPowerUnsupported, "power state not supported")
		}
		state, err := ResolvePowerState(ctx, power.PowerState())
		if err != nil {
			return PowerResult{}, err
		}
		return PowerResult{State: state}, nil
	default:
		return PowerResult{}, newError(ErrUnknownPowerAction, "unknown power action: %s", action)
	}
}

// ResolvePowerState reduces any PowerStateSource shape to a concrete state.
// A nil source, or a nil callable, means the accessor is absent.
func ResolvePowerState(ctx context.Context, src device.PowerStateSource) (device.PowerState, error) {
	switch s := src.(type) {
	case device.PowerStateValue:
		return device.PowerState(s), nil
	case device.PendingPowerState:
		return await(ctx, s)
	case device.PowerStateFunc:
		if s == nil {
			break
		}
		state, err := s()
		return state, wrap(err)
	case device.AsyncPowerStateFunc:
		if s == nil {
			break
		}
		return await(ctx, s())
	}
	return device.PowerUnknown, newError(ErrPowerUnsupported, "power state not supported")
}

func await(ctx context.Context, pending device.PendingPowerState) (device.PowerState, error) {
	if pending == nil {
		return device.PowerUnknown, newError(ErrPowerUnsupported, "power state not supported")
	}
	select {
	case <-ctx.Done():
		return device.PowerUnknown, ctx.Err()
	case r, ok := <-pending:
		if !ok {
			return device.PowerUnknown, wrap(errors.New("power state read ended without a result"))
		}
		return r.State, wrap(r.Err)
	}
}
