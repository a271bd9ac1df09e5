package control

import (
	"context"
	"errors"
	"fmt"

	"github.com/mabino/atmo/pkg/device"
)

var (
	// ErrUnsupportedCommand indicates a command name with no device primitive
	ErrUnsupportedCommand = errors.New("unsupported command")

	// ErrUnknownInputAction indicates an input action name that does not parse
	ErrUnknownInputAction = errors.New("unknown input action")

	// ErrUnknownPowerAction indicates a power action other than on, off or status
	ErrUnknownPowerAction = errors.New("unknown power action")

	// ErrPowerUnsupported indicates the device cannot report its power state
	ErrPowerUnsupported = errors.New("power state not supported")
)

// ControlError is a failed command or power operation that leaves the
// device connection usable. Kind is one of the sentinels above, or nil when
// the failure came from the backend; Err is the backend error, if any.
type ControlError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *ControlError) Error() string {
	return e.Msg
}

func (e *ControlError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, format string, args ...any) *ControlError {
	return &ControlError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err means the device connection can no longer be
// used: a lost connection or a cancelled context.
func IsFatal(err error) bool {
	return errors.Is(err, device.ErrConnectionLost) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// wrap converts a backend failure into a ControlError. Fatal errors are
// returned unchanged so callers can end the connection.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var ce *ControlError
	if errors.As(err, &ce) || IsFatal(err) {
		return err
	}
	return &ControlError{Msg: err.Error(), Err: err}
}
