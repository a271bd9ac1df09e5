package pairing

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceNotFound indicates the selector matched no device
	ErrDeviceNotFound = errors.New("device not found")

	// ErrUnknownProtocol indicates the request names an unsupported protocol
	ErrUnknownProtocol = errors.New("unknown protocol")

	// ErrPINAborted indicates interactive PIN entry produced no usable input
	ErrPINAborted = errors.New("pin entry aborted")

	// ErrHandshakeFailed indicates the device did not report a successful pairing
	ErrHandshakeFailed = errors.New("pairing failed")

	// ErrStorageUnavailable indicates an operation needs a credential store
	ErrStorageUnavailable = errors.New("storage is required to unpair")
)

// Error is a failed pairing or unpair operation. Kind is one of the
// sentinels above, or nil when the failure came from the backend or store.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Msg: err.Error(), Err: err}
}
