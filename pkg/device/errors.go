package device

import "errors"

var (
	// ErrNotFound indicates a device was not found
	ErrNotFound = errors.New("device not found")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrNotConnected indicates no device-control backend is available
	ErrNotConnected = errors.New("device backend not connected")

	// ErrNotSupported indicates a command is not supported by the device
	ErrNotSupported = errors.New("operation not supported")

	// ErrCommandRefused indicates the device rejected a command it otherwise supports
	ErrCommandRefused = errors.New("command refused by device")

	// ErrConnectionLost indicates the connection to the device is gone and the
	// handle can no longer be used
	ErrConnectionLost = errors.New("connection to device lost")

	// ErrPairing indicates the pairing handshake was rejected by the device
	ErrPairing = errors.New("pairing rejected")
)
