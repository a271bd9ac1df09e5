package device

import "context"

// RemoteControl exposes the remote-control primitives of a connected device.
type RemoteControl interface {
	Up(ctx context.Context, action InputAction) error
	Down(ctx context.Context, action InputAction) error
	Left(ctx context.Context, action InputAction) error
	Right(ctx context.Context, action InputAction) error
	Select(ctx context.Context, action InputAction) error
	Menu(ctx context.Context, action InputAction) error
	Home(ctx context.Context, action InputAction) error

	// PlayPause toggles playback. Devices without a unified toggle return
	// ErrNotSupported or ErrCommandRefused.
	PlayPause(ctx context.Context) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
}

// Power exposes the power capability of a connected device.
type Power interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error

	// PowerState returns how the backend exposes the current power state,
	// or nil when the backend cannot report it.
	PowerState() PowerStateSource
}

// Metadata exposes playback metadata of a connected device.
type Metadata interface {
	Playing(ctx context.Context) (*Playing, error)
}

// Handle is an open connection to one device. Capabilities the device does
// not offer are returned as nil.
type Handle interface {
	RemoteControl() RemoteControl
	Power() Power
	Metadata() Metadata

	// Close releases the connection. It is called exactly once by the owner.
	Close()
}

// Handshake mediates a single pairing attempt for one device and protocol.
// It is used by one caller and must be closed exactly once.
type Handshake interface {
	Begin(ctx context.Context) error

	// DeviceProvidesPIN reports whether the device supplies the PIN itself,
	// in which case the client answers with a fixed PIN and no user input is
	// needed. When false the PIN must come from the user.
	DeviceProvidesPIN() bool

	SetPIN(pin string)
	Finish(ctx context.Context) error

	// HasPaired reports whether Finish produced usable credentials.
	HasPaired() bool

	// Credentials returns the credentials negotiated by the handshake.
	Credentials() string

	Close(ctx context.Context) error
}

// PairOptions carries client-side settings for a pairing attempt.
type PairOptions struct {
	// Name is the client name presented to the device during pairing.
	Name string
}

// Backend connects to and pairs with devices. This abstraction keeps the
// session and pairing logic independent of the protocol implementation.
type Backend interface {
	// Connect opens a handle to the device described by cfg. Stored
	// credentials travel on cfg.Services.
	Connect(ctx context.Context, cfg Config) (Handle, error)

	// Pair opens a pairing handshake for one protocol of the device.
	Pair(ctx context.Context, cfg Config, protocol Protocol, opts PairOptions) (Handshake, error)
}
