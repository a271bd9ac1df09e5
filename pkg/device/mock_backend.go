package device

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// MockBackend simulates devices in memory. It keeps power and playback state
// per device identifier so consecutive connections observe earlier changes.
type MockBackend struct {
	mu      sync.Mutex
	devices map[string]*mockDevice
}

type mockDevice struct {
	power   PowerState
	state   DeviceState
	presses []string
}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{devices: make(map[string]*mockDevice)}
}

func (b *MockBackend) device(id string) *mockDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[id]
	if !ok {
		d = &mockDevice{power: PowerOff, state: StateIdle}
		b.devices[id] = d
	}
	return d
}

// Presses returns the remote presses recorded for a device, oldest first.
func (b *MockBackend) Presses(id string) []string {
	d := b.device(id)
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), d.presses...)
}

func (b *MockBackend) Connect(ctx context.Context, cfg Config) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debug().Str("identifier", cfg.Identifier).Msg("Mock device connected")
	return &mockHandle{backend: b, id: cfg.Identifier, dev: b.device(cfg.Identifier)}, nil
}

func (b *MockBackend) Pair(ctx context.Context, cfg Config, protocol Protocol, opts PairOptions) (Handshake, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &mockHandshake{
		identifier: cfg.Identifier,
		protocol:   protocol,
		// RAOP receivers accept a client-chosen PIN; the rest show one on screen.
		providesPIN: protocol == ProtocolRAOP,
	}, nil
}

type mockHandle struct {
	backend *MockBackend
	id      string
	dev     *mockDevice
	closed  bool
}

func (h *mockHandle) RemoteControl() RemoteControl { return (*mockRemote)(h) }
func (h *mockHandle) Power() Power                 { return (*mockPower)(h) }
func (h *mockHandle) Metadata() Metadata           { return (*mockMetadata)(h) }

func (h *mockHandle) Close() {
	h.closed = true
	log.Debug().Str("identifier", h.id).Msg("Mock device closed")
}

func (h *mockHandle) press(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.closed {
		return ErrConnectionLost
	}
	h.backend.mu.Lock()
	h.dev.presses = append(h.dev.presses, name)
	h.backend.mu.Unlock()
	return nil
}

type mockRemote mockHandle

func (r *mockRemote) h() *mockHandle { return (*mockHandle)(r) }

func (r *mockRemote) Up(ctx context.Context, a InputAction) error     { return r.h().press(ctx, "up") }
func (r *mockRemote) Down(ctx context.Context, a InputAction) error   { return r.h().press(ctx, "down") }
func (r *mockRemote) Left(ctx context.Context, a InputAction) error   { return r.h().press(ctx, "left") }
func (r *mockRemote) Right(ctx context.Context, a InputAction) error  { return r.h().press(ctx, "right") }
func (r *mockRemote) Select(ctx context.Context, a InputAction) error { return r.h().press(ctx, "select") }
func (r *mockRemote) Menu(ctx context.Context, a InputAction) error   { return r.h().press(ctx, "menu") }
func (r *mockRemote) Home(ctx context.Context, a InputAction) error   { return r.h().press(ctx, "home") }

// PlayPause is refused, like devices without a unified toggle, so callers
// exercise the metadata-driven fallback.
func (r *mockRemote) PlayPause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("play_pause: %w", ErrCommandRefused)
}

func (r *mockRemote) Play(ctx context.Context) error {
	if err := r.h().press(ctx, "play"); err != nil {
		return err
	}
	r.setState(StatePlaying)
	return nil
}

func (r *mockRemote) Pause(ctx context.Context) error {
	if err := r.h().press(ctx, "pause"); err != nil {
		return err
	}
	r.setState(StatePaused)
	return nil
}

func (r *mockRemote) setState(s DeviceState) {
	r.backend.mu.Lock()
	r.dev.state = s
	r.backend.mu.Unlock()
}

type mockPower mockHandle

func (p *mockPower) set(ctx context.Context, s PowerState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.backend.mu.Lock()
	p.dev.power = s
	p.backend.mu.Unlock()
	return nil
}

func (p *mockPower) TurnOn(ctx context.Context) error  { return p.set(ctx, PowerOn) }
func (p *mockPower) TurnOff(ctx context.Context) error { return p.set(ctx, PowerOff) }

func (p *mockPower) PowerState() PowerStateSource {
	return PowerStateFunc(func() (PowerState, error) {
		p.backend.mu.Lock()
		defer p.backend.mu.Unlock()
		return p.dev.power, nil
	})
}

type mockMetadata mockHandle

func (m *mockMetadata) Playing(ctx context.Context) (*Playing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()
	return &Playing{DeviceState: m.dev.state}, nil
}

type mockHandshake struct {
	identifier  string
	protocol    Protocol
	providesPIN bool
	pin         string
	begun       bool
	paired      bool
	credentials string
}

func (s *mockHandshake) Begin(ctx context.Context) error {
	s.begun = true
	return ctx.Err()
}

func (s *mockHandshake) DeviceProvidesPIN() bool { return s.providesPIN }

func (s *mockHandshake) SetPIN(pin string) { s.pin = pin }

func (s *mockHandshake) Finish(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.begun {
		return fmt.Errorf("finish before begin: %w", ErrPairing)
	}
	if s.pin == "" {
		return nil
	}
	s.paired = true
	s.credentials = fmt.Sprintf("mock:%s:%s:%s", strings.ToLower(string(s.protocol)), s.identifier, s.pin)
	return nil
}

func (s *mockHandshake) HasPaired() bool { return s.paired }

func (s *mockHandshake) Credentials() string { return s.credentials }

func (s *mockHandshake) Close(ctx context.Context) error { return nil }
