// Package devicetest provides recording fakes of the device capabilities for
// use in tests.
package devicetest

import (
	"context"
	"sync"

	"github.com/mabino/atmo/pkg/device"
)

// Call is one primitive invoked on a Handle.
type Call struct {
	Name   string
	Action device.InputAction
}

// Handle records every primitive invoked on it. Zero value is a device that
// accepts everything, reports Idle playback and powered-off state.
type Handle struct {
	mu    sync.Mutex
	calls []Call

	// Err is returned by every remote and power primitive when set.
	Err error
	// PlayPauseErr is returned by PlayPause when set.
	PlayPauseErr error

	State       device.DeviceState
	MetadataErr error
	PowerSource device.PowerStateSource

	NoRemote   bool
	NoPower    bool
	NoMetadata bool

	closed int
}

// Calls returns the recorded calls, oldest first.
func (h *Handle) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// Closed returns how many times Close was called.
func (h *Handle) Closed() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Handle) record(name string, action device.InputAction) error {
	h.mu.Lock()
	h.calls = append(h.calls, Call{Name: name, Action: action})
	h.mu.Unlock()
	return h.Err
}

func (h *Handle) RemoteControl() device.RemoteControl {
	if h.NoRemote {
		return nil
	}
	return (*remote)(h)
}

func (h *Handle) Power() device.Power {
	if h.NoPower {
		return nil
	}
	return (*power)(h)
}

func (h *Handle) Metadata() device.Metadata {
	if h.NoMetadata {
		return nil
	}
	return (*metadata)(h)
}

func (h *Handle) Close() {
	h.mu.Lock()
	h.closed++
	h.mu.Unlock()
}

type remote Handle

func (r *remote) Up(_ context.Context, a device.InputAction) error {
	return (*Handle)(r).record("up", a)
}

func (r *remote) Down(_ context.Context, a device.InputAction) error {
	return (*Handle)(r).record("down", a)
}

func (r *remote) Left(_ context.Context, a device.InputAction) error {
	return (*Handle)(r).record("left", a)
}

func (r *remote) Right(_ context.Context, a device.InputAction) error {
	return (*Handle)(r).record("right", a)
}

func (r *remote) Select(_ context.Context, a device.InputAction) error {
	return (*Handle)(r).record("select", a)
}

func (r *remote) Menu(_ context.Context, a device.InputAction) error {
	return (*Handle)(r).record("menu", a)
}

func (r *remote) Home(_ context.Context, a device.InputAction) error {
	return (*Handle)(r).record("home", a)
}

func (r *remote) PlayPause(_ context.Context) error {
	if err := (*Handle)(r).record("play_pause", device.SingleTap); err != nil {
		return err
	}
	return r.PlayPauseErr
}

func (r *remote) Play(_ context.Context) error {
	return (*Handle)(r).record("play", device.SingleTap)
}

func (r *remote) Pause(_ context.Context) error {
	return (*Handle)(r).record("pause", device.SingleTap)
}

type power Handle

func (p *power) TurnOn(_ context.Context) error {
	return (*Handle)(p).record("turn_on", device.SingleTap)
}

func (p *power) TurnOff(_ context.Context) error {
	return (*Handle)(p).record("turn_off", device.SingleTap)
}

func (p *power) PowerState() device.PowerStateSource {
	return p.PowerSource
}

type metadata Handle

func (m *metadata) Playing(_ context.Context) (*device.Playing, error) {
	if m.MetadataErr != nil {
		return nil, m.MetadataErr
	}
	return &device.Playing{DeviceState: m.State}, nil
}

// Handshake is a scripted pairing handshake. Finish succeeds with
// credentials "cred-<pin>" unless Reject or FinishErr is set.
type Handshake struct {
	mu sync.Mutex

	ProvidesPIN bool
	BeginErr    error
	FinishErr   error
	Reject      bool

	events      []string
	pin         string
	paired      bool
	credentials string
	closed      int
}

// Events returns the handshake steps in the order they happened.
func (s *Handshake) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// PIN returns the last PIN submitted.
func (s *Handshake) PIN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pin
}

// Closed returns how many times Close was called.
func (s *Handshake) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Handshake) event(name string) {
	s.mu.Lock()
	s.events = append(s.events, name)
	s.mu.Unlock()
}

func (s *Handshake) Begin(_ context.Context) error {
	s.event("begin")
	return s.BeginErr
}

func (s *Handshake) DeviceProvidesPIN() bool { return s.ProvidesPIN }

func (s *Handshake) SetPIN(pin string) {
	s.event("pin")
	s.mu.Lock()
	s.pin = pin
	s.mu.Unlock()
}

func (s *Handshake) Finish(_ context.Context) error {
	s.event("finish")
	if s.FinishErr != nil {
		return s.FinishErr
	}
	if s.Reject {
		return nil
	}
	s.mu.Lock()
	s.paired = true
	s.credentials = "cred-" + s.pin
	s.mu.Unlock()
	return nil
}

func (s *Handshake) HasPaired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paired
}

func (s *Handshake) Credentials() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credentials
}

func (s *Handshake) Close(_ context.Context) error {
	s.event("close")
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return nil
}

// Backend hands out a fixed Handle and Handshake.
type Backend struct {
	Handle     *Handle
	ConnectErr error

	Handshake *Handshake
	PairErr   error

	// Connected holds the configs passed to Connect.
	Connected []device.Config
	// Paired holds the protocols passed to Pair.
	Paired []device.Protocol
	// Options holds the options passed to Pair.
	Options []device.PairOptions
}

func (b *Backend) Connect(_ context.Context, cfg device.Config) (device.Handle, error) {
	b.Connected = append(b.Connected, cfg)
	if b.ConnectErr != nil {
		return nil, b.ConnectErr
	}
	if b.Handle == nil {
		b.Handle = &Handle{}
	}
	return b.Handle, nil
}

func (b *Backend) Pair(_ context.Context, _ device.Config, protocol device.Protocol, opts device.PairOptions) (device.Handshake, error) {
	b.Paired = append(b.Paired, protocol)
	b.Options = append(b.Options, opts)
	if b.PairErr != nil {
		return nil, b.PairErr
	}
	if b.Handshake == nil {
		b.Handshake = &Handshake{}
	}
	return b.Handshake, nil
}
