// Package pairing drives pairing handshakes and removes stored credentials.
package pairing

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/session"
	"github.com/mabino/atmo/pkg/storage"
)

// DefaultPIN is answered when the device supplies the PIN itself.
const DefaultPIN = "1234"

// DefaultDisplayName is the client name shown on the device while pairing.
const DefaultDisplayName = "atmo"

const pinPrompt = "Enter the PIN for this device and retry."

// Resolver finds the device a selector refers to.
type Resolver interface {
	Resolve(ctx context.Context, selector string) (device.Config, error)
}

// Request names the device and protocol to pair. PIN is optional.
type Request struct {
	Identifier string
	Protocol   string
	PIN        string
}

// Controller pairs devices and persists the resulting credentials.
type Controller struct {
	Resolver Resolver
	Backend  device.Backend
	// Store is optional for pairing and required for Unpair.
	Store       storage.Store
	DisplayName string
}

// BeginState tells the caller what a begun session needs next.
type BeginState int

const (
	// StatePinRequired means SubmitPINAndFinish needs a PIN from the user.
	StatePinRequired BeginState = iota
	// StateReadyToFinish means SubmitPINAndFinish can run without input.
	StateReadyToFinish
)

func (s BeginState) String() string {
	if s == StatePinRequired {
		return "PinRequired"
	}
	return "ReadyToFinish"
}

// Session is one begun handshake. It must be closed exactly once; Close is
// idempotent and SubmitPINAndFinish closes it.
type Session struct {
	Config   device.Config
	Protocol device.Protocol

	handshake device.Handshake
	store     storage.Store
	state     BeginState
	pin       string

	closeOnce sync.Once
	closeErr  error
}

// State returns what the session needs next.
func (s *Session) State() BeginState {
	return s.state
}

// PinRequired returns the notification describing this session's PIN prompt.
func (s *Session) PinRequired() *PinRequired {
	return &PinRequired{
		Status:     statusPinRequired,
		Identifier: s.Config.Identifier,
		Protocol:   string(s.Protocol),
		Message:    pinPrompt,
	}
}

// Begin resolves the device, opens a handshake and starts it. On error no
// session is returned and nothing is left open.
func (c *Controller) Begin(ctx context.Context, req Request) (*Session, BeginState, error) {
	protocol, ok := device.ParseProtocol(req.Protocol)
	if !ok {
		return nil, StatePinRequired, newError(ErrUnknownProtocol, "unknown protocol: %s", req.Protocol)
	}

	cfg, err := c.Resolver.Resolve(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			return nil, StatePinRequired, &Error{Kind: ErrDeviceNotFound, Msg: "device not found", Err: err}
		}
		return nil, StatePinRequired, wrap(err)
	}

	name := c.DisplayName
	if name == "" {
		name = DefaultDisplayName
	}

	hs, err := c.Backend.Pair(ctx, cfg, protocol, device.PairOptions{Name: name})
	if err != nil {
		return nil, StatePinRequired, wrap(err)
	}

	s := &Session{Config: cfg, Protocol: protocol, handshake: hs, store: c.Store}

	if err := hs.Begin(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, StatePinRequired, wrap(err)
	}

	switch {
	case hs.DeviceProvidesPIN():
		s.pin = req.PIN
		if s.pin == "" {
			s.pin = DefaultPIN
		}
		s.state = StateReadyToFinish
	case req.PIN != "":
		s.pin = req.PIN
		s.state = StateReadyToFinish
	default:
		s.state = StatePinRequired
	}

	log.Debug().
		Str("identifier", cfg.Identifier).
		Str("protocol", string(protocol)).
		Stringer("state", s.state).
		Msg("Pairing begun")
	return s, s.state, nil
}

// SubmitPINAndFinish completes the handshake with pin, or with the PIN
// chosen by Begin when pin is empty, and stores the credentials. The session
// is closed when it returns.
func (s *Session) SubmitPINAndFinish(ctx context.Context, pin string) (*Paired, error) {
	defer s.Close(ctx)

	if pin == "" {
		pin = s.pin
	}
	if pin == "" {
		return nil, newError(ErrPINAborted, "pin entry aborted")
	}

	s.handshake.SetPIN(pin)
	if err := s.handshake.Finish(ctx); err != nil {
		return nil, wrap(err)
	}
	if !s.handshake.HasPaired() {
		return nil, newError(ErrHandshakeFailed, "pairing failed")
	}

	credentials := s.handshake.Credentials()
	saved := false
	if s.store != nil {
		settings, err := s.store.Settings(ctx, s.Config)
		if err != nil {
			return nil, wrap(err)
		}
		settings.SetCredentials(s.Protocol, credentials)
		if err := s.store.Save(ctx); err != nil {
			return nil, wrap(err)
		}
		saved = true
	}

	log.Info().
		Str("identifier", s.Config.Identifier).
		Str("protocol", string(s.Protocol)).
		Bool("credentials_saved", saved).
		Msg("Device paired")

	return &Paired{
		Status:           statusPaired,
		Identifier:       s.Config.Identifier,
		Protocol:         string(s.Protocol),
		CredentialsSaved: saved,
		Credentials:      credentials,
	}, nil
}

// Close closes the handshake. Only the first call has any effect.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.handshake.Close(ctx)
		if s.closeErr != nil {
			log.Warn().Err(s.closeErr).Str("identifier", s.Config.Identifier).Msg("Failed to close pairing handshake")
		}
	})
	return s.closeErr
}

// Pair runs a non-interactive pairing. Without a PIN, and when the device
// does not supply one, it returns PinRequired and the caller retries with
// the PIN.
func (c *Controller) Pair(ctx context.Context, req Request) (Outcome, error) {
	s, state, err := c.Begin(ctx, req)
	if err != nil {
		return nil, err
	}

	if state == StatePinRequired {
		defer s.Close(ctx)
		return s.PinRequired(), nil
	}
	return s.SubmitPINAndFinish(ctx, "")
}

// PairInteractive runs a pairing that may stop for a PIN. When one is needed
// a PinRequired notification is sent and exactly one line is read from pins.
// The Paired notification is sent on success.
func (c *Controller) PairInteractive(ctx context.Context, req Request, pins *bufio.Reader, notify func(any) error) (*Paired, error) {
	s, state, err := c.Begin(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.Close(ctx)

	pin := ""
	if state == StatePinRequired {
		if err := notify(s.PinRequired()); err != nil {
			return nil, wrap(err)
		}
		pin, err = readPIN(ctx, pins)
		if err != nil {
			return nil, err
		}
		if pin == "" {
			return nil, newError(ErrPINAborted, "pin entry aborted")
		}
	}

	paired, err := s.SubmitPINAndFinish(ctx, pin)
	if err != nil {
		return nil, err
	}
	if err := notify(paired); err != nil {
		return nil, wrap(err)
	}
	return paired, nil
}

// readPIN reads one line and returns it trimmed, or "" on end of input.
// Only a done ctx is reported as an error.
func readPIN(ctx context.Context, r *bufio.Reader) (string, error) {
	line, err := session.ReadLine(ctx, r)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", nil
	}
	return strings.TrimSpace(string(line)), nil
}

// Unpair removes the stored credentials of one protocol. It saves only when
// something was removed.
func (c *Controller) Unpair(ctx context.Context, req Request) (*Unpaired, error) {
	if c.Store == nil {
		return nil, newError(ErrStorageUnavailable, "storage is required to unpair")
	}

	protocol, ok := device.ParseProtocol(req.Protocol)
	if !ok {
		return nil, newError(ErrUnknownProtocol, "unknown protocol: %s", req.Protocol)
	}

	cfg, err := c.Resolver.Resolve(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			return nil, &Error{Kind: ErrDeviceNotFound, Msg: "device not found", Err: err}
		}
		return nil, wrap(err)
	}

	settings, err := c.Store.Settings(ctx, cfg)
	if err != nil {
		return nil, wrap(err)
	}

	if !settings.Clear(protocol) {
		return &Unpaired{
			Status:     statusNoop,
			Identifier: cfg.Identifier,
			Protocol:   string(protocol),
		}, nil
	}

	if err := c.Store.Save(ctx); err != nil {
		return nil, wrap(err)
	}

	log.Info().Str("identifier", cfg.Identifier).Str("protocol", string(protocol)).Msg("Credentials removed")
	return &Unpaired{
		Status:             statusUnpaired,
		Identifier:         cfg.Identifier,
		Protocol:           string(protocol),
		CredentialsRemoved: true,
	}, nil
}
