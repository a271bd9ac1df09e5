// Package bridge ties discovery, storage, pairing and device control
// together behind the operations exposed by the CLI, HTTP and MCP surfaces.
package bridge

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mabino/atmo/pkg/control"
	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/discovery"
	"github.com/mabino/atmo/pkg/pairing"
	"github.com/mabino/atmo/pkg/session"
	"github.com/mabino/atmo/pkg/storage"
)

// Bridge performs one-shot operations against devices.
type Bridge struct {
	Scanner discovery.Scanner
	Backend device.Backend
	// Store is nil when storage is disabled.
	Store       storage.Store
	DisplayName string
	ScanTimeout time.Duration
	Mock        bool
}

// CommandResult is the outcome of a one-shot remote command.
type CommandResult struct {
	Status     string `json:"status"`
	Identifier string `json:"identifier"`
	Command    string `json:"command"`
	Action     string `json:"action"`
	Mock       bool   `json:"mock,omitempty"`
}

// PowerResult is the outcome of a one-shot power action.
type PowerResult struct {
	Status     string `json:"status"`
	Identifier string `json:"identifier"`
	Power      string `json:"power,omitempty"`
	PowerState string `json:"power_state,omitempty"`
	Mock       bool   `json:"mock,omitempty"`
}

// Resolver returns the selector resolver used by every operation.
func (b *Bridge) Resolver() *discovery.Resolver {
	return &discovery.Resolver{Scanner: b.Scanner, Store: b.Store, Timeout: b.ScanTimeout}
}

// Pairing returns a pairing controller sharing this bridge's collaborators.
func (b *Bridge) Pairing() *pairing.Controller {
	return &pairing.Controller{
		Resolver:    b.Resolver(),
		Backend:     b.Backend,
		Store:       b.Store,
		DisplayName: b.DisplayName,
	}
}

// Scan discovers devices and returns the scan payload.
func (b *Bridge) Scan(ctx context.Context, opts discovery.Options) (discovery.ScanResult, error) {
	configs, err := discovery.Discover(ctx, b.Scanner, b.Store, opts)
	if err != nil {
		return discovery.ScanResult{}, err
	}
	log.Debug().Int("devices", len(configs)).Msg("Scan complete")
	return discovery.ToScanResult(configs), nil
}

// connect resolves selector and opens a handle. The caller closes it.
func (b *Bridge) connect(ctx context.Context, selector string) (device.Config, device.Handle, error) {
	cfg, err := b.Resolver().Resolve(ctx, selector)
	if err != nil {
		return device.Config{}, nil, err
	}
	h, err := b.Backend.Connect(ctx, cfg)
	if err != nil {
		return device.Config{}, nil, err
	}
	return cfg, h, nil
}

// Command connects, sends one remote command and disconnects.
func (b *Bridge) Command(ctx context.Context, selector, command, action string) (*CommandResult, error) {
	cfg, h, err := b.connect(ctx, selector)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	a, err := control.ParseAction(action)
	if err != nil {
		return nil, err
	}
	if err := control.Dispatch(ctx, h, command, a); err != nil {
		return nil, err
	}

	return &CommandResult{
		Status:     "ok",
		Identifier: cfg.Identifier,
		Command:    strings.ToLower(command),
		Action:     a.String(),
		Mock:       b.Mock,
	}, nil
}

// Power connects, performs one power action and disconnects.
func (b *Bridge) Power(ctx context.Context, selector, action string) (*PowerResult, error) {
	cfg, h, err := b.connect(ctx, selector)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	res, err := control.ApplyPower(ctx, h, action)
	if err != nil {
		return nil, err
	}

	return &PowerResult{
		Status:     "ok",
		Identifier: cfg.Identifier,
		Power:      res.Power,
		PowerState: string(res.State),
		Mock:       b.Mock,
	}, nil
}

// Session runs the line protocol against one device until it ends and
// returns the process exit code.
func (b *Bridge) Session(ctx context.Context, selector string, in *bufio.Reader, out *session.Writer) int {
	return session.Run(ctx, session.Options{
		Selector: selector,
		Resolver: b.Resolver(),
		Backend:  b.Backend,
		Mock:     b.Mock,
	}, in, out)
}
