// Package discovery finds devices on the local network and resolves the
// selectors users type (identifier, name or address) to a device.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/storage"
)

// DefaultTimeout is how long a scan listens for announcements.
const DefaultTimeout = 5 * time.Second

// Options narrows a scan.
type Options struct {
	Timeout time.Duration
	// Protocol keeps only devices offering this protocol when set.
	Protocol device.Protocol
	// Identifier keeps only the device with this identifier when set.
	Identifier string
}

// Scanner enumerates reachable devices.
type Scanner interface {
	Scan(ctx context.Context, opts Options) ([]device.Config, error)
}

// ParseProtocol maps an exact protocol name to a Protocol. An empty name
// means any protocol.
func ParseProtocol(name string) (device.Protocol, error) {
	if name == "" {
		return "", nil
	}
	p, ok := device.ParseProtocol(name)
	if !ok {
		return "", fmt.Errorf("unknown protocol: %s", name)
	}
	return p, nil
}

// Discover scans and attaches stored secrets to every discovered service.
// store may be nil.
func Discover(ctx context.Context, scanner Scanner, store storage.Store, opts Options) ([]device.Config, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Timeout < time.Second {
		opts.Timeout = time.Second
	}

	configs, err := scanner.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}

	configs = filter(configs, opts)

	if store != nil {
		for i := range configs {
			if err := storage.Apply(ctx, store, &configs[i]); err != nil {
				return nil, fmt.Errorf("failed to load stored credentials: %w", err)
			}
		}
	}
	return configs, nil
}

func filter(configs []device.Config, opts Options) []device.Config {
	if opts.Protocol == "" && opts.Identifier == "" {
		return configs
	}

	var out []device.Config
	for _, cfg := range configs {
		if opts.Protocol != "" && cfg.Service(opts.Protocol) == nil {
			continue
		}
		if opts.Identifier != "" && !hasIdentifier(cfg, opts.Identifier) {
			continue
		}
		out = append(out, cfg)
	}
	return out
}

func hasIdentifier(cfg device.Config, id string) bool {
	if strings.EqualFold(cfg.Identifier, id) {
		return true
	}
	for _, candidate := range cfg.AllIdentifiers {
		if candidate != "" && strings.EqualFold(candidate, id) {
			return true
		}
	}
	return false
}

// Select finds the config matching selector. Identifiers and names match
// case-insensitively, the address matches exactly. Configs are tried in order.
func Select(configs []device.Config, selector string) (device.Config, bool) {
	for _, cfg := range configs {
		if cfg.Identifier != "" && strings.EqualFold(cfg.Identifier, selector) {
			return cfg, true
		}
		for _, candidate := range cfg.AllIdentifiers {
			if candidate != "" && strings.EqualFold(candidate, selector) {
				return cfg, true
			}
		}
		if cfg.Name != "" && strings.EqualFold(cfg.Name, selector) {
			return cfg, true
		}
		if cfg.Address != "" && cfg.Address == selector {
			return cfg, true
		}
	}
	return device.Config{}, false
}

// Resolver turns a selector into a device config with stored secrets applied.
type Resolver struct {
	Scanner Scanner
	// Store is optional.
	Store   storage.Store
	Timeout time.Duration
}

// Resolve scans for all devices and selects one. It returns an error
// wrapping device.ErrNotFound when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, selector string) (device.Config, error) {
	configs, err := Discover(ctx, r.Scanner, r.Store, Options{Timeout: r.Timeout})
	if err != nil {
		return device.Config{}, err
	}

	cfg, ok := Select(configs, selector)
	if !ok {
		return device.Config{}, device.ErrNotFound
	}
	return cfg, nil
}
