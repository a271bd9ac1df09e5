package storage

import (
	"context"

	"github.com/mabino/atmo/pkg/device"
)

// ProtocolSettings holds the secrets negotiated for one protocol.
type ProtocolSettings struct {
	Credentials string
	Password    string
}

// Empty reports whether no secret is stored.
func (p ProtocolSettings) Empty() bool {
	return p.Credentials == "" && p.Password == ""
}

// Settings is the persisted record of one device. It is mutated in place
// and written by the owning Store's Save.
type Settings struct {
	DeviceID  string
	protocols map[device.Protocol]ProtocolSettings
}

// NewSettings creates an empty record for a device.
func NewSettings(deviceID string) *Settings {
	return &Settings{DeviceID: deviceID, protocols: make(map[device.Protocol]ProtocolSettings)}
}

// Get returns the settings stored for a protocol.
func (s *Settings) Get(p device.Protocol) ProtocolSettings {
	return s.protocols[p]
}

// Set replaces the settings stored for a protocol.
func (s *Settings) Set(p device.Protocol, ps ProtocolSettings) {
	s.protocols[p] = ps
}

// SetCredentials records new credentials for a protocol, keeping its password.
func (s *Settings) SetCredentials(p device.Protocol, credentials string) {
	ps := s.protocols[p]
	ps.Credentials = credentials
	s.protocols[p] = ps
}

// clearsPassword lists protocols whose password is removed with the credentials.
var clearsPassword = map[device.Protocol]bool{
	device.ProtocolAirPlay: true,
	device.ProtocolRAOP:    true,
}

// Clear removes the secrets belonging to a protocol and reports whether
// anything was removed.
func (s *Settings) Clear(p device.Protocol) bool {
	ps, ok := s.protocols[p]
	if !ok {
		return false
	}

	cleared := false
	if ps.Credentials != "" {
		ps.Credentials = ""
		cleared = true
	}
	if clearsPassword[p] && ps.Password != "" {
		ps.Password = ""
		cleared = true
	}
	s.protocols[p] = ps
	return cleared
}

// Protocols returns the protocols that have a record, in device.Protocols order.
func (s *Settings) Protocols() []device.Protocol {
	var out []device.Protocol
	for _, p := range device.Protocols {
		if _, ok := s.protocols[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Store loads and saves device settings.
type Store interface {
	// Settings returns the live record for a device, creating an empty one
	// if nothing is stored.
	Settings(ctx context.Context, cfg device.Config) (*Settings, error)

	// Save persists every record returned by Settings.
	Save(ctx context.Context) error
}

// Apply copies stored secrets onto the matching services of cfg.
func Apply(ctx context.Context, store Store, cfg *device.Config) error {
	settings, err := store.Settings(ctx, *cfg)
	if err != nil {
		return err
	}
	for i := range cfg.Services {
		svc := &cfg.Services[i]
		ps := settings.Get(svc.Protocol)
		if ps.Credentials != "" {
			svc.Credentials = ps.Credentials
		}
		if ps.Password != "" {
			svc.Password = ps.Password
		}
	}
	return nil
}

// deviceKey returns the identifier settings are stored under.
func deviceKey(cfg device.Config) string {
	if cfg.Identifier != "" {
		return cfg.Identifier
	}
	for _, id := range cfg.AllIdentifiers {
		if id != "" {
			return id
		}
	}
	return cfg.Address
}
