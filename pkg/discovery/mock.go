package discovery

import (
	"context"

	"github.com/mabino/atmo/pkg/device"
)

// MockScanner returns a fixed set of devices without touching the network.
type MockScanner struct {
	Devices []device.Config
}

// NewMockScanner returns a scanner reporting the "Living Room" device.
func NewMockScanner() *MockScanner {
	return &MockScanner{Devices: []device.Config{LivingRoom()}}
}

func (s *MockScanner) Scan(ctx context.Context, _ Options) ([]device.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]device.Config, len(s.Devices))
	for i, cfg := range s.Devices {
		out[i] = cloneConfig(cfg)
	}
	return out, nil
}

// LivingRoom is the deterministic device reported in mock mode.
func LivingRoom() device.Config {
	return device.Config{
		Identifier:     "11223344-5566-7788-9900-112233445566",
		AllIdentifiers: []string{"00:11:22:33:44:55", "11223344-5566-7788-9900-112233445566"},
		Name:           "Living Room",
		Address:        "10.0.0.10",
		Info: device.Info{
			OperatingSystem: "TvOS",
			Version:         "17.5",
			BuildNumber:     "21L570",
			Model:           "AppleTV4KGen3",
			ModelStr:        "Apple TV 4K (3rd generation)",
			MAC:             "aa:bb:cc:dd:ee:ff",
		},
		Services: []device.Service{
			{
				Protocol:    device.ProtocolCompanion,
				Identifier:  "11223344-5566-7788-9900-112233445566",
				Port:        49153,
				Pairing:     device.PairingMandatory,
				Credentials: "mock-credentials",
				Enabled:     true,
			},
			{
				Protocol:    device.ProtocolAirPlay,
				Identifier:  "00:11:22:33:44:55",
				Port:        7000,
				Pairing:     device.PairingMandatory,
				Credentials: "mock-credentials",
				Enabled:     true,
			},
		},
	}
}

func cloneConfig(cfg device.Config) device.Config {
	cfg.AllIdentifiers = append([]string(nil), cfg.AllIdentifiers...)
	cfg.Services = append([]device.Service(nil), cfg.Services...)
	return cfg
}
