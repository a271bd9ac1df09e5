package discovery

import "github.com/mabino/atmo/pkg/device"

// DevicePayload is the JSON description of a discovered device.
type DevicePayload struct {
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	Model          string            `json:"model"`
	DeepSleep      bool              `json:"deep_sleep"`
	Identifiers    []string          `json:"identifiers"`
	MainIdentifier string            `json:"main_identifier"`
	DeviceInfo     DeviceInfoPayload `json:"device_info"`
	Protocols      []ServicePayload  `json:"protocols"`
}

// DeviceInfoPayload is the JSON description of device hardware and software.
type DeviceInfoPayload struct {
	OperatingSystem string  `json:"operating_system"`
	Version         *string `json:"version"`
	BuildNumber     *string `json:"build_number"`
	Model           string  `json:"model"`
	ModelStr        string  `json:"model_str"`
	RawModel        *string `json:"raw_model"`
	MAC             *string `json:"mac"`
}

// ServicePayload is the JSON description of one device service. Secrets are
// reported only as present or absent.
type ServicePayload struct {
	Protocol           device.Protocol           `json:"protocol"`
	Identifier         string                    `json:"identifier"`
	Port               int                       `json:"port"`
	RequiresPassword   bool                      `json:"requires_password"`
	Pairing            device.PairingRequirement `json:"pairing"`
	CredentialsPresent bool                      `json:"credentials_present"`
	PasswordPresent    bool                      `json:"password_present"`
	Enabled            bool                      `json:"enabled"`
}

// ScanResult is the payload printed by a scan.
type ScanResult struct {
	Devices []DevicePayload `json:"devices"`
}

// ToPayload converts a config to its JSON description.
func ToPayload(cfg device.Config) DevicePayload {
	ids := cfg.AllIdentifiers
	if ids == nil {
		ids = []string{}
	}

	p := DevicePayload{
		Name:           cfg.Name,
		Address:        cfg.Address,
		Model:          cfg.Info.ModelStr,
		DeepSleep:      cfg.DeepSleep,
		Identifiers:    ids,
		MainIdentifier: cfg.Identifier,
		DeviceInfo: DeviceInfoPayload{
			OperatingSystem: orDefault(cfg.Info.OperatingSystem, "Unknown"),
			Version:         nullable(cfg.Info.Version),
			BuildNumber:     nullable(cfg.Info.BuildNumber),
			Model:           orDefault(cfg.Info.Model, "Unknown"),
			ModelStr:        cfg.Info.ModelStr,
			RawModel:        nullable(cfg.Info.RawModel),
			MAC:             nullable(cfg.Info.MAC),
		},
		Protocols: make([]ServicePayload, 0, len(cfg.Services)),
	}

	for _, svc := range cfg.Services {
		p.Protocols = append(p.Protocols, ServicePayload{
			Protocol:           svc.Protocol,
			Identifier:         svc.Identifier,
			Port:               svc.Port,
			RequiresPassword:   svc.RequiresPassword,
			Pairing:            svc.Pairing,
			CredentialsPresent: svc.Credentials != "",
			PasswordPresent:    svc.Password != "",
			Enabled:            svc.Enabled,
		})
	}
	return p
}

// ToScanResult converts scanned configs to the scan payload.
func ToScanResult(configs []device.Config) ScanResult {
	res := ScanResult{Devices: make([]DevicePayload, 0, len(configs))}
	for _, cfg := range configs {
		res.Devices = append(res.Devices, ToPayload(cfg))
	}
	return res
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
