package device

import "fmt"

// InputAction selects how a remote button is pressed.
type InputAction int

const (
	SingleTap InputAction = iota
	DoubleTap
	Hold
)

var inputActionNames = map[InputAction]string{
	SingleTap: "SingleTap",
	DoubleTap: "DoubleTap",
	Hold:      "Hold",
}

func (a InputAction) String() string {
	if name, ok := inputActionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("InputAction(%d)", int(a))
}

// ParseInputAction maps an exact action name (e.g. "DoubleTap") to an InputAction.
func ParseInputAction(name string) (InputAction, bool) {
	for action, n := range inputActionNames {
		if n == name {
			return action, true
		}
	}
	return SingleTap, false
}

// PowerState is the power state reported by a device.
type PowerState string

const (
	PowerUnknown PowerState = "Unknown"
	PowerOn      PowerState = "On"
	PowerOff     PowerState = "Off"
)

// DeviceState is the playback state reported in metadata.
type DeviceState string

const (
	StateIdle    DeviceState = "Idle"
	StateLoading DeviceState = "Loading"
	StatePaused  DeviceState = "Paused"
	StatePlaying DeviceState = "Playing"
	StateStopped DeviceState = "Stopped"
	StateSeeking DeviceState = "Seeking"
)

// Playing describes what the device is currently playing.
type Playing struct {
	DeviceState DeviceState `json:"device_state"`
	Title       string      `json:"title,omitempty"`
	Artist      string      `json:"artist,omitempty"`
}

// Protocol identifies a device protocol that can be paired and hold credentials.
type Protocol string

// Protocol constants
const (
	ProtocolAirPlay   Protocol = "AirPlay"
	ProtocolCompanion Protocol = "Companion"
	ProtocolRAOP      Protocol = "RAOP"
	ProtocolMRP       Protocol = "MRP"
	ProtocolDMAP      Protocol = "DMAP"
)

// Protocols lists every known protocol in a stable order.
var Protocols = []Protocol{ProtocolDMAP, ProtocolMRP, ProtocolAirPlay, ProtocolCompanion, ProtocolRAOP}

// ParseProtocol maps an exact protocol name to a Protocol.
func ParseProtocol(name string) (Protocol, bool) {
	for _, p := range Protocols {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

// PairingRequirement tells whether a service must be paired before use.
type PairingRequirement string

const (
	PairingUnsupported PairingRequirement = "Unsupported"
	PairingDisabled    PairingRequirement = "Disabled"
	PairingNotNeeded   PairingRequirement = "NotNeeded"
	PairingOptional    PairingRequirement = "Optional"
	PairingMandatory   PairingRequirement = "Mandatory"
)

// Service is one protocol endpoint exposed by a device.
type Service struct {
	Protocol         Protocol
	Identifier       string
	Port             int
	RequiresPassword bool
	Pairing          PairingRequirement
	Credentials      string
	Password         string
	Enabled          bool
}

// Info is the hardware/software description of a device.
type Info struct {
	OperatingSystem string
	Version         string
	BuildNumber     string
	Model           string
	ModelStr        string
	RawModel        string
	MAC             string
}

// Config is a discovered device together with its services. It is the unit
// passed to a Backend to connect or pair.
type Config struct {
	Identifier     string
	AllIdentifiers []string
	Name           string
	Address        string
	DeepSleep      bool
	Info           Info
	Services       []Service
}

// Service returns the service for the given protocol, or nil.
func (c *Config) Service(p Protocol) *Service {
	for i := range c.Services {
		if c.Services[i].Protocol == p {
			return &c.Services[i]
		}
	}
	return nil
}
