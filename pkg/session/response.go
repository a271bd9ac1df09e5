package session

// Status values carried by every response.
const (
	StatusReady   = "ready"
	StatusOK      = "ok"
	StatusError   = "error"
	StatusClosing = "closing"
)

// Response is one output line. Field order is the order keys are written.
type Response struct {
	Status     string `json:"status"`
	Type       string `json:"type,omitempty"`
	Command    string `json:"command,omitempty"`
	Action     string `json:"action,omitempty"`
	Power      string `json:"power,omitempty"`
	PowerState string `json:"power_state,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Name       string `json:"name,omitempty"`
	Mock       bool   `json:"mock,omitempty"`
	Error      string `json:"error,omitempty"`
	Fatal      bool   `json:"fatal,omitempty"`
}
