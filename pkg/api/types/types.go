package types

import "time"

// --- Request DTOs ---

// CommandRequest is the request body for POST /devices/:id/command
type CommandRequest struct {
	Command string `json:"command" example:"play_pause"`
	Action  string `json:"action,omitempty" example:"SingleTap"`
}

// PowerRequest is the request body for POST /devices/:id/power
type PowerRequest struct {
	Action string `json:"action" example:"status"`
}

// PairRequest is the request body for POST /devices/:id/pairing
type PairRequest struct {
	Protocol    string `json:"protocol" example:"Companion"`
	PIN         string `json:"pin,omitempty" example:"1234"`
	DisplayName string `json:"display_name,omitempty" example:"atmo"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	Storage   bool      `json:"storage"`
	Mock      bool      `json:"mock"`
	Timestamp time.Time `json:"timestamp"`
}
