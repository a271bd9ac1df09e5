package schema

import "encoding/json"

// Request schemas for the remote-control surfaces.
var (
	CommandRequest = json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"command": {"type": "string", "minLength": 1},
			"action": {"type": "string", "enum": ["SingleTap", "DoubleTap", "Hold"]}
		},
		"required": ["command"],
		"additionalProperties": false
	}`)

	PowerRequest = json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"action": {"type": "string", "enum": ["on", "off", "status"]}
		},
		"required": ["action"],
		"additionalProperties": false
	}`)

	PairRequest = json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"protocol": {"type": "string", "enum": ["DMAP", "MRP", "AirPlay", "Companion", "RAOP"]},
			"pin": {"type": "string", "pattern": "^[0-9]{4,8}$"},
			"display_name": {"type": "string", "minLength": 1, "maxLength": 64}
		},
		"required": ["protocol"],
		"additionalProperties": false
	}`)
)
