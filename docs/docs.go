// Package docs holds the Swagger document served at /swagger. Keep it in
// step with the handler annotations in pkg/api/handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/devices": {
            "get": {
                "description": "Scans the local network and returns every device found",
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Scan for devices",
                "parameters": [
                    {"type": "number", "description": "Scan timeout in seconds (default 5)", "name": "timeout", "in": "query"},
                    {"type": "string", "description": "Only devices offering this protocol", "name": "protocol", "in": "query"},
                    {"type": "string", "description": "Only the device with this identifier", "name": "identifier", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/discovery.ScanResult"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Scan failed", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/devices/{id}/command": {
            "post": {
                "description": "Connects to the device, sends one remote-control command and disconnects",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["control"],
                "summary": "Send a remote command",
                "parameters": [
                    {"type": "string", "description": "Device identifier, name or address", "name": "id", "in": "path", "required": true},
                    {"description": "Command to send", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.CommandRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/bridge.CommandResult"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Device error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/devices/{id}/power": {
            "post": {
                "description": "Connects to the device, performs one power action and disconnects",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["control"],
                "summary": "Power on, off or read power state",
                "parameters": [
                    {"type": "string", "description": "Device identifier, name or address", "name": "id", "in": "path", "required": true},
                    {"description": "Power action", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PowerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/bridge.PowerResult"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "501": {"description": "Power state not supported", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Device error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/devices/{id}/pairing": {
            "post": {
                "description": "Runs a pairing handshake. Without a PIN the response may be pin_required; retry with the PIN.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pairing"],
                "summary": "Pair a protocol",
                "parameters": [
                    {"type": "string", "description": "Device identifier, name or address", "name": "id", "in": "path", "required": true},
                    {"description": "Protocol and optional PIN", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PairRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pairing.Paired"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/pairing.PinRequired"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Pairing failed", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/devices/{id}/pairing/{protocol}": {
            "delete": {
                "description": "Clears the stored credentials of one protocol. Status is noop when nothing was stored.",
                "produces": ["application/json"],
                "tags": ["pairing"],
                "summary": "Remove stored credentials",
                "parameters": [
                    {"type": "string", "description": "Device identifier, name or address", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Protocol name", "name": "protocol", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pairing.Unpaired"}},
                    "400": {"description": "Unknown protocol", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Device not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Storage disabled", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns the health status of the API and device backend",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service is healthy", "schema": {"$ref": "#/definitions/types.HealthResponse"}},
                    "503": {"description": "No device backend available", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "bridge.CommandResult": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "command": {"type": "string"},
                "identifier": {"type": "string"},
                "mock": {"type": "boolean"},
                "status": {"type": "string"}
            }
        },
        "bridge.PowerResult": {
            "type": "object",
            "properties": {
                "identifier": {"type": "string"},
                "mock": {"type": "boolean"},
                "power": {"type": "string"},
                "power_state": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "discovery.DeviceInfoPayload": {
            "type": "object",
            "properties": {
                "build_number": {"type": "string"},
                "mac": {"type": "string"},
                "model": {"type": "string"},
                "model_str": {"type": "string"},
                "operating_system": {"type": "string"},
                "raw_model": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "discovery.DevicePayload": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "deep_sleep": {"type": "boolean"},
                "device_info": {"$ref": "#/definitions/discovery.DeviceInfoPayload"},
                "identifiers": {"type": "array", "items": {"type": "string"}},
                "main_identifier": {"type": "string"},
                "model": {"type": "string"},
                "name": {"type": "string"},
                "protocols": {"type": "array", "items": {"$ref": "#/definitions/discovery.ServicePayload"}}
            }
        },
        "discovery.ScanResult": {
            "type": "object",
            "properties": {
                "devices": {"type": "array", "items": {"$ref": "#/definitions/discovery.DevicePayload"}}
            }
        },
        "discovery.ServicePayload": {
            "type": "object",
            "properties": {
                "credentials_present": {"type": "boolean"},
                "enabled": {"type": "boolean"},
                "identifier": {"type": "string"},
                "pairing": {"type": "string"},
                "password_present": {"type": "boolean"},
                "port": {"type": "integer"},
                "protocol": {"type": "string"},
                "requires_password": {"type": "boolean"}
            }
        },
        "pairing.Paired": {
            "type": "object",
            "properties": {
                "credentials": {"type": "string"},
                "credentials_saved": {"type": "boolean"},
                "identifier": {"type": "string"},
                "protocol": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "pairing.PinRequired": {
            "type": "object",
            "properties": {
                "identifier": {"type": "string"},
                "message": {"type": "string"},
                "protocol": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "pairing.Unpaired": {
            "type": "object",
            "properties": {
                "credentials_removed": {"type": "boolean"},
                "identifier": {"type": "string"},
                "protocol": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "types.CommandRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "example": "SingleTap"},
                "command": {"type": "string", "example": "play_pause"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "backend": {"type": "string"},
                "mock": {"type": "boolean"},
                "status": {"type": "string"},
                "storage": {"type": "boolean"},
                "timestamp": {"type": "string"}
            }
        },
        "types.PairRequest": {
            "type": "object",
            "properties": {
                "display_name": {"type": "string", "example": "atmo"},
                "pin": {"type": "string", "example": "1234"},
                "protocol": {"type": "string", "example": "Companion"}
            }
        },
        "types.PowerRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "example": "status"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "atmo API",
	Description:      "Scan, pair and control media streaming devices on the local network.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
