package mcp

import "github.com/mabino/atmo/pkg/discovery"

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=Overall health status (healthy or degraded)"`
	Backend   string `json:"backend" jsonschema:"description=Device backend availability"`
	Storage   bool   `json:"storage" jsonschema:"description=Whether credentials are persisted"`
	Mock      bool   `json:"mock,omitempty" jsonschema:"description=Set when running against simulated devices"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// ScanDevicesOutput is the output for the scan_devices tool
type ScanDevicesOutput struct {
	Devices []discovery.DevicePayload `json:"devices" jsonschema:"description=Discovered devices"`
	Count   int                       `json:"count" jsonschema:"description=Number of devices found"`
}
