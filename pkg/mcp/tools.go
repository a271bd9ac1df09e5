package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check whether a device backend and credential storage are available"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("scan_devices",
			mcp.WithDescription("Scan the local network for media devices"),
			mcp.WithNumber("timeout",
				mcp.Description("Scan timeout in seconds (default 5, minimum 1)"),
			),
			mcp.WithString("protocol",
				mcp.Description("Only return devices offering this protocol"),
				mcp.Enum("DMAP", "MRP", "AirPlay", "Companion", "RAOP"),
			),
		),
		s.handleScanDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("send_command",
			mcp.WithDescription("Send one remote-control command (home, menu, select, up, down, left, right, play_pause)"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device identifier, name or address"),
			),
			mcp.WithString("command",
				mcp.Required(),
				mcp.Description("Command name"),
			),
			mcp.WithString("action",
				mcp.Description("Input action (default SingleTap)"),
				mcp.Enum("SingleTap", "DoubleTap", "Hold"),
			),
		),
		s.handleSendCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("power",
			mcp.WithDescription("Turn a device on or off, or read its power state"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device identifier, name or address"),
			),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("Power action"),
				mcp.Enum("on", "off", "status"),
			),
		),
		s.handlePower,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("pair_device",
			mcp.WithDescription("Pair a protocol with a device. Returns pin_required when a PIN is needed; call again with the PIN."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device identifier, name or address"),
			),
			mcp.WithString("protocol",
				mcp.Required(),
				mcp.Description("Protocol to pair"),
				mcp.Enum("DMAP", "MRP", "AirPlay", "Companion", "RAOP"),
			),
			mcp.WithString("pin",
				mcp.Description("PIN shown by the device"),
			),
		),
		s.handlePairDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("unpair_device",
			mcp.WithDescription("Remove stored credentials for one protocol of a device"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device identifier, name or address"),
			),
			mcp.WithString("protocol",
				mcp.Required(),
				mcp.Description("Protocol to unpair"),
				mcp.Enum("DMAP", "MRP", "AirPlay", "Companion", "RAOP"),
			),
		),
		s.handleUnpairDevice,
	)
}
