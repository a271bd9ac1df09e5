package config

import "time"

// DefaultAddr is the default listen address for the HTTP API.
const DefaultAddr = "127.0.0.1:8080"

// DefaultDisplayName is announced to devices while pairing.
const DefaultDisplayName = "atmo"

// DefaultLogLevel keeps stderr quiet unless something goes wrong.
const DefaultLogLevel = "warn"

// DefaultScanTimeout is the discovery window used when none is configured.
const DefaultScanTimeout = 5 * time.Second
