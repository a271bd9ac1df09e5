// Package config loads the optional TOML configuration file. The file lives
// at ~/.config/atmo/config.toml by default; CLI flags take precedence over
// file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the configuration file structure.
type Config struct {
	// Storage is the path to the credential database.
	// Default: $XDG_CONFIG_HOME/atmo/credentials.db
	Storage string `toml:"storage"`

	// NoStorage disables credential persistence entirely.
	NoStorage bool `toml:"no_storage"`

	// DisplayName is announced to devices while pairing.
	// Default: atmo
	DisplayName string `toml:"display_name"`

	// ScanTimeout is the discovery window in seconds.
	// Default: 5
	ScanTimeout float64 `toml:"scan_timeout"`

	// LogLevel controls logging verbosity: debug, info, warn, error.
	// Default: warn
	LogLevel string `toml:"log_level"`

	// Addr is the listen address of the HTTP API (api_addr).
	// Default: 127.0.0.1:8080
	Addr string `toml:"api_addr"`
}

// ScanTimeoutDuration returns ScanTimeout as a duration, or the default
// when unset.
func (c *Config) ScanTimeoutDuration() time.Duration {
	if c.ScanTimeout <= 0 {
		return DefaultScanTimeout
	}
	return time.Duration(c.ScanTimeout * float64(time.Second))
}

// ApplyDefaults fills every unset field with its default.
func (c *Config) ApplyDefaults() {
	if c.DisplayName == "" {
		c.DisplayName = DefaultDisplayName
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "atmo", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "atmo", "config.toml"), nil
}

// Load reads a TOML config file. An empty path tries the default location
// and returns an empty Config when no file is there; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
			return cfg, nil
		}
		path = defaultPath
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in config file %s", undecoded[0].String(), path)
	}

	return cfg, nil
}
