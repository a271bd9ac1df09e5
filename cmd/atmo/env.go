package main

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mabino/atmo/pkg/bridge"
	"github.com/mabino/atmo/pkg/config"
	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/discovery"
	"github.com/mabino/atmo/pkg/storage"
)

// env is the wired bridge for one invocation.
type env struct {
	cfg    *config.Config
	bridge *bridge.Bridge
	db     *storage.DB
}

func (e *env) Close() {
	if e.db == nil {
		return
	}
	if err := e.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close storage")
	}
}

// loadConfig reads the config file and lets global flags override it.
// defaultLevel applies when neither sets a log level.
func loadConfig(g *globals, defaultLevel string) (*config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.Storage != "" {
		cfg.Storage = g.Storage
	}
	if g.NoStorage {
		cfg.NoStorage = true
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLevel
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// setupLogging sends console logs to stderr; stdout carries protocol output.
func setupLogging(stderr io.Writer, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr})

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// newEnv loads configuration, configures logging and wires the bridge.
func newEnv(ctx context.Context, g *globals, stderr io.Writer, defaultLevel string) (*env, error) {
	cfg, err := loadConfig(g, defaultLevel)
	if err != nil {
		setupLogging(stderr, config.DefaultLogLevel)
		return nil, err
	}
	setupLogging(stderr, cfg.LogLevel)

	e := &env{cfg: cfg}
	b := &bridge.Bridge{
		DisplayName: cfg.DisplayName,
		ScanTimeout: cfg.ScanTimeoutDuration(),
		Mock:        g.Mock,
	}

	if g.Mock {
		b.Scanner = discovery.NewMockScanner()
		b.Backend = device.NewMockBackend()
		if !cfg.NoStorage {
			b.Store = storage.NewMemory()
		}
		e.bridge = b
		return e, nil
	}

	b.Scanner = discovery.NewMDNSScanner()
	b.Backend = device.NewNullBackend()
	log.Debug().Msg("No device-control backend linked, using null backend")

	if !cfg.NoStorage {
		db, err := openStore(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		e.db = db
		b.Store = db.Credentials()
	}

	e.bridge = b
	return e, nil
}

func openStore(ctx context.Context, path string) (*storage.DB, error) {
	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug().Str("path", db.Path()).Msg("Credential store opened")
	return db, nil
}
