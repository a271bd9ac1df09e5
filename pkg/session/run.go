package session

import (
	"bufio"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mabino/atmo/pkg/device"
)

// Exit codes returned by Run.
const (
	ExitGraceful    = 0
	ExitFatal       = 1
	ExitSetupFailed = 2
)

// Resolver finds the device a selector refers to.
type Resolver interface {
	Resolve(ctx context.Context, selector string) (device.Config, error)
}

// Options configures Run.
type Options struct {
	Selector string
	Resolver Resolver
	Backend  device.Backend
	Mock     bool
}

// Run resolves and connects the device, emits the ready line, and serves
// messages from in until the session ends. The device handle is closed on
// every exit path. The returned value is the process exit code.
func Run(ctx context.Context, opts Options, in *bufio.Reader, out *Writer) int {
	logger := log.With().
		Str("session_id", uuid.NewString()).
		Str("selector", opts.Selector).
		Logger()

	cfg, err := opts.Resolver.Resolve(ctx, opts.Selector)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, device.ErrNotFound) {
			msg = "device not found"
		}
		logger.Warn().Err(err).Msg("Session device lookup failed")
		_ = out.Write(Response{Status: StatusError, Error: msg, Fatal: true})
		return ExitSetupFailed
	}

	h, err := opts.Backend.Connect(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Str("identifier", cfg.Identifier).Msg("Session connect failed")
		_ = out.Write(Response{Status: StatusError, Error: err.Error(), Fatal: true})
		return ExitSetupFailed
	}
	defer h.Close()

	logger = logger.With().Str("identifier", cfg.Identifier).Logger()

	if err := out.Write(Response{
		Status:     StatusReady,
		Identifier: cfg.Identifier,
		Name:       cfg.Name,
		Mock:       opts.Mock,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write ready line")
		return ExitFatal
	}
	logger.Info().Msg("Session ready")

	loop := &Loop{Handle: h, In: in, Out: out, Mock: opts.Mock, Logger: logger}
	graceful, err := loop.Run(ctx)
	if err != nil && ctx.Err() != nil {
		logger.Info().Err(err).Msg("Session aborted")
		return ExitFatal
	}
	if err != nil {
		logger.Error().Err(err).Msg("Session stream failed")
		return ExitFatal
	}
	if !graceful {
		return ExitFatal
	}

	logger.Info().Msg("Session closed")
	return ExitGraceful
}
