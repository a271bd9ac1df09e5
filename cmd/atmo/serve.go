package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mabino/atmo/pkg/api"
	"github.com/mabino/atmo/pkg/device/schema"
	"github.com/mabino/atmo/pkg/mcp"
)

const shutdownTimeout = 5 * time.Second

func runServe(ctx context.Context, g *globals, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	e, err := newEnv(ctx, g, stderr, "info")
	if err != nil {
		return fail(stderr, err)
	}
	defer e.Close()

	if *addr == "" {
		*addr = e.cfg.Addr
	}

	router := api.NewRouter(e.bridge, schema.NewValidator())
	srv := &http.Server{
		Addr:              *addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", *addr).Bool("mock", g.Mock).Msg("Starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fail(stderr, err)
		}
		return exitOK
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return exitFailure
	}
	return exitOK
}

func runMCP(ctx context.Context, g *globals, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	e, err := newEnv(ctx, g, stderr, "info")
	if err != nil {
		return fail(stderr, err)
	}
	defer e.Close()

	server := mcp.NewServer(e.bridge, schema.NewValidator())

	log.Info().Bool("mock", g.Mock).Msg("Starting MCP server on stdio")

	if err := server.ServeStdio(); err != nil {
		return fail(stderr, err)
	}
	return exitOK
}
