package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/mabino/atmo/pkg/discovery"
	"github.com/mabino/atmo/pkg/pairing"
	"github.com/mabino/atmo/pkg/session"
	"github.com/mabino/atmo/pkg/storage"
)

// mockStoragePath is reported by clear-storage in mock mode.
const mockStoragePath = "mock-storage"

func runScan(ctx context.Context, g *globals, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	timeout := fs.Float64("timeout", 0, "Scan timeout in seconds (default from config, minimum 1)")
	protocol := fs.String("protocol", "", "Only devices offering this protocol")
	identifier := fs.String("identifier", "", "Only the device with this identifier")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	e, err := newEnv(ctx, g, stderr, "")
	if err != nil {
		return fail(stderr, err)
	}
	defer e.Close()

	p, err := discovery.ParseProtocol(*protocol)
	if err != nil {
		return fail(stderr, err)
	}

	opts := discovery.Options{Protocol: p, Identifier: *identifier}
	if *timeout > 0 {
		opts.Timeout = time.Duration(*timeout * float64(time.Second))
	} else {
		opts.Timeout = e.cfg.ScanTimeoutDuration()
	}

	result, err := e.bridge.Scan(ctx, opts)
	if err != nil {
		return fail(stderr, err)
	}
	return printResult(stdout, stderr, result)
}

func runPair(ctx context.Context, g *globals, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pair", flag.ContinueOnError)
	fs.SetOutput(stderr)
	identifier := fs.String("identifier", "", "Device identifier, name or address")
	protocol := fs.String("protocol", "", "Protocol to pair (DMAP, MRP, AirPlay, Companion, RAOP)")
	pin := fs.String("pin", "", "PIN shown by the device")
	displayName := fs.String("display-name", "", "Name announced to the device (default atmo)")
	interactive := fs.Bool("interactive", false, "Prompt for the PIN on stdin")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !required(stderr, [2]string{"identifier", *identifier}, [2]string{"protocol", *protocol}) {
		return exitUsage
	}

	e, err := newEnv(ctx, g, stderr, "")
	if err != nil {
		return fail(stderr, err)
	}
	defer e.Close()

	controller := e.bridge.Pairing()
	if *displayName != "" {
		controller.DisplayName = *displayName
	}
	req := pairing.Request{Identifier: *identifier, Protocol: *protocol, PIN: *pin}

	if *interactive {
		out := session.NewWriter(stdout)
		if _, err := controller.PairInteractive(ctx, req, bufio.NewReader(stdin), out.Write); err != nil {
			return fail(stderr, err)
		}
		return exitOK
	}

	outcome, err := controller.Pair(ctx, req)
	if err != nil {
		return fail(stderr, err)
	}
	return printResult(stdout, stderr, outcome)
}

func runUnpair(ctx context.Context, g *globals, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("unpair", flag.ContinueOnError)
	fs.SetOutput(stderr)
	identifier := fs.String("identifier", "", "Device identifier, name or address")
	protocol := fs.String("protocol", "", "Protocol to unpair")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !required(stderr, [2]string{"identifier", *identifier}, [2]string{"protocol", *protocol}) {
		return exitUsage
	}

	e, err := newEnv(ctx, g, stderr, "")
	if err != nil {
		return fail(stderr, err)
	}
	defer e.Close()

	result, err := e.bridge.Pairing().Unpair(ctx, pairing.Request{Identifier: *identifier, Protocol: *protocol})
	if err != nil {
		return fail(stderr, err)
	}
	return printResult(stdout, stderr, result)
}

func runCommand(ctx context.Context, g *globals, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("command", flag.ContinueOnError)
	fs.SetOutput(stderr)
	identifier := fs.String("identifier", "", "Device identifier, name or address")
	command := fs.String("command", "", "home, menu, select, up, down, left, right or play_pause")
	action := fs.String("action", "", "SingleTap, DoubleTap or Hold (default SingleTap)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !required(stderr, [2]string{"identifier", *identifier}, [2]string{"command", *command}) {
		return exitUsage
	}

	e, err := newEnv(ctx, g, stderr, "")
	if err != nil {
		return fail(stderr, err)
	}
	defer e.Close()

	result, err := e.bridge.Command(ctx, *identifier, *command, *action)
	if err != nil {
		return fail(stderr, err)
	}
	return printResult(stdout, stderr, result)
}

func runPower(ctx context.Context, g *globals, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("power", flag.ContinueOnError)
	fs.SetOutput(stderr)
	identifier := fs.String("identifier", "", "Device identifier, name or address")
	action := fs.String("action", "", "on, off or status")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !required(stderr, [2]string{"identifier", *identifier}, [2]string{"action", *action}) {
		return exitUsage
	}

	e, err := newEnv(ctx, g, stderr, "")
	if err != nil {
		return fail(stderr, err)
	}
	defer e.Close()

	result, err := e.bridge.Power(ctx, *identifier, *action)
	if err != nil {
		return fail(stderr, err)
	}
	return printResult(stdout, stderr, result)
}

func runClearStorage(g *globals, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("clear-storage", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if g.Mock {
		path := g.Storage
		if path == "" {
			path = mockStoragePath
		}
		return printResult(stdout, stderr, storage.ClearResult{Status: "cleared", Cleared: true, Path: path})
	}

	cfg, err := loadConfig(g, "")
	if err != nil {
		return fail(stderr, err)
	}
	setupLogging(stderr, cfg.LogLevel)

	result, err := storage.Clear(cfg.Storage)
	if err != nil {
		return fail(stderr, err)
	}
	return printResult(stdout, stderr, result)
}

func printResult(stdout, stderr io.Writer, v any) int {
	if err := writeJSON(stdout, v); err != nil {
		return fail(stderr, err)
	}
	return exitOK
}

func runSession(ctx context.Context, g *globals, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	fs.SetOutput(stderr)
	identifier := fs.String("identifier", "", "Device identifier, name or address")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !required(stderr, [2]string{"identifier", *identifier}) {
		return exitUsage
	}

	e, err := newEnv(ctx, g, stderr, "")
	if err != nil {
		return fail(stderr, err)
	}
	defer e.Close()

	code := e.bridge.Session(ctx, *identifier, bufio.NewReader(stdin), session.NewWriter(stdout))
	if ctx.Err() != nil {
		fmt.Fprintln(stderr, "aborted")
		return exitAborted
	}
	return code
}
