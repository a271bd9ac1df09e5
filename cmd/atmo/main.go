package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const usage = `atmo - control media streaming devices on the local network

Usage:
  atmo [global options] <command> [options]

Commands:
  scan            Discover devices and print them as JSON
  pair            Pair a protocol with a device
  unpair          Remove stored credentials for a protocol
  command         Send one remote-control command
  power           Turn a device on or off, or read its power state
  clear-storage   Delete the credential store
  session         Run the line-delimited JSON control session on stdin/stdout
  serve           Start the HTTP API
  mcp             Serve MCP tools on stdio

Global options:
  --mock            Use simulated devices
  --storage PATH    Credential store path (default: ~/.config/atmo/credentials.db)
  --no-storage      Do not load or save credentials
  --config PATH     Config file (default: ~/.config/atmo/config.toml)
  --log-level LVL   debug, info, warn or error

Run 'atmo <command> --help' for more information on a command.
`

const (
	exitOK      = 0
	exitUsage   = 1
	exitFailure = 2
	exitAborted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	g, rest, code, ok := parseGlobals(args[1:], stderr)
	if !ok {
		return code
	}
	if len(rest) == 0 {
		fmt.Fprint(stdout, usage)
		return exitUsage
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "scan":
		return runScan(ctx, g, cmdArgs, stdout, stderr)
	case "pair":
		return runPair(ctx, g, cmdArgs, stdin, stdout, stderr)
	case "unpair":
		return runUnpair(ctx, g, cmdArgs, stdout, stderr)
	case "command":
		return runCommand(ctx, g, cmdArgs, stdout, stderr)
	case "power":
		return runPower(ctx, g, cmdArgs, stdout, stderr)
	case "clear-storage":
		return runClearStorage(g, cmdArgs, stdout, stderr)
	case "session":
		return runSession(ctx, g, cmdArgs, stdin, stdout, stderr)
	case "serve":
		return runServe(ctx, g, cmdArgs, stderr)
	case "mcp":
		return runMCP(ctx, g, cmdArgs, stderr)
	case "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	case "version":
		fmt.Fprintf(stdout, "atmo %s\n", Version)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
}

// globals holds the options accepted before the subcommand.
type globals struct {
	Mock       bool
	Storage    string
	NoStorage  bool
	ConfigPath string
	LogLevel   string
}

func parseGlobals(args []string, stderr io.Writer) (*globals, []string, int, bool) {
	fs := flag.NewFlagSet("atmo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	g := &globals{}
	fs.BoolVar(&g.Mock, "mock", false, "Use simulated devices")
	fs.StringVar(&g.Storage, "storage", "", "Credential store path")
	fs.BoolVar(&g.NoStorage, "no-storage", false, "Do not load or save credentials")
	fs.StringVar(&g.ConfigPath, "config", "", "Config file path")
	fs.StringVar(&g.LogLevel, "log-level", "", "Log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, exitOK, false
		}
		return nil, nil, exitUsage, false
	}
	return g, fs.Args(), exitOK, true
}

// parseFlags parses a subcommand's flags; ok is false when the caller
// should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, false
		}
		return exitUsage, false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected argument: %s\n", fs.Arg(0))
		return exitUsage, false
	}
	return exitOK, true
}
