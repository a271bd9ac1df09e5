package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mabino/atmo/pkg/session"
)

// writeJSON prints v as one compact JSON line.
func writeJSON(w io.Writer, v any) error {
	return session.NewWriter(w).Write(v)
}

// fail reports err as a single stderr line and returns the exit code.
func fail(stderr io.Writer, err error) int {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "aborted")
		return exitAborted
	}
	fmt.Fprintln(stderr, err.Error())
	return exitFailure
}

// required reports the first empty flag value as a usage error.
func required(stderr io.Writer, flags ...[2]string) bool {
	for _, f := range flags {
		if f[1] == "" {
			fmt.Fprintf(stderr, "missing required flag: --%s\n", f[0])
			return false
		}
	}
	return true
}
