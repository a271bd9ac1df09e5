package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ClearResult reports the outcome of removing the credential store.
type ClearResult struct {
	Status  string `json:"status"`
	Cleared bool   `json:"cleared"`
	Path    string `json:"path"`
}

// Clear deletes the credential store at path (DefaultPath when empty),
// including SQLite sidecar files.
func Clear(path string) (ClearResult, error) {
	path, err := ResolvePath(path)
	if err != nil {
		return ClearResult{}, err
	}

	removed := true
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return ClearResult{}, fmt.Errorf("unable to clear stored credentials: %w", err)
		}
		removed = false
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ClearResult{}, fmt.Errorf("unable to clear stored credentials: %w", err)
		}
	}

	if !removed {
		return ClearResult{Status: "missing", Cleared: false, Path: path}, nil
	}
	return ClearResult{Status: "cleared", Cleared: true, Path: path}, nil
}
