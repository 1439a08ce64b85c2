package testhelpers

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path. body is everything after the shebang line.
func WriteScript(dir, name, body string) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create script directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0600); err != nil {
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	// nolint:gosec // Script must be executable
	if err := os.Chmod(path, 0700); err != nil {
		return "", fmt.Errorf("failed to make script executable: %w", err)
	}
	return path, nil
}

// ReadLines returns the lines of a file written by a test script, or nil if
// the script never ran.
func ReadLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return splitLines(string(data))
}
