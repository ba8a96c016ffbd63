package utils

import (
	"errors"
	"os"
	"path/filepath"
)

// Outcome describes what a write did to the target file
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// WriteFile writes data to a file, creating directories as needed
func WriteFile(path string, data []byte, perm os.FileMode) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, perm)
}

// WriteFileIfChanged replaces path with data unless it already holds the
// same content
func WriteFileIfChanged(path string, data []byte, perm os.FileMode) (Outcome, error) {
	current, size, err := FileDigest(path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if exists && size == int64(len(data)) && current == Digest(data) {
		return OutcomeUnchanged, nil
	}

	if err := WriteFile(path, data, perm); err != nil {
		return "", err
	}
	if exists {
		return OutcomeUpdated, nil
	}
	return OutcomeCreated, nil
}

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
