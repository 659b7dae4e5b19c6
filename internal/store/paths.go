package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirName is the directory holding the local database and decision log.
const DataDirName = ".gamesoul"

// DatabaseFileName is the SQLite database file inside the data directory.
const DatabaseFileName = "gamesoul.db"

// DefaultDataDir returns the default data directory.
// On Unix: ~/.gamesoul
// On Windows: %USERPROFILE%\.gamesoul
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DataDirName), nil
}

// DefaultDatabasePath returns the SQLite path inside the default data directory.
func DefaultDatabasePath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFileName), nil
}

// EnsureDataDir creates dir if it doesn't exist.
func EnsureDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
