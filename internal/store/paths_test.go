package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDir(t *testing.T) {
	got, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("DefaultDataDir() error = %v", err)
	}
	if !strings.HasSuffix(got, DataDirName) {
		t.Errorf("DefaultDataDir() = %v, should end with %s", got, DataDirName)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("DefaultDataDir() = %v, should be absolute path", got)
	}
	homeDir, _ := os.UserHomeDir()
	if !strings.HasPrefix(got, homeDir) {
		t.Errorf("DefaultDataDir() = %v, should start with home directory %v", got, homeDir)
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	got, err := DefaultDatabasePath()
	if err != nil {
		t.Fatalf("DefaultDatabasePath() error = %v", err)
	}
	if filepath.Base(got) != DatabaseFileName {
		t.Errorf("DefaultDatabasePath() = %v, want file %s", got, DatabaseFileName)
	}
}

func TestEnsureDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", DataDirName)

	if err := EnsureDataDir(dir); err != nil {
		t.Fatalf("EnsureDataDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("data dir was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("data dir is not a directory")
	}

	// Calling again is a no-op.
	if err := EnsureDataDir(dir); err != nil {
		t.Errorf("EnsureDataDir() second call error = %v", err)
	}
}
