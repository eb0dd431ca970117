// Package store provides durable key-value backends for the pet profile.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates the requested key has no value.
var ErrNotFound = errors.New("record not found")

// KV is a durable byte store keyed by string.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names a KV implementation.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ascendia")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "ascendia")
}

// DefaultPath returns the default database file for a backend.
func DefaultPath(backend string) string {
	switch backend {
	case BackendBolt:
		return filepath.Join(DataDir(), "pet.bolt")
	default:
		return filepath.Join(DataDir(), "pet.db")
	}
}

// Open opens the named backend at path. An empty path uses DefaultPath.
func Open(backend, path string) (KV, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendSQLite
	}
	if path == "" {
		path = DefaultPath(backend)
	}

	switch backend {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendBolt:
		return OpenBolt(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}
	return nil
}
