// Package kv provides named string slots backed by local storage.
//
// A Storage holds opaque string values under keys. Backends: FileStorage (one
// file per key, locked against a second process), SQLiteStorage (a single
// key/value table) and MemoryStorage (process-local, for tests and ephemeral
// sessions).
package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Storage is a key-value store of string slots.
type Storage interface {
	// GetItem returns the value stored under key. found is false when the
	// key has never been set or was removed.
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	// SetItem replaces the value stored under key.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// ErrInvalidKey indicates a key is empty or unusable by the backend.
var ErrInvalidKey = errors.New("kv: invalid key")

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the storage backend named by backend rooted at path.
// The returned io.Closer releases locks and connections.
func Open(backend, path string) (Storage, io.Closer, error) {
	switch backend {
	case BackendFile:
		s, err := OpenFileStorage(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendSQLite:
		s, err := OpenSQLiteStorage(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendMemory:
		s := NewMemoryStorage()
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("kv: unknown backend %q", backend)
	}
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	return nil
}
