package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another process holds the storage directory lock.
var ErrLocked = errors.New("kv: storage is locked by another process")

// lockName is the advisory lock file inside the storage directory.
const lockName = ".lock"

// Compile-time check: FileStorage satisfies Storage.
var _ Storage = (*FileStorage)(nil)

// FileStorage keeps each slot in its own file under a base directory.
// Opening it takes an exclusive advisory lock on the directory, so a second
// process sharing the same directory fails fast instead of racing writes.
type FileStorage struct {
	baseDir string
	lock    *flock.Flock
}

// OpenFileStorage creates baseDir if needed and locks it.
func OpenFileStorage(baseDir string) (*FileStorage, error) {
	if baseDir == "" {
		return nil, errors.New("kv: file storage directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: creating directory: %w", err)
	}

	lock := flock.New(filepath.Join(baseDir, lockName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("kv: locking %s: %w", baseDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, baseDir)
	}
	return &FileStorage{baseDir: baseDir, lock: lock}, nil
}

// GetItem reads the slot file for key.
func (s *FileStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv: reading %s: %w", p, err)
	}
	return string(data), true, nil
}

// SetItem writes the slot file for key atomically: the value goes to a
// temporary file in the same directory which is then renamed over the slot.
func (s *FileStorage) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.baseDir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("kv: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("kv: writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("kv: syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kv: closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("kv: writing %s: %w", p, err)
	}
	return nil
}

// RemoveItem deletes the slot file for key.
func (s *FileStorage) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("kv: removing %s: %w", p, err)
	}
	return nil
}

// Close releases the directory lock.
func (s *FileStorage) Close() error {
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("kv: unlocking %s: %w", s.baseDir, err)
	}
	return nil
}

// path returns the slot file for key.
// It rejects keys that are empty, dot-segments, or contain path separators.
func (s *FileStorage) path(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	if key == "." || key == ".." || key != filepath.Base(key) || key == lockName {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.baseDir, key+".slot"), nil
}
