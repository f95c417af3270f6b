package kv

import (
	"context"
	"sync"
)

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage keeps slots in a map. Values do not survive the process.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]string

	// failSet, when non-nil, is returned by every SetItem. Tests use it to
	// simulate a failing device.
	failSet error
	failGet error
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return "", false, s.failGet
	}
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	s.items[key] = value
	return nil
}

func (s *MemoryStorage) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// FailWrites makes every subsequent SetItem return err; nil restores writes.
func (s *MemoryStorage) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = err
}

// FailReads makes every subsequent GetItem return err; nil restores reads.
func (s *MemoryStorage) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = err
}

// Close is a no-op.
func (s *MemoryStorage) Close() error { return nil }
