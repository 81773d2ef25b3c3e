package storage

import (
	"context"
	"sync"
)

// MemoryOptions configures a MemoryStorage.
type MemoryOptions struct {
	// MaxBytes limits the size of a single value. Zero means no limit.
	MaxBytes int64
}

// MemoryStorage is a map-backed Storage. Data is lost when the process
// exits.
type MemoryStorage struct {
	mu       sync.RWMutex
	items    map[string]string
	maxBytes int64
	failure  error
	writes   int
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage(opts MemoryOptions) *MemoryStorage {
	return &MemoryStorage{
		items:    make(map[string]string),
		maxBytes: opts.MaxBytes,
	}
}

// Fail makes every subsequent call return err, simulating storage that has
// been disabled. Pass nil to restore normal operation.
func (s *MemoryStorage) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// Writes returns the number of successful SetItem calls.
func (s *MemoryStorage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return "", false, s.failure
	}
	value, ok := s.items[key]
	return value, ok, nil
}

func (s *MemoryStorage) SetItem(ctx context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	if err := checkQuota(key, value, s.maxBytes); err != nil {
		return err
	}
	s.items[key] = value
	s.writes++
	return nil
}

func (s *MemoryStorage) RemoveItem(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	delete(s.items, key)
	return nil
}

var _ Storage = (*MemoryStorage)(nil)
