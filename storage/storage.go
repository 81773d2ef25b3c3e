// Package storage provides the local key/value storage that backs a task
// list. The Storage interface follows the browser local-storage contract:
// string values addressed by key, each write replacing the whole value.
//
// File-backed storage:
//
//	st, _ := storage.NewFileStorage("~/.local/share/todo", storage.FileOptions{})
//	_ = st.SetItem(ctx, "tasks", `[]`)
//
// In-memory storage, for tests and throwaway sessions:
//
//	st := storage.NewMemoryStorage(storage.MemoryOptions{})
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidKey is returned when a key is empty or contains path
	// separators or relative path components.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrQuotaExceeded is returned when a value does not fit in the
	// configured quota. The previously stored value is left untouched.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrUnavailable is returned when the storage has been disabled.
	ErrUnavailable = errors.New("storage unavailable")
)

// Storage is a synchronous string key/value store.
type Storage interface {
	// GetItem returns the value stored under key. ok is false when there is
	// no value.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value in full.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes the value stored under key. Removing a missing key
	// is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// ValidateKey rejects keys that could escape a storage directory.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, "/\\") ||
		strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func checkQuota(key, value string, maxBytes int64) error {
	if maxBytes > 0 && int64(len(value)) > maxBytes {
		return fmt.Errorf("%w: %q needs %d bytes, limit is %d",
			ErrQuotaExceeded, key, len(value), maxBytes)
	}
	return nil
}
