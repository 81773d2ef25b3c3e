package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deepnoodle-ai/todo/log"
)

const fileExt = ".json"

// FileOptions configures a FileStorage.
type FileOptions struct {
	// MaxBytes limits the size of a single value. Zero means no limit.
	MaxBytes int64

	// Logger receives debug output for reads and writes.
	Logger log.Logger
}

// FileStorage persists each key as a file in a directory.
//
// The value for key k lives in {dir}/{k}.json. Writes go to a temporary
// file in the same directory that is then renamed over the target, so a
// reader never observes a partially written value.
type FileStorage struct {
	mu       sync.RWMutex
	dir      string
	maxBytes int64
	logger   log.Logger
}

// NewFileStorage creates a FileStorage rooted at dir. A leading "~/" is
// expanded to the user's home directory and the directory is created if it
// does not exist.
func NewFileStorage(dir string, opts FileOptions) (*FileStorage, error) {
	dir, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNullLogger()
	}
	return &FileStorage{
		dir:      dir,
		maxBytes: opts.MaxBytes,
		logger:   logger.With("storage_dir", dir),
	}, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(dir[1:], "/")), nil
	}
	return dir, nil
}

// Dir returns the storage directory.
func (s *FileStorage) Dir() string {
	return s.dir
}

// Path returns the file that holds the value for key.
func (s *FileStorage) Path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	p := filepath.Clean(filepath.Join(s.dir, key+fileExt))
	if !strings.HasPrefix(p, s.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves outside storage directory", ErrInvalidKey, key)
	}
	return p, nil
}

func (s *FileStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	p, err := s.Path(key)
	if err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	s.logger.Debug("read item", "key", key, "bytes", len(data))
	return string(data), true, nil
}

func (s *FileStorage) SetItem(ctx context.Context, key, value string) error {
	p, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := checkQuota(key, value, s.maxBytes); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		cleanup()
		return fmt.Errorf("replace %q: %w", key, err)
	}
	s.logger.Debug("wrote item", "key", key, "bytes", len(value))
	return nil
}

func (s *FileStorage) RemoveItem(ctx context.Context, key string) error {
	p, err := s.Path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

var _ Storage = (*FileStorage)(nil)
