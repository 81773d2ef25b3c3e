package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deepnoodle-ai/wonton/assert"
)

// ---------------------------------------------------------------------------
// Shared contract
// ---------------------------------------------------------------------------

func storages(t *testing.T) map[string]Storage {
	fs, err := NewFileStorage(t.TempDir(), FileOptions{})
	assert.NoError(t, err)
	return map[string]Storage{
		"memory": NewMemoryStorage(MemoryOptions{}),
		"file":   fs,
	}
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()
	for name, st := range storages(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := st.GetItem(ctx, "tasks")
			assert.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, st.SetItem(ctx, "tasks", `[{"id":1,"text":"a","done":false}]`))
			value, ok, err := st.GetItem(ctx, "tasks")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":1,"text":"a","done":false}]`, value)

			// Full overwrite, never a merge.
			assert.NoError(t, st.SetItem(ctx, "tasks", `[]`))
			value, _, err = st.GetItem(ctx, "tasks")
			assert.NoError(t, err)
			assert.Equal(t, `[]`, value)

			assert.NoError(t, st.RemoveItem(ctx, "tasks"))
			_, ok, err = st.GetItem(ctx, "tasks")
			assert.NoError(t, err)
			assert.False(t, ok)

			// Removing again is fine.
			assert.NoError(t, st.RemoveItem(ctx, "tasks"))
		})
	}
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"", ".", "..", "a/b", `a\b`, "../tasks", "x..y"} {
		t.Run(key, func(t *testing.T) {
			err := ValidateKey(key)
			assert.True(t, errors.Is(err, ErrInvalidKey))
		})
	}
	assert.NoError(t, ValidateKey("tasks"))
	assert.NoError(t, ValidateKey("tasks-work"))
}

func TestInvalidKeyRejected(t *testing.T) {
	ctx := context.Background()
	for name, st := range storages(t) {
		t.Run(name, func(t *testing.T) {
			err := st.SetItem(ctx, "../escape", "x")
			assert.True(t, errors.Is(err, ErrInvalidKey))
			_, _, err = st.GetItem(ctx, "")
			assert.True(t, errors.Is(err, ErrInvalidKey))
		})
	}
}

// ---------------------------------------------------------------------------
// Quota
// ---------------------------------------------------------------------------

func TestQuotaKeepsPreviousValue(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStorage(t.TempDir(), FileOptions{MaxBytes: 8})
	assert.NoError(t, err)
	mem := NewMemoryStorage(MemoryOptions{MaxBytes: 8})

	for name, st := range map[string]Storage{"file": fs, "memory": mem} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, st.SetItem(ctx, "tasks", "[]"))
			err := st.SetItem(ctx, "tasks", strings.Repeat("x", 9))
			assert.True(t, errors.Is(err, ErrQuotaExceeded))

			value, ok, err := st.GetItem(ctx, "tasks")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[]", value)
		})
	}
}

// ---------------------------------------------------------------------------
// MemoryStorage
// ---------------------------------------------------------------------------

func TestMemoryStorageFail(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage(MemoryOptions{})
	assert.NoError(t, st.SetItem(ctx, "tasks", "[]"))
	assert.Equal(t, 1, st.Writes())

	st.Fail(ErrUnavailable)
	assert.True(t, errors.Is(st.SetItem(ctx, "tasks", "[1]"), ErrUnavailable))
	_, _, err := st.GetItem(ctx, "tasks")
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, 1, st.Writes())

	st.Fail(nil)
	value, ok, err := st.GetItem(ctx, "tasks")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)
}

// ---------------------------------------------------------------------------
// FileStorage
// ---------------------------------------------------------------------------

func TestFileStorageLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStorage(dir, FileOptions{})
	assert.NoError(t, err)

	assert.NoError(t, st.SetItem(ctx, "tasks", "[]"))
	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStorageCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "todo")
	st, err := NewFileStorage(dir, FileOptions{})
	assert.NoError(t, err)
	assert.Equal(t, dir, st.Dir())

	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStorage(dir, FileOptions{})
	assert.NoError(t, err)
	assert.NoError(t, st.SetItem(ctx, "tasks", `[{"id":7,"text":"x","done":true}]`))

	reopened, err := NewFileStorage(dir, FileOptions{})
	assert.NoError(t, err)
	value, ok, err := reopened.GetItem(ctx, "tasks")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":7,"text":"x","done":true}]`, value)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	assert.NoError(t, err)

	got, err := ExpandHome("~/.local/share/todo")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/todo"), got)

	got, err = ExpandHome("/var/lib/todo")
	assert.NoError(t, err)
	assert.Equal(t, "/var/lib/todo", got)
}

func TestWatchReportsWrites(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStorage(t.TempDir(), FileOptions{})
	assert.NoError(t, err)

	w, err := st.Watch("tasks")
	assert.NoError(t, err)
	defer w.Close()

	assert.NoError(t, st.SetItem(ctx, "other", "[]"))
	assert.NoError(t, st.SetItem(ctx, "tasks", "[]"))

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for tasks")
	}
}
