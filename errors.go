package todo

import "errors"

var (
	// ErrCorruptData is returned by Initialize when the stored value cannot
	// be decoded into a task list. The store starts empty.
	ErrCorruptData = errors.New("stored task list is corrupt")

	// ErrStorage wraps failures of the underlying storage. The in-memory
	// list is kept when a write fails.
	ErrStorage = errors.New("task storage failed")
)
