package todo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/deepnoodle-ai/todo/log"
	"github.com/deepnoodle-ai/todo/storage"
)

// DefaultKey is the storage key the task list is persisted under.
const DefaultKey = "tasks"

// Options configures a Store.
type Options struct {
	// Storage receives the serialized list after every mutation. Required.
	Storage storage.Storage

	// Key is the storage key. Defaults to DefaultKey.
	Key string

	// Logger defaults to a null logger.
	Logger log.Logger

	// Clock is used to derive task ids. Defaults to time.Now.
	Clock func() time.Time
}

// State is a read-only snapshot of a Store.
type State struct {
	Tasks        []Task
	PendingInput string

	// Notice is the most recent non-fatal storage error, or nil.
	Notice error
}

// Counts returns the number of done tasks and the total.
func (st State) Counts() (done, total int) {
	return countDone(st.Tasks), len(st.Tasks)
}

// Listener is called with the new state after every change.
type Listener func(State)

// Store is the single owner of a task list and the pending input. All
// mutations go through its methods and are written through to storage.
type Store struct {
	mu        sync.Mutex
	storage   storage.Storage
	key       string
	logger    log.Logger
	clock     func() time.Time
	tasks     []Task
	pending   string
	notice    error
	lastID    int64
	listeners map[int]Listener
	nextSub   int
}

// New creates a Store. Call Initialize to load the persisted list.
func New(opts Options) *Store {
	if opts.Storage == nil {
		panic("todo: Options.Storage is required")
	}
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNullLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		storage:   opts.Storage,
		key:       key,
		logger:    logger.With("key", key),
		clock:     clock,
		tasks:     []Task{},
		listeners: make(map[int]Listener),
	}
}

// Initialize replaces the list with the one held in storage. A missing value
// yields an empty list. A corrupt value or a failed read also yields an
// empty list; the error is returned and kept as the notice, and the store
// remains fully usable. Initialize never writes to storage.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	tasks, err := s.load(ctx)
	s.tasks = tasks
	s.lastID = 0
	for _, t := range tasks {
		s.lastID = max(s.lastID, t.ID)
	}
	s.notice = err
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return err
}

func (s *Store) load(ctx context.Context) ([]Task, error) {
	value, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read task list, starting empty", "error", err)
		return []Task{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !ok {
		s.logger.Debug("no stored task list")
		return []Task{}, nil
	}
	tasks, err := Decode(value)
	if err != nil {
		s.logger.Warn("discarding corrupt task list", "error", err, "bytes", len(value))
		return []Task{}, err
	}
	s.logger.Debug("loaded task list", "count", len(tasks))
	return tasks, nil
}

// SetPendingInput replaces the pending input. It does not validate or
// persist anything.
func (s *Store) SetPendingInput(text string) {
	s.mu.Lock()
	s.pending = text
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
}

// PendingInput returns the pending input.
func (s *Store) PendingInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Add appends a task built from the trimmed pending input and clears the
// input. When the trimmed input is empty Add does nothing and returns
// (nil, nil); the pending input is left as it was.
//
// The task is added even if persisting fails, in which case the returned
// error wraps ErrStorage.
func (s *Store) Add(ctx context.Context) (*Task, error) {
	s.mu.Lock()
	text := strings.TrimSpace(s.pending)
	if text == "" {
		s.mu.Unlock()
		return nil, nil
	}
	task := Task{ID: s.nextID(), Text: text}
	s.tasks = append(s.tasks, task)
	s.pending = ""
	err := s.persistLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()

	s.logger.Debug("added task", "id", task.ID)
	s.notify(state)
	return &task, err
}

// nextID derives an id from the clock in Unix milliseconds, bumping past the
// last issued id when the clock has not advanced.
func (s *Store) nextID() int64 {
	id := s.clock().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// ToggleDone flips the done flag of the task with the given id and reports
// whether it was found. The list is persisted either way.
func (s *Store) ToggleDone(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	found := false
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = !s.tasks[i].Done
			found = true
			break
		}
	}
	err := s.persistLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()

	if !found {
		s.logger.Debug("toggle: no such task", "id", id)
	}
	s.notify(state)
	return found, err
}

// Delete removes the task with the given id and reports whether it was
// found. The order of the remaining tasks is preserved and the list is
// persisted either way.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	found := false
	kept := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	err := s.persistLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()

	if !found {
		s.logger.Debug("delete: no such task", "id", id)
	}
	s.notify(state)
	return found, err
}

// persistLocked writes the full list under the store key. On failure the
// in-memory list is kept and the error becomes the notice. Must be called
// with s.mu held.
func (s *Store) persistLocked(ctx context.Context) error {
	value, err := Encode(s.tasks)
	if err == nil {
		err = s.storage.SetItem(ctx, s.key, value)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStorage, err)
		s.notice = err
		s.logger.Error("failed to persist task list", "error", err, "count", len(s.tasks))
		return err
	}
	s.notice = nil
	return nil
}

// Tasks returns a copy of the list.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Find returns the task with the given id.
func (s *Store) Find(id int64) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Counts returns the number of done tasks and the total.
func (s *Store) Counts() (done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countDone(s.tasks), len(s.tasks)
}

// Notice returns the most recent non-fatal storage error, or nil once a
// later write has succeeded.
func (s *Store) Notice() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe registers fn to be called after every change and returns a
// function that removes it. Listeners run on the goroutine that made the
// change, after the store lock is released.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) stateLocked() State {
	return State{
		Tasks:        cloneTasks(s.tasks),
		PendingInput: s.pending,
		Notice:       s.notice,
	}
}

func (s *Store) notify(state State) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.listeners[i]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

func countDone(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.Done {
			n++
		}
	}
	return n
}
