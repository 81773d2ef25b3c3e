package storage

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a single key of a FileStorage made by any
// process.
type Watcher struct {
	fsw     *fsnotify.Watcher
	name    string
	changes chan struct{}
	errors  chan error
	done    chan struct{}
}

// Watch starts watching key. The watch is registered before Watch returns,
// so any later write is reported. Call Close to release the watcher.
func (s *FileStorage) Watch(key string) (*Watcher, error) {
	p, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory: atomic replacement swaps the file's inode.
	if err := fsw.Add(s.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}
	w := &Watcher{
		fsw:     fsw,
		name:    filepath.Base(p),
		changes: make(chan struct{}, 1),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes delivers a signal after the key's file is created, written,
// replaced or removed. Bursts of events are coalesced into one signal.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Errors delivers errors reported by the underlying watcher.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	const mask = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.name || !event.Op.Has(mask) {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}
