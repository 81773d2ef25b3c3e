package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/todo"
	"github.com/deepnoodle-ai/todo/log"
	"github.com/deepnoodle-ai/todo/view"
)

// watch renders the list, then prints a diff and the new list each time
// another process rewrites it. Each change is read through a fresh store,
// the same way a restart would hydrate.
func (a *app) watch(ctx context.Context) error {
	if a.files == nil {
		return errors.New("watch needs file storage; drop --ephemeral")
	}
	w, err := a.files.Watch(a.cfg.Key)
	if err != nil {
		return err
	}
	defer w.Close()
	logger := log.Ctx(ctx)

	if err := a.render(); err != nil {
		return err
	}
	last := view.Plain(a.store.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors():
			logger.Warn("watch error", "error", err)
		case <-w.Changes():
			fresh := todo.New(todo.Options{Storage: a.files, Key: a.cfg.Key, Logger: logger})
			if err := fresh.Initialize(ctx); err != nil {
				logger.Warn("reloaded an unreadable task list", "error", err)
			}
			state := fresh.Snapshot()
			plain := view.Plain(state)
			diff, err := view.Diff(last, plain)
			if err != nil {
				return err
			}
			if diff == "" {
				continue
			}
			last = plain
			fmt.Fprint(a.out, diff)
			fmt.Fprintln(a.out)
			if err := a.renderer.Render(a.out, state); err != nil {
				return err
			}
		}
	}
}
