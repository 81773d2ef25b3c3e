// Package todo implements a persistent task list.
//
// A [Store] owns an insertion-ordered list of [Task] values and the pending
// input typed by the user. Every mutation writes the whole list through to a
// [storage.Storage] under a single key, and the list is read back once when
// the store is initialized.
//
//	st, _ := storage.NewFileStorage("~/.local/share/todo", storage.FileOptions{})
//	tasks := todo.New(todo.Options{Storage: st})
//	_ = tasks.Initialize(ctx)
//	tasks.SetPendingInput("Buy milk")
//	task, _ := tasks.Add(ctx)
//	_, _ = tasks.ToggleDone(ctx, task.ID)
//
// Storage failures never discard in-memory state. They are returned wrapped
// in [ErrStorage] or [ErrCorruptData] and remembered as the store's notice
// until the next successful write.
package todo
