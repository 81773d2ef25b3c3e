package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/deepnoodle-ai/todo"
	"github.com/deepnoodle-ai/todo/config"
	"github.com/deepnoodle-ai/todo/log"
	"github.com/deepnoodle-ai/todo/storage"
	"github.com/deepnoodle-ai/todo/view"
	"github.com/mattn/go-isatty"
)

type appOptions struct {
	dir        string
	configPath string
	logLevel   string
	noColor    bool
	ephemeral  bool
	out        io.Writer
	logger     log.Logger
}

// app wires a task store to its storage and a renderer.
type app struct {
	cfg        *config.Config
	configPath string
	store    *todo.Store
	files    *storage.FileStorage // nil when ephemeral
	renderer *view.Renderer
	out      io.Writer
	logger   log.Logger
}

func openApp(opts appOptions) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dir != "" {
		cfg.StorageDir = opts.dir
	}
	if opts.logLevel != "" {
		if !log.IsValidLevel(opts.logLevel) {
			return nil, fmt.Errorf("invalid log level: %s", opts.logLevel)
		}
		cfg.LogLevel = opts.logLevel
	}
	log.SetDefaultLevel(log.LevelFromString(cfg.LogLevel))

	logger := opts.logger
	if logger == nil {
		logger = log.New(log.GetDefaultLevel())
	}
	out := opts.out
	if out == nil {
		out = os.Stdout
	}

	a := &app{cfg: cfg, configPath: opts.configPath, out: out, logger: logger}

	var st storage.Storage
	if opts.ephemeral {
		st = storage.NewMemoryStorage(storage.MemoryOptions{MaxBytes: cfg.MaxBytes})
	} else {
		a.files, err = storage.NewFileStorage(cfg.StorageDir, storage.FileOptions{
			MaxBytes: cfg.MaxBytes,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		st = a.files
	}

	a.store = todo.New(todo.Options{Storage: st, Key: cfg.Key, Logger: logger})
	a.renderer = view.New(view.Options{
		Color: useColor(cfg, opts.noColor, out),
		Width: terminalWidth(),
	})

	// A corrupt or unreadable list is not fatal: the store starts empty and
	// the notice is shown with the list.
	if err := a.store.Initialize(a.withLogger(context.Background())); err != nil {
		logger.Warn("starting with an empty task list", "error", err)
	}
	return a, nil
}

// withLogger returns parent carrying the app logger.
func (a *app) withLogger(parent context.Context) context.Context {
	return log.WithLogger(parent, a.logger)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

func useColor(cfg *config.Config, noColor bool, out io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if cfg.Color != nil {
		return *cfg.Color
	}
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func terminalWidth() int {
	width, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil || width < 0 {
		return 0
	}
	return width
}

func (a *app) render() error {
	return a.renderer.Render(a.out, a.store.Snapshot())
}

func (a *app) list(match string) error {
	state := a.store.Snapshot()
	rows, err := view.Filter(state.Tasks, match)
	if err != nil {
		return err
	}
	return a.renderer.RenderRows(a.out, rows, state)
}

// add stores text as a new task. Blank text is ignored and the list is
// shown unchanged.
func (a *app) add(ctx context.Context, text string) error {
	a.store.SetPendingInput(text)
	task, err := a.store.Add(ctx)
	if task == nil && err == nil {
		log.Ctx(ctx).Debug("ignoring blank task text")
	}
	return a.finish(err)
}

func (a *app) toggle(ctx context.Context, ref string) error {
	id, err := view.Resolve(a.store.Tasks(), ref)
	if err != nil {
		return err
	}
	_, err = a.store.ToggleDone(ctx, id)
	return a.finish(err)
}

func (a *app) remove(ctx context.Context, ref string) error {
	id, err := view.Resolve(a.store.Tasks(), ref)
	if err != nil {
		return err
	}
	_, err = a.store.Delete(ctx, id)
	return a.finish(err)
}

// finish renders the new state. A one-shot command exits right after, so a
// failed write means the change is lost and is reported as an error.
func (a *app) finish(err error) error {
	if rerr := a.render(); rerr != nil {
		return rerr
	}
	if err != nil {
		return fmt.Errorf("change was not saved: %w", err)
	}
	return nil
}

// showConfig prints the effective configuration. With save it is also saved
// to the config file, which must not exist yet.
func (a *app) showConfig(ctx context.Context, save bool) error {
	if save {
		path := a.configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := a.cfg.Save(path); err != nil {
			return err
		}
		log.Ctx(ctx).Info("wrote config file", "path", path)
	}
	return a.cfg.Write(a.out)
}
