package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/todo"
	"github.com/deepnoodle-ai/todo/log"
	"github.com/deepnoodle-ai/todo/view"
)

const sessionHelp = `Type a task and press enter to add it. Commands:
  :done N   toggle task N
  :rm N     delete task N
  :list     show the list
  :help     show this help
  :quit     leave`

// interactive runs a line-oriented session on in. Every change to the store
// re-renders the list; storage failures are shown and the session goes on.
func (a *app) interactive(ctx context.Context, in io.Reader) error {
	logger := log.Ctx(ctx)
	last := view.Plain(a.store.Snapshot())
	unsubscribe := a.store.Subscribe(func(state todo.State) {
		// Typing alone does not change the rendered list.
		plain := view.Plain(state)
		if plain == last {
			return
		}
		last = plain
		if err := a.renderer.Render(a.out, state); err != nil {
			logger.Error("render failed", "error", err)
		}
	})
	defer unsubscribe()

	if err := a.render(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, sessionHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		if quit := a.handleLine(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// handleLine dispatches one line of input and reports whether the session
// should end.
func (a *app) handleLine(ctx context.Context, line string) bool {
	command, arg, isCommand := parseCommand(line)
	if !isCommand {
		a.store.SetPendingInput(line)
		if _, err := a.store.Add(ctx); err != nil {
			log.Ctx(ctx).Debug("add not saved", "error", err)
		}
		return false
	}

	var err error
	switch command {
	case "q", "quit", "exit":
		return true
	case "help", "h":
		fmt.Fprintln(a.out, sessionHelp)
	case "list", "ls":
		err = a.render()
	case "done", "d":
		var id int64
		if id, err = view.Resolve(a.store.Tasks(), arg); err == nil {
			_, err = a.store.ToggleDone(ctx, id)
		}
	case "rm", "delete":
		var id int64
		if id, err = view.Resolve(a.store.Tasks(), arg); err == nil {
			_, err = a.store.Delete(ctx, id)
		}
	}
	if err != nil && !errors.Is(err, todo.ErrStorage) {
		// Storage failures are already shown with the list.
		fmt.Fprintf(a.out, "%v\n", err)
	}
	return false
}

// sessionCommands are the names parseCommand recognizes after a colon.
var sessionCommands = map[string]bool{
	"q": true, "quit": true, "exit": true,
	"h": true, "help": true,
	"ls": true, "list": true,
	"d": true, "done": true,
	"rm": true, "delete": true,
}

// parseCommand reports whether line is a session command. Anything else,
// including text such as ":) call mom", is task text.
func parseCommand(line string) (command, arg string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return "", "", false
	}
	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return "", "", false
	}
	command = strings.ToLower(fields[0])
	if !sessionCommands[command] {
		return "", "", false
	}
	if len(fields) > 1 {
		arg = fields[1]
	}
	return command, arg, true
}
