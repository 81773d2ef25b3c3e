// Package view renders task lists for the terminal.
//
// Rendering is a pure function of a todo.State. Tasks are shown with their
// 1-based position, which is also how the CLI refers to them; Resolve maps a
// position back to a task id.
package view

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/todo"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const (
	// Title is printed above the list.
	Title = "My To Do List"

	// Placeholder is printed instead of an empty list.
	Placeholder = "No tasks yet 🚀"

	// NoMatches is printed when a filter hides every task.
	NoMatches = "No matching tasks"

	checkedBox   = "[x]"
	uncheckedBox = "[ ]"
)

// ErrNoSuchTask is returned by Resolve for positions outside the list.
var ErrNoSuchTask = errors.New("no such task")

// Options configures a Renderer.
type Options struct {
	// Color enables ANSI styling.
	Color bool

	// Width is the terminal width long task text is wrapped to. Zero
	// disables wrapping.
	Width int
}

// Renderer writes task lists.
type Renderer struct {
	width int

	title   *color.Color
	done    *color.Color
	pending *color.Color
	muted   *color.Color
	warning *color.Color
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	r := &Renderer{
		width:   opts.Width,
		title:   color.New(color.FgCyan, color.Bold),
		done:    color.New(color.CrossedOut, color.Faint),
		pending: color.New(color.Bold),
		muted:   color.New(color.FgHiBlack),
		warning: color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{r.title, r.done, r.pending, r.muted, r.warning} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Row is a task together with its position in the full list.
type Row struct {
	Position int
	Task     todo.Task
}

// Rows numbers tasks from 1.
func Rows(tasks []todo.Task) []Row {
	rows := make([]Row, len(tasks))
	for i, t := range tasks {
		rows[i] = Row{Position: i + 1, Task: t}
	}
	return rows
}

// Render writes the title, every task, a progress footer and the store
// notice, if any.
func (r *Renderer) Render(w io.Writer, state todo.State) error {
	return r.RenderRows(w, Rows(state.Tasks), state)
}

// RenderRows is Render restricted to the given rows, for filtered listings.
// The footer still counts the whole list.
func (r *Renderer) RenderRows(w io.Writer, rows []Row, state todo.State) error {
	var b strings.Builder
	b.WriteString(r.title.Sprint(Title))
	b.WriteString("\n\n")

	switch {
	case len(state.Tasks) == 0:
		b.WriteString(r.muted.Sprint(Placeholder))
		b.WriteString("\n")
	case len(rows) == 0:
		b.WriteString(r.muted.Sprint(NoMatches))
		b.WriteString("\n")
	default:
		digits := len(strconv.Itoa(len(state.Tasks)))
		for _, row := range rows {
			b.WriteString(r.line(row, digits))
			b.WriteString("\n")
		}
	}

	if done, total := state.Counts(); total > 0 {
		b.WriteString("\n")
		b.WriteString(r.muted.Sprintf("%d/%d done", done, total))
		b.WriteString("\n")
	}
	if state.Notice != nil {
		b.WriteString(r.warning.Sprintf("! %v", state.Notice))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) line(row Row, digits int) string {
	box := uncheckedBox
	if row.Task.Done {
		box = checkedBox
	}
	prefix := fmt.Sprintf("%*d. %s ", digits, row.Position, box)
	style := r.pending
	if row.Task.Done {
		style = r.done
	}
	if r.width <= 0 {
		return prefix + style.Sprint(row.Task.Text)
	}

	// Long text wraps under itself, never truncated.
	indent := runewidth.StringWidth(prefix)
	avail := max(r.width-indent, 1)
	lines := strings.Split(runewidth.Wrap(row.Task.Text, avail), "\n")
	for i, l := range lines {
		lines[i] = style.Sprint(l)
	}
	return prefix + strings.Join(lines, "\n"+strings.Repeat(" ", indent))
}

// Resolve maps a 1-based position, as shown by Render, to a task id.
func Resolve(tasks []todo.Task, ref string) (int64, error) {
	pos, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(ref), "#"))
	if err != nil {
		return 0, fmt.Errorf("invalid task number %q", ref)
	}
	if pos < 1 || pos > len(tasks) {
		return 0, fmt.Errorf("%w: %d", ErrNoSuchTask, pos)
	}
	return tasks[pos-1].ID, nil
}
