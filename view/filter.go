package view

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/todo"
	"github.com/gobwas/glob"
)

// Filter returns the rows whose text matches the glob pattern, ignoring
// case. Positions refer to the unfiltered list. An empty pattern matches
// everything.
func Filter(tasks []todo.Task, pattern string) ([]Row, error) {
	rows := Rows(tasks)
	if pattern == "" {
		return rows, nil
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	matched := rows[:0]
	for _, row := range rows {
		if g.Match(strings.ToLower(row.Task.Text)) {
			matched = append(matched, row)
		}
	}
	return matched, nil
}
