package view

import (
	"strings"

	"github.com/deepnoodle-ai/todo"
	"github.com/pmezard/go-difflib/difflib"
)

// Plain renders state without color or truncation. This is the form
// compared by Diff.
func Plain(state todo.State) string {
	var b strings.Builder
	_ = New(Options{}).Render(&b, state)
	return b.String()
}

// Diff returns a unified diff between two renderings, or "" when they are
// equal.
func Diff(before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	})
}
