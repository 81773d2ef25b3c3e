package todo

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Task is a single entry in the list.
type Task struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Encode serializes tasks in the persisted layout: a JSON array of
// {"id","text","done"} records. A nil slice encodes as an empty array.
func Encode(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a persisted value. Anything other than an array of records
// with non-blank text and unique ids is rejected with ErrCorruptData.
func Decode(value string) ([]Task, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: value is not a list", ErrCorruptData)
	}
	var tasks []Task
	if err := json.Unmarshal([]byte(trimmed), &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	seen := make(map[int64]struct{}, len(tasks))
	for i, task := range tasks {
		if strings.TrimSpace(task.Text) == "" {
			return nil, fmt.Errorf("%w: task %d has empty text", ErrCorruptData, i)
		}
		if _, dup := seen[task.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrCorruptData, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}
