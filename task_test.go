package todo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	value, err := Encode([]Task{{ID: 1, Text: "Buy milk"}, {ID: 2, Text: "Walk", Done: true}})
	require.NoError(t, err)
	require.Equal(t, `[{"id":1,"text":"Buy milk","done":false},{"id":2,"text":"Walk","done":true}]`, value)

	empty, err := Encode(nil)
	require.NoError(t, err)
	require.Equal(t, `[]`, empty)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d tasks", n), func(t *testing.T) {
			tasks := make([]Task, n)
			for i := range tasks {
				tasks[i] = Task{ID: int64(1000 + i), Text: fmt.Sprintf("task %d ✓", i), Done: i%2 == 0}
			}
			value, err := Encode(tasks)
			require.NoError(t, err)
			decoded, err := Decode(value)
			require.NoError(t, err)
			require.Equal(t, tasks, decoded)
		})
	}
}

func TestDecodeToleratesWhitespace(t *testing.T) {
	tasks, err := Decode(" \n[ {\"id\": 3, \"text\": \"x\", \"done\": true} ]\n")
	require.NoError(t, err)
	require.Equal(t, []Task{{ID: 3, Text: "x", Done: true}}, tasks)
}

func TestDecodeRejects(t *testing.T) {
	for _, value := range []string{"", "null", "{}", `"tasks"`, "[1,2]", "[null]", `[{"id":1}]`} {
		t.Run(value, func(t *testing.T) {
			_, err := Decode(value)
			require.ErrorIs(t, err, ErrCorruptData)
		})
	}
}
