package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbench/pkg/proto"
)

func TestParseTaskListExtractsArrayFromProse(t *testing.T) {
	response := "Here is the plan:\n[{\"title\":\"A\",\"priority\":\"high\"}]"
	parsed := ParseTaskList(response)
	require.False(t, parsed.Fallback)
	require.Len(t, parsed.Specs, 1)
	assert.Equal(t, "A", parsed.Specs[0].Title)
	assert.Equal(t, "high", parsed.Specs[0].Priority)

	tasks := parsed.Materialize()
	require.Len(t, tasks, 1)
	assert.Equal(t, "A", tasks[0].Title)
	assert.Equal(t, proto.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, proto.TaskStatusTodo, tasks[0].Status)
}

func TestParseTaskListMultipleEntries(t *testing.T) {
	response := `[
		{"title": "Setup", "description": "scaffold", "priority": "critical", "filePath": "main.go"},
		{"title": "API", "description": "add handler", "priority": "medium"}
	]`
	parsed := ParseTaskList(response)
	require.False(t, parsed.Fallback)
	require.Len(t, parsed.Specs, 2)
	assert.Equal(t, "main.go", parsed.Specs[0].FilePath)
	assert.Equal(t, "", parsed.Specs[1].FilePath)
}

func TestParseTaskListFallbackOnNoArray(t *testing.T) {
	response := "I cannot produce a task list for this request."
	parsed := ParseTaskList(response)
	require.True(t, parsed.Fallback)

	tasks := parsed.Materialize()
	require.Len(t, tasks, 1)
	assert.Equal(t, response, tasks[0].Description)
	assert.Equal(t, proto.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, proto.TaskStatusTodo, tasks[0].Status)
}

func TestParseTaskListRepairsMalformedJSON(t *testing.T) {
	// Trailing comma is invalid JSON but repairable.
	response := `[{"title": "A", "priority": "low",},]`
	parsed := ParseTaskList(response)
	require.False(t, parsed.Fallback)
	require.Len(t, parsed.Specs, 1)
	assert.Equal(t, "A", parsed.Specs[0].Title)
}

func TestParseTaskListGreedySpan(t *testing.T) {
	// The span runs from the first '[' to the last ']', so interior
	// arrays stay intact.
	response := `prefix [{"title":"A","description":"uses arr[0]","priority":"low"}] suffix`
	parsed := ParseTaskList(response)
	require.False(t, parsed.Fallback)
	require.Len(t, parsed.Specs, 1)
	assert.Equal(t, "uses arr[0]", parsed.Specs[0].Description)
}

func TestParseTaskListUnknownPriorityDefaultsMedium(t *testing.T) {
	parsed := ParseTaskList(`[{"title":"A","priority":"urgent"}]`)
	require.False(t, parsed.Fallback)
	tasks := parsed.Materialize()
	require.Len(t, tasks, 1)
	assert.Equal(t, proto.PriorityMedium, tasks[0].Priority)
}
