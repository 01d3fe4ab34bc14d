package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTransitionsForwardOnly(t *testing.T) {
	tests := []struct {
		name  string
		from  TaskStatus
		to    TaskStatus
		valid bool
	}{
		{"todo to analyzing", TaskStatusTodo, TaskStatusAnalyzing, true},
		{"analyzing to coding", TaskStatusAnalyzing, TaskStatusCoding, true},
		{"coding to reviewing", TaskStatusCoding, TaskStatusReviewing, true},
		{"reviewing to done", TaskStatusReviewing, TaskStatusDone, true},
		{"no skipping", TaskStatusTodo, TaskStatusCoding, false},
		{"no regression", TaskStatusCoding, TaskStatusAnalyzing, false},
		{"done is terminal", TaskStatusDone, TaskStatusReviewing, false},
		{"failed is terminal", TaskStatusFailed, TaskStatusTodo, false},
		{"failed from todo", TaskStatusTodo, TaskStatusFailed, true},
		{"failed from analyzing", TaskStatusAnalyzing, TaskStatusFailed, true},
		{"failed from coding", TaskStatusCoding, TaskStatusFailed, true},
		{"failed from reviewing", TaskStatusReviewing, TaskStatusFailed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidTaskTransition(tt.from, tt.to))
		})
	}
}

func TestTaskTransitionStampsCompletedAt(t *testing.T) {
	task := NewTask("test", "desc", PriorityMedium, "")
	require.NoError(t, task.Transition(TaskStatusAnalyzing))
	require.NoError(t, task.Transition(TaskStatusCoding))
	require.NoError(t, task.Transition(TaskStatusReviewing))
	assert.Nil(t, task.CompletedAt)

	require.NoError(t, task.Transition(TaskStatusDone))
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, *task.CompletedAt, task.UpdatedAt)
}

func TestTaskTransitionRejectsRegression(t *testing.T) {
	task := NewTask("test", "desc", PriorityMedium, "")
	require.NoError(t, task.Transition(TaskStatusAnalyzing))

	err := task.Transition(TaskStatusTodo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid task transition")
	assert.Equal(t, TaskStatusAnalyzing, task.Status)
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityCritical, ParsePriority("critical"))
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityMedium, ParsePriority(""))
	assert.Equal(t, PriorityMedium, ParsePriority("urgent"))
}

func TestSortTasksByPriorityStable(t *testing.T) {
	a := NewTask("a", "", PriorityLow, "")
	b := NewTask("b", "", PriorityCritical, "")
	c := NewTask("c", "", PriorityMedium, "")
	d := NewTask("d", "", PriorityCritical, "")
	e := NewTask("e", "", PriorityHigh, "")

	tasks := []*Task{a, b, c, d, e}
	SortTasksByPriority(tasks)

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	// Critical tasks keep their emission order.
	assert.Equal(t, []string{"b", "d", "e", "c", "a"}, titles)
}

func TestTaskSnapshotIsValueCopy(t *testing.T) {
	task := NewTask("test", "desc", PriorityHigh, "main.go")
	task.AppendLog("first")

	snap := task.Snapshot()
	task.AppendLog("second")
	snap.Logs[0] = "mutated"

	assert.Equal(t, []string{"first", "second"}, task.Logs)
	assert.Len(t, snap.Logs, 1)
}
