package proto

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo      TaskStatus = "todo"
	TaskStatusAnalyzing TaskStatus = "analyzing"
	TaskStatusCoding    TaskStatus = "coding"
	TaskStatusReviewing TaskStatus = "reviewing"
	TaskStatusDone      TaskStatus = "done"
	TaskStatusFailed    TaskStatus = "failed"
)

// TaskTransitions defines the forward-only status walk for tasks. Statuses
// never regress; failed is reachable from every non-terminal status.
var TaskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusTodo:      {TaskStatusAnalyzing, TaskStatusFailed},
	TaskStatusAnalyzing: {TaskStatusCoding, TaskStatusFailed},
	TaskStatusCoding:    {TaskStatusReviewing, TaskStatusFailed},
	TaskStatusReviewing: {TaskStatusDone, TaskStatusFailed},
	TaskStatusDone:      {},
	TaskStatusFailed:    {},
}

// IsValidTaskTransition checks if a status transition is allowed.
func IsValidTaskTransition(from, to TaskStatus) bool {
	allowed, exists := TaskTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is done or failed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusFailed
}

// Priority orders task execution. Lower rank runs first.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the numeric execution rank: critical=0 … low=3.
// Unknown priorities sort after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ParsePriority normalizes a priority string, defaulting to medium.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// Task is one unit of planned implementation work, owned by a Run.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Assignee    string     `json:"assignee"`
	FilePath    string     `json:"file_path,omitempty"`
	Logs        []string   `json:"logs"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTask creates a task in the todo status assigned to the worker role.
func NewTask(title, description string, priority Priority, filePath string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Status:      TaskStatusTodo,
		Priority:    priority,
		Assignee:    "worker",
		FilePath:    filePath,
		Logs:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Transition advances the task to the given status, enforcing the
// transition table. CompletedAt is stamped when the task reaches done.
func (t *Task) Transition(to TaskStatus) error {
	if !IsValidTaskTransition(t.Status, to) {
		return fmt.Errorf("invalid task transition %s -> %s for task %s", t.Status, to, t.ID)
	}
	t.Status = to
	t.UpdatedAt = time.Now().UTC()
	if to == TaskStatusDone {
		completed := t.UpdatedAt
		t.CompletedAt = &completed
	}
	return nil
}

// AppendLog records a log line on the task.
func (t *Task) AppendLog(line string) {
	t.Logs = append(t.Logs, line)
	t.UpdatedAt = time.Now().UTC()
}

// LastLog returns the most recent log line, or empty if none.
func (t *Task) LastLog() string {
	if len(t.Logs) == 0 {
		return ""
	}
	return t.Logs[len(t.Logs)-1]
}

// Snapshot returns a value copy of the task safe to embed in events.
func (t *Task) Snapshot() Task {
	copy := *t
	copy.Logs = append([]string(nil), t.Logs...)
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		copy.CompletedAt = &completed
	}
	return copy
}

// SortTasksByPriority orders tasks by ascending priority rank. The sort is
// stable: ties preserve structuring-phase emission order.
func SortTasksByPriority(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
	})
}
