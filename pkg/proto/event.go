package proto

import "time"

// EventType identifies the kind of notification pushed to the event
// transport.
type EventType string

const (
	EventTypeToken              EventType = "token"
	EventTypePhaseChange        EventType = "phase_change"
	EventTypeTaskUpdate         EventType = "task_update"
	EventTypeTaskComplete       EventType = "task_complete"
	EventTypeSupervisorFeedback EventType = "supervisor_feedback"
	EventTypeError              EventType = "error"
	EventTypeComplete           EventType = "complete"
	EventTypeLog                EventType = "log"
)

// Event is one immutable notification. Task snapshots are value copies of
// state at emission time; consumers must not assume they can mutate shared
// run or task objects through an event.
type Event struct {
	Type      EventType `json:"type"`
	Content   string    `json:"content,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Phase     Phase     `json:"phase,omitempty"`
	Task      *Task     `json:"task,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTokenEvent creates a token event carrying one output fragment.
func NewTokenEvent(content string) Event {
	return Event{Type: EventTypeToken, Content: content, Timestamp: time.Now().UTC()}
}

// NewPhaseChangeEvent creates a phase_change event.
func NewPhaseChangeEvent(phase Phase) Event {
	return Event{Type: EventTypePhaseChange, Phase: phase, Timestamp: time.Now().UTC()}
}

// NewTaskUpdateEvent creates a task_update event with a snapshot of the task.
func NewTaskUpdateEvent(task *Task) Event {
	snapshot := task.Snapshot()
	return Event{Type: EventTypeTaskUpdate, TaskID: task.ID, Task: &snapshot, Timestamp: time.Now().UTC()}
}

// NewTaskCompleteEvent creates a task_complete event with a snapshot of the task.
func NewTaskCompleteEvent(task *Task) Event {
	snapshot := task.Snapshot()
	return Event{Type: EventTypeTaskComplete, TaskID: task.ID, Task: &snapshot, Timestamp: time.Now().UTC()}
}

// NewSupervisorFeedbackEvent creates a supervisor_feedback event.
func NewSupervisorFeedbackEvent(feedback string) Event {
	return Event{Type: EventTypeSupervisorFeedback, Content: feedback, Timestamp: time.Now().UTC()}
}

// NewErrorEvent creates an error event carrying the failure message.
func NewErrorEvent(message string) Event {
	return Event{Type: EventTypeError, Error: message, Timestamp: time.Now().UTC()}
}

// NewCompleteEvent creates the terminal complete event.
func NewCompleteEvent() Event {
	return Event{Type: EventTypeComplete, Timestamp: time.Now().UTC()}
}

// NewLogEvent creates a log event.
func NewLogEvent(line string) Event {
	return Event{Type: EventTypeLog, Content: line, Timestamp: time.Now().UTC()}
}
