// Package proto defines the run, task, and event model shared by the
// orchestrator and its transports.
package proto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one workflow execution for one user goal. A Run is exclusively
// owned by the streaming request that created it and is never shared
// across requests, so it carries no locking.
type Run struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserGoal  string    `json:"user_goal"`
	StartedAt time.Time `json:"started_at"`

	Phase               Phase    `json:"phase"`
	Tasks               []*Task  `json:"tasks"`
	CurrentTaskID       string   `json:"current_task_id,omitempty"`
	AnalysisResult      string   `json:"analysis_result,omitempty"`
	PlanningResult      string   `json:"planning_result,omitempty"`
	SupervisorFeedback  string   `json:"supervisor_feedback,omitempty"`
	SupervisorPassCount int      `json:"supervisor_pass_count"`
	Logs                []string `json:"logs"`
}

// NewRun creates a run in the idle phase.
func NewRun(projectID, userGoal string) *Run {
	return &Run{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		UserGoal:  userGoal,
		StartedAt: time.Now().UTC(),
		Phase:     PhaseIdle,
		Tasks:     []*Task{},
		Logs:      []string{},
	}
}

// TransitionPhase advances the run to the given phase, enforcing the
// canonical transition table.
func (r *Run) TransitionPhase(to Phase) error {
	if !IsValidPhaseTransition(r.Phase, to) {
		return fmt.Errorf("invalid phase transition %s -> %s for run %s", r.Phase, to, r.ID)
	}
	r.Phase = to
	return nil
}

// AppendLog records a run-level log line.
func (r *Run) AppendLog(line string) {
	r.Logs = append(r.Logs, line)
}

// SetTasks populates the task list. Tasks are populated exactly once, at
// the structuring phase; later calls are rejected.
func (r *Run) SetTasks(tasks []*Task) error {
	if len(r.Tasks) > 0 {
		return fmt.Errorf("tasks already populated for run %s", r.ID)
	}
	r.Tasks = tasks
	return nil
}

// TaskByID returns the task with the given id, or nil.
func (r *Run) TaskByID(id string) *Task {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// CompletedTasks returns tasks that reached the done status, in task order.
func (r *Run) CompletedTasks() []*Task {
	var done []*Task
	for _, t := range r.Tasks {
		if t.Status == TaskStatusDone {
			done = append(done, t)
		}
	}
	return done
}
