package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  Phase
		to    Phase
		valid bool
	}{
		{"idle to analyzing", PhaseIdle, PhaseAnalyzing, true},
		{"idle to executing single call", PhaseIdle, PhaseExecuting, true},
		{"analyzing to planning", PhaseAnalyzing, PhasePlanning, true},
		{"planning to structuring", PhasePlanning, PhaseStructuring, true},
		{"structuring to executing", PhaseStructuring, PhaseExecuting, true},
		{"executing to reviewing", PhaseExecuting, PhaseReviewing, true},
		{"executing to completed single call", PhaseExecuting, PhaseCompleted, true},
		{"reviewing to completed", PhaseReviewing, PhaseCompleted, true},
		{"no backwards", PhasePlanning, PhaseAnalyzing, false},
		{"no phase skip", PhaseAnalyzing, PhaseExecuting, false},
		{"completed is terminal", PhaseCompleted, PhaseAnalyzing, false},
		{"failed is terminal", PhaseFailed, PhaseIdle, false},
		{"failed from anywhere", PhaseStructuring, PhaseFailed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidPhaseTransition(tt.from, tt.to))
		})
	}
}

func TestEveryNonTerminalPhaseCanFail(t *testing.T) {
	for from := range PhaseTransitions {
		if from.IsTerminal() {
			continue
		}
		assert.True(t, IsValidPhaseTransition(from, PhaseFailed), "phase %s must be able to fail", from)
	}
}

func TestValidatePhase(t *testing.T) {
	for from := range PhaseTransitions {
		assert.NoError(t, ValidatePhase(from))
	}
	assert.NoError(t, ValidatePhase(PhaseCompleted))
	assert.NoError(t, ValidatePhase(PhaseFailed))

	err := ValidatePhase(Phase("rebooting"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid phase")
	assert.Error(t, ValidatePhase(Phase("")))
}

func TestRunTransitionPhase(t *testing.T) {
	run := NewRun("proj", "build a thing")
	assert.Equal(t, PhaseIdle, run.Phase)

	require.NoError(t, run.TransitionPhase(PhaseAnalyzing))
	assert.Equal(t, PhaseAnalyzing, run.Phase)

	err := run.TransitionPhase(PhaseExecuting)
	require.Error(t, err)
	assert.Equal(t, PhaseAnalyzing, run.Phase)
}

func TestRunSetTasksOnce(t *testing.T) {
	run := NewRun("proj", "goal")
	require.NoError(t, run.SetTasks([]*Task{NewTask("a", "", PriorityMedium, "")}))

	err := run.SetTasks([]*Task{NewTask("b", "", PriorityMedium, "")})
	require.Error(t, err)
	assert.Len(t, run.Tasks, 1)
}

func TestRunTaskByID(t *testing.T) {
	run := NewRun("proj", "goal")
	task := NewTask("a", "", PriorityMedium, "")
	require.NoError(t, run.SetTasks([]*Task{task}))

	assert.Same(t, task, run.TaskByID(task.ID))
	assert.Nil(t, run.TaskByID("missing"))
}
