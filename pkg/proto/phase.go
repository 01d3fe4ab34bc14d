package proto

import "fmt"

// Phase represents a stage of the run workflow state machine.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseAnalyzing   Phase = "analyzing"
	PhasePlanning    Phase = "planning"
	PhaseStructuring Phase = "structuring"
	PhaseExecuting   Phase = "executing"
	PhaseReviewing   Phase = "reviewing"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
)

// PhaseTransitions defines the canonical phase transition map for runs.
// This is the single source of truth; tests and the orchestrator must match
// it exactly. The direct idle→executing edge is the single-call path used
// for minimal backends that skip analysis, planning, and review.
var PhaseTransitions = map[Phase][]Phase{
	PhaseIdle:        {PhaseAnalyzing, PhaseExecuting, PhaseFailed},
	PhaseAnalyzing:   {PhasePlanning, PhaseFailed},
	PhasePlanning:    {PhaseStructuring, PhaseFailed},
	PhaseStructuring: {PhaseExecuting, PhaseFailed},
	PhaseExecuting:   {PhaseReviewing, PhaseCompleted, PhaseFailed},
	PhaseReviewing:   {PhaseCompleted, PhaseFailed},

	// Terminal phases have no outgoing edges.
	PhaseCompleted: {},
	PhaseFailed:    {},
}

// IsValidPhaseTransition checks if a transition between two phases is
// allowed by the canonical state machine.
func IsValidPhaseTransition(from, to Phase) bool {
	allowed, exists := PhaseTransitions[from]
	if !exists {
		return false
	}
	for _, p := range allowed {
		if p == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the phase has no outgoing transitions.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// ValidatePhase checks if a phase value is known.
func ValidatePhase(p Phase) error {
	switch p {
	case PhaseIdle, PhaseAnalyzing, PhasePlanning, PhaseStructuring,
		PhaseExecuting, PhaseReviewing, PhaseCompleted, PhaseFailed:
		return nil
	default:
		return fmt.Errorf("invalid phase: %s", p)
	}
}
