package schedule

import "github.com/lifeops/scheduler/internal/domain/fault"

// allowedTransitions is the closed lifecycle table. Archived is terminal.
var allowedTransitions = map[State][]State{
	StateDraft:     {StateActive},
	StateActive:    {StatePaused, StateCanceled, StateCompleted},
	StatePaused:    {StateActive, StateCanceled},
	StateCanceled:  {StateArchived},
	StateCompleted: {StateArchived},
	StateArchived:  {},
}

// ValidateTransition checks from -> to against the lifecycle table.
// A same-state transition is a no-op when allowNoop is set and a conflict
// otherwise; noop reports which case applied.
func ValidateTransition(from, to State, allowNoop bool) (noop bool, err error) {
	if !from.Valid() {
		return false, fault.Validation("state", "unrecognized state "+string(from))
	}
	if !to.Valid() {
		return false, fault.Validation("state", "unrecognized state "+string(to))
	}
	if from == to {
		if allowNoop {
			return true, nil
		}
		return false, fault.Conflict("redundant_transition",
			"schedule is already "+string(from))
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return false, nil
		}
	}
	return false, fault.InvalidTransition(string(from), string(to))
}
