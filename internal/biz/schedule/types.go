package schedule

// Type is the cadence kind of a schedule.
type Type string

const (
	TypeOneTime      Type = "one_time"
	TypeInterval     Type = "interval"
	TypeCalendarRule Type = "calendar_rule"
	TypeConditional  Type = "conditional"
)

func (t Type) Valid() bool {
	switch t {
	case TypeOneTime, TypeInterval, TypeCalendarRule, TypeConditional:
		return true
	}
	return false
}

// IsRecurring reports whether the schedule fires more than once.
func (t Type) IsRecurring() bool {
	return t != TypeOneTime
}

// State is the lifecycle state of a schedule.
type State string

const (
	StateDraft     State = "draft"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateCanceled  State = "canceled"
	StateArchived  State = "archived"
	StateCompleted State = "completed"
)

func (s State) Valid() bool {
	switch s {
	case StateDraft, StateActive, StatePaused, StateCanceled, StateArchived, StateCompleted:
		return true
	}
	return false
}

func (s State) Terminal() bool {
	return s == StateArchived
}

// IntervalUnit is the unit of an interval or evaluation-interval step.
type IntervalUnit string

const (
	UnitMinute IntervalUnit = "minute"
	UnitHour   IntervalUnit = "hour"
	UnitDay    IntervalUnit = "day"
	UnitWeek   IntervalUnit = "week"
	UnitMonth  IntervalUnit = "month"
)

func (u IntervalUnit) Valid() bool {
	switch u {
	case UnitMinute, UnitHour, UnitDay, UnitWeek, UnitMonth:
		return true
	}
	return false
}

// PredicateOperator compares a resolved subject value against the
// configured predicate value.
type PredicateOperator string

const (
	OpEq      PredicateOperator = "eq"
	OpNeq     PredicateOperator = "neq"
	OpGt      PredicateOperator = "gt"
	OpGte     PredicateOperator = "gte"
	OpLt      PredicateOperator = "lt"
	OpLte     PredicateOperator = "lte"
	OpExists  PredicateOperator = "exists"
	OpMatches PredicateOperator = "matches"
)

func (o PredicateOperator) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpExists, OpMatches:
		return true
	}
	return false
}

// RunStatus is the outcome of a schedule's most recent run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)
