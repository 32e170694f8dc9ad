package schedule

import (
	"time"

	"github.com/lifeops/scheduler/internal/biz/actor"
)

// Definition carries the per-type cadence fields. Only the fields relevant
// to the schedule's Type are set; ValidateDefinition enforces that shape.
type Definition struct {
	// one_time
	RunAt *time.Time

	// interval
	IntervalCount int
	IntervalUnit  IntervalUnit
	AnchorAt      *time.Time

	// calendar_rule
	RRule            string
	CalendarAnchorAt *time.Time

	// conditional
	PredicateSubject        string
	PredicateOperator       PredicateOperator
	PredicateValue          string
	EvaluationIntervalCount int
	EvaluationIntervalUnit  IntervalUnit
}

// Schedule owns one cadence for a task intent plus its lifecycle state.
type Schedule struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	// TaskIntentID is immutable after creation.
	TaskIntentID uint64

	Type       Type
	State      State
	Timezone   string
	Definition Definition

	NextRunAt     *time.Time
	LastRunAt     *time.Time
	LastRunStatus RunStatus
	FailureCount  int

	// LastExecutionID is a weak reference, not an ownership edge.
	LastExecutionID *uint64

	CreatorType    actor.Type
	CreatorID      string
	CreatorChannel string
}

// Location resolves the schedule's timezone, falling back to UTC.
func (s *Schedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Anchor returns the reference the cadence is computed from.
func (s *Schedule) Anchor() time.Time {
	switch s.Type {
	case TypeInterval:
		if s.Definition.AnchorAt != nil {
			return *s.Definition.AnchorAt
		}
	case TypeCalendarRule:
		if s.Definition.CalendarAnchorAt != nil {
			return *s.Definition.CalendarAnchorAt
		}
	}
	return s.CreatedAt
}

// Patch is a partial update applied through the repository.
type Patch struct {
	State           *State
	Timezone        *string
	Definition      *Definition
	NextRunAt       **time.Time
	LastRunAt       *time.Time
	LastRunStatus   *RunStatus
	FailureCount    *int
	LastExecutionID *uint64
}

func NewPatch() *Patch {
	return &Patch{}
}

func (p *Patch) WithState(state State) *Patch {
	p.State = &state
	return p
}

func (p *Patch) WithTimezone(tz string) *Patch {
	p.Timezone = &tz
	return p
}

func (p *Patch) WithDefinition(def Definition) *Patch {
	p.Definition = &def
	return p
}

// WithNextRunAt sets next_run_at; pass nil to clear it.
func (p *Patch) WithNextRunAt(t *time.Time) *Patch {
	p.NextRunAt = &t
	return p
}

func (p *Patch) WithLastRun(at time.Time, status RunStatus) *Patch {
	p.LastRunAt = &at
	p.LastRunStatus = &status
	return p
}

func (p *Patch) WithFailureCount(n int) *Patch {
	p.FailureCount = &n
	return p
}

func (p *Patch) WithLastExecutionID(id uint64) *Patch {
	p.LastExecutionID = &id
	return p
}
