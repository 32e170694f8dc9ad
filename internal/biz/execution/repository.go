package execution

import (
	"context"
	"time"

	"github.com/samber/mo"
)

type Repo interface {
	// Create inserts a new execution. A (schedule_id, trace_id) collision
	// returns ErrDuplicateTrace; the check is atomic with the insert.
	Create(ctx context.Context, e *Execution) error
	GetByID(ctx context.Context, id uint64) (*Execution, error)
	// GetByScheduleAndTrace resolves the dedupe key.
	GetByScheduleAndTrace(ctx context.Context, scheduleID uint64, traceID string) (*Execution, error)
	// GetLatestForSchedule returns the most recently created execution of a
	// schedule, or nil when it never ran.
	GetLatestForSchedule(ctx context.Context, scheduleID uint64) (*Execution, error)
	Save(ctx context.Context, e *Execution) error
	Update(ctx context.Context, id uint64, patch *Patch) error
	// List orders by scheduled_for descending, id descending as tiebreak.
	List(ctx context.Context, filter *Filter, offset, limit int) ([]*Execution, int64, error)

	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

type Filter struct {
	ScheduleID   mo.Option[uint64]
	TaskIntentID mo.Option[uint64]
	Status       mo.Option[Status]
	ScheduledFrom mo.Option[time.Time]
	ScheduledTo   mo.Option[time.Time]
}
