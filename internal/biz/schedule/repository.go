package schedule

import (
	"context"
	"time"

	"github.com/samber/mo"
)

type Repo interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id uint64) (*Schedule, error)
	// GetByIDForUpdate takes a row lock on the schedule. Only meaningful
	// inside a transaction started with Execute; it is the serialization
	// point for concurrent mutations of the same schedule.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Schedule, error)
	Update(ctx context.Context, id uint64, patch *Patch) error
	Delete(ctx context.Context, id uint64) error
	// List orders by id ascending for deterministic pagination.
	List(ctx context.Context, filter *Filter, offset, limit int) ([]*Schedule, int64, error)

	// Review queries, all read-only and ordered by id ascending.

	// FindActiveWithNextRunBefore returns active schedules whose
	// next_run_at is set and older than cutoff.
	FindActiveWithNextRunBefore(ctx context.Context, cutoff time.Time) ([]*Schedule, error)
	// FindFailing returns schedules with failure_count >= threshold, or a
	// failed last run older than staleCutoff.
	FindFailing(ctx context.Context, threshold int, staleCutoff time.Time) ([]*Schedule, error)
	// FindPausedSince returns paused schedules untouched since cutoff.
	FindPausedSince(ctx context.Context, cutoff time.Time) ([]*Schedule, error)

	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

type Filter struct {
	TaskIntentID mo.Option[uint64]
	Type         mo.Option[Type]
	State        mo.Option[State]
}
