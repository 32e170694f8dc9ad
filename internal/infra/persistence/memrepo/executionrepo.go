package memrepo

import (
	"context"
	"sort"

	"github.com/lifeops/scheduler/internal/biz/execution"
)

type ExecutionRepo struct {
	store
	items map[uint64]*execution.Execution
}

func NewExecutionRepo() *ExecutionRepo {
	return &ExecutionRepo{items: make(map[uint64]*execution.Execution)}
}

func (r *ExecutionRepo) Create(ctx context.Context, e *execution.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ScheduleID == e.ScheduleID && existing.TraceID == e.TraceID {
			return execution.ErrDuplicateTrace
		}
	}
	e.ID = r.id()
	now := r.touch()
	e.CreatedAt = now
	e.UpdatedAt = now
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *ExecutionRepo) GetByID(ctx context.Context, id uint64) (*execution.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *ExecutionRepo) GetByScheduleAndTrace(ctx context.Context, scheduleID uint64, traceID string) (*execution.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.ScheduleID == scheduleID && e.TraceID == traceID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ExecutionRepo) GetLatestForSchedule(ctx context.Context, scheduleID uint64) (*execution.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *execution.Execution
	for _, e := range r.items {
		if e.ScheduleID != scheduleID {
			continue
		}
		if latest == nil || e.ID > latest.ID {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *ExecutionRepo) Save(ctx context.Context, e *execution.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.UpdatedAt = r.touch()
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *ExecutionRepo) Update(ctx context.Context, id uint64, patch *execution.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.AttemptCount != nil {
		e.AttemptCount = *patch.AttemptCount
	}
	if patch.RetryCount != nil {
		e.RetryCount = *patch.RetryCount
	}
	if patch.FailureCount != nil {
		e.FailureCount = *patch.FailureCount
	}
	if patch.StartedAt != nil {
		e.StartedAt = patch.StartedAt
	}
	if patch.FinishedAt != nil {
		e.FinishedAt = patch.FinishedAt
	}
	if patch.NextRetryAt != nil {
		e.NextRetryAt = *patch.NextRetryAt
	}
	if patch.LastErrorCode != nil {
		e.LastErrorCode = *patch.LastErrorCode
	}
	if patch.LastErrorMessage != nil {
		e.LastErrorMessage = *patch.LastErrorMessage
	}
	e.UpdatedAt = r.touch()
	return nil
}

func (r *ExecutionRepo) List(ctx context.Context, filter *execution.Filter, offset, limit int) ([]*execution.Execution, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*execution.Execution
	for _, e := range r.items {
		if filter != nil {
			if v, ok := filter.ScheduleID.Get(); ok && e.ScheduleID != v {
				continue
			}
			if v, ok := filter.TaskIntentID.Get(); ok && e.TaskIntentID != v {
				continue
			}
			if v, ok := filter.Status.Get(); ok && e.Status != v {
				continue
			}
			if v, ok := filter.ScheduledFrom.Get(); ok && e.ScheduledFor.Before(v) {
				continue
			}
			if v, ok := filter.ScheduledTo.Get(); ok && e.ScheduledFor.After(v) {
				continue
			}
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ScheduledFor.After(out[j].ScheduledFor)
		}
		return out[i].ID > out[j].ID
	})
	total := int64(len(out))
	return page(out, offset, limit), total, nil
}
