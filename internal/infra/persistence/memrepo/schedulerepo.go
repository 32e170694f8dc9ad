package memrepo

import (
	"context"
	"sort"
	"time"

	"github.com/lifeops/scheduler/internal/biz/schedule"
)

type ScheduleRepo struct {
	store
	items map[uint64]*schedule.Schedule
}

func NewScheduleRepo() *ScheduleRepo {
	return &ScheduleRepo{items: make(map[uint64]*schedule.Schedule)}
}

func (r *ScheduleRepo) Create(ctx context.Context, s *schedule.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.id()
	now := r.touch()
	s.CreatedAt = now
	s.UpdatedAt = now
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *ScheduleRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*schedule.Schedule, error) {
	return r.GetByID(ctx, id)
}

func (r *ScheduleRepo) Update(ctx context.Context, id uint64, patch *schedule.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil
	}
	if patch.State != nil {
		s.State = *patch.State
	}
	if patch.Timezone != nil {
		s.Timezone = *patch.Timezone
	}
	if patch.Definition != nil {
		s.Definition = *patch.Definition
	}
	if patch.NextRunAt != nil {
		s.NextRunAt = *patch.NextRunAt
	}
	if patch.LastRunAt != nil {
		s.LastRunAt = patch.LastRunAt
	}
	if patch.LastRunStatus != nil {
		s.LastRunStatus = *patch.LastRunStatus
	}
	if patch.FailureCount != nil {
		s.FailureCount = *patch.FailureCount
	}
	if patch.LastExecutionID != nil {
		s.LastExecutionID = patch.LastExecutionID
	}
	s.UpdatedAt = r.touch()
	return nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *ScheduleRepo) List(ctx context.Context, filter *schedule.Filter, offset, limit int) ([]*schedule.Schedule, int64, error) {
	all := r.sorted(func(s *schedule.Schedule) bool {
		if filter == nil {
			return true
		}
		if v, ok := filter.TaskIntentID.Get(); ok && s.TaskIntentID != v {
			return false
		}
		if v, ok := filter.Type.Get(); ok && s.Type != v {
			return false
		}
		if v, ok := filter.State.Get(); ok && s.State != v {
			return false
		}
		return true
	})
	total := int64(len(all))
	return page(all, offset, limit), total, nil
}

func (r *ScheduleRepo) FindActiveWithNextRunBefore(ctx context.Context, cutoff time.Time) ([]*schedule.Schedule, error) {
	return r.sorted(func(s *schedule.Schedule) bool {
		return s.State == schedule.StateActive && s.NextRunAt != nil && s.NextRunAt.Before(cutoff)
	}), nil
}

func (r *ScheduleRepo) FindFailing(ctx context.Context, threshold int, staleCutoff time.Time) ([]*schedule.Schedule, error) {
	return r.sorted(func(s *schedule.Schedule) bool {
		if s.State != schedule.StateActive && s.State != schedule.StatePaused {
			return false
		}
		if s.FailureCount >= threshold {
			return true
		}
		return s.LastRunStatus == schedule.RunStatusFailed &&
			s.LastRunAt != nil && s.LastRunAt.Before(staleCutoff)
	}), nil
}

func (r *ScheduleRepo) FindPausedSince(ctx context.Context, cutoff time.Time) ([]*schedule.Schedule, error) {
	return r.sorted(func(s *schedule.Schedule) bool {
		return s.State == schedule.StatePaused && !s.UpdatedAt.After(cutoff)
	}), nil
}

// Seed inserts directly, bypassing Create's timestamping.
func (r *ScheduleRepo) Seed(s *schedule.Schedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == 0 {
		s.ID = r.id()
	} else if s.ID > r.nextID {
		r.nextID = s.ID
	}
	cp := *s
	r.items[s.ID] = &cp
}

func (r *ScheduleRepo) sorted(keep func(*schedule.Schedule) bool) []*schedule.Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*schedule.Schedule
	for _, s := range r.items {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
