package memrepo

import (
	"context"
	"sort"

	"github.com/lifeops/scheduler/internal/biz/intent"
)

type IntentRepo struct {
	store
	items map[uint64]*intent.TaskIntent
}

func NewIntentRepo() *IntentRepo {
	return &IntentRepo{items: make(map[uint64]*intent.TaskIntent)}
}

func (r *IntentRepo) Create(ctx context.Context, i *intent.TaskIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i.ID = r.id()
	now := r.touch()
	i.CreatedAt = now
	i.UpdatedAt = now
	cp := *i
	r.items[i.ID] = &cp
	return nil
}

func (r *IntentRepo) GetByID(ctx context.Context, id uint64) (*intent.TaskIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *IntentRepo) Update(ctx context.Context, id uint64, patch *intent.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok {
		return nil
	}
	if patch.SupersededByIntentID != nil {
		i.SupersededByIntentID = patch.SupersededByIntentID
	}
	i.UpdatedAt = r.touch()
	return nil
}

func (r *IntentRepo) List(ctx context.Context, filter *intent.Filter, offset, limit int) ([]*intent.TaskIntent, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*intent.TaskIntent
	for _, i := range r.items {
		if filter != nil {
			if v, ok := filter.CreatorID.Get(); ok && i.CreatorID != v {
				continue
			}
			if v, ok := filter.OriginRef.Get(); ok && i.OriginRef != v {
				continue
			}
			if v, ok := filter.Superseded.Get(); ok && (i.SupersededByIntentID != nil) != v {
				continue
			}
		}
		cp := *i
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	return page(out, offset, limit), total, nil
}
