package memrepo

import (
	"context"
	"sort"

	"github.com/lifeops/scheduler/internal/biz/review"
)

type ReviewRepo struct {
	store
	outputs map[uint64]*review.Output
}

func NewReviewRepo() *ReviewRepo {
	return &ReviewRepo{outputs: make(map[uint64]*review.Output)}
}

func (r *ReviewRepo) CreateOutput(ctx context.Context, output *review.Output) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	output.ID = r.id()
	output.CreatedAt = r.touch()
	for _, item := range output.Items {
		item.ID = r.id()
		item.OutputID = output.ID
	}
	r.outputs[output.ID] = output
	return nil
}

func (r *ReviewRepo) GetOutput(ctx context.Context, id uint64) (*review.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, ok := r.outputs[id]
	if !ok {
		return nil, nil
	}
	return out, nil
}

func (r *ReviewRepo) ListOutputs(ctx context.Context, offset, limit int) ([]*review.Output, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*review.Output
	for _, o := range r.outputs {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	return page(out, offset, limit), total, nil
}
