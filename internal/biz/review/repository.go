package review

import "context"

type Repo interface {
	// CreateOutput persists the snapshot together with its items.
	CreateOutput(ctx context.Context, output *Output) error
	GetOutput(ctx context.Context, id uint64) (*Output, error)
	// ListOutputs orders by id descending (newest snapshot first).
	ListOutputs(ctx context.Context, offset, limit int) ([]*Output, int64, error)
}
