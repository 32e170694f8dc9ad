package intent

import (
	"context"

	"github.com/samber/mo"
)

type Repo interface {
	Create(ctx context.Context, intent *TaskIntent) error
	GetByID(ctx context.Context, id uint64) (*TaskIntent, error)
	Update(ctx context.Context, id uint64, patch *Patch) error
	List(ctx context.Context, filter *Filter, offset, limit int) ([]*TaskIntent, int64, error)
}

// Filter narrows intent listings. Results are ordered by id ascending.
type Filter struct {
	CreatorID  mo.Option[string]
	OriginRef  mo.Option[string]
	Superseded mo.Option[bool]
}
