package intent

import (
	"time"

	"github.com/lifeops/scheduler/internal/biz/actor"
)

// TaskIntent is the durable "why" behind a schedule. It is created once per
// logical intent and immutable afterwards, except for the supersession
// pointer set when a newer intent replaces it.
type TaskIntent struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	Summary        string
	Details        string
	CreatorType    actor.Type
	CreatorID      string
	CreatorChannel string

	// OriginRef correlates the intent to an external trigger,
	// e.g. a conversation id. Optional.
	OriginRef string

	// SupersededByIntentID forms the supersession chain. Nil while current.
	SupersededByIntentID *uint64
}

// Supersede points this intent at its replacement. Returns the patch to
// persist, or nil when already superseded by the same intent.
func (i *TaskIntent) Supersede(byID uint64) *Patch {
	if i.SupersededByIntentID != nil && *i.SupersededByIntentID == byID {
		return nil
	}
	i.SupersededByIntentID = &byID
	return new(Patch).WithSupersededBy(byID)
}

// Patch holds the only mutable field of a task intent.
type Patch struct {
	SupersededByIntentID *uint64
}

func (p *Patch) WithSupersededBy(id uint64) *Patch {
	p.SupersededByIntentID = &id
	return p
}
