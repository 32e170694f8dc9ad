package command

import (
	"time"

	"github.com/samber/mo"

	"github.com/lifeops/scheduler/internal/biz/schedule"
)

// CreateRequest carries everything needed to mint a task intent and its
// schedule in one transaction.
type CreateRequest struct {
	IntentSummary string
	IntentDetails string
	OriginRef     string

	Type       schedule.Type
	Timezone   string
	Definition schedule.Definition

	// InitialState must be draft or active; empty defaults to active.
	InitialState schedule.State

	// RequireFutureRunAt rejects a one_time run_at in the past.
	RequireFutureRunAt bool
}

// UpdateRequest is a partial schedule update. TaskIntentID is present only
// to reject attempts to change it; the field is immutable.
type UpdateRequest struct {
	TaskIntentID mo.Option[uint64]
	Timezone     mo.Option[string]
	Definition   mo.Option[schedule.Definition]
}

// TransitionOptions tweaks pause/resume behavior.
type TransitionOptions struct {
	// AllowNoop accepts a same-state pause or resume as an idempotent
	// re-application instead of a conflict. Defaults to false.
	AllowNoop bool
}

// RunNowRequest asks for an immediate out-of-cadence trigger.
type RunNowRequest struct {
	// ScheduledFor defaults to now when unset.
	ScheduledFor mo.Option[time.Time]
	// TraceID is generated when empty.
	TraceID string
}
