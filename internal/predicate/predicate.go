// Package predicate evaluates the condition of conditional schedules
// against an externally resolved subject value.
package predicate

import (
	"context"
	"time"

	"github.com/lifeops/scheduler/internal/biz/actor"
)

// Status is the outcome of one evaluation.
type Status string

const (
	StatusTrue    Status = "true"
	StatusFalse   Status = "false"
	StatusError   Status = "error"
	StatusUnknown Status = "unknown"
)

// Resolver looks up the current value of a predicate subject. A nil value
// means the subject resolved to nothing; an error maps to StatusError.
type Resolver interface {
	Resolve(ctx context.Context, subject string, act actor.Context) (any, error)
}

// Decision is the policy collaborator's verdict on an evaluation.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
)

// Policy authorizes subject resolution for an actor.
type Policy interface {
	Authorize(ctx context.Context, act actor.Context, subject string) Decision
}

// Request identifies one evaluation. Retrying the same EvaluationID is
// idempotent at the audit level: each retry records an incremented attempt.
type Request struct {
	EvaluationID string
	ScheduleID   uint64
	EvaluatedAt  time.Time
	Actor        actor.Context
	ProviderMeta map[string]any
}

// Evaluation is the recorded outcome.
type Evaluation struct {
	EvaluationID  string
	ScheduleID    uint64
	Status        Status
	ObservedValue *string
	Authorization Decision
	Attempt       int
}
