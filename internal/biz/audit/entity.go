package audit

import (
	"time"

	"github.com/lifeops/scheduler/internal/biz/actor"
)

// EventType labels what a schedule audit row records.
type EventType string

const (
	EventCreate  EventType = "create"
	EventUpdate  EventType = "update"
	EventPause   EventType = "pause"
	EventResume  EventType = "resume"
	EventDelete  EventType = "delete"
	EventArchive EventType = "archive"
	EventRunNow  EventType = "run_now"
)

// ScheduleAuditLog is one append-only row per schedule mutation.
type ScheduleAuditLog struct {
	ID        uint64
	CreatedAt time.Time

	ScheduleID uint64
	Event      EventType
	// Diff is a short human-readable summary ("state: active -> paused",
	// "run_now(state=paused)"); Detail holds the changed fields.
	Diff   string
	Detail map[string]any

	ActorType actor.Type
	ActorID   string
	Channel   string
	TraceID   string
	Reason    string
}

// ExecutionAuditLog is one append-only row per execution state transition.
type ExecutionAuditLog struct {
	ID        uint64
	CreatedAt time.Time

	ExecutionID uint64
	ScheduleID  uint64
	FromStatus  string
	ToStatus    string
	Attempt     int
	Message     string
	TraceID     string
}

// PredicateEvaluationAuditLog is one append-only row per predicate
// evaluation attempt.
type PredicateEvaluationAuditLog struct {
	ID        uint64
	CreatedAt time.Time

	EvaluationID string
	ScheduleID   uint64
	EvaluatedAt  time.Time

	Subject       string
	Operator      string
	ExpectedValue string
	ObservedValue *string
	Result        string

	// Authorization is the allow/deny decision supplied by the external
	// policy collaborator.
	Authorization string
	Attempt       int
	ProviderMeta  map[string]any

	ActorType actor.Type
	ActorID   string
}
