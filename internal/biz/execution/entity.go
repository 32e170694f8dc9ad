package execution

import (
	"time"

	"github.com/lifeops/scheduler/internal/biz/actor"
)

// Execution is one attempt record for a schedule firing at a point in time.
// Created by the callback bridge (one per accepted callback, deduplicated by
// trace id) or by run-now; mutated only by the dispatcher.
type Execution struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	ScheduleID   uint64
	TaskIntentID uint64

	ScheduledFor time.Time
	Status       Status

	AttemptCount int
	RetryCount   int
	MaxAttempts  int
	FailureCount int

	StartedAt  *time.Time
	FinishedAt *time.Time

	BackoffStrategy BackoffStrategy
	NextRetryAt     *time.Time

	LastErrorCode    string
	LastErrorMessage string

	TriggerSource TriggerSource
	ActorType     actor.Type
	ActorID       string
	// TraceID is the idempotency key within a schedule and doubles as the
	// correlation id across provider, bridge and dispatcher.
	TraceID       string
	CorrelationID string
}

// Start marks the execution running and opens a new attempt.
func (e *Execution) Start(now time.Time) *Execution {
	e.Status = StatusRunning
	e.StartedAt = &now
	e.AttemptCount++
	return e
}

// Succeed records a successful attempt.
func (e *Execution) Succeed(now time.Time) *Execution {
	e.Status = StatusSucceeded
	e.FinishedAt = &now
	e.NextRetryAt = nil
	return e
}

// Fail records a failed attempt. The caller decides afterwards whether a
// retry is scheduled or the failure is terminal.
func (e *Execution) Fail(now time.Time, code, message string) *Execution {
	e.RetryCount++
	e.FailureCount++
	e.LastErrorCode = code
	e.LastErrorMessage = message
	e.FinishedAt = &now
	return e
}

// ScheduleRetry marks the execution awaiting an external re-trigger.
func (e *Execution) ScheduleRetry(at time.Time) *Execution {
	e.Status = StatusRetryScheduled
	e.NextRetryAt = &at
	return e
}

// MarkTerminalFailure closes the execution after its final attempt.
func (e *Execution) MarkTerminalFailure() *Execution {
	e.Status = StatusFailed
	e.NextRetryAt = nil
	return e
}

// RetriesExhausted reports whether another attempt is still allowed.
func (e *Execution) RetriesExhausted() bool {
	return e.RetryCount >= e.MaxAttempts
}

// Patch is a partial update applied through the repository.
type Patch struct {
	Status           *Status
	AttemptCount     *int
	RetryCount       *int
	FailureCount     *int
	StartedAt        *time.Time
	FinishedAt       *time.Time
	NextRetryAt      **time.Time
	LastErrorCode    *string
	LastErrorMessage *string
}
