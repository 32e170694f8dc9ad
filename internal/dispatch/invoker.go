package dispatch

import (
	"context"

	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/biz/schedule"
)

// InvocationStatus is the outcome an invoker reports.
type InvocationStatus string

const (
	InvocationSuccess InvocationStatus = "success"
	InvocationFailure InvocationStatus = "failure"
)

// ErrCodeAgentError labels invoker panics/errors, as opposed to failures
// the invoker reported deliberately.
const ErrCodeAgentError = "agent_error"

// InvocationContext is everything the invoker gets about the work to do.
type InvocationContext struct {
	Execution *execution.Execution
	Schedule  *schedule.Schedule
	Intent    *intent.TaskIntent
}

// InvocationResult is the invoker's verdict on one attempt.
type InvocationResult struct {
	Status            InvocationStatus
	ResultCode        string
	AttentionRequired bool
	Message           string
	ErrorMessage      string
}

// Invoker performs the actual work behind an execution. Opaque to the core;
// a returned error is treated as a failure with code agent_error.
type Invoker interface {
	Invoke(ctx context.Context, ic InvocationContext) (InvocationResult, error)
}
