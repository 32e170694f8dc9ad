package dispatch

import (
	"context"
	"time"
)

// FailureNotice is handed to the external attention-routing collaborator
// when a schedule's failure streak crosses the configured threshold.
type FailureNotice struct {
	SignalRef      string
	ScheduleID     uint64
	ExecutionID    uint64
	FailureCount   int
	Threshold      int
	ThrottleWindow time.Duration
	LastErrorCode  string
	LastError      string
}

// FailureNotifier delivers failure notices onward. Throttling happens in
// the dispatcher, not here.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, notice FailureNotice) error
}
