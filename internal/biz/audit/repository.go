package audit

import (
	"context"

	"github.com/samber/mo"
)

// Repo appends and reads audit rows. Rows are never updated or deleted here;
// retention cleanup is an external concern.
type Repo interface {
	AppendScheduleLog(ctx context.Context, log *ScheduleAuditLog) error
	AppendExecutionLog(ctx context.Context, log *ExecutionAuditLog) error
	AppendPredicateLog(ctx context.Context, log *PredicateEvaluationAuditLog) error

	// ListScheduleLogs orders by id ascending.
	ListScheduleLogs(ctx context.Context, filter *ScheduleLogFilter, offset, limit int) ([]*ScheduleAuditLog, int64, error)
	// ListExecutionLogs orders by id ascending.
	ListExecutionLogs(ctx context.Context, executionID uint64, offset, limit int) ([]*ExecutionAuditLog, int64, error)
	// GetLatestPredicateLog returns the newest row for an evaluation id, or
	// nil when the evaluation was never attempted. Used for idempotent
	// retries of the same evaluation.
	GetLatestPredicateLog(ctx context.Context, evaluationID string) (*PredicateEvaluationAuditLog, error)
}

type ScheduleLogFilter struct {
	ScheduleID mo.Option[uint64]
	Event      mo.Option[EventType]
	TraceID    mo.Option[string]
}
