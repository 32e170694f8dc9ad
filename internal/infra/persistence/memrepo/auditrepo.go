package memrepo

import (
	"context"

	"github.com/lifeops/scheduler/internal/biz/audit"
)

type AuditRepo struct {
	store
	ScheduleLogs  []*audit.ScheduleAuditLog
	ExecutionLogs []*audit.ExecutionAuditLog
	PredicateLogs []*audit.PredicateEvaluationAuditLog
}

func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) AppendScheduleLog(ctx context.Context, log *audit.ScheduleAuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = r.id()
	log.CreatedAt = r.touch()
	r.ScheduleLogs = append(r.ScheduleLogs, log)
	return nil
}

func (r *AuditRepo) AppendExecutionLog(ctx context.Context, log *audit.ExecutionAuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = r.id()
	log.CreatedAt = r.touch()
	r.ExecutionLogs = append(r.ExecutionLogs, log)
	return nil
}

func (r *AuditRepo) AppendPredicateLog(ctx context.Context, log *audit.PredicateEvaluationAuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = r.id()
	log.CreatedAt = r.touch()
	r.PredicateLogs = append(r.PredicateLogs, log)
	return nil
}

func (r *AuditRepo) ListScheduleLogs(ctx context.Context, filter *audit.ScheduleLogFilter, offset, limit int) ([]*audit.ScheduleAuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*audit.ScheduleAuditLog
	for _, log := range r.ScheduleLogs {
		if filter != nil {
			if v, ok := filter.ScheduleID.Get(); ok && log.ScheduleID != v {
				continue
			}
			if v, ok := filter.Event.Get(); ok && log.Event != v {
				continue
			}
			if v, ok := filter.TraceID.Get(); ok && log.TraceID != v {
				continue
			}
		}
		out = append(out, log)
	}
	total := int64(len(out))
	return page(out, offset, limit), total, nil
}

func (r *AuditRepo) ListExecutionLogs(ctx context.Context, executionID uint64, offset, limit int) ([]*audit.ExecutionAuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*audit.ExecutionAuditLog
	for _, log := range r.ExecutionLogs {
		if log.ExecutionID == executionID {
			out = append(out, log)
		}
	}
	total := int64(len(out))
	return page(out, offset, limit), total, nil
}

func (r *AuditRepo) GetLatestPredicateLog(ctx context.Context, evaluationID string) (*audit.PredicateEvaluationAuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.PredicateLogs) - 1; i >= 0; i-- {
		if r.PredicateLogs[i].EvaluationID == evaluationID {
			return r.PredicateLogs[i], nil
		}
	}
	return nil, nil
}
