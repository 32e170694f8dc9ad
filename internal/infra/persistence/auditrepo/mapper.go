package auditrepo

import (
	"gorm.io/datatypes"

	domain "github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

func (p *ScheduleAuditLogPo) FromDomain(in *domain.ScheduleAuditLog) *ScheduleAuditLogPo {
	return &ScheduleAuditLogPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
		},
		ScheduleID: in.ScheduleID,
		Event:      in.Event,
		Diff:       in.Diff,
		Detail:     datatypes.JSONMap(in.Detail),
		ActorType:  in.ActorType,
		ActorID:    in.ActorID,
		Channel:    in.Channel,
		TraceID:    in.TraceID,
		Reason:     in.Reason,
	}
}

func (p *ScheduleAuditLogPo) ToDomain() *domain.ScheduleAuditLog {
	return &domain.ScheduleAuditLog{
		ID:         p.ID,
		CreatedAt:  p.CreatedAt,
		ScheduleID: p.ScheduleID,
		Event:      p.Event,
		Diff:       p.Diff,
		Detail:     map[string]any(p.Detail),
		ActorType:  p.ActorType,
		ActorID:    p.ActorID,
		Channel:    p.Channel,
		TraceID:    p.TraceID,
		Reason:     p.Reason,
	}
}

func (p *ExecutionAuditLogPo) FromDomain(in *domain.ExecutionAuditLog) *ExecutionAuditLogPo {
	return &ExecutionAuditLogPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
		},
		ExecutionID: in.ExecutionID,
		ScheduleID:  in.ScheduleID,
		FromStatus:  in.FromStatus,
		ToStatus:    in.ToStatus,
		Attempt:     in.Attempt,
		Message:     in.Message,
		TraceID:     in.TraceID,
	}
}

func (p *ExecutionAuditLogPo) ToDomain() *domain.ExecutionAuditLog {
	return &domain.ExecutionAuditLog{
		ID:          p.ID,
		CreatedAt:   p.CreatedAt,
		ExecutionID: p.ExecutionID,
		ScheduleID:  p.ScheduleID,
		FromStatus:  p.FromStatus,
		ToStatus:    p.ToStatus,
		Attempt:     p.Attempt,
		Message:     p.Message,
		TraceID:     p.TraceID,
	}
}

func (p *PredicateEvaluationAuditLogPo) FromDomain(in *domain.PredicateEvaluationAuditLog) *PredicateEvaluationAuditLogPo {
	return &PredicateEvaluationAuditLogPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
		},
		EvaluationID:  in.EvaluationID,
		ScheduleID:    in.ScheduleID,
		EvaluatedAt:   in.EvaluatedAt,
		Subject:       in.Subject,
		Operator:      in.Operator,
		ExpectedValue: in.ExpectedValue,
		ObservedValue: in.ObservedValue,
		Result:        in.Result,
		Authorization: in.Authorization,
		Attempt:       in.Attempt,
		ProviderMeta:  datatypes.JSONMap(in.ProviderMeta),
		ActorType:     in.ActorType,
		ActorID:       in.ActorID,
	}
}

func (p *PredicateEvaluationAuditLogPo) ToDomain() *domain.PredicateEvaluationAuditLog {
	return &domain.PredicateEvaluationAuditLog{
		ID:            p.ID,
		CreatedAt:     p.CreatedAt,
		EvaluationID:  p.EvaluationID,
		ScheduleID:    p.ScheduleID,
		EvaluatedAt:   p.EvaluatedAt,
		Subject:       p.Subject,
		Operator:      p.Operator,
		ExpectedValue: p.ExpectedValue,
		ObservedValue: p.ObservedValue,
		Result:        p.Result,
		Authorization: p.Authorization,
		Attempt:       p.Attempt,
		ProviderMeta:  map[string]any(p.ProviderMeta),
		ActorType:     p.ActorType,
		ActorID:       p.ActorID,
	}
}
