package executionrepo

import (
	domain "github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

func (p *ExecutionPo) FromDomain(in *domain.Execution) *ExecutionPo {
	return &ExecutionPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		ScheduleID:   in.ScheduleID,
		TraceID:      in.TraceID,
		TaskIntentID: in.TaskIntentID,

		ScheduledFor: in.ScheduledFor,
		Status:       in.Status,

		AttemptCount: in.AttemptCount,
		RetryCount:   in.RetryCount,
		MaxAttempts:  in.MaxAttempts,
		FailureCount: in.FailureCount,

		StartedAt:  in.StartedAt,
		FinishedAt: in.FinishedAt,

		BackoffStrategy: in.BackoffStrategy,
		NextRetryAt:     in.NextRetryAt,

		LastErrorCode:    in.LastErrorCode,
		LastErrorMessage: in.LastErrorMessage,

		TriggerSource: in.TriggerSource,
		ActorType:     in.ActorType,
		ActorID:       in.ActorID,
		CorrelationID: in.CorrelationID,
	}
}

func (p *ExecutionPo) ToDomain() *domain.Execution {
	return &domain.Execution{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,

		ScheduleID:   p.ScheduleID,
		TaskIntentID: p.TaskIntentID,

		ScheduledFor: p.ScheduledFor,
		Status:       p.Status,

		AttemptCount: p.AttemptCount,
		RetryCount:   p.RetryCount,
		MaxAttempts:  p.MaxAttempts,
		FailureCount: p.FailureCount,

		StartedAt:  p.StartedAt,
		FinishedAt: p.FinishedAt,

		BackoffStrategy: p.BackoffStrategy,
		NextRetryAt:     p.NextRetryAt,

		LastErrorCode:    p.LastErrorCode,
		LastErrorMessage: p.LastErrorMessage,

		TriggerSource: p.TriggerSource,
		ActorType:     p.ActorType,
		ActorID:       p.ActorID,
		TraceID:       p.TraceID,
		CorrelationID: p.CorrelationID,
	}
}

func patchToMap(input *domain.Patch) map[string]any {
	var values = make(map[string]any)

	if input.Status != nil {
		values["status"] = *input.Status
	}

	if input.AttemptCount != nil {
		values["attempt_count"] = *input.AttemptCount
	}

	if input.RetryCount != nil {
		values["retry_count"] = *input.RetryCount
	}

	if input.FailureCount != nil {
		values["failure_count"] = *input.FailureCount
	}

	if input.StartedAt != nil {
		values["started_at"] = *input.StartedAt
	}

	if input.FinishedAt != nil {
		values["finished_at"] = *input.FinishedAt
	}

	if input.NextRetryAt != nil {
		values["next_retry_at"] = *input.NextRetryAt
	}

	if input.LastErrorCode != nil {
		values["last_error_code"] = *input.LastErrorCode
	}

	if input.LastErrorMessage != nil {
		values["last_error_message"] = *input.LastErrorMessage
	}

	return values
}
