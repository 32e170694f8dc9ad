package schedulerepo

import (
	domain "github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

func (p *SchedulePo) FromDomain(in *domain.Schedule) *SchedulePo {
	return &SchedulePo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		TaskIntentID: in.TaskIntentID,
		Type:         in.Type,
		State:        in.State,
		Timezone:     in.Timezone,

		RunAt:                   in.Definition.RunAt,
		IntervalCount:           in.Definition.IntervalCount,
		IntervalUnit:            in.Definition.IntervalUnit,
		AnchorAt:                in.Definition.AnchorAt,
		RRule:                   in.Definition.RRule,
		CalendarAnchorAt:        in.Definition.CalendarAnchorAt,
		PredicateSubject:        in.Definition.PredicateSubject,
		PredicateOperator:       in.Definition.PredicateOperator,
		PredicateValue:          in.Definition.PredicateValue,
		EvaluationIntervalCount: in.Definition.EvaluationIntervalCount,
		EvaluationIntervalUnit:  in.Definition.EvaluationIntervalUnit,

		NextRunAt:       in.NextRunAt,
		LastRunAt:       in.LastRunAt,
		LastRunStatus:   in.LastRunStatus,
		FailureCount:    in.FailureCount,
		LastExecutionID: in.LastExecutionID,

		CreatorType:    in.CreatorType,
		CreatorID:      in.CreatorID,
		CreatorChannel: in.CreatorChannel,
	}
}

func (p *SchedulePo) ToDomain() *domain.Schedule {
	return &domain.Schedule{
		ID:           p.ID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		TaskIntentID: p.TaskIntentID,
		Type:         p.Type,
		State:        p.State,
		Timezone:     p.Timezone,
		Definition: domain.Definition{
			RunAt:                   p.RunAt,
			IntervalCount:           p.IntervalCount,
			IntervalUnit:            p.IntervalUnit,
			AnchorAt:                p.AnchorAt,
			RRule:                   p.RRule,
			CalendarAnchorAt:        p.CalendarAnchorAt,
			PredicateSubject:        p.PredicateSubject,
			PredicateOperator:       p.PredicateOperator,
			PredicateValue:          p.PredicateValue,
			EvaluationIntervalCount: p.EvaluationIntervalCount,
			EvaluationIntervalUnit:  p.EvaluationIntervalUnit,
		},
		NextRunAt:       p.NextRunAt,
		LastRunAt:       p.LastRunAt,
		LastRunStatus:   p.LastRunStatus,
		FailureCount:    p.FailureCount,
		LastExecutionID: p.LastExecutionID,
		CreatorType:     p.CreatorType,
		CreatorID:       p.CreatorID,
		CreatorChannel:  p.CreatorChannel,
	}
}

func patchToMap(input *domain.Patch) map[string]any {
	var values = make(map[string]any)

	if input.State != nil {
		values["state"] = *input.State
	}

	if input.Timezone != nil {
		values["timezone"] = *input.Timezone
	}

	if input.Definition != nil {
		def := input.Definition
		values["run_at"] = def.RunAt
		values["interval_count"] = def.IntervalCount
		values["interval_unit"] = def.IntervalUnit
		values["anchor_at"] = def.AnchorAt
		values["rrule"] = def.RRule
		values["calendar_anchor_at"] = def.CalendarAnchorAt
		values["predicate_subject"] = def.PredicateSubject
		values["predicate_operator"] = def.PredicateOperator
		values["predicate_value"] = def.PredicateValue
		values["evaluation_interval_count"] = def.EvaluationIntervalCount
		values["evaluation_interval_unit"] = def.EvaluationIntervalUnit
	}

	if input.NextRunAt != nil {
		values["next_run_at"] = *input.NextRunAt
	}

	if input.LastRunAt != nil {
		values["last_run_at"] = *input.LastRunAt
	}

	if input.LastRunStatus != nil {
		values["last_run_status"] = *input.LastRunStatus
	}

	if input.FailureCount != nil {
		values["failure_count"] = *input.FailureCount
	}

	if input.LastExecutionID != nil {
		values["last_execution_id"] = *input.LastExecutionID
	}

	return values
}
