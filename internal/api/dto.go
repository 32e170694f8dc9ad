package api

import (
	"time"

	"github.com/samber/mo"

	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/biz/review"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/command"
)

type ActorReq struct {
	ActorType string `json:"actor_type" binding:"omitempty,oneof=user agent system"`
	ActorID   string `json:"actor_id"`
	Channel   string `json:"channel"`
	TraceID   string `json:"trace_id"`
	Reason    string `json:"reason"`
}

func (a ActorReq) toDomain() actor.Context {
	actorType := actor.Type(a.ActorType)
	if actorType == "" {
		actorType = actor.TypeUser
	}
	return actor.Context{
		ActorType: actorType,
		ActorID:   a.ActorID,
		Channel:   a.Channel,
		TraceID:   a.TraceID,
		Reason:    a.Reason,
	}
}

type DefinitionReq struct {
	RunAt *time.Time `json:"run_at"`

	IntervalCount int        `json:"interval_count"`
	IntervalUnit  string     `json:"interval_unit"`
	AnchorAt      *time.Time `json:"anchor_at"`

	RRule            string     `json:"rrule"`
	CalendarAnchorAt *time.Time `json:"calendar_anchor_at"`

	PredicateSubject        string `json:"predicate_subject"`
	PredicateOperator       string `json:"predicate_operator"`
	PredicateValue          string `json:"predicate_value"`
	EvaluationIntervalCount int    `json:"evaluation_interval_count"`
	EvaluationIntervalUnit  string `json:"evaluation_interval_unit"`
}

func (d DefinitionReq) toDomain() schedule.Definition {
	return schedule.Definition{
		RunAt:                   d.RunAt,
		IntervalCount:           d.IntervalCount,
		IntervalUnit:            schedule.IntervalUnit(d.IntervalUnit),
		AnchorAt:                d.AnchorAt,
		RRule:                   d.RRule,
		CalendarAnchorAt:        d.CalendarAnchorAt,
		PredicateSubject:        d.PredicateSubject,
		PredicateOperator:       schedule.PredicateOperator(d.PredicateOperator),
		PredicateValue:          d.PredicateValue,
		EvaluationIntervalCount: d.EvaluationIntervalCount,
		EvaluationIntervalUnit:  schedule.IntervalUnit(d.EvaluationIntervalUnit),
	}
}

type CreateScheduleReq struct {
	Summary   string `json:"summary" binding:"required"`
	Details   string `json:"details"`
	OriginRef string `json:"origin_ref"`

	Type               string        `json:"type" binding:"required,oneof=one_time interval calendar_rule conditional"`
	Timezone           string        `json:"timezone"`
	Definition         DefinitionReq `json:"definition" binding:"required"`
	InitialState       string        `json:"initial_state" binding:"omitempty,oneof=draft active"`
	RequireFutureRunAt bool          `json:"require_future_run_at"`

	Actor ActorReq `json:"actor"`
}

func (r CreateScheduleReq) toDomain() command.CreateRequest {
	return command.CreateRequest{
		IntentSummary:      r.Summary,
		IntentDetails:      r.Details,
		OriginRef:          r.OriginRef,
		Type:               schedule.Type(r.Type),
		Timezone:           r.Timezone,
		Definition:         r.Definition.toDomain(),
		InitialState:       schedule.State(r.InitialState),
		RequireFutureRunAt: r.RequireFutureRunAt,
	}
}

type UpdateScheduleReq struct {
	TaskIntentID *uint64        `json:"task_intent_id"`
	Timezone     *string        `json:"timezone"`
	Definition   *DefinitionReq `json:"definition"`

	Actor ActorReq `json:"actor"`
}

func (r UpdateScheduleReq) toDomain() command.UpdateRequest {
	req := command.UpdateRequest{}
	if r.TaskIntentID != nil {
		req.TaskIntentID = mo.Some(*r.TaskIntentID)
	}
	if r.Timezone != nil {
		req.Timezone = mo.Some(*r.Timezone)
	}
	if r.Definition != nil {
		req.Definition = mo.Some(r.Definition.toDomain())
	}
	return req
}

type TransitionReq struct {
	AllowNoop bool     `json:"allow_noop"`
	Actor     ActorReq `json:"actor"`
}

type RunNowReq struct {
	ScheduledFor *time.Time `json:"scheduled_for"`
	TraceID      string     `json:"trace_id"`
	Actor        ActorReq   `json:"actor"`
}

type CallbackReq struct {
	ScheduleID   uint64     `json:"schedule_id" binding:"required"`
	ScheduledFor time.Time  `json:"scheduled_for" binding:"required"`
	TraceID      string     `json:"trace_id" binding:"required"`
	EmittedAt    *time.Time `json:"emitted_at"`
	Source       string     `json:"source" binding:"omitempty,oneof=provider run_now retry"`
}

type EvaluatePredicateReq struct {
	EvaluationID string         `json:"evaluation_id" binding:"required"`
	ProviderMeta map[string]any `json:"provider_meta"`
	Actor        ActorReq       `json:"actor"`
}

type SupersedeIntentReq struct {
	SupersededByIntentID uint64 `json:"superseded_by_intent_id" binding:"required"`
}

type DefinitionResp struct {
	RunAt *time.Time `json:"run_at,omitempty"`

	IntervalCount int        `json:"interval_count,omitempty"`
	IntervalUnit  string     `json:"interval_unit,omitempty"`
	AnchorAt      *time.Time `json:"anchor_at,omitempty"`

	RRule            string     `json:"rrule,omitempty"`
	CalendarAnchorAt *time.Time `json:"calendar_anchor_at,omitempty"`

	PredicateSubject        string `json:"predicate_subject,omitempty"`
	PredicateOperator       string `json:"predicate_operator,omitempty"`
	PredicateValue          string `json:"predicate_value,omitempty"`
	EvaluationIntervalCount int    `json:"evaluation_interval_count,omitempty"`
	EvaluationIntervalUnit  string `json:"evaluation_interval_unit,omitempty"`
}

type ScheduleResp struct {
	ID           uint64         `json:"id"`
	TaskIntentID uint64         `json:"task_intent_id"`
	Type         string         `json:"type"`
	State        string         `json:"state"`
	Timezone     string         `json:"timezone,omitempty"`
	Definition   DefinitionResp `json:"definition"`

	NextRunAt       *time.Time `json:"next_run_at,omitempty"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	LastRunStatus   string     `json:"last_run_status,omitempty"`
	FailureCount    int        `json:"failure_count"`
	LastExecutionID *uint64    `json:"last_execution_id,omitempty"`

	CreatorType    string    `json:"creator_type"`
	CreatorID      string    `json:"creator_id"`
	CreatorChannel string    `json:"creator_channel,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toScheduleResp(s *schedule.Schedule) ScheduleResp {
	return ScheduleResp{
		ID:           s.ID,
		TaskIntentID: s.TaskIntentID,
		Type:         string(s.Type),
		State:        string(s.State),
		Timezone:     s.Timezone,
		Definition: DefinitionResp{
			RunAt:                   s.Definition.RunAt,
			IntervalCount:           s.Definition.IntervalCount,
			IntervalUnit:            string(s.Definition.IntervalUnit),
			AnchorAt:                s.Definition.AnchorAt,
			RRule:                   s.Definition.RRule,
			CalendarAnchorAt:        s.Definition.CalendarAnchorAt,
			PredicateSubject:        s.Definition.PredicateSubject,
			PredicateOperator:       string(s.Definition.PredicateOperator),
			PredicateValue:          s.Definition.PredicateValue,
			EvaluationIntervalCount: s.Definition.EvaluationIntervalCount,
			EvaluationIntervalUnit:  string(s.Definition.EvaluationIntervalUnit),
		},
		NextRunAt:       s.NextRunAt,
		LastRunAt:       s.LastRunAt,
		LastRunStatus:   string(s.LastRunStatus),
		FailureCount:    s.FailureCount,
		LastExecutionID: s.LastExecutionID,
		CreatorType:     string(s.CreatorType),
		CreatorID:       s.CreatorID,
		CreatorChannel:  s.CreatorChannel,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

type IntentResp struct {
	ID                   uint64    `json:"id"`
	Summary              string    `json:"summary"`
	Details              string    `json:"details,omitempty"`
	OriginRef            string    `json:"origin_ref,omitempty"`
	CreatorType          string    `json:"creator_type"`
	CreatorID            string    `json:"creator_id"`
	CreatorChannel       string    `json:"creator_channel,omitempty"`
	SupersededByIntentID *uint64   `json:"superseded_by_intent_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toIntentResp(i *intent.TaskIntent) IntentResp {
	return IntentResp{
		ID:                   i.ID,
		Summary:              i.Summary,
		Details:              i.Details,
		OriginRef:            i.OriginRef,
		CreatorType:          string(i.CreatorType),
		CreatorID:            i.CreatorID,
		CreatorChannel:       i.CreatorChannel,
		SupersededByIntentID: i.SupersededByIntentID,
		CreatedAt:            i.CreatedAt,
		UpdatedAt:            i.UpdatedAt,
	}
}

type ExecutionResp struct {
	ID           uint64 `json:"id"`
	ScheduleID   uint64 `json:"schedule_id"`
	TaskIntentID uint64 `json:"task_intent_id"`

	ScheduledFor time.Time `json:"scheduled_for"`
	Status       string    `json:"status"`

	AttemptCount int `json:"attempt_count"`
	RetryCount   int `json:"retry_count"`
	MaxAttempts  int `json:"max_attempts"`
	FailureCount int `json:"failure_count"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	BackoffStrategy string     `json:"backoff_strategy,omitempty"`
	NextRetryAt     *time.Time `json:"next_retry_at,omitempty"`

	LastErrorCode    string `json:"last_error_code,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`

	TriggerSource string    `json:"trigger_source"`
	TraceID       string    `json:"trace_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toExecutionResp(e *execution.Execution) ExecutionResp {
	return ExecutionResp{
		ID:               e.ID,
		ScheduleID:       e.ScheduleID,
		TaskIntentID:     e.TaskIntentID,
		ScheduledFor:     e.ScheduledFor,
		Status:           string(e.Status),
		AttemptCount:     e.AttemptCount,
		RetryCount:       e.RetryCount,
		MaxAttempts:      e.MaxAttempts,
		FailureCount:     e.FailureCount,
		StartedAt:        e.StartedAt,
		FinishedAt:       e.FinishedAt,
		BackoffStrategy:  string(e.BackoffStrategy),
		NextRetryAt:      e.NextRetryAt,
		LastErrorCode:    e.LastErrorCode,
		LastErrorMessage: e.LastErrorMessage,
		TriggerSource:    string(e.TriggerSource),
		TraceID:          e.TraceID,
		CorrelationID:    e.CorrelationID,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type ScheduleAuditLogResp struct {
	ID         uint64         `json:"id"`
	ScheduleID uint64         `json:"schedule_id"`
	Event      string         `json:"event"`
	Diff       string         `json:"diff,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	ActorType  string         `json:"actor_type"`
	ActorID    string         `json:"actor_id"`
	Channel    string         `json:"channel,omitempty"`
	TraceID    string         `json:"trace_id,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toScheduleAuditLogResp(l *audit.ScheduleAuditLog) ScheduleAuditLogResp {
	return ScheduleAuditLogResp{
		ID:         l.ID,
		ScheduleID: l.ScheduleID,
		Event:      string(l.Event),
		Diff:       l.Diff,
		Detail:     l.Detail,
		ActorType:  string(l.ActorType),
		ActorID:    l.ActorID,
		Channel:    l.Channel,
		TraceID:    l.TraceID,
		Reason:     l.Reason,
		CreatedAt:  l.CreatedAt,
	}
}

type ExecutionAuditLogResp struct {
	ID          uint64    `json:"id"`
	ExecutionID uint64    `json:"execution_id"`
	ScheduleID  uint64    `json:"schedule_id"`
	FromStatus  string    `json:"from_status,omitempty"`
	ToStatus    string    `json:"to_status"`
	Attempt     int       `json:"attempt"`
	Message     string    `json:"message,omitempty"`
	TraceID     string    `json:"trace_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExecutionAuditLogResp(l *audit.ExecutionAuditLog) ExecutionAuditLogResp {
	return ExecutionAuditLogResp{
		ID:          l.ID,
		ExecutionID: l.ExecutionID,
		ScheduleID:  l.ScheduleID,
		FromStatus:  l.FromStatus,
		ToStatus:    l.ToStatus,
		Attempt:     l.Attempt,
		Message:     l.Message,
		TraceID:     l.TraceID,
		CreatedAt:   l.CreatedAt,
	}
}

type ReviewItemResp struct {
	ID          uint64  `json:"id"`
	ScheduleID  uint64  `json:"schedule_id"`
	ExecutionID *uint64 `json:"execution_id,omitempty"`
	Issue       string  `json:"issue"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	LastError   string  `json:"last_error,omitempty"`
}

type ReviewOutputResp struct {
	ID          uint64    `json:"id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	OrphanedCount int `json:"orphaned_count"`
	FailingCount  int `json:"failing_count"`
	IgnoredCount  int `json:"ignored_count"`

	Items     []ReviewItemResp `json:"items,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func toReviewOutputResp(o *review.Output) ReviewOutputResp {
	resp := ReviewOutputResp{
		ID:            o.ID,
		WindowStart:   o.WindowStart,
		WindowEnd:     o.WindowEnd,
		OrphanedCount: o.OrphanedCount,
		FailingCount:  o.FailingCount,
		IgnoredCount:  o.IgnoredCount,
		CreatedAt:     o.CreatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, ReviewItemResp{
			ID:          item.ID,
			ScheduleID:  item.ScheduleID,
			ExecutionID: item.ExecutionID,
			Issue:       string(item.Issue),
			Severity:    string(item.Severity),
			Description: item.Description,
			LastError:   item.LastError,
		})
	}
	return resp
}

type PageReq struct {
	Offset int `form:"offset,default=0" binding:"gte=0"`
	Limit  int `form:"limit,default=20" binding:"gte=1,lte=200"`
}

type PageResp[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}
