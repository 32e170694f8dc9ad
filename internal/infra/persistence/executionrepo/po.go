package executionrepo

import (
	"time"

	"github.com/lifeops/scheduler/internal/biz/actor"
	domain "github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

type ExecutionPo struct {
	commonrepo.Mode
	// The unique pair enforces callback idempotency at the storage level.
	ScheduleID   uint64 `gorm:"column:schedule_id;not null;uniqueIndex:uk_schedule_trace;index"`
	TraceID      string `gorm:"column:trace_id;size:128;not null;uniqueIndex:uk_schedule_trace"`
	TaskIntentID uint64 `gorm:"column:task_intent_id;not null;index"`

	ScheduledFor time.Time     `gorm:"column:scheduled_for;not null;index"`
	Status       domain.Status `gorm:"column:status;size:20;not null;index"`

	AttemptCount int `gorm:"column:attempt_count;not null;default:0"`
	RetryCount   int `gorm:"column:retry_count;not null;default:0"`
	MaxAttempts  int `gorm:"column:max_attempts;not null;default:1"`
	FailureCount int `gorm:"column:failure_count;not null;default:0"`

	StartedAt  *time.Time `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`

	BackoffStrategy domain.BackoffStrategy `gorm:"column:backoff_strategy;size:20"`
	NextRetryAt     *time.Time             `gorm:"column:next_retry_at"`

	LastErrorCode    string `gorm:"column:last_error_code;size:100"`
	LastErrorMessage string `gorm:"column:last_error_message;size:1000"`

	TriggerSource domain.TriggerSource `gorm:"column:trigger_source;size:20;not null"`
	ActorType     actor.Type           `gorm:"column:actor_type;size:20"`
	ActorID       string               `gorm:"column:actor_id;size:100"`
	CorrelationID string               `gorm:"column:correlation_id;size:128"`
}

func (p *ExecutionPo) TableName() string {
	return "lifeops_execution"
}
