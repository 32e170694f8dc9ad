package auditrepo

import (
	"time"

	"gorm.io/datatypes"

	"github.com/lifeops/scheduler/internal/biz/actor"
	domain "github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

type ScheduleAuditLogPo struct {
	commonrepo.Mode
	ScheduleID uint64            `gorm:"column:schedule_id;not null;index"`
	Event      domain.EventType  `gorm:"column:event;size:20;not null;index"`
	Diff       string            `gorm:"column:diff;size:1000"`
	Detail     datatypes.JSONMap `gorm:"column:detail;type:json"`

	ActorType actor.Type `gorm:"column:actor_type;size:20;not null"`
	ActorID   string     `gorm:"column:actor_id;size:100;not null"`
	Channel   string     `gorm:"column:channel;size:100"`
	TraceID   string     `gorm:"column:trace_id;size:128;index"`
	Reason    string     `gorm:"column:reason;size:500"`
}

func (p *ScheduleAuditLogPo) TableName() string {
	return "lifeops_schedule_audit_log"
}

type ExecutionAuditLogPo struct {
	commonrepo.Mode
	ExecutionID uint64 `gorm:"column:execution_id;not null;index"`
	ScheduleID  uint64 `gorm:"column:schedule_id;not null;index"`
	FromStatus  string `gorm:"column:from_status;size:20"`
	ToStatus    string `gorm:"column:to_status;size:20;not null"`
	Attempt     int    `gorm:"column:attempt;not null;default:0"`
	Message     string `gorm:"column:message;size:1000"`
	TraceID     string `gorm:"column:trace_id;size:128"`
}

func (p *ExecutionAuditLogPo) TableName() string {
	return "lifeops_execution_audit_log"
}

type PredicateEvaluationAuditLogPo struct {
	commonrepo.Mode
	EvaluationID string    `gorm:"column:evaluation_id;size:128;not null;index"`
	ScheduleID   uint64    `gorm:"column:schedule_id;not null;index"`
	EvaluatedAt  time.Time `gorm:"column:evaluated_at;not null"`

	Subject       string  `gorm:"column:subject;size:255;not null"`
	Operator      string  `gorm:"column:operator;size:10;not null"`
	ExpectedValue string  `gorm:"column:expected_value;size:500"`
	ObservedValue *string `gorm:"column:observed_value;size:500"`
	Result        string  `gorm:"column:result;size:20;not null"`

	Authorization string            `gorm:"column:authorization;size:10;not null"`
	Attempt       int               `gorm:"column:attempt;not null;default:1"`
	ProviderMeta  datatypes.JSONMap `gorm:"column:provider_meta;type:json"`

	ActorType actor.Type `gorm:"column:actor_type;size:20"`
	ActorID   string     `gorm:"column:actor_id;size:100"`
}

func (p *PredicateEvaluationAuditLogPo) TableName() string {
	return "lifeops_predicate_evaluation_audit_log"
}
