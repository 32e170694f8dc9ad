package schedulerepo

import (
	"time"

	"github.com/lifeops/scheduler/internal/biz/actor"
	domain "github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

type SchedulePo struct {
	commonrepo.Mode
	TaskIntentID uint64       `gorm:"column:task_intent_id;not null;index"`
	Type         domain.Type  `gorm:"column:type;size:20;not null"`
	State        domain.State `gorm:"column:state;size:20;not null;index"`
	Timezone     string       `gorm:"column:timezone;size:64"`

	// Cadence definition, flattened. Only the columns matching Type are set.
	RunAt                   *time.Time               `gorm:"column:run_at"`
	IntervalCount           int                      `gorm:"column:interval_count"`
	IntervalUnit            domain.IntervalUnit      `gorm:"column:interval_unit;size:10"`
	AnchorAt                *time.Time               `gorm:"column:anchor_at"`
	RRule                   string                   `gorm:"column:rrule;size:500"`
	CalendarAnchorAt        *time.Time               `gorm:"column:calendar_anchor_at"`
	PredicateSubject        string                   `gorm:"column:predicate_subject;size:255"`
	PredicateOperator       domain.PredicateOperator `gorm:"column:predicate_operator;size:10"`
	PredicateValue          string                   `gorm:"column:predicate_value;size:500"`
	EvaluationIntervalCount int                      `gorm:"column:evaluation_interval_count"`
	EvaluationIntervalUnit  domain.IntervalUnit      `gorm:"column:evaluation_interval_unit;size:10"`

	NextRunAt       *time.Time       `gorm:"column:next_run_at;index"`
	LastRunAt       *time.Time       `gorm:"column:last_run_at"`
	LastRunStatus   domain.RunStatus `gorm:"column:last_run_status;size:20"`
	FailureCount    int              `gorm:"column:failure_count;not null;default:0"`
	LastExecutionID *uint64          `gorm:"column:last_execution_id"`

	CreatorType    actor.Type `gorm:"column:creator_type;size:20;not null"`
	CreatorID      string     `gorm:"column:creator_id;size:100;not null;index"`
	CreatorChannel string     `gorm:"column:creator_channel;size:100"`
}

func (p *SchedulePo) TableName() string {
	return "lifeops_schedule"
}
