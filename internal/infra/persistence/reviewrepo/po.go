package reviewrepo

import (
	"time"

	domain "github.com/lifeops/scheduler/internal/biz/review"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
)

type ReviewOutputPo struct {
	commonrepo.Mode
	WindowStart time.Time `gorm:"column:window_start;not null"`
	WindowEnd   time.Time `gorm:"column:window_end;not null"`

	// Thresholds are stored in nanoseconds, matching time.Duration.
	GracePeriod      int64 `gorm:"column:grace_period;not null"`
	FailureThreshold int   `gorm:"column:failure_threshold;not null"`
	StaleFailureAge  int64 `gorm:"column:stale_failure_age;not null"`
	IgnoredPauseAge  int64 `gorm:"column:ignored_pause_age;not null"`

	OrphanedCount int `gorm:"column:orphaned_count;not null;default:0"`
	FailingCount  int `gorm:"column:failing_count;not null;default:0"`
	IgnoredCount  int `gorm:"column:ignored_count;not null;default:0"`
}

func (p *ReviewOutputPo) TableName() string {
	return "lifeops_review_output"
}

type ReviewItemPo struct {
	commonrepo.Mode
	OutputID    uint64  `gorm:"column:output_id;not null;index"`
	ScheduleID  uint64  `gorm:"column:schedule_id;not null;index"`
	ExecutionID *uint64 `gorm:"column:execution_id"`

	Issue       domain.IssueType `gorm:"column:issue;size:20;not null"`
	Severity    domain.Severity  `gorm:"column:severity;size:10;not null"`
	Description string           `gorm:"column:description;size:1000"`
	LastError   string           `gorm:"column:last_error;size:1000"`
}

func (p *ReviewItemPo) TableName() string {
	return "lifeops_review_item"
}
