package review

import "time"

// IssueType classifies a detected schedule-health issue.
type IssueType string

const (
	IssueOrphaned IssueType = "orphaned"
	IssueFailing  IssueType = "failing"
	IssueIgnored  IssueType = "ignored"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// SeverityFor is fixed per detection rule.
func SeverityFor(issue IssueType) Severity {
	switch issue {
	case IssueOrphaned:
		return SeverityHigh
	case IssueFailing:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Output is one point-in-time health snapshot: the window scanned, the
// thresholds applied and the per-issue counts. Read-only once written.
type Output struct {
	ID        uint64
	CreatedAt time.Time

	WindowStart time.Time
	WindowEnd   time.Time

	GracePeriod      time.Duration
	FailureThreshold int
	StaleFailureAge  time.Duration
	IgnoredPauseAge  time.Duration

	OrphanedCount int
	FailingCount  int
	IgnoredCount  int

	Items []*Item
}

// Item is one detected issue within an Output.
type Item struct {
	ID        uint64
	CreatedAt time.Time

	OutputID    uint64
	ScheduleID  uint64
	ExecutionID *uint64

	Issue       IssueType
	Severity    Severity
	Description string
	LastError   string
}
