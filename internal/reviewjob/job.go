// Package reviewjob runs the read-only schedule-health scan: orphaned,
// failing and ignored detection over a point-in-time snapshot.
package reviewjob

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/biz/review"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/pkg/config"
)

var Provider = wire.NewSet(New)

type Job struct {
	schedules  schedule.Repo
	executions execution.Repo
	outputs    review.Repo
	cfg        config.ReviewConfig
	logger     *zap.Logger
	now        func() time.Time
}

func New(
	schedules schedule.Repo,
	executions execution.Repo,
	outputs review.Repo,
	cfg config.ReviewConfig,
	logger *zap.Logger,
) *Job {
	return &Job{
		schedules:  schedules,
		executions: executions,
		outputs:    outputs,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Run scans all three detection rules and persists one snapshot. Absence of
// issues is a valid empty result, never an error.
func (j *Job) Run(ctx context.Context) (*review.Output, error) {
	now := j.now()

	output := &review.Output{
		WindowStart:      now.Add(-j.cfg.IgnoredPauseAge),
		WindowEnd:        now,
		GracePeriod:      j.cfg.GracePeriod,
		FailureThreshold: j.cfg.FailureThreshold,
		StaleFailureAge:  j.cfg.StaleFailureAge,
		IgnoredPauseAge:  j.cfg.IgnoredPauseAge,
	}

	orphaned, err := j.detectOrphaned(ctx, now)
	if err != nil {
		return nil, err
	}
	failing, err := j.detectFailing(ctx, now)
	if err != nil {
		return nil, err
	}
	ignored, err := j.detectIgnored(ctx, now)
	if err != nil {
		return nil, err
	}

	output.OrphanedCount = len(orphaned)
	output.FailingCount = len(failing)
	output.IgnoredCount = len(ignored)
	output.Items = append(append(orphaned, failing...), ignored...)

	if err := j.outputs.CreateOutput(ctx, output); err != nil {
		return nil, err
	}

	j.logger.Info("review snapshot recorded",
		zap.Uint64("output_id", output.ID),
		zap.Int("orphaned", output.OrphanedCount),
		zap.Int("failing", output.FailingCount),
		zap.Int("ignored", output.IgnoredCount))
	return output, nil
}

// detectOrphaned flags active schedules whose next_run_at fell behind the
// grace period without anything in flight. A schedule mid-retry is left
// alone until its pending retry itself exceeds the grace period.
func (j *Job) detectOrphaned(ctx context.Context, now time.Time) ([]*review.Item, error) {
	cutoff := now.Add(-j.cfg.GracePeriod)
	stale, err := j.schedules.FindActiveWithNextRunBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var items []*review.Item
	for _, s := range stale {
		latest, err := j.executions.GetLatestForSchedule(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			if latest.Status == execution.StatusRunning {
				continue
			}
			if latest.Status == execution.StatusRetryScheduled &&
				latest.NextRetryAt != nil && latest.NextRetryAt.After(cutoff) {
				continue
			}
		}
		items = append(items, j.item(s, review.IssueOrphaned, latest,
			fmt.Sprintf("active schedule has not fired since %s", s.NextRunAt.Format(time.RFC3339))))
	}
	return items, nil
}

// detectFailing flags schedules with a failure streak at or above the
// threshold, or stuck in a failed last run older than the stale-failure age.
func (j *Job) detectFailing(ctx context.Context, now time.Time) ([]*review.Item, error) {
	staleCutoff := now.Add(-j.cfg.StaleFailureAge)
	failing, err := j.schedules.FindFailing(ctx, j.cfg.FailureThreshold, staleCutoff)
	if err != nil {
		return nil, err
	}

	var items []*review.Item
	for _, s := range failing {
		latest, err := j.executions.GetLatestForSchedule(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		item := j.item(s, review.IssueFailing, latest,
			fmt.Sprintf("schedule failed %d consecutive times", s.FailureCount))
		if latest != nil {
			item.LastError = latest.LastErrorMessage
		}
		items = append(items, item)
	}
	return items, nil
}

// detectIgnored flags schedules paused and untouched beyond the ignored
// pause age.
func (j *Job) detectIgnored(ctx context.Context, now time.Time) ([]*review.Item, error) {
	cutoff := now.Add(-j.cfg.IgnoredPauseAge)
	paused, err := j.schedules.FindPausedSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var items []*review.Item
	for _, s := range paused {
		items = append(items, j.item(s, review.IssueIgnored, nil,
			fmt.Sprintf("schedule paused since %s with no follow-up", s.UpdatedAt.Format(time.RFC3339))))
	}
	return items, nil
}

func (j *Job) item(s *schedule.Schedule, issue review.IssueType, latest *execution.Execution, description string) *review.Item {
	item := &review.Item{
		ScheduleID:  s.ID,
		Issue:       issue,
		Severity:    review.SeverityFor(issue),
		Description: description,
	}
	if latest != nil {
		item.ExecutionID = &latest.ID
	}
	return item
}
