package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/infra/persistence/memrepo"
	"github.com/lifeops/scheduler/pkg/config"
	"github.com/lifeops/scheduler/pkg/logger"
)

type stubInvoker struct {
	result InvocationResult
	err    error
	calls  int
}

func (i *stubInvoker) Invoke(ctx context.Context, ic InvocationContext) (InvocationResult, error) {
	i.calls++
	return i.result, i.err
}

type recordingNotifier struct {
	notices []FailureNotice
}

func (n *recordingNotifier) NotifyFailure(ctx context.Context, notice FailureNotice) error {
	n.notices = append(n.notices, notice)
	return nil
}

type fixture struct {
	dispatcher *Dispatcher
	schedules  *memrepo.ScheduleRepo
	executions *memrepo.ExecutionRepo
	audits     *memrepo.AuditRepo
	invoker    *stubInvoker
	notifier   *recordingNotifier
	now        time.Time
}

func newFixture(t *testing.T, cfg config.DispatcherConfig) *fixture {
	t.Helper()
	f := &fixture{
		schedules:  memrepo.NewScheduleRepo(),
		executions: memrepo.NewExecutionRepo(),
		audits:     memrepo.NewAuditRepo(),
		invoker:    &stubInvoker{},
		notifier:   &recordingNotifier{},
		now:        time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	intents := memrepo.NewIntentRepo()
	require.NoError(t, intents.Create(context.Background(), &intent.TaskIntent{Summary: "water the plants"}))

	f.dispatcher = New(f.schedules, f.executions, intents, f.audits,
		f.invoker, f.notifier, NewWindowThrottle(nil), cfg, logger.NewNop())
	f.dispatcher.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) seed(t *testing.T, typ schedule.Type, failureCount int) (*schedule.Schedule, *execution.Execution) {
	t.Helper()
	runAt := f.now.Add(-time.Minute)
	s := &schedule.Schedule{
		TaskIntentID: 1,
		Type:         typ,
		State:        schedule.StateActive,
		FailureCount: failureCount,
		Definition: schedule.Definition{
			RunAt:         &runAt,
			IntervalCount: 1,
			IntervalUnit:  schedule.UnitHour,
		},
	}
	f.schedules.Seed(s)

	e := &execution.Execution{
		ScheduleID:      s.ID,
		TaskIntentID:    1,
		ScheduledFor:    runAt,
		Status:          execution.StatusQueued,
		MaxAttempts:     3,
		BackoffStrategy: execution.BackoffExponential,
		TraceID:         "trace-1",
	}
	require.NoError(t, f.executions.Create(context.Background(), e))
	return s, e
}

func TestDispatchSuccessRecurring(t *testing.T) {
	f := newFixture(t, config.DispatcherConfig{})
	s, e := f.seed(t, schedule.TypeInterval, 2)
	f.invoker.result = InvocationResult{Status: InvocationSuccess}

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), e.ID))

	got, _ := f.executions.GetByID(context.Background(), e.ID)
	assert.Equal(t, execution.StatusSucceeded, got.Status)
	assert.Equal(t, 1, got.AttemptCount)
	require.NotNil(t, got.FinishedAt)

	sched, _ := f.schedules.GetByID(context.Background(), s.ID)
	assert.Equal(t, schedule.StateActive, sched.State)
	assert.Equal(t, 0, sched.FailureCount, "a success resets the streak")
	assert.Equal(t, schedule.RunStatusSucceeded, sched.LastRunStatus)
	require.NotNil(t, sched.NextRunAt)
	assert.True(t, sched.NextRunAt.After(f.now))
	require.NotNil(t, sched.LastExecutionID)
	assert.Equal(t, e.ID, *sched.LastExecutionID)

	// queued -> running -> succeeded.
	require.Len(t, f.audits.ExecutionLogs, 2)
	assert.Equal(t, string(execution.StatusRunning), f.audits.ExecutionLogs[0].ToStatus)
	assert.Equal(t, string(execution.StatusSucceeded), f.audits.ExecutionLogs[1].ToStatus)
}

func TestDispatchSuccessOneTimeCompletes(t *testing.T) {
	f := newFixture(t, config.DispatcherConfig{})
	s, e := f.seed(t, schedule.TypeOneTime, 0)
	f.invoker.result = InvocationResult{Status: InvocationSuccess}

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), e.ID))

	sched, _ := f.schedules.GetByID(context.Background(), s.ID)
	assert.Equal(t, schedule.StateCompleted, sched.State)
	assert.Nil(t, sched.NextRunAt)
}

func TestDispatchFailureSchedulesRetry(t *testing.T) {
	f := newFixture(t, config.DispatcherConfig{RetryBaseDelay: 30 * time.Second})
	s, e := f.seed(t, schedule.TypeInterval, 0)
	f.invoker.result = InvocationResult{
		Status: InvocationFailure, ResultCode: "task_failed", ErrorMessage: "no soil moisture reading",
	}

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), e.ID))

	got, _ := f.executions.GetByID(context.Background(), e.ID)
	assert.Equal(t, execution.StatusRetryScheduled, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "task_failed", got.LastErrorCode)
	require.NotNil(t, got.NextRetryAt)
	assert.True(t, got.NextRetryAt.Equal(f.now.Add(30*time.Second)), "first retry waits the base delay")

	sched, _ := f.schedules.GetByID(context.Background(), s.ID)
	assert.Equal(t, 1, sched.FailureCount)
	// A retryable failure is not yet a completed run.
	assert.Empty(t, sched.LastRunStatus)
}

func TestDispatchFailureExhaustsRetries(t *testing.T) {
	f := newFixture(t, config.DispatcherConfig{RetryBaseDelay: 30 * time.Second})
	s, e := f.seed(t, schedule.TypeInterval, 1)
	e.RetryCount = 2 // third attempt is the last allowed
	require.NoError(t, f.executions.Save(context.Background(), e))
	f.invoker.result = InvocationResult{Status: InvocationFailure, ResultCode: "task_failed"}

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), e.ID))

	got, _ := f.executions.GetByID(context.Background(), e.ID)
	assert.Equal(t, execution.StatusFailed, got.Status)
	assert.Nil(t, got.NextRetryAt)

	sched, _ := f.schedules.GetByID(context.Background(), s.ID)
	assert.Equal(t, 2, sched.FailureCount)
	assert.Equal(t, schedule.RunStatusFailed, sched.LastRunStatus)
}

func TestDispatchInvokerErrorTreatedAsFailure(t *testing.T) {
	f := newFixture(t, config.DispatcherConfig{})
	_, e := f.seed(t, schedule.TypeInterval, 0)
	f.invoker.err = errors.New("connection refused")

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), e.ID))

	got, _ := f.executions.GetByID(context.Background(), e.ID)
	assert.Equal(t, execution.StatusRetryScheduled, got.Status)
	assert.Equal(t, ErrCodeAgentError, got.LastErrorCode)
	assert.Equal(t, "connection refused", got.LastErrorMessage)
}

func TestDispatchTerminalExecutionIsNoop(t *testing.T) {
	f := newFixture(t, config.DispatcherConfig{})
	_, e := f.seed(t, schedule.TypeInterval, 0)
	e.Status = execution.StatusSucceeded
	require.NoError(t, f.executions.Save(context.Background(), e))

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), e.ID))
	assert.Zero(t, f.invoker.calls)
}

func TestDispatchNotifiesAtThresholdOncePerWindow(t *testing.T) {
	f := newFixture(t, config.DispatcherConfig{
		FailureThreshold: 3,
		ThrottleWindow:   time.Hour,
	})
	s, _ := f.seed(t, schedule.TypeInterval, 0)
	f.invoker.result = InvocationResult{Status: InvocationFailure, ResultCode: "task_failed", ErrorMessage: "boom"}

	for i := 0; i < 4; i++ {
		e := &execution.Execution{
			ScheduleID:      s.ID,
			TaskIntentID:    1,
			ScheduledFor:    f.now,
			Status:          execution.StatusQueued,
			MaxAttempts:     1,
			BackoffStrategy: execution.BackoffNone,
			TraceID:         string(rune('a' + i)),
		}
		require.NoError(t, f.executions.Create(context.Background(), e))
		require.NoError(t, f.dispatcher.Dispatch(context.Background(), e.ID))
	}

	// Streaks 1 and 2 stay silent; 3 crosses the threshold; 4 is throttled.
	require.Len(t, f.notifier.notices, 1)
	notice := f.notifier.notices[0]
	assert.Equal(t, s.ID, notice.ScheduleID)
	assert.Equal(t, 3, notice.FailureCount)
	assert.Equal(t, 3, notice.Threshold)
	assert.Equal(t, "boom", notice.LastError)
	assert.Contains(t, notice.SignalRef, "schedule-failure:")
}

func TestBackoffDelay(t *testing.T) {
	f := newFixture(t, config.DispatcherConfig{
		RetryBaseDelay: 10 * time.Second,
		RetryMaxDelay:  time.Minute,
	})
	d := f.dispatcher

	assert.Equal(t, 10*time.Second, d.backoffDelay(execution.BackoffFixed, 3))
	assert.Equal(t, 10*time.Second, d.backoffDelay(execution.BackoffExponential, 1))
	assert.Equal(t, 20*time.Second, d.backoffDelay(execution.BackoffExponential, 2))
	assert.Equal(t, 40*time.Second, d.backoffDelay(execution.BackoffExponential, 3))
	assert.Equal(t, time.Minute, d.backoffDelay(execution.BackoffExponential, 10), "capped at the max delay")
}
