// Package dispatch drives executions through their attempt lifecycle:
// queued -> running -> succeeded | retry_scheduled | failed, with audit rows
// at every transition and throttled failure notification.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/domain/fault"
	"github.com/lifeops/scheduler/pkg/config"
)

var Provider = wire.NewSet(New, NewWindowThrottle)

type Dispatcher struct {
	schedules  schedule.Repo
	executions execution.Repo
	intents    intent.Repo
	audits     audit.Repo
	invoker    Invoker
	notifier   FailureNotifier
	throttle   Throttle
	cfg        config.DispatcherConfig
	logger     *zap.Logger
	now        func() time.Time
}

func New(
	schedules schedule.Repo,
	executions execution.Repo,
	intents intent.Repo,
	audits audit.Repo,
	invoker Invoker,
	notifier FailureNotifier,
	throttle Throttle,
	cfg config.DispatcherConfig,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		schedules:  schedules,
		executions: executions,
		intents:    intents,
		audits:     audits,
		invoker:    invoker,
		notifier:   notifier,
		throttle:   throttle,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Dispatch runs one attempt of an execution. Re-dispatching an execution
// that is already running or finished is a no-op, so provider redeliveries
// cannot double-run work.
func (d *Dispatcher) Dispatch(ctx context.Context, executionID uint64) error {
	exec, err := d.executions.GetByID(ctx, executionID)
	if err != nil {
		return err
	}
	if exec == nil {
		return fault.NotFound("execution", executionID)
	}
	if exec.Status.Terminal() || exec.Status == execution.StatusRunning {
		return nil
	}

	sched, err := d.schedules.GetByID(ctx, exec.ScheduleID)
	if err != nil {
		return err
	}
	if sched == nil {
		return fault.NotFound("schedule", exec.ScheduleID)
	}
	taskIntent, err := d.intents.GetByID(ctx, exec.TaskIntentID)
	if err != nil {
		return err
	}

	now := d.now()
	from := exec.Status
	exec.Start(now)
	if err := d.executions.Save(ctx, exec); err != nil {
		return err
	}
	d.appendTransition(ctx, exec, from, execution.StatusRunning, "")

	result, invokeErr := d.invoker.Invoke(ctx, InvocationContext{
		Execution: exec,
		Schedule:  sched,
		Intent:    taskIntent,
	})
	if invokeErr != nil {
		result = InvocationResult{
			Status:       InvocationFailure,
			ResultCode:   ErrCodeAgentError,
			ErrorMessage: invokeErr.Error(),
		}
	}

	if result.Status == InvocationSuccess {
		return d.succeed(ctx, exec, sched)
	}
	return d.fail(ctx, exec, sched, result)
}

func (d *Dispatcher) succeed(ctx context.Context, exec *execution.Execution, sched *schedule.Schedule) error {
	now := d.now()
	exec.Succeed(now)
	if err := d.executions.Save(ctx, exec); err != nil {
		return err
	}
	d.appendTransition(ctx, exec, execution.StatusRunning, execution.StatusSucceeded, "")

	return d.schedules.Execute(ctx, func(ctx context.Context) error {
		locked, err := d.schedules.GetByIDForUpdate(ctx, sched.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return fault.NotFound("schedule", sched.ID)
		}

		patch := schedule.NewPatch().
			WithLastRun(now, schedule.RunStatusSucceeded).
			WithFailureCount(0).
			WithLastExecutionID(exec.ID)

		if locked.Type.IsRecurring() {
			next, err := schedule.NextRunAfter(locked, now)
			if err != nil {
				d.logger.Warn("next run computation failed after success",
					zap.Uint64("schedule_id", locked.ID), zap.Error(err))
			}
			patch.WithNextRunAt(next.ToPointer())
		} else {
			patch.WithNextRunAt(nil)
			if locked.State == schedule.StateActive {
				patch.WithState(schedule.StateCompleted)
			}
		}
		return d.schedules.Update(ctx, locked.ID, patch)
	})
}

func (d *Dispatcher) fail(ctx context.Context, exec *execution.Execution, sched *schedule.Schedule, result InvocationResult) error {
	now := d.now()
	message := result.ErrorMessage
	if message == "" {
		message = result.Message
	}
	code := result.ResultCode
	if code == "" {
		code = ErrCodeAgentError
	}
	exec.Fail(now, code, message)

	terminal := exec.BackoffStrategy == execution.BackoffNone || exec.RetriesExhausted()
	if terminal {
		exec.MarkTerminalFailure()
		if err := d.executions.Save(ctx, exec); err != nil {
			return err
		}
		d.appendTransition(ctx, exec, execution.StatusRunning, execution.StatusFailed, message)
	} else {
		retryAt := now.Add(d.backoffDelay(exec.BackoffStrategy, exec.RetryCount))
		exec.ScheduleRetry(retryAt)
		if err := d.executions.Save(ctx, exec); err != nil {
			return err
		}
		d.appendTransition(ctx, exec, execution.StatusRunning, execution.StatusRetryScheduled, message)
	}

	var streak int
	err := d.schedules.Execute(ctx, func(ctx context.Context) error {
		locked, err := d.schedules.GetByIDForUpdate(ctx, sched.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return fault.NotFound("schedule", sched.ID)
		}

		streak = locked.FailureCount + 1
		patch := schedule.NewPatch().
			WithFailureCount(streak).
			WithLastExecutionID(exec.ID)
		if terminal {
			patch.WithLastRun(now, schedule.RunStatusFailed)
		}
		return d.schedules.Update(ctx, locked.ID, patch)
	})
	if err != nil {
		return err
	}

	d.maybeNotify(ctx, exec, streak)
	return nil
}

// maybeNotify raises a failure notice once the streak crosses the threshold,
// at most once per throttle window per schedule.
func (d *Dispatcher) maybeNotify(ctx context.Context, exec *execution.Execution, streak int) {
	if d.cfg.FailureThreshold <= 0 || streak < d.cfg.FailureThreshold {
		return
	}

	signalRef := fmt.Sprintf("schedule-failure:%d", exec.ScheduleID)
	claimed, err := d.throttle.Claim(ctx, signalRef, d.cfg.ThrottleWindow)
	if err != nil {
		// Claim state is unknown; staying silent beats double-firing.
		d.logger.Error("failure throttle claim failed",
			zap.String("signal_ref", signalRef), zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	notice := FailureNotice{
		SignalRef:      signalRef,
		ScheduleID:     exec.ScheduleID,
		ExecutionID:    exec.ID,
		FailureCount:   streak,
		Threshold:      d.cfg.FailureThreshold,
		ThrottleWindow: d.cfg.ThrottleWindow,
		LastErrorCode:  exec.LastErrorCode,
		LastError:      exec.LastErrorMessage,
	}
	if err := d.notifier.NotifyFailure(ctx, notice); err != nil {
		d.logger.Error("failure notification failed",
			zap.String("signal_ref", signalRef), zap.Error(err))
	}
}

// backoffDelay computes the advisory delay before the next retry.
// retryCount is the number of failures so far, at least 1.
func (d *Dispatcher) backoffDelay(strategy execution.BackoffStrategy, retryCount int) time.Duration {
	base := d.cfg.RetryBaseDelay
	if base <= 0 {
		base = 30 * time.Second
	}
	if strategy != execution.BackoffExponential {
		return base
	}
	delay := base << uint(retryCount-1)
	if max := d.cfg.RetryMaxDelay; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func (d *Dispatcher) appendTransition(ctx context.Context, exec *execution.Execution, from, to execution.Status, message string) {
	err := d.audits.AppendExecutionLog(ctx, &audit.ExecutionAuditLog{
		ExecutionID: exec.ID,
		ScheduleID:  exec.ScheduleID,
		FromStatus:  string(from),
		ToStatus:    string(to),
		Attempt:     exec.AttemptCount,
		Message:     message,
		TraceID:     exec.TraceID,
	})
	if err != nil {
		d.logger.Error("failed to append execution audit log",
			zap.Uint64("execution_id", exec.ID), zap.Error(err))
	}
}
