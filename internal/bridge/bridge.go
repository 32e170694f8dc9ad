// Package bridge converts provider callbacks into executions, exactly one
// per (schedule_id, trace_id), and hands them to the dispatcher.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/domain/fault"
	"github.com/lifeops/scheduler/pkg/config"
)

var Provider = wire.NewSet(New)

// Callback is one inbound notification that a schedule's moment arrived.
type Callback struct {
	ScheduleID   uint64
	ScheduledFor time.Time
	TraceID      string
	EmittedAt    time.Time
	Source       execution.TriggerSource
}

type OutcomeStatus string

const (
	OutcomeAccepted  OutcomeStatus = "accepted"
	OutcomeDuplicate OutcomeStatus = "duplicate"
)

// Outcome reports what became of a callback. Duplicates reference the
// execution recorded for the first delivery; a callback is never silently
// dropped.
type Outcome struct {
	Status      OutcomeStatus
	ExecutionID uint64
}

// Dispatcher drives a queued execution through its attempt lifecycle.
type Dispatcher interface {
	Dispatch(ctx context.Context, executionID uint64) error
}

type Bridge struct {
	schedules  schedule.Repo
	executions execution.Repo
	dispatcher Dispatcher
	cfg        config.DispatcherConfig
	logger     *zap.Logger
}

func New(
	schedules schedule.Repo,
	executions execution.Repo,
	dispatcher Dispatcher,
	cfg config.DispatcherConfig,
	logger *zap.Logger,
) *Bridge {
	return &Bridge{
		schedules:  schedules,
		executions: executions,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Handle records the callback idempotently and dispatches the resulting
// execution. The dedupe check is atomic with execution creation: concurrent
// deliveries of the same trace id yield one accepted and one duplicate.
func (b *Bridge) Handle(ctx context.Context, cb Callback) (*Outcome, error) {
	if cb.TraceID == "" {
		return nil, fault.Validation("trace_id", "callback requires a trace id")
	}

	sched, err := b.schedules.GetByID(ctx, cb.ScheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fault.NotFound("schedule", cb.ScheduleID)
	}

	source := cb.Source
	if source == "" {
		source = execution.TriggerProvider
	}

	exec := &execution.Execution{
		ScheduleID:      sched.ID,
		TaskIntentID:    sched.TaskIntentID,
		ScheduledFor:    cb.ScheduledFor,
		Status:          execution.StatusQueued,
		MaxAttempts:     b.cfg.DefaultMaxAttempts,
		BackoffStrategy: execution.BackoffExponential,
		TriggerSource:   source,
		ActorType:       actor.TypeSystem,
		ActorID:         "provider",
		TraceID:         cb.TraceID,
		CorrelationID:   cb.TraceID,
	}

	if err := b.executions.Create(ctx, exec); err != nil {
		if errors.Is(err, execution.ErrDuplicateTrace) {
			existing, lookupErr := b.executions.GetByScheduleAndTrace(ctx, cb.ScheduleID, cb.TraceID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			b.logger.Info("duplicate callback short-circuited",
				zap.Uint64("schedule_id", cb.ScheduleID),
				zap.String("trace_id", cb.TraceID),
				zap.Uint64("execution_id", existing.ID))
			return &Outcome{Status: OutcomeDuplicate, ExecutionID: existing.ID}, nil
		}
		return nil, err
	}

	b.logger.Info("callback accepted",
		zap.Uint64("schedule_id", cb.ScheduleID),
		zap.Uint64("execution_id", exec.ID),
		zap.String("trace_id", cb.TraceID),
		zap.String("source", string(source)))

	// The execution exists regardless of how dispatch goes; a dispatch
	// failure is recorded on the execution, not surfaced here.
	if err := b.dispatcher.Dispatch(ctx, exec.ID); err != nil {
		b.logger.Error("dispatch failed",
			zap.Uint64("execution_id", exec.ID),
			zap.Error(err))
	}

	return &Outcome{Status: OutcomeAccepted, ExecutionID: exec.ID}, nil
}
