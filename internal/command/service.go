// Package command is the write-side service for schedules: every mutation
// validates, persists, audits and synchronizes the external provider under a
// per-schedule row lock.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/adapter"
	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/domain/fault"
)

var Provider = wire.NewSet(NewService)

type Service struct {
	intents   intent.Repo
	schedules schedule.Repo
	audits    audit.Repo
	provider  adapter.Adapter
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(
	intents intent.Repo,
	schedules schedule.Repo,
	audits audit.Repo,
	provider adapter.Adapter,
	logger *zap.Logger,
) *Service {
	return &Service{
		intents:   intents,
		schedules: schedules,
		audits:    audits,
		provider:  provider,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates the definition, persists intent and schedule in one
// transaction, computes next_run_at, registers an active schedule with the
// provider and writes the create audit row. A provider failure rolls the
// transaction back and surfaces as an adapter-sync fault.
func (s *Service) Create(ctx context.Context, req CreateRequest, act actor.Context) (*schedule.Schedule, error) {
	state := req.InitialState
	if state == "" {
		state = schedule.StateActive
	}
	if state != schedule.StateDraft && state != schedule.StateActive {
		return nil, fault.Validation("state", "schedule must be created in draft or active state")
	}
	if err := schedule.ValidateTimezone(req.Timezone); err != nil {
		return nil, err
	}
	if err := schedule.ValidateDefinition(req.Type, req.Definition, schedule.ValidateOptions{
		RequireFutureRunAt: req.RequireFutureRunAt,
		Now:                s.now(),
	}); err != nil {
		return nil, err
	}

	sched := &schedule.Schedule{
		Type:           req.Type,
		State:          state,
		Timezone:       req.Timezone,
		Definition:     req.Definition,
		CreatorType:    act.ActorType,
		CreatorID:      act.ActorID,
		CreatorChannel: act.Channel,
	}

	err := s.schedules.Execute(ctx, func(ctx context.Context) error {
		taskIntent := &intent.TaskIntent{
			Summary:        req.IntentSummary,
			Details:        req.IntentDetails,
			OriginRef:      req.OriginRef,
			CreatorType:    act.ActorType,
			CreatorID:      act.ActorID,
			CreatorChannel: act.Channel,
		}
		if err := s.intents.Create(ctx, taskIntent); err != nil {
			return err
		}

		sched.TaskIntentID = taskIntent.ID
		if err := s.schedules.Create(ctx, sched); err != nil {
			return err
		}

		next := s.computeNextRun(sched, s.now())
		sched.NextRunAt = next
		if err := s.schedules.Update(ctx, sched.ID, schedule.NewPatch().WithNextRunAt(next)); err != nil {
			return err
		}

		if err := s.appendScheduleLog(ctx, sched.ID, audit.EventCreate, act,
			fmt.Sprintf("create(%s, state=%s)", sched.Type, sched.State),
			map[string]any{"schedule_type": string(sched.Type), "state": string(sched.State)}); err != nil {
			return err
		}

		if sched.State == schedule.StateActive {
			if err := s.provider.RegisterSchedule(ctx, adapter.FromSchedule(sched)); err != nil {
				return fault.AdapterSync("register", sched.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// Update re-validates the merged definition and re-registers with the
// provider. Changing task_intent_id is rejected as an immutable-field fault.
func (s *Service) Update(ctx context.Context, id uint64, req UpdateRequest, act actor.Context) (*schedule.Schedule, error) {
	var updated *schedule.Schedule

	err := s.schedules.Execute(ctx, func(ctx context.Context) error {
		sched, err := s.lockSchedule(ctx, id)
		if err != nil {
			return err
		}

		if intentID, ok := req.TaskIntentID.Get(); ok && intentID != sched.TaskIntentID {
			return fault.Immutable("task_intent_id")
		}

		changed := map[string]any{}
		patch := schedule.NewPatch()

		if tz, ok := req.Timezone.Get(); ok && tz != sched.Timezone {
			if err := schedule.ValidateTimezone(tz); err != nil {
				return err
			}
			changed["timezone"] = tz
			sched.Timezone = tz
			patch.WithTimezone(tz)
		}
		if def, ok := req.Definition.Get(); ok {
			changed["definition"] = string(sched.Type)
			sched.Definition = def
			patch.WithDefinition(def)
		}
		if len(changed) == 0 {
			updated = sched
			return nil
		}

		if err := schedule.ValidateDefinition(sched.Type, sched.Definition, schedule.ValidateOptions{Now: s.now()}); err != nil {
			return err
		}

		next := s.computeNextRun(sched, s.now())
		sched.NextRunAt = next
		patch.WithNextRunAt(next)

		if err := s.schedules.Update(ctx, sched.ID, patch); err != nil {
			return err
		}
		if err := s.appendScheduleLog(ctx, sched.ID, audit.EventUpdate, act,
			fmt.Sprintf("update(%s)", sched.Type), changed); err != nil {
			return err
		}

		if sched.State == schedule.StateActive || sched.State == schedule.StatePaused {
			if err := s.provider.UpdateSchedule(ctx, adapter.FromSchedule(sched)); err != nil {
				return fault.AdapterSync("update", sched.ID, err)
			}
		}

		updated = sched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Pause moves an active schedule to paused and pauses the provider entry.
func (s *Service) Pause(ctx context.Context, id uint64, opts TransitionOptions, act actor.Context) error {
	return s.transition(ctx, id, schedule.StatePaused, audit.EventPause, opts, act)
}

// Resume moves a paused (or draft) schedule to active, recomputes
// next_run_at and re-arms the provider entry.
func (s *Service) Resume(ctx context.Context, id uint64, opts TransitionOptions, act actor.Context) error {
	return s.transition(ctx, id, schedule.StateActive, audit.EventResume, opts, act)
}

// Delete cancels a schedule and removes the provider entry. Only valid from
// states that may transition to canceled.
func (s *Service) Delete(ctx context.Context, id uint64, act actor.Context) error {
	return s.transition(ctx, id, schedule.StateCanceled, audit.EventDelete, TransitionOptions{}, act)
}

// Archive retires a canceled or completed schedule.
func (s *Service) Archive(ctx context.Context, id uint64, act actor.Context) error {
	return s.transition(ctx, id, schedule.StateArchived, audit.EventArchive, TransitionOptions{}, act)
}

func (s *Service) transition(ctx context.Context, id uint64, target schedule.State, event audit.EventType, opts TransitionOptions, act actor.Context) error {
	return s.schedules.Execute(ctx, func(ctx context.Context) error {
		sched, err := s.lockSchedule(ctx, id)
		if err != nil {
			return err
		}

		noop, err := schedule.ValidateTransition(sched.State, target, opts.AllowNoop)
		if err != nil {
			return err
		}
		if noop {
			return nil
		}
		from := sched.State

		patch := schedule.NewPatch().WithState(target)
		if target == schedule.StateActive {
			sched.State = target
			next := s.computeNextRun(sched, s.now())
			sched.NextRunAt = next
			patch.WithNextRunAt(next)
		}
		if err := s.schedules.Update(ctx, id, patch); err != nil {
			return err
		}
		if err := s.appendScheduleLog(ctx, id, event, act,
			fmt.Sprintf("state: %s -> %s", from, target),
			map[string]any{"from": string(from), "to": string(target)}); err != nil {
			return err
		}

		if err := s.syncProvider(ctx, sched, from, target); err != nil {
			return err
		}
		return nil
	})
}

// syncProvider mirrors a state transition onto the provider.
func (s *Service) syncProvider(ctx context.Context, sched *schedule.Schedule, from, to schedule.State) error {
	var err error
	var op string
	switch to {
	case schedule.StatePaused:
		op = "pause"
		err = s.provider.PauseSchedule(ctx, sched.ID)
	case schedule.StateActive:
		if from == schedule.StateDraft {
			// First activation: the provider has never seen this schedule.
			op = "register"
			err = s.provider.RegisterSchedule(ctx, adapter.FromSchedule(sched))
		} else {
			op = "resume"
			err = s.provider.ResumeSchedule(ctx, adapter.FromSchedule(sched))
		}
	case schedule.StateCanceled, schedule.StateArchived:
		op = "delete"
		err = s.provider.DeleteSchedule(ctx, sched.ID)
	default:
		return nil
	}
	if err != nil {
		return fault.AdapterSync(op, sched.ID, err)
	}
	return nil
}

// RunNow triggers an out-of-cadence callback without changing schedule
// state; a paused schedule stays paused. Returns the run_now audit row id.
func (s *Service) RunNow(ctx context.Context, id uint64, req RunNowRequest, act actor.Context) (uint64, error) {
	traceID := req.TraceID
	if traceID == "" {
		traceID = uuid.NewString()
	}

	var auditID uint64
	err := s.schedules.Execute(ctx, func(ctx context.Context) error {
		sched, err := s.lockSchedule(ctx, id)
		if err != nil {
			return err
		}
		if sched.State != schedule.StateActive && sched.State != schedule.StatePaused {
			return fault.Conflict("schedule_not_runnable",
				fmt.Sprintf("cannot run schedule in state %s", sched.State))
		}

		scheduledFor := req.ScheduledFor.OrElse(s.now())

		log := &audit.ScheduleAuditLog{
			ScheduleID: id,
			Event:      audit.EventRunNow,
			Diff:       fmt.Sprintf("run_now(state=%s)", sched.State),
			Detail:     map[string]any{"scheduled_for": scheduledFor.UTC().Format(time.RFC3339), "trace_id": traceID},
			ActorType:  act.ActorType,
			ActorID:    act.ActorID,
			Channel:    act.Channel,
			TraceID:    traceID,
			Reason:     act.Reason,
		}
		if err := s.audits.AppendScheduleLog(ctx, log); err != nil {
			return err
		}
		auditID = log.ID

		if err := s.provider.TriggerCallback(ctx, adapter.TriggerRequest{
			ScheduleID:   id,
			ScheduledFor: scheduledFor,
			TraceID:      traceID,
			Source:       "run_now",
		}); err != nil {
			return fault.AdapterSync("trigger", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return auditID, nil
}

// SupersedeIntent points an intent at its replacement and audits nothing:
// intents carry no lifecycle of their own.
func (s *Service) SupersedeIntent(ctx context.Context, id, byID uint64) error {
	old, err := s.intents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return fault.NotFound("task_intent", id)
	}
	if _, err := s.intents.GetByID(ctx, byID); err != nil {
		return err
	}
	patch := old.Supersede(byID)
	if patch == nil {
		return nil
	}
	return s.intents.Update(ctx, id, patch)
}

func (s *Service) lockSchedule(ctx context.Context, id uint64) (*schedule.Schedule, error) {
	sched, err := s.schedules.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fault.NotFound("schedule", id)
	}
	return sched, nil
}

func (s *Service) computeNextRun(sched *schedule.Schedule, ref time.Time) *time.Time {
	next, err := schedule.NextRunAfter(sched, ref)
	if err != nil {
		s.logger.Warn("next run computation failed",
			zap.Uint64("schedule_id", sched.ID),
			zap.Error(err))
		return nil
	}
	return next.ToPointer()
}

func (s *Service) appendScheduleLog(ctx context.Context, scheduleID uint64, event audit.EventType, act actor.Context, diff string, detail map[string]any) error {
	return s.audits.AppendScheduleLog(ctx, &audit.ScheduleAuditLog{
		ScheduleID: scheduleID,
		Event:      event,
		Diff:       diff,
		Detail:     detail,
		ActorType:  act.ActorType,
		ActorID:    act.ActorID,
		Channel:    act.Channel,
		TraceID:    act.TraceID,
		Reason:     act.Reason,
	})
}
