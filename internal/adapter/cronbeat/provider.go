// Package cronbeat is an in-process Adapter implementation backed by
// robfig/cron. Each registered schedule becomes one cron entry whose
// occurrence times come from the core's next-run computation, so the beat
// and the stored next_run_at can never disagree on the algorithm.
package cronbeat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lifeops/scheduler/internal/adapter"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/robfig/cron/v3"
	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"
)

// CallbackFunc receives a fired trigger. Wired to the callback bridge.
type CallbackFunc func(ctx context.Context, scheduleID uint64, scheduledFor time.Time, traceID string, source string)

type entry struct {
	id      cron.EntryID
	payload adapter.SchedulePayload
}

type Provider struct {
	cron       *cron.Cron
	sink       CallbackFunc
	logger     *zap.Logger
	instanceID string

	mu      sync.Mutex
	entries map[uint64]*entry
	paused  map[uint64]adapter.SchedulePayload
	running bool
}

var _ adapter.Adapter = (*Provider)(nil)

func New(instanceID string, sink CallbackFunc, logger *zap.Logger) *Provider {
	return &Provider{
		cron:       cron.New(),
		sink:       sink,
		logger:     logger,
		instanceID: instanceID,
		entries:    make(map[uint64]*entry),
		paused:     make(map[uint64]adapter.SchedulePayload),
	}
}

func (p *Provider) Start() {
	p.mu.Lock()
	p.running = true
	p.mu.Unlock()
	p.cron.Start()
	p.logger.Info("cron beat started", zap.String("instance_id", p.instanceID))
}

func (p *Provider) Stop() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	<-p.cron.Stop().Done()
	p.logger.Info("cron beat stopped")
}

func (p *Provider) RegisterSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	if err := validatePayload(payload); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.entries[payload.ScheduleID]; ok {
		p.cron.Remove(old.id)
	}
	delete(p.paused, payload.ScheduleID)

	return p.addEntryLocked(payload)
}

func (p *Provider) UpdateSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	if err := validatePayload(payload); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.paused[payload.ScheduleID]; ok {
		// Stays paused; remember the new shape for resume.
		p.paused[payload.ScheduleID] = payload
		return nil
	}
	old, ok := p.entries[payload.ScheduleID]
	if !ok {
		return adapter.NewError(adapter.ErrCodeUnknownSchedule, "schedule %d is not registered", payload.ScheduleID)
	}
	p.cron.Remove(old.id)
	return p.addEntryLocked(payload)
}

func (p *Provider) PauseSchedule(ctx context.Context, scheduleID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[scheduleID]
	if !ok {
		if _, alreadyPaused := p.paused[scheduleID]; alreadyPaused {
			return nil
		}
		return adapter.NewError(adapter.ErrCodeUnknownSchedule, "schedule %d is not registered", scheduleID)
	}
	p.cron.Remove(e.id)
	delete(p.entries, scheduleID)
	p.paused[scheduleID] = e.payload
	return nil
}

func (p *Provider) ResumeSchedule(ctx context.Context, payload adapter.SchedulePayload) error {
	if err := validatePayload(payload); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.paused, payload.ScheduleID)
	if old, ok := p.entries[payload.ScheduleID]; ok {
		p.cron.Remove(old.id)
	}
	return p.addEntryLocked(payload)
}

func (p *Provider) DeleteSchedule(ctx context.Context, scheduleID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[scheduleID]; ok {
		p.cron.Remove(e.id)
		delete(p.entries, scheduleID)
	}
	delete(p.paused, scheduleID)
	return nil
}

func (p *Provider) TriggerCallback(ctx context.Context, req adapter.TriggerRequest) error {
	if req.TraceID == "" {
		return adapter.NewError(adapter.ErrCodeInvalidPayload, "trigger for schedule %d has no trace id", req.ScheduleID)
	}
	go p.sink(context.Background(), req.ScheduleID, req.ScheduledFor, req.TraceID, req.Source)
	return nil
}

func (p *Provider) CheckHealth(ctx context.Context) adapter.HealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return adapter.HealthStatus{State: adapter.HealthDegraded, Message: "cron beat is stopped"}
	}
	return adapter.HealthStatus{
		State:   adapter.HealthReady,
		Message: fmt.Sprintf("%d schedules registered, %d paused", len(p.entries), len(p.paused)),
	}
}

// addEntryLocked installs the cron entry. Caller holds p.mu.
func (p *Provider) addEntryLocked(payload adapter.SchedulePayload) error {
	beat := newBeatSchedule(payload)
	scheduleID := payload.ScheduleID

	id := p.cron.Schedule(beat, cron.FuncJob(func() {
		traceID := fmt.Sprintf("beat-%d", idgen.NextId())
		scheduledFor := beat.lastFire()
		p.logger.Debug("schedule fired",
			zap.Uint64("schedule_id", scheduleID),
			zap.Time("scheduled_for", scheduledFor),
			zap.String("trace_id", traceID))
		p.sink(context.Background(), scheduleID, scheduledFor, traceID, "provider")
	}))

	p.entries[scheduleID] = &entry{id: id, payload: payload}
	return nil
}

func validatePayload(payload adapter.SchedulePayload) error {
	switch payload.Type {
	case schedule.TypeOneTime:
		if payload.OneTime == nil {
			return adapter.NewError(adapter.ErrCodeInvalidPayload, "one_time payload for schedule %d has no run_at spec", payload.ScheduleID)
		}
	case schedule.TypeInterval:
		if payload.Interval == nil {
			return adapter.NewError(adapter.ErrCodeInvalidPayload, "interval payload for schedule %d has no interval spec", payload.ScheduleID)
		}
		if !payload.Interval.Unit.Valid() {
			return adapter.NewError(adapter.ErrCodeUnsupportedUnit, "interval unit %q is not supported", payload.Interval.Unit)
		}
	case schedule.TypeCalendarRule:
		if payload.Calendar == nil {
			return adapter.NewError(adapter.ErrCodeInvalidPayload, "calendar payload for schedule %d has no rule spec", payload.ScheduleID)
		}
	case schedule.TypeConditional:
		if payload.Conditional == nil {
			return adapter.NewError(adapter.ErrCodeInvalidPayload, "conditional payload for schedule %d has no evaluation spec", payload.ScheduleID)
		}
		if !payload.Conditional.EvaluationUnit.Valid() {
			return adapter.NewError(adapter.ErrCodeUnsupportedUnit, "evaluation unit %q is not supported", payload.Conditional.EvaluationUnit)
		}
	default:
		return adapter.NewError(adapter.ErrCodeUnsupportedType, "schedule type %q is not supported", payload.Type)
	}
	return nil
}
