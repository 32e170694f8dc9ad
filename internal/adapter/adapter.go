// Package adapter defines the boundary to the external execution-triggering
// provider. The scheduler core registers cadences here; the provider delivers
// callbacks when a schedule's moment arrives.
package adapter

import (
	"context"
	"time"

	"github.com/lifeops/scheduler/internal/biz/schedule"
)

// Adapter is implemented by a concrete time/queue provider (in-process cron
// beat, message-queue ETA delivery, ...). All operations take the normalized
// payload; unsupported shapes fail with a coded Error, never a generic one.
type Adapter interface {
	RegisterSchedule(ctx context.Context, payload SchedulePayload) error
	UpdateSchedule(ctx context.Context, payload SchedulePayload) error
	PauseSchedule(ctx context.Context, scheduleID uint64) error
	ResumeSchedule(ctx context.Context, payload SchedulePayload) error
	DeleteSchedule(ctx context.Context, scheduleID uint64) error

	// TriggerCallback requests an immediate out-of-cadence dispatch.
	TriggerCallback(ctx context.Context, req TriggerRequest) error

	CheckHealth(ctx context.Context) HealthStatus
}

// SchedulePayload is the normalized shape handed to the provider. Exactly
// one of the per-kind fields is set, matching Type.
type SchedulePayload struct {
	ScheduleID uint64
	Type       schedule.Type
	Timezone   string

	OneTime     *OneTimeSpec
	Interval    *IntervalSpec
	Calendar    *CalendarSpec
	Conditional *ConditionalSpec
}

type OneTimeSpec struct {
	RunAt time.Time
}

type IntervalSpec struct {
	Count  int
	Unit   schedule.IntervalUnit
	Anchor time.Time
}

type CalendarSpec struct {
	RRule  string
	Anchor time.Time
}

type ConditionalSpec struct {
	EvaluationCount int
	EvaluationUnit  schedule.IntervalUnit
}

// FromSchedule builds the payload for a schedule.
func FromSchedule(s *schedule.Schedule) SchedulePayload {
	p := SchedulePayload{
		ScheduleID: s.ID,
		Type:       s.Type,
		Timezone:   s.Timezone,
	}
	switch s.Type {
	case schedule.TypeOneTime:
		if s.Definition.RunAt != nil {
			p.OneTime = &OneTimeSpec{RunAt: *s.Definition.RunAt}
		}
	case schedule.TypeInterval:
		p.Interval = &IntervalSpec{
			Count:  s.Definition.IntervalCount,
			Unit:   s.Definition.IntervalUnit,
			Anchor: s.Anchor(),
		}
	case schedule.TypeCalendarRule:
		p.Calendar = &CalendarSpec{
			RRule:  s.Definition.RRule,
			Anchor: s.Anchor(),
		}
	case schedule.TypeConditional:
		p.Conditional = &ConditionalSpec{
			EvaluationCount: s.Definition.EvaluationIntervalCount,
			EvaluationUnit:  s.Definition.EvaluationIntervalUnit,
		}
	}
	return p
}

// TriggerRequest asks for an immediate callback delivery.
type TriggerRequest struct {
	ScheduleID   uint64
	ScheduledFor time.Time
	TraceID      string
	Source       string
}

type HealthState string

const (
	HealthReady    HealthState = "ready"
	HealthDegraded HealthState = "degraded"
)

type HealthStatus struct {
	State   HealthState
	Message string
}
