package cronbeat

import (
	"sync"
	"time"

	"github.com/lifeops/scheduler/internal/adapter"
	"github.com/lifeops/scheduler/internal/biz/schedule"
)

// beatSchedule adapts the core next-run computation to robfig/cron's
// Schedule interface. Returning the zero time retires the entry, which is
// how a one_time schedule or an exhausted rule stops firing.
type beatSchedule struct {
	spec schedule.Schedule

	mu    sync.Mutex
	last  time.Time
	fired bool
}

var _ = beatScheduleImplementsCron()

func beatScheduleImplementsCron() interface{ Next(time.Time) time.Time } {
	return (*beatSchedule)(nil)
}

func newBeatSchedule(payload adapter.SchedulePayload) *beatSchedule {
	spec := schedule.Schedule{
		ID:       payload.ScheduleID,
		Type:     payload.Type,
		Timezone: payload.Timezone,
	}
	switch payload.Type {
	case schedule.TypeOneTime:
		runAt := payload.OneTime.RunAt
		spec.Definition.RunAt = &runAt
	case schedule.TypeInterval:
		anchor := payload.Interval.Anchor
		spec.Definition.IntervalCount = payload.Interval.Count
		spec.Definition.IntervalUnit = payload.Interval.Unit
		spec.Definition.AnchorAt = &anchor
	case schedule.TypeCalendarRule:
		anchor := payload.Calendar.Anchor
		spec.Definition.RRule = payload.Calendar.RRule
		spec.Definition.CalendarAnchorAt = &anchor
	case schedule.TypeConditional:
		spec.Definition.EvaluationIntervalCount = payload.Conditional.EvaluationCount
		spec.Definition.EvaluationIntervalUnit = payload.Conditional.EvaluationUnit
	}
	return &beatSchedule{spec: spec}
}

func (b *beatSchedule) Next(t time.Time) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.spec.Type == schedule.TypeOneTime {
		if b.fired {
			return time.Time{}
		}
		b.fired = true
		b.last = *b.spec.Definition.RunAt
		if !b.last.After(t) {
			// Registered after its moment; fire immediately rather than drop.
			b.last = t.Add(time.Second)
		}
		return b.last
	}

	next, err := schedule.NextRunAfter(&b.spec, t)
	if err != nil || next.IsAbsent() {
		return time.Time{}
	}
	b.last = next.MustGet()
	return b.last
}

// lastFire is the occurrence time most recently handed to cron.
func (b *beatSchedule) lastFire() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last.IsZero() {
		return time.Now()
	}
	return b.last
}
