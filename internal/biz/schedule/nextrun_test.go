package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunAfter_OneTime(t *testing.T) {
	runAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	s := &Schedule{
		Type:       TypeOneTime,
		Definition: Definition{RunAt: &runAt},
	}

	next, err := NextRunAfter(s, runAt.Add(-time.Hour))
	require.NoError(t, err)
	require.True(t, next.IsPresent())
	assert.Equal(t, runAt, next.MustGet())
}

func TestNextRunAfter_IntervalFromAnchor(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := &Schedule{
		Type: TypeInterval,
		Definition: Definition{
			IntervalCount: 6,
			IntervalUnit:  UnitHour,
			AnchorAt:      &anchor,
		},
	}

	// A future anchor is itself the first occurrence.
	next, err := NextRunAfter(s, anchor.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, anchor, next.MustGet())

	// Occurrences stay on the anchor grid, strictly after ref.
	next, err = NextRunAfter(s, anchor.Add(1*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, anchor.Add(6*time.Hour), next.MustGet())

	// Landing exactly on an occurrence advances to the next one.
	next, err = NextRunAfter(s, anchor.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, anchor.Add(18*time.Hour), next.MustGet())
}

func TestNextRunAfter_MonthlyClampsDayOfMonth(t *testing.T) {
	anchor := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)
	s := &Schedule{
		Type: TypeInterval,
		Definition: Definition{
			IntervalCount: 1,
			IntervalUnit:  UnitMonth,
			AnchorAt:      &anchor,
		},
	}

	// Jan 31 + 1 month clamps to Feb 28, never rolls into March.
	next, err := NextRunAfter(s, anchor)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC), next.MustGet())

	// The clamp never drifts: March recovers the anchor's day.
	next, err = NextRunAfter(s, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC), next.MustGet())
}

func TestNextRunAfter_CalendarRule(t *testing.T) {
	anchor := time.Date(2026, 1, 5, 7, 30, 0, 0, time.UTC) // a Monday
	s := &Schedule{
		Type: TypeCalendarRule,
		Definition: Definition{
			RRule:            "FREQ=WEEKLY;BYDAY=MO",
			CalendarAnchorAt: &anchor,
		},
	}

	next, err := NextRunAfter(s, anchor)
	require.NoError(t, err)
	assert.Equal(t, anchor.AddDate(0, 0, 7), next.MustGet())
}

func TestNextRunAfter_CalendarRuleExhausted(t *testing.T) {
	anchor := time.Date(2026, 1, 5, 7, 30, 0, 0, time.UTC)
	s := &Schedule{
		Type: TypeCalendarRule,
		Definition: Definition{
			RRule:            "FREQ=DAILY;COUNT=3",
			CalendarAnchorAt: &anchor,
		},
	}

	next, err := NextRunAfter(s, anchor.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.True(t, next.IsAbsent())
}

func TestNextRunAfter_CalendarRuleMalformed(t *testing.T) {
	s := &Schedule{
		Type:       TypeCalendarRule,
		Definition: Definition{RRule: "FREQ=NOT_A_FREQ"},
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	next, err := NextRunAfter(s, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
	assert.True(t, next.IsAbsent())
}

func TestNextRunAfter_Conditional(t *testing.T) {
	s := &Schedule{
		Type: TypeConditional,
		Definition: Definition{
			EvaluationIntervalCount: 15,
			EvaluationIntervalUnit:  UnitMinute,
		},
	}

	ref := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	next, err := NextRunAfter(s, ref)
	require.NoError(t, err)
	assert.Equal(t, ref.Add(15*time.Minute), next.MustGet())
}

func TestNextRunAfter_TimezoneNormalization(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Schedule{
		Type:     TypeInterval,
		Timezone: "America/New_York",
		Definition: Definition{
			IntervalCount: 1,
			IntervalUnit:  UnitDay,
			AnchorAt:      &anchor,
		},
	}

	next, err := NextRunAfter(s, anchor.Add(time.Hour))
	require.NoError(t, err)
	got := next.MustGet()
	assert.Equal(t, "America/New_York", got.Location().String())
	assert.True(t, got.Equal(anchor.Add(24*time.Hour)))
}

func TestScheduleAnchorFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2026, 2, 2, 2, 0, 0, 0, time.UTC)
	s := &Schedule{
		Type:      TypeInterval,
		CreatedAt: created,
		Definition: Definition{
			IntervalCount: 1,
			IntervalUnit:  UnitWeek,
		},
	}
	assert.Equal(t, created, s.Anchor())
}
