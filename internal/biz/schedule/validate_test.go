package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeops/scheduler/internal/domain/fault"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestValidateDefinition_OneTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := ValidateDefinition(TypeOneTime, Definition{}, ValidateOptions{})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	def := Definition{RunAt: timePtr(now.Add(time.Hour))}
	assert.NoError(t, ValidateDefinition(TypeOneTime, def, ValidateOptions{}))

	// Past run_at passes unless the caller demands a future one.
	past := Definition{RunAt: timePtr(now.Add(-time.Hour))}
	assert.NoError(t, ValidateDefinition(TypeOneTime, past, ValidateOptions{}))
	err = ValidateDefinition(TypeOneTime, past, ValidateOptions{RequireFutureRunAt: true, Now: now})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	// Exactly now is not strictly in the future.
	atNow := Definition{RunAt: timePtr(now)}
	err = ValidateDefinition(TypeOneTime, atNow, ValidateOptions{RequireFutureRunAt: true, Now: now})
	assert.Error(t, err)
}

func TestValidateDefinition_Interval(t *testing.T) {
	assert.NoError(t, ValidateDefinition(TypeInterval, Definition{
		IntervalCount: 2,
		IntervalUnit:  UnitHour,
	}, ValidateOptions{}))

	err := ValidateDefinition(TypeInterval, Definition{IntervalCount: 0, IntervalUnit: UnitHour}, ValidateOptions{})
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	err = ValidateDefinition(TypeInterval, Definition{IntervalCount: 1, IntervalUnit: "fortnight"}, ValidateOptions{})
	assert.True(t, fault.IsKind(err, fault.KindValidation))
}

func TestValidateDefinition_CalendarRule(t *testing.T) {
	assert.NoError(t, ValidateDefinition(TypeCalendarRule, Definition{
		RRule: "FREQ=WEEKLY;BYDAY=MO,WE",
	}, ValidateOptions{}))

	// The RRULE: prefix is tolerated.
	assert.NoError(t, ValidateDefinition(TypeCalendarRule, Definition{
		RRule: "RRULE:FREQ=DAILY;INTERVAL=2",
	}, ValidateOptions{}))

	err := ValidateDefinition(TypeCalendarRule, Definition{}, ValidateOptions{})
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	err = ValidateDefinition(TypeCalendarRule, Definition{RRule: "FREQ=SECONDLY"}, ValidateOptions{})
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	err = ValidateDefinition(TypeCalendarRule, Definition{RRule: "BYDAY=MO"}, ValidateOptions{})
	assert.True(t, fault.IsKind(err, fault.KindValidation))
}

func TestValidateDefinition_Conditional(t *testing.T) {
	valid := Definition{
		PredicateSubject:        "inbox.unread_count",
		PredicateOperator:       OpGt,
		PredicateValue:          "10",
		EvaluationIntervalCount: 15,
		EvaluationIntervalUnit:  UnitMinute,
	}
	assert.NoError(t, ValidateDefinition(TypeConditional, valid, ValidateOptions{}))

	missing := valid
	missing.PredicateSubject = "  "
	assert.Error(t, ValidateDefinition(TypeConditional, missing, ValidateOptions{}))

	badOp := valid
	badOp.PredicateOperator = "contains"
	assert.Error(t, ValidateDefinition(TypeConditional, badOp, ValidateOptions{}))

	// exists needs no value.
	exists := valid
	exists.PredicateOperator = OpExists
	exists.PredicateValue = ""
	assert.NoError(t, ValidateDefinition(TypeConditional, exists, ValidateOptions{}))

	noValue := valid
	noValue.PredicateValue = ""
	assert.Error(t, ValidateDefinition(TypeConditional, noValue, ValidateOptions{}))

	noCadence := valid
	noCadence.EvaluationIntervalCount = 0
	assert.Error(t, ValidateDefinition(TypeConditional, noCadence, ValidateOptions{}))
}

func TestValidateDefinition_UnknownType(t *testing.T) {
	err := ValidateDefinition("quarterly", Definition{}, ValidateOptions{})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindValidation))
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone(""))
	assert.NoError(t, ValidateTimezone("America/New_York"))
	assert.Error(t, ValidateTimezone("Mars/Olympus_Mons"))
}
