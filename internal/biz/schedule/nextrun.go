package schedule

import (
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// NextRunAfter computes the first occurrence strictly after ref, normalized
// to the schedule's timezone (UTC when unset). A schedule with no further
// occurrence yields None. A malformed calendar rule also yields None,
// together with the parse error so the caller can log it; it is never fatal.
func NextRunAfter(s *Schedule, ref time.Time) (mo.Option[time.Time], error) {
	loc := s.Location()
	ref = ref.In(loc)

	switch s.Type {
	case TypeOneTime:
		if s.Definition.RunAt == nil {
			return mo.None[time.Time](), nil
		}
		return mo.Some(s.Definition.RunAt.In(loc)), nil

	case TypeInterval:
		anchor := s.Anchor().In(loc)
		return mo.Some(nextIntervalOccurrence(anchor, ref, s.Definition.IntervalCount, s.Definition.IntervalUnit)), nil

	case TypeCalendarRule:
		return nextRuleOccurrence(s.Definition.RRule, s.Anchor().In(loc), ref)

	case TypeConditional:
		// The conditional cadence is the re-check interval, independent of
		// the predicate's outcome.
		return mo.Some(addStep(ref, s.Definition.EvaluationIntervalCount, s.Definition.EvaluationIntervalUnit)), nil
	}

	return mo.None[time.Time](), fmt.Errorf("unrecognized schedule type %q", s.Type)
}

// nextIntervalOccurrence returns anchor + N*step for the smallest N >= 0
// that lands strictly after ref. Month steps are always computed from the
// anchor so the day-of-month clamp does not accumulate drift.
func nextIntervalOccurrence(anchor, ref time.Time, count int, unit IntervalUnit) time.Time {
	if anchor.After(ref) {
		return anchor
	}

	if unit == UnitMonth {
		monthsDiff := (ref.Year()-anchor.Year())*12 + int(ref.Month()) - int(anchor.Month())
		n := monthsDiff / count
		if n < 0 {
			n = 0
		}
		for {
			t := addMonths(anchor, n*count)
			if t.After(ref) {
				return t
			}
			n++
		}
	}

	step := fixedStep(count, unit)
	n := ref.Sub(anchor)/step + 1
	return anchor.Add(time.Duration(n) * step)
}

func nextRuleOccurrence(rule string, anchor, ref time.Time) (mo.Option[time.Time], error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return mo.None[time.Time](), fmt.Errorf("malformed recurrence rule: %w", err)
	}
	opt.Dtstart = anchor
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return mo.None[time.Time](), fmt.Errorf("malformed recurrence rule: %w", err)
	}
	next := r.After(ref, false)
	if next.IsZero() {
		return mo.None[time.Time](), nil
	}
	return mo.Some(next.In(ref.Location())), nil
}

// addStep advances t by count units, with calendar arithmetic for months.
func addStep(t time.Time, count int, unit IntervalUnit) time.Time {
	if unit == UnitMonth {
		return addMonths(t, count)
	}
	return t.Add(fixedStep(count, unit))
}

func fixedStep(count int, unit IntervalUnit) time.Duration {
	n := time.Duration(count)
	switch unit {
	case UnitMinute:
		return n * time.Minute
	case UnitHour:
		return n * time.Hour
	case UnitDay:
		return n * 24 * time.Hour
	case UnitWeek:
		return n * 7 * 24 * time.Hour
	}
	return n * time.Minute
}

// addMonths shifts t by m calendar months, clamping the day to the target
// month's length (Jan 31 + 1 month = Feb 28/29, never Mar 2/3).
func addMonths(t time.Time, m int) time.Time {
	months := int(t.Month()) - 1 + m
	year := t.Year() + months/12
	month := months % 12
	if month < 0 {
		month += 12
		year--
	}
	day := t.Day()
	if last := daysInMonth(year, time.Month(month+1)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month+1), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
