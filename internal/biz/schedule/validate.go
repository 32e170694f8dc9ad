package schedule

import (
	"strings"
	"time"

	"github.com/lifeops/scheduler/internal/domain/fault"
)

// rruleFrequencies are the recurrence frequencies accepted in a
// calendar_rule definition.
var rruleFrequencies = map[string]bool{
	"MINUTELY": true,
	"HOURLY":   true,
	"DAILY":    true,
	"WEEKLY":   true,
	"MONTHLY":  true,
	"YEARLY":   true,
}

// ValidateOptions tweaks definition validation per call site.
type ValidateOptions struct {
	// RequireFutureRunAt rejects a one_time run_at that is not strictly
	// in the future relative to Now.
	RequireFutureRunAt bool
	Now                time.Time
}

// ValidateDefinition checks the per-type definition shape. Violations are
// reported as validation faults naming the offending field.
func ValidateDefinition(typ Type, def Definition, opts ValidateOptions) error {
	if !typ.Valid() {
		return fault.Validation("schedule_type", "unrecognized schedule type "+string(typ))
	}

	switch typ {
	case TypeOneTime:
		if def.RunAt == nil {
			return fault.Validation("run_at", "one_time schedule requires run_at")
		}
		if opts.RequireFutureRunAt && !def.RunAt.After(opts.Now) {
			return fault.Validation("run_at", "run_at must be in the future")
		}

	case TypeInterval:
		if def.IntervalCount <= 0 {
			return fault.Validation("interval_count", "interval_count must be positive")
		}
		if !def.IntervalUnit.Valid() {
			return fault.Validation("interval_unit", "unrecognized interval unit "+string(def.IntervalUnit))
		}

	case TypeCalendarRule:
		if def.RRule == "" {
			return fault.Validation("rrule", "calendar_rule schedule requires rrule")
		}
		if !rruleFrequencies[rruleFrequency(def.RRule)] {
			return fault.Validation("rrule", "rrule frequency must be one of MINUTELY, HOURLY, DAILY, WEEKLY, MONTHLY, YEARLY")
		}

	case TypeConditional:
		if strings.TrimSpace(def.PredicateSubject) == "" {
			return fault.Validation("predicate_subject", "conditional schedule requires predicate_subject")
		}
		if !def.PredicateOperator.Valid() {
			return fault.Validation("predicate_operator", "unrecognized predicate operator "+string(def.PredicateOperator))
		}
		if def.PredicateOperator != OpExists && def.PredicateValue == "" {
			return fault.Validation("predicate_value", "operator "+string(def.PredicateOperator)+" requires predicate_value")
		}
		if def.EvaluationIntervalCount <= 0 {
			return fault.Validation("evaluation_interval_count", "evaluation_interval_count must be positive")
		}
		if !def.EvaluationIntervalUnit.Valid() {
			return fault.Validation("evaluation_interval_unit", "unrecognized evaluation interval unit "+string(def.EvaluationIntervalUnit))
		}
	}

	return nil
}

// ValidateTimezone rejects timezone names the runtime cannot load.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fault.Validation("timezone", "unknown timezone "+tz)
	}
	return nil
}

// rruleFrequency extracts the FREQ token from an RRULE string. Accepts both
// bare rules ("FREQ=DAILY;...") and prefixed ones ("RRULE:FREQ=DAILY").
func rruleFrequency(rule string) string {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	for _, part := range strings.Split(rule, ";") {
		if freq, ok := strings.CutPrefix(part, "FREQ="); ok {
			return strings.ToUpper(strings.TrimSpace(freq))
		}
	}
	return ""
}
