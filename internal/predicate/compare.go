package predicate

import (
	"regexp"

	"github.com/spf13/cast"

	"github.com/lifeops/scheduler/internal/biz/schedule"
)

// evaluate compares a resolved value against the expected one. A nil value
// with any operator other than exists yields unknown. Comparison is numeric
// when both sides parse as numbers, string-wise otherwise.
func evaluate(op schedule.PredicateOperator, value any, expected string) (Status, *string) {
	if op == schedule.OpExists {
		if value == nil {
			return StatusFalse, nil
		}
		observed := observedString(value)
		return StatusTrue, observed
	}

	if value == nil {
		return StatusUnknown, nil
	}
	observed := observedString(value)

	switch op {
	case schedule.OpEq, schedule.OpNeq:
		equal := compareEqual(value, expected)
		if (op == schedule.OpEq) == equal {
			return StatusTrue, observed
		}
		return StatusFalse, observed

	case schedule.OpGt, schedule.OpGte, schedule.OpLt, schedule.OpLte:
		cmp, ok := compareOrder(value, expected)
		if !ok {
			return StatusError, observed
		}
		var result bool
		switch op {
		case schedule.OpGt:
			result = cmp > 0
		case schedule.OpGte:
			result = cmp >= 0
		case schedule.OpLt:
			result = cmp < 0
		case schedule.OpLte:
			result = cmp <= 0
		}
		if result {
			return StatusTrue, observed
		}
		return StatusFalse, observed

	case schedule.OpMatches:
		re, err := regexp.Compile(expected)
		if err != nil {
			return StatusError, observed
		}
		if re.MatchString(cast.ToString(value)) {
			return StatusTrue, observed
		}
		return StatusFalse, observed
	}

	return StatusError, observed
}

func compareEqual(value any, expected string) bool {
	if got, err := cast.ToFloat64E(value); err == nil {
		if want, err := cast.ToFloat64E(expected); err == nil {
			return got == want
		}
	}
	return cast.ToString(value) == expected
}

// compareOrder returns -1/0/1 for value vs expected, numerically when both
// sides parse, lexicographically otherwise. Not ok when the value has no
// string form at all.
func compareOrder(value any, expected string) (int, bool) {
	if got, err := cast.ToFloat64E(value); err == nil {
		if want, err := cast.ToFloat64E(expected); err == nil {
			switch {
			case got < want:
				return -1, true
			case got > want:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	got, err := cast.ToStringE(value)
	if err != nil {
		return 0, false
	}
	switch {
	case got < expected:
		return -1, true
	case got > expected:
		return 1, true
	default:
		return 0, true
	}
}

func observedString(value any) *string {
	s, err := cast.ToStringE(value)
	if err != nil {
		s = "<unrepresentable>"
	}
	return &s
}
