package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lifeops/scheduler/internal/biz/schedule"
)

func TestEvaluateExists(t *testing.T) {
	status, observed := evaluate(schedule.OpExists, "anything", "")
	assert.Equal(t, StatusTrue, status)
	assert.Equal(t, "anything", *observed)

	status, observed = evaluate(schedule.OpExists, nil, "")
	assert.Equal(t, StatusFalse, status)
	assert.Nil(t, observed)
}

func TestEvaluateNilValueIsUnknown(t *testing.T) {
	for _, op := range []schedule.PredicateOperator{
		schedule.OpEq, schedule.OpNeq, schedule.OpGt, schedule.OpLte, schedule.OpMatches,
	} {
		status, observed := evaluate(op, nil, "x")
		assert.Equal(t, StatusUnknown, status, string(op))
		assert.Nil(t, observed)
	}
}

func TestEvaluateEquality(t *testing.T) {
	status, _ := evaluate(schedule.OpEq, "ready", "ready")
	assert.Equal(t, StatusTrue, status)

	status, _ = evaluate(schedule.OpNeq, "ready", "done")
	assert.Equal(t, StatusTrue, status)

	// Numeric forms compare as numbers, not strings.
	status, _ = evaluate(schedule.OpEq, 10, "10.0")
	assert.Equal(t, StatusTrue, status)

	status, _ = evaluate(schedule.OpEq, "10", "11")
	assert.Equal(t, StatusFalse, status)
}

func TestEvaluateOrdering(t *testing.T) {
	cases := []struct {
		op       schedule.PredicateOperator
		value    any
		expected string
		want     Status
	}{
		{schedule.OpGt, 11, "10", StatusTrue},
		{schedule.OpGt, 10, "10", StatusFalse},
		{schedule.OpGte, 10, "10", StatusTrue},
		{schedule.OpLt, 9.5, "10", StatusTrue},
		{schedule.OpLte, "10", "10", StatusTrue},
		// Both sides non-numeric fall back to lexicographic order.
		{schedule.OpLt, "apple", "banana", StatusTrue},
		{schedule.OpGt, "apple", "banana", StatusFalse},
	}
	for _, tc := range cases {
		status, _ := evaluate(tc.op, tc.value, tc.expected)
		assert.Equal(t, tc.want, status, "%s %v %s", tc.op, tc.value, tc.expected)
	}
}

func TestEvaluateMatches(t *testing.T) {
	status, _ := evaluate(schedule.OpMatches, "inbox: 12 unread", `\d+ unread`)
	assert.Equal(t, StatusTrue, status)

	status, _ = evaluate(schedule.OpMatches, "inbox empty", `\d+ unread`)
	assert.Equal(t, StatusFalse, status)

	// A malformed pattern is an evaluation error, not a panic.
	status, _ = evaluate(schedule.OpMatches, "x", `[unclosed`)
	assert.Equal(t, StatusError, status)
}
