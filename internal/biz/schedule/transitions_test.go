package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeops/scheduler/internal/domain/fault"
)

func TestValidateTransition_AllowedEdges(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateDraft, StateActive},
		{StateActive, StatePaused},
		{StateActive, StateCanceled},
		{StateActive, StateCompleted},
		{StatePaused, StateActive},
		{StatePaused, StateCanceled},
		{StateCanceled, StateArchived},
		{StateCompleted, StateArchived},
	}
	for _, tc := range allowed {
		noop, err := ValidateTransition(tc.from, tc.to, false)
		assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		assert.False(t, noop)
	}
}

func TestValidateTransition_RejectedEdges(t *testing.T) {
	rejected := []struct{ from, to State }{
		{StateDraft, StatePaused},
		{StateDraft, StateArchived},
		{StatePaused, StateCompleted},
		{StateCanceled, StateActive},
		{StateCompleted, StateActive},
		{StateArchived, StateActive},
		{StateArchived, StateDraft},
	}
	for _, tc := range rejected {
		_, err := ValidateTransition(tc.from, tc.to, false)
		require.Error(t, err, "%s -> %s", tc.from, tc.to)
		assert.True(t, fault.IsKind(err, fault.KindStateTransition))
	}
}

func TestValidateTransition_SameState(t *testing.T) {
	noop, err := ValidateTransition(StatePaused, StatePaused, true)
	require.NoError(t, err)
	assert.True(t, noop)

	_, err = ValidateTransition(StatePaused, StatePaused, false)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindConflict))
}

func TestValidateTransition_UnknownState(t *testing.T) {
	_, err := ValidateTransition("limbo", StateActive, false)
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	_, err = ValidateTransition(StateActive, "limbo", false)
	assert.True(t, fault.IsKind(err, fault.KindValidation))
}
