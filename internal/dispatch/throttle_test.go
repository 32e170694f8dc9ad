package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowThrottleClaimsOncePerWindow(t *testing.T) {
	throttle := NewWindowThrottle(nil)
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	throttle.now = func() time.Time { return now }

	claimed, err := throttle.Claim(context.Background(), "schedule-failure:1", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = throttle.Claim(context.Background(), "schedule-failure:1", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)

	// Independent signal references do not contend.
	claimed, err = throttle.Claim(context.Background(), "schedule-failure:2", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestWindowThrottleExpires(t *testing.T) {
	throttle := NewWindowThrottle(nil)
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	throttle.now = func() time.Time { return now }

	claimed, err := throttle.Claim(context.Background(), "ref", time.Hour)
	require.NoError(t, err)
	require.True(t, claimed)

	now = now.Add(59 * time.Minute)
	claimed, _ = throttle.Claim(context.Background(), "ref", time.Hour)
	assert.False(t, claimed)

	now = now.Add(time.Minute)
	claimed, _ = throttle.Claim(context.Background(), "ref", time.Hour)
	assert.True(t, claimed)
}
