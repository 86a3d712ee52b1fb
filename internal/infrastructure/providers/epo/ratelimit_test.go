package epo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
	assert.Len(t, rl.marks, 3)
}

func TestRateLimiterSleepsWhenFull(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	var slept []time.Duration

	rl := newRateLimiter(2)
	rl.now = func() time.Time { return clock }
	rl.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock = clock.Add(d)
		return nil
	}

	ctx := context.Background()
	require.NoError(t, rl.Wait(ctx))
	clock = clock.Add(10 * time.Second)
	require.NoError(t, rl.Wait(ctx))

	// Window is full; the third call must wait out the remainder of the
	// minute measured from the first mark.
	require.NoError(t, rl.Wait(ctx))
	require.Len(t, slept, 1)
	assert.Equal(t, 50*time.Second, slept[0])
	assert.Len(t, rl.marks, 2)
}

func TestRateLimiterPrunesExpiredMarks(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1)
	rl.now = func() time.Time { return clock }
	rl.sleep = func(_ context.Context, _ time.Duration) error {
		t.Fatal("should not sleep after window expiry")
		return nil
	}

	ctx := context.Background()
	require.NoError(t, rl.Wait(ctx))

	clock = clock.Add(61 * time.Second)
	require.NoError(t, rl.Wait(ctx))
	assert.Len(t, rl.marks, 1)
}

func TestRateLimiterHonorsCancellation(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, rl.Wait(ctx))
	cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
