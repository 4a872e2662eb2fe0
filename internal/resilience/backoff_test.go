package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffConfig_Delay_Grows(t *testing.T) {
	cfg := BackoffConfig{
		Initial:        100 * time.Millisecond,
		Max:            10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0,
	}

	assert.Equal(t, 100*time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 400*time.Millisecond, cfg.Delay(2))
}

func TestBackoffConfig_Delay_CappedAtMax(t *testing.T) {
	cfg := BackoffConfig{
		Initial:        1 * time.Second,
		Max:            5 * time.Second,
		Multiplier:     10.0,
		JitterFraction: 0,
	}

	assert.Equal(t, 5*time.Second, cfg.Delay(3))
}

func TestBackoffConfig_Delay_JitterStaysInRange(t *testing.T) {
	cfg := BackoffConfig{
		Initial:        1 * time.Second,
		Max:            30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	}

	for i := 0; i < 50; i++ {
		d := cfg.Delay(0)
		assert.GreaterOrEqual(t, d, 750*time.Millisecond)
		assert.LessOrEqual(t, d, 1250*time.Millisecond)
	}
}

func TestBackoffConfig_Sleep_CanceledContext(t *testing.T) {
	cfg := BackoffConfig{Initial: 10 * time.Second, JitterFraction: 0}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cfg.Sleep(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoVal_SucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), DefaultRetryConfig(), func(_ context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls)
}

func TestDoVal_RetriesTransient(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 3,
		Backoff:     BackoffConfig{Initial: time.Millisecond, JitterFraction: 0},
	}

	calls := 0
	val, err := DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", Unavailable(errors.New("flaky"))
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoVal_StopsOnNonTransient(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 3,
		Backoff:     BackoffConfig{Initial: time.Millisecond, JitterFraction: 0},
	}

	calls := 0
	_, err := DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		calls++
		return 0, Blocked(errors.New("forbidden"), 403)
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsBlocked(err))
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 3,
		Backoff:     BackoffConfig{Initial: time.Millisecond, JitterFraction: 0},
	}

	calls := 0
	_, err := DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		calls++
		return 0, Unavailable(errors.New("still down"))
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoVal_StopsOnContextCancel(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 5,
		Backoff:     BackoffConfig{Initial: time.Millisecond, JitterFraction: 0},
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, cfg, func(_ context.Context) (int, error) {
		calls++
		cancel()
		return 0, Unavailable(errors.New("down"))
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
