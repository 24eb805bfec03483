package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/provider/resilience"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 3, Delay: resilience.ConstantDelay(time.Millisecond)}

	attempts, err := resilience.Do(context.Background(), policy, func(context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 3, Delay: resilience.ConstantDelay(time.Millisecond)}

	calls := 0
	attempts, err := resilience.Do(context.Background(), policy, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 3, Delay: resilience.ConstantDelay(time.Millisecond)}

	lastErr := errors.New("still failing")
	attempts, err := resilience.Do(context.Background(), policy, func(context.Context) error {
		return lastErr
	})

	require.Error(t, err)
	assert.Equal(t, lastErr, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentErrorStopsEarly(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 5, Delay: resilience.ConstantDelay(time.Millisecond)}

	attempts, err := resilience.Do(context.Background(), policy, func(context.Context) error {
		return backoff.Permanent(errors.New("bad request"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextCancellation(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 10, Delay: resilience.ConstantDelay(time.Second)}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	attempts, err := resilience.Do(ctx, policy, func(context.Context) error {
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Less(t, attempts, 10)
}

func TestDo_DefaultPolicy(t *testing.T) {
	// Zero policy falls back to 3 attempts with linear backoff; use a
	// succeeding op so defaults are exercised without waiting.
	attempts, err := resilience.Do(context.Background(), resilience.RetryPolicy{}, func(context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestLinearDelay(t *testing.T) {
	delay := resilience.LinearDelay(1 * time.Second)

	assert.Equal(t, 1*time.Second, delay(1))
	assert.Equal(t, 2*time.Second, delay(2))
	assert.Equal(t, 3*time.Second, delay(3))
}

func TestSingleAttemptConfig(t *testing.T) {
	cfg := resilience.SingleAttemptConfig("test")

	assert.Equal(t, uint64(0), cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.NotNil(t, cfg.CircuitBreaker)
}
