package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy describes a bounded retry schedule: how many attempts to
// make and how long to wait after each failed one.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3.
	MaxAttempts int

	// Delay returns the wait duration after the given 1-based attempt.
	// Default: LinearDelay(1 * time.Second).
	Delay func(attempt int) time.Duration
}

// LinearDelay returns a delay function that grows linearly with the
// attempt number: attempt x interval.
func LinearDelay(interval time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * interval
	}
}

// ConstantDelay returns a fixed delay function.
func ConstantDelay(interval time.Duration) func(int) time.Duration {
	return func(int) time.Duration {
		return interval
	}
}

// policyBackOff adapts a RetryPolicy to the backoff.BackOff interface.
type policyBackOff struct {
	policy  RetryPolicy
	attempt int
}

func (b *policyBackOff) NextBackOff() time.Duration {
	b.attempt++
	if b.attempt >= b.policy.MaxAttempts {
		return backoff.Stop
	}
	return b.policy.Delay(b.attempt)
}

func (b *policyBackOff) Reset() {
	b.attempt = 0
}

// Do executes op until it succeeds, the policy is exhausted, or the
// context is cancelled. It returns the number of attempts made together
// with the last error. Wrap an error with backoff.Permanent inside op to
// stop retrying early.
func Do(ctx context.Context, policy RetryPolicy, op func(ctx context.Context) error) (int, error) {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.Delay == nil {
		policy.Delay = LinearDelay(1 * time.Second)
	}

	attempts := 0
	operation := func() error {
		attempts++
		return op(ctx)
	}

	bo := backoff.WithContext(&policyBackOff{policy: policy}, ctx)
	err := backoff.Retry(operation, bo)
	return attempts, err
}
