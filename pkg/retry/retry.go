package retry

import (
	"context"
	"time"

	retrylib "github.com/sethvargo/go-retry"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 1 * time.Second
)

// Policy bounds a retry loop: MaxAttempts counts the first call, and waits
// double from InitialBackoff between attempts (1s, 2s, ...).
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	return p
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy
// is exhausted. shouldRetry classifies errors; a nil classifier retries
// nothing. The last error is returned after exhaustion.
func Do(ctx context.Context, policy Policy, shouldRetry func(error) bool, fn func(context.Context) error) error {
	policy = policy.withDefaults()

	backoff := retrylib.WithMaxRetries(
		uint64(policy.MaxAttempts-1),
		retrylib.NewExponential(policy.InitialBackoff),
	)

	return retrylib.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if shouldRetry != nil && shouldRetry(err) {
			return retrylib.RetryableError(err)
		}
		return err
	})
}
