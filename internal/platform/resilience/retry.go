package resilience

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// RetryPolicy is a linear backoff retry budget.
type RetryPolicy struct {
	MaxRetries int
	// Backoff is multiplied by the attempt number before each retry.
	Backoff time.Duration
}

// ErrPermanent marks an error that must not be retried. Attach it with
// errors.Mark or wrap it with %w.
var ErrPermanent = errors.New("permanent failure")

// Retry calls fn until it succeeds, returns an error marked with ErrPermanent,
// the budget is spent, or ctx is done. The last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, fn func(attempt int) error) error {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.Backoff <= 0 {
		policy.Backoff = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPermanent) || attempt == policy.MaxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * policy.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
