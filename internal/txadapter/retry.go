package txadapter

import (
	"context"
	"time"
)

// retryConfig is the 3-attempt, 200ms-initial, factor-2 backoff used for
// intra-block position lookups.
type retryConfig struct {
	attempts  int
	baseDelay time.Duration
	factor    int
}

var positionRetry = retryConfig{attempts: 3, baseDelay: 200 * time.Millisecond, factor: 2}

// retryWithBackoff runs operation up to cfg.attempts times, sleeping
// baseDelay*factor^n between attempts, and returns the last error if every
// attempt fails. ctx cancellation aborts immediately.
func retryWithBackoff[T any](ctx context.Context, cfg retryConfig, operation func() (T, error)) (T, error) {
	var result T
	var err error
	delay := cfg.baseDelay

	for attempt := 0; attempt < cfg.attempts; attempt++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}
		if attempt == cfg.attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
		delay *= time.Duration(cfg.factor)
	}
	return result, err
}
