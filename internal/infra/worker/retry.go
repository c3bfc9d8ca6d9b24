package worker

import (
	"context"
	"time"
)

// RetryPolicy is the dispatch layer's bounded retry budget: a whole job is
// re-run up to MaxAttempts times with exponential backoff. It is deliberately
// separate from the pipeline so policy and pipeline correctness are testable
// on their own.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay, MaxDelay: 5 * time.Minute}
}

// Delay returns the backoff before the given attempt (1-based): BaseDelay
// doubled per prior failed attempt, capped at MaxDelay. Attempt 1 has no
// delay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := p.BaseDelay
	for i := 2; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Wait sleeps for the attempt's backoff, returning early with the context
// error if the context is canceled first.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	d := p.Delay(attempt)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
