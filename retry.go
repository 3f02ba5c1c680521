package qnn

import (
	"math"
	"time"
)

// RetryPolicy re-runs a failing operation a bounded number of times.
// The trainer uses it for checkpoint writes, which can fail transiently on
// network filesystems; simulations are deterministic and never retried.
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	Filter      func(error) bool
}

// RetryStrategy spaces out attempts.
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay after every failed attempt.
type ExponentialBackoff struct {
	Initial time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	return eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
}

func NewRetryPolicy(attempts int, initial time.Duration) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: attempts,
		Strategy:    &ExponentialBackoff{Initial: initial},
	}
}

// Do runs fn until it succeeds, the filter rejects the error, or the
// attempts run out. It returns the last error.
func (p *RetryPolicy) Do(fn func() error) error {
	var err error

	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if p == nil || attempt >= p.MaxAttempts {
			return err
		}

		if p.Filter != nil && !p.Filter(err) {
			return err
		}

		if p.Strategy != nil {
			time.Sleep(p.Strategy.NextDelay(attempt))
		}
	}
}
