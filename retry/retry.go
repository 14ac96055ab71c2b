// Package retry implements a bounded retry policy with pluggable
// backoff and a retryable-error predicate. Every attempt's error is
// kept, not just the last one.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// Backoff returns the delay before retry n (0-based: Backoff(0) is
	// the delay before the second attempt).
	Backoff func(n int) time.Duration
	// Retryable reports whether an error is worth another attempt.
	// Nil means every error is retryable.
	Retryable func(err error) bool

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Exponential returns a backoff function base·2^n.
func Exponential(base time.Duration) func(n int) time.Duration {
	return func(n int) time.Duration {
		return base << uint(n)
	}
}

// Default is the provisioning policy: 7 attempts, exponential backoff
// starting at 500ms, no jitter, every error retryable.
func Default() Policy {
	return Policy{
		MaxAttempts: 7,
		Backoff:     Exponential(500 * time.Millisecond),
	}
}

// Error is returned when a Policy gives up. It carries the error from
// every attempt in order.
type Error struct {
	Attempts []error
}

func (e *Error) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", len(e.Attempts), e.Last())
}

// Last returns the error from the final attempt.
func (e *Error) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

func (e *Error) Unwrap() error { return e.Last() }

// Do runs op until it succeeds, the policy is exhausted, an error is
// not retryable, or ctx is cancelled. On failure it returns *Error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var attempts []error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, p.Backoff(attempt-1)); err != nil {
				attempts = append(attempts, err)
				return &Error{Attempts: attempts}
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		attempts = append(attempts, err)

		if p.Retryable != nil && !p.Retryable(err) {
			break
		}
	}

	return &Error{Attempts: attempts}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
