// Package retry runs an operation a bounded number of times with a fixed
// pause between attempts. Each call site picks its own Policy so that the
// difference between "retry then degrade" and "retry then fail" stays explicit.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrExhausted indicates every allowed attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int
	// Delay is the fixed pause between two attempts.
	Delay time.Duration
	// Retryable decides whether a failure is worth another attempt.
	// A nil Retryable retries everything except Permanent errors.
	Retryable func(error) bool
}

// DefaultPolicy returns three attempts two seconds apart.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Delay:    2 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

func (p Policy) retryable(err error) bool {
	if IsPermanent(err) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Do runs op until it succeeds, the policy gives up or ctx is done.
// A non-retryable failure is returned as is; running out of attempts
// returns an error wrapping both ErrExhausted and the last failure.
func Do(ctx context.Context, p Policy, op func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("retry abandoned: %w", ctx.Err())
		}
		if !p.retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		slog.Debug("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", p.Delay,
			"error", err,
		)

		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry abandoned: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}
