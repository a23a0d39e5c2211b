package backoff

import (
	"context"
	"errors"
)

// ErrMaxAttemptsExhausted is returned when every retry attempt failed.
var ErrMaxAttemptsExhausted = errors.New("max retry attempts exhausted")

// PermanentError marks an error that RetryWithBackoff must not retry,
// regardless of remaining attempts (spec §4.1's non-retryable class:
// authentication, malformed schema).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so RetryWithBackoff returns after the first
// attempt instead of consuming the remaining retry budget.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err (or anything it wraps) was marked
// non-retryable via Permanent.
func IsPermanent(err error) bool {
	var permanent *PermanentError
	return errors.As(err, &permanent)
}

// RetryResult holds the outcome of a RetryWithBackoff call.
type RetryResult[T any] struct {
	Value     T
	Attempts  int
	LastError error
}

// RetryWithBackoff calls fn up to maxAttempts times (1-indexed), sleeping
// per policy between attempts. fn returns (zero, err) to request a retry
// or (value, nil) to succeed. Context cancellation is checked before each
// attempt and during the inter-attempt sleep.
func RetryWithBackoff[T any](
	ctx context.Context,
	policy BackoffPolicy,
	maxAttempts int,
	fn func(attempt int) (T, error),
) (RetryResult[T], error) {
	var result RetryResult[T]
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		if err := ctx.Err(); err != nil {
			result.LastError = lastErr
			return result, err
		}

		value, err := fn(attempt)
		if err == nil {
			result.Value = value
			return result, nil
		}

		lastErr = err
		result.LastError = err

		if IsPermanent(err) {
			return result, err
		}

		if attempt < maxAttempts {
			if err := SleepWithBackoff(ctx, policy, attempt); err != nil {
				return result, err
			}
		}
	}

	return result, ErrMaxAttemptsExhausted
}
