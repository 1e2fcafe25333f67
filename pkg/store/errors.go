package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for store operations.
var (
	// ErrUnavailable is returned when a backend cannot be reached.
	ErrUnavailable = errors.New("store unavailable")

	// ErrNotConfigured is returned when a backend is selected without the
	// settings it needs (address, URI, path).
	ErrNotConfigured = errors.New("store not configured")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff configures [Backoff.Retry].
type Backoff struct {
	Attempts int           // total attempts, at least 1
	Delay    time.Duration // delay before the second attempt, doubled after each failure
}

// DefaultBackoff makes 3 attempts starting with a one second delay.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. Only errors wrapped with [Retryable] trigger retries.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(1, b.Attempts)
	delay := b.Delay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff retries fn with [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
