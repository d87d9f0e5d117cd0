// Package retry provides the retry policy shared by the search, page fetch,
// and generation call sites.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StatusError carries an HTTP status code so the policy can decide whether
// the failure is worth retrying.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Policy describes how a network call site retries: attempt count, backoff
// between attempts, and which HTTP statuses are retryable.
type Policy struct {
	MaxAttempts     int
	Backoff         time.Duration
	RetryableStatus func(code int) bool
}

// NewPolicy returns a policy with the shared retryable-status rule:
// 429 and 5xx retry, any other status fails fast.
func NewPolicy(maxAttempts int, backoff time.Duration) Policy {
	return Policy{
		MaxAttempts:     maxAttempts,
		Backoff:         backoff,
		RetryableStatus: DefaultRetryable,
	}
}

// DefaultRetryable reports whether an HTTP status warrants another attempt.
func DefaultRetryable(code int) bool {
	return code == 429 || code >= 500
}

// Do runs fn up to MaxAttempts times. A *StatusError with a non-retryable
// code fails immediately; connection-level errors retry until attempts are
// exhausted. The backoff grows linearly with the attempt number.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff * time.Duration(i)):
			}
		}

		err = fn()
		if err == nil {
			return nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			retryable := p.RetryableStatus
			if retryable == nil {
				retryable = DefaultRetryable
			}
			if !retryable(statusErr.Code) {
				return err
			}
		}
	}
	return fmt.Errorf("after %d attempts, last error: %w", attempts, err)
}
