package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestDo_SucceedsAfterRetryableFailure(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &StatusError{Code: 500}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_FailsFastOnNonRetryableStatus(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return &StatusError{Code: 404}
	})
	if err == nil {
		t.Fatal("Do() error = nil, want status error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 404)", calls)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != 404 {
		t.Errorf("Do() error = %v, want StatusError 404", err)
	}
}

func TestDo_RetriesConnectionErrors(t *testing.T) {
	policy := NewPolicy(2, time.Millisecond)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("connection refused")
	})
	if err == nil {
		t.Fatal("Do() error = nil, want exhaustion error")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDo_Retries429(t *testing.T) {
	policy := NewPolicy(2, time.Millisecond)

	calls := 0
	_ = policy.Do(context.Background(), func() error {
		calls++
		return &StatusError{Code: 429}
	})
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (429 is retryable)", calls)
	}
}

func TestDo_ContextCancellationStopsBackoff(t *testing.T) {
	policy := NewPolicy(5, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := policy.Do(ctx, func() error {
		return &StatusError{Code: 500}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}
