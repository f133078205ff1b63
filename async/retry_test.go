package async

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	v, err := WithRetry(context.Background(), RetryOptions{}, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("WithRetry = %q, %v", v, err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	v, err := WithRetry(context.Background(), RetryOptions{}, func(context.Context) (int, error) {
		calls++
		if calls <= 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("WithRetry = %d, %v", v, err)
	}
	if calls != 4 {
		t.Errorf("op called %d times, want 4", calls)
	}
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	want := errors.New("always broken")
	calls := 0
	_, err := WithRetry(context.Background(), RetryOptions{MaxTries: 3}, func(context.Context) (int, error) {
		calls++
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Errorf("WithRetry returned %v, want the op's own error", err)
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3", calls)
	}
}

func TestWithRetrySingleTry(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), RetryOptions{MaxTries: 1}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("nope")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("op called %d times, want exactly 1", calls)
	}
}

func TestWithRetryDelayBetweenAttempts(t *testing.T) {
	start := time.Now()
	calls := 0
	_, err := WithRetry(context.Background(), RetryOptions{MaxTries: 3, Delay: 20 * time.Millisecond}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	// two inter-attempt delays for three attempts
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("elapsed %v, want at least 40ms", elapsed)
	}
}

func TestWithRetryStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := WithRetry(ctx, RetryOptions{MaxTries: 5, Delay: 10 * time.Millisecond}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithRetry = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}
