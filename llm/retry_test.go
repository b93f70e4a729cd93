package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:    maxRetries,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()
	if config.MaxRetries <= 0 {
		t.Errorf("Expected positive MaxRetries, got %d", config.MaxRetries)
	}
	if config.MaxDelay <= config.InitialDelay {
		t.Errorf("Expected MaxDelay (%v) > InitialDelay (%v)", config.MaxDelay, config.InitialDelay)
	}
	if config.BackoffFactor <= 1.0 {
		t.Errorf("Expected BackoffFactor > 1.0, got %f", config.BackoffFactor)
	}
}

func TestExecute_EventualSuccess(t *testing.T) {
	r := NewRetrier(fastConfig(3))
	calls := 0
	got, err := Execute(r, context.Background(), func(ctx context.Context, attempt int) (string, error) {
		calls++
		if attempt < 2 {
			return "", NewLLMError(ProviderOpenAI, ErrorTypeServerError, "try again")
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("Execute() = %q, %v", got, err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestExecute_NonRetryableError(t *testing.T) {
	r := NewRetrier(fastConfig(3))
	calls := 0
	authErr := NewLLMError(ProviderOpenAI, ErrorTypeAuthentication, "bad key")
	_, err := Execute(r, context.Background(), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, authErr
	})
	if !errors.Is(err, authErr) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestExecute_MaxRetriesExceeded(t *testing.T) {
	r := NewRetrier(fastConfig(2))
	calls := 0
	_, err := Execute(r, context.Background(), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, NewLLMError(ProviderOpenAI, ErrorTypeRateLimit, "slow down")
	})
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestExecute_ConfiguredRetryableMessage(t *testing.T) {
	cfg := fastConfig(1)
	cfg.RetryableErrors = []string{"connection reset"}
	r := NewRetrier(cfg)
	calls := 0
	_, _ = Execute(r, context.Background(), func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errors.New("read: Connection Reset by peer")
	})
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestExecute_ContextCancellation(t *testing.T) {
	r := NewRetrier(RetryConfig{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Execute(r, ctx, func(ctx context.Context, attempt int) (int, error) {
		return 0, NewLLMError(ProviderOpenAI, ErrorTypeServerError, "down")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCalculateDelay(t *testing.T) {
	r := NewRetrier(RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2})
	for attempt := 0; attempt < 6; attempt++ {
		d := r.calculateDelay(attempt, errors.New("x"))
		if d < 100*time.Millisecond || d > time.Second {
			t.Errorf("attempt %d: delay %v out of bounds", attempt, d)
		}
	}
	withHint := NewLLMError(ProviderOpenAI, ErrorTypeRateLimit, "slow")
	withHint.RetryAfter = 7
	if d := r.calculateDelay(0, withHint); d != 7*time.Second {
		t.Errorf("expected RetryAfter to win, got %v", d)
	}
}
