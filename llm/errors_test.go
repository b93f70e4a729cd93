package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestLLMError(t *testing.T) {
	err := &LLMError{Type: ErrorTypeRateLimit, Message: "slow down", Code: "rl", Provider: ProviderOpenAI}
	if got := err.Error(); got != "openai [rl]: slow down" {
		t.Errorf("unexpected error string %q", got)
	}
	err.Code = ""
	if got := err.Error(); got != "openai: slow down" {
		t.Errorf("unexpected error string %q", got)
	}
}

func TestNewLLMErrorWithCause(t *testing.T) {
	cause := errors.New("dial tcp")
	err := NewLLMErrorWithCause(ProviderAnthropic, ErrorTypeConnectionError, "connection error", cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to unwrap")
	}
	if !err.Retryable {
		t.Errorf("connection errors should be retryable")
	}
}

func TestParseHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		body      string
		wantType  ErrorType
		retryable bool
	}{
		{http.StatusBadRequest, "", ErrorTypeInvalidRequest, false},
		{http.StatusUnauthorized, "", ErrorTypeAuthentication, false},
		{http.StatusTooManyRequests, "", ErrorTypeRateLimit, true},
		{http.StatusServiceUnavailable, "overloaded", ErrorTypeServerError, true},
		{http.StatusBadRequest, "maximum context length is 8192 tokens", ErrorTypeContextLength, false},
		{http.StatusTooManyRequests, "You exceeded your current quota exceeded", ErrorTypeInsufficientQuota, false},
		{418, "", ErrorTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", tt.status, tt.wantType), func(t *testing.T) {
			err := ParseHTTPError(ProviderOpenAI, tt.status, tt.body)
			if err.Type != tt.wantType {
				t.Errorf("type = %s, want %s", err.Type, tt.wantType)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if err.HTTPStatus != tt.status {
				t.Errorf("status = %d, want %d", err.HTTPStatus, tt.status)
			}
		})
	}
}

func TestParseHTTPErrorTruncatesBody(t *testing.T) {
	err := ParseHTTPError(ProviderOpenAI, http.StatusBadGateway, strings.Repeat("x", 500))
	if !strings.HasSuffix(err.Message, "...") || len(err.Message) > 260 {
		t.Errorf("expected truncated message, got %d chars", len(err.Message))
	}
}

func TestIsLLMErrorWrapped(t *testing.T) {
	base := NewLLMError(ProviderOpenAI, ErrorTypeServerError, "boom")
	wrapped := fmt.Errorf("chat: %w", base)
	got, ok := IsLLMError(wrapped)
	if !ok || got != base {
		t.Fatalf("expected wrapped LLMError to be found")
	}
	if !IsRetryableError(wrapped) {
		t.Errorf("server error should be retryable")
	}
	if IsRetryableError(errors.New("plain")) {
		t.Errorf("plain errors are not retryable")
	}
}

func TestFromContextError(t *testing.T) {
	if e := FromContextError(ProviderOpenAI, context.DeadlineExceeded); e == nil || e.Type != ErrorTypeTimeout {
		t.Errorf("expected timeout, got %v", e)
	}
	if e := FromContextError(ProviderOpenAI, fmt.Errorf("x: %w", context.Canceled)); e == nil || e.Retryable {
		t.Errorf("expected non-retryable canceled error, got %v", e)
	}
	if e := FromContextError(ProviderOpenAI, errors.New("other")); e != nil {
		t.Errorf("expected nil, got %v", e)
	}
}
