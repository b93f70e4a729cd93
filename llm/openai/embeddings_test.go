package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KamdynS/petclinic-genai/llm"
)

func noRetry() llm.RetryConfig {
	return llm.RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestEmbedSuccessAndErrors(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[1,2,3]}],"model":"text-embedding-3-small"}`))
	}))
	defer good.Close()

	c, _ := NewClient(Config{APIKey: "k", Timeout: time.Second, BaseURL: good.URL, RetryConfig: noRetry()})
	vec, err := c.Embed(context.Background(), "hi", "")
	if err != nil || len(vec) != 3 || vec[2] != 3 {
		t.Fatalf("embed good: %v %v", err, vec)
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer bad.Close()
	c, _ = NewClient(Config{APIKey: "k", Timeout: time.Second, BaseURL: bad.URL, RetryConfig: noRetry()})
	_, err = c.Embed(context.Background(), "hi", "")
	llmErr, ok := llm.IsLLMError(err)
	if !ok || llmErr.Type != llm.ErrorTypeAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer empty.Close()
	c, _ = NewClient(Config{APIKey: "k", Timeout: time.Second, BaseURL: empty.URL, RetryConfig: noRetry()})
	if _, err := c.Embed(context.Background(), "hi", ""); err == nil {
		t.Fatalf("expected error for empty data")
	}
}
