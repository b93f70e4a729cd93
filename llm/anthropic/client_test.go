package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/KamdynS/petclinic-genai/llm"
)

func noRetry() llm.RetryConfig {
	return llm.RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestConvertMessagesToolTraffic(t *testing.T) {
	system, msgs := convertMessages(&llm.ChatRequest{
		SystemPrompt: "base",
		Messages: []llm.Message{
			{Role: "system", Content: "extra"},
			{Role: "user", Content: "list owners and vets"},
			{Role: "assistant", ToolCalls: []llm.ToolCall{
				{ID: "tu_1", Function: llm.Function{Name: "listOwners", Arguments: "{}"}},
				{ID: "tu_2", Function: llm.Function{Name: "listVets", Arguments: "not json"}},
			}},
			{Role: "tool", ToolCallID: "tu_1", Content: "[]"},
			{Role: "tool", ToolCallID: "tu_2", Content: "[]"},
		},
	})
	if system != "base\n\nextra" {
		t.Fatalf("unexpected system %q", system)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected user, assistant, tool-results turns; got %d", len(msgs))
	}
	if len(msgs[1].Content) != 2 || msgs[1].Content[1].MessageContentToolUse == nil {
		t.Fatalf("expected two tool_use blocks, got %+v", msgs[1].Content)
	}
	if string(msgs[1].Content[1].MessageContentToolUse.Input) != "{}" {
		t.Fatalf("invalid arguments should become {}")
	}
	if len(msgs[2].Content) != 2 || !isToolResultTurn(msgs[2]) {
		t.Fatalf("expected merged tool results, got %+v", msgs[2].Content)
	}
}

func TestChatParsesToolUse(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-20241022",
			"content":[{"type":"text","text":"Let me check."},
				{"type":"tool_use","id":"tu_9","name":"listVets","input":{"vet":{"lastName":"Leary"}}}],
			"stop_reason":"tool_use","usage":{"input_tokens":12,"output_tokens":7}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, RetryConfig: noRetry()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: "user", Content: "is Leary a vet?"}},
		Tools:    []llm.Tool{{Type: "function", Function: llm.ToolFunction{Name: "listVets"}}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "Let me check." {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].ID != "tu_9" || resp.ToolCalls[0].Function.Name != "listVets" {
		t.Fatalf("unexpected tool calls %+v", resp.ToolCalls)
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(resp.ToolCalls[0].Function.Arguments), &args); err != nil {
		t.Fatalf("arguments not json: %v", err)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 19 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	tools, _ := captured["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected one tool definition, got %v", captured["tools"])
	}
}

func TestChatAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{APIKey: "k", BaseURL: srv.URL, RetryConfig: noRetry()})
	_, err := c.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{{Role: "user", Content: "hi"}}})
	llmErr, ok := llm.IsLLMError(err)
	if !ok || llmErr.Type != llm.ErrorTypeAuthentication || llmErr.Retryable {
		t.Fatalf("expected non-retryable authentication error, got %v", err)
	}
}

func TestChatLive(t *testing.T) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}
	c, err := NewClient(Config{APIKey: key})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{{Role: "user", Content: "Say OK"}}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content == "" {
		t.Fatalf("empty response")
	}
}
