package openai

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

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient(Config{APIKey: "k", Temperature: 3}); err == nil {
		t.Fatalf("expected temperature error")
	}
	c, err := NewClient(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Model() != DefaultModel || c.Provider() != llm.ProviderOpenAI {
		t.Fatalf("unexpected defaults %s %s", c.Model(), c.Provider())
	}
}

func TestChatToolCallsRoundTrip(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
				"tool_calls":[{"id":"call_1","type":"function","function":{"name":"listVets","arguments":"{\"vet\":null}"}}]}}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second, RetryConfig: noRetry()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{
		SystemPrompt: "be helpful",
		Messages: []llm.Message{
			{Role: "user", Content: "which vets do radiology?"},
			{Role: "assistant", ToolCalls: []llm.ToolCall{{ID: "call_0", Type: "function", Function: llm.Function{Name: "listOwners", Arguments: "{}"}}}},
			{Role: "tool", ToolCallID: "call_0", Content: "[]"},
		},
		Tools: []llm.Tool{{Type: "function", Function: llm.ToolFunction{Name: "listVets", Parameters: map[string]any{"type": "object"}}}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Function.Name != "listVets" {
		t.Fatalf("unexpected tool calls %+v", resp.ToolCalls)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}

	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 4 {
		t.Fatalf("expected system + 3 messages, got %d", len(msgs))
	}
	toolMsg, _ := msgs[3].(map[string]any)
	if toolMsg["role"] != "tool" || toolMsg["tool_call_id"] != "call_0" {
		t.Fatalf("unexpected tool message %+v", toolMsg)
	}
	tools, _ := captured["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected one tool in request, got %d", len(tools))
	}
}

func TestChatLive(t *testing.T) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		t.Skip("OPENAI_API_KEY not set")
	}
	c, err := NewClient(Config{APIKey: key, Timeout: 30 * time.Second})
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
