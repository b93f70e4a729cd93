package core

import (
	"context"
	"errors"
	"strings"

	"github.com/KamdynS/petclinic-genai/llm"
)

// ErrBlocked is returned when guardrails reject a user message
var ErrBlocked = errors.New("request blocked by guardrails")

// SimpleGuardrails trims and screens the latest user message before it reaches the model.
type SimpleGuardrails struct {
	// Deny if any of these substrings appear in the user input
	DenySubstrings []string
	// Allow only if at least one of these substrings appears; if empty, allow all
	AllowSubstrings []string
	// Max input length in bytes
	MaxInputChars int
}

// BeforeLLMCall implements Middleware interface
func (g *SimpleGuardrails) BeforeLLMCall(ctx context.Context, req *llm.ChatRequest) error {
	if req == nil || len(req.Messages) == 0 {
		return nil
	}
	last := &req.Messages[len(req.Messages)-1]
	if last.Role != "user" {
		return nil
	}
	if g.MaxInputChars > 0 && len(last.Content) > g.MaxInputChars {
		last.Content = last.Content[:g.MaxInputChars]
	}
	text := strings.ToLower(last.Content)
	if containsAny(text, g.DenySubstrings) {
		return ErrBlocked
	}
	if len(g.AllowSubstrings) > 0 && !containsAny(text, g.AllowSubstrings) {
		return ErrBlocked
	}
	return nil
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if s != "" && strings.Contains(text, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// AfterLLMResponse implements Middleware interface
func (g *SimpleGuardrails) AfterLLMResponse(ctx context.Context, resp *llm.Response) error {
	return nil
}

// BeforeToolExecute implements Middleware interface
func (g *SimpleGuardrails) BeforeToolExecute(ctx context.Context, toolName string, input string) error {
	return nil
}

// AfterToolExecute implements Middleware interface
func (g *SimpleGuardrails) AfterToolExecute(ctx context.Context, toolName string, result string, execErr error) error {
	return nil
}

// AfterRun implements Middleware interface
func (g *SimpleGuardrails) AfterRun(ctx context.Context, final Message) error { return nil }

var _ Middleware = (*SimpleGuardrails)(nil)
