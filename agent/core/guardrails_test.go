package core

import (
	"context"
	"errors"
	"testing"

	"github.com/KamdynS/petclinic-genai/llm"
)

func TestSimpleGuardrails_Screening(t *testing.T) {
	cases := []struct {
		name    string
		g       SimpleGuardrails
		input   string
		blocked bool
	}{
		{"plain question", SimpleGuardrails{}, "List the owners", false},
		{"deny match ignores case", SimpleGuardrails{DenySubstrings: []string{"DROP TABLE"}}, "please drop table owners", true},
		{"allow list miss", SimpleGuardrails{AllowSubstrings: []string{"pet", "vet"}}, "tell me a joke", true},
		{"allow list hit", SimpleGuardrails{AllowSubstrings: []string{"pet", "vet"}}, "Which vets are on duty?", false},
		{"empty entries are ignored", SimpleGuardrails{DenySubstrings: []string{""}}, "hello", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &llm.ChatRequest{Messages: []llm.Message{{Role: "user", Content: tc.input}}}
			err := tc.g.BeforeLLMCall(context.Background(), req)
			if tc.blocked && !errors.Is(err, ErrBlocked) {
				t.Fatalf("expected ErrBlocked, got %v", err)
			}
			if !tc.blocked && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSimpleGuardrails_TrimsLongInput(t *testing.T) {
	g := &SimpleGuardrails{MaxInputChars: 5}
	req := &llm.ChatRequest{Messages: []llm.Message{
		{Role: "system", Content: "you are the petclinic assistant"},
		{Role: "user", Content: "Leo the cat"},
	}}
	if err := g.BeforeLLMCall(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Messages[1].Content; got != "Leo t" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
	if req.Messages[0].Content != "you are the petclinic assistant" {
		t.Fatalf("system prompt must not be trimmed")
	}
}

func TestSimpleGuardrails_SkipsNonUserTurns(t *testing.T) {
	g := &SimpleGuardrails{DenySubstrings: []string{"owner"}}
	req := &llm.ChatRequest{Messages: []llm.Message{{Role: "tool", Content: `{"owner":1}`}}}
	if err := g.BeforeLLMCall(context.Background(), req); err != nil {
		t.Fatalf("tool results must not be screened: %v", err)
	}
	if err := g.BeforeLLMCall(context.Background(), nil); err != nil {
		t.Fatalf("nil request: %v", err)
	}
}
