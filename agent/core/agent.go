// Package core runs the chat loop between a user session, the language model
// and the clinic tools.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/KamdynS/petclinic-genai/llm"
)

// Defaults applied when AgentConfig leaves a field unset
const (
	DefaultMaxIterations = 5
	DefaultMemoryWindow  = 10
)

// ErrMaxIterations is returned when the model still requests tools after the last iteration
var ErrMaxIterations = errors.New("max iterations reached without a final answer")

// Message represents a conversation message with role and content
type Message struct {
	Role    string            `json:"role"`
	Content string            `json:"content"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Agent defines the core interface for chat agents
type Agent interface {
	// Run executes one reasoning-action loop for the session and returns the answer
	Run(ctx context.Context, sessionID string, input Message) (Message, error)
}

// AgentConfig holds configuration for creating agents
type AgentConfig struct {
	MaxIterations int
	Timeout       time.Duration
	SystemPrompt  string
	// MemoryWindow is the number of past session messages sent to the model
	MemoryWindow int
}

// Middleware observes or vetoes each step of a run. Returning an error aborts the run.
type Middleware interface {
	BeforeLLMCall(ctx context.Context, req *llm.ChatRequest) error
	AfterLLMResponse(ctx context.Context, resp *llm.Response) error
	BeforeToolExecute(ctx context.Context, toolName string, input string) error
	AfterToolExecute(ctx context.Context, toolName string, result string, execErr error) error
	AfterRun(ctx context.Context, final Message) error
}

// ToolCall represents a requested tool execution parsed from an LLM response
type ToolCall struct {
	Name      string
	Arguments string // JSON string per llm.Function.Arguments
}
