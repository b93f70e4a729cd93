package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/KamdynS/petclinic-genai/llm"
	"github.com/KamdynS/petclinic-genai/memory"
	obs "github.com/KamdynS/petclinic-genai/observability"
	"github.com/KamdynS/petclinic-genai/tools"
)

// ChatAgent is the default implementation of the Agent interface
type ChatAgent struct {
	Model      llm.Client
	Tools      tools.Registry
	Memory     memory.ConversationStore
	Config     AgentConfig
	Middleware []Middleware
	Processors []MessageProcessor
	Logger     zerolog.Logger
}

// ChatConfig holds configuration for ChatAgent
type ChatConfig struct {
	Model      llm.Client
	Tools      tools.Registry
	Memory     memory.ConversationStore
	Config     AgentConfig
	Middleware []Middleware
	Processors []MessageProcessor
	Logger     *zerolog.Logger
}

// NewChatAgent creates a new ChatAgent with the given configuration
func NewChatAgent(config ChatConfig) *ChatAgent {
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = config.Logger.With().Str("component", "chat_agent").Logger()
	}
	return &ChatAgent{
		Model:      config.Model,
		Tools:      config.Tools,
		Memory:     config.Memory,
		Config:     config.Config,
		Middleware: config.Middleware,
		Processors: config.Processors,
		Logger:     logger,
	}
}

// Run implements the Agent interface. The user message and the final answer
// are appended to the session history once the run succeeds.
func (a *ChatAgent) Run(ctx context.Context, sessionID string, input Message) (Message, error) {
	if a.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.Timeout)
		defer cancel()
	}
	if input.Role == "" {
		input.Role = "user"
	}
	log := a.Logger.With().Str("session_id", sessionID).Logger()

	history, err := a.history(ctx, sessionID)
	if err != nil {
		return Message{}, err
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: a.Config.SystemPrompt})
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: input.Role, Content: input.Content})

	toolDefs := a.toolDefinitions()

	maxIterations := a.Config.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	var final *llm.Response
	for iter := 0; iter < maxIterations; iter++ {
		req := &llm.ChatRequest{Messages: messages, Tools: toolDefs}
		for _, mw := range a.Middleware {
			if err := mw.BeforeLLMCall(ctx, req); err != nil {
				return Message{}, err
			}
		}
		messages = req.Messages

		start := time.Now()
		response, err := a.Model.Chat(ctx, req)
		labels := map[string]string{obs.LabelModel: a.Model.Model()}
		obs.MetricsImpl.RecordLatency(time.Since(start), labels)
		if err != nil {
			obs.MetricsImpl.RecordError("llm_error", labels)
			log.Error().Err(err).Int("iteration", iter).Msg("llm call failed")
			return Message{}, fmt.Errorf("LLM call failed: %w", err)
		}
		if response.Usage != nil {
			obs.MetricsImpl.IncrementTokensUsed(response.Usage.TotalTokens, labels)
		}
		for _, mw := range a.Middleware {
			if err := mw.AfterLLMResponse(ctx, response); err != nil {
				return Message{}, err
			}
		}

		if len(response.ToolCalls) == 0 || a.Tools == nil {
			final = response
			break
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})
		for _, tc := range response.ToolCalls {
			result, err := a.executeTool(ctx, tc)
			if err != nil {
				return Message{}, err
			}
			messages = append(messages, llm.Message{Role: "tool", Content: result, ToolCallID: tc.ID})
		}
	}

	if final == nil {
		log.Warn().Int("max_iterations", maxIterations).Msg("model did not produce a final answer")
		return Message{}, ErrMaxIterations
	}

	result := Message{Role: "assistant", Content: final.Content}
	if a.Memory != nil {
		if err := a.Memory.AppendMessage(ctx, sessionID, input.Role, input.Content); err != nil {
			return Message{}, fmt.Errorf("failed to store message: %w", err)
		}
		if err := a.Memory.AppendMessage(ctx, sessionID, result.Role, result.Content); err != nil {
			return Message{}, fmt.Errorf("failed to store response: %w", err)
		}
	}
	for _, mw := range a.Middleware {
		if err := mw.AfterRun(ctx, result); err != nil {
			return Message{}, err
		}
	}
	return result, nil
}

func (a *ChatAgent) history(ctx context.Context, sessionID string) ([]Message, error) {
	if a.Memory == nil {
		return nil, nil
	}
	stored, err := a.Memory.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	window := a.Config.MemoryWindow
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	if len(stored) > window {
		stored = stored[len(stored)-window:]
	}
	msgs := make([]Message, 0, len(stored))
	for _, m := range stored {
		msgs = append(msgs, Message{Role: m.Role, Content: m.Content, Meta: m.Meta})
	}
	for _, p := range a.Processors {
		msgs = p.Process(ctx, msgs)
	}
	return msgs, nil
}

func (a *ChatAgent) toolDefinitions() []llm.Tool {
	if a.Tools == nil {
		return nil
	}
	var defs []llm.Tool
	for _, name := range a.Tools.List() {
		t, ok := a.Tools.Get(name)
		if !ok {
			continue
		}
		defs = append(defs, llm.Tool{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Schema(),
			},
		})
	}
	return defs
}

// executeTool runs one requested call. Tool failures are reported back to the
// model as the tool result; only middleware errors abort the run.
func (a *ChatAgent) executeTool(ctx context.Context, tc llm.ToolCall) (string, error) {
	name := tc.Function.Name
	input := toolInput(tc.Function.Arguments)
	for _, mw := range a.Middleware {
		if err := mw.BeforeToolExecute(ctx, name, input); err != nil {
			return "", err
		}
	}

	var result string
	var execErr error
	if _, ok := a.Tools.Get(name); !ok {
		execErr = fmt.Errorf("tool %s not found", name)
	} else {
		result, execErr = a.Tools.Execute(ctx, name, input)
	}
	if execErr != nil {
		a.Logger.Warn().Err(execErr).Str("tool", name).Msg("tool execution failed")
		result = fmt.Sprintf("error: %v", execErr)
	}

	for _, mw := range a.Middleware {
		if err := mw.AfterToolExecute(ctx, name, result, execErr); err != nil {
			return "", err
		}
	}
	return result, nil
}

// toolInput unwraps {"input":"..."} arguments; any other payload is passed through
func toolInput(args string) string {
	if !gjson.Valid(args) {
		return args
	}
	parsed := gjson.Parse(args)
	if v := parsed.Get("input"); v.Type == gjson.String && len(parsed.Map()) == 1 {
		return v.String()
	}
	return args
}

var _ Agent = (*ChatAgent)(nil)
