package core

import "context"

// MessageProcessor transforms session history before it is sent to the model
type MessageProcessor interface {
	Process(ctx context.Context, msgs []Message) []Message
}

// TokenLimiter keeps the most recent messages whose combined content fits MaxChars
type TokenLimiter struct {
	MaxChars int
}

// Process implements MessageProcessor interface
func (p TokenLimiter) Process(ctx context.Context, msgs []Message) []Message {
	if p.MaxChars <= 0 {
		return msgs
	}
	total := 0
	start := len(msgs)
	for i := len(msgs) - 1; i >= 0; i-- {
		if total+len(msgs[i].Content) > p.MaxChars {
			break
		}
		total += len(msgs[i].Content)
		start = i
	}
	return msgs[start:]
}

// ToolCallFilter drops tool result messages from history
type ToolCallFilter struct{}

// Process implements MessageProcessor interface
func (ToolCallFilter) Process(ctx context.Context, msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "tool" {
			continue
		}
		out = append(out, m)
	}
	return out
}

var (
	_ MessageProcessor = TokenLimiter{}
	_ MessageProcessor = ToolCallFilter{}
)
