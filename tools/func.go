package tools

import "context"

// FuncTool adapts a plain function to the Tool interface
type FuncTool struct {
	ToolName        string
	ToolDescription string
	InputSchema     map[string]interface{}
	Fn              func(ctx context.Context, input string) (string, error)
}

// Name implements Tool interface
func (f FuncTool) Name() string { return f.ToolName }

// Description implements Tool interface
func (f FuncTool) Description() string { return f.ToolDescription }

// Schema implements Tool interface
func (f FuncTool) Schema() map[string]interface{} {
	if f.InputSchema == nil {
		return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	return f.InputSchema
}

// Execute implements Tool interface
func (f FuncTool) Execute(ctx context.Context, input string) (string, error) {
	return f.Fn(ctx, input)
}

var _ Tool = FuncTool{}
