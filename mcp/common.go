// Package mcp implements the remote tool protocol: a server lists its tools
// at GET /tools and runs one at POST /tools/{name}/execute.
package mcp

import "context"

// ClientLike abstracts over different tool protocol transports
type ClientLike interface {
	ListTools(ctx context.Context) ([]ToolInfo, error)
	ExecuteTool(ctx context.Context, name string, input string) (string, error)
}

// ToolInfo describes one remote tool
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Schema      map[string]interface{} `json:"schema"`
}

// ListToolsResponse is the body of GET /tools
type ListToolsResponse struct {
	Tools []ToolInfo `json:"tools"`
}

// ExecuteRequest is the body of POST /tools/{name}/execute. Input holds the
// tool arguments as a JSON string.
type ExecuteRequest struct {
	Input string `json:"input"`
}

// ExecuteResponse carries a tool result, or the error message when it failed
type ExecuteResponse struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}
