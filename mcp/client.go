package mcp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/KamdynS/petclinic-genai/rest"
)

// ClientConfig holds tool server connection details
type ClientConfig struct {
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
}

// Client lists and executes the tools of a remote tool server
type Client struct {
	baseURL string
	rest    *rest.Client
}

// NewClient creates a client; the timeout defaults to 15s
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	rc := rest.New(timeout)
	if len(cfg.Headers) > 0 {
		rc.Header = make(http.Header, len(cfg.Headers))
		for k, v := range cfg.Headers {
			rc.Header.Set(k, v)
		}
	}
	return &Client{baseURL: cfg.BaseURL, rest: rc}
}

// ListTools fetches tool metadata from the server.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	var out ListToolsResponse
	if err := c.rest.DoJSON(ctx, http.MethodGet, rest.JoinURL(c.baseURL, "tools"), nil, &out); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	if out.Tools == nil {
		out.Tools = []ToolInfo{}
	}
	return out.Tools, nil
}

// ExecuteTool runs the named tool with the given JSON input.
func (c *Client) ExecuteTool(ctx context.Context, name string, input string) (string, error) {
	target := rest.JoinURL(c.baseURL, "tools/"+url.PathEscape(name)+"/execute")
	var out ExecuteResponse
	if err := c.rest.DoJSON(ctx, http.MethodPost, target, ExecuteRequest{Input: input}, &out); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("execute %s: %s", name, out.Error)
	}
	return out.Result, nil
}

var _ ClientLike = (*Client)(nil)
