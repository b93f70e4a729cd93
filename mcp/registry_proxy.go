package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/KamdynS/petclinic-genai/tools"
)

// ProxyTimeout bounds a single remote tool execution
const ProxyTimeout = 30 * time.Second

// RegisterAllTools fetches the remote tool list and registers one proxy per
// tool into the local registry. It returns the registered names.
func RegisterAllTools(ctx context.Context, reg tools.Registry, client ClientLike) ([]string, error) {
	if reg == nil || client == nil {
		return nil, fmt.Errorf("nil registry or client")
	}
	remote, err := client.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(remote))
	for _, t := range remote {
		proxy := &toolProxy{client: client, name: t.Name, desc: t.Description, schema: t.Schema}
		if err := reg.Register(proxy); err != nil {
			return names, err
		}
		names = append(names, t.Name)
	}
	return names, nil
}

// Describe lists local registry tools in protocol form
func Describe(reg tools.Registry) []ToolInfo {
	names := reg.List()
	out := make([]ToolInfo, 0, len(names))
	for _, name := range names {
		t, ok := reg.Get(name)
		if !ok {
			continue
		}
		out = append(out, ToolInfo{Name: t.Name(), Description: t.Description(), Schema: t.Schema()})
	}
	return out
}

type toolProxy struct {
	client ClientLike
	name   string
	desc   string
	schema map[string]interface{}
}

func (m *toolProxy) Name() string        { return m.name }
func (m *toolProxy) Description() string { return m.desc }
func (m *toolProxy) Schema() map[string]interface{} {
	if m.schema == nil {
		return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	return m.schema
}
func (m *toolProxy) Execute(ctx context.Context, input string) (string, error) {
	c, cancel := context.WithTimeout(ctx, ProxyTimeout)
	defer cancel()
	return m.client.ExecuteTool(c, m.name, input)
}

var _ tools.Tool = (*toolProxy)(nil)
