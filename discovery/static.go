package discovery

import (
	"context"
	"sync"
)

// StaticClient serves a fixed, configured set of instances
type StaticClient struct {
	mu        sync.RWMutex
	instances map[string][]Instance
}

// NewStaticClient creates an empty static directory
func NewStaticClient() *StaticClient {
	return &StaticClient{instances: make(map[string][]Instance)}
}

// NewStaticClientFromURLs builds a directory from serviceID -> base URL pairs.
// Empty URLs are skipped.
func NewStaticClientFromURLs(urls map[string]string) (*StaticClient, error) {
	c := NewStaticClient()
	for serviceID, raw := range urls {
		if raw == "" {
			continue
		}
		inst, err := ParseInstance(serviceID, raw)
		if err != nil {
			return nil, err
		}
		c.Add(inst)
	}
	return c, nil
}

// Add appends an instance for its service
func (c *StaticClient) Add(inst Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[inst.ServiceID] = append(c.instances[inst.ServiceID], inst)
}

// Instances implements Client interface
func (c *StaticClient) Instances(ctx context.Context, serviceID string) ([]Instance, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Instance, len(c.instances[serviceID]))
	copy(out, c.instances[serviceID])
	return out, nil
}

var _ Client = (*StaticClient)(nil)
