// Package discovery resolves logical service names to network addresses.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Logical names of the petclinic backends
const (
	CustomersService = "customers-service"
	VetsService      = "vets-service"
	VisitsService    = "visits-service"
)

// ErrServiceUnavailable is returned when a lookup yields no instance
var ErrServiceUnavailable = errors.New("service unavailable")

// Instance is one network location of a logical service
type Instance struct {
	ServiceID  string `json:"service_id"`
	InstanceID string `json:"instance_id"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Secure     bool   `json:"secure,omitempty"`
}

// URI returns the base URI of the instance, e.g. http://host:8081
func (i Instance) URI() string {
	scheme := "http"
	if i.Secure {
		scheme = "https"
	}
	host := i.Host
	if i.Port > 0 {
		host = net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
	}
	return scheme + "://" + host
}

// ParseInstance builds an Instance from a base URL such as http://localhost:8081
func ParseInstance(serviceID, rawURL string) (Instance, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Instance{}, fmt.Errorf("parse %s url: %w", serviceID, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Instance{}, fmt.Errorf("parse %s url: %q is not an absolute http(s) url", serviceID, rawURL)
	}
	inst := Instance{
		ServiceID:  serviceID,
		InstanceID: u.Host,
		Host:       u.Hostname(),
		Secure:     u.Scheme == "https",
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return Instance{}, fmt.Errorf("parse %s url: bad port %q", serviceID, p)
		}
		inst.Port = port
	}
	return inst, nil
}

// Client lists the live instances of a logical service
type Client interface {
	Instances(ctx context.Context, serviceID string) ([]Instance, error)
}

// Selector picks one instance out of a non-empty list
type Selector interface {
	Select(serviceID string, instances []Instance) (Instance, error)
}

// FirstSelector always picks the first instance returned by the directory
type FirstSelector struct{}

// Select implements Selector interface
func (FirstSelector) Select(serviceID string, instances []Instance) (Instance, error) {
	if len(instances) == 0 {
		return Instance{}, fmt.Errorf("%s: %w", serviceID, ErrServiceUnavailable)
	}
	return instances[0], nil
}

// RoundRobinSelector cycles through instances, keeping one counter per service
type RoundRobinSelector struct {
	counters sync.Map // serviceID -> *atomic.Uint64
}

// Select implements Selector interface
func (r *RoundRobinSelector) Select(serviceID string, instances []Instance) (Instance, error) {
	if len(instances) == 0 {
		return Instance{}, fmt.Errorf("%s: %w", serviceID, ErrServiceUnavailable)
	}
	v, _ := r.counters.LoadOrStore(serviceID, new(atomic.Uint64))
	n := v.(*atomic.Uint64).Add(1) - 1
	return instances[n%uint64(len(instances))], nil
}

// SelectorByName returns the selector for "first" (default) or "round-robin"
func SelectorByName(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first":
		return FirstSelector{}, nil
	case "round-robin", "roundrobin":
		return &RoundRobinSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown selector %q", name)
	}
}

// Resolver turns a logical service name into a base URI
type Resolver struct {
	client   Client
	selector Selector
}

// NewResolver creates a resolver; a nil selector means FirstSelector
func NewResolver(client Client, selector Selector) *Resolver {
	if selector == nil {
		selector = FirstSelector{}
	}
	return &Resolver{client: client, selector: selector}
}

// Resolve looks up serviceID and returns the selected instance's base URI.
// No health checks or retries are performed.
func (r *Resolver) Resolve(ctx context.Context, serviceID string) (string, error) {
	if r == nil || r.client == nil {
		return "", fmt.Errorf("%s: no discovery client: %w", serviceID, ErrServiceUnavailable)
	}
	instances, err := r.client.Instances(ctx, serviceID)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", serviceID, err)
	}
	inst, err := r.selector.Select(serviceID, instances)
	if err != nil {
		return "", err
	}
	return inst.URI(), nil
}
