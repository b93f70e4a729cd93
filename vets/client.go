// Package vets is the client for the vets service.
package vets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/KamdynS/petclinic-genai/clinic"
	"github.com/KamdynS/petclinic-genai/discovery"
	"github.com/KamdynS/petclinic-genai/rest"
)

// Client lists vets from the vets service
type Client struct {
	resolver *discovery.Resolver
	rest     *rest.Client
}

// NewClient creates a vets client
func NewClient(resolver *discovery.Resolver, rc *rest.Client) *Client {
	if rc == nil {
		rc = rest.New(0)
	}
	return &Client{resolver: resolver, rest: rc}
}

// ListVets returns all vets with their specialties
func (c *Client) ListVets(ctx context.Context) ([]clinic.Vet, error) {
	base, err := c.resolver.Resolve(ctx, discovery.VetsService)
	if err != nil {
		return nil, err
	}
	out := []clinic.Vet{}
	if err := c.rest.DoJSON(ctx, http.MethodGet, rest.JoinURL(base, "vets"), nil, &out); err != nil {
		return nil, fmt.Errorf("list vets: %w", err)
	}
	if out == nil {
		out = []clinic.Vet{}
	}
	return out, nil
}
