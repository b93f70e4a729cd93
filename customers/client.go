// Package customers is the client for the customers service.
package customers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/KamdynS/petclinic-genai/clinic"
	"github.com/KamdynS/petclinic-genai/discovery"
	"github.com/KamdynS/petclinic-genai/rest"
)

// Client calls the customers service. The base address is resolved through
// discovery before every request.
type Client struct {
	resolver *discovery.Resolver
	rest     *rest.Client
	logger   zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l.With().Str("component", "customers").Logger() }
}

// NewClient creates a customers client
func NewClient(resolver *discovery.Resolver, rc *rest.Client, opts ...Option) *Client {
	if rc == nil {
		rc = rest.New(0)
	}
	c := &Client{resolver: resolver, rest: rc, logger: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) url(ctx context.Context, path string) (string, error) {
	base, err := c.resolver.Resolve(ctx, discovery.CustomersService)
	if err != nil {
		return "", err
	}
	return rest.JoinURL(base, path), nil
}

// ListOwners returns every owner with pets
func (c *Client) ListOwners(ctx context.Context) ([]clinic.OwnerDetails, error) {
	target, err := c.url(ctx, "owners")
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("url", target).Msg("listing owners")
	owners := []clinic.OwnerDetails{}
	if err := c.rest.DoJSON(ctx, http.MethodGet, target, nil, &owners); err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	if owners == nil {
		owners = []clinic.OwnerDetails{}
	}
	return owners, nil
}

// AddPet creates a pet for the given owner and returns the stored pet
func (c *Client) AddPet(ctx context.Context, ownerID int, req clinic.PetRequest) (clinic.PetDetails, error) {
	target, err := c.url(ctx, "owners/"+strconv.Itoa(ownerID)+"/pets")
	if err != nil {
		return clinic.PetDetails{}, err
	}
	c.logger.Debug().Str("url", target).Int("owner_id", ownerID).Msg("adding pet")
	var pet clinic.PetDetails
	if err := c.rest.DoJSON(ctx, http.MethodPost, target, req, &pet); err != nil {
		return clinic.PetDetails{}, fmt.Errorf("add pet to owner %d: %w", ownerID, err)
	}
	return pet, nil
}

// AddOwner creates an owner and returns the stored record
func (c *Client) AddOwner(ctx context.Context, req clinic.OwnerRequest) (clinic.OwnerDetails, error) {
	target, err := c.url(ctx, "owners")
	if err != nil {
		return clinic.OwnerDetails{}, err
	}
	c.logger.Debug().Str("url", target).Msg("adding owner")
	var owner clinic.OwnerDetails
	if err := c.rest.DoJSON(ctx, http.MethodPost, target, req, &owner); err != nil {
		return clinic.OwnerDetails{}, fmt.Errorf("add owner: %w", err)
	}
	return owner, nil
}
