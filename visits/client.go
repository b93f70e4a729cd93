// Package visits is the client for the visits service.
package visits

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/KamdynS/petclinic-genai/clinic"
	"github.com/KamdynS/petclinic-genai/rest"
)

// DefaultHostname is the visits service address used when none is configured
const DefaultHostname = "http://visits-service/"

// Config holds visits client configuration
type Config struct {
	Hostname   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client fetches visit records for pets. The hostname may be changed after
// construction; the client is safe for concurrent use.
type Client struct {
	mu       sync.RWMutex
	hostname string
	rest     *rest.Client
	logger   zerolog.Logger
}

// NewClient creates a new visits client
func NewClient(cfg Config) *Client {
	if cfg.Hostname == "" {
		cfg.Hostname = DefaultHostname
	}
	rc := rest.New(cfg.Timeout)
	if cfg.HTTPClient != nil {
		rc = rest.NewWithHTTPClient(cfg.HTTPClient)
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "visits").Logger()
	}
	return &Client{
		hostname: cfg.Hostname,
		rest:     rc,
		logger:   logger,
	}
}

// SetHostname points the client at another visits service base address
func (c *Client) SetHostname(hostname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hostname = hostname
}

// Hostname returns the current base address
func (c *Client) Hostname() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hostname
}

// GetVisitsForPets issues one GET for all of the given pets and returns
// immediately. The request runs in its own goroutine and the returned Future
// resolves exactly once. An empty id list sends no petId filter.
func (c *Client) GetVisitsForPets(ctx context.Context, petIDs []int) *Future {
	f := newFuture()
	target := c.visitsURL(petIDs)
	c.logger.Debug().Ints("pet_ids", petIDs).Str("url", target).Msg("fetching visits")

	go func() {
		var out clinic.Visits
		if err := c.rest.DoJSON(ctx, http.MethodGet, target, nil, &out); err != nil {
			c.logger.Warn().Err(err).Ints("pet_ids", petIDs).Msg("visits lookup failed")
			f.resolve(clinic.Visits{}, err)
			return
		}
		if out.Items == nil {
			out.Items = []clinic.Visit{}
		}
		f.resolve(out, nil)
	}()
	return f
}

func (c *Client) visitsURL(petIDs []int) string {
	target := rest.JoinURL(c.Hostname(), "visits")
	if len(petIDs) == 0 {
		return target
	}
	q := make(url.Values, 1)
	for _, id := range petIDs {
		q.Add("petId", strconv.Itoa(id))
	}
	return target + "?" + q.Encode()
}
