// Package genai exposes the petclinic data sources to the language model:
// a data provider over the customers service and the vet vector store, and
// the tool facade the model calls.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KamdynS/petclinic-genai/clinic"
	"github.com/KamdynS/petclinic-genai/memory"
	"github.com/KamdynS/petclinic-genai/rag"
)

// Search limits for vet lookups
const (
	VetsTopKFiltered   = 20
	VetsTopKUnfiltered = 50
)

// ErrFilterEncoding is returned when a vet filter cannot be encoded for search
var ErrFilterEncoding = errors.New("vet filter encoding failed")

// OwnerService is the subset of the customers client used by the provider
type OwnerService interface {
	ListOwners(ctx context.Context) ([]clinic.OwnerDetails, error)
	AddOwner(ctx context.Context, req clinic.OwnerRequest) (clinic.OwnerDetails, error)
	AddPet(ctx context.Context, ownerID int, req clinic.PetRequest) (clinic.PetDetails, error)
}

// VectorSearcher runs similarity searches over indexed vet documents
type VectorSearcher interface {
	SimilaritySearch(ctx context.Context, req rag.SearchRequest) ([]memory.Document, error)
}

// Encoder serializes a vet filter into search text
type Encoder func(v any) ([]byte, error)

// DataProvider answers the model's data questions from the system of record
type DataProvider struct {
	owners OwnerService
	search VectorSearcher
	encode Encoder
}

// ProviderOption configures a DataProvider
type ProviderOption func(*DataProvider)

// WithEncoder replaces the JSON encoder used for vet filters
func WithEncoder(enc Encoder) ProviderOption {
	return func(p *DataProvider) {
		if enc != nil {
			p.encode = enc
		}
	}
}

// NewDataProvider creates a provider backed by the customers service and a vector searcher
func NewDataProvider(owners OwnerService, search VectorSearcher, opts ...ProviderOption) *DataProvider {
	p := &DataProvider{owners: owners, search: search, encode: json.Marshal}
	for _, o := range opts {
		o(p)
	}
	return p
}

// GetAllOwners lists every owner with their pets
func (p *DataProvider) GetAllOwners(ctx context.Context) ([]clinic.OwnerDetails, error) {
	return p.owners.ListOwners(ctx)
}

// GetVets searches the vet store with the JSON form of filter. A nil filter
// is encoded as null and widens the result limit.
func (p *DataProvider) GetVets(ctx context.Context, filter *clinic.Vet) ([]string, error) {
	query, err := p.encode(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilterEncoding, err)
	}
	topK := VetsTopKFiltered
	if filter == nil {
		topK = VetsTopKUnfiltered
	}
	docs, err := p.search.SimilaritySearch(ctx, rag.SearchRequest{Query: string(query), TopK: topK})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.FormattedContent())
	}
	return out, nil
}

// AddPetToOwner creates a pet for ownerID
func (p *DataProvider) AddPetToOwner(ctx context.Context, ownerID int, req clinic.PetRequest) (clinic.PetDetails, error) {
	return p.owners.AddPet(ctx, ownerID, req)
}

// AddOwnerToPetclinic registers a new owner
func (p *DataProvider) AddOwnerToPetclinic(ctx context.Context, req clinic.OwnerRequest) (clinic.OwnerDetails, error) {
	return p.owners.AddOwner(ctx, req)
}
