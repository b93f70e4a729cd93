package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KamdynS/petclinic-genai/clinic"
	"github.com/KamdynS/petclinic-genai/memory"
	"github.com/KamdynS/petclinic-genai/rag"
)

// VetLister fetches all vets from the vets service
type VetLister interface {
	ListVets(ctx context.Context) ([]clinic.Vet, error)
}

// VetIndexer seeds the vector store with one document per vet
type VetIndexer struct {
	Vets     VetLister
	Store    memory.VectorStore
	Embedder rag.Embedder
	Logger   zerolog.Logger
}

// Load indexes the vets unless the store already holds documents.
// It returns the number of vets indexed.
func (ix *VetIndexer) Load(ctx context.Context) (int, error) {
	n, err := ix.Store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count vector store: %w", err)
	}
	if n > 0 {
		ix.Logger.Info().Int("documents", n).Msg("vector store already populated, skipping vet indexing")
		return 0, nil
	}

	vets, err := ix.Vets.ListVets(ctx)
	if err != nil {
		return 0, fmt.Errorf("load vets: %w", err)
	}
	sources := make([]rag.Source, 0, len(vets))
	for _, v := range vets {
		content, err := json.Marshal(v)
		if err != nil {
			return 0, fmt.Errorf("encode vet %d: %w", v.ID, err)
		}
		id := uuid.NewString()
		if v.ID != 0 {
			id = "vet-" + strconv.Itoa(v.ID)
		}
		sources = append(sources, rag.Source{
			ID:      id,
			Content: string(content),
			Meta:    map[string]string{"vetId": strconv.Itoa(v.ID)},
		})
	}
	if err := rag.IndexDocuments(ctx, ix.Store, ix.Embedder, sources); err != nil {
		return 0, err
	}
	ix.Logger.Info().Int("vets", len(sources)).Msg("vets indexed into vector store")
	return len(sources), nil
}
