package inmemory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/KamdynS/petclinic-genai/memory"
)

// VectorStore is a brute-force cosine similarity store
type VectorStore struct {
	mu   sync.RWMutex
	docs map[string]memory.Document
}

// NewVectorStore creates an empty vector store
func NewVectorStore() *VectorStore {
	return &VectorStore{docs: make(map[string]memory.Document)}
}

// AddDocument implements memory.VectorStore interface
func (s *VectorStore) AddDocument(ctx context.Context, doc memory.Document) error {
	if doc.ID == "" {
		return errors.New("empty document id")
	}
	if len(doc.Embedding) == 0 {
		return errors.New("empty embedding")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.Score = 0
	s.docs[doc.ID] = cloneDoc(doc)
	return nil
}

// QuerySimilar implements memory.VectorStore interface
func (s *VectorStore) QuerySimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]memory.Document, error) {
	if limit <= 0 {
		limit = 5
	}
	s.mu.RLock()
	out := make([]memory.Document, 0, len(s.docs))
	for _, d := range s.docs {
		if len(d.Embedding) != len(queryEmbedding) {
			continue
		}
		d = cloneDoc(d)
		d.Score = cosine(queryEmbedding, d.Embedding)
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteDocument implements memory.VectorStore interface
func (s *VectorStore) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// GetDocument implements memory.VectorStore interface
func (s *VectorStore) GetDocument(ctx context.Context, id string) (*memory.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, memory.ErrNotFound)
	}
	d = cloneDoc(d)
	return &d, nil
}

// Count implements memory.VectorStore interface
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func cloneDoc(d memory.Document) memory.Document {
	if d.Embedding != nil {
		d.Embedding = append([]float32(nil), d.Embedding...)
	}
	if d.Meta != nil {
		meta := make(map[string]string, len(d.Meta))
		for k, v := range d.Meta {
			meta[k] = v
		}
		d.Meta = meta
	}
	return d
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ memory.VectorStore = (*VectorStore)(nil)
