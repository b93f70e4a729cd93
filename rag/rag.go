// Package rag indexes text into a vector store and runs similarity searches.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KamdynS/petclinic-genai/llm/openai"
	"github.com/KamdynS/petclinic-genai/memory"
)

// DefaultTopK is used when a search request does not set TopK
const DefaultTopK = 4

// Chunk splits text into roughly fixed-size chunks by byte count with simple paragraph awareness.
func Chunk(text string, approxChunkSize int) []string {
	if approxChunkSize <= 0 {
		approxChunkSize = 1200
	}
	paras := strings.Split(text, "\n\n")
	var chunks []string
	var cur strings.Builder
	for _, p := range paras {
		if cur.Len()+len(p) > approxChunkSize && cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if len(p) > approxChunkSize {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			for i := 0; i < len(p); i += approxChunkSize {
				end := i + approxChunkSize
				if end > len(p) {
					end = len(p)
				}
				chunks = append(chunks, p[i:end])
			}
			continue
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// Embedder provides text embeddings.
type Embedder interface {
	EmbedText(ctx context.Context, input string) ([]float32, error)
}

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates a new embedder.
func NewOpenAIEmbedder(client *openai.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model}
}

// EmbedText returns a single vector for the input text.
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, input string) ([]float32, error) {
	model := e.model
	if model == "" || strings.Contains(model, "gpt") {
		model = openai.DefaultEmbeddingModel
	}
	return e.client.Embed(ctx, input, model)
}

// Source is a document to be indexed
type Source struct {
	ID      string
	Content string
	Meta    map[string]string
}

// IndexDocuments chunks, embeds and upserts content into a VectorStore.
// Chunk ids are "<id>#<n>" and every chunk carries the source metadata.
func IndexDocuments(ctx context.Context, store memory.VectorStore, emb Embedder, docs []Source) error {
	for _, src := range docs {
		for i, ch := range Chunk(src.Content, 1200) {
			cid := fmt.Sprintf("%s#%d", src.ID, i)
			vec, err := emb.EmbedText(ctx, ch)
			if err != nil {
				return fmt.Errorf("embed %s: %w", cid, err)
			}
			doc := memory.Document{ID: cid, Content: ch, Embedding: vec, Meta: src.Meta}
			if err := store.AddDocument(ctx, doc); err != nil {
				return fmt.Errorf("upsert %s: %w", cid, err)
			}
		}
	}
	return nil
}

// Query retrieves topK documents by embedding similarity for the question.
func Query(ctx context.Context, store memory.VectorStore, emb Embedder, question string, topK int) ([]memory.Document, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	qvec, err := emb.EmbedText(ctx, question)
	if err != nil {
		return nil, err
	}
	return store.QuerySimilar(ctx, qvec, topK)
}

// SearchRequest is a similarity query: free text plus the number of results
type SearchRequest struct {
	Query string
	TopK  int
}

// Searcher runs similarity searches against a vector store
type Searcher struct {
	Store    memory.VectorStore
	Embedder Embedder
}

// NewSearcher creates a Searcher
func NewSearcher(store memory.VectorStore, emb Embedder) *Searcher {
	return &Searcher{Store: store, Embedder: emb}
}

// SimilaritySearch returns up to req.TopK documents, best match first
func (s *Searcher) SimilaritySearch(ctx context.Context, req SearchRequest) ([]memory.Document, error) {
	if s == nil || s.Store == nil || s.Embedder == nil {
		return nil, errors.New("rag: searcher not configured")
	}
	docs, err := Query(ctx, s.Store, s.Embedder, req.Query, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if docs == nil {
		docs = []memory.Document{}
	}
	return docs, nil
}
