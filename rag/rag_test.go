package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/KamdynS/petclinic-genai/memory"
	"github.com/KamdynS/petclinic-genai/memory/inmemory"
)

type fakeEmb struct {
	vec   []float32
	err   error
	calls []string
}

func (f *fakeEmb) EmbedText(ctx context.Context, input string) ([]float32, error) {
	f.calls = append(f.calls, input)
	return f.vec, f.err
}

type fakeVS struct {
	docs     []memory.Document
	lastTopK int
}

func (f *fakeVS) AddDocument(ctx context.Context, doc memory.Document) error {
	f.docs = append(f.docs, doc)
	return nil
}
func (f *fakeVS) QuerySimilar(ctx context.Context, vector []float32, topK int) ([]memory.Document, error) {
	f.lastTopK = topK
	if len(f.docs) == 0 {
		return nil, nil
	}
	if topK <= 0 || topK > len(f.docs) {
		topK = len(f.docs)
	}
	return f.docs[:topK], nil
}
func (f *fakeVS) DeleteDocument(ctx context.Context, id string) error { return nil }
func (f *fakeVS) GetDocument(ctx context.Context, id string) (*memory.Document, error) {
	return nil, memory.ErrNotFound
}
func (f *fakeVS) Count(ctx context.Context) (int, error) { return len(f.docs), nil }

func TestChunkBasic(t *testing.T) {
	chunks := Chunk("a\n\nbbb\n\ncccc", 3)
	if len(chunks) == 0 {
		t.Fatalf("expected chunks")
	}
	for _, c := range chunks {
		if len(c) > 3 {
			t.Fatalf("chunk %q longer than 3", c)
		}
	}
	if got := Chunk("short", 100); len(got) != 1 || got[0] != "short" {
		t.Fatalf("unexpected chunks %q", got)
	}
}

func TestIndexAndQuery(t *testing.T) {
	vs := &fakeVS{}
	emb := &fakeEmb{vec: []float32{0.1, 0.2}}
	docs := []Source{{ID: "doc1", Content: "para1\n\npara2", Meta: map[string]string{"vetId": "1"}}}
	if err := IndexDocuments(context.Background(), vs, emb, docs); err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(vs.docs) != 1 || vs.docs[0].ID != "doc1#0" || vs.docs[0].Meta["vetId"] != "1" {
		t.Fatalf("unexpected indexed docs %+v", vs.docs)
	}
	got, err := Query(context.Background(), vs, emb, "q", 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || !strings.Contains(got[0].FormattedContent(), "vetId: 1") {
		t.Fatalf("unexpected query result %+v", got)
	}
}

func TestIndexDocumentsEmbedError(t *testing.T) {
	emb := &fakeEmb{err: errors.New("quota")}
	err := IndexDocuments(context.Background(), &fakeVS{}, emb, []Source{{ID: "x", Content: "y"}})
	if err == nil || !strings.Contains(err.Error(), "embed x#0") {
		t.Fatalf("expected embed error, got %v", err)
	}
}

func TestSimilaritySearchPassesTopKAndQuery(t *testing.T) {
	vs := &fakeVS{}
	emb := &fakeEmb{vec: []float32{1}}
	s := NewSearcher(vs, emb)

	docs, err := s.SimilaritySearch(context.Background(), SearchRequest{Query: "null", TopK: 50})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", docs)
	}
	if vs.lastTopK != 50 {
		t.Fatalf("expected topK 50, got %d", vs.lastTopK)
	}
	if len(emb.calls) != 1 || emb.calls[0] != "null" {
		t.Fatalf("unexpected embed calls %q", emb.calls)
	}

	if _, err := s.SimilaritySearch(context.Background(), SearchRequest{Query: "x"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if vs.lastTopK != DefaultTopK {
		t.Fatalf("expected default topK, got %d", vs.lastTopK)
	}
}

func TestSimilaritySearchInMemoryRanking(t *testing.T) {
	store := inmemory.NewVectorStore()
	ctx := context.Background()
	_ = store.AddDocument(ctx, memory.Document{ID: "radiology", Content: "radiology", Embedding: []float32{1, 0}})
	_ = store.AddDocument(ctx, memory.Document{ID: "surgery", Content: "surgery", Embedding: []float32{0, 1}})

	docs, err := NewSearcher(store, &fakeEmb{vec: []float32{0.1, 0.9}}).
		SimilaritySearch(ctx, SearchRequest{Query: "surgeon", TopK: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "surgery" {
		t.Fatalf("expected surgery first, got %+v", docs)
	}
}

func TestSimilaritySearchUnconfigured(t *testing.T) {
	var s *Searcher
	if _, err := s.SimilaritySearch(context.Background(), SearchRequest{Query: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}
