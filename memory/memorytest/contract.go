// Package memorytest holds behaviour contracts shared by the memory adapters'
// tests.
package memorytest

import (
	"context"
	"errors"
	"testing"

	"github.com/KamdynS/petclinic-genai/memory"
)

// RunConversationContract checks append order, session isolation and clearing
func RunConversationContract(t *testing.T, cs memory.ConversationStore) {
	t.Helper()
	ctx := context.Background()

	session := "s1"
	if err := cs.AppendMessage(ctx, session, "user", "hello"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := cs.AppendMessage(ctx, session, "assistant", "hi"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := cs.AppendMessage(ctx, "s2", "user", "other"); err != nil {
		t.Fatalf("append: %v", err)
	}

	msgs, err := cs.GetMessages(ctx, session)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want 2 messages got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("unexpected roles: %+v", msgs)
	}
	if msgs[0].Timestamp <= 0 {
		t.Fatalf("expected timestamp on stored message")
	}

	if err := cs.ClearSession(ctx, session); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	msgs, err = cs.GetMessages(ctx, session)
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected 0 after clear, got %d", len(msgs))
	}
	msgs, _ = cs.GetMessages(ctx, "s2")
	if len(msgs) != 1 {
		t.Fatalf("clearing s1 must not touch s2, got %d messages", len(msgs))
	}
	_ = cs.ClearSession(ctx, "s2")
}

// RunVectorContract checks upsert, retrieval, ranking, counting and deletion.
// The store must be empty on entry.
func RunVectorContract(t *testing.T, s memory.VectorStore) {
	t.Helper()
	ctx := context.Background()

	docs := []memory.Document{
		{ID: "d1", Content: "radiology", Embedding: []float32{1, 0, 0}, Meta: map[string]string{"vetId": "1"}},
		{ID: "d2", Content: "surgery", Embedding: []float32{0, 1, 0}, Meta: map[string]string{"vetId": "2"}},
		{ID: "d3", Content: "dentistry", Embedding: []float32{0.9, 0.1, 0}},
	}
	for _, d := range docs {
		if err := s.AddDocument(ctx, d); err != nil {
			t.Fatalf("add %s: %v", d.ID, err)
		}
	}
	// upsert replaces
	if err := s.AddDocument(ctx, memory.Document{ID: "d2", Content: "surgery v2", Embedding: []float32{0, 1, 0}, Meta: map[string]string{"vetId": "2"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 documents, got %d", n)
	}

	doc, err := s.GetDocument(ctx, "d2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Content != "surgery v2" || doc.Meta["vetId"] != "2" {
		t.Fatalf("unexpected document %+v", doc)
	}
	if _, err := s.GetDocument(ctx, "missing"); !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := s.QuerySimilar(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 results got %d", len(got))
	}
	if got[0].ID != "d1" || got[1].ID != "d3" {
		t.Fatalf("unexpected ranking %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Score < got[1].Score {
		t.Fatalf("scores not descending: %f < %f", got[0].Score, got[1].Score)
	}
	if got[0].Meta["vetId"] != "1" {
		t.Fatalf("metadata lost in query result: %+v", got[0].Meta)
	}

	for _, d := range docs {
		if err := s.DeleteDocument(ctx, d.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("expected empty store after delete, got %d", n)
	}
}
