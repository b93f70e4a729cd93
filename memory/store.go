// Package memory defines conversation history and vector retrieval storage.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned when a document id is unknown
var ErrNotFound = errors.New("document not found")

// ConversationStore manages per-session conversation history
type ConversationStore interface {
	// AppendMessage adds a message to the conversation
	AppendMessage(ctx context.Context, sessionID string, role, content string) error

	// GetMessages retrieves conversation history, oldest first
	GetMessages(ctx context.Context, sessionID string) ([]Message, error)

	// ClearSession removes all messages for a session
	ClearSession(ctx context.Context, sessionID string) error
}

// Message represents a conversation message
type Message struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp int64             `json:"timestamp"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// VectorStore defines the interface for vector-based retrieval (RAG)
type VectorStore interface {
	// AddDocument inserts or replaces a document by ID
	AddDocument(ctx context.Context, doc Document) error

	// QuerySimilar finds the documents closest to the query embedding,
	// best match first
	QuerySimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]Document, error)

	// DeleteDocument removes a document by ID
	DeleteDocument(ctx context.Context, id string) error

	// GetDocument retrieves a document by ID, ErrNotFound if absent
	GetDocument(ctx context.Context, id string) (*Document, error)

	// Count returns the number of stored documents
	Count(ctx context.Context) (int, error)
}

// Document represents a stored document with its metadata
type Document struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Embedding []float32         `json:"embedding,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Score     float64           `json:"score,omitempty"` // Similarity score for query results
}

// FormattedContent renders metadata as sorted "key: value" lines followed by
// a blank line and the content. Without metadata it is just the content.
func (d Document) FormattedContent() string {
	if len(d.Meta) == 0 {
		return d.Content
	}
	keys := make([]string, 0, len(d.Meta))
	for k := range d.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(d.Meta[k])
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(d.Content)
	return b.String()
}
