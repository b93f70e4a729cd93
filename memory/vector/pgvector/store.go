// Package pgvector is a memory.VectorStore on PostgreSQL with the pgvector
// extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KamdynS/petclinic-genai/memory"
)

// Querier is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps documents in a single table:
//
//	id text PRIMARY KEY, content text, embedding vector(N), meta jsonb
type Store struct {
	db    Querier
	table string
}

// New creates a store over the given table (default "documents")
func New(db Querier, table string) *Store {
	if table == "" {
		table = "documents"
	}
	return &Store{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// EnsureSchema creates the extension and table if they do not exist
func (s *Store) EnsureSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return errors.New("dimensions must be positive")
	}
	if _, err := s.db.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create extension: %w", err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id text PRIMARY KEY,
	content text NOT NULL,
	embedding vector(%d) NOT NULL,
	meta jsonb NOT NULL DEFAULT '{}'::jsonb
)`, s.table, dimensions)
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// AddDocument implements memory.VectorStore interface
func (s *Store) AddDocument(ctx context.Context, doc memory.Document) error {
	if len(doc.Embedding) == 0 {
		return errors.New("empty embedding")
	}
	meta := doc.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	_, err := s.db.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, content, embedding, meta) VALUES ($1, $2, $3::real[]::vector, $4)
ON CONFLICT (id) DO UPDATE SET content = excluded.content, embedding = excluded.embedding, meta = excluded.meta`, s.table),
		doc.ID, doc.Content, doc.Embedding, meta)
	return err
}

// QuerySimilar implements memory.VectorStore interface. Score is cosine
// similarity (1 - cosine distance).
func (s *Store) QuerySimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]memory.Document, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(
		`SELECT id, content, meta, 1 - (embedding <=> $1::real[]::vector) AS score
FROM %s ORDER BY embedding <=> $1::real[]::vector ASC, id LIMIT $2`, s.table),
		queryEmbedding, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]memory.Document, 0, limit)
	for rows.Next() {
		var doc memory.Document
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Meta, &doc.Score); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// DeleteDocument implements memory.VectorStore interface
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.table), id)
	return err
}

// GetDocument implements memory.VectorStore interface
func (s *Store) GetDocument(ctx context.Context, id string) (*memory.Document, error) {
	row := s.db.QueryRow(ctx, fmt.Sprintf("SELECT id, content, embedding::real[], meta FROM %s WHERE id = $1", s.table), id)
	var doc memory.Document
	if err := row.Scan(&doc.ID, &doc.Content, &doc.Embedding, &doc.Meta); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, memory.ErrNotFound)
		}
		return nil, err
	}
	return &doc, nil
}

// Count implements memory.VectorStore interface
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", s.table)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ memory.VectorStore = (*Store)(nil)
