package pgvector

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KamdynS/petclinic-genai/memory/memorytest"
)

func TestVectorContract_PgVector(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("connect: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("ping: %v", err)
	}

	s := New(pool, "petclinic_contract_documents")
	if err := s.EnsureSchema(ctx, 3); err != nil {
		t.Fatalf("schema: %v", err)
	}
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), "DROP TABLE IF EXISTS petclinic_contract_documents") })

	memorytest.RunVectorContract(t, s)
}

func TestNewSanitizesTable(t *testing.T) {
	s := New(nil, `docs"; DROP TABLE x; --`)
	if s.table != `"docs""; DROP TABLE x; --"` {
		t.Fatalf("unexpected sanitized table %s", s.table)
	}
	if New(nil, "").table != `"documents"` {
		t.Fatalf("expected default table")
	}
}
