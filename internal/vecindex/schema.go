package vecindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MigratePgvector installs the pgvector extension and creates one embedding
// table per biometric modality. Applied only when the pgvector index
// backend is configured; the goose migrations do not touch these tables so
// plain deployments never need the extension.
func MigratePgvector(ctx context.Context, pool *pgxpool.Pool, tables map[string]int) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create extension: %w", err)
	}

	for table, dimension := range tables {
		ddl := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
			    user_id     TEXT PRIMARY KEY,
			    embedding   vector(%[2]d) NOT NULL,
			    enrolled_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_%[1]s_embedding
			    ON %[1]s USING hnsw (embedding vector_cosine_ops)`, table, dimension)
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
	}
	return nil
}
