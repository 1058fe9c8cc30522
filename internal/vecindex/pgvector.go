package vecindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/dmitrijs2005/authentix/internal/common"
)

// Pgvector is an Index backed by a PostgreSQL table with a pgvector HNSW
// index, for deployments where the enrolled population outgrows a flat
// in-memory scan. Durability is the database's; there is no separate
// snapshot blob.
//
// One table per modality, created by the schema migrations.
type Pgvector struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
}

// NewPgvector builds a Pgvector index over the named per-modality table.
// The table name comes from a fixed modality mapping, never from user input.
func NewPgvector(pool *pgxpool.Pool, table string, dimension int) *Pgvector {
	return &Pgvector{pool: pool, table: table, dimension: dimension}
}

func (p *Pgvector) Dimension() int { return p.dimension }

func (p *Pgvector) Len(ctx context.Context) (int, error) {
	var n int
	q := fmt.Sprintf(`SELECT count(*) FROM %s`, p.table)
	if err := p.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", common.ErrPersistence, err)
	}
	return n, nil
}

func (p *Pgvector) Upsert(ctx context.Context, userID string, vector []float32) error {
	if len(vector) != p.dimension {
		return fmt.Errorf("%w: got %d, want %d", common.ErrDimensionMismatch, len(vector), p.dimension)
	}
	normalized, err := Normalize(vector)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (user_id, embedding, enrolled_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET
		    embedding   = EXCLUDED.embedding,
		    enrolled_at = EXCLUDED.enrolled_at`, p.table)

	if _, err := p.pool.Exec(ctx, q, userID, pgvector.NewVector(normalized)); err != nil {
		return fmt.Errorf("%w: upsert: %v", common.ErrPersistence, err)
	}
	return nil
}

// Search orders by ascending cosine distance and reports similarity as
// 1 - distance, matching the dot product of two unit-norm vectors.
func (p *Pgvector) Search(ctx context.Context, query []float32, k int) ([]Candidate, error) {
	if len(query) != p.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", common.ErrDimensionMismatch, len(query), p.dimension)
	}
	if k <= 0 {
		k = DefaultSearchK
	}

	q := fmt.Sprintf(`
		SELECT user_id, embedding <=> $1 AS distance
		FROM   %s
		ORDER  BY distance
		LIMIT  $2`, p.table)

	rows, err := p.pool.Query(ctx, q, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", common.ErrPersistence, err)
	}

	candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Candidate, error) {
		var (
			c        Candidate
			distance float64
		)
		if err := row.Scan(&c.UserID, &distance); err != nil {
			return c, err
		}
		c.Score = 1 - distance
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: collect: %v", common.ErrPersistence, err)
	}
	return candidates, nil
}
