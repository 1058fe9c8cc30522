// This file provides a concrete RepositoryManager for PostgreSQL, wiring
// together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authentix/internal/dbx"
	"github.com/dmitrijs2005/authentix/internal/server/migrations"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/codes"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/factors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Attempts returns an attempts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Attempts(db dbx.DBTX) attempts.Repository {
	return attempts.NewPostgresRepository(db)
}

// Codes returns a codes.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Codes(db dbx.DBTX) codes.Repository {
	return codes.NewPostgresRepository(db)
}

// Factors returns a factors.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Factors(db dbx.DBTX) factors.Repository {
	return factors.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
