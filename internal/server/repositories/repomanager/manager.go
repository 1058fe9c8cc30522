// Package repomanager vends repository implementations bound to a database
// handle, so services can run several repositories inside one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authentix/internal/dbx"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/codes"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/factors"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Attempts(db dbx.DBTX) attempts.Repository
	Codes(db dbx.DBTX) codes.Repository
	Factors(db dbx.DBTX) factors.Repository
}
