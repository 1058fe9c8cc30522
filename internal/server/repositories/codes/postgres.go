package codes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authentix/internal/common"
	"github.com/dmitrijs2005/authentix/internal/dbx"
	"github.com/dmitrijs2005/authentix/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, cred *models.CodeCredential) error {

	query :=
		`INSERT INTO code_credentials (user_id, code_hash, salt, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		     code_hash  = EXCLUDED.code_hash,
		     salt       = EXCLUDED.salt,
		     updated_at = EXCLUDED.updated_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		cred.UserID, cred.CodeHash, cred.Salt, cred.UpdatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.CodeCredential, error) {
	query :=
		`SELECT user_id, code_hash, salt, updated_at FROM code_credentials
		 WHERE user_id = $1
		 `

	cred := &models.CodeCredential{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&cred.UserID, &cred.CodeHash, &cred.Salt, &cred.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}
