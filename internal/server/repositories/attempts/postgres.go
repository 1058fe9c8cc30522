package attempts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authentix/internal/dbx"
	"github.com/dmitrijs2005/authentix/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, attempt *models.AuthAttempt) error {

	query :=
		`INSERT INTO auth_attempts (id, user_id, modality, success, confidence, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID, attempt.UserID, string(attempt.Modality),
		attempt.Success, attempt.Confidence, attempt.Metadata, attempt.CreatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuthAttempt, error) {
	query :=
		`SELECT id, user_id, modality, success, confidence, metadata, created_at FROM auth_attempts
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuthAttempt
	for rows.Next() {
		a := &models.AuthAttempt{}
		var modality string
		if err := rows.Scan(&a.ID, &a.UserID, &modality, &a.Success, &a.Confidence, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		a.Modality = models.Modality(modality)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
