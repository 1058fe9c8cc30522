package factors

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

func (r *PostgresRepository) Upsert(ctx context.Context, status *models.FactorStatus) error {

	query :=
		`INSERT INTO factor_statuses (user_id, modality, is_enrolled, enrolled_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, modality) DO UPDATE SET
		     is_enrolled = EXCLUDED.is_enrolled,
		     enrolled_at = EXCLUDED.enrolled_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		status.UserID, string(status.Modality), status.IsEnrolled, status.EnrolledAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.FactorStatus, error) {
	query :=
		`SELECT user_id, modality, is_enrolled, enrolled_at FROM factor_statuses
		 WHERE user_id = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FactorStatus
	for rows.Next() {
		st := &models.FactorStatus{}
		var modality string
		if err := rows.Scan(&st.UserID, &modality, &st.IsEnrolled, &st.EnrolledAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		st.Modality = models.Modality(modality)
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
