// Package factors stores the per-(user, modality) enrollment view. It is a
// derived cache over enrollment existence; readers synthesize "not
// enrolled" defaults for modalities without a row.
package factors

import (
	"context"

	"github.com/dmitrijs2005/authentix/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, status *models.FactorStatus) error
	ListByUser(ctx context.Context, userID string) ([]*models.FactorStatus, error)
}
