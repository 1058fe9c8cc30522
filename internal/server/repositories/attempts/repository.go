// Package attempts stores the append-only audit trail of authentication
// attempts. Append is the only mutation; records are never updated or
// deleted.
package attempts

import (
	"context"

	"github.com/dmitrijs2005/authentix/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, attempt *models.AuthAttempt) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuthAttempt, error)
}
