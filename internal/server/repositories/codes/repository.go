// Package codes stores code credentials: a salted one-way hash per user,
// never the raw code.
package codes

import (
	"context"

	"github.com/dmitrijs2005/authentix/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, cred *models.CodeCredential) error
	GetByUserID(ctx context.Context, userID string) (*models.CodeCredential, error)
}
