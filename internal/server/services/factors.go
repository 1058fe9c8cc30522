package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/authentix/internal/server/models"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/repomanager"
)

// FactorService exposes the per-user enrollment view used by clients and
// by the authentication sequence to decide whether a user may start.
type FactorService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewFactorService constructs a FactorService.
func NewFactorService(db *sql.DB, m repomanager.RepositoryManager) *FactorService {
	return &FactorService{db: db, repomanager: m}
}

// Statuses returns one FactorStatus per modality in sequence order,
// synthesizing a not-enrolled default for modalities without a stored row.
func (s *FactorService) Statuses(ctx context.Context, userID string) ([]*models.FactorStatus, error) {
	stored, err := s.repomanager.Factors(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading factor statuses: %w", err)
	}

	byModality := make(map[models.Modality]*models.FactorStatus, len(stored))
	for _, st := range stored {
		byModality[st.Modality] = st
	}

	result := make([]*models.FactorStatus, 0, len(models.Modalities()))
	for _, m := range models.Modalities() {
		if st, ok := byModality[m]; ok {
			result = append(result, st)
			continue
		}
		result = append(result, &models.FactorStatus{UserID: userID, Modality: m})
	}
	return result, nil
}

// EnrolledCount returns how many factors the user has enrolled.
func (s *FactorService) EnrolledCount(ctx context.Context, userID string) (int, error) {
	statuses, err := s.Statuses(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, st := range statuses {
		if st.IsEnrolled {
			count++
		}
	}
	return count, nil
}

// FullySecured reports whether every modality is enrolled.
func (s *FactorService) FullySecured(ctx context.Context, userID string) (bool, error) {
	count, err := s.EnrolledCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count == len(models.Modalities()), nil
}

// Attempts returns the user's most recent audit records, newest first.
func (s *FactorService) Attempts(ctx context.Context, userID string, limit int) ([]*models.AuthAttempt, error) {
	if limit <= 0 {
		limit = 50
	}
	list, err := s.repomanager.Attempts(s.db).ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error loading attempts: %w", err)
	}
	return list, nil
}
