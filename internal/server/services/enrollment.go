// Package services contains server-side business logic: the enrollment and
// verification coordinators, code credential handling, and the factor
// status view. Coordinators run the full pipeline (feature extraction,
// matching engine, audit trail) and record every attempt, successful or
// not.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authentix/internal/common"
	"github.com/dmitrijs2005/authentix/internal/dbx"
	"github.com/dmitrijs2005/authentix/internal/extract"
	"github.com/dmitrijs2005/authentix/internal/logging"
	"github.com/dmitrijs2005/authentix/internal/matching"
	"github.com/dmitrijs2005/authentix/internal/observe"
	"github.com/dmitrijs2005/authentix/internal/server/models"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/repomanager"
)

// EnrollmentService coordinates biometric enrollment: it extracts a feature
// vector from the raw sample, stores it as the user's single live template
// for the modality, marks the factor enrolled, and appends an audit record.
type EnrollmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	matcher     *matching.Service
	extractors  map[models.Modality]extract.Extractor
	metrics     *observe.Metrics
	logger      logging.Logger
	locks       *keyedMutex
}

// NewEnrollmentService constructs an EnrollmentService. extractors must
// cover every biometric modality the matcher serves.
func NewEnrollmentService(db *sql.DB, m repomanager.RepositoryManager, matcher *matching.Service,
	extractors map[models.Modality]extract.Extractor, metrics *observe.Metrics, logger logging.Logger) *EnrollmentService {
	return &EnrollmentService{
		db:          db,
		repomanager: m,
		matcher:     matcher,
		extractors:  extractors,
		metrics:     metrics,
		logger:      logger,
		locks:       newKeyedMutex(),
	}
}

// Enroll runs the enrollment pipeline for one raw sample. Re-enrolling
// replaces the previous template; the old vector can never match again.
// Every call appends exactly one audit record.
func (s *EnrollmentService) Enroll(ctx context.Context, userID string, modality models.Modality, sample []byte) error {
	extractor, ok := s.extractors[modality]
	if !ok {
		return fmt.Errorf("no extractor for modality %q", modality)
	}

	unlock := s.locks.Lock(userID + "/" + string(modality))
	defer unlock()

	started := time.Now()
	vector, err := extractor.Extract(ctx, sample)
	s.metrics.RecordExtractDuration(ctx, string(modality), time.Since(started))
	if err != nil {
		s.logger.Warn(ctx, "enrollment extraction failed", "user_id", userID, "modality", modality, "error", err)
		s.recordFailure(ctx, userID, modality, "extraction failed")
		if errors.Is(err, common.ErrExtraction) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}

	if err := s.matcher.Enroll(ctx, userID, modality, vector); err != nil {
		s.logger.Error(ctx, "enrollment failed", "user_id", userID, "modality", modality, "error", err)
		s.recordFailure(ctx, userID, modality, "template storage failed")
		return err
	}

	now := time.Now()
	confidence := 1.0
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Factors(tx).Upsert(ctx, &models.FactorStatus{
			UserID:     userID,
			Modality:   modality,
			IsEnrolled: true,
			EnrolledAt: &now,
		}); err != nil {
			return err
		}
		return s.repomanager.Attempts(tx).Append(ctx, &models.AuthAttempt{
			ID:         uuid.New().String(),
			UserID:     userID,
			Modality:   modality,
			Success:    true,
			Confidence: &confidence,
			Metadata:   "enrollment",
			CreatedAt:  now,
		})
	})
	if err != nil {
		return fmt.Errorf("error recording enrollment: %w", err)
	}

	s.metrics.RecordAttempt(ctx, string(modality), "enroll", "success")
	s.logger.Info(ctx, "factor enrolled", "user_id", userID, "modality", modality)
	return nil
}

// recordFailure appends a failed audit record outside any transaction. The
// trail must survive even when the main operation did not.
func (s *EnrollmentService) recordFailure(ctx context.Context, userID string, modality models.Modality, reason string) {
	attempt := &models.AuthAttempt{
		ID:        uuid.New().String(),
		UserID:    userID,
		Modality:  modality,
		Success:   false,
		Metadata:  reason,
		CreatedAt: time.Now(),
	}
	if err := s.repomanager.Attempts(s.db).Append(ctx, attempt); err != nil {
		s.logger.Error(ctx, "failed to append audit record", "user_id", userID, "modality", modality, "error", err)
	}
	s.metrics.RecordAttempt(ctx, string(modality), "enroll", "failure")
}
