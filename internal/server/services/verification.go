package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authentix/internal/common"
	"github.com/dmitrijs2005/authentix/internal/extract"
	"github.com/dmitrijs2005/authentix/internal/logging"
	"github.com/dmitrijs2005/authentix/internal/matching"
	"github.com/dmitrijs2005/authentix/internal/observe"
	"github.com/dmitrijs2005/authentix/internal/server/models"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/repomanager"
)

// VerificationResult is what callers get back from a single-factor check.
// Matched folds "below threshold" and "not enrolled" into one negative so
// the response cannot be used to probe which users have enrollments.
type VerificationResult struct {
	Matched    bool
	Confidence *float64
}

// VerificationService coordinates single-factor verification against a
// claimed identity: extract, search, threshold, audit. Every attempt is
// recorded regardless of outcome.
type VerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	matcher     *matching.Service
	extractors  map[models.Modality]extract.Extractor
	metrics     *observe.Metrics
	logger      logging.Logger
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager, matcher *matching.Service,
	extractors map[models.Modality]extract.Extractor, metrics *observe.Metrics, logger logging.Logger) *VerificationService {
	return &VerificationService{
		db:          db,
		repomanager: m,
		matcher:     matcher,
		extractors:  extractors,
		metrics:     metrics,
		logger:      logger,
	}
}

// Verify runs the verification pipeline for one raw sample against the
// claimed userID. An extraction failure is an error; a clean below-threshold
// or unenrolled outcome is a normal result with Matched=false.
func (s *VerificationService) Verify(ctx context.Context, userID string, modality models.Modality, sample []byte) (*VerificationResult, error) {
	extractor, ok := s.extractors[modality]
	if !ok {
		return nil, fmt.Errorf("no extractor for modality %q", modality)
	}

	started := time.Now()
	defer func() {
		s.metrics.RecordVerifyDuration(ctx, string(modality), time.Since(started))
	}()

	extractStarted := time.Now()
	vector, err := extractor.Extract(ctx, sample)
	s.metrics.RecordExtractDuration(ctx, string(modality), time.Since(extractStarted))
	if err != nil {
		// An externally cancelled capture is not an attempt: nothing was
		// verified, so nothing lands in the audit trail.
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, common.ErrCancelled
		}
		s.logger.Warn(ctx, "verification extraction failed", "user_id", userID, "modality", modality, "error", err)
		s.appendAttempt(ctx, userID, modality, false, nil, "extraction failed")
		s.metrics.RecordAttempt(ctx, string(modality), "verify", "error")
		if errors.Is(err, common.ErrExtraction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}

	outcome, err := s.matcher.Verify(ctx, userID, modality, vector)
	if err != nil {
		s.logger.Error(ctx, "verification failed", "user_id", userID, "modality", modality, "error", err)
		s.appendAttempt(ctx, userID, modality, false, nil, "matching error")
		s.metrics.RecordAttempt(ctx, string(modality), "verify", "error")
		return nil, err
	}

	result := &VerificationResult{Matched: outcome.Decision == matching.DecisionMatch}
	if outcome.Decision != matching.DecisionNotEnrolled {
		confidence := outcome.Confidence
		result.Confidence = &confidence
	}

	// The audit trail keeps the full decision; the caller only sees the
	// collapsed Matched flag.
	s.appendAttempt(ctx, userID, modality, result.Matched, result.Confidence, string(outcome.Decision))
	s.metrics.RecordAttempt(ctx, string(modality), "verify", string(outcome.Decision))
	s.logger.Info(ctx, "verification completed", "user_id", userID, "modality", modality, "decision", outcome.Decision)

	return result, nil
}

func (s *VerificationService) appendAttempt(ctx context.Context, userID string, modality models.Modality, success bool, confidence *float64, metadata string) {
	attempt := &models.AuthAttempt{
		ID:         uuid.New().String(),
		UserID:     userID,
		Modality:   modality,
		Success:    success,
		Confidence: confidence,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
	if err := s.repomanager.Attempts(s.db).Append(ctx, attempt); err != nil {
		s.logger.Error(ctx, "failed to append audit record", "user_id", userID, "modality", modality, "error", err)
	}
}
