package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authentix/internal/common"
	"github.com/dmitrijs2005/authentix/internal/cryptox"
	"github.com/dmitrijs2005/authentix/internal/dbx"
	"github.com/dmitrijs2005/authentix/internal/logging"
	"github.com/dmitrijs2005/authentix/internal/observe"
	"github.com/dmitrijs2005/authentix/internal/server/models"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/repomanager"
)

// CodeService manages the knowledge factor: a numeric code stored only as
// a salted Argon2id hash. Verification compares in constant time and is
// recorded in the audit trail like any biometric attempt.
type CodeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	metrics     *observe.Metrics
	logger      logging.Logger
	locks       *keyedMutex
}

// NewCodeService constructs a CodeService.
func NewCodeService(db *sql.DB, m repomanager.RepositoryManager, metrics *observe.Metrics, logger logging.Logger) *CodeService {
	return &CodeService{
		db:          db,
		repomanager: m,
		metrics:     metrics,
		logger:      logger,
		locks:       newKeyedMutex(),
	}
}

// Set hashes code with a fresh random salt and stores it, replacing any
// prior code, and marks the code factor enrolled. The raw code is wiped
// from this layer as soon as the hash is derived.
func (s *CodeService) Set(ctx context.Context, userID string, code []byte) error {
	if len(code) == 0 {
		return fmt.Errorf("empty code")
	}

	unlock := s.locks.Lock(userID + "/" + string(models.ModalityCode))
	defer unlock()

	salt := make([]byte, cryptox.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("error generating salt: %w", err)
	}
	hash := cryptox.HashCode(code, salt)
	common.WipeByteArray(code)

	now := time.Now()
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Codes(tx).Upsert(ctx, &models.CodeCredential{
			UserID:    userID,
			CodeHash:  hash,
			Salt:      salt,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		return s.repomanager.Factors(tx).Upsert(ctx, &models.FactorStatus{
			UserID:     userID,
			Modality:   models.ModalityCode,
			IsEnrolled: true,
			EnrolledAt: &now,
		})
	})
	if err != nil {
		return fmt.Errorf("error storing code credential: %w", err)
	}

	s.logger.Info(ctx, "code credential set", "user_id", userID)
	return nil
}

// Verify checks a candidate code against the stored hash. A user without a
// stored code gets a plain negative, indistinguishable from a wrong code.
// Confidence stays nil: there is no similarity score for a knowledge
// factor.
func (s *CodeService) Verify(ctx context.Context, userID string, code []byte) (bool, error) {
	cred, err := s.repomanager.Codes(s.db).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.appendAttempt(ctx, userID, false, "no code credential")
			s.metrics.RecordAttempt(ctx, string(models.ModalityCode), "verify", "not_enrolled")
			return false, nil
		}
		return false, fmt.Errorf("error loading code credential: %w", err)
	}

	ok := cryptox.VerifyCode(code, cred.Salt, cred.CodeHash)
	common.WipeByteArray(code)

	decision := "no_match"
	metadata := "wrong code"
	if ok {
		decision = "match"
		metadata = "code accepted"
	}
	s.appendAttempt(ctx, userID, ok, metadata)
	s.metrics.RecordAttempt(ctx, string(models.ModalityCode), "verify", decision)
	s.logger.Info(ctx, "code verification completed", "user_id", userID, "success", ok)

	return ok, nil
}

func (s *CodeService) appendAttempt(ctx context.Context, userID string, success bool, metadata string) {
	attempt := &models.AuthAttempt{
		ID:        uuid.New().String(),
		UserID:    userID,
		Modality:  models.ModalityCode,
		Success:   success,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if err := s.repomanager.Attempts(s.db).Append(ctx, attempt); err != nil {
		s.logger.Error(ctx, "failed to append audit record", "user_id", userID, "modality", models.ModalityCode, "error", err)
	}
}
