// Package orchestrator runs the multi-factor authentication sequence as an
// explicit finite-state machine: face, voice and gesture samples in fixed
// order, then the numeric code with bounded retry. Any failing biometric
// step rejects the whole sequence immediately; later coordinators are
// never invoked for it.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authentix/internal/common"
	"github.com/dmitrijs2005/authentix/internal/logging"
	"github.com/dmitrijs2005/authentix/internal/server/auth"
	"github.com/dmitrijs2005/authentix/internal/server/models"
	"github.com/dmitrijs2005/authentix/internal/server/services"
)

const (
	// MinEnrolledFactors is how many of the four modalities must be
	// enrolled before an authentication sequence may start. Partial
	// enrollment is allowed for setup but not for authentication.
	MinEnrolledFactors = 3

	// MaxCodeTries bounds code submissions within one sequence. The
	// counter is session-local and never persists across sequences.
	MaxCodeTries = 3
)

// Session is a caller-visible snapshot of one authentication sequence. The
// orchestrator hands out copies only; the live state is internal.
type Session struct {
	ID        string
	UserID    string
	State     State
	CodeTries int

	// Token is set once State is StateCompleted.
	Token string

	CreatedAt time.Time
}

type session struct {
	mu sync.Mutex
	Session
}

func (s *session) snapshot() *Session {
	snap := s.Session
	return &snap
}

// Manager owns all in-progress authentication sequences. Sessions live in
// memory only and are dropped as soon as they reach a terminal state.
type Manager struct {
	verification *services.VerificationService
	codes        *services.CodeService
	factors      *services.FactorService
	logger       logging.Logger

	secretKey     []byte
	tokenValidity time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager constructs a Manager issuing tokens signed with secretKey.
func NewManager(verification *services.VerificationService, codes *services.CodeService,
	factors *services.FactorService, secretKey []byte, tokenValidity time.Duration, logger logging.Logger) *Manager {
	return &Manager{
		verification:  verification,
		codes:         codes,
		factors:       factors,
		logger:        logger,
		secretKey:     secretKey,
		tokenValidity: tokenValidity,
		sessions:      make(map[string]*session),
	}
}

// Start begins an authentication sequence for userID. Users with fewer
// than MinEnrolledFactors enrolled modalities get ErrInsufficientEnrollment
// and no session is created.
func (m *Manager) Start(ctx context.Context, userID string) (*Session, error) {
	count, err := m.factors.EnrolledCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count < MinEnrolledFactors {
		return nil, common.ErrInsufficientEnrollment
	}

	s := &session{Session: Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		State:     nextStep[StateIdle],
		CreatedAt: time.Now(),
	}}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info(ctx, "authentication sequence started", "session_id", s.ID, "user_id", userID)
	return s.snapshot(), nil
}

// Get returns a snapshot of an in-progress session.
func (m *Manager) Get(sessionID string) (*Session, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// SubmitSample verifies one biometric sample for the session's current
// step. A match advances the sequence; a non-match rejects it outright and
// the returned snapshot reports StateFailed. Submitting for any modality
// other than the current step yields ErrWrongStep without invoking
// verification.
func (m *Manager) SubmitSample(ctx context.Context, sessionID string, modality models.Modality, sample []byte) (*Session, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expected, ok := stepModality[s.State]
	if !ok || expected != modality {
		return nil, common.ErrWrongStep
	}

	result, err := m.verification.Verify(ctx, s.UserID, modality, sample)
	if err != nil {
		if errors.Is(err, common.ErrCancelled) {
			// Cancelled capture: the step was never attempted, the
			// sequence stays where it was.
			return s.snapshot(), common.ErrCancelled
		}
		return nil, err
	}

	if !result.Matched {
		m.finish(ctx, s, StateFailed)
		return s.snapshot(), nil
	}

	s.State = nextStep[s.State]
	m.logger.Info(ctx, "sequence step passed", "session_id", s.ID, "user_id", s.UserID, "modality", modality, "next", s.State)
	return s.snapshot(), nil
}

// SubmitCode checks a numeric code for the session's code step. Three
// wrong submissions lock the sequence out; a correct code afterwards is
// never accepted because the session is already gone.
func (m *Manager) SubmitCode(ctx context.Context, sessionID string, code []byte) (*Session, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StateStepCode {
		return nil, common.ErrWrongStep
	}

	s.CodeTries++
	ok, err := m.codes.Verify(ctx, s.UserID, code)
	if err != nil {
		return nil, err
	}

	if ok {
		token, err := auth.GenerateToken(s.UserID, m.secretKey, m.tokenValidity)
		if err != nil {
			return nil, err
		}
		s.Token = token
		m.finish(ctx, s, StateCompleted)
		return s.snapshot(), nil
	}

	if s.CodeTries >= MaxCodeTries {
		m.finish(ctx, s, StateLockedOut)
		return s.snapshot(), common.ErrLockedOut
	}
	return s.snapshot(), nil
}

// Cancel aborts an in-progress sequence. No attempt is recorded for the
// pending step.
func (m *Manager) Cancel(ctx context.Context, sessionID string) (*Session, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m.finish(ctx, s, StateCancelled)
	return s.snapshot(), nil
}

func (m *Manager) lookup(sessionID string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	return s, nil
}

// finish moves s to a terminal state and drops it. Callers hold s.mu.
func (m *Manager) finish(ctx context.Context, s *session, terminal State) {
	s.State = terminal

	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()

	m.logger.Info(ctx, "authentication sequence finished",
		"session_id", s.ID, "user_id", s.UserID, "state", terminal)
}
