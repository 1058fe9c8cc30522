package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/authentix/internal/dbx"
	"github.com/dmitrijs2005/authentix/internal/logging"
	"github.com/dmitrijs2005/authentix/internal/matching"
	"github.com/dmitrijs2005/authentix/internal/server/models"
	attemptsrepo "github.com/dmitrijs2005/authentix/internal/server/repositories/attempts"
	codesrepo "github.com/dmitrijs2005/authentix/internal/server/repositories/codes"
	factorsrepo "github.com/dmitrijs2005/authentix/internal/server/repositories/factors"
	"github.com/dmitrijs2005/authentix/internal/vecindex"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestMatcher wires a matching.Service over a single flat index with a
// small test profile.
func newTestMatcher(t *testing.T, modality models.Modality, dim int, threshold float64) *matching.Service {
	t.Helper()
	store, err := vecindex.NewFileStore(filepath.Join(t.TempDir(), "index.json"))
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	idx, err := vecindex.NewFlat(context.Background(), dim, store)
	if err != nil {
		t.Fatalf("NewFlat error: %v", err)
	}
	return matching.NewService(
		map[models.Modality]vecindex.Index{modality: idx},
		map[models.Modality]matching.Profile{modality: {Dimension: dim, Threshold: threshold}},
	)
}

// --- fake repositories ---

type fakeAttemptsRepo struct {
	appended  []*models.AuthAttempt
	appendErr error

	listOut []*models.AuthAttempt
	listErr error
}

func (f *fakeAttemptsRepo) Append(ctx context.Context, a *models.AuthAttempt) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, a)
	return nil
}

func (f *fakeAttemptsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuthAttempt, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

type fakeCodesRepo struct {
	upserted  []*models.CodeCredential
	upsertErr error

	getOut *models.CodeCredential
	getErr error
}

func (f *fakeCodesRepo) Upsert(ctx context.Context, c *models.CodeCredential) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, c)
	return nil
}

func (f *fakeCodesRepo) GetByUserID(ctx context.Context, userID string) (*models.CodeCredential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeFactorsRepo struct {
	upserted  []*models.FactorStatus
	upsertErr error

	listOut []*models.FactorStatus
	listErr error
}

func (f *fakeFactorsRepo) Upsert(ctx context.Context, st *models.FactorStatus) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, st)
	return nil
}

func (f *fakeFactorsRepo) ListByUser(ctx context.Context, userID string) ([]*models.FactorStatus, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

type fakeRepoManager struct {
	a *fakeAttemptsRepo
	c *fakeCodesRepo
	f *fakeFactorsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		a: &fakeAttemptsRepo{},
		c: &fakeCodesRepo{},
		f: &fakeFactorsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Attempts(db dbx.DBTX) attemptsrepo.Repository { return m.a }
func (m *fakeRepoManager) Codes(db dbx.DBTX) codesrepo.Repository       { return m.c }
func (m *fakeRepoManager) Factors(db dbx.DBTX) factorsrepo.Repository   { return m.f }
