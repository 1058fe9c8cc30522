// Package server initializes and runs the AuthentiX server: it opens the
// database, runs migrations, builds one embedding index per biometric
// modality on the configured backend, wires the extractors, coordinators
// and the sequence orchestrator, and starts the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/authentix/internal/extract"
	"github.com/dmitrijs2005/authentix/internal/extract/remote"
	"github.com/dmitrijs2005/authentix/internal/logging"
	"github.com/dmitrijs2005/authentix/internal/matching"
	"github.com/dmitrijs2005/authentix/internal/observe"
	"github.com/dmitrijs2005/authentix/internal/server/config"
	"github.com/dmitrijs2005/authentix/internal/server/httpapi"
	"github.com/dmitrijs2005/authentix/internal/server/models"
	"github.com/dmitrijs2005/authentix/internal/server/orchestrator"
	"github.com/dmitrijs2005/authentix/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authentix/internal/server/services"
	"github.com/dmitrijs2005/authentix/internal/vecindex"
)

type App struct {
	config *config.Config
	logger logging.Logger

	db       *sql.DB
	pool     *pgxpool.Pool
	shutdown func(context.Context) error

	httpServer *httpapi.HTTPServer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app := &App{config: cfg, logger: logger, db: db}

	indexes, err := app.initIndexes(ctx)
	if err != nil {
		return nil, err
	}
	matcher := matching.NewService(indexes, matching.Profiles)

	provider, shutdown, err := observe.InitProvider(ctx, "authentix")
	if err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}
	app.shutdown = shutdown

	metrics, err := observe.NewMetrics(provider)
	if err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	extractors := map[models.Modality]extract.Extractor{
		models.ModalityFace:    remote.New(cfg.ExtractorFaceURL, matching.Profiles[models.ModalityFace].Dimension, remote.WithTimeout(cfg.ExtractorTimeout)),
		models.ModalityVoice:   remote.New(cfg.ExtractorVoiceURL, matching.Profiles[models.ModalityVoice].Dimension, remote.WithTimeout(cfg.ExtractorTimeout)),
		models.ModalityGesture: remote.New(cfg.ExtractorGestureURL, matching.Profiles[models.ModalityGesture].Dimension, remote.WithTimeout(cfg.ExtractorTimeout)),
	}

	es := services.NewEnrollmentService(db, rm, matcher, extractors, metrics, logger)
	vs := services.NewVerificationService(db, rm, matcher, extractors, metrics, logger)
	cs := services.NewCodeService(db, rm, metrics, logger)
	fs := services.NewFactorService(db, rm)

	sequences := orchestrator.NewManager(vs, cs, fs, []byte(cfg.SecretKey), cfg.TokenValidityDuration, logger)

	app.httpServer = httpapi.NewHTTPServer(cfg.EndpointAddrHTTP, logger, es, vs, cs, fs, sequences, cfg.SecretKey)

	return app, nil
}

// initIndexes builds one index per biometric modality on the configured
// backend. File and S3 snapshots load concurrently; pgvector needs no load,
// only its schema.
func (app *App) initIndexes(ctx context.Context) (map[models.Modality]vecindex.Index, error) {

	if app.config.IndexBackend == config.IndexBackendPgvector {
		pool, err := pgxpool.New(ctx, app.config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("pgvector pool error: %w", err)
		}
		app.pool = pool

		tables := map[string]int{}
		for m, p := range matching.Profiles {
			tables[string(m)+"_templates"] = p.Dimension
		}
		if err := vecindex.MigratePgvector(ctx, pool, tables); err != nil {
			return nil, fmt.Errorf("pgvector migration error: %w", err)
		}

		indexes := map[models.Modality]vecindex.Index{}
		for m, p := range matching.Profiles {
			indexes[m] = vecindex.NewPgvector(pool, string(m)+"_templates", p.Dimension)
		}
		return indexes, nil
	}

	var mu sync.Mutex
	indexes := map[models.Modality]vecindex.Index{}

	g, gctx := errgroup.WithContext(ctx)
	for m, p := range matching.Profiles {
		g.Go(func() error {
			store, err := app.newSnapshotStore(gctx, m)
			if err != nil {
				return err
			}
			idx, err := vecindex.NewFlat(gctx, p.Dimension, store)
			if err != nil {
				return fmt.Errorf("index load error for %s: %w", m, err)
			}
			mu.Lock()
			indexes[m] = idx
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return indexes, nil
}

func (app *App) newSnapshotStore(ctx context.Context, m models.Modality) (vecindex.SnapshotStore, error) {
	switch app.config.IndexBackend {
	case config.IndexBackendFile:
		return vecindex.NewFileStore(filepath.Join(app.config.DataDir, string(m)+".json"))
	case config.IndexBackendS3:
		return vecindex.NewS3Store(ctx, vecindex.S3Config{
			RootUser:     app.config.S3RootUser,
			RootPassword: app.config.S3RootPassword,
			Bucket:       app.config.S3Bucket,
			Region:       app.config.S3Region,
			BaseEndpoint: app.config.S3BaseEndpoint,
		}, "templates/"+string(m)+".json")
	}
	return nil, fmt.Errorf("unknown index backend %q", app.config.IndexBackend)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if app.shutdown != nil {
		if err := app.shutdown(context.Background()); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}
	if app.pool != nil {
		app.pool.Close()
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
