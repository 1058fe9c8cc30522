// Package httpapi exposes AuthentiX over a JSON REST API: enrollment and
// verification per modality, code credential management, the multi-factor
// authentication sequence, and audit/status reads.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authentix/internal/logging"
	"github.com/dmitrijs2005/authentix/internal/server/orchestrator"
	"github.com/dmitrijs2005/authentix/internal/server/services"
)

// shutdownTimeout bounds how long in-flight requests may drain.
const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address      string
	logger       logging.Logger
	enrollment   *services.EnrollmentService
	verification *services.VerificationService
	codes        *services.CodeService
	factors      *services.FactorService
	sequences    *orchestrator.Manager
	jwtSecret    []byte
}

func NewHTTPServer(address string, logger logging.Logger, es *services.EnrollmentService,
	vs *services.VerificationService, cs *services.CodeService, fs *services.FactorService,
	sequences *orchestrator.Manager, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:      address,
		logger:       logger.With("module", "http_server"),
		enrollment:   es,
		verification: vs,
		codes:        cs,
		factors:      fs,
		sequences:    sequences,
		jwtSecret:    []byte(secretKey),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
