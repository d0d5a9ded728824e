package ingest

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrisync/agrisync/pkg/logging"
)

// Server runs the ingest API over HTTP.
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a server for handler on the configured port.
func NewServer(config *FileConfig, handler http.Handler) *Server {
	addr := fmt.Sprintf(":%d", config.Port)
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout.Duration,
			WriteTimeout: config.WriteTimeout.Duration,
			IdleTimeout:  120 * time.Second,
		},
		logger: logging.GetLoggerWithFields("server", map[string]interface{}{"addr": addr}),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Msg("server started")
		if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info().Msg("shutting down server")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info().Msg("server exited gracefully")
	return nil
}
