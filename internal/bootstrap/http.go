package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/missionctl/leadrun-engine/config"
	httpx "github.com/missionctl/leadrun-engine/internal/http"
)

// HTTPServerConfig contains dependencies for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *Container
	DB       *sql.DB
	Logger   *slog.Logger
}

// NewHTTPServer builds the configured API server. It does not start listening.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Runs:        cfg.Services.Runs,
		Worker:      cfg.Services.Worker,
		Followups:   cfg.Services.Followups,
		Quota:       cfg.Services.Quota,
		Dnc:         cfg.Services.Dnc,
		Idempotency: cfg.Services.Idempotency,
		DB:          cfg.DB,
		Queue:       cfg.Services.Queue,
		Auth:        cfg.Config.Auth,
		Logger:      logger,
	})

	addr := cfg.Config.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// ServeHTTP runs the server until the context is canceled, then drains it.
func ServeHTTP(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return ctx.Err()
}
