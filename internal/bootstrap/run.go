package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/missionctl/leadrun-engine/config"
)

// RunDeps groups everything RunServices needs to orchestrate the process.
type RunDeps struct {
	Config   *config.AppConfig
	Services *Container
	DB       *sql.DB
	Logger   *slog.Logger
}

// RunServices starts every enabled service and blocks until the context is
// canceled or one of them fails. All services share one lifetime: the first
// failure cancels the rest.
func RunServices(ctx context.Context, deps *RunDeps) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g, ctx := errgroup.WithContext(ctx)

	if deps.Config.IsHTTPServerEnabled() {
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   deps.Config,
			Services: deps.Services,
			DB:       deps.DB,
			Logger:   logger,
		})
		g.Go(func() error {
			return ServeHTTP(ctx, server, logger)
		})
	}

	if deps.Config.IsQueuePumpEnabled() {
		g.Go(func() error {
			logger.Info("starting queue pump")
			return deps.Services.Queue.Run(ctx)
		})
	}

	if deps.Config.IsReaperEnabled() && deps.Services.Reaper != nil {
		g.Go(func() error {
			logger.Info("starting reaper")
			return deps.Services.Reaper.Run(ctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
