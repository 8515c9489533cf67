// Package reaper runs the background maintenance schedules: lease recovery
// for orphaned runs and escalation of stale alerts.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/service"
)

// Runner owns the cron schedule driving periodic recovery work.
type Runner struct {
	runner *service.Runner
	quota  *service.QuotaService
	cfg    config.ReaperConfig
	logger *slog.Logger
	cron   *cron.Cron
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Runs   *service.Runner
	Quota  *service.QuotaService
	Config config.ReaperConfig
	Logger *slog.Logger
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Runs == nil {
		return nil, errors.New("run service is required")
	}
	if opts.Quota == nil {
		return nil, errors.New("quota service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	cfg.Sanitize()
	return &Runner{
		runner: opts.Runs,
		quota:  opts.Quota,
		cfg:    cfg,
		logger: logger,
		cron:   cron.New(),
	}, nil
}

// Run registers the schedules, starts the cron loop, and blocks until the
// context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	recoverSpec := fmt.Sprintf("@every %s", r.cfg.RecoverInterval)
	if _, err := r.cron.AddFunc(recoverSpec, func() { r.recoverExpired(ctx) }); err != nil {
		return fmt.Errorf("schedule lease recovery: %w", err)
	}

	escalateSpec := fmt.Sprintf("@every %s", r.cfg.EscalateInterval)
	if _, err := r.cron.AddFunc(escalateSpec, func() { r.escalateStale(ctx) }); err != nil {
		return fmt.Errorf("schedule alert escalation: %w", err)
	}

	r.logger.InfoContext(ctx, "starting reaper runner",
		"recover_interval", r.cfg.RecoverInterval,
		"escalate_interval", r.cfg.EscalateInterval)

	r.cron.Start()
	<-ctx.Done()
	stopped := r.cron.Stop()
	<-stopped.Done()
	return ctx.Err()
}

func (r *Runner) recoverExpired(ctx context.Context) {
	recovered, err := r.runner.RecoverExpired(ctx, r.cfg.LeaseGraceSeconds)
	if err != nil {
		r.logger.ErrorContext(ctx, "lease recovery pass failed", "err", err)
		return
	}
	if recovered > 0 {
		r.logger.InfoContext(ctx, "recovered orphaned runs", "count", recovered)
	}
}

func (r *Runner) escalateStale(ctx context.Context) {
	escalated, err := r.quota.EscalateStale(ctx, r.cfg.AlertEscalationMinutes)
	if err != nil {
		r.logger.ErrorContext(ctx, "alert escalation pass failed", "err", err)
		return
	}
	if escalated > 0 {
		r.logger.InfoContext(ctx, "escalated stale alerts", "count", escalated)
	}
}
