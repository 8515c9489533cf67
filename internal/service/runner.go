package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	apperr "github.com/missionctl/leadrun-engine/internal/errors"
)

// RunnerConfig holds run lifecycle tunables.
type RunnerConfig struct {
	// MinScore drops sourced leads scoring below it before the run starts.
	MinScore float64
	// MaxLeadsPerRun caps the snapshot captured at run start.
	MaxLeadsPerRun int
}

// RunnerOptions groups dependencies for Runner.
type RunnerOptions struct {
	Runs       core.RunRepository
	Leads      core.LeadRepository
	Quota      core.QuotaRepository
	Dispatcher *Dispatcher
	Config     RunnerConfig
	Logger     *slog.Logger
	Time       core.TimeProvider
}

// Runner owns the run lifecycle: starting runs under quota, pausing,
// resuming, and serving status projections.
type Runner struct {
	runs       core.RunRepository
	leads      core.LeadRepository
	quota      core.QuotaRepository
	dispatcher *Dispatcher
	cfg        RunnerConfig
	logger     *slog.Logger
	time       core.TimeProvider
}

// NewRunner constructs a new Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Runs == nil {
		return nil, errors.New("RunRepository is required")
	}
	if opts.Leads == nil {
		return nil, errors.New("LeadRepository is required")
	}
	if opts.Quota == nil {
		return nil, errors.New("QuotaRepository is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("Dispatcher is required")
	}
	cfg := opts.Config
	if cfg.MaxLeadsPerRun <= 0 {
		cfg.MaxLeadsPerRun = 200
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = systemTime{}
	}
	return &Runner{
		runs:       opts.Runs,
		leads:      opts.Leads,
		quota:      opts.Quota,
		dispatcher: opts.Dispatcher,
		cfg:        cfg,
		logger:     logger,
		time:       tp,
	}, nil
}

// StartParams carries everything needed to start a run.
type StartParams struct {
	OrgID   string
	Request model.StartRunRequest
	Leads   []model.Lead
}

// StartResult reports how the run was admitted.
type StartResult struct {
	Job         *model.LeadRunJob `json:"job"`
	WorkerToken string            `json:"-"`
	Route       Route             `json:"route"`
	// Reused is true when an active job already existed for this run and no
	// new quota was claimed.
	Reused bool `json:"reused"`
}

// Start admits a run: it scores and filters the sourced leads, claims org
// quota, persists the job document with a fresh worker token, and dispatches
// the first tick. Quota is released again if persistence fails.
func (r *Runner) Start(ctx context.Context, params StartParams) (*StartResult, error) {
	if err := params.Request.Validate(); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrCodeValidation, "invalid start request")
	}
	orgID := model.SanitizeOrgID(params.OrgID)

	// A retried start while the job is still queued, running, or paused
	// reuses the existing run instead of claiming quota twice.
	existing, err := r.runs.GetByID(ctx, params.Request.RunID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("check existing run %s: %w", params.Request.RunID, err)
	}
	if existing != nil && existing.Active() {
		if existing.UserID != params.Request.UserID {
			return nil, apperr.NotFoundf("run %s not found", params.Request.RunID)
		}
		result := &StartResult{Job: existing, WorkerToken: existing.WorkerToken, Reused: true}
		// A run still queued on reuse may have lost its first tick; nudge it.
		// The deterministic task id collapses this into a no-op when the
		// original dispatch is still pending.
		if existing.Status == model.RunStatusQueued {
			route, err := r.dispatcher.Dispatch(ctx, DispatchRequest{
				RunID:       existing.RunID,
				WorkerToken: existing.WorkerToken,
			})
			if err != nil {
				r.logger.ErrorContext(ctx, "re-dispatch reused run",
					"run_id", existing.RunID, "err", err)
			} else {
				result.Route = route
			}
		}
		return result, nil
	}

	kept, diag := r.filterLeads(params.Leads)
	if len(kept) == 0 {
		return nil, apperr.Validation("no usable leads to process")
	}

	settings, err := r.quota.GetSettings(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load quota settings: %w", err)
	}

	windowKey := model.UTCDayKey(r.time.Now())
	if _, err := r.quota.ClaimRun(ctx, core.ClaimRunParams{
		OrgID:     orgID,
		RunID:     params.Request.RunID,
		WindowKey: windowKey,
		Leads:     len(kept),
		Settings:  *settings,
	}); err != nil {
		return nil, err
	}

	docIDs := make([]string, len(kept))
	for i, lead := range kept {
		docIDs[i] = lead.DocID
	}

	job := &model.LeadRunJob{
		RunID:          params.Request.RunID,
		OrgID:          orgID,
		UserID:         params.Request.UserID,
		Status:         model.RunStatusQueued,
		Config:         params.Request.Config,
		WorkerToken:    uuid.NewString(),
		LeadDocIDs:     docIDs,
		TotalLeads:     len(docIDs),
		Diagnostics:    diag,
		AttemptsByLead: map[string]int{},
		CorrelationID:  params.Request.CorrelationID,
	}

	created, err := r.runs.Create(ctx, job)
	if err != nil {
		r.releaseQuota(ctx, orgID, job.RunID)
		return nil, fmt.Errorf("create run %s: %w", job.RunID, err)
	}
	if err := r.leads.PutAll(ctx, job.RunID, kept); err != nil {
		r.releaseQuota(ctx, orgID, job.RunID)
		return nil, fmt.Errorf("snapshot leads for run %s: %w", job.RunID, err)
	}

	// A failed first dispatch leaves the run queued with its quota claimed;
	// the reaper re-dispatches stale queued runs, so the start still succeeds.
	route, err := r.dispatcher.Dispatch(ctx, DispatchRequest{
		RunID:       created.RunID,
		WorkerToken: created.WorkerToken,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "dispatch first tick",
			"run_id", created.RunID, "err", err)
		route = RouteSkipped
	}

	r.logger.InfoContext(ctx, "run started",
		"run_id", created.RunID,
		"org_id", orgID,
		"leads", created.TotalLeads,
		"route", string(route),
		"correlation_id", created.CorrelationID)

	return &StartResult{Job: created, WorkerToken: created.WorkerToken, Route: route}, nil
}

// filterLeads drops leads without contact points or below the score cutoff,
// orders survivors by descending score, and caps the snapshot so the cap
// always keeps the best-scoring leads. Ties keep their source order.
func (r *Runner) filterLeads(leads []model.Lead) ([]model.Lead, model.Diagnostics) {
	diag := model.Diagnostics{SourceFetched: len(leads)}

	kept := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.DocID == "" {
			continue
		}
		diag.SourceScored++
		if r.cfg.MinScore > 0 && lead.Score < r.cfg.MinScore {
			diag.SourceFilteredByScore++
			continue
		}
		if lead.Email != "" {
			diag.SourceWithEmail++
		} else {
			diag.SourceWithoutEmail++
		}
		kept = append(kept, lead)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	if len(kept) > r.cfg.MaxLeadsPerRun {
		kept = kept[:r.cfg.MaxLeadsPerRun]
	}
	return kept, diag
}

func (r *Runner) releaseQuota(ctx context.Context, orgID, runID string) {
	if err := r.quota.ReleaseRun(ctx, orgID, runID); err != nil {
		r.logger.ErrorContext(ctx, "release quota after failed start",
			"org_id", orgID, "run_id", runID, "err", err)
	}
}

// Pause halts processing after the in-flight tick finishes. Pausing a
// terminal or already-paused run is a no-op.
func (r *Runner) Pause(ctx context.Context, runID, userID string) (*model.LeadRunJob, error) {
	job, err := r.ownedRun(ctx, runID, userID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() || job.Status == model.RunStatusPaused {
		return job, nil
	}
	updated, err := r.runs.UpdateStatus(ctx, runID, model.RunStatusPaused)
	if err != nil {
		return nil, fmt.Errorf("pause run %s: %w", runID, err)
	}
	r.logger.InfoContext(ctx, "run paused", "run_id", runID)
	return updated, nil
}

// Resume returns a paused run to running and dispatches a tick to continue
// the cursor. Resuming a non-paused run is rejected.
func (r *Runner) Resume(ctx context.Context, runID, userID string) (*model.LeadRunJob, error) {
	job, err := r.ownedRun(ctx, runID, userID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.RunStatusPaused {
		return nil, apperr.Conflictf("run %s is %s, not paused", runID, job.Status)
	}

	updated, err := r.runs.UpdateStatus(ctx, runID, model.RunStatusQueued)
	if err != nil {
		return nil, fmt.Errorf("resume run %s: %w", runID, err)
	}
	if _, err := r.dispatcher.Dispatch(ctx, DispatchRequest{
		RunID:       runID,
		WorkerToken: job.WorkerToken,
	}); err != nil {
		return nil, fmt.Errorf("dispatch resume tick: %w", err)
	}
	r.logger.InfoContext(ctx, "run resumed", "run_id", runID)
	return updated, nil
}

// Status returns the polling projection for an owned run.
func (r *Runner) Status(ctx context.Context, runID, userID string) (*model.JobProjection, error) {
	job, err := r.ownedRun(ctx, runID, userID)
	if err != nil {
		return nil, err
	}
	return job.Projection(r.time.Now()), nil
}

// List returns projections of the org's recent runs.
func (r *Runner) List(ctx context.Context, orgID string, limit int) ([]*model.JobProjection, error) {
	jobs, err := r.runs.ListByOrg(ctx, model.SanitizeOrgID(orgID), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	now := r.time.Now()
	out := make([]*model.JobProjection, len(jobs))
	for i, job := range jobs {
		out[i] = job.Projection(now)
	}
	return out, nil
}

// ownedRun loads a run and enforces that userID owns it. A missing run and a
// foreign run are indistinguishable to the caller.
func (r *Runner) ownedRun(ctx context.Context, runID, userID string) (*model.LeadRunJob, error) {
	job, err := r.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if userID == "" || job.UserID != userID {
		return nil, apperr.NotFoundf("run %s not found", runID)
	}
	return job, nil
}

// RecoverExpired re-dispatches stalled runs: lapsed tick leases after a
// worker crash, and queued runs whose dispatch was never delivered. Returns
// the number of runs re-triggered.
func (r *Runner) RecoverExpired(ctx context.Context, graceSeconds int) (int, error) {
	cutoff := r.time.Now().Add(-time.Duration(graceSeconds) * time.Second)
	stale, err := r.runs.FindExpiredLeases(ctx, cutoff, 100)
	if err != nil {
		return 0, fmt.Errorf("find expired leases: %w", err)
	}

	recovered := 0
	for _, job := range stale {
		// Reset the lease so the next tick can claim.
		if _, err := r.runs.UpdateStatus(ctx, job.RunID, model.RunStatusQueued); err != nil {
			r.logger.ErrorContext(ctx, "reset stale run", "run_id", job.RunID, "err", err)
			continue
		}
		if _, err := r.dispatcher.Dispatch(ctx, DispatchRequest{
			RunID:       job.RunID,
			WorkerToken: job.WorkerToken,
		}); err != nil {
			r.logger.ErrorContext(ctx, "re-dispatch stale run", "run_id", job.RunID, "err", err)
			continue
		}
		recovered++
	}
	if recovered > 0 {
		r.logger.InfoContext(ctx, "recovered stale runs", "count", recovered)
	}
	return recovered, nil
}
