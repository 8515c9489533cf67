package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/data/pgxutil"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	errs "github.com/missionctl/leadrun-engine/internal/errors"
)

var (
	// ErrRunNotFound is returned when a lead run does not exist.
	ErrRunNotFound error = errs.NotFound("lead run not found")
	// ErrWorkerTokenMismatch is returned when a tick carries the wrong capability token.
	ErrWorkerTokenMismatch error = errs.Conflict("worker token mismatch")
	// ErrLeaseHeld is returned when another worker holds an unexpired tick lease.
	ErrLeaseHeld error = errs.Conflict("tick lease is held by another worker")
	// ErrRunNotTickable is returned when the run status does not admit worker ticks.
	ErrRunNotTickable error = errs.Conflict("run is not in a tickable status")
)

// RunRepoConfig holds configuration options for the run repository.
type RunRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// RunRepo provides database operations for lead-run job management.
type RunRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewRunRepo creates a new RunRepo instance with the given database connection and configuration.
func NewRunRepo(db *sql.DB, cfg RunRepoConfig) *RunRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &RunRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const leadRunColumns = `
  run_id,
  org_id,
  user_id,
  status,
  config,
  worker_token,
  followup_worker_token,
  lead_doc_ids,
  next_index,
  total_leads,
  diagnostics,
  attempts_by_lead,
  last_error,
  lease_expires_at,
  correlation_id,
  created_at,
  updated_at
`

// leadRunRow mirrors the lead_run_jobs row with JSONB columns kept raw.
type leadRunRow struct {
	RunID               string
	OrgID               string
	UserID              string
	Status              string
	Config              []byte
	WorkerToken         string
	FollowupWorkerToken string
	LeadDocIDs          []byte
	NextIndex           int
	TotalLeads          int
	Diagnostics         []byte
	AttemptsByLead      []byte
	LastError           *string
	LeaseExpiresAt      *time.Time
	CorrelationID       string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeadRunJob(row rowScanner) (*model.LeadRunJob, error) {
	var r leadRunRow
	if err := row.Scan(
		&r.RunID, &r.OrgID, &r.UserID, &r.Status, &r.Config, &r.WorkerToken,
		&r.FollowupWorkerToken, &r.LeadDocIDs, &r.NextIndex, &r.TotalLeads,
		&r.Diagnostics, &r.AttemptsByLead, &r.LastError, &r.LeaseExpiresAt,
		&r.CorrelationID, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return r.toModel()
}

func (r leadRunRow) toModel() (*model.LeadRunJob, error) {
	job := &model.LeadRunJob{
		RunID:               r.RunID,
		OrgID:               r.OrgID,
		UserID:              r.UserID,
		Status:              model.RunStatus(r.Status),
		WorkerToken:         r.WorkerToken,
		FollowupWorkerToken: r.FollowupWorkerToken,
		NextIndex:           r.NextIndex,
		TotalLeads:          r.TotalLeads,
		LastError:           r.LastError,
		LeaseExpiresAt:      r.LeaseExpiresAt,
		CorrelationID:       r.CorrelationID,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
		AttemptsByLead:      map[string]int{},
	}
	if len(r.Config) > 0 {
		if err := json.Unmarshal(r.Config, &job.Config); err != nil {
			return nil, fmt.Errorf("unmarshal run config: %w", err)
		}
	}
	if len(r.LeadDocIDs) > 0 {
		if err := json.Unmarshal(r.LeadDocIDs, &job.LeadDocIDs); err != nil {
			return nil, fmt.Errorf("unmarshal lead doc ids: %w", err)
		}
	}
	if len(r.Diagnostics) > 0 {
		if err := json.Unmarshal(r.Diagnostics, &job.Diagnostics); err != nil {
			return nil, fmt.Errorf("unmarshal diagnostics: %w", err)
		}
	}
	if len(r.AttemptsByLead) > 0 {
		if err := json.Unmarshal(r.AttemptsByLead, &job.AttemptsByLead); err != nil {
			return nil, fmt.Errorf("unmarshal attempts by lead: %w", err)
		}
	}
	return job, nil
}

// Create inserts the lead-run job row. The run id is caller-supplied, so a
// duplicate insert surfaces as a conflict error.
func (r *RunRepo) Create(ctx context.Context, job *model.LeadRunJob) (*model.LeadRunJob, error) {
	if job == nil {
		return nil, errors.New("lead run job is required")
	}
	if strings.TrimSpace(job.RunID) == "" {
		return nil, ErrRunIDRequired
	}

	config, err := json.Marshal(job.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal run config: %w", err)
	}
	docIDs, err := json.Marshal(job.LeadDocIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal lead doc ids: %w", err)
	}
	diagnostics, err := json.Marshal(job.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("marshal diagnostics: %w", err)
	}
	attempts := job.AttemptsByLead
	if attempts == nil {
		attempts = map[string]int{}
	}
	attemptsJSON, err := json.Marshal(attempts)
	if err != nil {
		return nil, fmt.Errorf("marshal attempts by lead: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO lead_run_jobs (
			run_id, org_id, user_id, status, config, worker_token,
			lead_doc_ids, next_index, total_leads, diagnostics,
			attempts_by_lead, correlation_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING `+leadRunColumns,
		job.RunID, job.OrgID, job.UserID, string(job.Status), config,
		job.WorkerToken, docIDs, job.NextIndex, job.TotalLeads, diagnostics,
		attemptsJSON, job.CorrelationID, now,
	)

	created, err := scanLeadRunJob(row)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return created, nil
}

// GetByID retrieves a lead run by its run id.
func (r *RunRepo) GetByID(ctx context.Context, runID string) (*model.LeadRunJob, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+leadRunColumns+`
		FROM lead_run_jobs
		WHERE run_id = $1`, runID)

	job, err := scanLeadRunJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, errs.MapDBError(err)
	}
	return job, nil
}

// GetByWorkerToken retrieves a run only when the capability token matches.
// A token mismatch is indistinguishable from a missing run to the caller.
func (r *RunRepo) GetByWorkerToken(ctx context.Context, runID, token string) (*model.LeadRunJob, error) {
	job, err := r.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if token == "" || job.WorkerToken != token {
		return nil, ErrWorkerTokenMismatch
	}
	return job, nil
}

// EnsureFollowupToken returns the run's follow-up worker token, minting one
// on first use. COALESCE over the stored value keeps concurrent callers on
// the same token.
func (r *RunRepo) EnsureFollowupToken(ctx context.Context, runID string) (string, error) {
	now := r.timeProvider.Now().UTC()

	var token string
	err := r.DB.QueryRowContext(ctx, `
		UPDATE lead_run_jobs
		SET followup_worker_token = COALESCE(NULLIF(followup_worker_token, ''), $2),
		    updated_at = $3
		WHERE run_id = $1
		RETURNING followup_worker_token`,
		runID, uuid.NewString(), now).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrRunNotFound
		}
		return "", errs.MapDBError(err)
	}
	return token, nil
}

// ClaimTick atomically validates the worker token, rejects a held lease, and
// stamps a fresh lease expiry. Row-level locking keeps concurrent tick
// deliveries from double-claiming the run.
func (r *RunRepo) ClaimTick(ctx context.Context, params core.ClaimTickParams) (*model.LeadRunJob, error) {
	now := r.timeProvider.Now().UTC()
	leaseUntil := now.Add(time.Duration(params.LeaseSeconds) * time.Second)

	var claimed *model.LeadRunJob
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			row := tx.QueryRow(ctx, `
				SELECT `+leadRunColumns+`
				FROM lead_run_jobs
				WHERE run_id = $1
				FOR UPDATE`, params.RunID)

			job, err := scanLeadRunJob(row)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrRunNotFound
				}
				return err
			}

			if params.WorkerToken == "" || job.WorkerToken != params.WorkerToken {
				return ErrWorkerTokenMismatch
			}
			if job.Status != model.RunStatusQueued && job.Status != model.RunStatusRunning {
				return ErrRunNotTickable
			}
			if job.LeaseExpiresAt != nil && job.LeaseExpiresAt.After(now) {
				return ErrLeaseHeld
			}

			if _, err := tx.Exec(ctx, `
				UPDATE lead_run_jobs
				SET status = $2, lease_expires_at = $3, updated_at = $4
				WHERE run_id = $1`,
				params.RunID, string(model.RunStatusRunning), leaseUntil, now,
			); err != nil {
				return fmt.Errorf("stamp tick lease: %w", err)
			}

			job.Status = model.RunStatusRunning
			job.LeaseExpiresAt = &leaseUntil
			job.UpdatedAt = now
			claimed = job
			return nil
		},
	})
	if txErr != nil {
		return nil, txErr
	}
	return claimed, nil
}

// FinalizeTick merges diagnostics and attempt counts, advances the cursor,
// transitions status, and clears the lease in one transaction. The merge
// happens against the freshly locked row so concurrent pause requests are
// never lost.
func (r *RunRepo) FinalizeTick(ctx context.Context, params core.FinalizeTickParams) (*model.LeadRunJob, error) {
	now := r.timeProvider.Now().UTC()

	var finalized *model.LeadRunJob
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			row := tx.QueryRow(ctx, `
				SELECT `+leadRunColumns+`
				FROM lead_run_jobs
				WHERE run_id = $1
				FOR UPDATE`, params.RunID)

			job, err := scanLeadRunJob(row)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrRunNotFound
				}
				return err
			}
			if params.WorkerToken == "" || job.WorkerToken != params.WorkerToken {
				return ErrWorkerTokenMismatch
			}

			merged := job.Diagnostics.Merge(params.Diagnostics)
			attempts := job.AttemptsByLead
			if attempts == nil {
				attempts = map[string]int{}
			}
			for leadID, n := range params.AttemptDelta {
				attempts[leadID] += n
			}

			status := params.Status
			// A pause issued mid-tick wins over the worker's running verdict.
			if job.Status == model.RunStatusPaused && status == model.RunStatusRunning {
				status = model.RunStatusPaused
			}

			diagnostics, err := json.Marshal(merged)
			if err != nil {
				return fmt.Errorf("marshal diagnostics: %w", err)
			}
			attemptsJSON, err := json.Marshal(attempts)
			if err != nil {
				return fmt.Errorf("marshal attempts by lead: %w", err)
			}

			if _, err := tx.Exec(ctx, `
				UPDATE lead_run_jobs
				SET status = $2,
				    next_index = $3,
				    diagnostics = $4,
				    attempts_by_lead = $5,
				    last_error = $6,
				    lease_expires_at = NULL,
				    updated_at = $7
				WHERE run_id = $1`,
				params.RunID, string(status), params.NextIndex, diagnostics,
				attemptsJSON, params.LastError, now,
			); err != nil {
				return fmt.Errorf("finalize tick: %w", err)
			}

			job.Status = status
			job.NextIndex = params.NextIndex
			job.Diagnostics = merged
			job.AttemptsByLead = attempts
			job.LastError = params.LastError
			job.LeaseExpiresAt = nil
			job.UpdatedAt = now
			finalized = job
			return nil
		},
	})
	if txErr != nil {
		return nil, txErr
	}
	return finalized, nil
}

// Heartbeat extends the tick lease for a running run. Returns false when the
// run is missing or not running.
func (r *RunRepo) Heartbeat(ctx context.Context, runID string, leaseSeconds int) (bool, error) {
	now := r.timeProvider.Now().UTC()
	leaseUntil := now.Add(time.Duration(leaseSeconds) * time.Second)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE lead_run_jobs
		SET lease_expires_at = $2, updated_at = $3
		WHERE run_id = $1 AND status = 'running'`,
		runID, leaseUntil, now)
	if err != nil {
		return false, errs.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("heartbeat rows affected: %w", err)
	}
	return n > 0, nil
}

// UpdateStatus transitions the run to the given status, clearing the lease on
// terminal transitions.
func (r *RunRepo) UpdateStatus(ctx context.Context, runID string, status model.RunStatus) (*model.LeadRunJob, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid run status %q", status)
	}
	now := r.timeProvider.Now().UTC()

	row := r.DB.QueryRowContext(ctx, `
		UPDATE lead_run_jobs
		SET status = $2,
		    lease_expires_at = CASE WHEN $2 IN ('completed', 'failed') THEN NULL ELSE lease_expires_at END,
		    updated_at = $3
		WHERE run_id = $1
		RETURNING `+leadRunColumns,
		runID, string(status), now)

	job, err := scanLeadRunJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, errs.MapDBError(err)
	}
	return job, nil
}

// ListByOrg returns an org's runs ordered newest first.
func (r *RunRepo) ListByOrg(ctx context.Context, orgID string, limit int) ([]*model.LeadRunJob, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+leadRunColumns+`
		FROM lead_run_jobs
		WHERE org_id = $1
		ORDER BY created_at DESC, run_id DESC
		LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	return collectLeadRuns(rows)
}

// CountActiveByOrg counts runs still occupying a concurrency slot.
func (r *RunRepo) CountActiveByOrg(ctx context.Context, orgID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM lead_run_jobs
		WHERE org_id = $1 AND status IN ('queued', 'running', 'paused')`, orgID).Scan(&n)
	if err != nil {
		return 0, errs.MapDBError(err)
	}
	return n, nil
}

// FindExpiredLeases returns jobs that stalled before cutoff: running jobs
// whose lease lapsed, and queued jobs that never received their tick. The
// latter catches runs whose dispatch was enqueued but never delivered.
func (r *RunRepo) FindExpiredLeases(ctx context.Context, cutoff time.Time, limit int) ([]*model.LeadRunJob, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+leadRunColumns+`
		FROM lead_run_jobs
		WHERE (status = 'running'
		       AND lease_expires_at IS NOT NULL
		       AND lease_expires_at < $1)
		   OR (status = 'queued' AND updated_at < $1)
		ORDER BY COALESCE(lease_expires_at, updated_at) ASC
		LIMIT $2`, cutoff.UTC(), limit)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	return collectLeadRuns(rows)
}

func collectLeadRuns(rows *sql.Rows) ([]*model.LeadRunJob, error) {
	var out []*model.LeadRunJob
	for rows.Next() {
		job, err := scanLeadRunJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead run: %w", err)
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.MapDBError(err)
	}
	return out, nil
}
