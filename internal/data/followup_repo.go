package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/data/pgxutil"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	errs "github.com/missionctl/leadrun-engine/internal/errors"
)

// ErrFollowupNotFound is returned when a follow-up task does not exist.
var ErrFollowupNotFound = errors.New("follow-up task not found")

// FollowupRepo provides database operations for follow-up tasks and the
// per-org follow-up settings.
type FollowupRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// FollowupRepoConfig holds configuration options for the follow-up repository.
type FollowupRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewFollowupRepo creates a new FollowupRepo instance.
func NewFollowupRepo(db *sql.DB, cfg FollowupRepoConfig) *FollowupRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &FollowupRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

const followupColumns = `
  task_id,
  run_id,
  lead_doc_id,
  user_id,
  sequence,
  status,
  due_at_ms,
  attempts,
  lease_until_ms,
  last_error,
  lead,
  created_at,
  updated_at,
  completed_at
`

func scanFollowupTask(row rowScanner) (*model.FollowupTask, error) {
	var t model.FollowupTask
	var lead []byte
	if err := row.Scan(
		&t.TaskID, &t.RunID, &t.LeadDocID, &t.UserID, &t.Sequence, &t.Status,
		&t.DueAtMs, &t.Attempts, &t.LeaseUntilMs, &t.LastError, &lead,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	); err != nil {
		return nil, err
	}
	if len(lead) > 0 {
		if err := json.Unmarshal(lead, &t.Lead); err != nil {
			return nil, fmt.Errorf("unmarshal follow-up lead: %w", err)
		}
	}
	return &t, nil
}

// CreateIfAbsent inserts the task only when its deterministic id is new.
// Returns false when a task with the same id already exists.
func (r *FollowupRepo) CreateIfAbsent(ctx context.Context, task *model.FollowupTask) (bool, error) {
	if task == nil {
		return false, errors.New("follow-up task is required")
	}
	if task.TaskID == "" || task.RunID == "" || task.LeadDocID == "" {
		return false, errors.New("task id, run id, and lead doc id are required")
	}

	leadJSON, err := json.Marshal(task.Lead)
	if err != nil {
		return false, fmt.Errorf("marshal follow-up lead: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO followup_tasks (
			task_id, run_id, lead_doc_id, user_id, sequence, status,
			due_at_ms, attempts, lease_until_ms, lead, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, 'pending', $6, 0, 0, $7, $8, $8)
		ON CONFLICT (task_id) DO NOTHING`,
		task.TaskID, task.RunID, task.LeadDocID, task.UserID, task.Sequence,
		task.DueAtMs, leadJSON, now,
	)
	if err != nil {
		return false, errs.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create follow-up rows affected: %w", err)
	}
	return n > 0, nil
}

// Claim leases due pending tasks for processing. Rows are locked with SKIP
// LOCKED so concurrent drains never double-process a task.
func (r *FollowupRepo) Claim(ctx context.Context, params core.ClaimFollowupParams) ([]*model.FollowupTask, error) {
	if params.MaxTasks <= 0 {
		params.MaxTasks = 10
	}
	leaseUntil := params.NowMs + int64(params.LeaseSeconds)*1000

	var claimed []*model.FollowupTask
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			rows, err := tx.Query(ctx, `
				WITH cte AS (
					SELECT task_id FROM followup_tasks
					WHERE run_id = $1
					  AND status = 'pending'
					  AND due_at_ms <= $2
					  AND lease_until_ms < $2
					ORDER BY due_at_ms ASC, task_id ASC
					LIMIT $3
					FOR UPDATE SKIP LOCKED
				)
				UPDATE followup_tasks t
				SET status = 'processing',
				    attempts = t.attempts + 1,
				    lease_until_ms = $4,
				    updated_at = now()
				FROM cte
				WHERE t.task_id = cte.task_id
				RETURNING `+prefixedFollowupColumns("t"),
				params.RunID, params.NowMs, params.MaxTasks, leaseUntil)
			if err != nil {
				return fmt.Errorf("claim follow-up tasks: %w", err)
			}
			defer rows.Close()

			for rows.Next() {
				t, scanErr := scanFollowupTask(rows)
				if scanErr != nil {
					return fmt.Errorf("scan follow-up task: %w", scanErr)
				}
				claimed = append(claimed, t)
			}
			return rows.Err()
		},
	})
	if txErr != nil {
		return nil, txErr
	}
	return claimed, nil
}

func prefixedFollowupColumns(alias string) string {
	return alias + `.task_id, ` + alias + `.run_id, ` + alias + `.lead_doc_id, ` +
		alias + `.user_id, ` + alias + `.sequence, ` + alias + `.status, ` +
		alias + `.due_at_ms, ` + alias + `.attempts, ` + alias + `.lease_until_ms, ` +
		alias + `.last_error, ` + alias + `.lead, ` + alias + `.created_at, ` +
		alias + `.updated_at, ` + alias + `.completed_at`
}

// Finish transitions a claimed task to a terminal status and releases its lease.
func (r *FollowupRepo) Finish(ctx context.Context, taskID string, status model.FollowupStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid follow-up status %q", status)
	}
	return r.finish(ctx, taskID, string(status), nil)
}

// Fail records the error and transitions the task to failed.
func (r *FollowupRepo) Fail(ctx context.Context, taskID string, lastError string) error {
	return r.finish(ctx, taskID, string(model.FollowupStatusFailed), &lastError)
}

func (r *FollowupRepo) finish(ctx context.Context, taskID, status string, lastError *string) error {
	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE followup_tasks
		SET status = $2,
		    last_error = COALESCE($3, last_error),
		    lease_until_ms = 0,
		    completed_at = CASE WHEN $2 = 'completed' THEN $4 ELSE completed_at END,
		    updated_at = $4
		WHERE task_id = $1`,
		taskID, status, lastError, now)
	if err != nil {
		return errs.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish follow-up rows affected: %w", err)
	}
	if n == 0 {
		return ErrFollowupNotFound
	}
	return nil
}

// Retry returns a claimed task to pending with a new due time.
func (r *FollowupRepo) Retry(ctx context.Context, taskID string, nextDueMs int64) error {
	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE followup_tasks
		SET status = 'pending',
		    due_at_ms = $2,
		    lease_until_ms = 0,
		    updated_at = $3
		WHERE task_id = $1`,
		taskID, nextDueMs, now)
	if err != nil {
		return errs.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("retry follow-up rows affected: %w", err)
	}
	if n == 0 {
		return ErrFollowupNotFound
	}
	return nil
}

// ListByRun returns the run's tasks ordered by due time.
func (r *FollowupRepo) ListByRun(ctx context.Context, runID string) ([]*model.FollowupTask, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+followupColumns+`
		FROM followup_tasks
		WHERE run_id = $1
		ORDER BY due_at_ms ASC, task_id ASC`, runID)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	var out []*model.FollowupTask
	for rows.Next() {
		t, err := scanFollowupTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan follow-up task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.MapDBError(err)
	}
	return out, nil
}

// NextDueMs returns the earliest due timestamp of any pending task for the
// run, or 0 when none remain.
func (r *FollowupRepo) NextDueMs(ctx context.Context, runID string) (int64, error) {
	var due sql.NullInt64
	err := r.DB.QueryRowContext(ctx, `
		SELECT MIN(due_at_ms)
		FROM followup_tasks
		WHERE run_id = $1 AND status = 'pending'`, runID).Scan(&due)
	if err != nil {
		return 0, errs.MapDBError(err)
	}
	if !due.Valid {
		return 0, nil
	}
	return due.Int64, nil
}

// GetOrgSettings loads the org's follow-up settings, applying defaults when
// the org has never been configured.
func (r *FollowupRepo) GetOrgSettings(ctx context.Context, orgID string) (*model.FollowupsOrgSettings, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT org_id, auto_enabled, max_tasks_per_invocation,
		       drain_delay_seconds, created_at, updated_at
		FROM followups_org_settings
		WHERE org_id = $1`, orgID)

	var s model.FollowupsOrgSettings
	err := row.Scan(&s.OrgID, &s.AutoEnabled, &s.MaxTasksPerInvocation,
		&s.DrainDelaySeconds, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.FollowupsOrgSettings{
			OrgID:                 orgID,
			AutoEnabled:           false,
			MaxTasksPerInvocation: 10,
			DrainDelaySeconds:     120,
		}, nil
	}
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	s.Clamp()
	return &s, nil
}

// SaveOrgSettings upserts the org's follow-up settings.
func (r *FollowupRepo) SaveOrgSettings(ctx context.Context, settings *model.FollowupsOrgSettings) error {
	if settings == nil || settings.OrgID == "" {
		return ErrOrgIDRequired
	}
	settings.Clamp()

	now := r.timeProvider.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO followups_org_settings (
			org_id, auto_enabled, max_tasks_per_invocation,
			drain_delay_seconds, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (org_id) DO UPDATE
		SET auto_enabled             = EXCLUDED.auto_enabled,
		    max_tasks_per_invocation = EXCLUDED.max_tasks_per_invocation,
		    drain_delay_seconds      = EXCLUDED.drain_delay_seconds,
		    updated_at               = EXCLUDED.updated_at`,
		settings.OrgID, settings.AutoEnabled, settings.MaxTasksPerInvocation,
		settings.DrainDelaySeconds, now)
	if err != nil {
		return errs.MapDBError(err)
	}
	return nil
}
