package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/missionctl/leadrun-engine/internal/domain/model"
	errs "github.com/missionctl/leadrun-engine/internal/errors"
)

// ErrAlertNotFound is returned when a run alert does not exist.
var ErrAlertNotFound = errors.New("alert not found")

// AlertRepo provides database operations for run-failure alerts.
type AlertRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// AlertRepoConfig holds configuration options for the alert repository.
type AlertRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewAlertRepo creates a new AlertRepo instance.
func NewAlertRepo(db *sql.DB, cfg AlertRepoConfig) *AlertRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &AlertRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

const alertColumns = `
  alert_id,
  org_id,
  run_id,
  user_id,
  severity,
  title,
  message,
  failure_streak,
  status,
  acknowledged_by,
  acknowledged_at,
  escalated_at,
  created_at
`

func scanAlert(row rowScanner) (*model.RunAlert, error) {
	var a model.RunAlert
	if err := row.Scan(
		&a.AlertID, &a.OrgID, &a.RunID, &a.UserID, &a.Severity, &a.Title,
		&a.Message, &a.FailureStreak, &a.Status, &a.AcknowledgedBy,
		&a.AcknowledgedAt, &a.EscalatedAt, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new open alert, generating its id when the caller left it
// empty.
func (r *AlertRepo) Create(ctx context.Context, alert *model.RunAlert) (*model.RunAlert, error) {
	if alert == nil {
		return nil, errors.New("alert is required")
	}
	if alert.OrgID == "" || alert.RunID == "" {
		return nil, errors.New("org id and run id are required")
	}

	id := alert.AlertID
	if id == "" {
		id = uuid.NewString()
	}
	severity := alert.Severity
	if severity == "" {
		severity = "warning"
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO lead_run_alerts (
			alert_id, org_id, run_id, user_id, severity, title, message,
			failure_streak, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'open', $9)
		RETURNING `+alertColumns,
		id, alert.OrgID, alert.RunID, alert.UserID, severity, alert.Title,
		alert.Message, alert.FailureStreak, now)

	created, err := scanAlert(row)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return created, nil
}

// ListOpen returns the org's unacknowledged alerts newest first.
func (r *AlertRepo) ListOpen(ctx context.Context, orgID string, limit int) ([]*model.RunAlert, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM lead_run_alerts
		WHERE org_id = $1 AND status = 'open'
		ORDER BY created_at DESC
		LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	var out []*model.RunAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.MapDBError(err)
	}
	return out, nil
}

// Ack acknowledges an open alert.
func (r *AlertRepo) Ack(ctx context.Context, alertID, ackedBy string) (*model.RunAlert, error) {
	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
		UPDATE lead_run_alerts
		SET status = 'acked', acknowledged_by = $2, acknowledged_at = $3
		WHERE alert_id = $1 AND status = 'open'
		RETURNING `+alertColumns,
		alertID, ackedBy, now)

	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, errs.MapDBError(err)
	}
	return alert, nil
}

// FindEscalatable returns open alerts created before cutoff that have not
// been escalated yet.
func (r *AlertRepo) FindEscalatable(ctx context.Context, cutoff time.Time, limit int) ([]*model.RunAlert, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM lead_run_alerts
		WHERE status = 'open'
		  AND escalated_at IS NULL
		  AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`, cutoff.UTC(), limit)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	var out []*model.RunAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.MapDBError(err)
	}
	return out, nil
}

// MarkEscalated stamps the alert's escalation time.
func (r *AlertRepo) MarkEscalated(ctx context.Context, alertID string) error {
	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE lead_run_alerts
		SET escalated_at = $2
		WHERE alert_id = $1 AND escalated_at IS NULL`, alertID, now)
	if err != nil {
		return errs.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("escalate alert rows affected: %w", err)
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}
