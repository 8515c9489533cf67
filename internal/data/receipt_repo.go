package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	errs "github.com/missionctl/leadrun-engine/internal/errors"
)

// ErrReceiptNotFound is returned when a receipt does not exist.
var ErrReceiptNotFound = errors.New("receipt not found")

// ReceiptRepo provides database operations for per-action receipts.
type ReceiptRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// ReceiptRepoConfig holds configuration options for the receipt repository.
type ReceiptRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewReceiptRepo creates a new ReceiptRepo instance.
func NewReceiptRepo(db *sql.DB, cfg ReceiptRepoConfig) *ReceiptRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &ReceiptRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

const receiptColumns = `
  run_id,
  lead_doc_id,
  action_id,
  user_id,
  correlation_id,
  status,
  dry_run,
  replayed,
  idempotency_key,
  data,
  created_at,
  updated_at
`

func scanReceipt(row rowScanner) (*model.ActionReceipt, error) {
	var rec model.ActionReceipt
	var data []byte
	if err := row.Scan(
		&rec.RunID, &rec.LeadDocID, &rec.ActionID, &rec.UserID,
		&rec.CorrelationID, &rec.Status, &rec.DryRun, &rec.Replayed,
		&rec.IdempotencyKey, &data, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Data = json.RawMessage(data)
	return &rec, nil
}

// Upsert merges the receipt into any existing row with the same key. The
// original created_at is preserved and a merge flips replayed, so callers can
// tell a duplicate delivery from a first write.
func (r *ReceiptRepo) Upsert(ctx context.Context, input model.ReceiptInput) (*model.ActionReceipt, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	data := input.Data
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt data: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO lead_action_receipts (
			run_id, lead_doc_id, action_id, user_id, correlation_id,
			status, dry_run, replayed, idempotency_key, data,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9, $10, $10)
		ON CONFLICT (run_id, lead_doc_id, action_id) DO UPDATE
		SET user_id         = EXCLUDED.user_id,
		    correlation_id  = EXCLUDED.correlation_id,
		    status          = EXCLUDED.status,
		    dry_run         = EXCLUDED.dry_run,
		    replayed        = TRUE,
		    idempotency_key = EXCLUDED.idempotency_key,
		    data            = lead_action_receipts.data || EXCLUDED.data,
		    updated_at      = EXCLUDED.updated_at
		RETURNING `+receiptColumns,
		input.RunID, input.LeadDocID, model.SafeActionID(input.ActionID),
		input.UserID, input.CorrelationID, string(input.Status), input.DryRun,
		input.IdempotencyKey, dataJSON, now,
	)

	rec, err := scanReceipt(row)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return rec, nil
}

// Get retrieves one receipt by its key. The action id is sanitized the same
// way Upsert sanitizes it.
func (r *ReceiptRepo) Get(ctx context.Context, key core.ReceiptKey) (*model.ActionReceipt, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+receiptColumns+`
		FROM lead_action_receipts
		WHERE run_id = $1 AND lead_doc_id = $2 AND action_id = $3`,
		key.RunID, key.LeadDocID, model.SafeActionID(key.ActionID))

	rec, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, errs.MapDBError(err)
	}
	return rec, nil
}

// ListByRun returns the run's receipts newest first.
func (r *ReceiptRepo) ListByRun(ctx context.Context, runID string, limit int) ([]*model.ActionReceipt, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+receiptColumns+`
		FROM lead_action_receipts
		WHERE run_id = $1
		ORDER BY created_at DESC, action_id DESC
		LIMIT $2`, runID, limit)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	var out []*model.ActionReceipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.MapDBError(err)
	}
	return out, nil
}
