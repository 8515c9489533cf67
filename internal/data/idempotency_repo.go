package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/missionctl/leadrun-engine/internal/core"
	errs "github.com/missionctl/leadrun-engine/internal/errors"
)

// IdempotencyRepo provides database operations for request replay guards.
type IdempotencyRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// IdempotencyRepoConfig holds configuration options for the idempotency repository.
type IdempotencyRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewIdempotencyRepo creates a new IdempotencyRepo instance.
func NewIdempotencyRepo(db *sql.DB, cfg IdempotencyRepoConfig) *IdempotencyRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &IdempotencyRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

// Reserve inserts the record when its id is new and returns (nil, true). When
// a record already exists it returns the stored record and false, letting the
// caller replay the saved response.
func (r *IdempotencyRepo) Reserve(ctx context.Context, record *core.IdempotencyRecord) (*core.IdempotencyRecord, bool, error) {
	if record == nil || record.ID == "" {
		return nil, false, errors.New("idempotency record id is required")
	}

	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO idempotency_records (id, uid, route, idem_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		record.ID, record.UID, record.Route, record.Key, now)
	if err != nil {
		return nil, false, errs.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("reserve idempotency rows affected: %w", err)
	}
	if n > 0 {
		return nil, true, nil
	}

	existing, err := r.get(ctx, record.ID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// SaveResponse stores the serialized response for later replays.
func (r *IdempotencyRepo) SaveResponse(ctx context.Context, recordID string, response []byte) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE idempotency_records
		SET response = $2
		WHERE id = $1`, recordID, response)
	if err != nil {
		return errs.MapDBError(err)
	}
	return nil
}

func (r *IdempotencyRepo) get(ctx context.Context, id string) (*core.IdempotencyRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, uid, route, idem_key, response, created_at
		FROM idempotency_records
		WHERE id = $1`, id)

	var rec core.IdempotencyRecord
	if err := row.Scan(&rec.ID, &rec.UID, &rec.Route, &rec.Key, &rec.Response, &rec.CreatedAt); err != nil {
		return nil, errs.MapDBError(err)
	}
	return &rec, nil
}
