package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/missionctl/leadrun-engine/internal/domain/model"
	errs "github.com/missionctl/leadrun-engine/internal/errors"
)

// ErrDncEntryNotFound is returned when a do-not-contact entry does not exist.
var ErrDncEntryNotFound = errors.New("dnc entry not found")

// DncRepo provides database operations for per-org do-not-contact lists.
type DncRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// DncRepoConfig holds configuration options for the DNC repository.
type DncRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewDncRepo creates a new DncRepo instance.
func NewDncRepo(db *sql.DB, cfg DncRepoConfig) *DncRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &DncRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

const dncColumns = `
  entry_id,
  org_id,
  type,
  value,
  normalized,
  reason,
  created_by,
  created_at,
  updated_at
`

func scanDncEntry(row rowScanner) (*model.DncEntry, error) {
	var e model.DncEntry
	if err := row.Scan(
		&e.EntryID, &e.OrgID, &e.Type, &e.Value, &e.Normalized,
		&e.Reason, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert inserts or refreshes an entry. The deterministic entry id makes
// re-adding the same value a no-op apart from the updated metadata.
func (r *DncRepo) Upsert(ctx context.Context, entry *model.DncEntry) (*model.DncEntry, error) {
	if entry == nil {
		return nil, errors.New("dnc entry is required")
	}
	if entry.EntryID == "" || entry.OrgID == "" {
		return nil, errors.New("entry id and org id are required")
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO dnc_entries (
			org_id, entry_id, type, value, normalized, reason, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (org_id, entry_id) DO UPDATE
		SET reason     = EXCLUDED.reason,
		    created_by = EXCLUDED.created_by,
		    updated_at = EXCLUDED.updated_at
		RETURNING `+dncColumns,
		entry.OrgID, entry.EntryID, string(entry.Type), entry.Value,
		entry.Normalized, entry.Reason, entry.CreatedBy, now,
	)

	saved, err := scanDncEntry(row)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return saved, nil
}

// Delete removes an entry. Returns false when the entry did not exist.
func (r *DncRepo) Delete(ctx context.Context, orgID, entryID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM dnc_entries
		WHERE org_id = $1 AND entry_id = $2`, orgID, entryID)
	if err != nil {
		return false, errs.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete dnc entry rows affected: %w", err)
	}
	return n > 0, nil
}

// List returns the org's entries newest first.
func (r *DncRepo) List(ctx context.Context, orgID string, limit int) ([]*model.DncEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+dncColumns+`
		FROM dnc_entries
		WHERE org_id = $1
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	var out []*model.DncEntry
	for rows.Next() {
		e, err := scanDncEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dnc entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.MapDBError(err)
	}
	return out, nil
}

// FindFirst probes the entry ids derived from the lead's contact points and
// returns the first match in probe order, or nil when the lead is clear.
func (r *DncRepo) FindFirst(ctx context.Context, orgID string, probes []model.DncProbe) (*model.DncEntry, error) {
	if len(probes) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(probes))
	rank := make(map[string]int, len(probes))
	for i, p := range probes {
		id := p.EntryID()
		ids = append(ids, id)
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+dncColumns+`
		FROM dnc_entries
		WHERE org_id = $1 AND entry_id = ANY($2)`, orgID, ids)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	var best *model.DncEntry
	bestRank := len(probes)
	for rows.Next() {
		e, err := scanDncEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dnc entry: %w", err)
		}
		if pos, ok := rank[e.EntryID]; ok && pos < bestRank {
			best = e
			bestRank = pos
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errs.MapDBError(err)
	}
	return best, nil
}
