package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/missionctl/leadrun-engine/internal/data/pgxutil"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	errs "github.com/missionctl/leadrun-engine/internal/errors"
)

// ErrLeadNotFound is returned when a lead snapshot does not exist.
var ErrLeadNotFound = errors.New("lead not found")

// LeadRepo stores the immutable lead snapshots captured at run start.
type LeadRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewLeadRepo creates a new LeadRepo instance.
func NewLeadRepo(db *sql.DB, logger *slog.Logger) *LeadRepo {
	return &LeadRepo{DB: db, logger: logger}
}

const leadColumns = `
  doc_id,
  run_id,
  company_name,
  founder_name,
  email,
  phone,
  website,
  industry,
  source,
  score,
  job_status,
  job_last_error,
  created_at,
  updated_at
`

// PutAll inserts the run's lead snapshots in one transaction, preserving the
// caller's ordering via the position column.
func (r *LeadRepo) PutAll(ctx context.Context, runID string, leads []model.Lead) error {
	if runID == "" {
		return ErrRunIDRequired
	}
	if len(leads) == 0 {
		return nil
	}

	return pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			for i, lead := range leads {
				if _, err := tx.Exec(ctx, `
					INSERT INTO lead_run_leads (
						run_id, doc_id, position, company_name, founder_name,
						email, phone, website, industry, source, score,
						job_status, job_last_error
					) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
					ON CONFLICT (run_id, doc_id) DO NOTHING`,
					runID, lead.DocID, i, lead.CompanyName, lead.FounderName,
					lead.Email, lead.Phone, lead.Website, lead.Industry,
					lead.Source, lead.Score, lead.JobStatus, lead.JobLastError,
				); err != nil {
					return fmt.Errorf("insert lead %s: %w", lead.DocID, err)
				}
			}
			return nil
		},
	})
}

// GetByDocID retrieves one lead snapshot for the run.
func (r *LeadRepo) GetByDocID(ctx context.Context, runID, leadDocID string) (*model.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+leadColumns+`
		FROM lead_run_leads
		WHERE run_id = $1 AND doc_id = $2`, runID, leadDocID)

	var lead model.Lead
	if err := row.Scan(
		&lead.DocID, &lead.RunID, &lead.CompanyName, &lead.FounderName,
		&lead.Email, &lead.Phone, &lead.Website, &lead.Industry, &lead.Source,
		&lead.Score, &lead.JobStatus, &lead.JobLastError,
		&lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, errs.MapDBError(err)
	}
	return &lead, nil
}

// ListByRun returns the run's leads in snapshot order.
func (r *LeadRepo) ListByRun(ctx context.Context, runID string) ([]model.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+leadColumns+`
		FROM lead_run_leads
		WHERE run_id = $1
		ORDER BY position ASC`, runID)
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	defer rows.Close()

	var out []model.Lead
	for rows.Next() {
		var lead model.Lead
		if err := rows.Scan(
			&lead.DocID, &lead.RunID, &lead.CompanyName, &lead.FounderName,
			&lead.Email, &lead.Phone, &lead.Website, &lead.Industry, &lead.Source,
			&lead.Score, &lead.JobStatus, &lead.JobLastError,
			&lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.MapDBError(err)
	}
	return out, nil
}
