package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/data/pgxutil"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	errs "github.com/missionctl/leadrun-engine/internal/errors"
)

// QuotaRepo provides database operations for the per-org quota ledger.
type QuotaRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// QuotaRepoConfig holds configuration options for the quota repository.
type QuotaRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewQuotaRepo creates a new QuotaRepo instance.
func NewQuotaRepo(db *sql.DB, cfg QuotaRepoConfig) *QuotaRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &QuotaRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

// GetSettings loads the org's quota limits, falling back to defaults when the
// org has never been configured.
func (r *QuotaRepo) GetSettings(ctx context.Context, orgID string) (*model.QuotaSettings, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT max_runs_per_day, max_leads_per_day, max_active_runs,
		       failure_alert_threshold, alert_escalation_minutes
		FROM org_quota_settings
		WHERE org_id = $1`, orgID)

	var s model.QuotaSettings
	err := row.Scan(&s.MaxRunsPerDay, &s.MaxLeadsPerDay, &s.MaxActiveRuns,
		&s.FailureAlertThreshold, &s.AlertEscalationMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := model.DefaultQuotaSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return &s, nil
}

// SaveSettings upserts the org's quota limits.
func (r *QuotaRepo) SaveSettings(ctx context.Context, orgID string, settings model.QuotaSettings) error {
	if orgID == "" {
		return ErrOrgIDRequired
	}
	now := r.timeProvider.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO org_quota_settings (
			org_id, max_runs_per_day, max_leads_per_day, max_active_runs,
			failure_alert_threshold, alert_escalation_minutes, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (org_id) DO UPDATE
		SET max_runs_per_day         = EXCLUDED.max_runs_per_day,
		    max_leads_per_day        = EXCLUDED.max_leads_per_day,
		    max_active_runs          = EXCLUDED.max_active_runs,
		    failure_alert_threshold  = EXCLUDED.failure_alert_threshold,
		    alert_escalation_minutes = EXCLUDED.alert_escalation_minutes,
		    updated_at               = EXCLUDED.updated_at`,
		orgID, settings.MaxRunsPerDay, settings.MaxLeadsPerDay,
		settings.MaxActiveRuns, settings.FailureAlertThreshold,
		settings.AlertEscalationMinutes, now)
	if err != nil {
		return errs.MapDBError(err)
	}
	return nil
}

const quotaStateColumns = `
  org_id,
  window_key,
  runs_used,
  leads_used,
  active_run_ids,
  failure_streak,
  failed_runs,
  succeeded_runs,
  last_alert_run_id,
  last_outcome_at,
  updated_at
`

func scanQuotaState(row rowScanner) (*model.OrgQuotaState, error) {
	var s model.OrgQuotaState
	var active []byte
	if err := row.Scan(
		&s.OrgID, &s.WindowKey, &s.RunsUsed, &s.LeadsUsed, &active,
		&s.FailureStreak, &s.FailedRuns, &s.SucceededRuns, &s.LastAlertRunID,
		&s.LastOutcomeAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(active) > 0 {
		if err := json.Unmarshal(active, &s.ActiveRunIDs); err != nil {
			return nil, fmt.Errorf("unmarshal active run ids: %w", err)
		}
	}
	return &s, nil
}

// lockLedger loads the org's ledger row under FOR UPDATE, creating it first
// when the org is new.
func lockLedger(ctx context.Context, tx pgx.Tx, orgID string, now time.Time) (*model.OrgQuotaState, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO org_quota_state (org_id, last_outcome_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (org_id) DO NOTHING`, orgID, now); err != nil {
		return nil, fmt.Errorf("seed quota ledger: %w", err)
	}

	row := tx.QueryRow(ctx, `
		SELECT `+quotaStateColumns+`
		FROM org_quota_state
		WHERE org_id = $1
		FOR UPDATE`, orgID)
	return scanQuotaState(row)
}

func saveLedger(ctx context.Context, tx pgx.Tx, state *model.OrgQuotaState) error {
	active := state.ActiveRunIDs
	if active == nil {
		active = []string{}
	}
	activeJSON, err := json.Marshal(active)
	if err != nil {
		return fmt.Errorf("marshal active run ids: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE org_quota_state
		SET window_key        = $2,
		    runs_used         = $3,
		    leads_used        = $4,
		    active_run_ids    = $5,
		    failure_streak    = $6,
		    failed_runs       = $7,
		    succeeded_runs    = $8,
		    last_alert_run_id = $9,
		    last_outcome_at   = $10,
		    updated_at        = $11
		WHERE org_id = $1`,
		state.OrgID, state.WindowKey, state.RunsUsed, state.LeadsUsed,
		activeJSON, state.FailureStreak, state.FailedRuns,
		state.SucceededRuns, state.LastAlertRunID, state.LastOutcomeAt,
		state.UpdatedAt,
	); err != nil {
		return fmt.Errorf("save quota ledger: %w", err)
	}
	return nil
}

// ClaimRun atomically rolls the ledger window forward, verifies the daily run,
// daily lead, and active-run limits, and registers the run. Returns a
// capacity error without mutating state when any limit would be exceeded.
func (r *QuotaRepo) ClaimRun(ctx context.Context, params core.ClaimRunParams) (*model.OrgQuotaState, error) {
	now := r.timeProvider.Now().UTC()

	var claimed *model.OrgQuotaState
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			state, err := lockLedger(ctx, tx, params.OrgID, now)
			if err != nil {
				return err
			}

			if state.WindowKey != params.WindowKey {
				state.WindowKey = params.WindowKey
				state.RunsUsed = 0
				state.LeadsUsed = 0
			}

			limits := params.Settings
			if state.RunsUsed+1 > limits.MaxRunsPerDay {
				return errs.Capacityf("daily run quota exhausted (%d/%d)",
					state.RunsUsed, limits.MaxRunsPerDay)
			}
			if state.LeadsUsed+params.Leads > limits.MaxLeadsPerDay {
				return errs.Capacityf("daily lead quota exhausted (%d+%d/%d)",
					state.LeadsUsed, params.Leads, limits.MaxLeadsPerDay)
			}
			for _, id := range state.ActiveRunIDs {
				if id == params.RunID {
					return errs.Conflictf("run %s already holds an active slot", params.RunID)
				}
			}
			if len(state.ActiveRunIDs)+1 > limits.MaxActiveRuns {
				return errs.Capacityf("active run limit reached (%d/%d)",
					len(state.ActiveRunIDs), limits.MaxActiveRuns)
			}

			state.RunsUsed++
			state.LeadsUsed += params.Leads
			state.ActiveRunIDs = append(state.ActiveRunIDs, params.RunID)
			state.UpdatedAt = now
			if err := saveLedger(ctx, tx, state); err != nil {
				return err
			}
			claimed = state
			return nil
		},
	})
	if txErr != nil {
		return nil, txErr
	}
	return claimed, nil
}

// ReleaseRun removes the run from the active set. Daily counters are
// intentionally left consumed.
func (r *QuotaRepo) ReleaseRun(ctx context.Context, orgID, runID string) error {
	now := r.timeProvider.Now().UTC()
	return pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			state, err := lockLedger(ctx, tx, orgID, now)
			if err != nil {
				return err
			}

			kept := state.ActiveRunIDs[:0]
			for _, id := range state.ActiveRunIDs {
				if id != runID {
					kept = append(kept, id)
				}
			}
			state.ActiveRunIDs = kept
			state.UpdatedAt = now
			return saveLedger(ctx, tx, state)
		},
	})
}

// RecordOutcome updates the org failure streak and reports whether the streak
// crossed the alert threshold on this outcome. The alert fires once per run:
// repeated failures after an alert raise the streak without re-alerting until
// a success resets it.
func (r *QuotaRepo) RecordOutcome(ctx context.Context, params core.RecordOutcomeParams) (*model.OutcomeDecision, error) {
	now := r.timeProvider.Now().UTC()
	outcome := params.Outcome

	var decision *model.OutcomeDecision
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			state, err := lockLedger(ctx, tx, outcome.OrgID, now)
			if err != nil {
				return err
			}

			if outcome.Failed {
				state.FailureStreak++
				state.FailedRuns++
			} else {
				state.FailureStreak = 0
				state.SucceededRuns++
			}
			state.LastOutcomeAt = now
			state.UpdatedAt = now

			shouldAlert := outcome.Failed &&
				params.AlertThreshold > 0 &&
				state.FailureStreak >= params.AlertThreshold &&
				state.LastAlertRunID != outcome.RunID
			if shouldAlert {
				state.LastAlertRunID = outcome.RunID
			}

			if err := saveLedger(ctx, tx, state); err != nil {
				return err
			}
			decision = &model.OutcomeDecision{
				ShouldAlert:   shouldAlert,
				FailureStreak: state.FailureStreak,
			}
			return nil
		},
	})
	if txErr != nil {
		return nil, txErr
	}
	return decision, nil
}

// State returns the org's current ledger row without mutating it. Orgs that
// never ran return a zero-valued ledger.
func (r *QuotaRepo) State(ctx context.Context, orgID string) (*model.OrgQuotaState, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+quotaStateColumns+`
		FROM org_quota_state
		WHERE org_id = $1`, orgID)

	state, err := scanQuotaState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.OrgQuotaState{OrgID: orgID}, nil
	}
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return state, nil
}
