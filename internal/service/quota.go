package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/observability/notify"
)

// QuotaServiceOptions groups dependencies for QuotaService.
type QuotaServiceOptions struct {
	Quota  core.QuotaRepository
	Alerts core.AlertRepository
	Notify notify.Sink
	Logger *slog.Logger
	Time   core.TimeProvider
}

// QuotaService fronts the per-org quota ledger: usage summaries, limit
// configuration, terminal-outcome recording, and the failure-streak alerts
// that grow out of it.
type QuotaService struct {
	quota  core.QuotaRepository
	alerts core.AlertRepository
	notify notify.Sink
	logger *slog.Logger
	time   core.TimeProvider
}

// NewQuotaService constructs a new QuotaService.
func NewQuotaService(opts QuotaServiceOptions) (*QuotaService, error) {
	if opts.Quota == nil {
		return nil, errors.New("QuotaRepository is required")
	}
	if opts.Alerts == nil {
		return nil, errors.New("AlertRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = systemTime{}
	}
	return &QuotaService{
		quota:  opts.Quota,
		alerts: opts.Alerts,
		notify: opts.Notify,
		logger: logger,
		time:   tp,
	}, nil
}

// Summary returns the org's usage against its limits for the current window.
func (s *QuotaService) Summary(ctx context.Context, orgID string) (*model.QuotaSummary, error) {
	orgID = model.SanitizeOrgID(orgID)
	settings, err := s.quota.GetSettings(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load quota settings: %w", err)
	}
	state, err := s.quota.State(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load quota state: %w", err)
	}

	windowKey := model.UTCDayKey(s.time.Now())
	runsUsed, leadsUsed := state.RunsUsed, state.LeadsUsed
	if state.WindowKey != windowKey {
		// New window, nothing consumed yet.
		runsUsed, leadsUsed = 0, 0
	}

	summary := &model.QuotaSummary{
		OrgID:          orgID,
		WindowKey:      windowKey,
		RunsUsed:       runsUsed,
		LeadsUsed:      leadsUsed,
		ActiveRuns:     len(state.ActiveRunIDs),
		MaxRunsPerDay:  settings.MaxRunsPerDay,
		MaxLeadsPerDay: settings.MaxLeadsPerDay,
		MaxActiveRuns:  settings.MaxActiveRuns,
		RunsRemaining:  maxInt(0, settings.MaxRunsPerDay-runsUsed),
		LeadsRemaining: maxInt(0, settings.MaxLeadsPerDay-leadsUsed),
	}
	if settings.MaxRunsPerDay > 0 {
		summary.RunsPct = runsUsed * 100 / settings.MaxRunsPerDay
	}
	if settings.MaxLeadsPerDay > 0 {
		summary.LeadsPct = leadsUsed * 100 / settings.MaxLeadsPerDay
	}
	return summary, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Settings returns the org's configured limits.
func (s *QuotaService) Settings(ctx context.Context, orgID string) (*model.QuotaSettings, error) {
	return s.quota.GetSettings(ctx, model.SanitizeOrgID(orgID))
}

// SaveSettings stores the org's limits.
func (s *QuotaService) SaveSettings(ctx context.Context, orgID string, settings model.QuotaSettings) error {
	return s.quota.SaveSettings(ctx, model.SanitizeOrgID(orgID), settings)
}

// RecordOutcome posts a terminal run result to the ledger, releases the run's
// concurrency slot, and raises a failure-streak alert when the threshold is
// crossed.
func (s *QuotaService) RecordOutcome(ctx context.Context, outcome model.RunOutcome) (*model.OutcomeDecision, error) {
	outcome.OrgID = model.SanitizeOrgID(outcome.OrgID)

	settings, err := s.quota.GetSettings(ctx, outcome.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load quota settings: %w", err)
	}

	decision, err := s.quota.RecordOutcome(ctx, core.RecordOutcomeParams{
		Outcome:        outcome,
		AlertThreshold: settings.FailureAlertThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}

	if err := s.quota.ReleaseRun(ctx, outcome.OrgID, outcome.RunID); err != nil {
		s.logger.ErrorContext(ctx, "release run slot",
			"org_id", outcome.OrgID, "run_id", outcome.RunID, "err", err)
	}

	if decision.ShouldAlert {
		alert, err := s.alerts.Create(ctx, &model.RunAlert{
			OrgID:         outcome.OrgID,
			RunID:         outcome.RunID,
			UserID:        outcome.UserID,
			Severity:      notify.SeverityWarning,
			Title:         fmt.Sprintf("%d consecutive run failures", decision.FailureStreak),
			Message:       outcome.FailureReason,
			FailureStreak: decision.FailureStreak,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "create failure alert",
				"org_id", outcome.OrgID, "run_id", outcome.RunID, "err", err)
		} else {
			s.logger.WarnContext(ctx, "failure streak alert raised",
				"org_id", outcome.OrgID,
				"run_id", outcome.RunID,
				"streak", decision.FailureStreak)
			s.sendNotification(ctx, alert, false)
		}
	}
	return decision, nil
}

// sendNotification fans the alert out to the configured sinks, if any.
func (s *QuotaService) sendNotification(ctx context.Context, alert *model.RunAlert, escalated bool) {
	if s.notify == nil || alert == nil {
		return
	}
	payload := notify.AlertPayload{
		AlertID:       alert.AlertID,
		OrgID:         alert.OrgID,
		RunID:         alert.RunID,
		Title:         alert.Title,
		Message:       alert.Message,
		FailureStreak: alert.FailureStreak,
		Severity:      alert.Severity,
		Escalated:     escalated,
		OccurredAt:    s.time.Now(),
	}
	if escalated {
		payload.Severity = notify.SeverityCritical
	}
	if err := s.notify.SendAlert(ctx, payload); err != nil {
		s.logger.ErrorContext(ctx, "alert notification failed",
			"alert_id", alert.AlertID, "err", err)
	}
}

// OpenAlerts lists the org's unacknowledged alerts.
func (s *QuotaService) OpenAlerts(ctx context.Context, orgID string, limit int) ([]*model.RunAlert, error) {
	return s.alerts.ListOpen(ctx, model.SanitizeOrgID(orgID), limit)
}

// AckAlert acknowledges an alert.
func (s *QuotaService) AckAlert(ctx context.Context, alertID, ackedBy string) (*model.RunAlert, error) {
	return s.alerts.Ack(ctx, alertID, ackedBy)
}

// EscalateStale bumps severity on open alerts that sat unacknowledged past
// the configured escalation window. Returns the number escalated.
func (s *QuotaService) EscalateStale(ctx context.Context, escalationMinutes int) (int, error) {
	if escalationMinutes <= 0 {
		escalationMinutes = model.DefaultQuotaSettings().AlertEscalationMinutes
	}
	cutoff := s.time.Now().Add(-time.Duration(escalationMinutes) * time.Minute)

	stale, err := s.alerts.FindEscalatable(ctx, cutoff, 100)
	if err != nil {
		return 0, fmt.Errorf("find escalatable alerts: %w", err)
	}

	escalated := 0
	for _, alert := range stale {
		if err := s.alerts.MarkEscalated(ctx, alert.AlertID); err != nil {
			s.logger.ErrorContext(ctx, "escalate alert", "alert_id", alert.AlertID, "err", err)
			continue
		}
		s.logger.WarnContext(ctx, "alert escalated",
			"alert_id", alert.AlertID,
			"org_id", alert.OrgID,
			"age_minutes", int(s.time.Now().Sub(alert.CreatedAt).Minutes()))
		s.sendNotification(ctx, alert, true)
		escalated++
	}
	return escalated, nil
}
