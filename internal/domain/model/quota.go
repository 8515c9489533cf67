package model

import (
	"strings"
	"time"
)

// QuotaSettings are the per-organization capacity limits enforced at run start.
type QuotaSettings struct {
	MaxRunsPerDay           int
	MaxLeadsPerDay          int
	MaxActiveRuns           int
	FailureAlertThreshold   int
	AlertEscalationMinutes  int
}

// DefaultQuotaSettings returns the limits applied to orgs without explicit
// configuration.
func DefaultQuotaSettings() QuotaSettings {
	return QuotaSettings{
		MaxRunsPerDay:          80,
		MaxLeadsPerDay:         1200,
		MaxActiveRuns:          3,
		FailureAlertThreshold:  3,
		AlertEscalationMinutes: 30,
	}
}

// OrgQuotaState is the single per-organization ledger row backing quota
// claims, concurrency slots, and the failure streak.
type OrgQuotaState struct {
	OrgID           string    `json:"orgId"           db:"org_id"`
	WindowKey       string    `json:"windowKey"       db:"window_key"`
	RunsUsed        int       `json:"runsUsed"        db:"runs_used"`
	LeadsUsed       int       `json:"leadsUsed"       db:"leads_used"`
	ActiveRunIDs    []string  `json:"activeRunIds"    db:"active_run_ids"`
	FailureStreak   int       `json:"failureStreak"   db:"failure_streak"`
	FailedRuns      int       `json:"failedRuns"      db:"failed_runs"`
	SucceededRuns   int       `json:"succeededRuns"   db:"succeeded_runs"`
	LastAlertRunID  string    `json:"lastAlertRunId"  db:"last_alert_run_id"`
	LastOutcomeAt   time.Time `json:"lastOutcomeAt"   db:"last_outcome_at"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`
}

// QuotaSummary is the read view exposed to polling clients.
type QuotaSummary struct {
	OrgID          string `json:"orgId"`
	WindowKey      string `json:"windowKey"`
	RunsUsed       int    `json:"runsUsed"`
	LeadsUsed      int    `json:"leadsUsed"`
	ActiveRuns     int    `json:"activeRuns"`
	MaxRunsPerDay  int    `json:"maxRunsPerDay"`
	MaxLeadsPerDay int    `json:"maxLeadsPerDay"`
	MaxActiveRuns  int    `json:"maxActiveRuns"`
	RunsRemaining  int    `json:"runsRemaining"`
	LeadsRemaining int    `json:"leadsRemaining"`
	RunsPct        int    `json:"runsPct"`
	LeadsPct       int    `json:"leadsPct"`
}

// UTCDayKey returns the quota window key for the given instant.
func UTCDayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SanitizeOrgID reduces a raw organization identifier to the allowed
// character set, truncated to 120 characters; empty input maps to "default".
func SanitizeOrgID(input string) string {
	trimmed := strings.TrimSpace(input)
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > 120 {
		s = s[:120]
	}
	if s == "" {
		return "default"
	}
	return s
}

// AlertStatus represents the acknowledgement state of a run alert.
type AlertStatus string

const (
	// AlertStatusOpen indicates the alert awaits acknowledgement.
	AlertStatusOpen AlertStatus = "open"
	// AlertStatusAcked indicates an operator acknowledged the alert.
	AlertStatusAcked AlertStatus = "acked"
)

// RunAlert is raised when an organization's failure streak crosses the
// configured threshold.
type RunAlert struct {
	AlertID        string      `json:"alertId"                  db:"alert_id"`
	OrgID          string      `json:"orgId"                    db:"org_id"`
	RunID          string      `json:"runId"                    db:"run_id"`
	UserID         string      `json:"uid"                      db:"user_id"`
	Severity       string      `json:"severity"                 db:"severity"`
	Title          string      `json:"title"                    db:"title"`
	Message        string      `json:"message"                  db:"message"`
	FailureStreak  int         `json:"failureStreak"            db:"failure_streak"`
	Status         AlertStatus `json:"status"                   db:"status"`
	AcknowledgedBy *string     `json:"acknowledgedBy,omitempty" db:"acknowledged_by"`
	AcknowledgedAt *time.Time  `json:"acknowledgedAt,omitempty" db:"acknowledged_at"`
	EscalatedAt    *time.Time  `json:"escalatedAt,omitempty"    db:"escalated_at"`
	CreatedAt      time.Time   `json:"createdAt"                db:"created_at"`
}

// RunOutcome records a terminal run result against the org ledger.
type RunOutcome struct {
	OrgID         string
	RunID         string
	UserID        string
	Failed        bool
	FailureReason string
	CorrelationID string
}

// OutcomeDecision reports how the ledger reacted to a recorded outcome.
type OutcomeDecision struct {
	ShouldAlert   bool
	FailureStreak int
}
