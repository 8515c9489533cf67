package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// FollowupStatus represents the lifecycle of a follow-up draft task.
type FollowupStatus string

const (
	// FollowupStatusPending indicates the task is waiting for its due time.
	FollowupStatusPending FollowupStatus = "pending"
	// FollowupStatusProcessing indicates a worker currently holds the task lease.
	FollowupStatusProcessing FollowupStatus = "processing"
	// FollowupStatusCompleted indicates the draft was created.
	FollowupStatusCompleted FollowupStatus = "completed"
	// FollowupStatusSkipped indicates a policy or data condition prevented the draft.
	FollowupStatusSkipped FollowupStatus = "skipped"
	// FollowupStatusFailed indicates the draft attempt errored.
	FollowupStatusFailed FollowupStatus = "failed"
)

// Valid returns true if the FollowupStatus is valid.
func (s FollowupStatus) Valid() bool {
	switch s {
	case FollowupStatusPending, FollowupStatusProcessing, FollowupStatusCompleted,
		FollowupStatusSkipped, FollowupStatusFailed:
		return true
	default:
		return false
	}
}

// FollowupLead is the lead snapshot embedded in a follow-up task so processing
// does not depend on the lead document surviving.
type FollowupLead struct {
	CompanyName string `json:"companyName,omitempty"`
	FounderName string `json:"founderName,omitempty"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
	Industry    string `json:"industry,omitempty"`
}

// FollowupTask is one sequenced follow-up draft awaiting its due time.
// DueAtMs is always positive while the task is pending.
type FollowupTask struct {
	TaskID       string         `json:"taskId"                 db:"task_id"`
	RunID        string         `json:"runId"                  db:"run_id"`
	LeadDocID    string         `json:"leadDocId"              db:"lead_doc_id"`
	UserID       string         `json:"uid"                    db:"user_id"`
	Sequence     int            `json:"sequence"               db:"sequence"`
	Status       FollowupStatus `json:"status"                 db:"status"`
	DueAtMs      int64          `json:"dueAtMs"                db:"due_at_ms"`
	Attempts     int            `json:"attempts"               db:"attempts"`
	LeaseUntilMs int64          `json:"leaseUntilMs,omitempty" db:"lease_until_ms"`
	LastError    *string        `json:"lastError,omitempty"    db:"last_error"`
	Lead         FollowupLead   `json:"lead"                   db:"lead"`
	CreatedAt    time.Time      `json:"createdAt"              db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt"              db:"updated_at"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"  db:"completed_at"`
}

// FollowupTaskID computes the deterministic task id for a (run, lead,
// sequence) triple, making queueing idempotent.
func FollowupTaskID(runID, leadDocID string, sequence int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", runID, leadDocID, sequence)))
	return hex.EncodeToString(sum[:])[:32]
}

// FollowupsOrgSettings controls automated follow-up processing for an org.
type FollowupsOrgSettings struct {
	OrgID                 string    `json:"orgId"                 db:"org_id"`
	AutoEnabled           bool      `json:"autoEnabled"           db:"auto_enabled"`
	MaxTasksPerInvocation int       `json:"maxTasksPerInvocation" db:"max_tasks_per_invocation"`
	DrainDelaySeconds     int       `json:"drainDelaySeconds"     db:"drain_delay_seconds"`
	CreatedAt             time.Time `json:"createdAt"             db:"created_at"`
	UpdatedAt             time.Time `json:"updatedAt"             db:"updated_at"`
}

// Clamp applies the documented bounds to the settings values.
func (s *FollowupsOrgSettings) Clamp() {
	s.MaxTasksPerInvocation = clampInt(s.MaxTasksPerInvocation, 1, 25)
	s.DrainDelaySeconds = clampInt(s.DrainDelaySeconds, 0, 3600)
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// QueueFollowupsRequest carries the parameters for queueing follow-up drafts.
type QueueFollowupsRequest struct {
	RunID      string
	UserID     string
	DelayHours int
	MaxLeads   int
	Sequence   int
}

// Normalize clamps the request to its documented bounds.
func (r *QueueFollowupsRequest) Normalize() {
	if r.Sequence <= 0 {
		r.Sequence = 1
	}
	r.Sequence = clampInt(r.Sequence, 1, 10)
	if r.MaxLeads <= 0 {
		r.MaxLeads = 25
	}
	r.MaxLeads = clampInt(r.MaxLeads, 1, 25)
	if r.DelayHours < 0 {
		r.DelayHours = 0
	}
	r.DelayHours = clampInt(r.DelayHours, 0, 24*30)
}

// QueueFollowupsResult summarizes one queueing pass.
type QueueFollowupsResult struct {
	RunID             string `json:"runId"`
	Created           int    `json:"created"`
	Existing          int    `json:"existing"`
	SkippedNoEmail    int    `json:"skippedNoEmail"`
	SkippedNoOutreach int    `json:"skippedNoOutreach"`
	SkippedDnc        int    `json:"skippedDnc"`
	DueAtMs           int64  `json:"dueAtMs"`
}

// ProcessFollowupsResult summarizes one processing pass. Disabled marks a
// pass that claimed nothing because the org turned auto processing off.
type ProcessFollowupsResult struct {
	RunID     string `json:"runId"`
	Processed int    `json:"processed"`
	Completed int    `json:"completed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Disabled  bool   `json:"disabled,omitempty"`
}
