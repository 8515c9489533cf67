// Package model defines the core data types and structures used throughout the lead-run orchestration system.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RunStatus represents the current status of a lead-run job.
type RunStatus string

const (
	// RunStatusQueued indicates a run is waiting for the next worker tick.
	RunStatusQueued RunStatus = "queued"
	// RunStatusRunning indicates a tick currently holds the run's lease.
	RunStatusRunning RunStatus = "running"
	// RunStatusPaused indicates processing is suspended by the owner.
	RunStatusPaused RunStatus = "paused"
	// RunStatusCompleted indicates every lead has been processed.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed indicates the run hit an infrastructure failure.
	RunStatusFailed RunStatus = "failed"
)

// Valid returns true if the RunStatus is valid.
func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusQueued, RunStatusRunning, RunStatusPaused, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is an end state.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// RunConfig is the validated per-run channel configuration. It is checked once
// at job creation and never re-validated per tick.
type RunConfig struct {
	DryRun          bool   `json:"dryRun"`
	DraftFirst      bool   `json:"draftFirst"`
	TimeZone        string `json:"timeZone"`
	BusinessKey     string `json:"businessKey,omitempty"`
	UseSMS          bool   `json:"useSMS"`
	UseAvatar       bool   `json:"useAvatar"`
	UseOutboundCall bool   `json:"useOutboundCall"`
}

// Validate validates the RunConfig fields.
func (c *RunConfig) Validate() error {
	if strings.TrimSpace(c.TimeZone) == "" {
		return errors.New("timeZone is required")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid timeZone %q: %w", c.TimeZone, err)
	}
	return nil
}

// Diagnostics holds the per-run counters surfaced to polling clients.
type Diagnostics struct {
	SourceFetched         int `json:"sourceFetched"`
	SourceScored          int `json:"sourceScored"`
	SourceFilteredByScore int `json:"sourceFilteredByScore"`
	SourceWithEmail       int `json:"sourceWithEmail"`
	SourceWithoutEmail    int `json:"sourceWithoutEmail"`
	ProcessedLeads        int `json:"processedLeads"`
	FailedLeads           int `json:"failedLeads"`
	CalendarRetries       int `json:"calendarRetries"`
	NoEmail               int `json:"noEmail"`
	NoSlot                int `json:"noSlot"`
	MeetingsScheduled     int `json:"meetingsScheduled"`
	MeetingsDrafted       int `json:"meetingsDrafted"`
	EmailsSent            int `json:"emailsSent"`
	EmailsDrafted         int `json:"emailsDrafted"`
	SMSSent               int `json:"smsSent"`
	CallsPlaced           int `json:"callsPlaced"`
	AvatarsQueued         int `json:"avatarsQueued"`
	ChannelFailures       int `json:"channelFailures"`
	DncBlocked            int `json:"dncBlocked"`
}

// Merge returns the sum of the receiver and delta, field by field.
func (d Diagnostics) Merge(delta Diagnostics) Diagnostics {
	return Diagnostics{
		SourceFetched:         d.SourceFetched + delta.SourceFetched,
		SourceScored:          d.SourceScored + delta.SourceScored,
		SourceFilteredByScore: d.SourceFilteredByScore + delta.SourceFilteredByScore,
		SourceWithEmail:       d.SourceWithEmail + delta.SourceWithEmail,
		SourceWithoutEmail:    d.SourceWithoutEmail + delta.SourceWithoutEmail,
		ProcessedLeads:        d.ProcessedLeads + delta.ProcessedLeads,
		FailedLeads:           d.FailedLeads + delta.FailedLeads,
		CalendarRetries:       d.CalendarRetries + delta.CalendarRetries,
		NoEmail:               d.NoEmail + delta.NoEmail,
		NoSlot:                d.NoSlot + delta.NoSlot,
		MeetingsScheduled:     d.MeetingsScheduled + delta.MeetingsScheduled,
		MeetingsDrafted:       d.MeetingsDrafted + delta.MeetingsDrafted,
		EmailsSent:            d.EmailsSent + delta.EmailsSent,
		EmailsDrafted:         d.EmailsDrafted + delta.EmailsDrafted,
		SMSSent:               d.SMSSent + delta.SMSSent,
		CallsPlaced:           d.CallsPlaced + delta.CallsPlaced,
		AvatarsQueued:         d.AvatarsQueued + delta.AvatarsQueued,
		ChannelFailures:       d.ChannelFailures + delta.ChannelFailures,
		DncBlocked:            d.DncBlocked + delta.DncBlocked,
	}
}

// LeadRunJob is the persisted per-run document driving status transitions and
// the processing cursor. It is created once at run start and thereafter
// mutated only by worker ticks and heartbeats; it is never deleted.
type LeadRunJob struct {
	RunID  string    `json:"runId"  db:"run_id"`
	OrgID  string    `json:"orgId"  db:"org_id"`
	UserID string    `json:"userId" db:"user_id"`
	Status RunStatus `json:"status" db:"status"`
	Config RunConfig `json:"config" db:"config"`
	// WorkerToken authenticates tick deliveries; FollowupWorkerToken
	// authenticates drain deliveries and is minted lazily when the first
	// drain is scheduled.
	WorkerToken         string         `json:"-"                        db:"worker_token"`
	FollowupWorkerToken string         `json:"-"                        db:"followup_worker_token"`
	LeadDocIDs          []string       `json:"leadDocIds"               db:"lead_doc_ids"`
	NextIndex           int            `json:"nextIndex"                db:"next_index"`
	TotalLeads          int            `json:"totalLeads"               db:"total_leads"`
	Diagnostics         Diagnostics    `json:"diagnostics"              db:"diagnostics"`
	AttemptsByLead      map[string]int `json:"attemptsByLead"           db:"attempts_by_lead"`
	LastError           *string        `json:"lastError,omitempty"      db:"last_error"`
	LeaseExpiresAt      *time.Time     `json:"leaseExpiresAt,omitempty" db:"lease_expires_at"`
	CorrelationID       string         `json:"correlationId"            db:"correlation_id"`
	CreatedAt           time.Time      `json:"createdAt"                db:"created_at"`
	UpdatedAt           time.Time      `json:"updatedAt"                db:"updated_at"`
}

// Completed reports whether the cursor has consumed every lead.
func (j *LeadRunJob) Completed() bool {
	return j.NextIndex >= j.TotalLeads
}

// Active reports whether the job still occupies a concurrency slot.
func (j *LeadRunJob) Active() bool {
	return j.Status == RunStatusQueued || j.Status == RunStatusRunning || j.Status == RunStatusPaused
}

// JobProjection is the read-only view returned to polling clients.
type JobProjection struct {
	RunID           string         `json:"runId"`
	OrgID           string         `json:"orgId"`
	UserID          string         `json:"userId"`
	Status          RunStatus      `json:"status"`
	Config          RunConfig      `json:"config"`
	NextIndex       int            `json:"nextIndex"`
	TotalLeads      int            `json:"totalLeads"`
	Diagnostics     Diagnostics    `json:"diagnostics"`
	AttemptsByLead  map[string]int `json:"attemptsByLead"`
	LastError       *string        `json:"lastError,omitempty"`
	CorrelationID   string         `json:"correlationId"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	QueueLagSeconds *int64         `json:"queueLagSeconds,omitempty"`
}

// Projection builds the polling view of the job. now is used to compute queue
// lag for queued jobs.
func (j *LeadRunJob) Projection(now time.Time) *JobProjection {
	p := &JobProjection{
		RunID:          j.RunID,
		OrgID:          j.OrgID,
		UserID:         j.UserID,
		Status:         j.Status,
		Config:         j.Config,
		NextIndex:      j.NextIndex,
		TotalLeads:     j.TotalLeads,
		Diagnostics:    j.Diagnostics,
		AttemptsByLead: j.AttemptsByLead,
		LastError:      j.LastError,
		CorrelationID:  j.CorrelationID,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
	if j.Status == RunStatusQueued {
		ref := j.UpdatedAt
		if ref.IsZero() {
			ref = j.CreatedAt
		}
		if !ref.IsZero() {
			lag := int64(now.Sub(ref).Seconds())
			if lag < 0 {
				lag = 0
			}
			p.QueueLagSeconds = &lag
		}
	}
	return p
}

// StartRunRequest carries the owner-authenticated parameters for starting a run.
type StartRunRequest struct {
	RunID         string
	UserID        string
	Config        RunConfig
	CorrelationID string
}

// Validate validates the StartRunRequest fields.
func (r *StartRunRequest) Validate() error {
	if strings.TrimSpace(r.RunID) == "" {
		return errors.New("run id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	return r.Config.Validate()
}
