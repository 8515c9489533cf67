package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ActionStatus is the recorded outcome of one action attempted against one lead.
type ActionStatus string

const (
	// ActionStatusComplete indicates the action succeeded against the provider.
	ActionStatusComplete ActionStatus = "complete"
	// ActionStatusError indicates the action failed; the run continues.
	ActionStatusError ActionStatus = "error"
	// ActionStatusSkipped indicates a policy or business condition prevented the action.
	ActionStatusSkipped ActionStatus = "skipped"
	// ActionStatusSimulated indicates a dry-run stand-in with no provider call.
	ActionStatusSimulated ActionStatus = "simulated"
)

// Canonical action names recorded in receipts and routed to channel ports.
const (
	ActionEmail    = "email"
	ActionSMS      = "sms"
	ActionCall     = "call"
	ActionAvatar   = "avatar"
	ActionMeeting  = "meeting"
	ActionFollowup = "followup"
	// ActionAvailability is the availability-request email drafted after the
	// slot search exhausts its retries.
	ActionAvailability = "availability_request"
)

// Valid returns true if the ActionStatus is valid.
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionStatusComplete, ActionStatusError, ActionStatusSkipped, ActionStatusSimulated:
		return true
	default:
		return false
	}
}

// ActionReceipt is an idempotent audit record of one action attempted against
// one lead. Receipts are keyed by (runId, leadDocId, sanitized actionId);
// recording the same key again merges into the stored row, preserving the
// original CreatedAt and flipping Replayed for the caller.
type ActionReceipt struct {
	RunID          string          `json:"runId"                    db:"run_id"`
	LeadDocID      string          `json:"leadDocId"                db:"lead_doc_id"`
	ActionID       string          `json:"actionId"                 db:"action_id"`
	UserID         string          `json:"userId"                   db:"user_id"`
	CorrelationID  string          `json:"correlationId"            db:"correlation_id"`
	Status         ActionStatus    `json:"status"                   db:"status"`
	DryRun         bool            `json:"dryRun"                   db:"dry_run"`
	Replayed       bool            `json:"replayed"                 db:"replayed"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty" db:"idempotency_key"`
	Data           json.RawMessage `json:"data,omitempty"           db:"data"`
	CreatedAt      time.Time       `json:"createdAt"                db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt"                db:"updated_at"`
}

// SafeActionID reduces an action id to the character set allowed for receipt
// keys, truncated to 120 characters.
func SafeActionID(actionID string) string {
	var b strings.Builder
	b.Grow(len(actionID))
	for _, r := range actionID {
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
	return s
}

// ActionIdempotencyKey derives the deterministic idempotency key for a channel
// action, so a duplicate tick cannot double-send.
func ActionIdempotencyKey(runID, leadDocID, action string) string {
	return fmt.Sprintf("%s:%s:%s", runID, leadDocID, action)
}

// ReceiptInput groups the fields for recording one receipt.
type ReceiptInput struct {
	RunID          string
	LeadDocID      string
	ActionID       string
	UserID         string
	CorrelationID  string
	Status         ActionStatus
	DryRun         bool
	IdempotencyKey string
	Data           map[string]any
}

// Validate validates the ReceiptInput fields.
func (in *ReceiptInput) Validate() error {
	if strings.TrimSpace(in.RunID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(in.LeadDocID) == "" {
		return fmt.Errorf("lead doc id is required")
	}
	if strings.TrimSpace(in.ActionID) == "" {
		return fmt.Errorf("action id is required")
	}
	if !in.Status.Valid() {
		return fmt.Errorf("invalid receipt status %q", in.Status)
	}
	return nil
}
