package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/missionctl/leadrun-engine/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ClaimTickParams groups parameters for RunRepository.ClaimTick to keep param count ≤3.
type ClaimTickParams struct {
	RunID        string
	WorkerToken  string
	LeaseSeconds int
}

// FinalizeTickParams carries the per-tick delta applied under the run lease.
type FinalizeTickParams struct {
	RunID        string
	WorkerToken  string
	NextIndex    int
	Status       model.RunStatus
	Diagnostics  model.Diagnostics
	AttemptDelta map[string]int
	LastError    *string
}

// RunRepository defines the interface for lead-run job data operations.
type RunRepository interface {
	Create(ctx context.Context, job *model.LeadRunJob) (*model.LeadRunJob, error)
	GetByID(ctx context.Context, runID string) (*model.LeadRunJob, error)
	GetByWorkerToken(ctx context.Context, runID, token string) (*model.LeadRunJob, error)

	// EnsureFollowupToken returns the run's follow-up worker token, minting
	// one atomically on first use.
	EnsureFollowupToken(ctx context.Context, runID string) (string, error)

	// ClaimTick atomically validates the worker token, rejects a held lease,
	// and stamps a fresh lease expiry. Returns the claimed job snapshot.
	ClaimTick(ctx context.Context, params ClaimTickParams) (*model.LeadRunJob, error)

	// FinalizeTick merges diagnostics and attempt counts, advances the
	// cursor, transitions status, and clears the lease in one transaction.
	FinalizeTick(ctx context.Context, params FinalizeTickParams) (*model.LeadRunJob, error)

	Heartbeat(ctx context.Context, runID string, leaseSeconds int) (bool, error)
	UpdateStatus(ctx context.Context, runID string, status model.RunStatus) (*model.LeadRunJob, error)
	ListByOrg(ctx context.Context, orgID string, limit int) ([]*model.LeadRunJob, error)
	CountActiveByOrg(ctx context.Context, orgID string) (int, error)

	// FindExpiredLeases returns jobs stalled before cutoff: running jobs
	// with a lapsed lease and queued jobs that never received their tick.
	FindExpiredLeases(ctx context.Context, cutoff time.Time, limit int) ([]*model.LeadRunJob, error)
}

// LeadRepository stores the immutable lead snapshots captured at run start.
type LeadRepository interface {
	PutAll(ctx context.Context, runID string, leads []model.Lead) error
	GetByDocID(ctx context.Context, runID, leadDocID string) (*model.Lead, error)
	ListByRun(ctx context.Context, runID string) ([]model.Lead, error)
}

// ReceiptKey identifies one receipt row.
type ReceiptKey struct {
	RunID     string
	LeadDocID string
	ActionID  string
}

// ReceiptRepository defines the interface for per-action receipt operations.
type ReceiptRepository interface {
	// Upsert merges the receipt into any existing row with the same key,
	// preserving the original created_at and flagging replays.
	Upsert(ctx context.Context, input model.ReceiptInput) (*model.ActionReceipt, error)
	Get(ctx context.Context, key ReceiptKey) (*model.ActionReceipt, error)
	ListByRun(ctx context.Context, runID string, limit int) ([]*model.ActionReceipt, error)
}

// DncRepository defines the interface for do-not-contact list operations.
type DncRepository interface {
	Upsert(ctx context.Context, entry *model.DncEntry) (*model.DncEntry, error)
	Delete(ctx context.Context, orgID, entryID string) (bool, error)
	List(ctx context.Context, orgID string, limit int) ([]*model.DncEntry, error)

	// FindFirst probes entry IDs in order and returns the first match, or
	// nil when none of the probes hit.
	FindFirst(ctx context.Context, orgID string, probes []model.DncProbe) (*model.DncEntry, error)
}

// ClaimFollowupParams groups parameters for FollowupRepository.Claim.
type ClaimFollowupParams struct {
	RunID        string
	NowMs        int64
	LeaseSeconds int
	MaxTasks     int
}

// FollowupRepository defines the interface for follow-up task operations.
type FollowupRepository interface {
	// CreateIfAbsent inserts the task only when its deterministic ID is new.
	// Returns false when a task with the same ID already exists.
	CreateIfAbsent(ctx context.Context, task *model.FollowupTask) (bool, error)

	// Claim leases due pending tasks for processing.
	Claim(ctx context.Context, params ClaimFollowupParams) ([]*model.FollowupTask, error)

	// Finish transitions a claimed task to a terminal status.
	Finish(ctx context.Context, taskID string, status model.FollowupStatus) error

	// Fail records the error and transitions the task to failed.
	Fail(ctx context.Context, taskID string, lastError string) error

	// Retry returns a claimed task to pending with a new due time.
	Retry(ctx context.Context, taskID string, nextDueMs int64) error
	ListByRun(ctx context.Context, runID string) ([]*model.FollowupTask, error)

	// NextDueMs returns the earliest due timestamp of any pending task for
	// the run, or 0 when none remain.
	NextDueMs(ctx context.Context, runID string) (int64, error)

	GetOrgSettings(ctx context.Context, orgID string) (*model.FollowupsOrgSettings, error)
	SaveOrgSettings(ctx context.Context, settings *model.FollowupsOrgSettings) error
}

// ClaimRunParams groups parameters for QuotaRepository.ClaimRun.
type ClaimRunParams struct {
	OrgID     string
	RunID     string
	WindowKey string
	Leads     int
	Settings  model.QuotaSettings
}

// RecordOutcomeParams groups parameters for QuotaRepository.RecordOutcome.
type RecordOutcomeParams struct {
	Outcome        model.RunOutcome
	AlertThreshold int
}

// QuotaRepository defines the interface for the per-org quota ledger.
type QuotaRepository interface {
	GetSettings(ctx context.Context, orgID string) (*model.QuotaSettings, error)
	SaveSettings(ctx context.Context, orgID string, settings model.QuotaSettings) error

	// ClaimRun atomically rolls the ledger window forward, verifies the
	// daily run, daily lead, and active-run limits, and registers the run.
	// Returns a capacity error without mutating state when any limit would
	// be exceeded.
	ClaimRun(ctx context.Context, params ClaimRunParams) (*model.OrgQuotaState, error)

	// ReleaseRun removes the run from the active set. Daily counters are
	// intentionally left consumed.
	ReleaseRun(ctx context.Context, orgID, runID string) error

	// RecordOutcome updates the org failure streak and reports whether the
	// streak crossed the alert threshold on this outcome.
	RecordOutcome(ctx context.Context, params RecordOutcomeParams) (*model.OutcomeDecision, error)

	State(ctx context.Context, orgID string) (*model.OrgQuotaState, error)
}

// AlertRepository defines the interface for run-failure alert operations.
type AlertRepository interface {
	Create(ctx context.Context, alert *model.RunAlert) (*model.RunAlert, error)
	ListOpen(ctx context.Context, orgID string, limit int) ([]*model.RunAlert, error)
	Ack(ctx context.Context, alertID, ackedBy string) (*model.RunAlert, error)

	// FindEscalatable returns open alerts older than cutoff not yet escalated.
	FindEscalatable(ctx context.Context, cutoff time.Time, limit int) ([]*model.RunAlert, error)
	MarkEscalated(ctx context.Context, alertID string) error
}

// IdempotencyRecord is one replay-guard row keyed by hash(uid:route:key).
type IdempotencyRecord struct {
	ID        string    `db:"id"          json:"id"`
	UID       string    `db:"uid"         json:"uid"`
	Route     string    `db:"route"       json:"route"`
	Key       string    `db:"idem_key"    json:"key"`
	Response  []byte    `db:"response"    json:"response,omitempty"`
	CreatedAt time.Time `db:"created_at"  json:"created_at"`
}

// IdempotencyRecordID derives the deterministic record id for a request.
func IdempotencyRecordID(uid, route, key string) string {
	sum := sha256.Sum256([]byte(uid + ":" + route + ":" + key))
	return hex.EncodeToString(sum[:])
}

// IdempotencyRepository defines the interface for request replay guards.
type IdempotencyRepository interface {
	// Reserve inserts the record when its ID is new and returns (nil, true).
	// When a record already exists it returns the stored record and false.
	Reserve(ctx context.Context, record *IdempotencyRecord) (*IdempotencyRecord, bool, error)
	SaveResponse(ctx context.Context, recordID string, response []byte) error
}

// Task is one deferred tick or follow-up drain enqueued on the durable queue.
type Task struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Payload []byte    `json:"payload"`
	RunAt   time.Time `json:"run_at"`
}

// TaskQueue defines the interface for durable deferred task delivery.
type TaskQueue interface {
	// Enqueue schedules the task, deduplicating on task ID. Returns false
	// when a task with the same ID was already scheduled.
	Enqueue(ctx context.Context, task Task) (bool, error)
	Health(ctx context.Context) error
}

// TimeProvider abstracts wall-clock access so services stay testable.
type TimeProvider interface {
	Now() time.Time
}
