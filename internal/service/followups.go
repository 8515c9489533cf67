package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	apperr "github.com/missionctl/leadrun-engine/internal/errors"
)

// FollowupConfig holds follow-up processing tunables.
type FollowupConfig struct {
	// ProcessURL is the endpoint a drain re-arm task is delivered to.
	ProcessURL string
	// LeaseSeconds is the exclusivity window stamped on a claimed task.
	LeaseSeconds int
	// MaxAttempts caps retries before a task is marked failed.
	MaxAttempts int
	// RetryDelay spaces out a failed task's next attempt.
	RetryDelay time.Duration
}

func (c FollowupConfig) withDefaults() FollowupConfig {
	if c.LeaseSeconds <= 0 {
		c.LeaseSeconds = 120
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Minute
	}
	return c
}

// FollowupServiceOptions groups dependencies for FollowupService.
type FollowupServiceOptions struct {
	Tasks    core.FollowupRepository
	Runs     core.RunRepository
	Leads    core.LeadRepository
	Receipts core.ReceiptRepository
	Dnc      *DncService
	Channels core.ChannelSet
	Queue    core.TaskQueue
	Config   FollowupConfig
	Logger   *slog.Logger
	Time     core.TimeProvider
}

// FollowupService queues sequenced follow-up drafts against a completed run
// and processes them when due. Tasks carry a lead snapshot so processing
// survives the source documents; drafts are never auto-sent.
type FollowupService struct {
	tasks    core.FollowupRepository
	runs     core.RunRepository
	leads    core.LeadRepository
	receipts core.ReceiptRepository
	dnc      *DncService
	channels core.ChannelSet
	queue    core.TaskQueue
	cfg      FollowupConfig
	logger   *slog.Logger
	time     core.TimeProvider
}

// NewFollowupService constructs a new FollowupService.
func NewFollowupService(opts FollowupServiceOptions) (*FollowupService, error) {
	if opts.Tasks == nil {
		return nil, errors.New("FollowupRepository is required")
	}
	if opts.Runs == nil {
		return nil, errors.New("RunRepository is required")
	}
	if opts.Leads == nil {
		return nil, errors.New("LeadRepository is required")
	}
	if opts.Receipts == nil {
		return nil, errors.New("ReceiptRepository is required")
	}
	if opts.Dnc == nil {
		return nil, errors.New("DncService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = systemTime{}
	}
	return &FollowupService{
		tasks:    opts.Tasks,
		runs:     opts.Runs,
		leads:    opts.Leads,
		receipts: opts.Receipts,
		dnc:      opts.Dnc,
		channels: opts.Channels,
		queue:    opts.Queue,
		cfg:      opts.Config.withDefaults(),
		logger:   logger,
		time:     tp,
	}, nil
}

// Queue creates follow-up tasks for the run's reached leads. Task IDs are
// deterministic per (run, lead, sequence), so repeating the call is a no-op
// for leads already queued at that sequence.
func (s *FollowupService) Queue(ctx context.Context, orgID string, req model.QueueFollowupsRequest) (*model.QueueFollowupsResult, error) {
	req.Normalize()
	orgID = model.SanitizeOrgID(orgID)

	job, err := s.ownedJob(ctx, orgID, req.RunID)
	if err != nil {
		return nil, err
	}

	leads, err := s.leads.ListByRun(ctx, req.RunID)
	if err != nil {
		return nil, fmt.Errorf("list run leads: %w", err)
	}

	reached, err := s.reachedLeads(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = job.UserID
	}
	dueAtMs := s.time.Now().Add(time.Duration(req.DelayHours) * time.Hour).UnixMilli()

	result := &model.QueueFollowupsResult{RunID: req.RunID, DueAtMs: dueAtMs}
	for _, lead := range leads {
		if result.Created >= req.MaxLeads {
			break
		}
		if lead.Email == "" {
			result.SkippedNoEmail++
			continue
		}
		if !reached[lead.DocID] {
			result.SkippedNoOutreach++
			continue
		}
		blocked, err := s.dnc.Check(ctx, orgID, lead)
		if err != nil {
			return nil, fmt.Errorf("suppression check for %s: %w", lead.DocID, err)
		}
		if blocked != nil {
			result.SkippedDnc++
			continue
		}

		task := &model.FollowupTask{
			TaskID:    model.FollowupTaskID(req.RunID, lead.DocID, req.Sequence),
			RunID:     req.RunID,
			LeadDocID: lead.DocID,
			UserID:    userID,
			Sequence:  req.Sequence,
			Status:    model.FollowupStatusPending,
			DueAtMs:   dueAtMs,
			Lead: model.FollowupLead{
				CompanyName: lead.CompanyName,
				FounderName: lead.FounderName,
				Email:       lead.Email,
				Website:     lead.Website,
				Industry:    lead.Industry,
			},
		}
		fresh, err := s.tasks.CreateIfAbsent(ctx, task)
		if err != nil {
			return nil, fmt.Errorf("queue follow-up for %s: %w", lead.DocID, err)
		}
		if fresh {
			result.Created++
		} else {
			result.Existing++
		}
	}

	s.logger.InfoContext(ctx, "follow-ups queued",
		"run_id", req.RunID,
		"sequence", req.Sequence,
		"created", result.Created,
		"existing", result.Existing)

	// With auto processing on, the first drain is scheduled here so the run
	// empties without anyone calling the drain endpoint by hand.
	settings, err := s.tasks.GetOrgSettings(ctx, orgID)
	if err != nil {
		s.logger.ErrorContext(ctx, "load follow-up settings", "org_id", orgID, "err", err)
		return result, nil
	}
	s.rearm(ctx, job, settings)
	return result, nil
}

// Process claims due tasks for the run and drafts their follow-up emails.
// Callers authenticate with the run's follow-up worker token, minted when the
// first drain was scheduled. When pending tasks remain and auto processing is
// enabled, a drain re-arm task is enqueued so the run empties without further
// client polling.
func (s *FollowupService) Process(ctx context.Context, orgID, runID, workerToken string) (*model.ProcessFollowupsResult, error) {
	orgID = model.SanitizeOrgID(orgID)
	job, err := s.ownedJob(ctx, orgID, runID)
	if err != nil {
		return nil, err
	}
	if job.FollowupWorkerToken == "" {
		return nil, apperr.Validation("follow-up worker token not provisioned")
	}
	if workerToken == "" || workerToken != job.FollowupWorkerToken {
		return nil, apperr.Forbidden("forbidden")
	}

	settings, err := s.tasks.GetOrgSettings(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load follow-up settings: %w", err)
	}
	// Disabling auto processing stops the drain chain cold: nothing is
	// claimed and no re-arm is scheduled until the org turns it back on.
	if !settings.AutoEnabled {
		return &model.ProcessFollowupsResult{RunID: runID, Disabled: true}, nil
	}

	nowMs := s.time.Now().UnixMilli()
	claimed, err := s.tasks.Claim(ctx, core.ClaimFollowupParams{
		RunID:        runID,
		NowMs:        nowMs,
		LeaseSeconds: s.cfg.LeaseSeconds,
		MaxTasks:     settings.MaxTasksPerInvocation,
	})
	if err != nil {
		return nil, fmt.Errorf("claim follow-up tasks: %w", err)
	}

	result := &model.ProcessFollowupsResult{RunID: runID}
	for _, task := range claimed {
		result.Processed++
		s.processTask(ctx, job, task, result)
	}

	s.rearm(ctx, job, settings)
	return result, nil
}

// processTask drafts one follow-up email and settles the task. Task-level
// failures never abort the pass.
func (s *FollowupService) processTask(ctx context.Context, job *model.LeadRunJob, task *model.FollowupTask, result *model.ProcessFollowupsResult) {
	actionID := fmt.Sprintf("%s_%d", model.ActionFollowup, task.Sequence)

	finishSkipped := func(data map[string]any) {
		if err := s.tasks.Finish(ctx, task.TaskID, model.FollowupStatusSkipped); err != nil {
			s.logger.ErrorContext(ctx, "finish follow-up task", "task_id", task.TaskID, "err", err)
			return
		}
		result.Skipped++
		s.recordFollowupReceipt(ctx, job, task, actionID, model.ActionStatusSkipped, data)
	}
	settleFailure := func(err error) {
		if task.Attempts < s.cfg.MaxAttempts {
			nextDue := s.time.Now().Add(s.cfg.RetryDelay).UnixMilli()
			if rerr := s.tasks.Retry(ctx, task.TaskID, nextDue); rerr != nil {
				s.logger.ErrorContext(ctx, "retry follow-up task", "task_id", task.TaskID, "err", rerr)
			}
			s.logger.WarnContext(ctx, "follow-up task failed, retrying",
				"task_id", task.TaskID, "attempt", task.Attempts, "err", err)
			return
		}
		if ferr := s.tasks.Fail(ctx, task.TaskID, err.Error()); ferr != nil {
			s.logger.ErrorContext(ctx, "fail follow-up task", "task_id", task.TaskID, "err", ferr)
			return
		}
		result.Failed++
		s.recordFollowupReceipt(ctx, job, task, actionID, model.ActionStatusError,
			map[string]any{"error": err.Error()})
	}

	if task.Lead.Email == "" {
		finishSkipped(map[string]any{"reason": "no_email"})
		return
	}
	if s.channels.Email == nil {
		finishSkipped(map[string]any{"reason": "channel_unconfigured"})
		return
	}

	// Suppression entries added after the task was queued still win: every
	// drain re-screens the snapshot before drafting.
	blocked, err := s.dnc.Check(ctx, job.OrgID, model.Lead{
		DocID:   task.LeadDocID,
		Email:   task.Lead.Email,
		Website: task.Lead.Website,
	})
	if err != nil {
		settleFailure(fmt.Errorf("suppression check: %w", err))
		return
	}
	if blocked != nil {
		finishSkipped(map[string]any{
			"reason":      "dnc",
			"matchedType": string(blocked.Type),
			"matched":     blocked.Value,
		})
		return
	}

	// Follow-ups are always saved as drafts for human review.
	providerID, err := s.channels.Email.Send(ctx, core.EmailMessage{
		To:        task.Lead.Email,
		Subject:   followupSubject(task),
		BodyHTML:  followupBodyHTML(task),
		DraftOnly: true,
	})
	if err != nil {
		settleFailure(err)
		return
	}

	if err := s.tasks.Finish(ctx, task.TaskID, model.FollowupStatusCompleted); err != nil {
		s.logger.ErrorContext(ctx, "finish follow-up task", "task_id", task.TaskID, "err", err)
		return
	}
	result.Completed++
	s.recordFollowupReceipt(ctx, job, task, actionID, model.ActionStatusComplete,
		map[string]any{"providerId": providerID, "sequence": task.Sequence})
}

// rearm schedules the next processing invocation when pending tasks remain.
func (s *FollowupService) rearm(ctx context.Context, job *model.LeadRunJob, settings *model.FollowupsOrgSettings) {
	if s.queue == nil || !settings.AutoEnabled || s.cfg.ProcessURL == "" {
		return
	}
	nextDue, err := s.tasks.NextDueMs(ctx, job.RunID)
	if err != nil {
		s.logger.ErrorContext(ctx, "next due lookup", "run_id", job.RunID, "err", err)
		return
	}
	if nextDue == 0 {
		return
	}

	// An overdue task drains after the configured delay; a future due time
	// stands as scheduled.
	nowMs := s.time.Now().UnixMilli()
	if nextDue <= nowMs {
		nextDue = nowMs + int64(settings.DrainDelaySeconds)*1000
	}

	token, err := s.runs.EnsureFollowupToken(ctx, job.RunID)
	if err != nil {
		s.logger.ErrorContext(ctx, "ensure follow-up worker token", "run_id", job.RunID, "err", err)
		return
	}

	payload, err := json.Marshal(map[string]string{
		"orgId":       job.OrgID,
		"runId":       job.RunID,
		"workerToken": token,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal drain payload", "run_id", job.RunID, "err", err)
		return
	}
	fresh, err := s.queue.Enqueue(ctx, core.Task{
		ID:      model.FollowupTaskID(job.RunID, "drain", int(nextDue/1000)),
		URL:     s.cfg.ProcessURL,
		Payload: payload,
		RunAt:   time.UnixMilli(nextDue),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "enqueue drain task", "run_id", job.RunID, "err", err)
		return
	}
	if fresh {
		s.logger.InfoContext(ctx, "drain re-arm scheduled",
			"run_id", job.RunID, "due_at_ms", nextDue)
	}
}

// recordFollowupReceipt upserts the receipt for one settled follow-up task.
// Receipt failures are logged, not propagated: the task outcome already stuck.
func (s *FollowupService) recordFollowupReceipt(ctx context.Context, job *model.LeadRunJob, task *model.FollowupTask, actionID string, status model.ActionStatus, data map[string]any) {
	userID := task.UserID
	if userID == "" {
		userID = job.UserID
	}
	_, err := s.receipts.Upsert(ctx, model.ReceiptInput{
		RunID:          job.RunID,
		LeadDocID:      task.LeadDocID,
		ActionID:       actionID,
		UserID:         userID,
		CorrelationID:  job.CorrelationID,
		Status:         status,
		IdempotencyKey: model.ActionIdempotencyKey(job.RunID, task.LeadDocID, actionID),
		Data:           data,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "record follow-up receipt",
			"task_id", task.TaskID, "action", actionID, "err", err)
	}
}

// ListTasks returns the run's follow-up tasks.
func (s *FollowupService) ListTasks(ctx context.Context, orgID, runID string) ([]*model.FollowupTask, error) {
	if _, err := s.ownedJob(ctx, model.SanitizeOrgID(orgID), runID); err != nil {
		return nil, err
	}
	return s.tasks.ListByRun(ctx, runID)
}

// Settings returns the org's follow-up processing settings.
func (s *FollowupService) Settings(ctx context.Context, orgID string) (*model.FollowupsOrgSettings, error) {
	return s.tasks.GetOrgSettings(ctx, model.SanitizeOrgID(orgID))
}

// SaveSettings stores the org's follow-up processing settings.
func (s *FollowupService) SaveSettings(ctx context.Context, orgID string, settings model.FollowupsOrgSettings) (*model.FollowupsOrgSettings, error) {
	settings.OrgID = model.SanitizeOrgID(orgID)
	settings.Clamp()
	if err := s.tasks.SaveOrgSettings(ctx, &settings); err != nil {
		return nil, fmt.Errorf("save follow-up settings: %w", err)
	}
	return &settings, nil
}

// ownedJob loads the run and verifies the org owns it. A missing run and a
// foreign run are indistinguishable to the caller.
func (s *FollowupService) ownedJob(ctx context.Context, orgID, runID string) (*model.LeadRunJob, error) {
	job, err := s.runs.GetByID(ctx, runID)
	if err != nil || job.OrgID != orgID {
		return nil, apperr.NotFoundf("run %s not found", runID)
	}
	return job, nil
}

// reachedLeads returns the doc IDs whose outreach email landed, based on the
// run's recorded receipts.
func (s *FollowupService) reachedLeads(ctx context.Context, runID string) (map[string]bool, error) {
	receipts, err := s.receipts.ListByRun(ctx, runID, 1000)
	if err != nil {
		return nil, fmt.Errorf("list run receipts: %w", err)
	}
	reached := make(map[string]bool)
	for _, r := range receipts {
		if r.ActionID != model.ActionEmail {
			continue
		}
		if r.Status == model.ActionStatusComplete || r.Status == model.ActionStatusSimulated {
			reached[r.LeadDocID] = true
		}
	}
	return reached, nil
}

func followupSubject(task *model.FollowupTask) string {
	if task.Lead.CompanyName != "" {
		return fmt.Sprintf("Following up on %s", task.Lead.CompanyName)
	}
	return "Following up"
}

func followupBodyHTML(task *model.FollowupTask) string {
	name := task.Lead.FounderName
	if name == "" {
		name = "there"
	}
	company := task.Lead.CompanyName
	if company == "" {
		company = "your company"
	}
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>Just circling back on my earlier note about %s. Would a short intro call this week or next work for you?</p>",
		name, company)
}
