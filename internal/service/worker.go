package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/observability/metrics"
	"github.com/missionctl/leadrun-engine/internal/observability/statsd"
)

// WorkerConfig holds tick-processing tunables.
type WorkerConfig struct {
	// BatchSize bounds how many leads one tick may consume.
	BatchSize int
	// LeaseSeconds is the exclusivity window stamped on claim.
	LeaseSeconds int
	// MaxAttemptsPerLead caps retries before a lead is marked failed.
	MaxAttemptsPerLead int
	// RetryDelay spaces out the re-tick when a lead is left at the cursor
	// for another attempt.
	RetryDelay time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}
	if c.LeaseSeconds <= 0 {
		c.LeaseSeconds = 90
	}
	if c.MaxAttemptsPerLead <= 0 {
		c.MaxAttemptsPerLead = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 30 * time.Second
	}
	return c
}

// WorkerOptions groups dependencies for WorkerService.
type WorkerOptions struct {
	Runs     core.RunRepository
	Leads    core.LeadRepository
	Receipts core.ReceiptRepository
	Dnc      *DncService
	Meetings *MeetingScheduler
	Channels core.ChannelSet
	Outcomes *QuotaService
	Config   WorkerConfig
	Logger   *slog.Logger
	Time     core.TimeProvider
	Metrics  statsd.Sink
}

// WorkerService executes one lease-guarded tick of a run: it claims the job,
// pushes the cursor through a bounded batch of leads across the configured
// channels, folds the counters back in, and either schedules the next tick or
// settles the run's terminal outcome.
type WorkerService struct {
	runs       core.RunRepository
	leads      core.LeadRepository
	receipts   core.ReceiptRepository
	dnc        *DncService
	meetings   *MeetingScheduler
	channels   core.ChannelSet
	outcomes   *QuotaService
	dispatcher *Dispatcher
	cfg        WorkerConfig
	logger     *slog.Logger
	time       core.TimeProvider
	metrics    statsd.Sink
}

// NewWorkerService constructs a new WorkerService. The dispatcher is attached
// afterwards with SetDispatcher because the two reference each other.
func NewWorkerService(opts WorkerOptions) (*WorkerService, error) {
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
	if opts.Outcomes == nil {
		return nil, errors.New("QuotaService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = systemTime{}
	}
	return &WorkerService{
		runs:     opts.Runs,
		leads:    opts.Leads,
		receipts: opts.Receipts,
		dnc:      opts.Dnc,
		meetings: opts.Meetings,
		channels: opts.Channels,
		outcomes: opts.Outcomes,
		cfg:      opts.Config.withDefaults(),
		logger:   logger,
		time:     tp,
		metrics:  opts.Metrics,
	}, nil
}

// SetDispatcher wires the dispatcher used to schedule follow-on ticks.
func (w *WorkerService) SetDispatcher(d *Dispatcher) { w.dispatcher = d }

// TickRequest identifies one worker invocation.
type TickRequest struct {
	RunID       string `json:"runId"`
	WorkerToken string `json:"workerToken"`
}

// TickResult summarizes what one tick accomplished.
type TickResult struct {
	RunID     string          `json:"runId"`
	Status    model.RunStatus `json:"status"`
	NextIndex int             `json:"nextIndex"`
	Total     int             `json:"totalLeads"`
	Processed int             `json:"processed"`
	Route     Route           `json:"route,omitempty"`
}

// InvokeTick satisfies the dispatcher's direct-invocation port.
func (w *WorkerService) InvokeTick(ctx context.Context, runID, workerToken string) error {
	_, err := w.Tick(ctx, TickRequest{RunID: runID, WorkerToken: workerToken})
	return err
}

// leadOutcome describes how processing one lead ended.
type leadOutcome struct {
	retry  bool
	noSlot bool
}

// Tick claims the run's lease, processes up to BatchSize leads from the
// cursor, and finalizes the delta. A paused run keeps its pause even when the
// tick completes normally. A lead whose attempt fails retryably stays at the
// cursor and the tick ends early; the follow-on tick is delayed by RetryDelay.
func (w *WorkerService) Tick(ctx context.Context, req TickRequest) (*TickResult, error) {
	started := w.time.Now()
	job, err := w.runs.ClaimTick(ctx, core.ClaimTickParams{
		RunID:        req.RunID,
		WorkerToken:  req.WorkerToken,
		LeaseSeconds: w.cfg.LeaseSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("claim tick: %w", err)
	}

	var (
		delta        model.Diagnostics
		attemptDelta = map[string]int{}
		retryPending bool
	)

	idx := job.NextIndex
	end := idx + w.cfg.BatchSize
	if end > job.TotalLeads {
		end = job.TotalLeads
	}

	for idx < end {
		docID := job.LeadDocIDs[idx]
		attempts := job.AttemptsByLead[docID]
		if attempts >= w.cfg.MaxAttemptsPerLead {
			// Exhausted in a previous tick; the cursor just moves past it.
			delta.FailedLeads++
			idx++
			continue
		}

		lead, err := w.leads.GetByDocID(ctx, job.RunID, docID)
		if err != nil {
			return w.failTick(ctx, req, idx, delta, attemptDelta, fmt.Errorf("load lead %s: %w", docID, err))
		}

		outcome, err := w.processLead(ctx, job, lead, &delta)
		if err != nil {
			return w.failTick(ctx, req, idx, delta, attemptDelta, err)
		}
		if outcome.retry {
			attemptDelta[docID]++
			if attempts+1 >= w.cfg.MaxAttemptsPerLead {
				if outcome.noSlot {
					w.requestAvailability(ctx, job, lead, &delta)
				}
				delta.FailedLeads++
				idx++
				continue
			}
			if outcome.noSlot {
				delta.CalendarRetries++
			}
			// Leave the cursor on this lead and end the batch early.
			retryPending = true
			break
		}
		delta.ProcessedLeads++
		idx++
	}

	status := model.RunStatusRunning
	if idx >= job.TotalLeads {
		status = model.RunStatusCompleted
	}

	final, err := w.runs.FinalizeTick(ctx, core.FinalizeTickParams{
		RunID:        req.RunID,
		WorkerToken:  req.WorkerToken,
		NextIndex:    idx,
		Status:       status,
		Diagnostics:  delta,
		AttemptDelta: attemptDelta,
	})
	if err != nil {
		return nil, fmt.Errorf("finalize tick: %w", err)
	}

	result := &TickResult{
		RunID:     final.RunID,
		Status:    final.Status,
		NextIndex: final.NextIndex,
		Total:     final.TotalLeads,
		Processed: delta.ProcessedLeads,
	}

	metrics.EmitTick(w.metrics, metrics.TickMetric{
		Status:    string(final.Status),
		Processed: delta.ProcessedLeads,
		Failed:    delta.FailedLeads,
		Remaining: final.TotalLeads - final.NextIndex,
		Duration:  w.time.Now().Sub(started),
	})

	switch final.Status {
	case model.RunStatusCompleted, model.RunStatusFailed:
		w.settle(ctx, final)
	case model.RunStatusQueued, model.RunStatusRunning:
		delay := time.Duration(0)
		if retryPending {
			delay = w.cfg.RetryDelay
		}
		if w.dispatcher != nil {
			route, err := w.dispatcher.Dispatch(ctx, DispatchRequest{
				RunID:       final.RunID,
				WorkerToken: req.WorkerToken,
				Delay:       delay,
			})
			if err != nil {
				w.logger.ErrorContext(ctx, "dispatch next tick", "run_id", final.RunID, "err", err)
			} else {
				result.Route = route
			}
		}
	case model.RunStatusPaused:
		w.logger.InfoContext(ctx, "run paused mid-tick", "run_id", final.RunID, "next_index", final.NextIndex)
	}

	return result, nil
}

// failTick records an infrastructure failure: the partial delta is preserved,
// the run transitions to failed, and the outcome is settled against the org
// ledger. The original error is returned to the caller.
func (w *WorkerService) failTick(ctx context.Context, req TickRequest, nextIndex int, delta model.Diagnostics, attemptDelta map[string]int, cause error) (*TickResult, error) {
	msg := cause.Error()
	final, ferr := w.runs.FinalizeTick(ctx, core.FinalizeTickParams{
		RunID:        req.RunID,
		WorkerToken:  req.WorkerToken,
		NextIndex:    nextIndex,
		Status:       model.RunStatusFailed,
		Diagnostics:  delta,
		AttemptDelta: attemptDelta,
		LastError:    &msg,
	})
	if ferr != nil {
		w.logger.ErrorContext(ctx, "finalize failed tick", "run_id", req.RunID, "err", ferr)
		return nil, cause
	}
	w.settle(ctx, final)
	return nil, cause
}

// settle posts the terminal outcome to the quota ledger.
func (w *WorkerService) settle(ctx context.Context, job *model.LeadRunJob) {
	outcome := model.RunOutcome{
		OrgID:         job.OrgID,
		RunID:         job.RunID,
		UserID:        job.UserID,
		Failed:        job.Status == model.RunStatusFailed,
		CorrelationID: job.CorrelationID,
	}
	if job.LastError != nil {
		outcome.FailureReason = *job.LastError
	}
	if _, err := w.outcomes.RecordOutcome(ctx, outcome); err != nil {
		w.logger.ErrorContext(ctx, "record run outcome", "run_id", job.RunID, "err", err)
	}
	res := metrics.ResultSuccess
	if outcome.Failed {
		res = metrics.ResultError
	}
	metrics.EmitRunLifecycle(w.metrics, metrics.RunMetric{
		Transition: "settle",
		Status:     string(job.Status),
		Result:     res,
	})
	w.logger.InfoContext(ctx, "run settled",
		"run_id", job.RunID,
		"status", job.Status,
		"processed", job.Diagnostics.ProcessedLeads,
		"failed_leads", job.Diagnostics.FailedLeads)
}

// processLead drives one lead through the enabled channels. Channel failures
// worth another attempt come back as a retry outcome; errors returned directly
// are infrastructure failures that abort the tick.
func (w *WorkerService) processLead(ctx context.Context, job *model.LeadRunJob, lead *model.Lead, delta *model.Diagnostics) (leadOutcome, error) {
	blocked, err := w.dnc.Check(ctx, job.OrgID, *lead)
	if err != nil {
		return leadOutcome{}, fmt.Errorf("suppression check for %s: %w", lead.DocID, err)
	}
	if blocked != nil {
		delta.DncBlocked++
		data := map[string]any{
			"reason":      "dnc",
			"matchedType": string(blocked.Type),
			"matched":     blocked.Value,
		}
		if err := w.record(ctx, job, lead.DocID, model.ActionEmail, model.ActionStatusSkipped, data); err != nil {
			return leadOutcome{}, err
		}
		return leadOutcome{}, nil
	}

	if retry, err := w.stepEmail(ctx, job, lead, delta); err != nil || retry {
		return leadOutcome{retry: retry}, err
	}
	if job.Config.UseSMS {
		if retry, err := w.stepSMS(ctx, job, lead, delta); err != nil || retry {
			return leadOutcome{retry: retry}, err
		}
	}
	if job.Config.UseOutboundCall {
		if retry, err := w.stepCall(ctx, job, lead, delta); err != nil || retry {
			return leadOutcome{retry: retry}, err
		}
	}
	if job.Config.UseAvatar {
		if retry, err := w.stepAvatar(ctx, job, lead, delta); err != nil || retry {
			return leadOutcome{retry: retry}, err
		}
	}
	return w.stepMeeting(ctx, job, lead, delta)
}

func (w *WorkerService) stepEmail(ctx context.Context, job *model.LeadRunJob, lead *model.Lead, delta *model.Diagnostics) (bool, error) {
	if lead.Email == "" {
		delta.NoEmail++
		return false, w.record(ctx, job, lead.DocID, model.ActionEmail, model.ActionStatusSkipped,
			map[string]any{"reason": "no_email"})
	}
	if job.Config.DryRun {
		return false, w.record(ctx, job, lead.DocID, model.ActionEmail, model.ActionStatusSimulated,
			map[string]any{"to": lead.Email, "draftOnly": job.Config.DraftFirst})
	}
	if !w.channels.Available(model.ActionEmail) {
		return false, w.record(ctx, job, lead.DocID, model.ActionEmail, model.ActionStatusSkipped,
			map[string]any{"reason": "channel_unconfigured"})
	}

	providerID, err := w.channels.Email.Send(ctx, core.EmailMessage{
		To:        lead.Email,
		Subject:   outreachSubject(lead),
		BodyHTML:  outreachBodyHTML(lead),
		DraftOnly: job.Config.DraftFirst,
	})
	if err != nil {
		delta.ChannelFailures++
		if rerr := w.record(ctx, job, lead.DocID, model.ActionEmail, model.ActionStatusError,
			map[string]any{"error": err.Error()}); rerr != nil {
			return false, rerr
		}
		w.logger.WarnContext(ctx, "email send failed", "run_id", job.RunID, "lead", lead.DocID, "err", err)
		return channelRetryable(err), nil
	}
	if job.Config.DraftFirst {
		delta.EmailsDrafted++
	} else {
		delta.EmailsSent++
	}
	return false, w.record(ctx, job, lead.DocID, model.ActionEmail, model.ActionStatusComplete,
		map[string]any{"providerId": providerID, "draftOnly": job.Config.DraftFirst})
}

func (w *WorkerService) stepSMS(ctx context.Context, job *model.LeadRunJob, lead *model.Lead, delta *model.Diagnostics) (bool, error) {
	if lead.Phone == "" {
		return false, w.record(ctx, job, lead.DocID, model.ActionSMS, model.ActionStatusSkipped,
			map[string]any{"reason": "no_phone"})
	}
	if job.Config.DryRun {
		return false, w.record(ctx, job, lead.DocID, model.ActionSMS, model.ActionStatusSimulated,
			map[string]any{"to": lead.Phone})
	}
	if !w.channels.Available(model.ActionSMS) {
		return false, w.record(ctx, job, lead.DocID, model.ActionSMS, model.ActionStatusSkipped,
			map[string]any{"reason": "channel_unconfigured"})
	}

	providerID, err := w.channels.SMS.Send(ctx, core.SMSMessage{
		To:   lead.Phone,
		Body: outreachSMSBody(lead),
	})
	if err != nil {
		delta.ChannelFailures++
		if rerr := w.record(ctx, job, lead.DocID, model.ActionSMS, model.ActionStatusError,
			map[string]any{"error": err.Error()}); rerr != nil {
			return false, rerr
		}
		w.logger.WarnContext(ctx, "sms send failed", "run_id", job.RunID, "lead", lead.DocID, "err", err)
		return channelRetryable(err), nil
	}
	delta.SMSSent++
	return false, w.record(ctx, job, lead.DocID, model.ActionSMS, model.ActionStatusComplete,
		map[string]any{"providerId": providerID})
}

func (w *WorkerService) stepCall(ctx context.Context, job *model.LeadRunJob, lead *model.Lead, delta *model.Diagnostics) (bool, error) {
	if lead.Phone == "" {
		return false, w.record(ctx, job, lead.DocID, model.ActionCall, model.ActionStatusSkipped,
			map[string]any{"reason": "no_phone"})
	}
	if job.Config.DryRun {
		return false, w.record(ctx, job, lead.DocID, model.ActionCall, model.ActionStatusSimulated,
			map[string]any{"to": lead.Phone})
	}
	if !w.channels.Available(model.ActionCall) {
		return false, w.record(ctx, job, lead.DocID, model.ActionCall, model.ActionStatusSkipped,
			map[string]any{"reason": "channel_unconfigured"})
	}

	providerID, err := w.channels.Voice.Place(ctx, core.CallRequest{
		To:     lead.Phone,
		Script: outreachCallScript(lead),
	})
	if err != nil {
		delta.ChannelFailures++
		if rerr := w.record(ctx, job, lead.DocID, model.ActionCall, model.ActionStatusError,
			map[string]any{"error": err.Error()}); rerr != nil {
			return false, rerr
		}
		w.logger.WarnContext(ctx, "call placement failed", "run_id", job.RunID, "lead", lead.DocID, "err", err)
		return channelRetryable(err), nil
	}
	delta.CallsPlaced++
	return false, w.record(ctx, job, lead.DocID, model.ActionCall, model.ActionStatusComplete,
		map[string]any{"providerId": providerID})
}

func (w *WorkerService) stepAvatar(ctx context.Context, job *model.LeadRunJob, lead *model.Lead, delta *model.Diagnostics) (bool, error) {
	if job.Config.DryRun {
		return false, w.record(ctx, job, lead.DocID, model.ActionAvatar, model.ActionStatusSimulated, nil)
	}
	if !w.channels.Available(model.ActionAvatar) {
		return false, w.record(ctx, job, lead.DocID, model.ActionAvatar, model.ActionStatusSkipped,
			map[string]any{"reason": "channel_unconfigured"})
	}

	assetURL, err := w.channels.Avatar.Render(ctx, core.AvatarRequest{
		Script:   outreachCallScript(lead),
		LeadName: lead.DisplayName(),
	})
	if err != nil {
		delta.ChannelFailures++
		if rerr := w.record(ctx, job, lead.DocID, model.ActionAvatar, model.ActionStatusError,
			map[string]any{"error": err.Error()}); rerr != nil {
			return false, rerr
		}
		w.logger.WarnContext(ctx, "avatar render failed", "run_id", job.RunID, "lead", lead.DocID, "err", err)
		return channelRetryable(err), nil
	}
	delta.AvatarsQueued++
	return false, w.record(ctx, job, lead.DocID, model.ActionAvatar, model.ActionStatusComplete,
		map[string]any{"assetUrl": assetURL})
}

func (w *WorkerService) stepMeeting(ctx context.Context, job *model.LeadRunJob, lead *model.Lead, delta *model.Diagnostics) (leadOutcome, error) {
	if lead.Email == "" {
		// No attendee address to invite; the email step already counted it.
		return leadOutcome{}, w.record(ctx, job, lead.DocID, model.ActionMeeting, model.ActionStatusSkipped,
			map[string]any{"reason": "no_email"})
	}
	if w.meetings == nil {
		if job.Config.DryRun {
			return leadOutcome{}, w.record(ctx, job, lead.DocID, model.ActionMeeting, model.ActionStatusSimulated, nil)
		}
		return leadOutcome{}, w.record(ctx, job, lead.DocID, model.ActionMeeting, model.ActionStatusSkipped,
			map[string]any{"reason": "channel_unconfigured"})
	}

	attempts := job.AttemptsByLead[lead.DocID]
	meeting, err := w.meetings.Schedule(ctx, ScheduleParams{
		OrgID:        job.OrgID,
		Lead:         *lead,
		Config:       job.Config,
		RetryAttempt: attempts + 1,
	})
	var noSlot *NoSlotError
	if errors.As(err, &noSlot) {
		// Slot contention is an expected outcome, not a channel fault.
		delta.NoSlot++
		if rerr := w.record(ctx, job, lead.DocID, model.ActionMeeting, model.ActionStatusSkipped,
			map[string]any{
				"reason":            "no_slot",
				"attempt":           attempts + 1,
				"candidatesChecked": noSlot.CandidatesChecked,
				"peakBusy":          noSlot.PeakBusy,
				"windowsTried":      noSlot.WindowsTried,
			}); rerr != nil {
			return leadOutcome{}, rerr
		}
		return leadOutcome{retry: true, noSlot: true}, nil
	}
	if err != nil {
		delta.ChannelFailures++
		if rerr := w.record(ctx, job, lead.DocID, model.ActionMeeting, model.ActionStatusError,
			map[string]any{"error": err.Error()}); rerr != nil {
			return leadOutcome{}, rerr
		}
		w.logger.WarnContext(ctx, "meeting scheduling failed", "run_id", job.RunID, "lead", lead.DocID, "err", err)
		return leadOutcome{retry: channelRetryable(err)}, nil
	}

	data := map[string]any{
		"start":        meeting.Start.Format(time.RFC3339),
		"end":          meeting.End.Format(time.RFC3339),
		"windowIndex":  meeting.WindowIndex,
		"slotsChecked": meeting.SlotsChecked,
		"drafted":      meeting.Drafted,
	}
	if job.Config.TimeZone != "" {
		data["timeZone"] = job.Config.TimeZone
	}

	// The dry-run scheduler picks a slot without touching the calendar, so
	// there is no event to reference; the receipt keeps the would-be times.
	if job.Config.DryRun {
		return leadOutcome{}, w.record(ctx, job, lead.DocID, model.ActionMeeting, model.ActionStatusSimulated, data)
	}

	if meeting.Drafted {
		delta.MeetingsDrafted++
	} else {
		delta.MeetingsScheduled++
	}
	data["eventId"] = meeting.EventID
	if meeting.MeetLink != "" {
		data["meetLink"] = meeting.MeetLink
	}
	return leadOutcome{}, w.record(ctx, job, lead.DocID, model.ActionMeeting, model.ActionStatusComplete, data)
}

// requestAvailability drafts an email asking the lead for their availability
// after the slot search spent its last retry. The draft is best effort: the
// lead is already counted failed, so a send failure only records an error
// receipt.
func (w *WorkerService) requestAvailability(ctx context.Context, job *model.LeadRunJob, lead *model.Lead, delta *model.Diagnostics) {
	if lead.Email == "" || job.Config.DryRun || !w.channels.Available(model.ActionEmail) {
		return
	}

	providerID, err := w.channels.Email.Send(ctx, core.EmailMessage{
		To:       lead.Email,
		Subject:  availabilitySubject(lead),
		BodyHTML: availabilityBodyHTML(lead),
		// Always a draft: automation never picks a meeting time on the
		// lead's behalf without review.
		DraftOnly: true,
	})
	if err != nil {
		delta.ChannelFailures++
		w.logger.WarnContext(ctx, "availability request draft failed",
			"run_id", job.RunID, "lead", lead.DocID, "err", err)
		if rerr := w.record(ctx, job, lead.DocID, model.ActionAvailability, model.ActionStatusError,
			map[string]any{"error": err.Error()}); rerr != nil {
			w.logger.WarnContext(ctx, "availability request receipt failed",
				"run_id", job.RunID, "lead", lead.DocID, "err", rerr)
		}
		return
	}
	delta.EmailsDrafted++
	if rerr := w.record(ctx, job, lead.DocID, model.ActionAvailability, model.ActionStatusComplete,
		map[string]any{"providerId": providerID, "draftOnly": true}); rerr != nil {
		w.logger.WarnContext(ctx, "availability request receipt failed",
			"run_id", job.RunID, "lead", lead.DocID, "err", rerr)
	}
}

// record writes one receipt. The idempotency key is deterministic per
// (run, lead, action), so a duplicate tick merges instead of double-writing.
func (w *WorkerService) record(ctx context.Context, job *model.LeadRunJob, leadDocID, action string, status model.ActionStatus, data map[string]any) error {
	_, err := w.receipts.Upsert(ctx, model.ReceiptInput{
		RunID:          job.RunID,
		LeadDocID:      leadDocID,
		ActionID:       action,
		UserID:         job.UserID,
		CorrelationID:  job.CorrelationID,
		Status:         status,
		DryRun:         job.Config.DryRun,
		IdempotencyKey: model.ActionIdempotencyKey(job.RunID, leadDocID, action),
		Data:           data,
	})
	if err != nil {
		return fmt.Errorf("record %s receipt for %s: %w", action, leadDocID, err)
	}
	return nil
}

// channelRetryable reports whether a provider failure deserves another
// attempt. Unclassified errors default to retryable.
func channelRetryable(err error) bool {
	var cerr *core.ChannelError
	if errors.As(err, &cerr) {
		return cerr.Retryable
	}
	return true
}

func outreachSubject(lead *model.Lead) string {
	if lead.CompanyName != "" {
		return fmt.Sprintf("Quick question about %s", lead.CompanyName)
	}
	return "Quick question"
}

func outreachBodyHTML(lead *model.Lead) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>I came across %s and thought it was worth reaching out. Would you be open to a short intro call?</p>",
		lead.DisplayName(), companyOr(lead, "your company"))
}

func outreachSMSBody(lead *model.Lead) string {
	return fmt.Sprintf("Hi %s, reaching out about %s. Open to a quick intro call? Reply STOP to opt out.",
		lead.DisplayName(), companyOr(lead, "your company"))
}

func outreachCallScript(lead *model.Lead) string {
	return fmt.Sprintf("Hi %s, this is a quick call about %s. We'd love to set up a short intro conversation.",
		lead.DisplayName(), companyOr(lead, "your company"))
}

func availabilitySubject(lead *model.Lead) string {
	if lead.CompanyName != "" {
		return fmt.Sprintf("Finding a time to talk with %s", lead.CompanyName)
	}
	return "Finding a time to talk"
}

func availabilityBodyHTML(lead *model.Lead) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>I tried to find a meeting slot that works but came up short. Could you share a few times that suit you over the next couple of weeks?</p>",
		lead.DisplayName())
}

func companyOr(lead *model.Lead, fallback string) string {
	if lead.CompanyName != "" {
		return lead.CompanyName
	}
	return fallback
}
