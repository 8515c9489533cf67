package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	apperr "github.com/missionctl/leadrun-engine/internal/errors"
	"github.com/missionctl/leadrun-engine/internal/mocks"
)

type followupFixture struct {
	tasks    *mocks.MockFollowupRepository
	runs     *mocks.MockRunRepository
	leads    *mocks.MockLeadRepository
	receipts *mocks.MockReceiptRepository
	dncRepo  *mocks.MockDncRepository
	email    *mocks.MockEmailSender
	queue    *mocks.MockTaskQueue
	svc      *FollowupService
}

func newFollowupFixture(t *testing.T) *followupFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &followupFixture{
		tasks:    mocks.NewMockFollowupRepository(ctrl),
		runs:     mocks.NewMockRunRepository(ctrl),
		leads:    mocks.NewMockLeadRepository(ctrl),
		receipts: mocks.NewMockReceiptRepository(ctrl),
		dncRepo:  mocks.NewMockDncRepository(ctrl),
		email:    mocks.NewMockEmailSender(ctrl),
		queue:    mocks.NewMockTaskQueue(ctrl),
	}
	dnc, err := NewDncService(DncServiceOptions{Repo: f.dncRepo})
	require.NoError(t, err)
	svc, err := NewFollowupService(FollowupServiceOptions{
		Tasks:    f.tasks,
		Runs:     f.runs,
		Leads:    f.leads,
		Receipts: f.receipts,
		Dnc:      dnc,
		Channels: core.ChannelSet{Email: f.email},
		Queue:    f.queue,
		Config: FollowupConfig{
			ProcessURL:   "http://localhost:8080/api/followups/drain",
			LeaseSeconds: 120,
			MaxAttempts:  3,
			RetryDelay:   5 * time.Minute,
		},
		Time: testClock{now: testNow},
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

const followupToken = "fw-token-1"

func followupJob() *model.LeadRunJob {
	return &model.LeadRunJob{
		RunID:               "run-1",
		OrgID:               "org-1",
		UserID:              "user-1",
		Status:              model.RunStatusCompleted,
		FollowupWorkerToken: followupToken,
	}
}

// expectDncClear answers every suppression probe with no match.
func (f *followupFixture) expectDncClear(ctx context.Context, times int) {
	f.dncRepo.EXPECT().
		FindFirst(ctx, "org-1", gomock.Any()).
		Return(nil, nil).
		Times(times)
}

func TestFollowupService_Queue(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.leads.EXPECT().ListByRun(ctx, "run-1").Return([]model.Lead{
		{DocID: "lead-1", Email: "a@example.com", CompanyName: "Acme"},
		{DocID: "lead-2"}, // no email
		{DocID: "lead-3", Email: "c@example.com"}, // no outreach receipt
		{DocID: "lead-4", Email: "d@example.com"}, // already queued
		{DocID: "lead-5", Email: "e@blocked.io"},  // suppressed
	}, nil)
	f.receipts.EXPECT().ListByRun(ctx, "run-1", 1000).Return([]*model.ActionReceipt{
		{RunID: "run-1", LeadDocID: "lead-1", ActionID: model.ActionEmail, Status: model.ActionStatusComplete},
		{RunID: "run-1", LeadDocID: "lead-4", ActionID: model.ActionEmail, Status: model.ActionStatusSimulated},
		{RunID: "run-1", LeadDocID: "lead-5", ActionID: model.ActionEmail, Status: model.ActionStatusComplete},
		{RunID: "run-1", LeadDocID: "lead-3", ActionID: model.ActionEmail, Status: model.ActionStatusError},
	}, nil)

	f.dncRepo.EXPECT().
		FindFirst(ctx, "org-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, probes []model.DncProbe) (*model.DncEntry, error) {
			for _, p := range probes {
				if p.Normalized == "e@blocked.io" {
					return &model.DncEntry{Type: model.DncTypeEmail, Value: "e@blocked.io"}, nil
				}
			}
			return nil, nil
		}).
		Times(3)

	f.tasks.EXPECT().
		CreateIfAbsent(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, task *model.FollowupTask) (bool, error) {
			assert.Equal(t, model.FollowupTaskID("run-1", task.LeadDocID, 1), task.TaskID)
			assert.Equal(t, model.FollowupStatusPending, task.Status)
			assert.Equal(t, testNow.Add(24*time.Hour).UnixMilli(), task.DueAtMs)
			return task.LeadDocID == "lead-1", nil
		}).
		Times(2)

	// Auto processing is off for the org, so queueing schedules no drain.
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(false), nil)

	result, err := f.svc.Queue(ctx, "org-1", model.QueueFollowupsRequest{
		RunID:      "run-1",
		DelayHours: 24,
		MaxLeads:   10,
		Sequence:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Existing)
	assert.Equal(t, 1, result.SkippedNoEmail)
	assert.Equal(t, 1, result.SkippedNoOutreach)
	assert.Equal(t, 1, result.SkippedDnc)
}

func TestFollowupService_Queue_SchedulesFirstDrain(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	dueAt := testNow.Add(2 * time.Hour).UnixMilli()

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.leads.EXPECT().ListByRun(ctx, "run-1").Return([]model.Lead{
		{DocID: "lead-1", Email: "a@example.com"},
	}, nil)
	f.receipts.EXPECT().ListByRun(ctx, "run-1", 1000).Return([]*model.ActionReceipt{
		{RunID: "run-1", LeadDocID: "lead-1", ActionID: model.ActionEmail, Status: model.ActionStatusComplete},
	}, nil)
	f.expectDncClear(ctx, 1)
	f.tasks.EXPECT().CreateIfAbsent(ctx, gomock.Any()).Return(true, nil)

	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(true), nil)
	f.tasks.EXPECT().NextDueMs(ctx, "run-1").Return(dueAt, nil)
	f.runs.EXPECT().EnsureFollowupToken(ctx, "run-1").Return(followupToken, nil)
	f.queue.EXPECT().
		Enqueue(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, task core.Task) (bool, error) {
			var payload map[string]string
			require.NoError(t, json.Unmarshal(task.Payload, &payload))
			assert.Equal(t, followupToken, payload["workerToken"])
			assert.Equal(t, "run-1", payload["runId"])
			assert.Equal(t, time.UnixMilli(dueAt), task.RunAt)
			return true, nil
		})

	_, err := f.svc.Queue(ctx, "org-1", model.QueueFollowupsRequest{
		RunID:    "run-1",
		MaxLeads: 10,
		Sequence: 1,
	})
	require.NoError(t, err)
}

func TestFollowupService_Queue_ForeignOrg(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)

	_, err := f.svc.Queue(ctx, "other-org", model.QueueFollowupsRequest{RunID: "run-1"})
	require.Error(t, err)
	assert.Equal(t, apperr.ErrCodeNotFound, apperr.GetCode(err))
}

func orgSettings(auto bool) *model.FollowupsOrgSettings {
	return &model.FollowupsOrgSettings{
		OrgID:                 "org-1",
		AutoEnabled:           auto,
		MaxTasksPerInvocation: 10,
		DrainDelaySeconds:     60,
	}
}

func pendingTask(attempts int) *model.FollowupTask {
	return &model.FollowupTask{
		TaskID:    model.FollowupTaskID("run-1", "lead-1", 1),
		RunID:     "run-1",
		LeadDocID: "lead-1",
		UserID:    "user-1",
		Sequence:  1,
		Status:    model.FollowupStatusProcessing,
		Attempts:  attempts,
		Lead: model.FollowupLead{
			CompanyName: "Acme",
			FounderName: "Jo",
			Email:       "a@example.com",
		},
	}
}

func TestFollowupService_Process_DraftsAndRearms(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(true), nil)
	f.tasks.EXPECT().
		Claim(ctx, core.ClaimFollowupParams{
			RunID:        "run-1",
			NowMs:        testNow.UnixMilli(),
			LeaseSeconds: 120,
			MaxTasks:     10,
		}).
		Return([]*model.FollowupTask{pendingTask(0)}, nil)

	f.expectDncClear(ctx, 1)
	f.email.EXPECT().
		Send(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, msg core.EmailMessage) (string, error) {
			assert.Equal(t, "a@example.com", msg.To)
			assert.Contains(t, msg.Subject, "Acme")
			assert.True(t, msg.DraftOnly)
			return "draft-1", nil
		})
	f.tasks.EXPECT().
		Finish(ctx, pendingTask(0).TaskID, model.FollowupStatusCompleted).
		Return(nil)
	f.receipts.EXPECT().
		Upsert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in model.ReceiptInput) (*model.ActionReceipt, error) {
			assert.Equal(t, "followup_1", in.ActionID)
			assert.Equal(t, model.ActionStatusComplete, in.Status)
			return &model.ActionReceipt{}, nil
		})

	// Pending work remains, so a drain re-arm lands on the queue carrying
	// the follow-up worker token.
	nextDue := testNow.Add(2 * time.Hour).UnixMilli()
	f.tasks.EXPECT().NextDueMs(ctx, "run-1").Return(nextDue, nil)
	f.runs.EXPECT().EnsureFollowupToken(ctx, "run-1").Return(followupToken, nil)
	f.queue.EXPECT().
		Enqueue(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, task core.Task) (bool, error) {
			assert.Equal(t, "http://localhost:8080/api/followups/drain", task.URL)
			assert.Equal(t, time.UnixMilli(nextDue), task.RunAt)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(task.Payload, &payload))
			assert.Equal(t, followupToken, payload["workerToken"])
			return true, nil
		})

	result, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Completed)
}

func TestFollowupService_Process_WrongWorkerToken(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil).Times(2)

	_, err := f.svc.Process(ctx, "org-1", "run-1", "stolen-token")
	require.Error(t, err)
	assert.Equal(t, apperr.ErrCodeForbidden, apperr.GetCode(err))

	_, err = f.svc.Process(ctx, "org-1", "run-1", "")
	require.Error(t, err)
	assert.Equal(t, apperr.ErrCodeForbidden, apperr.GetCode(err))
}

func TestFollowupService_Process_TokenNotProvisioned(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	job := followupJob()
	job.FollowupWorkerToken = ""
	f.runs.EXPECT().GetByID(ctx, "run-1").Return(job, nil)

	_, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.Error(t, err)
	assert.Equal(t, apperr.ErrCodeValidation, apperr.GetCode(err))
}

func TestFollowupService_Process_DisabledClaimsNothing(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	// No Claim, no NextDueMs, no Enqueue: the pass ends at the settings.
	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(false), nil)

	result, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.NoError(t, err)
	assert.True(t, result.Disabled)
	assert.Equal(t, 0, result.Processed)
}

func TestFollowupService_Process_NoRearmWhenDrained(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(true), nil)
	f.tasks.EXPECT().Claim(ctx, gomock.Any()).Return(nil, nil)
	f.tasks.EXPECT().NextDueMs(ctx, "run-1").Return(int64(0), nil)

	result, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
}

func TestFollowupService_Process_OverdueRearmWaitsDrainDelay(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(true), nil)
	f.tasks.EXPECT().Claim(ctx, gomock.Any()).Return(nil, nil)

	// The earliest pending task is already overdue, so the re-arm backs off
	// by exactly the org's drain delay instead of firing immediately.
	f.tasks.EXPECT().NextDueMs(ctx, "run-1").Return(testNow.Add(-time.Minute).UnixMilli(), nil)
	f.runs.EXPECT().EnsureFollowupToken(ctx, "run-1").Return(followupToken, nil)
	f.queue.EXPECT().
		Enqueue(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, task core.Task) (bool, error) {
			want := testNow.UnixMilli() + 60*1000
			assert.Equal(t, time.UnixMilli(want), task.RunAt)
			return true, nil
		})

	_, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.NoError(t, err)
}

func TestFollowupService_Process_SkipsTaskWithoutEmail(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	task := pendingTask(0)
	task.Lead.Email = ""

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(true), nil)
	f.tasks.EXPECT().Claim(ctx, gomock.Any()).Return([]*model.FollowupTask{task}, nil)
	f.tasks.EXPECT().Finish(ctx, task.TaskID, model.FollowupStatusSkipped).Return(nil)
	f.receipts.EXPECT().
		Upsert(ctx, gomock.Any()).
		Return(&model.ActionReceipt{}, nil)
	f.tasks.EXPECT().NextDueMs(ctx, "run-1").Return(int64(0), nil)

	result, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
}

func TestFollowupService_Process_SkipsSuppressedLead(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	task := pendingTask(0)

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(true), nil)
	f.tasks.EXPECT().Claim(ctx, gomock.Any()).Return([]*model.FollowupTask{task}, nil)

	// The lead was suppressed after the task was queued; no draft goes out.
	f.dncRepo.EXPECT().
		FindFirst(ctx, "org-1", gomock.Any()).
		Return(&model.DncEntry{
			OrgID: "org-1",
			Type:  model.DncTypeEmail,
			Value: "a@example.com",
		}, nil)
	f.tasks.EXPECT().Finish(ctx, task.TaskID, model.FollowupStatusSkipped).Return(nil)
	f.receipts.EXPECT().
		Upsert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in model.ReceiptInput) (*model.ActionReceipt, error) {
			assert.Equal(t, model.ActionStatusSkipped, in.Status)
			assert.Equal(t, "dnc", in.Data["reason"])
			assert.Equal(t, "a@example.com", in.Data["matched"])
			return &model.ActionReceipt{}, nil
		})
	f.tasks.EXPECT().NextDueMs(ctx, "run-1").Return(int64(0), nil)

	result, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Completed)
}

func TestFollowupService_Process_RetriesFailedDraft(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	task := pendingTask(1)

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(true), nil)
	f.tasks.EXPECT().Claim(ctx, gomock.Any()).Return([]*model.FollowupTask{task}, nil)
	f.expectDncClear(ctx, 1)
	f.email.EXPECT().Send(ctx, gomock.Any()).Return("", errors.New("provider down"))
	f.tasks.EXPECT().
		Retry(ctx, task.TaskID, testNow.Add(5*time.Minute).UnixMilli()).
		Return(nil)
	f.tasks.EXPECT().NextDueMs(ctx, "run-1").Return(int64(0), nil)

	result, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Completed)
}

func TestFollowupService_Process_FailsExhaustedTask(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	task := pendingTask(3)

	f.runs.EXPECT().GetByID(ctx, "run-1").Return(followupJob(), nil)
	f.tasks.EXPECT().GetOrgSettings(ctx, "org-1").Return(orgSettings(true), nil)
	f.tasks.EXPECT().Claim(ctx, gomock.Any()).Return([]*model.FollowupTask{task}, nil)
	f.expectDncClear(ctx, 1)
	f.email.EXPECT().Send(ctx, gomock.Any()).Return("", errors.New("provider down"))
	f.tasks.EXPECT().Fail(ctx, task.TaskID, "provider down").Return(nil)
	f.receipts.EXPECT().
		Upsert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in model.ReceiptInput) (*model.ActionReceipt, error) {
			assert.Equal(t, model.ActionStatusError, in.Status)
			return &model.ActionReceipt{}, nil
		})
	f.tasks.EXPECT().NextDueMs(ctx, "run-1").Return(int64(0), nil)

	result, err := f.svc.Process(ctx, "org-1", "run-1", followupToken)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
}

func TestFollowupService_SaveSettings_Clamps(t *testing.T) {
	t.Parallel()
	f := newFollowupFixture(t)
	ctx := context.Background()

	f.tasks.EXPECT().
		SaveOrgSettings(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, settings *model.FollowupsOrgSettings) error {
			assert.Equal(t, "org-1", settings.OrgID)
			assert.Equal(t, 25, settings.MaxTasksPerInvocation)
			assert.Equal(t, 3600, settings.DrainDelaySeconds)
			return nil
		})

	saved, err := f.svc.SaveSettings(ctx, "org-1", model.FollowupsOrgSettings{
		MaxTasksPerInvocation: 500,
		DrainDelaySeconds:     100000,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, saved.MaxTasksPerInvocation)
}
