package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/mocks"
	"github.com/missionctl/leadrun-engine/internal/observability/notify"
)

type quotaFixture struct {
	quota  *mocks.MockQuotaRepository
	alerts *mocks.MockAlertRepository
	sent   []notify.AlertPayload
	svc    *QuotaService
}

func newQuotaFixture(t *testing.T) *quotaFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &quotaFixture{
		quota:  mocks.NewMockQuotaRepository(ctrl),
		alerts: mocks.NewMockAlertRepository(ctrl),
	}
	svc, err := NewQuotaService(QuotaServiceOptions{
		Quota:  f.quota,
		Alerts: f.alerts,
		Notify: notify.SinkFunc(func(_ context.Context, payload notify.AlertPayload) error {
			f.sent = append(f.sent, payload)
			return nil
		}),
		Time: testClock{now: testNow},
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestQuotaService_Summary(t *testing.T) {
	t.Parallel()
	f := newQuotaFixture(t)
	ctx := context.Background()

	settings := model.QuotaSettings{
		MaxRunsPerDay:  10,
		MaxLeadsPerDay: 100,
		MaxActiveRuns:  3,
	}
	f.quota.EXPECT().GetSettings(ctx, "org-1").Return(&settings, nil)
	f.quota.EXPECT().State(ctx, "org-1").Return(&model.OrgQuotaState{
		OrgID:        "org-1",
		WindowKey:    model.UTCDayKey(testNow),
		RunsUsed:     4,
		LeadsUsed:    50,
		ActiveRunIDs: []string{"run-1", "run-2"},
	}, nil)

	summary, err := f.svc.Summary(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.RunsUsed)
	assert.Equal(t, 50, summary.LeadsUsed)
	assert.Equal(t, 2, summary.ActiveRuns)
	assert.Equal(t, 6, summary.RunsRemaining)
	assert.Equal(t, 50, summary.LeadsRemaining)
	assert.Equal(t, 40, summary.RunsPct)
	assert.Equal(t, 50, summary.LeadsPct)
}

func TestQuotaService_Summary_WindowRollover(t *testing.T) {
	t.Parallel()
	f := newQuotaFixture(t)
	ctx := context.Background()

	settings := model.QuotaSettings{MaxRunsPerDay: 10, MaxLeadsPerDay: 100}
	f.quota.EXPECT().GetSettings(ctx, "org-1").Return(&settings, nil)
	f.quota.EXPECT().State(ctx, "org-1").Return(&model.OrgQuotaState{
		OrgID:     "org-1",
		WindowKey: model.UTCDayKey(testNow.AddDate(0, 0, -1)),
		RunsUsed:  9,
		LeadsUsed: 99,
	}, nil)

	summary, err := f.svc.Summary(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RunsUsed)
	assert.Equal(t, 0, summary.LeadsUsed)
	assert.Equal(t, 10, summary.RunsRemaining)
}

func TestQuotaService_RecordOutcome_RaisesAlert(t *testing.T) {
	t.Parallel()
	f := newQuotaFixture(t)
	ctx := context.Background()

	settings := model.DefaultQuotaSettings()
	f.quota.EXPECT().GetSettings(ctx, "org-1").Return(&settings, nil)
	f.quota.EXPECT().
		RecordOutcome(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.RecordOutcomeParams) (*model.OutcomeDecision, error) {
			assert.Equal(t, settings.FailureAlertThreshold, params.AlertThreshold)
			assert.True(t, params.Outcome.Failed)
			return &model.OutcomeDecision{ShouldAlert: true, FailureStreak: 3}, nil
		})
	f.quota.EXPECT().ReleaseRun(ctx, "org-1", "run-1").Return(nil)
	f.alerts.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, alert *model.RunAlert) (*model.RunAlert, error) {
			assert.Equal(t, 3, alert.FailureStreak)
			assert.Equal(t, notify.SeverityWarning, alert.Severity)
			alert.AlertID = "alert-1"
			return alert, nil
		})

	decision, err := f.svc.RecordOutcome(ctx, model.RunOutcome{
		OrgID:         "org-1",
		RunID:         "run-1",
		Failed:        true,
		FailureReason: "channel outage",
	})
	require.NoError(t, err)
	assert.True(t, decision.ShouldAlert)

	require.Len(t, f.sent, 1)
	assert.Equal(t, "alert-1", f.sent[0].AlertID)
	assert.Equal(t, notify.SeverityWarning, f.sent[0].Severity)
	assert.False(t, f.sent[0].Escalated)
}

func TestQuotaService_RecordOutcome_Success(t *testing.T) {
	t.Parallel()
	f := newQuotaFixture(t)
	ctx := context.Background()

	settings := model.DefaultQuotaSettings()
	f.quota.EXPECT().GetSettings(ctx, "org-1").Return(&settings, nil)
	f.quota.EXPECT().
		RecordOutcome(ctx, gomock.Any()).
		Return(&model.OutcomeDecision{ShouldAlert: false, FailureStreak: 0}, nil)
	f.quota.EXPECT().ReleaseRun(ctx, "org-1", "run-1").Return(nil)

	decision, err := f.svc.RecordOutcome(ctx, model.RunOutcome{OrgID: "org-1", RunID: "run-1"})
	require.NoError(t, err)
	assert.False(t, decision.ShouldAlert)
	assert.Empty(t, f.sent)
}

func TestQuotaService_RecordOutcome_ReleaseFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	f := newQuotaFixture(t)
	ctx := context.Background()

	settings := model.DefaultQuotaSettings()
	f.quota.EXPECT().GetSettings(ctx, "org-1").Return(&settings, nil)
	f.quota.EXPECT().
		RecordOutcome(ctx, gomock.Any()).
		Return(&model.OutcomeDecision{}, nil)
	f.quota.EXPECT().ReleaseRun(ctx, "org-1", "run-1").Return(errors.New("ledger busy"))

	_, err := f.svc.RecordOutcome(ctx, model.RunOutcome{OrgID: "org-1", RunID: "run-1"})
	require.NoError(t, err)
}

func TestQuotaService_EscalateStale(t *testing.T) {
	t.Parallel()
	f := newQuotaFixture(t)
	ctx := context.Background()

	cutoff := testNow.Add(-30 * time.Minute)
	stale := []*model.RunAlert{
		{AlertID: "alert-1", OrgID: "org-1", CreatedAt: testNow.Add(-2 * time.Hour)},
		{AlertID: "alert-2", OrgID: "org-1", CreatedAt: testNow.Add(-time.Hour)},
	}
	f.alerts.EXPECT().FindEscalatable(ctx, cutoff, 100).Return(stale, nil)
	f.alerts.EXPECT().MarkEscalated(ctx, "alert-1").Return(nil)
	f.alerts.EXPECT().MarkEscalated(ctx, "alert-2").Return(errors.New("row gone"))

	escalated, err := f.svc.EscalateStale(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, escalated)

	require.Len(t, f.sent, 1)
	assert.True(t, f.sent[0].Escalated)
	assert.Equal(t, notify.SeverityCritical, f.sent[0].Severity)
}

func TestQuotaService_AckAlert(t *testing.T) {
	t.Parallel()
	f := newQuotaFixture(t)
	ctx := context.Background()

	f.alerts.EXPECT().
		Ack(ctx, "alert-1", "user-1").
		Return(&model.RunAlert{AlertID: "alert-1", Status: model.AlertStatusAcked}, nil)

	alert, err := f.svc.AckAlert(ctx, "alert-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusAcked, alert.Status)
}
