package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	apperr "github.com/missionctl/leadrun-engine/internal/errors"
	"github.com/missionctl/leadrun-engine/internal/mocks"
	"github.com/missionctl/leadrun-engine/internal/service"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type workerHandlerFixture struct {
	runs        *mocks.MockRunRepository
	quota       *mocks.MockQuotaRepository
	idempotency *mocks.MockIdempotencyRepository
	handlers    *WorkerHandlers
}

func newWorkerHandlerFixture(t *testing.T) *workerHandlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	clock := fixedClock{now: time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)}

	f := &workerHandlerFixture{
		runs:        mocks.NewMockRunRepository(ctrl),
		quota:       mocks.NewMockQuotaRepository(ctrl),
		idempotency: mocks.NewMockIdempotencyRepository(ctrl),
	}

	dnc, err := service.NewDncService(service.DncServiceOptions{Repo: mocks.NewMockDncRepository(ctrl)})
	require.NoError(t, err)
	outcomes, err := service.NewQuotaService(service.QuotaServiceOptions{
		Quota:  f.quota,
		Alerts: mocks.NewMockAlertRepository(ctrl),
		Time:   clock,
	})
	require.NoError(t, err)

	svc, err := service.NewWorkerService(service.WorkerOptions{
		Runs:     f.runs,
		Leads:    mocks.NewMockLeadRepository(ctrl),
		Receipts: mocks.NewMockReceiptRepository(ctrl),
		Dnc:      dnc,
		Outcomes: outcomes,
		Logger:   discardLogger(),
		Time:     clock,
	})
	require.NoError(t, err)

	f.handlers = &WorkerHandlers{
		Svc:         svc,
		Idempotency: f.idempotency,
		Logger:      discardLogger(),
	}
	return f
}

// expectEmptyTick wires the repository calls one tick over a drained run makes:
// claim, finalize as completed, settle the quota outcome.
func (f *workerHandlerFixture) expectEmptyTick() {
	job := &model.LeadRunJob{
		RunID:          "run-1",
		OrgID:          "org-1",
		UserID:         "user-1",
		Status:         model.RunStatusRunning,
		Config:         model.RunConfig{TimeZone: "UTC"},
		WorkerToken:    "token-1",
		AttemptsByLead: map[string]int{},
	}
	f.runs.EXPECT().
		ClaimTick(gomock.Any(), gomock.Any()).
		Return(job, nil)
	f.runs.EXPECT().
		FinalizeTick(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.FinalizeTickParams) (*model.LeadRunJob, error) {
			final := *job
			final.Status = params.Status
			final.NextIndex = params.NextIndex
			return &final, nil
		})

	settings := model.DefaultQuotaSettings()
	f.quota.EXPECT().GetSettings(gomock.Any(), "org-1").Return(&settings, nil)
	f.quota.EXPECT().RecordOutcome(gomock.Any(), gomock.Any()).Return(&model.OutcomeDecision{}, nil)
	f.quota.EXPECT().ReleaseRun(gomock.Any(), "org-1", "run-1").Return(nil)
}

func tickRequest(t *testing.T, taskID string) *http.Request {
	t.Helper()
	body := `{"runId":"run-1","workerToken":"token-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/worker/tick", strings.NewReader(body))
	if taskID != "" {
		req.Header.Set("X-Task-ID", taskID)
	}
	return req
}

func TestWorkerHandlers_Tick_FreshDelivery(t *testing.T) {
	t.Parallel()
	f := newWorkerHandlerFixture(t)

	recordID := core.IdempotencyRecordID("run-1", "worker_tick", "task-abc")
	f.idempotency.EXPECT().
		Reserve(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *core.IdempotencyRecord) (*core.IdempotencyRecord, bool, error) {
			assert.Equal(t, recordID, rec.ID)
			assert.Equal(t, "run-1", rec.UID)
			assert.Equal(t, "task-abc", rec.Key)
			return nil, true, nil
		})
	f.expectEmptyTick()

	var saved []byte
	f.idempotency.EXPECT().
		SaveResponse(gomock.Any(), recordID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, response []byte) error {
			saved = response
			return nil
		})

	rec := httptest.NewRecorder()
	f.handlers.Tick(rec, tickRequest(t, "task-abc"))

	require.Equal(t, http.StatusOK, rec.Code)

	var result service.TickResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, model.RunStatusCompleted, result.Status)
	assert.JSONEq(t, rec.Body.String(), string(saved))
}

func TestWorkerHandlers_Tick_ReplayWithStoredResponse(t *testing.T) {
	t.Parallel()
	f := newWorkerHandlerFixture(t)

	stored := &core.IdempotencyRecord{
		ID:       core.IdempotencyRecordID("run-1", "worker_tick", "task-abc"),
		Response: []byte(`{"runId":"run-1","status":"completed"}`),
	}
	f.idempotency.EXPECT().
		Reserve(gomock.Any(), gomock.Any()).
		Return(stored, false, nil)

	rec := httptest.NewRecorder()
	f.handlers.Tick(rec, tickRequest(t, "task-abc"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, string(stored.Response), rec.Body.String())
}

func TestWorkerHandlers_Tick_ReplayInFlight(t *testing.T) {
	t.Parallel()
	f := newWorkerHandlerFixture(t)

	// A reserved record without a response means the first delivery has not
	// finished yet.
	f.idempotency.EXPECT().
		Reserve(gomock.Any(), gomock.Any()).
		Return(&core.IdempotencyRecord{}, false, nil)

	rec := httptest.NewRecorder()
	f.handlers.Tick(rec, tickRequest(t, "task-abc"))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"replayed":true}`, rec.Body.String())
}

func TestWorkerHandlers_Tick_NoTaskIDSkipsGuard(t *testing.T) {
	t.Parallel()
	f := newWorkerHandlerFixture(t)

	f.expectEmptyTick()

	rec := httptest.NewRecorder()
	f.handlers.Tick(rec, tickRequest(t, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWorkerHandlers_Tick_MissingFields(t *testing.T) {
	t.Parallel()
	f := newWorkerHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/worker/tick", strings.NewReader(`{"runId":"run-1"}`))
	rec := httptest.NewRecorder()
	f.handlers.Tick(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_request", body["error"])
}

func TestWorkerHandlers_Tick_WrongToken(t *testing.T) {
	t.Parallel()
	f := newWorkerHandlerFixture(t)

	f.runs.EXPECT().
		ClaimTick(gomock.Any(), gomock.Any()).
		Return(nil, apperr.Conflict("worker token mismatch"))

	rec := httptest.NewRecorder()
	f.handlers.Tick(rec, tickRequest(t, ""))

	assert.Equal(t, http.StatusConflict, rec.Code)
}
