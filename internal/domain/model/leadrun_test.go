package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatus_Terminal(t *testing.T) {
	assert.True(t, RunStatusCompleted.Terminal())
	assert.True(t, RunStatusFailed.Terminal())
	assert.False(t, RunStatusQueued.Terminal())
	assert.False(t, RunStatusRunning.Terminal())
	assert.False(t, RunStatusPaused.Terminal())
}

func TestRunConfig_Validate(t *testing.T) {
	cfg := RunConfig{TimeZone: "America/Chicago"}
	require.NoError(t, cfg.Validate())

	cfg = RunConfig{TimeZone: "  "}
	assert.Error(t, cfg.Validate())

	cfg = RunConfig{TimeZone: "Mars/Olympus_Mons"}
	assert.Error(t, cfg.Validate())
}

func TestStartRunRequest_Validate(t *testing.T) {
	req := StartRunRequest{
		RunID:  "run-1",
		UserID: "user-1",
		Config: RunConfig{TimeZone: "UTC"},
	}
	require.NoError(t, req.Validate())

	missingRun := req
	missingRun.RunID = " "
	assert.Error(t, missingRun.Validate())

	missingUser := req
	missingUser.UserID = ""
	assert.Error(t, missingUser.Validate())

	badConfig := req
	badConfig.Config.TimeZone = ""
	assert.Error(t, badConfig.Validate())
}

func TestDiagnostics_Merge(t *testing.T) {
	base := Diagnostics{ProcessedLeads: 3, EmailsSent: 2, DncBlocked: 1}
	delta := Diagnostics{ProcessedLeads: 2, FailedLeads: 1, DncBlocked: 1}

	merged := base.Merge(delta)

	assert.Equal(t, 5, merged.ProcessedLeads)
	assert.Equal(t, 1, merged.FailedLeads)
	assert.Equal(t, 2, merged.EmailsSent)
	assert.Equal(t, 2, merged.DncBlocked)

	// Merge must not mutate its receiver.
	assert.Equal(t, 3, base.ProcessedLeads)
}

func TestLeadRunJob_Completed(t *testing.T) {
	job := &LeadRunJob{NextIndex: 2, TotalLeads: 3}
	assert.False(t, job.Completed())

	job.NextIndex = 3
	assert.True(t, job.Completed())
}

func TestLeadRunJob_Active(t *testing.T) {
	for _, status := range []RunStatus{RunStatusQueued, RunStatusRunning, RunStatusPaused} {
		job := &LeadRunJob{Status: status}
		assert.True(t, job.Active(), string(status))
	}
	for _, status := range []RunStatus{RunStatusCompleted, RunStatusFailed} {
		job := &LeadRunJob{Status: status}
		assert.False(t, job.Active(), string(status))
	}
}

func TestLeadRunJob_Projection_QueueLag(t *testing.T) {
	updated := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	job := &LeadRunJob{
		RunID:     "run-1",
		Status:    RunStatusQueued,
		UpdatedAt: updated,
	}

	p := job.Projection(updated.Add(45 * time.Second))
	require.NotNil(t, p.QueueLagSeconds)
	assert.Equal(t, int64(45), *p.QueueLagSeconds)

	// Clock skew must not produce negative lag.
	p = job.Projection(updated.Add(-5 * time.Second))
	require.NotNil(t, p.QueueLagSeconds)
	assert.Equal(t, int64(0), *p.QueueLagSeconds)
}

func TestLeadRunJob_Projection_NoLagForRunning(t *testing.T) {
	job := &LeadRunJob{
		RunID:     "run-1",
		Status:    RunStatusRunning,
		UpdatedAt: time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
	}

	p := job.Projection(job.UpdatedAt.Add(time.Minute))
	assert.Nil(t, p.QueueLagSeconds)
}
