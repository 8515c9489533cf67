package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFollowupTaskID_Deterministic(t *testing.T) {
	a := FollowupTaskID("run-1", "lead-1", 1)
	assert.Len(t, a, 32)
	assert.Equal(t, a, FollowupTaskID("run-1", "lead-1", 1))

	assert.NotEqual(t, a, FollowupTaskID("run-1", "lead-1", 2))
	assert.NotEqual(t, a, FollowupTaskID("run-1", "lead-2", 1))
	assert.NotEqual(t, a, FollowupTaskID("run-2", "lead-1", 1))
}

func TestFollowupsOrgSettings_Clamp(t *testing.T) {
	s := FollowupsOrgSettings{MaxTasksPerInvocation: 500, DrainDelaySeconds: 100000}
	s.Clamp()
	assert.Equal(t, 25, s.MaxTasksPerInvocation)
	assert.Equal(t, 3600, s.DrainDelaySeconds)

	s = FollowupsOrgSettings{MaxTasksPerInvocation: 0, DrainDelaySeconds: -5}
	s.Clamp()
	assert.Equal(t, 1, s.MaxTasksPerInvocation)
	assert.Equal(t, 0, s.DrainDelaySeconds)
}

func TestQueueFollowupsRequest_Normalize(t *testing.T) {
	req := QueueFollowupsRequest{}
	req.Normalize()
	assert.Equal(t, 1, req.Sequence)
	assert.Equal(t, 25, req.MaxLeads)
	assert.Equal(t, 0, req.DelayHours)

	req = QueueFollowupsRequest{Sequence: 99, MaxLeads: 500, DelayHours: 10000}
	req.Normalize()
	assert.Equal(t, 10, req.Sequence)
	assert.Equal(t, 25, req.MaxLeads)
	assert.Equal(t, 720, req.DelayHours)
}

func TestFollowupStatus_Valid(t *testing.T) {
	for _, s := range []FollowupStatus{
		FollowupStatusPending, FollowupStatusProcessing, FollowupStatusCompleted,
		FollowupStatusSkipped, FollowupStatusFailed,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, FollowupStatus("archived").Valid())
}
