package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUTCDayKey(t *testing.T) {
	// Late evening in a western timezone is already the next UTC day.
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	local := time.Date(2025, 3, 10, 22, 30, 0, 0, chicago)
	assert.Equal(t, "2025-03-11", UTCDayKey(local))

	assert.Equal(t, "2025-03-10", UTCDayKey(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestSanitizeOrgID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "passthrough", input: "org-42_A", want: "org-42_A"},
		{name: "trims whitespace", input: "  org-1  ", want: "org-1"},
		{name: "replaces specials", input: "acme corp/eu", want: "acme_corp_eu"},
		{name: "empty maps to default", input: "   ", want: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeOrgID(tt.input))
		})
	}

	long := SanitizeOrgID(strings.Repeat("a", 200))
	assert.Len(t, long, 120)
}

func TestDefaultQuotaSettings(t *testing.T) {
	s := DefaultQuotaSettings()
	assert.Equal(t, 80, s.MaxRunsPerDay)
	assert.Equal(t, 1200, s.MaxLeadsPerDay)
	assert.Equal(t, 3, s.MaxActiveRuns)
	assert.Equal(t, 3, s.FailureAlertThreshold)
	assert.Equal(t, 30, s.AlertEscalationMinutes)
}
