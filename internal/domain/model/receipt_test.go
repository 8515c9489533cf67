package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeActionID(t *testing.T) {
	assert.Equal(t, "email", SafeActionID("email"))
	assert.Equal(t, "followup_1", SafeActionID("followup_1"))
	assert.Equal(t, "a_b_c", SafeActionID("a/b c"))
	assert.Len(t, SafeActionID(strings.Repeat("x", 300)), 120)
}

func TestActionIdempotencyKey(t *testing.T) {
	key := ActionIdempotencyKey("run-1", "lead-1", ActionEmail)
	assert.Equal(t, "run-1:lead-1:email", key)
}

func TestReceiptInput_Validate(t *testing.T) {
	valid := ReceiptInput{
		RunID:     "run-1",
		LeadDocID: "lead-1",
		ActionID:  ActionEmail,
		Status:    ActionStatusComplete,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ReceiptInput)
	}{
		{name: "missing run id", mutate: func(in *ReceiptInput) { in.RunID = " " }},
		{name: "missing lead doc id", mutate: func(in *ReceiptInput) { in.LeadDocID = "" }},
		{name: "missing action id", mutate: func(in *ReceiptInput) { in.ActionID = "" }},
		{name: "invalid status", mutate: func(in *ReceiptInput) { in.Status = "partial" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.Error(t, in.Validate())
		})
	}
}

func TestLead_EmailDomain(t *testing.T) {
	lead := &Lead{Email: "founder@mail.example.com"}
	assert.Equal(t, "mail.example.com", lead.EmailDomain())

	assert.Empty(t, (&Lead{Email: "not-an-email"}).EmailDomain())
	assert.Empty(t, (&Lead{Email: "dangling@"}).EmailDomain())
	assert.Empty(t, (&Lead{}).EmailDomain())
}

func TestLead_DisplayName(t *testing.T) {
	assert.Equal(t, "Jo Founder", (&Lead{FounderName: " Jo Founder "}).DisplayName())
	assert.Equal(t, "there", (&Lead{}).DisplayName())
}
