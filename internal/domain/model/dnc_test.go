package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDncValue(t *testing.T) {
	tests := []struct {
		name      string
		entryType DncEntryType
		value     string
		want      string
	}{
		{name: "email lowercased", entryType: DncTypeEmail, value: "  Founder@Example.COM ", want: "founder@example.com"},
		{name: "phone strips formatting", entryType: DncTypePhone, value: "+1 (555) 010-2000", want: "+15550102000"},
		{name: "phone parenthesized prefix", entryType: DncTypePhone, value: " (+44) 20 7946 0958", want: "+442079460958"},
		{name: "phone interior plus ignored", entryType: DncTypePhone, value: "555+010", want: "555010"},
		{name: "phone no digits", entryType: DncTypePhone, value: "no digits here", want: ""},
		{name: "domain from url", entryType: DncTypeDomain, value: "https://www.Example.com/pricing", want: "example.com"},
		{name: "domain bare host", entryType: DncTypeDomain, value: "Mail.Corp.io", want: "mail.corp.io"},
		{name: "domain www stripped", entryType: DncTypeDomain, value: "www.example.com", want: "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDncValue(tt.entryType, tt.value))
		})
	}
}

func TestDncEntryID_Deterministic(t *testing.T) {
	a := DncEntryID(DncTypeEmail, "founder@example.com")
	b := DncEntryID(DncTypeEmail, "founder@example.com")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	// Same value under another type is a different entry.
	assert.NotEqual(t, a, DncEntryID(DncTypeDomain, "founder@example.com"))
}

func TestExpandDomainCandidates(t *testing.T) {
	assert.Equal(t,
		[]string{"mail.corp.example.io", "corp.example.io", "example.io"},
		ExpandDomainCandidates("mail.corp.example.io"))

	assert.Equal(t, []string{"example.com"}, ExpandDomainCandidates("example.com"))
	assert.Equal(t, []string{"localhost"}, ExpandDomainCandidates("localhost"))
	assert.Nil(t, ExpandDomainCandidates(""))
}

func TestDncQuery_Candidates(t *testing.T) {
	q := DncQuery{
		Email:  "Founder@Mail.Example.com",
		Phone:  "+1 555 010 2000",
		Domain: "mail.example.com",
	}

	probes := q.Candidates()
	assert.Equal(t, []DncProbe{
		{Type: DncTypeEmail, Normalized: "founder@mail.example.com"},
		{Type: DncTypePhone, Normalized: "+15550102000"},
		{Type: DncTypeDomain, Normalized: "mail.example.com"},
		{Type: DncTypeDomain, Normalized: "example.com"},
	}, probes)
}

func TestDncQuery_Candidates_SkipsEmpty(t *testing.T) {
	assert.Empty(t, DncQuery{}.Candidates())

	// A phone that normalizes to nothing produces no probe.
	probes := DncQuery{Phone: "ext only"}.Candidates()
	assert.Empty(t, probes)
}
