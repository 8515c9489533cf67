package model

import (
	"strings"
	"time"
)

// Lead is the per-run snapshot of a sourced lead.
type Lead struct {
	DocID        string     `json:"docId"                  db:"doc_id"`
	RunID        string     `json:"runId"                  db:"run_id"`
	CompanyName  string     `json:"companyName"            db:"company_name"`
	FounderName  string     `json:"founderName"            db:"founder_name"`
	Email        string     `json:"email"                  db:"email"`
	Phone        string     `json:"phone"                  db:"phone"`
	Website      string     `json:"website"                db:"website"`
	Industry     string     `json:"industry"               db:"industry"`
	Source       string     `json:"source"                 db:"source"`
	Score        float64    `json:"score"                  db:"score"`
	JobStatus    string     `json:"jobStatus"              db:"job_status"`
	JobLastError *string    `json:"jobLastError,omitempty" db:"job_last_error"`
	CreatedAt    time.Time  `json:"createdAt"              db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt"              db:"updated_at"`
}

// EmailDomain returns the domain part of the lead's email address, or "" when
// the lead has no usable email.
func (l *Lead) EmailDomain() string {
	email := strings.TrimSpace(l.Email)
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}

// DisplayName returns the best salutation available for outreach copy.
func (l *Lead) DisplayName() string {
	if name := strings.TrimSpace(l.FounderName); name != "" {
		return name
	}
	return "there"
}
