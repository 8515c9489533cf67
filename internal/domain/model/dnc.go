package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DncEntryType classifies a Do-Not-Contact block-list entry.
type DncEntryType string

const (
	// DncTypeEmail blocks a single email address.
	DncTypeEmail DncEntryType = "email"
	// DncTypePhone blocks a single phone number.
	DncTypePhone DncEntryType = "phone"
	// DncTypeDomain blocks a domain and all of its subdomains.
	DncTypeDomain DncEntryType = "domain"
)

// Valid returns true if the DncEntryType is valid.
func (t DncEntryType) Valid() bool {
	return t == DncTypeEmail || t == DncTypePhone || t == DncTypeDomain
}

// DncEntry is one block-list entry. Its ID is a pure function of the
// normalized value, so upserts are naturally idempotent and lookups are point
// reads rather than scans.
type DncEntry struct {
	EntryID    string       `json:"entryId"          db:"entry_id"`
	OrgID      string       `json:"orgId"            db:"org_id"`
	Type       DncEntryType `json:"type"             db:"type"`
	Value      string       `json:"value"            db:"value"`
	Normalized string       `json:"normalized"       db:"normalized"`
	Reason     *string      `json:"reason,omitempty" db:"reason"`
	CreatedBy  string       `json:"createdBy"        db:"created_by"`
	CreatedAt  time.Time    `json:"createdAt"        db:"created_at"`
	UpdatedAt  time.Time    `json:"updatedAt"        db:"updated_at"`
}

// NormalizeDncValue reduces a raw value to its canonical form for the given
// type: emails are lower-cased and trimmed, phones are reduced to a leading
// "+" plus digits, and domains are URL-normalized with a leading "www."
// label stripped.
func NormalizeDncValue(entryType DncEntryType, value string) string {
	switch entryType {
	case DncTypeEmail:
		return strings.ToLower(strings.TrimSpace(value))
	case DncTypePhone:
		return normalizePhone(value)
	case DncTypeDomain:
		return NormalizeDomain(value)
	default:
		return strings.TrimSpace(value)
	}
}

func normalizePhone(value string) string {
	// Formatting characters drop first, so "(+44) 20..." still keeps its
	// international prefix even though the "+" is not the leading rune.
	var cleaned strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if (r >= '0' && r <= '9') || r == '+' {
			cleaned.WriteRune(r)
		}
	}
	international := strings.HasPrefix(cleaned.String(), "+")

	var digits strings.Builder
	for _, r := range cleaned.String() {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	if international {
		return "+" + digits.String()
	}
	return digits.String()
}

// NormalizeDomain extracts a bare host from a raw domain or URL, lower-cased
// and with any leading "www." stripped.
func NormalizeDomain(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ""
	}

	raw := trimmed
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}

	// Unparseable input: best-effort strip of path and www prefix.
	host := strings.TrimPrefix(trimmed, "www.")
	if idx := strings.IndexByte(host, '/'); idx >= 0 {
		host = host[:idx]
	}
	if host == "" {
		return trimmed
	}
	return host
}

// DncEntryID computes the stable identifier for a normalized value.
func DncEntryID(entryType DncEntryType, normalized string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", entryType, normalized)))
	return hex.EncodeToString(sum[:])[:32]
}

// ExpandDomainCandidates expands a domain into itself plus every
// parent-domain suffix, so a block on "example.com" also matches
// "mail.example.com" but never "notexample.com".
func ExpandDomainCandidates(domain string) []string {
	normalized := NormalizeDomain(domain)
	parts := splitNonEmpty(normalized, ".")
	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 {
		return []string{normalized}
	}

	seen := make(map[string]struct{}, len(parts)-1)
	candidates := make([]string, 0, len(parts)-1)
	for i := 0; i <= len(parts)-2; i++ {
		candidate := strings.Join(parts[i:], ".")
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}
	return candidates
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DncQuery carries the identifiers to screen before outbound contact.
// FindMatch checks email, then phone, then domain, short-circuiting on the
// first hit.
type DncQuery struct {
	Email  string
	Phone  string
	Domain string
}

// Candidates expands the query into (type, normalized) probe pairs in match
// priority order.
func (q DncQuery) Candidates() []DncProbe {
	var probes []DncProbe
	if email := NormalizeDncValue(DncTypeEmail, q.Email); q.Email != "" && email != "" {
		probes = append(probes, DncProbe{Type: DncTypeEmail, Normalized: email})
	}
	if phone := NormalizeDncValue(DncTypePhone, q.Phone); q.Phone != "" && phone != "" {
		probes = append(probes, DncProbe{Type: DncTypePhone, Normalized: phone})
	}
	if q.Domain != "" {
		for _, candidate := range ExpandDomainCandidates(q.Domain) {
			probes = append(probes, DncProbe{Type: DncTypeDomain, Normalized: candidate})
		}
	}
	return probes
}

// DncProbe is one normalized lookup candidate.
type DncProbe struct {
	Type       DncEntryType
	Normalized string
}

// EntryID returns the point-read identifier for the probe.
func (p DncProbe) EntryID() string {
	return DncEntryID(p.Type, p.Normalized)
}
