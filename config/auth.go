package config

import "strings"

// AuthConfig contains API authentication configuration.
//
// Owner-facing endpoints authenticate with the static API key and identify
// the caller through the X-Org-ID and X-User-ID headers set by the gateway.
// Worker endpoints authenticate per run with the run's worker token instead.
type AuthConfig struct {
	// APIKey is the shared key expected in the Authorization header
	// (Bearer scheme) on owner-facing endpoints. Empty disables the check,
	// which is only acceptable in development.
	APIKey string `env:"API_KEY"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.APIKey = strings.TrimSpace(a.APIKey)
}

// Enabled reports whether API key checking is active.
func (a *AuthConfig) Enabled() bool {
	return a.APIKey != ""
}
