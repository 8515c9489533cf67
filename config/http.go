package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://leadrun.example.com").
	// Used to derive the tick and drain endpoints that queued tasks are
	// delivered back to.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	if h.BaseURL == "" {
		h.BaseURL = "http://localhost:8080"
	}
}

// TickURL returns the endpoint queued tick tasks are delivered to.
func (h *HTTPConfig) TickURL() string {
	return h.BaseURL + "/api/worker/tick"
}

// DrainURL returns the endpoint drain re-arm tasks are delivered to.
func (h *HTTPConfig) DrainURL() string {
	return h.BaseURL + "/api/followups/drain"
}
