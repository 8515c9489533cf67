package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - http",
			input: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
		},
		{
			name:  "single service - reaper",
			input: "reaper",
			expected: map[ServiceMode]bool{
				ServiceModeReaper: true,
			},
		},
		{
			name:  "all services",
			input: "http,queue-pump,reaper",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:      true,
				ServiceModeQueuePump: true,
				ServiceModeReaper:    true,
			},
		},
		{
			name:  "services with spaces",
			input: " http , queue-pump ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:      true,
				ServiceModeQueuePump: true,
			},
		},
		{
			name:  "duplicate services",
			input: "http,http,reaper",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModeReaper: true,
			},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,frontend",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,,",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("ParseServices(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseServices(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseServices(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
	if cfg.Worker.BatchSize != 1 {
		t.Errorf("Worker.BatchSize = %d, want 1", cfg.Worker.BatchSize)
	}
	if cfg.Worker.LeaseSeconds != 90 {
		t.Errorf("Worker.LeaseSeconds = %d, want 90", cfg.Worker.LeaseSeconds)
	}
	if cfg.Worker.MaxAttemptsPerLead != 3 {
		t.Errorf("Worker.MaxAttemptsPerLead = %d, want 3", cfg.Worker.MaxAttemptsPerLead)
	}
	if cfg.Dispatch.DirectThreshold != 5*time.Second {
		t.Errorf("Dispatch.DirectThreshold = %v, want 5s", cfg.Dispatch.DirectThreshold)
	}
	if cfg.Followups.LeaseSeconds != 120 {
		t.Errorf("Followups.LeaseSeconds = %d, want 120", cfg.Followups.LeaseSeconds)
	}
	if cfg.Meetings.SlotMinutes != 30 {
		t.Errorf("Meetings.SlotMinutes = %d, want 30", cfg.Meetings.SlotMinutes)
	}
	if !cfg.IsHTTPServerEnabled() || !cfg.IsQueuePumpEnabled() || !cfg.IsReaperEnabled() {
		t.Error("expected http, queue-pump, and reaper enabled by default")
	}
	if cfg.Auth.Enabled() {
		t.Error("expected auth disabled without API_KEY")
	}
}

func TestHTTPConfigURLs(t *testing.T) {
	h := HTTPConfig{BaseURL: "https://leadrun.example.com/"}
	h.Sanitize()

	if got := h.TickURL(); got != "https://leadrun.example.com/api/worker/tick" {
		t.Errorf("TickURL() = %q", got)
	}
	if got := h.DrainURL(); got != "https://leadrun.example.com/api/followups/drain" {
		t.Errorf("DrainURL() = %q", got)
	}
}

func TestSanitizeClampsOutOfRangeValues(t *testing.T) {
	cfg := AppConfig{
		Services: "http",
		Worker:   WorkerConfig{BatchSize: 0, LeaseSeconds: 1, MaxAttemptsPerLead: -1},
		Runs:     RunsConfig{MaxLeadsPerRun: 100000},
		Reaper:   ReaperConfig{RecoverInterval: time.Millisecond, EscalateInterval: time.Second},
		Meetings: MeetingsConfig{SlotMinutes: 2},
	}
	cfg.Sanitize()

	if cfg.Worker.BatchSize != 1 {
		t.Errorf("Worker.BatchSize = %d, want 1", cfg.Worker.BatchSize)
	}
	if cfg.Worker.LeaseSeconds != 10 {
		t.Errorf("Worker.LeaseSeconds = %d, want 10", cfg.Worker.LeaseSeconds)
	}
	if cfg.Worker.MaxAttemptsPerLead != 1 {
		t.Errorf("Worker.MaxAttemptsPerLead = %d, want 1", cfg.Worker.MaxAttemptsPerLead)
	}
	if cfg.Runs.MaxLeadsPerRun != 1000 {
		t.Errorf("Runs.MaxLeadsPerRun = %d, want 1000", cfg.Runs.MaxLeadsPerRun)
	}
	if cfg.Reaper.RecoverInterval != 10*time.Second {
		t.Errorf("Reaper.RecoverInterval = %v, want 10s", cfg.Reaper.RecoverInterval)
	}
	if cfg.Reaper.EscalateInterval != 30*time.Second {
		t.Errorf("Reaper.EscalateInterval = %v, want 30s", cfg.Reaper.EscalateInterval)
	}
	if cfg.Meetings.SlotMinutes != 5 {
		t.Errorf("Meetings.SlotMinutes = %d, want 5", cfg.Meetings.SlotMinutes)
	}
}
