package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeQueuePump runs the deferred task delivery pump.
	ServiceModeQueuePump ServiceMode = "queue-pump"
	// ServiceModeReaper runs lease recovery and alert escalation.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeQueuePump, ServiceModeReaper}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeQueuePump, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, queue-pump, reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// WorkerConfig contains tick worker configuration.
type WorkerConfig struct {
	// BatchSize is the maximum number of leads processed per tick. The
	// default of one lead per tick keeps each invocation short and lets the
	// durable queue carry all progress; raising it trades re-arm round trips
	// for longer ticks.
	BatchSize int `env:"WORKER_BATCH_SIZE" envDefault:"1"`

	// LeaseSeconds is the tick lease duration.
	LeaseSeconds int `env:"WORKER_LEASE_SECONDS" envDefault:"90"`

	// MaxAttemptsPerLead caps retries before a lead is marked failed.
	MaxAttemptsPerLead int `env:"WORKER_MAX_ATTEMPTS_PER_LEAD" envDefault:"3"`

	// RetryDelay spaces out the re-tick after a retryable lead failure.
	RetryDelay time.Duration `env:"WORKER_RETRY_DELAY" envDefault:"30s"`
}

// Sanitize applies guardrails to worker configuration values.
func (w *WorkerConfig) Sanitize() {
	if w.BatchSize < 1 {
		w.BatchSize = 1
	}
	if w.BatchSize > 100 {
		w.BatchSize = 100
	}
	if w.LeaseSeconds < 10 {
		w.LeaseSeconds = 10
	}
	if w.MaxAttemptsPerLead < 1 {
		w.MaxAttemptsPerLead = 1
	}
	if w.RetryDelay < time.Second {
		w.RetryDelay = time.Second
	}
}

// DispatchConfig contains tick dispatch configuration.
type DispatchConfig struct {
	// DirectThreshold is the longest delay served by an in-process timer
	// when no durable queue is available.
	DirectThreshold time.Duration `env:"DISPATCH_DIRECT_THRESHOLD" envDefault:"5s"`

	// DedupeTTL is how long a queued task ID suppresses duplicates.
	DedupeTTL time.Duration `env:"DISPATCH_DEDUPE_TTL" envDefault:"24h"`

	// PollInterval is the queue pump's scan interval.
	PollInterval time.Duration `env:"DISPATCH_POLL_INTERVAL" envDefault:"1s"`

	// RetryDelay spaces out redelivery after a failed task delivery.
	RetryDelay time.Duration `env:"DISPATCH_RETRY_DELAY" envDefault:"30s"`
}

// Sanitize applies guardrails to dispatch configuration values.
func (d *DispatchConfig) Sanitize() {
	if d.DirectThreshold <= 0 {
		d.DirectThreshold = 5 * time.Second
	}
	if d.DedupeTTL < time.Minute {
		d.DedupeTTL = time.Minute
	}
	if d.PollInterval < 100*time.Millisecond {
		d.PollInterval = 100 * time.Millisecond
	}
	if d.RetryDelay < time.Second {
		d.RetryDelay = time.Second
	}
}

// RunsConfig contains run intake configuration.
type RunsConfig struct {
	// MinScore drops sourced leads scoring below it before a run starts.
	MinScore float64 `env:"RUNS_MIN_SCORE" envDefault:"0"`

	// MaxLeadsPerRun caps the lead snapshot captured at run start.
	MaxLeadsPerRun int `env:"RUNS_MAX_LEADS" envDefault:"200"`
}

// Sanitize applies guardrails to run intake configuration values.
func (r *RunsConfig) Sanitize() {
	if r.MaxLeadsPerRun < 1 {
		r.MaxLeadsPerRun = 1
	}
	if r.MaxLeadsPerRun > 1000 {
		r.MaxLeadsPerRun = 1000
	}
}

// FollowupsConfig contains follow-up processing configuration.
type FollowupsConfig struct {
	// LeaseSeconds is the task lease duration while a draft is created.
	LeaseSeconds int `env:"FOLLOWUPS_LEASE_SECONDS" envDefault:"120"`

	// MaxAttempts caps retries before a task is marked failed.
	MaxAttempts int `env:"FOLLOWUPS_MAX_ATTEMPTS" envDefault:"3"`

	// RetryDelay spaces out a failed task's next attempt.
	RetryDelay time.Duration `env:"FOLLOWUPS_RETRY_DELAY" envDefault:"5m"`
}

// Sanitize applies guardrails to follow-up configuration values.
func (f *FollowupsConfig) Sanitize() {
	if f.LeaseSeconds < 10 {
		f.LeaseSeconds = 10
	}
	if f.MaxAttempts < 1 {
		f.MaxAttempts = 1
	}
	if f.RetryDelay < time.Second {
		f.RetryDelay = time.Second
	}
}

// MeetingsConfig contains meeting scheduling configuration.
type MeetingsConfig struct {
	// SlotMinutes is the booked meeting duration.
	SlotMinutes int `env:"MEETINGS_SLOT_MINUTES" envDefault:"30"`
}

// Sanitize applies guardrails to meeting configuration values.
func (m *MeetingsConfig) Sanitize() {
	if m.SlotMinutes < 5 {
		m.SlotMinutes = 5
	}
	if m.SlotMinutes > 240 {
		m.SlotMinutes = 240
	}
}

// ReaperConfig contains lease recovery and alert escalation configuration.
type ReaperConfig struct {
	// RecoverInterval is how often orphaned leases are swept.
	RecoverInterval time.Duration `env:"REAPER_RECOVER_INTERVAL" envDefault:"1m"`

	// LeaseGraceSeconds is the slack added past lease expiry before a
	// running job is considered orphaned.
	LeaseGraceSeconds int `env:"REAPER_LEASE_GRACE_SECONDS" envDefault:"30"`

	// EscalateInterval is how often stale open alerts are swept.
	EscalateInterval time.Duration `env:"REAPER_ESCALATE_INTERVAL" envDefault:"5m"`

	// AlertEscalationMinutes is how long an alert may sit unacknowledged
	// before escalation. Zero falls back to the org default.
	AlertEscalationMinutes int `env:"REAPER_ALERT_ESCALATION_MINUTES" envDefault:"30"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	if r.RecoverInterval < 10*time.Second {
		r.RecoverInterval = 10 * time.Second
	}
	if r.LeaseGraceSeconds < 0 {
		r.LeaseGraceSeconds = 0
	}
	if r.EscalateInterval < 30*time.Second {
		r.EscalateInterval = 30 * time.Second
	}
	if r.AlertEscalationMinutes < 0 {
		r.AlertEscalationMinutes = 0
	}
}
