package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// AlertPayload captures the canonical data we emit for run alert notifications.
type AlertPayload struct {
	AlertID       string
	OrgID         string
	RunID         string
	Title         string
	Message       string
	FailureStreak int
	Severity      string
	Escalated     bool
	OccurredAt    time.Time
	Metadata      map[string]string
}

// Sink describes a destination capable of consuming run alert notifications.
type Sink interface {
	SendAlert(ctx context.Context, payload AlertPayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload AlertPayload) error

// SendAlert implements the Sink interface.
func (f SinkFunc) SendAlert(ctx context.Context, payload AlertPayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// Fanout delivers each alert to every configured sink. Sink failures are
// independent; the first error is returned after all sinks have been tried.
type Fanout []Sink

// SendAlert implements the Sink interface.
func (f Fanout) SendAlert(ctx context.Context, payload AlertPayload) error {
	var first error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.SendAlert(ctx, payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}
