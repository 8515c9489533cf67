package slack

import (
	"strings"
	"testing"
	"time"

	"github.com/missionctl/leadrun-engine/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#alerts",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.AlertPayload{
		AlertID:       "alert-1",
		OrgID:         "org-1",
		RunID:         "run-123",
		Title:         "3 consecutive run failures",
		Message:       "boom",
		FailureStreak: 3,
		Severity:      "warning",
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#alerts" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	if !containsAll(
		text,
		[]string{"Run failure alert", "org-1", "run-123", "3 consecutive run failures", "boom", "warning"},
	) {
		t.Fatalf("message text missing fields: %s", text)
	}
}

func TestFormatMessageRunLink(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL:   "https://hooks.slack.com/services/test",
		RunURLPrefix: "https://app.leadrun.local/runs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.AlertPayload{
		RunID: "run-123",
	})

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}

	expected := "<https://app.leadrun.local/runs/run-123|run-123>"
	if !strings.Contains(text, expected) {
		t.Fatalf("expected run link %q in text: %s", expected, text)
	}
}

func TestFormatMessageEscapesTitle(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.AlertPayload{
		RunID: "run-123",
		Title: "failed & <stuck>",
	})

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}

	if !strings.Contains(text, "failed &amp; &lt;stuck&gt;") {
		t.Fatalf("expected escaped title, got: %s", text)
	}
}

func TestFormatRunValuePermutations(t *testing.T) {
	tcs := []struct {
		name   string
		runID  string
		prefix string
		want   string
	}{
		{
			name:   "id with link",
			runID:  "run-1",
			prefix: "https://app.example/runs",
			want:   "<https://app.example/runs/run-1|run-1>",
		},
		{
			name:   "id without link",
			runID:  "run-2",
			prefix: "not a url",
			want:   "run-2",
		},
		{
			name:   "empty input",
			prefix: "https://app.example/runs",
			want:   "",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(Config{
				WebhookURL:   "https://hooks.slack.com/services/test",
				RunURLPrefix: tc.prefix,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := client.formatRunValue(tc.runID)
			if got != tc.want {
				t.Fatalf("formatRunValue(%q) = %q, want %q", tc.runID, got, tc.want)
			}
		})
	}
}

func containsAll(text string, substrs []string) bool {
	for _, s := range substrs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}
