package metrics

import (
	"testing"
	"time"

	apperr "github.com/missionctl/leadrun-engine/internal/errors"
)

type recordedMetric struct {
	name  string
	value float64
	tags  map[string]string
}

type recordingSink struct {
	counts  []recordedMetric
	gauges  []recordedMetric
	timings []recordedMetric
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.counts = append(s.counts, recordedMetric{name: name, value: float64(value), tags: tags})
}

func (s *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.gauges = append(s.gauges, recordedMetric{name: name, value: value, tags: tags})
}

func (s *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.timings = append(s.timings, recordedMetric{name: name, value: float64(value), tags: tags})
}

func TestEmitRunLifecycle(t *testing.T) {
	sink := &recordingSink{}
	EmitRunLifecycle(sink, RunMetric{
		Transition: "start",
		Status:     "queued",
		Result:     ResultSuccess,
		Duration:   25 * time.Millisecond,
	})

	if len(sink.counts) != 1 || sink.counts[0].name != "run.transition" {
		t.Fatalf("counts = %+v, want one run.transition", sink.counts)
	}
	if got := sink.counts[0].tags["transition"]; got != "start" {
		t.Errorf("transition tag = %q, want %q", got, "start")
	}
	if len(sink.timings) != 1 || sink.timings[0].name != "run.duration" {
		t.Errorf("timings = %+v, want one run.duration", sink.timings)
	}
}

func TestEmitRunLifecycle_TagsErrorClass(t *testing.T) {
	sink := &recordingSink{}
	EmitRunLifecycle(sink, RunMetric{
		Transition: "start",
		Status:     "failed",
		Result:     ResultError,
		Err:        apperr.Capacity("org quota exhausted"),
	})

	if len(sink.counts) != 1 {
		t.Fatalf("counts = %+v, want one entry", sink.counts)
	}
	if got := sink.counts[0].tags["error_class"]; got != "capacity" {
		t.Errorf("error_class tag = %q, want %q", got, "capacity")
	}
}

func TestEmitTick(t *testing.T) {
	sink := &recordingSink{}
	EmitTick(sink, TickMetric{
		Status:    "running",
		Processed: 1,
		Remaining: 4,
		Duration:  10 * time.Millisecond,
	})

	if len(sink.counts) != 2 {
		t.Fatalf("counts = %+v, want tick.count and tick.leads_processed", sink.counts)
	}
	if len(sink.gauges) != 1 || sink.gauges[0].name != "tick.leads_remaining" {
		t.Fatalf("gauges = %+v, want one tick.leads_remaining", sink.gauges)
	}
	if sink.gauges[0].value != 4 {
		t.Errorf("tick.leads_remaining = %v, want 4", sink.gauges[0].value)
	}
}

func TestEmitTick_ZeroBacklogStillGauged(t *testing.T) {
	sink := &recordingSink{}
	EmitTick(sink, TickMetric{Status: "completed"})

	if len(sink.gauges) != 1 || sink.gauges[0].value != 0 {
		t.Fatalf("gauges = %+v, want a single zero tick.leads_remaining", sink.gauges)
	}
}

func TestEmitTick_NilSink(t *testing.T) {
	EmitTick(nil, TickMetric{Status: "running"})
	EmitRunLifecycle(nil, RunMetric{Transition: "start"})
}
