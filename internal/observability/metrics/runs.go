package metrics

import (
	"time"

	obserrors "github.com/missionctl/leadrun-engine/internal/observability/errors"
	"github.com/missionctl/leadrun-engine/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// RunMetric captures details about a run lifecycle event for metric emission.
type RunMetric struct {
	Transition string
	Status     string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitRunLifecycle emits standardised run lifecycle metrics.
func EmitRunLifecycle(sink statsd.Sink, in RunMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"status":     in.Status,
		"result":     in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("run.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("run.duration", in.Duration, CloneTags(tags))
	}
}

// TickMetric captures details about one worker tick for metric emission.
type TickMetric struct {
	Status    string
	Processed int
	Failed    int
	Remaining int
	Duration  time.Duration
}

// EmitTick emits per-tick throughput counters, the backlog gauge, and the
// tick timing.
func EmitTick(sink statsd.Sink, in TickMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"status": in.Status}
	sink.Count("tick.count", 1, tags)
	if in.Processed > 0 {
		sink.Count("tick.leads_processed", int64(in.Processed), CloneTags(tags))
	}
	if in.Failed > 0 {
		sink.Count("tick.leads_failed", int64(in.Failed), CloneTags(tags))
	}
	sink.Gauge("tick.leads_remaining", float64(in.Remaining), CloneTags(tags))
	if in.Duration > 0 {
		sink.Timing("tick.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
