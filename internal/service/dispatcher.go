package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/missionctl/leadrun-engine/internal/core"
)

// Route records how a tick dispatch was delivered.
type Route string

const (
	// RouteQueued means the tick was scheduled on the durable queue.
	RouteQueued Route = "queued"
	// RouteDirect means the tick was invoked immediately in-process.
	RouteDirect Route = "direct"
	// RouteDeduped means an identical tick was already scheduled.
	RouteDeduped Route = "deduped"
	// RouteSkipped means no queue exists and the delay is too long to hold.
	RouteSkipped Route = "skipped"
)

// directDispatchThreshold is the longest delay the dispatcher will serve by
// sleeping in-process when no durable queue is configured.
const directDispatchThreshold = 5 * time.Second

// TickInvoker is the dispatcher's downstream: something that can run one
// worker tick for a run.
type TickInvoker interface {
	InvokeTick(ctx context.Context, runID, workerToken string) error
}

// DispatcherConfig holds the dispatcher's tunables.
type DispatcherConfig struct {
	// TickURL is the worker tick endpoint queued tasks are delivered to.
	TickURL string
	// DirectThreshold overrides the default in-process dispatch cutoff.
	DirectThreshold time.Duration
}

// DispatcherOptions groups dependencies for Dispatcher.
type DispatcherOptions struct {
	Queue   core.TaskQueue // Optional: durable queue; absent means direct-or-skip
	Invoker TickInvoker    // Required: in-process tick execution
	Config  DispatcherConfig
	Logger  *slog.Logger
	Time    core.TimeProvider
}

// Dispatcher delivers worker ticks either through the durable queue or by
// direct in-process invocation. Task ids are derived deterministically from
// the run id and the scheduled second, so duplicate dispatches of the same
// tick collapse.
type Dispatcher struct {
	queue   core.TaskQueue
	invoker TickInvoker
	cfg     DispatcherConfig
	logger  *slog.Logger
	time    core.TimeProvider
}

// NewDispatcher constructs a new Dispatcher.
func NewDispatcher(opts DispatcherOptions) (*Dispatcher, error) {
	if opts.Invoker == nil {
		return nil, errors.New("TickInvoker is required")
	}
	cfg := opts.Config
	if cfg.DirectThreshold <= 0 {
		cfg.DirectThreshold = directDispatchThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = systemTime{}
	}
	return &Dispatcher{
		queue:   opts.Queue,
		invoker: opts.Invoker,
		cfg:     cfg,
		logger:  logger,
		time:    tp,
	}, nil
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// TickTaskID derives the deterministic task id for a (run, scheduled second)
// pair.
func TickTaskID(runID string, scheduleSeconds int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", runID, scheduleSeconds)))
	return hex.EncodeToString(sum[:])[:32]
}

// DispatchRequest carries the parameters for one tick dispatch.
type DispatchRequest struct {
	RunID       string
	WorkerToken string
	Delay       time.Duration
}

// tickPayload is the wire body delivered to the tick endpoint.
type tickPayload struct {
	RunID       string `json:"runId"`
	WorkerToken string `json:"workerToken"`
}

// Dispatch schedules the next worker tick for a run. With a queue configured
// every tick goes durable; without one, near-immediate ticks run in-process
// and longer delays are dropped for the reaper to recover.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (Route, error) {
	if req.RunID == "" {
		return "", errors.New("run id is required")
	}
	if req.Delay < 0 {
		req.Delay = 0
	}

	now := d.time.Now()
	runAt := now.Add(req.Delay)
	taskID := TickTaskID(req.RunID, runAt.Unix())

	if d.queue != nil {
		payload, err := json.Marshal(tickPayload{RunID: req.RunID, WorkerToken: req.WorkerToken})
		if err != nil {
			return "", fmt.Errorf("marshal tick payload: %w", err)
		}
		fresh, err := d.queue.Enqueue(ctx, core.Task{
			ID:      taskID,
			URL:     d.cfg.TickURL,
			Payload: payload,
			RunAt:   runAt,
		})
		if err != nil {
			return "", fmt.Errorf("enqueue tick for run %s: %w", req.RunID, err)
		}
		if !fresh {
			d.logger.DebugContext(ctx, "tick already scheduled",
				"run_id", req.RunID, "task_id", taskID)
			return RouteDeduped, nil
		}
		d.logger.InfoContext(ctx, "tick queued",
			"run_id", req.RunID, "task_id", taskID, "delay", req.Delay.String())
		return RouteQueued, nil
	}

	if req.Delay > d.cfg.DirectThreshold {
		d.logger.WarnContext(ctx, "tick skipped: no queue for deferred dispatch",
			"run_id", req.RunID, "delay", req.Delay.String())
		return RouteSkipped, nil
	}

	go d.invokeAfter(req, req.Delay)
	d.logger.InfoContext(ctx, "tick dispatched direct",
		"run_id", req.RunID, "delay", req.Delay.String())
	return RouteDirect, nil
}

// invokeAfter runs the tick after the delay on a background context. The
// originating request context ends with the HTTP response, so the tick gets
// its own deadline.
func (d *Dispatcher) invokeAfter(req DispatchRequest, delay time.Duration) {
	if delay > 0 {
		time.Sleep(delay)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := d.invoker.InvokeTick(ctx, req.RunID, req.WorkerToken); err != nil {
		d.logger.ErrorContext(ctx, "direct tick failed", "run_id", req.RunID, "err", err)
	}
}
