// Package taskqueue provides the Redis-backed durable queue for deferred
// worker ticks and follow-up drains.
package taskqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/missionctl/leadrun-engine/internal/core"
)

const (
	defaultKeyPrefix    = "leadrun:tasks:"
	defaultDedupeTTL    = 24 * time.Hour
	defaultPollInterval = time.Second
	defaultBatchSize    = 25
	defaultHTTPTimeout  = 30 * time.Second
	defaultRetryDelay   = 30 * time.Second
)

// Options configures the Redis task queue.
type Options struct {
	Client       redis.UniversalClient
	Logger       *slog.Logger
	KeyPrefix    string
	DedupeTTL    time.Duration
	PollInterval time.Duration
	BatchSize    int
	HTTPClient   *http.Client
	RetryDelay   time.Duration
}

// Queue schedules tasks on a Redis sorted set keyed by due time and delivers
// them over HTTP when they come due. Task ids are deduplicated, so retried
// enqueues of the same deterministic id collapse into one delivery.
type Queue struct {
	client       redis.UniversalClient
	logger       *slog.Logger
	prefix       string
	dedupeTTL    time.Duration
	pollInterval time.Duration
	batchSize    int
	httpClient   *http.Client
	retryDelay   time.Duration
}

// New creates a new Queue from the given options.
func New(opts Options) *Queue {
	q := &Queue{
		client:       opts.Client,
		logger:       opts.Logger,
		prefix:       opts.KeyPrefix,
		dedupeTTL:    opts.DedupeTTL,
		pollInterval: opts.PollInterval,
		batchSize:    opts.BatchSize,
		httpClient:   opts.HTTPClient,
		retryDelay:   opts.RetryDelay,
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	if q.prefix == "" {
		q.prefix = defaultKeyPrefix
	}
	if q.dedupeTTL <= 0 {
		q.dedupeTTL = defaultDedupeTTL
	}
	if q.pollInterval <= 0 {
		q.pollInterval = defaultPollInterval
	}
	if q.batchSize <= 0 {
		q.batchSize = defaultBatchSize
	}
	if q.httpClient == nil {
		q.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if q.retryDelay <= 0 {
		q.retryDelay = defaultRetryDelay
	}
	return q
}

func (q *Queue) seenKey(id string) string { return q.prefix + "seen:" + id }
func (q *Queue) bodyKey(id string) string { return q.prefix + "body:" + id }
func (q *Queue) scheduleKey() string      { return q.prefix + "schedule" }

// Enqueue schedules the task, deduplicating on task id. Returns false when a
// task with the same id was already scheduled.
func (q *Queue) Enqueue(ctx context.Context, task core.Task) (bool, error) {
	if task.ID == "" {
		return false, errors.New("task id is required")
	}
	if task.URL == "" {
		return false, errors.New("task url is required")
	}

	fresh, err := q.client.SetNX(ctx, q.seenKey(task.ID), "1", q.dedupeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe task %s: %w", task.ID, err)
	}
	if !fresh {
		return false, nil
	}

	body, err := json.Marshal(task)
	if err != nil {
		return false, fmt.Errorf("marshal task %s: %w", task.ID, err)
	}
	if err := q.client.Set(ctx, q.bodyKey(task.ID), body, q.dedupeTTL).Err(); err != nil {
		return false, fmt.Errorf("store task %s: %w", task.ID, err)
	}

	score := float64(task.RunAt.UnixMilli())
	if err := q.client.ZAdd(ctx, q.scheduleKey(), redis.Z{Score: score, Member: task.ID}).Err(); err != nil {
		return false, fmt.Errorf("schedule task %s: %w", task.ID, err)
	}
	return true, nil
}

// Health checks the Redis connection.
func (q *Queue) Health(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Run pumps due tasks until the context is canceled. Multiple pumps can run
// concurrently; ZREM arbitrates so only one pump attempts a given task, and
// failed attempts return to the schedule with a backoff.
func (q *Queue) Run(ctx context.Context) error {
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := q.pump(ctx); err != nil && !errors.Is(err, context.Canceled) {
				q.logger.ErrorContext(ctx, "task pump failed", "err", err)
			}
		}
	}
}

func (q *Queue) pump(ctx context.Context) error {
	nowMs := time.Now().UnixMilli()
	ids, err := q.client.ZRangeByScore(ctx, q.scheduleKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(nowMs, 10),
		Count: int64(q.batchSize),
	}).Result()
	if err != nil {
		return fmt.Errorf("scan due tasks: %w", err)
	}

	for _, id := range ids {
		removed, err := q.client.ZRem(ctx, q.scheduleKey(), id).Result()
		if err != nil {
			return fmt.Errorf("remove task %s: %w", id, err)
		}
		if removed == 0 {
			continue // another pump took it
		}
		if q.deliver(ctx, id) {
			continue
		}
		// Failed delivery goes back on the schedule with a backoff so the
		// endpoint gets another attempt until the body's TTL expires.
		score := float64(time.Now().Add(q.retryDelay).UnixMilli())
		if err := q.client.ZAdd(ctx, q.scheduleKey(), redis.Z{Score: score, Member: id}).Err(); err != nil {
			return fmt.Errorf("reschedule task %s: %w", id, err)
		}
	}
	return nil
}

// deliver posts the task body to its endpoint. Returns true when the task is
// settled, either delivered or permanently undeliverable; false means the
// attempt failed and the task should be rescheduled.
func (q *Queue) deliver(ctx context.Context, id string) bool {
	raw, err := q.client.Get(ctx, q.bodyKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			q.logger.WarnContext(ctx, "task body expired before delivery", "task_id", id)
			return true
		}
		q.logger.ErrorContext(ctx, "load task body", "task_id", id, "err", err)
		return false
	}

	var task core.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		q.logger.ErrorContext(ctx, "decode task body", "task_id", id, "err", err)
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, task.URL, bytes.NewReader(task.Payload))
	if err != nil {
		q.logger.ErrorContext(ctx, "build task request", "task_id", id, "err", err)
		return true
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Task-ID", id)

	resp, err := q.httpClient.Do(req)
	if err != nil {
		q.logger.ErrorContext(ctx, "deliver task", "task_id", id, "url", task.URL, "err", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		q.logger.WarnContext(ctx, "task delivery rejected",
			"task_id", id, "url", task.URL, "status", resp.StatusCode)
		return false
	}
	q.logger.DebugContext(ctx, "task delivered", "task_id", id, "status", resp.StatusCode)
	return true
}
