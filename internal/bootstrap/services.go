package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/adapters/channels"
	"github.com/missionctl/leadrun-engine/internal/adapters/reaper"
	"github.com/missionctl/leadrun-engine/internal/adapters/taskqueue"
	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/data"
	"github.com/missionctl/leadrun-engine/internal/observability/notify"
	"github.com/missionctl/leadrun-engine/internal/observability/notify/pagerduty"
	"github.com/missionctl/leadrun-engine/internal/observability/notify/slack"
	"github.com/missionctl/leadrun-engine/internal/observability/statsd"
	"github.com/missionctl/leadrun-engine/internal/service"
)

// ServiceDeps carries the shared infrastructure services are built on.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Container holds the wired application services.
type Container struct {
	Runs      *service.Runner
	Worker    *service.WorkerService
	Followups *service.FollowupService
	Quota     *service.QuotaService
	Dnc       *service.DncService
	Meetings  *service.MeetingScheduler

	Idempotency core.IdempotencyRepository
	Queue       *taskqueue.Queue
	Metrics     *statsd.Client
	Reaper      *reaper.Runner
}

// NewServices wires repositories, adapters, and services from shared deps.
func NewServices(deps *ServiceDeps) (*Container, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runRepo := data.NewRunRepo(deps.DB, data.RunRepoConfig{Logger: logger})
	leadRepo := data.NewLeadRepo(deps.DB, logger)
	receiptRepo := data.NewReceiptRepo(deps.DB, data.ReceiptRepoConfig{Logger: logger})
	dncRepo := data.NewDncRepo(deps.DB, data.DncRepoConfig{Logger: logger})
	followupRepo := data.NewFollowupRepo(deps.DB, data.FollowupRepoConfig{Logger: logger})
	quotaRepo := data.NewQuotaRepo(deps.DB, data.QuotaRepoConfig{Logger: logger})
	alertRepo := data.NewAlertRepo(deps.DB, data.AlertRepoConfig{Logger: logger})
	idemRepo := data.NewIdempotencyRepo(deps.DB, data.IdempotencyRepoConfig{Logger: logger})

	queue := taskqueue.New(taskqueue.Options{
		Client:       deps.RedisClient,
		Logger:       logger,
		DedupeTTL:    cfg.Dispatch.DedupeTTL,
		PollInterval: cfg.Dispatch.PollInterval,
		RetryDelay:   cfg.Dispatch.RetryDelay,
	})

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  "leadrun",
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init statsd client: %w", err)
	}

	alertSink, err := buildAlertSink(cfg.Observability.Notifications, logger)
	if err != nil {
		return nil, err
	}

	channelSet := channels.Wire(cfg.Channels, nil)

	dnc, err := service.NewDncService(service.DncServiceOptions{
		Repo:   dncRepo,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init dnc service: %w", err)
	}

	quota, err := service.NewQuotaService(service.QuotaServiceOptions{
		Quota:  quotaRepo,
		Alerts: alertRepo,
		Notify: alertSink,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init quota service: %w", err)
	}

	var meetings *service.MeetingScheduler
	if channelSet.Calendar != nil {
		meetings, err = service.NewMeetingScheduler(service.MeetingSchedulerOptions{
			Calendar: channelSet.Calendar,
			Config:   service.MeetingConfig{SlotMinutes: cfg.Meetings.SlotMinutes},
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init meeting scheduler: %w", err)
		}
	}

	worker, err := service.NewWorkerService(service.WorkerOptions{
		Runs:     runRepo,
		Leads:    leadRepo,
		Receipts: receiptRepo,
		Dnc:      dnc,
		Meetings: meetings,
		Channels: channelSet,
		Outcomes: quota,
		Config: service.WorkerConfig{
			BatchSize:          cfg.Worker.BatchSize,
			LeaseSeconds:       cfg.Worker.LeaseSeconds,
			MaxAttemptsPerLead: cfg.Worker.MaxAttemptsPerLead,
			RetryDelay:         cfg.Worker.RetryDelay,
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("init worker service: %w", err)
	}

	dispatcher, err := service.NewDispatcher(service.DispatcherOptions{
		Queue:   queue,
		Invoker: worker,
		Config: service.DispatcherConfig{
			TickURL:         cfg.HTTP.TickURL(),
			DirectThreshold: cfg.Dispatch.DirectThreshold,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init dispatcher: %w", err)
	}
	worker.SetDispatcher(dispatcher)

	runner, err := service.NewRunner(service.RunnerOptions{
		Runs:       runRepo,
		Leads:      leadRepo,
		Quota:      quotaRepo,
		Dispatcher: dispatcher,
		Config: service.RunnerConfig{
			MinScore:       cfg.Runs.MinScore,
			MaxLeadsPerRun: cfg.Runs.MaxLeadsPerRun,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init runner: %w", err)
	}

	followups, err := service.NewFollowupService(service.FollowupServiceOptions{
		Tasks:    followupRepo,
		Runs:     runRepo,
		Leads:    leadRepo,
		Receipts: receiptRepo,
		Dnc:      dnc,
		Channels: channelSet,
		Queue:    queue,
		Config: service.FollowupConfig{
			ProcessURL:   cfg.HTTP.DrainURL(),
			LeaseSeconds: cfg.Followups.LeaseSeconds,
			MaxAttempts:  cfg.Followups.MaxAttempts,
			RetryDelay:   cfg.Followups.RetryDelay,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init followup service: %w", err)
	}

	var reaperRunner *reaper.Runner
	if cfg.IsReaperEnabled() {
		reaperRunner, err = reaper.NewRunner(reaper.RunnerOptions{
			Runs:   runner,
			Quota:  quota,
			Config: cfg.Reaper,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init reaper: %w", err)
		}
	}

	return &Container{
		Runs:        runner,
		Worker:      worker,
		Followups:   followups,
		Quota:       quota,
		Dnc:         dnc,
		Meetings:    meetings,
		Idempotency: idemRepo,
		Queue:       queue,
		Metrics:     metrics,
		Reaper:      reaperRunner,
	}, nil
}

// buildAlertSink assembles the notification fan-out from configuration.
// Returns nil when no sink is enabled.
func buildAlertSink(cfg config.ObservabilityNotificationsConfig, logger *slog.Logger) (notify.Sink, error) {
	var sinks notify.Fanout

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:   cfg.Slack.WebhookURL,
			Channel:      cfg.Slack.Channel,
			Username:     cfg.Slack.Username,
			RunURLPrefix: cfg.Slack.RunURLPrefix,
			Timeout:      cfg.Timeout,
			RetryLimit:   cfg.RetryLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("init slack notifier: %w", err)
		}
		sinks = append(sinks, client)
		logger.Info("slack notifications enabled", "channel", cfg.Slack.Channel)
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("init pagerduty notifier: %w", err)
		}
		sinks = append(sinks, client)
		logger.Info("pagerduty notifications enabled", "component", cfg.PagerDuty.Component)
	}

	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}
