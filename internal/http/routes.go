package httpx

import (
	"log/slog"
	"net/http"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Runs      *service.Runner
	Worker    *service.WorkerService
	Followups *service.FollowupService
	Quota     *service.QuotaService
	Dnc       *service.DncService

	// Idempotency guards replayed tick deliveries. Optional.
	Idempotency core.IdempotencyRepository

	// Health probes. Either may be nil.
	DB    Pinger
	Queue HealthChecker

	Auth   config.AuthConfig
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	owner := RequireAPIKey(services.Auth)

	registerRunRoutes(mux, &RunHandlers{Svc: services.Runs}, owner)
	registerFollowupRoutes(mux, &FollowupHandlers{Svc: services.Followups}, owner)
	registerDncRoutes(mux, &DncHandlers{Svc: services.Dnc}, owner)
	registerQuotaRoutes(mux, &QuotaHandlers{Svc: services.Quota}, owner)

	// Worker endpoints authenticate via per-run tokens or run ownership, not
	// the owner API key; the queue pump calls them without credentials.
	workerHandlers := &WorkerHandlers{
		Svc:         services.Worker,
		Idempotency: services.Idempotency,
		Logger:      logger,
	}
	mux.HandleFunc("POST /api/worker/tick", workerHandlers.Tick)

	health := &HealthHandlers{DB: services.DB, Queue: services.Queue}
	mux.HandleFunc("GET /healthz", health.Check)
	mux.HandleFunc("HEAD /healthz", health.Check)

	handler := CorrelationID()(mux)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

func registerRunRoutes(mux *http.ServeMux, h *RunHandlers, mw func(http.Handler) http.Handler) {
	mux.Handle("POST /api/lead-runs/{runId}/jobs", mw(http.HandlerFunc(h.Act)))
	mux.Handle("GET /api/lead-runs/{runId}/jobs", mw(http.HandlerFunc(h.Status)))
	mux.Handle("GET /api/lead-runs", mw(http.HandlerFunc(h.List)))
}

func registerFollowupRoutes(mux *http.ServeMux, h *FollowupHandlers, mw func(http.Handler) http.Handler) {
	mux.Handle("POST /api/lead-runs/{runId}/followups", mw(http.HandlerFunc(h.Queue)))
	mux.Handle("GET /api/lead-runs/{runId}/followups", mw(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/followups/settings", mw(http.HandlerFunc(h.Settings)))
	mux.Handle("PUT /api/followups/settings", mw(http.HandlerFunc(h.SaveSettings)))
	// Queue-delivered drain endpoint; run ownership scopes the claim.
	mux.HandleFunc("POST /api/followups/drain", h.Drain)
}

func registerDncRoutes(mux *http.ServeMux, h *DncHandlers, mw func(http.Handler) http.Handler) {
	mux.Handle("POST /api/dnc", mw(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/dnc", mw(http.HandlerFunc(h.List)))
	mux.Handle("DELETE /api/dnc/{id}", mw(http.HandlerFunc(h.Delete)))
}

func registerQuotaRoutes(mux *http.ServeMux, h *QuotaHandlers, mw func(http.Handler) http.Handler) {
	mux.Handle("GET /api/quota/summary", mw(http.HandlerFunc(h.Summary)))
	mux.Handle("GET /api/quota/settings", mw(http.HandlerFunc(h.Settings)))
	mux.Handle("PUT /api/quota/settings", mw(http.HandlerFunc(h.SaveSettings)))
	mux.Handle("GET /api/alerts", mw(http.HandlerFunc(h.Alerts)))
	mux.Handle("POST /api/alerts/{id}/ack", mw(http.HandlerFunc(h.AckAlert)))
}
