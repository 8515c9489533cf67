package httpx

import (
	"context"
	"net/http"
	"time"
)

// Pinger is the minimal health surface of a backing store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker is the minimal health surface of the durable queue.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandlers reports readiness of the process and its dependencies.
type HealthHandlers struct {
	DB    Pinger
	Queue HealthChecker
}

const healthCheckTimeout = 2 * time.Second

// Check returns 200 when all configured dependencies respond, 503 otherwise.
func (h *HealthHandlers) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if h.Queue != nil {
		if err := h.Queue.Health(ctx); err != nil {
			status["status"] = "degraded"
			status["queue"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(code)
		return
	}
	WriteJSON(w, code, status)
}
