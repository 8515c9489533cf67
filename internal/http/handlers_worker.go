package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/service"
)

// workerTickRoute names the tick endpoint in idempotency records.
const workerTickRoute = "worker_tick"

// WorkerHandlers provides the tick endpoint the durable queue delivers to.
// The endpoint authenticates with the per-run worker token rather than the
// owner API key, so the queue pump needs no credential of its own.
type WorkerHandlers struct {
	Svc         *service.WorkerService
	Idempotency core.IdempotencyRepository
	Logger      *slog.Logger
}

type workerTickRequest struct {
	RunID       string `json:"runId"`
	WorkerToken string `json:"workerToken"`
}

// Tick executes one worker tick for a run. Replays carrying the same task id
// return the stored response instead of re-running the batch.
func (h *WorkerHandlers) Tick(w http.ResponseWriter, r *http.Request) {
	var req workerTickRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.RunID == "" || req.WorkerToken == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_request",
			Err:     errors.New("runId and workerToken are required"),
		})
		return
	}

	key := r.Header.Get("X-Task-ID")
	if key == "" {
		key = r.Header.Get("X-Idempotency-Key")
	}

	var recordID string
	if h.Idempotency != nil && key != "" {
		recordID = core.IdempotencyRecordID(req.RunID, workerTickRoute, key)
		stored, fresh, err := h.Idempotency.Reserve(r.Context(), &core.IdempotencyRecord{
			ID:    recordID,
			UID:   req.RunID,
			Route: workerTickRoute,
			Key:   key,
		})
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		if !fresh {
			h.writeReplay(w, stored)
			return
		}
	}

	result, err := h.Svc.Tick(r.Context(), service.TickRequest{
		RunID:       req.RunID,
		WorkerToken: req.WorkerToken,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	if recordID != "" {
		if body, merr := json.Marshal(result); merr == nil {
			if serr := h.Idempotency.SaveResponse(r.Context(), recordID, body); serr != nil && h.Logger != nil {
				h.Logger.WarnContext(r.Context(), "save tick response failed",
					"run_id", req.RunID, "err", serr)
			}
		}
	}
	WriteJSON(w, http.StatusOK, result)
}

// writeReplay serves a duplicate delivery. A record without a stored response
// means the original tick is still in flight.
func (h *WorkerHandlers) writeReplay(w http.ResponseWriter, stored *core.IdempotencyRecord) {
	if stored == nil || len(stored.Response) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"replayed":true}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(stored.Response)
}
