package httpx

import (
	"errors"
	"net/http"

	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/service"
)

// FollowupHandlers provides HTTP handlers for the follow-up scheduler.
type FollowupHandlers struct {
	Svc *service.FollowupService
}

type queueFollowupsRequest struct {
	DelayHours int `json:"delayHours"`
	MaxLeads   int `json:"maxLeads"`
	Sequence   int `json:"sequence"`
}

// Queue enqueues follow-up tasks for the reached leads of a run.
func (h *FollowupHandlers) Queue(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runId")
	if runID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("run id is required")},
		)
		return
	}
	id, _ := IdentityFromContext(r.Context())

	var req queueFollowupsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Queue(r.Context(), id.OrgID, model.QueueFollowupsRequest{
		RunID:      runID,
		UserID:     id.UserID,
		DelayHours: req.DelayHours,
		MaxLeads:   req.MaxLeads,
		Sequence:   req.Sequence,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// List returns the follow-up tasks of a run.
func (h *FollowupHandlers) List(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runId")
	if runID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("run id is required")},
		)
		return
	}
	id, _ := IdentityFromContext(r.Context())

	tasks, err := h.Svc.ListTasks(r.Context(), id.OrgID, runID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// Settings returns the org's follow-up settings.
func (h *FollowupHandlers) Settings(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	settings, err := h.Svc.Settings(r.Context(), id.OrgID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

// SaveSettings updates the org's follow-up settings.
func (h *FollowupHandlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var settings model.FollowupsOrgSettings
	if !DecodeJSON(w, r, &settings) {
		return
	}

	saved, err := h.Svc.SaveSettings(r.Context(), id.OrgID, settings)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

type drainRequest struct {
	OrgID       string `json:"orgId"`
	RunID       string `json:"runId"`
	WorkerToken string `json:"workerToken"`
}

// Drain is the queue-delivered worker endpoint that processes due follow-up
// tasks for one run. It authenticates with the run's follow-up worker token,
// which only queue-scheduled drain payloads carry.
func (h *FollowupHandlers) Drain(w http.ResponseWriter, r *http.Request) {
	var req drainRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.OrgID == "" || req.RunID == "" || req.WorkerToken == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_request",
			Err:     errors.New("orgId, runId, and workerToken are required"),
		})
		return
	}

	result, err := h.Svc.Process(r.Context(), req.OrgID, req.RunID, req.WorkerToken)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
