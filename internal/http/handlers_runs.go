// Package httpx provides the JSON API for the lead-run orchestration service.
package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/service"
)

// RunHandlers provides HTTP handlers for run lifecycle operations.
type RunHandlers struct {
	Svc *service.Runner
}

// runActionRequest is the body of POST /api/lead-runs/{runId}/jobs.
type runActionRequest struct {
	Action string          `json:"action"`
	Config model.RunConfig `json:"config"`
	Leads  []model.Lead    `json:"leads"`
}

// Act starts, pauses, or resumes the run named in the path.
func (h *RunHandlers) Act(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runId")
	if runID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("run id is required")},
		)
		return
	}
	id, _ := IdentityFromContext(r.Context())

	var req runActionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	switch req.Action {
	case "start":
		h.start(w, r, startArgs{runID: runID, id: id, req: req})
	case "pause":
		job, err := h.Svc.Pause(r.Context(), runID, id.UserID)
		h.writeJob(w, job, err)
	case "resume":
		job, err := h.Svc.Resume(r.Context(), runID, id.UserID)
		h.writeJob(w, job, err)
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_action",
			Err:     errors.New("action must be one of: start, pause, resume"),
		})
	}
}

type startArgs struct {
	runID string
	id    Identity
	req   runActionRequest
}

func (h *RunHandlers) start(w http.ResponseWriter, r *http.Request, args startArgs) {
	result, err := h.Svc.Start(r.Context(), service.StartParams{
		OrgID: args.id.OrgID,
		Request: model.StartRunRequest{
			RunID:         args.runID,
			UserID:        args.id.UserID,
			Config:        args.req.Config,
			CorrelationID: CorrelationIDFromContext(r.Context()),
		},
		Leads: args.req.Leads,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *RunHandlers) writeJob(w http.ResponseWriter, job *model.LeadRunJob, err error) {
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job.Projection(time.Now()))
}

// Status returns the polling projection for an owned run.
func (h *RunHandlers) Status(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runId")
	if runID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("run id is required")},
		)
		return
	}
	id, _ := IdentityFromContext(r.Context())

	proj, err := h.Svc.Status(r.Context(), runID, id.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, proj)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// List returns projections of the org's recent runs.
func (h *RunHandlers) List(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	limit := parseLimit(r, defaultListLimit, maxListLimit)

	projs, err := h.Svc.List(r.Context(), id.OrgID, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"runs": projs})
}
