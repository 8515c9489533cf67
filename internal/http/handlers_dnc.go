package httpx

import (
	"errors"
	"net/http"

	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/service"
)

// DncHandlers provides HTTP handlers for the do-not-contact registry.
type DncHandlers struct {
	Svc *service.DncService
}

type addDncEntryRequest struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Create adds a suppression entry. Re-adding an existing value refreshes its
// metadata instead of duplicating it.
func (h *DncHandlers) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var req addDncEntryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	entry, err := h.Svc.Add(r.Context(), service.AddEntryRequest{
		OrgID:     id.OrgID,
		Type:      model.DncEntryType(req.Type),
		Value:     req.Value,
		Reason:    req.Reason,
		CreatedBy: id.UserID,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

// List returns the org's suppression entries.
func (h *DncHandlers) List(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	limit := parseLimit(r, defaultListLimit, maxListLimit)

	entries, err := h.Svc.List(r.Context(), id.OrgID, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Delete removes a suppression entry by id.
func (h *DncHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	entryID := r.PathValue("id")
	if entryID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("entry id is required")},
		)
		return
	}
	id, _ := IdentityFromContext(r.Context())

	if err := h.Svc.Remove(r.Context(), id.OrgID, entryID); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
