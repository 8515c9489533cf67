package httpx

import (
	"errors"
	"net/http"

	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/service"
)

// QuotaHandlers provides HTTP handlers for quota and alerting operations.
type QuotaHandlers struct {
	Svc *service.QuotaService
}

// Summary returns the org's current-window quota usage.
func (h *QuotaHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	summary, err := h.Svc.Summary(r.Context(), id.OrgID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

type quotaSettingsBody struct {
	MaxRunsPerDay          int `json:"maxRunsPerDay"`
	MaxLeadsPerDay         int `json:"maxLeadsPerDay"`
	MaxActiveRuns          int `json:"maxActiveRuns"`
	FailureAlertThreshold  int `json:"failureAlertThreshold"`
	AlertEscalationMinutes int `json:"alertEscalationMinutes"`
}

// Settings returns the org's quota settings.
func (h *QuotaHandlers) Settings(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	settings, err := h.Svc.Settings(r.Context(), id.OrgID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, quotaSettingsBody{
		MaxRunsPerDay:          settings.MaxRunsPerDay,
		MaxLeadsPerDay:         settings.MaxLeadsPerDay,
		MaxActiveRuns:          settings.MaxActiveRuns,
		FailureAlertThreshold:  settings.FailureAlertThreshold,
		AlertEscalationMinutes: settings.AlertEscalationMinutes,
	})
}

// SaveSettings updates the org's quota settings.
func (h *QuotaHandlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var body quotaSettingsBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	err := h.Svc.SaveSettings(r.Context(), id.OrgID, model.QuotaSettings{
		MaxRunsPerDay:          body.MaxRunsPerDay,
		MaxLeadsPerDay:         body.MaxLeadsPerDay,
		MaxActiveRuns:          body.MaxActiveRuns,
		FailureAlertThreshold:  body.FailureAlertThreshold,
		AlertEscalationMinutes: body.AlertEscalationMinutes,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Alerts returns the org's open run alerts.
func (h *QuotaHandlers) Alerts(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	limit := parseLimit(r, defaultListLimit, maxListLimit)

	alerts, err := h.Svc.OpenAlerts(r.Context(), id.OrgID, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// AckAlert acknowledges an open alert.
func (h *QuotaHandlers) AckAlert(w http.ResponseWriter, r *http.Request) {
	alertID := r.PathValue("id")
	if alertID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("alert id is required")},
		)
		return
	}
	id, _ := IdentityFromContext(r.Context())

	alert, err := h.Svc.AckAlert(r.Context(), alertID, id.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, alert)
}
