package analytics

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the usage-analytics endpoints consumed by the admin
// dashboard.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RoleStats(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.RoleStats(r.Context())
	if err != nil {
		h.logger.Errorw("role stats failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to get role stats"})
		return
	}
	h.writeJSON(w, http.StatusOK, data)
}

func (h *Handler) MonthlySignups(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.MonthlySignups(r.Context())
	if err != nil {
		h.logger.Errorw("monthly signups failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to get signup data"})
		return
	}
	h.writeJSON(w, http.StatusOK, data)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
