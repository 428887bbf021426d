package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Handler exposes the contact inbox endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SaveRequest is the public contact form payload.
type SaveRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid payload"})
		return
	}
	m, err := h.svc.Save(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
			return
		}
		h.logger.Errorw("save contact message failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Server error"})
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": m})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	pg, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Errorw("list contact messages failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Failed to fetch messages"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"data":        pg.Messages,
		"totalPages":  pg.TotalPages,
		"currentPage": pg.CurrentPage,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Message not found"})
			return
		}
		h.logger.Errorw("delete contact message failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Failed to delete message"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Message deleted successfully"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
