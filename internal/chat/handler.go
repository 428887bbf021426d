package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Handler exposes the chat-assistant endpoint.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// AskRequest is the chat payload. AgroData wraps the form snapshot the way
// the dashboard sends it.
type AskRequest struct {
	Message  string `json:"message"`
	AgroData *struct {
		FormData *FarmData `json:"formData"`
	} `json:"agroData"`
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid payload"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Message is required"})
		return
	}

	var data *FarmData
	if req.AgroData != nil {
		data = req.AgroData.FormData
	}

	reply, err := h.svc.Reply(r.Context(), req.Message, data)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "Chat assistant is not configured"})
			return
		}
		h.logger.Errorw("chat reply failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to get chat response"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
