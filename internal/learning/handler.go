package learning

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the learning-tip CMS endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// TipRequest is the create/update body; absent fields stay unchanged on update.
type TipRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Image         *string `json:"image"`
	VideoURL      *string `json:"videoUrl"`
	PDF           *string `json:"pdf"`
	Audio         *string `json:"audio"`
	ReferenceLink *string `json:"referenceLink"`
	Category      *string `json:"category"`
}

func (req *TipRequest) toInput() TipInput {
	return TipInput{
		Title:         req.Title,
		Content:       req.Content,
		Image:         req.Image,
		VideoURL:      req.VideoURL,
		PDF:           req.PDF,
		Audio:         req.Audio,
		ReferenceLink: req.ReferenceLink,
		Category:      req.Category,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req TipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid payload"})
		return
	}
	tip, err := h.svc.Create(r.Context(), req.toInput())
	if err != nil {
		h.writeError(w, err, "Server error creating learning tip")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"message": "Learning tip created successfully", "tip": tip})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tips, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Server error fetching learning tips")
		return
	}
	h.writeJSON(w, http.StatusOK, tips)
}

func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	tips, err := h.svc.ByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "No tips found for this category"})
			return
		}
		h.writeError(w, err, "Server error fetching tips by category")
		return
	}
	h.writeJSON(w, http.StatusOK, tips)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req TipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid payload"})
		return
	}
	tip, err := h.svc.Update(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Learning tip not found"})
			return
		}
		h.writeError(w, err, "Update failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": tip})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "Learning tip not found"})
			return
		}
		h.writeError(w, err, "Server error deleting learning tip")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Learning tip deleted successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, ErrValidation) {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	h.logger.Errorw("learning tip operation failed", "err", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": fallback})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
