package crop

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/agripredict/service-api/internal/auth"
	"github.com/agripredict/service-api/internal/crop/entity"
)

// Handler exposes the crop-recommendation endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RecommendRequest uses pointers so a genuinely absent field is
// distinguishable from a zero measurement.
type RecommendRequest struct {
	Nitrogen    *float64 `json:"nitrogen"`
	Phosphorus  *float64 `json:"phosphorus"`
	Potassium   *float64 `json:"potassium"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	PH          *float64 `json:"ph"`
	Rainfall    *float64 `json:"rainfall"`
}

func (req *RecommendRequest) sample() (entity.SoilSample, bool) {
	if req.Nitrogen == nil || req.Phosphorus == nil || req.Potassium == nil ||
		req.Temperature == nil || req.Humidity == nil || req.PH == nil || req.Rainfall == nil {
		return entity.SoilSample{}, false
	}
	return entity.SoilSample{
		Nitrogen:    *req.Nitrogen,
		Phosphorus:  *req.Phosphorus,
		Potassium:   *req.Potassium,
		Temperature: *req.Temperature,
		Humidity:    *req.Humidity,
		PH:          *req.PH,
		Rainfall:    *req.Rainfall,
	}, true
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid payload"})
		return
	}
	sample, ok := req.sample()
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "All fields are required"})
		return
	}

	var accountID *int64
	if acct := auth.FromContext(r.Context()); acct != nil {
		accountID = &acct.ID
	}

	p, message, err := h.svc.Recommend(r.Context(), sample, accountID)
	if err != nil {
		h.logger.Errorw("crop recommendation failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Failed to process crop recommendation"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "crop": p.Crop, "message": message})
}

func (h *Handler) RecommendBulk(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "No file provided"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Only CSV files are supported"})
		return
	}

	result, err := h.svc.AnalyzeCSV(file)
	if err != nil {
		if errors.Is(err, ErrBadCSV) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "CSV file must contain all required columns: N, P, K, temperature, humidity, ph, rainfall"})
			return
		}
		h.logger.Errorw("bulk crop recommendation failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Failed to process bulk crop recommendation"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": result,
		"message": fmt.Sprintf("Bulk analysis complete. %d samples processed.", result.TotalSamples),
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	acct := auth.FromContext(r.Context())
	if acct == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
		return
	}
	history, err := h.svc.History(r.Context(), acct.ID, 20)
	if err != nil {
		h.logger.Errorw("prediction history failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Failed to fetch history"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": history})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
