package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/agripredict/service-api/internal/auth"
)

// Handler exposes HTTP endpoints for registration, login and account
// administration.
type Handler struct {
	svc    *Service
	tokens *auth.TokenService
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *auth.TokenService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Organization string `json:"organization"`
	Position     string `json:"position"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid user data"})
		return
	}
	a, err := h.svc.Register(r.Context(), RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		Organization: req.Organization,
		Position:     req.Position,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"id":        strconv.FormatInt(a.ID, 10),
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"email":     a.Email,
		"isAdmin":   a.IsAdmin,
		"message":   "User registered successfully.",
	})
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid user data"})
		return
	}
	a, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	token, err := h.tokens.Issue(a.ID, a.Email, a.IsAdmin)
	if err != nil {
		h.logger.Errorw("token issue failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"id":        strconv.FormatInt(a.ID, 10),
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"email":     a.Email,
		"isAdmin":   a.IsAdmin,
		"token":     token,
	})
}

// Logout is stateless: the client discards the token. Kept as an endpoint so
// a server-side blocklist can slot in later without a client change.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	acct := auth.FromContext(r.Context())
	if acct == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
		return
	}
	h.writeJSON(w, http.StatusOK, acct)
}

// UpdateRequest is a partial update body; absent fields stay unchanged.
type UpdateRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	Organization *string `json:"organization"`
	Position     *string `json:"position"`
	IsAdmin      *bool   `json:"isAdmin"`
}

func (req *UpdateRequest) toInput() UpdateInput {
	return UpdateInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		Organization: req.Organization,
		Position:     req.Position,
		IsAdmin:      req.IsAdmin,
	}
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	acct := auth.FromContext(r.Context())
	if acct == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid user data"})
		return
	}
	// self-service path can never grant itself the admin flag
	view, err := h.svc.Update(r.Context(), acct.ID, req.toInput(), false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// email or admin flag may feed token claims, so hand back a fresh token
	token, err := h.tokens.Issue(view.ID, view.Email, view.IsAdmin)
	if err != nil {
		h.logger.Errorw("token issue failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"user": view, "token": token})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) UpdateByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid user data"})
		return
	}
	view, err := h.svc.Update(r.Context(), id, req.toInput(), true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "User removed"})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Approve(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// RejectRequest carries the optional rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req RejectRequest
	// body is optional
	_ = json.NewDecoder(r.Body).Decode(&req)
	view, err := h.svc.Reject(r.Context(), id, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return 0, false
	}
	return id, true
}

// writeError maps service errors onto the HTTP error taxonomy.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	var rej *RejectedLoginError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Validation Error", "errors": verr.Fields})
	case errors.Is(err, ErrDuplicateEmail):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
	case errors.Is(err, ErrBadCredentials):
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	case errors.Is(err, ErrPendingLogin):
		h.writeJSON(w, http.StatusForbidden, map[string]string{
			"message": "Your account is awaiting approval",
			"status":  "pending",
		})
	case errors.As(err, &rej):
		h.writeJSON(w, http.StatusForbidden, map[string]string{
			"message":         "Your account has been rejected",
			"status":          "rejected",
			"rejectionReason": rej.Reason,
		})
	case errors.Is(err, ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
	case errors.Is(err, ErrNotPending):
		h.writeJSON(w, http.StatusConflict, map[string]string{"message": "Account is not pending approval"})
	default:
		h.logger.Errorw("account operation failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
