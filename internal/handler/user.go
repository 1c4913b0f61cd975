package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/fraudsight/transaction-service/internal/errors"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.NewValidationError("body", "invalid JSON"))
		return
	}
	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if err == apperrors.ErrEmailTaken {
			h.respondJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
			return
		}
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.NewValidationError("body", "invalid JSON"))
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
