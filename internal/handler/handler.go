package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/service"
)

// Handler exposes the service over HTTP
type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

// respondError maps domain errors onto HTTP statuses. Persistence failures
// surface as a generic message; the detail stays server-side.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsUnauthorized(err):
		h.respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	case apperrors.IsForbidden(err):
		h.respondJSON(w, http.StatusForbidden, map[string]string{"message": "Forbidden"})
	case apperrors.IsNotFound(err):
		h.respondJSON(w, http.StatusNotFound, map[string]string{"message": "No transaction found"})
	case apperrors.IsValidationError(err):
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
	default:
		h.log.Errorf("Request failed: %v", err)
		h.respondJSON(w, http.StatusInternalServerError, map[string]string{"message": "Service failure"})
	}
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
