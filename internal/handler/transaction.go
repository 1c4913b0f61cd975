package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/middleware"
	"github.com/fraudsight/transaction-service/internal/models"
	"github.com/fraudsight/transaction-service/internal/query"
	"github.com/fraudsight/transaction-service/internal/service"
)

func (h *Handler) identity(r *http.Request) (models.Identity, bool) {
	return middleware.IdentityFrom(r.Context())
}

// Search handles GET /api/transactions/search and the plain list endpoint.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(r)
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}
	filter, err := query.ParseFilter(r.URL.Query())
	if err != nil {
		h.respondError(w, err)
		return
	}
	resp, err := h.svc.Search(r.Context(), ident, filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// HighRisk handles GET /api/transactions/high-risk (admin only).
func (h *Handler) HighRisk(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(r)
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}
	resp, err := h.svc.HighRisk(r.Context(), ident)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// CreateTransaction handles POST /api/transactions.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(r)
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}
	var in service.CreateTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, apperrors.NewValidationError("body", "invalid JSON"))
		return
	}
	tx, err := h.svc.CreateTransaction(r.Context(), ident, in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, tx)
}

// GetTransaction handles GET /api/transactions/{id}.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(r)
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	tx, err := h.svc.GetTransaction(r.Context(), ident, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(r)
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var in service.UpdateTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, apperrors.NewValidationError("body", "invalid JSON"))
		return
	}
	tx, err := h.svc.UpdateTransaction(r.Context(), ident, id, in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Successfully updated",
		"transaction": tx,
	})
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(r)
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.svc.DeleteTransaction(r.Context(), ident, id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Successfully deleted"})
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
