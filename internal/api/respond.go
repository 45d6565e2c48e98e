package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dteller/pixelforge/internal/domain"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload any, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}

// respondDomainError maps a service error to its status. Unexpected errors
// are logged with context and surfaced as a generic 500; domain errors keep
// their message so callers can tell the kinds apart.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error, method, endpoint string) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "method", method, "endpoint", endpoint, "error", err)
		h.respondError(w, code, "internal server error", method, endpoint)
		return
	}
	h.respondError(w, code, err.Error(), method, endpoint)
}
