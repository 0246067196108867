package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/petermazzocco/go-feed-api/internal/apperr"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	h.writeJSON(w, statusCode, errorResponse{Error: errorType, Message: message})
}

// respondError maps any failure to its HTTP response. Unclassified errors
// are logged and answered with a generic message.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large.")
		return
	}

	switch apperr.KindOf(err) {
	case apperr.NotFound:
		h.writeError(w, http.StatusNotFound, "NotFound", apperr.MessageOf(err))
	case apperr.InvalidInput:
		h.writeError(w, http.StatusUnprocessableEntity, "InvalidInput", apperr.MessageOf(err))
	case apperr.Forbidden:
		h.writeError(w, http.StatusForbidden, "Forbidden", apperr.MessageOf(err))
	case apperr.Unauthorized:
		h.writeError(w, http.StatusUnauthorized, "Unauthorized", apperr.MessageOf(err))
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.writeError(w, http.StatusInternalServerError, "InternalServerError", apperr.MessageOf(err))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}
