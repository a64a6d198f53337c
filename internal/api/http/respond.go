package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"
)

// envelope is the uniform response shape: {"success": ..., "message": ...}
// plus optional data and field errors.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// respondError maps the error taxonomy to HTTP statuses. Unclassified errors
// become opaque 500s; the cause is logged, never echoed.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondErrorData(w, r, err, nil)
}

func respondErrorData(w http.ResponseWriter, r *http.Request, err error, data any) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, envelope{Success: false, Message: "internal server error"})
		return
	}

	body := envelope{Success: false, Message: err.Error(), Data: data}
	var de *domain.Error
	if errors.As(err, &de) && len(de.Fields) > 0 {
		body.Errors = de.Fields
	}
	writeJSON(w, status, body)
}

func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindInvalidState, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindExpired:
		return http.StatusGone
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validation("invalid JSON body", nil)
	}
	return nil
}
