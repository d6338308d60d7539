package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"classroom_service/internal/errdefs"
)

// Gate denials never pass through here; the middleware resolves them to a
// redirect before a handler runs. Everything below is a ledger or validation
// outcome surfaced to the immediate caller.
func mapError(err error) int {
	switch {
	case errors.Is(err, errdefs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errdefs.ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.Is(err, errdefs.ErrInvalidTransition),
		errors.Is(err, errdefs.ErrNotSubmitted):
		return http.StatusConflict
	case errors.Is(err, errdefs.ErrOutOfRange),
		errors.Is(err, errdefs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errdefs.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errdefs.ErrAuthentication):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error, statusCode int) string {
	if statusCode == http.StatusInternalServerError {
		return http.StatusText(statusCode)
	}
	return err.Error()
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp, _ := json.Marshal(map[string]string{"error": message})
	w.Write(resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "failed to serialize response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}
