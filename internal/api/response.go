package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kleiderkammer/internal/model"
)

// jsonResponse writes a payload wrapped in a {"data": ...} envelope.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(map[string]any{"data": data}); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a {"error": ...} envelope.
func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("encoding error response", "error", err)
	}
}

// writeError maps store errors onto HTTP statuses. Unrecognized errors are
// logged and reported as a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrCategoryMismatch):
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
