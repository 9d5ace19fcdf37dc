package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sentinelcore/inehss/internal/core"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteServiceError maps the core error taxonomy onto HTTP statuses:
// Forbidden → 403, InvalidInput → 400, NotFound → 404, anything else → 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrForbidden):
		WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// StatusResponse is the small success payload transition endpoints return.
type StatusResponse struct {
	Status string `json:"status"`
}

// WriteStatus writes the `{status: "<human phrase>"}` payload.
func WriteStatus(w http.ResponseWriter, phrase string) {
	WriteJSON(w, http.StatusOK, StatusResponse{Status: phrase})
}

// PaginatedResponse wraps a list with pagination metadata.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// WritePaginated writes a paginated JSON response.
func WritePaginated(w http.ResponseWriter, status int, items any, nextCursor string, hasMore bool) {
	WriteJSON(w, status, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}
