package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentinelcore/inehss/internal/api/middleware"
	"github.com/sentinelcore/inehss/internal/api/request"
	"github.com/sentinelcore/inehss/internal/api/response"
)

// AuditLog represents an audit log entry.
type AuditLog struct {
	ID           string          `json:"id"`
	UserID       *string         `json:"user_id,omitempty"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	ResourceType *string         `json:"resource_type,omitempty"`
	ResourceID   *string         `json:"resource_id,omitempty"`
	StatusCode   int             `json:"status_code"`
	RequestBody  json.RawMessage `json:"request_body,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Audit struct {
	pool *pgxpool.Pool
}

func NewAudit(pool *pgxpool.Pool) *Audit {
	return &Audit{pool: pool}
}

// List returns audit log entries, newest first, with optional resource and
// method filters. Staff only.
func (h *Audit) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())
	if !actor.IsStaff {
		response.WriteError(w, http.StatusForbidden, "staff only")
		return
	}

	p := request.ParsePagination(r)
	resourceType := r.URL.Query().Get("resource_type")
	action := r.URL.Query().Get("action")

	query := `SELECT id, user_id, method, path, resource_type, resource_id, status_code, request_body, created_at
              FROM audit_logs WHERE 1=1`
	args := []any{}
	argIdx := 1

	if resourceType != "" {
		query += fmt.Sprintf(` AND resource_type = $%d`, argIdx)
		args = append(args, resourceType)
		argIdx++
	}
	if action != "" {
		query += fmt.Sprintf(` AND method = $%d`, argIdx)
		args = append(args, action)
		argIdx++
	}
	if p.Cursor != "" {
		query += fmt.Sprintf(` AND created_at < (SELECT created_at FROM audit_logs WHERE id = $%d)`, argIdx)
		args = append(args, p.Cursor)
		argIdx++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, p.Limit+1)

	rows, err := h.pool.Query(r.Context(), query, args...)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var entry AuditLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Method, &entry.Path,
			&entry.ResourceType, &entry.ResourceID, &entry.StatusCode,
			&entry.RequestBody, &entry.CreatedAt); err != nil {
			response.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		logs = append(logs, entry)
	}

	hasMore := len(logs) > p.Limit
	if hasMore {
		logs = logs[:p.Limit]
	}
	var nextCursor string
	if hasMore && len(logs) > 0 {
		nextCursor = logs[len(logs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, logs, nextCursor, hasMore)
}
