package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentinelcore/inehss/internal/api/response"
	"github.com/sentinelcore/inehss/internal/core"
)

type contextKey string

const IdentityKey contextKey = "api_key_identity"

// Identity holds the authenticated user behind an API key.
type Identity struct {
	UserID   string
	Username string
	IsStaff  bool
}

// Auth returns a middleware that validates the X-API-Key header against the
// users table. Keys are stored as sha256 hex digests.
func Auth(pool *pgxpool.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			hash := sha256.Sum256([]byte(key))
			keyHash := hex.EncodeToString(hash[:])

			var identity Identity
			err := pool.QueryRow(r.Context(),
				`SELECT id, username, is_staff FROM users WHERE api_key_hash = $1 AND disabled_at IS NULL`, keyHash,
			).Scan(&identity.UserID, &identity.Username, &identity.IsStaff)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, &identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom extracts the authenticated identity, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*Identity)
	return id, ok
}

// ActorFrom derives the service-layer actor from the request identity.
// Unauthenticated requests get a zero actor (anonymous, not staff).
func ActorFrom(ctx context.Context) core.Actor {
	if id, ok := IdentityFrom(ctx); ok {
		return core.Actor{ID: id.UserID, IsStaff: id.IsStaff}
	}
	return core.Actor{}
}
