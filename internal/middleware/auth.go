package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/pkg/auth"
	"github.com/tair/retail-core/pkg/logger"
)

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the actor. Exported for handler tests.
func WithActor(ctx context.Context, actor identity.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext extracts the authenticated actor from the context
func ActorFromContext(ctx context.Context) (identity.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(identity.Actor)
	return actor, ok
}

// Auth validates the Bearer token and stores the actor in the request context
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, "Missing or malformed authorization header")
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.Debug(r.Context()).Err(err).Msg("Token validation failed")
			unauthorized(w, "Invalid or expired token")
			return
		}

		actor := identity.Actor{
			ID:       claims.UserID,
			Role:     claims.Role,
			TenantID: claims.TenantID,
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
