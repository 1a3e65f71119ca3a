package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/pkg/auth"
)

func uintPtr(v uint) *uint { return &v }

func TestAuthMiddleware(t *testing.T) {
	auth.Init("test-signing-key")

	var captured *identity.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor, ok := ActorFromContext(r.Context()); ok {
			captured = &actor
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(next)

	t.Run("valid token", func(t *testing.T) {
		captured = nil
		token, err := auth.GenerateToken(7, identity.RoleSeller, uintPtr(3), time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, uint(7), captured.ID)
		assert.Equal(t, identity.RoleSeller, captured.Role)
		require.NotNil(t, captured.TenantID)
		assert.Equal(t, uint(3), *captured.TenantID)
	})

	t.Run("missing header", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, captured)
	})

	t.Run("garbage token", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, captured)
	})

	t.Run("expired token", func(t *testing.T) {
		captured = nil
		token, err := auth.GenerateToken(7, identity.RoleSeller, nil, -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RequestID(next)

	t.Run("generated when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("caller's id preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})
}
