package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/config"
)

type stubRevocation struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocation) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-middleware-tests",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "labstock-test",
	})
}

func newAuthEngine(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AuthWithConfig(cfg))
	r.GET("/api/v1/items", func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "display_name": actor.DisplayName})
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:      userID,
		DisplayName: "Alice",
	})
	require.NoError(t, err)

	t.Run("valid token passes and exposes the actor", func(t *testing.T) {
		r := newAuthEngine(DefaultAuthConfig(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), "Alice")
	})

	t.Run("missing header rejected", func(t *testing.T) {
		r := newAuthEngine(DefaultAuthConfig(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		r := newAuthEngine(DefaultAuthConfig(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		req.Header.Set(AuthHeaderKey, "Token abc")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token reports TOKEN_EXPIRED", func(t *testing.T) {
		expiredSvc := newTestJWTService(-time.Minute)
		expired, err := expiredSvc.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID})
		require.NoError(t, err)

		r := newAuthEngine(DefaultAuthConfig(expiredSvc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+expired.AccessToken)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("refresh token rejected on access endpoints", func(t *testing.T) {
		r := newAuthEngine(DefaultAuthConfig(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.RefreshToken)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("revoked token rejected", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		cfg := DefaultAuthConfig(svc)
		cfg.Revocation = &stubRevocation{revoked: map[string]bool{claims.ID: true}}
		r := newAuthEngine(cfg)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
	})

	t.Run("revocation check failure fails open", func(t *testing.T) {
		cfg := DefaultAuthConfig(svc)
		cfg.Revocation = &stubRevocation{err: assert.AnError}
		r := newAuthEngine(cfg)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		r := newAuthEngine(DefaultAuthConfig(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
