package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/logger"
	"github.com/labstock/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// RevocationChecker reports whether a token ID has been revoked by a logout
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthConfig holds configuration for the JWT authentication middleware
type AuthConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Revocation is optional; when set, revoked tokens are rejected
	Revocation RevocationChecker
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAuthConfig returns the default authentication configuration
func DefaultAuthConfig(jwtService *auth.JWTService) AuthConfig {
	return AuthConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/anonymous",
			"/api/v1/auth/refresh",
		},
	}
}

// Auth creates JWT authentication middleware with default configuration
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return AuthWithConfig(DefaultAuthConfig(jwtService))
}

// AuthWithConfig creates JWT authentication middleware with custom config
func AuthWithConfig(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.Revocation != nil && claims.ID != "" {
			revoked, err := cfg.Revocation.IsTokenRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open: a blacklist outage should not take the API down
				if cfg.Logger != nil {
					cfg.Logger.Error("Failed to check token revocation",
						zap.String("jti", claims.ID),
						zap.Error(err))
				}
			} else if revoked {
				abortUnauthorized(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)

		// Propagate the user ID into the request context for logging
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// abortUnauthorized rejects the request with a 401 and a code describing the
// specific token failure
func abortUnauthorized(c *gin.Context, cfg AuthConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := dto.ErrCodeUnauthorized
	errorMessage := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		errorCode = "TOKEN_REVOKED"
		errorMessage = "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType):
		errorCode = "INVALID_TOKEN_TYPE"
		errorMessage = "Invalid token type"
	case errors.Is(err, auth.ErrInvalidToken):
		errorCode = "INVALID_TOKEN"
		errorMessage = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(errorCode, errorMessage, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	if userID, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetActor builds the acting user reference from the validated claims.
// Returns false when the request carries no authenticated identity.
func GetActor(c *gin.Context) (inventory.UserRef, bool) {
	claims := GetJWTClaims(c)
	if claims == nil || claims.UserID == "" {
		return inventory.UserRef{}, false
	}
	return inventory.UserRef{
		UserID:      claims.UserID,
		DisplayName: claims.DisplayName,
		Anonymous:   claims.Anonymous,
	}, true
}
