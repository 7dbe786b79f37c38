package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/labstock/backend/internal/application/identity"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/anonymous", h.Anonymous)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}
}

// Register creates a new account and signs it in
func (h *AuthHandler) Register(c *gin.Context) {
	var input identity.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Login authenticates with email and password
func (h *AuthHandler) Login(c *gin.Context) {
	var input identity.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Anonymous starts an unauthenticated guest session. The body is optional
// and may carry a display name for the audit trail.
func (h *AuthHandler) Anonymous(c *gin.Context) {
	var input identity.AnonymousInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			h.HandleBindError(c, err)
			return
		}
	}

	result, err := h.authService.LoginAnonymous(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input identity.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// LogoutRequest carries the refresh token to revoke alongside the access
// token taken from the Authorization header
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the current session's tokens
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.HandleBindError(c, err)
			return
		}
	}

	accessToken := strings.TrimPrefix(c.GetHeader(middleware.AuthHeaderKey), middleware.BearerPrefix)

	if err := h.authService.Logout(c.Request.Context(), accessToken, req.RefreshToken); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Logged out"})
}
