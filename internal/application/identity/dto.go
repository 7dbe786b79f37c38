package identity

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput contains registration data
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"max=200"`
}

// LoginInput contains login credentials
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AnonymousInput contains optional data for an anonymous session
type AnonymousInput struct {
	DisplayName string `json:"display_name" binding:"max=200"`
}

// RefreshInput contains the refresh token
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserInfo describes the authenticated subject
type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Anonymous   bool      `json:"anonymous"`
}

// AuthResult carries tokens plus the subject they were issued for
type AuthResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}
