package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/labstock/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents an identity in the system, either a registered account
// (email + password) or an anonymous session subject.
type User struct {
	shared.BaseAggregateRoot
	Email        string     `gorm:"type:varchar(255);uniqueIndex:idx_users_email,where:email <> ''"`
	PasswordHash string     `gorm:"type:varchar(255)"`
	DisplayName  string     `gorm:"type:varchar(255)"`
	Anonymous    bool       `gorm:"not null;default:false"`
	LastLoginAt  *time.Time ``
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a registered user from email and password
func NewUser(email, password, displayName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		DisplayName:       strings.TrimSpace(displayName),
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// NewAnonymousUser creates an anonymous session subject. It carries no
// credentials and signs in only through the anonymous flow.
func NewAnonymousUser() *User {
	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Anonymous:         true,
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if u.Anonymous || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin records a successful sign-in
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	u.IncrementVersion()
}

// SetDisplayName updates the display name
func (u *User) SetDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > 200 {
		return shared.NewDomainError("VALIDATION_ERROR", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = displayName
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Label returns the best available human-readable identifier
func (u *User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("VALIDATION_ERROR", "Email format is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("VALIDATION_ERROR", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("VALIDATION_ERROR", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
