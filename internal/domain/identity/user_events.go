package identity

import (
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeUser = "User"

// Event type constants
const (
	EventTypeUserRegistered = "UserRegistered"
)

// UserRegisteredEvent is raised when a new identity (registered or anonymous)
// is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Anonymous bool      `json:"anonymous"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		UserID:          user.ID,
		Email:           user.Email,
		Anonymous:       user.Anonymous,
	}
}

// EventType returns the event type name
func (e *UserRegisteredEvent) EventType() string {
	return EventTypeUserRegistered
}
