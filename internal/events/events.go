package events

import "time"

// Event types
const (
	UserRegistered = "user.registered"
	UserCreated    = "user.created"
	UserUpdated    = "user.updated"
	UserDeleted    = "user.deleted"

	OrganizationCreated = "org.created"
	OrganizationUpdated = "org.updated"
	OrganizationDeleted = "org.deleted"

	PasswordResetRequested = "auth.password_reset_requested"
)

// Stream names
const (
	UserEventsStream = "user.events"
	OrgEventsStream  = "org.events"
	AuthEventsStream = "auth.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// User events
type UserRegisteredEvent struct {
	UserID           string `json:"userId"`
	OrganizationID   string `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
	Email            string `json:"email"`
	Name             string `json:"name"`
}

type UserCreatedEvent struct {
	UserID           string `json:"userId"`
	OrganizationID   string `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
}

type UserUpdatedEvent struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
	Email          string `json:"email"`
	Name           string `json:"name"`
}

type UserDeletedEvent struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
}

// Organization events
type OrganizationCreatedEvent struct {
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
}

type OrganizationUpdatedEvent struct {
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
}

type OrganizationDeletedEvent struct {
	OrganizationID string `json:"organizationId"`
}

// Auth events
type PasswordResetRequestedEvent struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
