package models

import "time"

// UserView is the read-optimised projection of a user.
// Role is the denormalised user type name; PasswordHash is never exposed.
type UserView struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId"`
	UserTypeID     string     `json:"userTypeId"`
	Role           string     `json:"role"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	Active         bool       `json:"active"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `json:"createdTimestamp"`
	UpdatedAt      time.Time  `json:"updatedTimestamp"`
}

// OrganizationView is the read-optimised projection of an organization.
type OrganizationView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdTimestamp"`
	UpdatedAt   time.Time `json:"updatedTimestamp"`
}

// UserTypeView is the read-optimised projection of a user type.
type UserTypeView struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	IsDefault      bool      `json:"isDefault"`
	CreatedAt      time.Time `json:"createdTimestamp"`
	UpdatedAt      time.Time `json:"updatedTimestamp"`
}

// SessionView is what a user sees when listing their own sessions.
// UserID is populated for ownership checks but never serialised to the API response.
type SessionView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	UserAgent  string    `json:"userAgent,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	Current    bool      `json:"current"`
	CreatedAt  time.Time `json:"createdTimestamp"`
	LastUsedAt time.Time `json:"lastUsedTimestamp"`
	ExpiresAt  time.Time `json:"expiresTimestamp"`
}

// SessionState is the Redis-cached revocation snapshot checked on every
// authenticated request.
type SessionState struct {
	ID        string    `json:"id"`
	Revoked   bool      `json:"revoked"`
	ExpiresAt time.Time `json:"expiresAt"`
}
