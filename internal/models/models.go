package models

import "time"

// Built-in user types seeded for every organization.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdTimestamp"`
	UpdatedAt   time.Time `json:"updatedTimestamp"`
}

type UserType struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	IsDefault      bool      `json:"isDefault"`
	CreatedAt      time.Time `json:"createdTimestamp"`
	UpdatedAt      time.Time `json:"updatedTimestamp"`
}

type User struct {
	ID                  string     `json:"id"`
	OrganizationID      string     `json:"organizationId"`
	UserTypeID          string     `json:"userTypeId"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	PhoneNumber         string     `json:"phoneNumber,omitempty"`
	Active              bool       `json:"active"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	ResetTokenHash      string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdTimestamp"`
	UpdatedAt           time.Time  `json:"updatedTimestamp"`
}

type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	OrganizationID string    `json:"-"`
	TokenHash      string    `json:"-"`
	UserAgent      string    `json:"userAgent,omitempty"`
	IPAddress      string    `json:"ipAddress,omitempty"`
	ExpiresAt      time.Time `json:"expiresTimestamp"`
	LastUsedAt     time.Time `json:"lastUsedTimestamp"`
	Revoked        bool      `json:"-"`
	CreatedAt      time.Time `json:"createdTimestamp"`
}
