package repository

import "errors"

// Sentinel errors returned by the repositories. Handlers translate them to
// HTTP statuses.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailExists          = errors.New("email already exists")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrSlugExists           = errors.New("organization slug already exists")
	ErrUserTypeNotFound     = errors.New("user type not found")
	ErrUserTypeNameExists   = errors.New("user type name already exists")
	ErrSessionNotFound      = errors.New("session not found")
)
