package command

import "errors"

// Guard errors surfaced to handlers. The repositories own the not-found and
// uniqueness errors; these cover rules that span rows.
var (
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrUserTypeInUse       = errors.New("user type is in use")
	ErrDefaultUserType     = errors.New("default user type cannot be deleted")
	ErrProtectedUserType   = errors.New("built-in user type cannot be renamed")
	ErrLastAdmin           = errors.New("organization must keep at least one admin")
	ErrSelfDelete          = errors.New("cannot delete your own account")
)
