package cqrs

type RegisterCommand struct {
	OrganizationName string
	OrganizationSlug string
	Name             string
	Email            string
	Password         string
	PhoneNumber      string
	UserAgent        string
	IPAddress        string
}

type LoginCommand struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type RefreshTokenCommand struct {
	RefreshToken string
}

type LogoutCommand struct {
	SessionID string
}

type ForgotPasswordCommand struct {
	Email string
}

type ResetPasswordCommand struct {
	Token       string
	NewPassword string
}

type RevokeSessionCommand struct {
	SessionID        string
	RequestingUserID string
}

type CreateUserCommand struct {
	OrganizationID string
	UserTypeID     string
	Name           string
	Email          string
	Password       string
	PhoneNumber    string
	Active         *bool
}

type UpdateUserCommand struct {
	UserID           string
	OrganizationID   string
	RequestingUserID string
	RequestingRole   string
	Name             *string
	PhoneNumber      *string
	Password         *string
	UserTypeID       *string
	Active           *bool
}

type DeleteUserCommand struct {
	UserID           string
	OrganizationID   string
	RequestingUserID string
}

type CreateOrganizationCommand struct {
	Name        string
	Slug        string
	Email       string
	PhoneNumber string
}

type UpdateOrganizationCommand struct {
	OrganizationID string
	Name           *string
	Email          *string
	PhoneNumber    *string
	Active         *bool
}

type DeleteOrganizationCommand struct {
	OrganizationID string
}

type CreateUserTypeCommand struct {
	OrganizationID string
	Name           string
	Description    string
}

type UpdateUserTypeCommand struct {
	UserTypeID     string
	OrganizationID string
	Name           *string
	Description    *string
}

type DeleteUserTypeCommand struct {
	UserTypeID     string
	OrganizationID string
}
