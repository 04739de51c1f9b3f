package cqrs

// ---------- Auth queries ----------

// ListSessionsQuery fetches the caller's active sessions.
type ListSessionsQuery struct {
	UserID           string
	CurrentSessionID string
}

// ---------- User queries ----------

// GetUserQuery fetches a single user by ID, subject to role/ownership checks.
type GetUserQuery struct {
	UserID           string
	OrganizationID   string
	RequestingUserID string
	RequestingRole   string
}

// ListUsersQuery fetches a page of an organization's users.
type ListUsersQuery struct {
	OrganizationID string
	Page           int
	PerPage        int
	Search         string
	UserTypeID     string
}

// ---------- Organization queries ----------

// GetOrganizationQuery fetches a single organization.
type GetOrganizationQuery struct {
	OrganizationID string
}

// ListOrganizationsQuery fetches a page of all organizations.
// Platform-level; reachable only from the operations CLI.
type ListOrganizationsQuery struct {
	Page    int
	PerPage int
}

// ---------- User type queries ----------

// GetUserTypeQuery fetches a single user type within an organization.
type GetUserTypeQuery struct {
	UserTypeID     string
	OrganizationID string
}

// ListUserTypesQuery fetches a page of an organization's user types.
type ListUserTypesQuery struct {
	OrganizationID string
	Page           int
	PerPage        int
}
