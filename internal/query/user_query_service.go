package query

import (
	"context"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/pagination"
	"github.com/kestrelhq/kestrel/internal/repository"
)

// UserQueryService handles all read operations for users.
type UserQueryService struct {
	readRepo *repository.UserReadRepository
}

func NewUserQueryService(readRepo *repository.UserReadRepository) *UserQueryService {
	return &UserQueryService{readRepo: readRepo}
}

// GetUser returns a single user. Admins can fetch anyone in their
// organization; other roles only themselves.
func (s *UserQueryService) GetUser(q cqrs.GetUserQuery) (*models.UserView, error) {
	if q.RequestingRole != models.RoleAdmin && q.RequestingUserID != q.UserID {
		return nil, ErrForbidden
	}
	return s.readRepo.GetByID(context.Background(), q.OrganizationID, q.UserID)
}

// ListUsers returns one page of the organization's users.
func (s *UserQueryService) ListUsers(q cqrs.ListUsersQuery) (*pagination.Page[models.UserView], error) {
	params := pagination.Params{Page: q.Page, PerPage: q.PerPage}
	users, total, err := s.readRepo.List(q.OrganizationID, params, q.Search, q.UserTypeID)
	if err != nil {
		return nil, err
	}
	page := pagination.NewPage(users, total, params)
	return &page, nil
}
