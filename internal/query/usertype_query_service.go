package query

import (
	"context"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/pagination"
	"github.com/kestrelhq/kestrel/internal/repository"
)

// UserTypeQueryService handles all read operations for user types.
type UserTypeQueryService struct {
	readRepo *repository.UserTypeReadRepository
}

func NewUserTypeQueryService(readRepo *repository.UserTypeReadRepository) *UserTypeQueryService {
	return &UserTypeQueryService{readRepo: readRepo}
}

func (s *UserTypeQueryService) GetUserType(q cqrs.GetUserTypeQuery) (*models.UserTypeView, error) {
	return s.readRepo.GetByID(context.Background(), q.OrganizationID, q.UserTypeID)
}

func (s *UserTypeQueryService) ListUserTypes(q cqrs.ListUserTypesQuery) (*pagination.Page[models.UserTypeView], error) {
	params := pagination.Params{Page: q.Page, PerPage: q.PerPage}
	types, total, err := s.readRepo.List(q.OrganizationID, params)
	if err != nil {
		return nil, err
	}
	page := pagination.NewPage(types, total, params)
	return &page, nil
}
