package query

import (
	"context"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/pagination"
	"github.com/kestrelhq/kestrel/internal/repository"
)

// OrganizationQueryService handles all read operations for organizations.
type OrganizationQueryService struct {
	readRepo *repository.OrganizationReadRepository
}

func NewOrganizationQueryService(readRepo *repository.OrganizationReadRepository) *OrganizationQueryService {
	return &OrganizationQueryService{readRepo: readRepo}
}

func (s *OrganizationQueryService) GetOrganization(q cqrs.GetOrganizationQuery) (*models.OrganizationView, error) {
	return s.readRepo.GetByID(context.Background(), q.OrganizationID)
}

// ListOrganizations is platform-level and has no HTTP route; the operations
// CLI uses it.
func (s *OrganizationQueryService) ListOrganizations(q cqrs.ListOrganizationsQuery) (*pagination.Page[models.OrganizationView], error) {
	params := pagination.Params{Page: q.Page, PerPage: q.PerPage}
	orgs, total, err := s.readRepo.List(params)
	if err != nil {
		return nil, err
	}
	page := pagination.NewPage(orgs, total, params)
	return &page, nil
}
