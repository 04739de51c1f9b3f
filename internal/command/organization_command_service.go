package command

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/internal/metrics"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/repository"
	"github.com/kestrelhq/kestrel/internal/utils"
)

// OrganizationCommandService writes organization state to PostgreSQL and
// keeps the Redis read model up to date. Creating an organization also seeds
// its built-in user types.
type OrganizationCommandService struct {
	writeRepo *repository.OrganizationWriteRepository
	readRepo  *repository.OrganizationReadRepository
	typeRepo  *repository.UserTypeWriteRepository
	sessions  *repository.SessionRepository
	publisher *events.Publisher
}

func NewOrganizationCommandService(
	writeRepo *repository.OrganizationWriteRepository,
	readRepo *repository.OrganizationReadRepository,
	typeRepo *repository.UserTypeWriteRepository,
	sessions *repository.SessionRepository,
	publisher *events.Publisher,
) *OrganizationCommandService {
	return &OrganizationCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		typeRepo:  typeRepo,
		sessions:  sessions,
		publisher: publisher,
	}
}

func (s *OrganizationCommandService) CreateOrganization(cmd cqrs.CreateOrganizationCommand) (*models.Organization, error) {
	slug := cmd.Slug
	if slug == "" {
		slug = utils.Slugify(cmd.Name)
	}

	now := time.Now().UTC()
	org := &models.Organization{
		ID:          utils.GenerateID("org"),
		Name:        cmd.Name,
		Slug:        slug,
		Email:       cmd.Email,
		PhoneNumber: cmd.PhoneNumber,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.writeRepo.Create(org); err != nil {
		return nil, err
	}

	if err := s.seedUserTypes(org.ID); err != nil {
		return nil, err
	}

	ctx := context.Background()
	s.readRepo.CacheOrganizationView(ctx, organizationToView(org))
	if err := s.publisher.Publish(ctx, events.OrgEventsStream, events.OrganizationCreated, events.OrganizationCreatedEvent{
		OrganizationID: org.ID,
		Name:           org.Name,
		Slug:           org.Slug,
	}); err != nil {
		log.Error().Err(err).Msg("failed to publish org.created event")
	}
	return org, nil
}

// seedUserTypes creates the built-in admin and member types for a new
// organization. Member is the default type for new users.
func (s *OrganizationCommandService) seedUserTypes(organizationID string) error {
	now := time.Now().UTC()
	seeds := []*models.UserType{
		{
			ID:             utils.GenerateID("utp"),
			OrganizationID: organizationID,
			Name:           models.RoleAdmin,
			Description:    "Full access to the organization",
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             utils.GenerateID("utp"),
			OrganizationID: organizationID,
			Name:           models.RoleMember,
			Description:    "Standard member access",
			IsDefault:      true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
	for _, ut := range seeds {
		if err := s.typeRepo.Create(ut); err != nil {
			return fmt.Errorf("failed to seed user types: %w", err)
		}
	}
	return nil
}

func (s *OrganizationCommandService) UpdateOrganization(cmd cqrs.UpdateOrganizationCommand) (*models.OrganizationView, error) {
	org, err := s.writeRepo.GetByID(cmd.OrganizationID)
	if err != nil {
		return nil, err
	}
	if cmd.Name != nil {
		org.Name = *cmd.Name
	}
	if cmd.Email != nil {
		org.Email = *cmd.Email
	}
	if cmd.PhoneNumber != nil {
		org.PhoneNumber = *cmd.PhoneNumber
	}
	if cmd.Active != nil {
		org.Active = *cmd.Active
	}
	org.UpdatedAt = time.Now().UTC()
	if err := s.writeRepo.Update(org); err != nil {
		return nil, err
	}

	ctx := context.Background()
	view := organizationToView(org)
	s.readRepo.CacheOrganizationView(ctx, view)
	if err := s.publisher.Publish(ctx, events.OrgEventsStream, events.OrganizationUpdated, events.OrganizationUpdatedEvent{
		OrganizationID: org.ID,
		Name:           org.Name,
	}); err != nil {
		log.Error().Err(err).Msg("failed to publish org.updated event")
	}
	return view, nil
}

// DeleteOrganization soft-deletes the organization and revokes every session
// belonging to it.
func (s *OrganizationCommandService) DeleteOrganization(cmd cqrs.DeleteOrganizationCommand) error {
	if err := s.writeRepo.Delete(cmd.OrganizationID); err != nil {
		return err
	}

	ctx := context.Background()
	revoked, err := s.sessions.RevokeAllForOrganization(ctx, cmd.OrganizationID)
	if err != nil {
		log.Error().Err(err).Str("org_id", cmd.OrganizationID).Msg("failed to revoke organization sessions")
	}
	metrics.RecordSessionsRevoked("org_deleted", revoked)

	s.readRepo.InvalidateOrganizationView(ctx, cmd.OrganizationID)
	if err := s.publisher.Publish(ctx, events.OrgEventsStream, events.OrganizationDeleted, events.OrganizationDeletedEvent{
		OrganizationID: cmd.OrganizationID,
	}); err != nil {
		log.Error().Err(err).Msg("failed to publish org.deleted event")
	}
	return nil
}

func organizationToView(o *models.Organization) *models.OrganizationView {
	return &models.OrganizationView{
		ID:          o.ID,
		Name:        o.Name,
		Slug:        o.Slug,
		Email:       o.Email,
		PhoneNumber: o.PhoneNumber,
		Active:      o.Active,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
