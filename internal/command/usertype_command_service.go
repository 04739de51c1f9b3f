package command

import (
	"context"
	"time"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/repository"
	"github.com/kestrelhq/kestrel/internal/utils"
)

// UserTypeCommandService writes user type state to PostgreSQL and keeps the
// Redis read model up to date.
type UserTypeCommandService struct {
	writeRepo *repository.UserTypeWriteRepository
	readRepo  *repository.UserTypeReadRepository
	userRepo  *repository.UserWriteRepository
}

func NewUserTypeCommandService(
	writeRepo *repository.UserTypeWriteRepository,
	readRepo *repository.UserTypeReadRepository,
	userRepo *repository.UserWriteRepository,
) *UserTypeCommandService {
	return &UserTypeCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		userRepo:  userRepo,
	}
}

func (s *UserTypeCommandService) CreateUserType(cmd cqrs.CreateUserTypeCommand) (*models.UserTypeView, error) {
	now := time.Now().UTC()
	ut := &models.UserType{
		ID:             utils.GenerateID("utp"),
		OrganizationID: cmd.OrganizationID,
		Name:           cmd.Name,
		Description:    cmd.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.writeRepo.Create(ut); err != nil {
		return nil, err
	}

	view := userTypeToView(ut)
	s.readRepo.CacheUserTypeView(context.Background(), view)
	return view, nil
}

func (s *UserTypeCommandService) UpdateUserType(cmd cqrs.UpdateUserTypeCommand) (*models.UserTypeView, error) {
	ut, err := s.writeRepo.GetByID(cmd.OrganizationID, cmd.UserTypeID)
	if err != nil {
		return nil, err
	}
	if cmd.Name != nil && *cmd.Name != ut.Name {
		// The seeded admin type anchors the role guard; the default type
		// anchors new-user assignment.
		if ut.Name == models.RoleAdmin || ut.IsDefault {
			return nil, ErrProtectedUserType
		}
		ut.Name = *cmd.Name
	}
	if cmd.Description != nil {
		ut.Description = *cmd.Description
	}
	ut.UpdatedAt = time.Now().UTC()
	if err := s.writeRepo.Update(ut); err != nil {
		return nil, err
	}

	view := userTypeToView(ut)
	s.readRepo.CacheUserTypeView(context.Background(), view)
	return view, nil
}

// DeleteUserType rejects the operation while users still hold the type, and
// always for the organization's default type.
func (s *UserTypeCommandService) DeleteUserType(cmd cqrs.DeleteUserTypeCommand) error {
	ut, err := s.writeRepo.GetByID(cmd.OrganizationID, cmd.UserTypeID)
	if err != nil {
		return err
	}
	if ut.IsDefault {
		return ErrDefaultUserType
	}

	count, err := s.userRepo.CountByUserType(cmd.OrganizationID, cmd.UserTypeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUserTypeInUse
	}

	if err := s.writeRepo.Delete(cmd.OrganizationID, cmd.UserTypeID); err != nil {
		return err
	}
	s.readRepo.InvalidateUserTypeView(context.Background(), cmd.UserTypeID)
	return nil
}

func userTypeToView(ut *models.UserType) *models.UserTypeView {
	return &models.UserTypeView{
		ID:             ut.ID,
		OrganizationID: ut.OrganizationID,
		Name:           ut.Name,
		Description:    ut.Description,
		IsDefault:      ut.IsDefault,
		CreatedAt:      ut.CreatedAt,
		UpdatedAt:      ut.UpdatedAt,
	}
}
