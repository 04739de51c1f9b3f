package command

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/internal/metrics"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/password"
	"github.com/kestrelhq/kestrel/internal/repository"
	"github.com/kestrelhq/kestrel/internal/utils"
)

// UserCommandService writes user state to PostgreSQL and keeps the Redis
// read model up to date.
type UserCommandService struct {
	writeRepo *repository.UserWriteRepository
	readRepo  *repository.UserReadRepository
	typeRepo  *repository.UserTypeWriteRepository
	orgRepo   *repository.OrganizationWriteRepository
	sessions  *repository.SessionRepository
	publisher *events.Publisher
}

func NewUserCommandService(
	writeRepo *repository.UserWriteRepository,
	readRepo *repository.UserReadRepository,
	typeRepo *repository.UserTypeWriteRepository,
	orgRepo *repository.OrganizationWriteRepository,
	sessions *repository.SessionRepository,
	publisher *events.Publisher,
) *UserCommandService {
	return &UserCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		typeRepo:  typeRepo,
		orgRepo:   orgRepo,
		sessions:  sessions,
		publisher: publisher,
	}
}

func (s *UserCommandService) CreateUser(cmd cqrs.CreateUserCommand) (*models.UserView, error) {
	userType, err := s.typeRepo.GetByID(cmd.OrganizationID, cmd.UserTypeID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(cmd.OrganizationID)
	if err != nil {
		return nil, err
	}

	passwordHash, err := password.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:             utils.GenerateID("usr"),
		OrganizationID: cmd.OrganizationID,
		UserTypeID:     cmd.UserTypeID,
		Name:           cmd.Name,
		Email:          cmd.Email,
		PasswordHash:   passwordHash,
		PhoneNumber:    cmd.PhoneNumber,
		Active:         active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.writeRepo.Create(user); err != nil {
		return nil, err
	}

	ctx := context.Background()
	view := userToView(user, userType.Name)
	s.readRepo.CacheUserView(ctx, view)
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserCreated, events.UserCreatedEvent{
		UserID:           user.ID,
		OrganizationID:   user.OrganizationID,
		OrganizationName: org.Name,
		Email:            user.Email,
		Name:             user.Name,
		Role:             userType.Name,
	}); err != nil {
		log.Error().Err(err).Msg("failed to publish user.created event")
	}
	return view, nil
}

func (s *UserCommandService) UpdateUser(cmd cqrs.UpdateUserCommand) (*models.UserView, error) {
	user, err := s.writeRepo.GetByID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID != cmd.OrganizationID {
		return nil, repository.ErrUserNotFound
	}

	// Non-admins may only touch their own name, phone number and password.
	self := cmd.RequestingUserID == cmd.UserID
	admin := cmd.RequestingRole == models.RoleAdmin
	if !admin && !self {
		return nil, ErrForbidden
	}
	if !admin && (cmd.UserTypeID != nil || cmd.Active != nil) {
		return nil, ErrForbidden
	}

	if cmd.Name != nil {
		user.Name = *cmd.Name
	}
	if cmd.PhoneNumber != nil {
		user.PhoneNumber = *cmd.PhoneNumber
	}
	if cmd.UserTypeID != nil {
		if *cmd.UserTypeID != user.UserTypeID {
			if err := s.guardLastAdmin(user); err != nil {
				return nil, err
			}
		}
		user.UserTypeID = *cmd.UserTypeID
	}
	if cmd.Active != nil {
		user.Active = *cmd.Active
	}

	passwordChanged := false
	if cmd.Password != nil {
		hash, err := password.HashPassword(*cmd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		passwordChanged = true
	}

	userType, err := s.typeRepo.GetByID(user.OrganizationID, user.UserTypeID)
	if err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.writeRepo.Update(user); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if passwordChanged {
		revoked, err := s.sessions.RevokeAllForUser(ctx, user.ID)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("failed to revoke sessions after password change")
		}
		metrics.RecordSessionsRevoked("password_changed", revoked)
	}

	view := userToView(user, userType.Name)
	s.readRepo.CacheUserView(ctx, view)
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserUpdated, events.UserUpdatedEvent{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		Name:           user.Name,
	}); err != nil {
		log.Error().Err(err).Msg("failed to publish user.updated event")
	}
	return view, nil
}

// DeleteUser soft-deletes a user and revokes their sessions. Self-deletion
// and removing the organization's last admin are rejected.
func (s *UserCommandService) DeleteUser(cmd cqrs.DeleteUserCommand) error {
	if cmd.UserID == cmd.RequestingUserID {
		return ErrSelfDelete
	}

	user, err := s.writeRepo.GetByID(cmd.UserID)
	if err != nil {
		return err
	}
	if user.OrganizationID != cmd.OrganizationID {
		return repository.ErrUserNotFound
	}
	if err := s.guardLastAdmin(user); err != nil {
		return err
	}

	if err := s.writeRepo.Delete(cmd.UserID); err != nil {
		return err
	}

	ctx := context.Background()
	revoked, err := s.sessions.RevokeAllForUser(ctx, cmd.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", cmd.UserID).Msg("failed to revoke sessions for deleted user")
	}
	metrics.RecordSessionsRevoked("user_deleted", revoked)

	s.readRepo.InvalidateUserView(ctx, cmd.UserID)
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserDeleted, events.UserDeletedEvent{
		UserID:         cmd.UserID,
		OrganizationID: cmd.OrganizationID,
	}); err != nil {
		log.Error().Err(err).Msg("failed to publish user.deleted event")
	}
	return nil
}

// guardLastAdmin rejects changes that would leave the organization without
// an admin.
func (s *UserCommandService) guardLastAdmin(user *models.User) error {
	userType, err := s.typeRepo.GetByID(user.OrganizationID, user.UserTypeID)
	if err != nil {
		return err
	}
	if userType.Name != models.RoleAdmin {
		return nil
	}
	count, err := s.writeRepo.CountByUserType(user.OrganizationID, user.UserTypeID)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func userToView(u *models.User, role string) *models.UserView {
	return &models.UserView{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		UserTypeID:     u.UserTypeID,
		Role:           role,
		Name:           u.Name,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		Active:         u.Active,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
