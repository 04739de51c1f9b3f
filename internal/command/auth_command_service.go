package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/internal/metrics"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/password"
	"github.com/kestrelhq/kestrel/internal/repository"
	"github.com/kestrelhq/kestrel/internal/token"
	"github.com/kestrelhq/kestrel/internal/utils"
)

// AuthResult is returned by the flows that establish a session.
type AuthResult struct {
	User         *models.UserView         `json:"user"`
	Organization *models.OrganizationView `json:"organization"`
	AccessToken  string                   `json:"accessToken"`
	RefreshToken string                   `json:"refreshToken"`
}

// AuthCommandService implements the state-changing auth flows: registration,
// login, refresh rotation, logout, password reset and session revocation.
type AuthCommandService struct {
	userWrite  *repository.UserWriteRepository
	userRead   *repository.UserReadRepository
	orgWrite   *repository.OrganizationWriteRepository
	orgCommand *OrganizationCommandService
	typeRepo   *repository.UserTypeWriteRepository
	sessions   *repository.SessionRepository
	tokens     *token.Service
	publisher  *events.Publisher
	refreshTTL time.Duration
	resetTTL   time.Duration
}

func NewAuthCommandService(
	userWrite *repository.UserWriteRepository,
	userRead *repository.UserReadRepository,
	orgWrite *repository.OrganizationWriteRepository,
	orgCommand *OrganizationCommandService,
	typeRepo *repository.UserTypeWriteRepository,
	sessions *repository.SessionRepository,
	tokens *token.Service,
	publisher *events.Publisher,
	refreshTTL, resetTTL time.Duration,
) *AuthCommandService {
	return &AuthCommandService{
		userWrite:  userWrite,
		userRead:   userRead,
		orgWrite:   orgWrite,
		orgCommand: orgCommand,
		typeRepo:   typeRepo,
		sessions:   sessions,
		tokens:     tokens,
		publisher:  publisher,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
	}
}

// Register creates an organization, seeds its user types and creates the
// first user as its admin. The new user is logged in immediately.
func (s *AuthCommandService) Register(cmd cqrs.RegisterCommand) (*AuthResult, error) {
	if _, err := s.userWrite.GetByEmail(cmd.Email); err == nil {
		return nil, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	org, err := s.orgCommand.CreateOrganization(cqrs.CreateOrganizationCommand{
		Name:        cmd.OrganizationName,
		Slug:        cmd.OrganizationSlug,
		Email:       cmd.Email,
		PhoneNumber: cmd.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	adminType, err := s.typeRepo.GetByName(org.ID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	passwordHash, err := password.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:             utils.GenerateID("usr"),
		OrganizationID: org.ID,
		UserTypeID:     adminType.ID,
		Name:           cmd.Name,
		Email:          cmd.Email,
		PasswordHash:   passwordHash,
		PhoneNumber:    cmd.PhoneNumber,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.userWrite.Create(user); err != nil {
		// No transactions here, so undo the organization by hand.
		if delErr := s.orgWrite.Delete(org.ID); delErr != nil {
			log.Error().Err(delErr).Str("organization_id", org.ID).
				Msg("failed to remove organization after aborted registration")
		}
		return nil, err
	}

	ctx := context.Background()
	accessToken, refreshToken, err := s.issueSession(ctx, user, adminType.Name, cmd.UserAgent, cmd.IPAddress)
	if err != nil {
		return nil, err
	}

	metrics.RecordRegistration()
	view := userToView(user, adminType.Name)
	s.userRead.CacheUserView(ctx, view)
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID:           user.ID,
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		Email:            user.Email,
		Name:             user.Name,
	}); err != nil {
		log.Error().Err(err).Msg("failed to publish user.registered event")
	}

	return &AuthResult{
		User:         view,
		Organization: organizationToView(org),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Login checks credentials and opens a session. Every failure mode maps to
// the same error so callers cannot probe which emails exist.
func (s *AuthCommandService) Login(cmd cqrs.LoginCommand) (*AuthResult, error) {
	user, err := s.userWrite.GetByEmail(cmd.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.RecordLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !password.CheckPassword(cmd.Password, user.PasswordHash) {
		metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	org, err := s.orgWrite.GetByID(user.OrganizationID)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			metrics.RecordLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !org.Active {
		metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	userType, err := s.typeRepo.GetByID(user.OrganizationID, user.UserTypeID)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	accessToken, refreshToken, err := s.issueSession(ctx, user, userType.Name, cmd.UserAgent, cmd.IPAddress)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.userWrite.UpdateLastLogin(user.ID, now); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	} else {
		user.LastLoginAt = &now
	}

	metrics.RecordLogin(true)
	view := userToView(user, userType.Name)
	s.userRead.CacheUserView(ctx, view)

	return &AuthResult{
		User:         view,
		Organization: organizationToView(org),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access/refresh pair.
// The old refresh token is rotated out in the same step, so each one is
// single use.
func (s *AuthCommandService) Refresh(cmd cqrs.RefreshTokenCommand) (*AuthResult, error) {
	ctx := context.Background()

	session, err := s.sessions.GetByTokenHash(ctx, token.HashToken(cmd.RefreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	now := time.Now().UTC()
	if session.Revoked || !session.ExpiresAt.After(now) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userWrite.GetByID(session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	org, err := s.orgWrite.GetByID(user.OrganizationID)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.Active || !org.Active {
		return nil, ErrInvalidRefreshToken
	}

	userType, err := s.typeRepo.GetByID(user.OrganizationID, user.UserTypeID)
	if err != nil {
		return nil, err
	}

	newRefresh, newHash, err := s.tokens.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Rotate(ctx, session.ID, newHash, now.Add(s.refreshTTL)); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(token.AccessTokenParams{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           userType.Name,
		SessionID:      session.ID,
		Email:          user.Email,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         userToView(user, userType.Name),
		Organization: organizationToView(org),
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

// Logout revokes the caller's own session. Already-revoked sessions are
// treated as success so logout stays idempotent.
func (s *AuthCommandService) Logout(cmd cqrs.LogoutCommand) error {
	err := s.sessions.Revoke(context.Background(), cmd.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	metrics.RecordSessionsRevoked("logout", 1)
	return nil
}

// ForgotPassword issues a reset token for the given email. Unknown and
// inactive accounts return success without doing anything, so the endpoint
// does not leak which emails are registered.
func (s *AuthCommandService) ForgotPassword(cmd cqrs.ForgotPasswordCommand) error {
	user, err := s.userWrite.GetByEmail(cmd.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.Active {
		return nil
	}

	raw, hash, err := password.NewResetToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(s.resetTTL)
	if err := s.userWrite.SetResetToken(user.ID, hash, expiresAt); err != nil {
		return err
	}

	ctx := context.Background()
	if err := s.publisher.Publish(ctx, events.AuthEventsStream, events.PasswordResetRequested, events.PasswordResetRequestedEvent{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		Token:       raw,
		ExpiresAt:   expiresAt,
	}); err != nil {
		log.Error().Err(err).Msg("failed to publish password reset event")
	}
	return nil
}

// ResetPassword consumes a reset token, sets the new password and revokes
// every session the user holds.
func (s *AuthCommandService) ResetPassword(cmd cqrs.ResetPasswordCommand) error {
	user, err := s.userWrite.GetByResetTokenHash(password.HashResetToken(cmd.Token))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if user.ResetTokenExpiresAt == nil || !user.ResetTokenExpiresAt.After(time.Now().UTC()) {
		return ErrInvalidResetToken
	}

	passwordHash, err := password.HashPassword(cmd.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userWrite.UpdatePassword(user.ID, passwordHash); err != nil {
		return err
	}

	revoked, err := s.sessions.RevokeAllForUser(context.Background(), user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to revoke sessions after password reset")
	}
	metrics.RecordSessionsRevoked("password_reset", revoked)
	return nil
}

// RevokeSession revokes one of the caller's sessions by ID. Used by the
// session list UI to sign out another device.
func (s *AuthCommandService) RevokeSession(cmd cqrs.RevokeSessionCommand) error {
	ctx := context.Background()

	session, err := s.sessions.GetByID(ctx, cmd.SessionID)
	if err != nil {
		return err
	}
	if session.UserID != cmd.RequestingUserID {
		return ErrForbidden
	}

	if err := s.sessions.Revoke(ctx, cmd.SessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	metrics.RecordSessionsRevoked("user_revoked", 1)
	return nil
}

// issueSession creates the session row and mints the token pair for it.
func (s *AuthCommandService) issueSession(ctx context.Context, user *models.User, role, userAgent, ipAddress string) (string, string, error) {
	refreshToken, tokenHash, err := s.tokens.NewRefreshToken()
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		TokenHash:      tokenHash,
		UserAgent:      userAgent,
		IPAddress:      ipAddress,
		ExpiresAt:      now.Add(s.refreshTTL),
		LastUsedAt:     now,
		CreatedAt:      now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", "", err
	}

	accessToken, err := s.tokens.GenerateAccessToken(token.AccessTokenParams{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           role,
		SessionID:      session.ID,
		Email:          user.Email,
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
