package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelhq/kestrel/internal/command"
	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/middleware"
	"github.com/kestrelhq/kestrel/internal/models"
)

// AuthCommander defines the write-side operations used by AuthHandler.
type AuthCommander interface {
	Register(cqrs.RegisterCommand) (*command.AuthResult, error)
	Login(cqrs.LoginCommand) (*command.AuthResult, error)
	Refresh(cqrs.RefreshTokenCommand) (*command.AuthResult, error)
	Logout(cqrs.LogoutCommand) error
	ForgotPassword(cqrs.ForgotPasswordCommand) error
	ResetPassword(cqrs.ResetPasswordCommand) error
	RevokeSession(cqrs.RevokeSessionCommand) error
}

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Me(organizationID, userID string) (*models.UserView, error)
	ListSessions(cqrs.ListSessionsQuery) ([]models.SessionView, error)
}

// AuthHandler routes auth requests to the command or query service.
type AuthHandler struct {
	commands AuthCommander
	queries  AuthQuerier
}

type RegisterRequest struct {
	OrganizationName string `json:"organizationName" validate:"required,min=2"`
	OrganizationSlug string `json:"organizationSlug" validate:"omitempty,min=2,max=64"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	PhoneNumber      string `json:"phoneNumber" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type SessionsResponse struct {
	Sessions []models.SessionView `json:"sessions"`
}

func NewAuthHandler(commands AuthCommander, queries AuthQuerier) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.commands.Register(cqrs.RegisterCommand{
		OrganizationName: req.OrganizationName,
		OrganizationSlug: req.OrganizationSlug,
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		PhoneNumber:      req.PhoneNumber,
		UserAgent:        c.Request.UserAgent(),
		IPAddress:        c.ClientIP(),
	})
	if err != nil {
		if err.Error() == "email already exists" {
			middleware.RespondWithError(c, http.StatusConflict, "An account with this email already exists")
			return
		}
		if err.Error() == "organization slug already exists" {
			middleware.RespondWithError(c, http.StatusConflict, "An organization with this slug already exists")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.commands.Login(cqrs.LoginCommand{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if err.Error() == "invalid credentials" {
			middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.commands.Refresh(cqrs.RefreshTokenCommand{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		if err.Error() == "invalid refresh token" {
			middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, TokenPairResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	if err := h.commands.Logout(cqrs.LogoutCommand{SessionID: sessionID}); err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to log out")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	if err := h.commands.ForgotPassword(cqrs.ForgotPasswordCommand{Email: req.Email}); err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to process request")
		return
	}

	// Same answer whether or not the account exists.
	c.JSON(http.StatusAccepted, gin.H{
		"message": "If the account exists, a password reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	err := h.commands.ResetPassword(cqrs.ResetPasswordCommand{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		if err.Error() == "invalid or expired reset token" {
			middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired reset token")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset",
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, _ := middleware.GetOrganizationID(c)

	view, err := h.queries.Me(orgID, userID)
	if err != nil {
		middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AuthHandler) ListSessions(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	sessionID, _ := middleware.GetSessionID(c)

	views, err := h.queries.ListSessions(cqrs.ListSessionsQuery{
		UserID:           userID,
		CurrentSessionID: sessionID,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	c.JSON(http.StatusOK, SessionsResponse{Sessions: views})
}

func (h *AuthHandler) RevokeSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	userID, _ := middleware.GetUserID(c)

	err := h.commands.RevokeSession(cqrs.RevokeSessionCommand{
		SessionID:        sessionID,
		RequestingUserID: userID,
	})
	if err != nil {
		if err.Error() == "session not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "Session not found")
			return
		}
		if err.Error() == "forbidden" {
			middleware.RespondWithError(c, http.StatusForbidden, "You can only revoke your own sessions")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to revoke session")
		return
	}

	c.Status(http.StatusNoContent)
}
