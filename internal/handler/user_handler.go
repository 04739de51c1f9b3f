package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/middleware"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/pagination"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	CreateUser(cqrs.CreateUserCommand) (*models.UserView, error)
	UpdateUser(cqrs.UpdateUserCommand) (*models.UserView, error)
	DeleteUser(cqrs.DeleteUserCommand) error
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetUser(cqrs.GetUserQuery) (*models.UserView, error)
	ListUsers(cqrs.ListUsersQuery) (*pagination.Page[models.UserView], error)
}

// UserHandler routes requests to the command or query service as appropriate.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

type CreateUserRequest struct {
	UserTypeID  string `json:"userTypeId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164"`
	Active      *bool  `json:"active"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
	Password    *string `json:"password" validate:"omitempty,min=8"`
	UserTypeID  *string `json:"userTypeId" validate:"omitempty,min=1"`
	Active      *bool   `json:"active"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	orgID := c.Param("orgId")

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.CreateUser(cqrs.CreateUserCommand{
		OrganizationID: orgID,
		UserTypeID:     req.UserTypeID,
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		PhoneNumber:    req.PhoneNumber,
		Active:         req.Active,
	})
	if err != nil {
		if err.Error() == "email already exists" {
			middleware.RespondWithError(c, http.StatusConflict, "An account with this email already exists")
			return
		}
		if err.Error() == "user type not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "User type not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	orgID := c.Param("orgId")
	params := pagination.Parse(c.Query("page"), c.Query("perPage"))

	page, err := h.queries.ListUsers(cqrs.ListUsersQuery{
		OrganizationID: orgID,
		Page:           params.Page,
		PerPage:        params.PerPage,
		Search:         c.Query("search"),
		UserTypeID:     c.Query("userType"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	orgID := c.Param("orgId")
	userID := c.Param("userId")
	requestingUserID, _ := middleware.GetUserID(c)
	requestingRole, _ := middleware.GetRole(c)

	view, err := h.queries.GetUser(cqrs.GetUserQuery{
		UserID:           userID,
		OrganizationID:   orgID,
		RequestingUserID: requestingUserID,
		RequestingRole:   requestingRole,
	})
	if err != nil {
		if err.Error() == "forbidden" {
			middleware.RespondWithError(c, http.StatusForbidden, "You can only access your own user details")
			return
		}
		middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	orgID := c.Param("orgId")
	userID := c.Param("userId")
	requestingUserID, _ := middleware.GetUserID(c)
	requestingRole, _ := middleware.GetRole(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateUser(cqrs.UpdateUserCommand{
		UserID:           userID,
		OrganizationID:   orgID,
		RequestingUserID: requestingUserID,
		RequestingRole:   requestingRole,
		Name:             req.Name,
		PhoneNumber:      req.PhoneNumber,
		Password:         req.Password,
		UserTypeID:       req.UserTypeID,
		Active:           req.Active,
	})
	if err != nil {
		if err.Error() == "user not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
			return
		}
		if err.Error() == "user type not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "User type not found")
			return
		}
		if err.Error() == "forbidden" {
			middleware.RespondWithError(c, http.StatusForbidden, "You can only update your own user details")
			return
		}
		if err.Error() == "organization must keep at least one admin" {
			middleware.RespondWithError(c, http.StatusConflict, "The organization's last admin cannot be demoted")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	orgID := c.Param("orgId")
	userID := c.Param("userId")
	requestingUserID, _ := middleware.GetUserID(c)

	err := h.commands.DeleteUser(cqrs.DeleteUserCommand{
		UserID:           userID,
		OrganizationID:   orgID,
		RequestingUserID: requestingUserID,
	})
	if err != nil {
		if err.Error() == "user not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
			return
		}
		if err.Error() == "cannot delete your own account" {
			middleware.RespondWithError(c, http.StatusConflict, "You cannot delete your own account")
			return
		}
		if err.Error() == "organization must keep at least one admin" {
			middleware.RespondWithError(c, http.StatusConflict, "The organization's last admin cannot be deleted")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}
