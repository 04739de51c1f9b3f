package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/middleware"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/pagination"
)

// UserTypeCommander defines the write-side operations used by UserTypeHandler.
type UserTypeCommander interface {
	CreateUserType(cqrs.CreateUserTypeCommand) (*models.UserTypeView, error)
	UpdateUserType(cqrs.UpdateUserTypeCommand) (*models.UserTypeView, error)
	DeleteUserType(cqrs.DeleteUserTypeCommand) error
}

// UserTypeQuerier defines the read-side operations used by UserTypeHandler.
type UserTypeQuerier interface {
	GetUserType(cqrs.GetUserTypeQuery) (*models.UserTypeView, error)
	ListUserTypes(cqrs.ListUserTypesQuery) (*pagination.Page[models.UserTypeView], error)
}

type UserTypeHandler struct {
	commands UserTypeCommander
	queries  UserTypeQuerier
}

type CreateUserTypeRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

type UpdateUserTypeRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=64"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

func NewUserTypeHandler(commands UserTypeCommander, queries UserTypeQuerier) *UserTypeHandler {
	return &UserTypeHandler{commands: commands, queries: queries}
}

func (h *UserTypeHandler) CreateUserType(c *gin.Context) {
	orgID := c.Param("orgId")

	var req CreateUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.CreateUserType(cqrs.CreateUserTypeCommand{
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
	})
	if err != nil {
		if err.Error() == "user type name already exists" {
			middleware.RespondWithError(c, http.StatusConflict, "A user type with this name already exists")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create user type")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *UserTypeHandler) ListUserTypes(c *gin.Context) {
	orgID := c.Param("orgId")
	params := pagination.Parse(c.Query("page"), c.Query("perPage"))

	page, err := h.queries.ListUserTypes(cqrs.ListUserTypesQuery{
		OrganizationID: orgID,
		Page:           params.Page,
		PerPage:        params.PerPage,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list user types")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *UserTypeHandler) GetUserType(c *gin.Context) {
	orgID := c.Param("orgId")
	typeID := c.Param("userTypeId")

	view, err := h.queries.GetUserType(cqrs.GetUserTypeQuery{
		UserTypeID:     typeID,
		OrganizationID: orgID,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusNotFound, "User type not found")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserTypeHandler) UpdateUserType(c *gin.Context) {
	orgID := c.Param("orgId")
	typeID := c.Param("userTypeId")

	var req UpdateUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateUserType(cqrs.UpdateUserTypeCommand{
		UserTypeID:     typeID,
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
	})
	if err != nil {
		if err.Error() == "user type not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "User type not found")
			return
		}
		if err.Error() == "user type name already exists" {
			middleware.RespondWithError(c, http.StatusConflict, "A user type with this name already exists")
			return
		}
		if err.Error() == "built-in user type cannot be renamed" {
			middleware.RespondWithError(c, http.StatusConflict, "The admin and default user types cannot be renamed")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to update user type")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserTypeHandler) DeleteUserType(c *gin.Context) {
	orgID := c.Param("orgId")
	typeID := c.Param("userTypeId")

	err := h.commands.DeleteUserType(cqrs.DeleteUserTypeCommand{
		UserTypeID:     typeID,
		OrganizationID: orgID,
	})
	if err != nil {
		if err.Error() == "user type not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "User type not found")
			return
		}
		if err.Error() == "user type is in use" {
			middleware.RespondWithError(c, http.StatusConflict, "Users still hold this user type")
			return
		}
		if err.Error() == "default user type cannot be deleted" {
			middleware.RespondWithError(c, http.StatusConflict, "The default user type cannot be deleted")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user type")
		return
	}

	c.Status(http.StatusNoContent)
}
