package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/middleware"
	"github.com/kestrelhq/kestrel/internal/models"
)

// OrganizationCommander defines the write-side operations used by
// OrganizationHandler. Creation is not exposed here: organizations come
// into existence through registration or the operations CLI.
type OrganizationCommander interface {
	UpdateOrganization(cqrs.UpdateOrganizationCommand) (*models.OrganizationView, error)
	DeleteOrganization(cqrs.DeleteOrganizationCommand) error
}

// OrganizationQuerier defines the read-side operations used by
// OrganizationHandler.
type OrganizationQuerier interface {
	GetOrganization(cqrs.GetOrganizationQuery) (*models.OrganizationView, error)
}

type OrganizationHandler struct {
	commands OrganizationCommander
	queries  OrganizationQuerier
}

type UpdateOrganizationRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
	Active      *bool   `json:"active"`
}

func NewOrganizationHandler(commands OrganizationCommander, queries OrganizationQuerier) *OrganizationHandler {
	return &OrganizationHandler{commands: commands, queries: queries}
}

func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	orgID := c.Param("orgId")

	view, err := h.queries.GetOrganization(cqrs.GetOrganizationQuery{OrganizationID: orgID})
	if err != nil {
		middleware.RespondWithError(c, http.StatusNotFound, "Organization not found")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	orgID := c.Param("orgId")

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateOrganization(cqrs.UpdateOrganizationCommand{
		OrganizationID: orgID,
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Active:         req.Active,
	})
	if err != nil {
		if err.Error() == "organization not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "Organization not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to update organization")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	orgID := c.Param("orgId")

	err := h.commands.DeleteOrganization(cqrs.DeleteOrganizationCommand{OrganizationID: orgID})
	if err != nil {
		if err.Error() == "organization not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "Organization not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to delete organization")
		return
	}

	c.Status(http.StatusNoContent)
}
