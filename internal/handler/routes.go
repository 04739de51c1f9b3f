package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kestrelhq/kestrel/internal/middleware"
	"github.com/kestrelhq/kestrel/internal/models"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Organizations *OrganizationHandler
	UserTypes     *UserTypeHandler
}

// RegisterRoutes mounts the v1 API. authn verifies the access token and its
// session; authLimit throttles the public auth endpoints per client IP.
func RegisterRoutes(router *gin.Engine, h Handlers, authn, authLimit gin.HandlerFunc) {
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	auth := router.Group("/v1/auth")
	{
		auth.POST("/register", authLimit, h.Auth.Register)
		auth.POST("/login", authLimit, h.Auth.Login)
		auth.POST("/refresh", authLimit, h.Auth.Refresh)
		auth.POST("/password/forgot", authLimit, h.Auth.ForgotPassword)
		auth.POST("/password/reset", authLimit, h.Auth.ResetPassword)

		auth.POST("/logout", authn, h.Auth.Logout)
		auth.GET("/me", authn, h.Auth.Me)
		auth.GET("/sessions", authn, h.Auth.ListSessions)
		auth.DELETE("/sessions/:sessionId", authn, h.Auth.RevokeSession)
	}

	orgs := router.Group("/v1/orgs/:orgId", authn, middleware.OrgScope())
	{
		orgs.GET("", h.Organizations.GetOrganization)
		orgs.PATCH("", adminOnly, h.Organizations.UpdateOrganization)
		orgs.DELETE("", adminOnly, h.Organizations.DeleteOrganization)

		users := orgs.Group("/users")
		{
			users.POST("", adminOnly, h.Users.CreateUser)
			users.GET("", adminOnly, h.Users.ListUsers)
			users.GET("/:userId", h.Users.GetUser)
			users.PATCH("/:userId", h.Users.UpdateUser)
			users.DELETE("/:userId", adminOnly, h.Users.DeleteUser)
		}

		types := orgs.Group("/user-types")
		{
			types.POST("", adminOnly, h.UserTypes.CreateUserType)
			types.GET("", h.UserTypes.ListUserTypes)
			types.GET("/:userTypeId", h.UserTypes.GetUserType)
			types.PATCH("/:userTypeId", adminOnly, h.UserTypes.UpdateUserType)
			types.DELETE("/:userTypeId", adminOnly, h.UserTypes.DeleteUserType)
		}
	}
}
