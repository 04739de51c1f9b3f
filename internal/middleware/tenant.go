package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OrgScope requires the :orgId path parameter to match the caller's
// organization claim. Mismatches answer 403 regardless of whether the
// organization exists. Must run after Auth.
func OrgScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := GetOrganizationID(c)
		if !ok || c.Param("orgId") != orgID {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "Access to this organization is not allowed",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
