package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles rejects callers whose role claim is not in the allow-list.
// Must run after Auth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if ok {
			for _, allowed := range roles {
				if role == allowed {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"message": "Insufficient permissions",
		})
		c.Abort()
	}
}
