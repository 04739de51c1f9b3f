package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelhq/kestrel/internal/repository"
	"github.com/kestrelhq/kestrel/internal/token"
)

// Auth verifies the Bearer access token and confirms its session has not
// been revoked or expired. Verified claims land in the gin context.
func Auth(tokens *token.Service, sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := tokens.VerifyAccessToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// The JWT alone is not enough: the session backing it must still be live.
		state, err := sessions.State(c.Request.Context(), claims.SessionID)
		if err != nil || state.Revoked || !state.ExpiresAt.After(time.Now().UTC()) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Session is no longer active",
			})
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("organizationId", claims.OrganizationID)
		c.Set("role", claims.Role)
		c.Set("sessionId", claims.SessionID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	return contextString(c, "userId")
}

func GetOrganizationID(c *gin.Context) (string, bool) {
	return contextString(c, "organizationId")
}

func GetRole(c *gin.Context) (string, bool) {
	return contextString(c, "role")
}

func GetSessionID(c *gin.Context) (string, bool) {
	return contextString(c, "sessionId")
}

func GetEmail(c *gin.Context) (string, bool) {
	return contextString(c, "email")
}

func contextString(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}
