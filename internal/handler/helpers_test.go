package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
)

// ---- shared test helpers ----

type testClaims struct {
	userID    string
	orgID     string
	role      string
	sessionID string
	email     string
}

// fakeAuth stands in for the real auth middleware and plants claims directly.
func fakeAuth(claims testClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", claims.userID)
		c.Set("organizationId", claims.orgID)
		c.Set("role", claims.role)
		c.Set("sessionId", claims.sessionID)
		c.Set("email", claims.email)
		c.Next()
	}
}

func passthrough() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// newTestRouter mounts the real route table with fakeAuth in place of the
// token check, so role and org guards run exactly as in production.
func newTestRouter(h Handlers, claims testClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, h, fakeAuth(claims), passthrough())
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
