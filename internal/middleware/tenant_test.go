package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newScopeRouter(claimOrg string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/orgs/:orgId/ping", func(c *gin.Context) {
		if claimOrg != "" {
			c.Set("organizationId", claimOrg)
		}
	}, OrgScope(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestOrgScope(t *testing.T) {
	tests := []struct {
		name       string
		claimOrg   string
		pathOrg    string
		wantStatus int
	}{
		{"matching organization", "org-f6G7h8I9j0", "org-f6G7h8I9j0", http.StatusOK},
		{"foreign organization", "org-f6G7h8I9j0", "org-zZ9yY8xX7w", http.StatusForbidden},
		{"nonexistent organization", "org-f6G7h8I9j0", "org-doesnotexist", http.StatusForbidden},
		{"organization claim missing", "", "org-f6G7h8I9j0", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newScopeRouter(tt.claimOrg)
			req := httptest.NewRequest(http.MethodGet, "/v1/orgs/"+tt.pathOrg+"/ping", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}
