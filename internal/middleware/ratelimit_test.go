package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", limiter.Handler(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiterBlocksBeyondBurst(t *testing.T) {
	// Refill is slow enough that only the burst counts within this test.
	limiter := NewRateLimiter(0.001, 2)
	router := newLimitedRouter(limiter)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "198.51.100.1:4000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("expected the burst to pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("expected the third request to be limited, got %v", statuses)
	}
}

func TestRateLimiterKeysPerClient(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)
	router := newLimitedRouter(limiter)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("198.51.100.1:4000"); got != http.StatusOK {
		t.Errorf("expected first client to pass, got %d", got)
	}
	if got := send("198.51.100.1:4000"); got != http.StatusTooManyRequests {
		t.Errorf("expected first client to be limited, got %d", got)
	}
	if got := send("198.51.100.2:4000"); got != http.StatusOK {
		t.Errorf("expected second client to have its own bucket, got %d", got)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	limiter.getLimiter("stale")
	limiter.getLimiter("fresh")

	limiter.mu.Lock()
	limiter.limiters["stale"].lastSeen = time.Now().Add(-time.Hour)
	limiter.mu.Unlock()

	limiter.Cleanup(30 * time.Minute)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.limiters["stale"]; ok {
		t.Error("expected the idle limiter to be swept")
	}
	if _, ok := limiter.limiters["fresh"]; !ok {
		t.Error("expected the recent limiter to survive")
	}
}
