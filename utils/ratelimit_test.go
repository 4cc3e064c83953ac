package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := PerMinute(2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "third request within the minute is rejected")
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per IP")
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := PerMinute(0)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
}

func TestRateLimiter_CleanupIdleVisitors(t *testing.T) {
	rl := PerMinute(5)
	rl.Allow("10.0.0.1")

	rl.mtx.Lock()
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.mtx.Unlock()

	rl.Allow("10.0.0.2")

	rl.mtx.Lock()
	defer rl.mtx.Unlock()
	_, stillThere := rl.visitors["10.0.0.1"]
	assert.False(t, stillThere)
	assert.Len(t, rl.visitors, 1)
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", PerMinute(1).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
