package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func withUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, id)
		c.Next()
	}
}

func TestRateLimiterWithoutRedisPassesThrough(t *testing.T) {
	limiter := NewRecipeCreationRateLimiter(nil, 1)

	router := gin.New()
	router.POST("/", withUser(1), limiter.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rdb := testhelpers.SetupTestRedis(t)
	limiter := NewRecipeCreationRateLimiter(rdb, 2)

	router := gin.New()
	router.POST("/:user", func(c *gin.Context) {
		if c.Param("user") == "a" {
			c.Set(ContextUserID, uint(1))
		} else {
			c.Set(ContextUserID, uint(2))
		}
	}, limiter.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	post := func(user string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/"+user, nil))
		return w
	}

	assert.Equal(t, http.StatusCreated, post("a").Code)
	w := post("a")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = post("a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Limits are per user.
	assert.Equal(t, http.StatusCreated, post("b").Code)

	allowed, remaining, _, err := limiter.IsAllowed(context.Background(), "3")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
}
