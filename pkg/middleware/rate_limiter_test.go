package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	// 120 requests per minute is one token every 0.5s
	rl := NewRateLimiter(120, 1)
	limiter := rl.GetLimiter("192.168.1.1")

	assert.True(t, limiter.Allow(), "First request should be allowed")
	assert.False(t, limiter.Allow(), "Second request should be blocked")

	time.Sleep(600 * time.Millisecond)
	assert.True(t, limiter.Allow(), "Request should be allowed after refill")
}

func TestRateLimiter_DifferentKeys(t *testing.T) {
	rl := NewRateLimiter(2, 1)

	limiter1 := rl.GetLimiter("192.168.1.1")
	limiter2 := rl.GetLimiter("192.168.1.2")

	assert.True(t, limiter1.Allow())
	assert.True(t, limiter2.Allow())
	assert.False(t, limiter1.Allow())
	assert.False(t, limiter2.Allow())
	assert.Equal(t, 2, rl.Visitors())
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(2, 1)

	wrapped := rl.RateLimitMiddleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	serve := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		require.NoError(t, wrapped(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, serve("192.168.1.1:12345").Code)

	rec := serve("192.168.1.1:12346")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	assert.Equal(t, http.StatusOK, serve("192.168.1.2:12345").Code, "other clients are unaffected")
}

func TestRateLimitMiddleware_CustomKey(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(2, 1).WithKeyFunc(func(c echo.Context) string {
		return c.Request().Header.Get("X-User")
	})

	wrapped := rl.RateLimitMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0." + string(rune('1'+i)) + ":1"
		req.Header.Set("X-User", "user-1")
		rec := httptest.NewRecorder()
		require.NoError(t, wrapped(e.NewContext(req, rec)))
		assert.Equal(t, want, rec.Code)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(6000, 1)
	rl.GetLimiter("idle")
	rl.GetLimiter("busy").Allow()

	rl.Cleanup()
	assert.Equal(t, 1, rl.Visitors(), "only the limiter with spent tokens is kept")

	assert.Eventually(t, func() bool {
		rl.Cleanup()
		return rl.Visitors() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRateLimitMiddlewareWith_CustomResponse(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)

	wrapped := rl.RateLimitMiddlewareWith(func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": RateLimitExceededMessage})
	})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	serve := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "192.168.1.9:1234"
		rec := httptest.NewRecorder()
		require.NoError(t, wrapped(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, serve().Code)
	rec := serve()
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests. Please try again later."}`, rec.Body.String())
}
