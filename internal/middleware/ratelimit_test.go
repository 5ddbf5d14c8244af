package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinechain/seat-reservation-engine/internal/ratelimit"
)

func newLimitedServer(policy ratelimit.Policy) *echo.Echo {
	e := echo.New()
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryCounterStore())
	e.GET("/t", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}, RateLimit(limiter, policy))
	return e
}

func doGet(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	policy := ratelimit.Policy{Requests: 2, Window: time.Minute, KeyStrategy: ratelimit.StrategyIP}

	t.Run("headers are present on allowed responses", func(t *testing.T) {
		e := newLimitedServer(policy)
		rec := doGet(e)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("request past the limit is a structured 429", func(t *testing.T) {
		e := newLimitedServer(policy)
		doGet(e)
		doGet(e)
		rec := doGet(e)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")
		assert.Contains(t, rec.Body.String(), "retry_after_seconds")
	})

	t.Run("disabled policy passes everything through", func(t *testing.T) {
		e := newLimitedServer(ratelimit.Policy{})
		for i := 0; i < 10; i++ {
			rec := doGet(e)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		}
	})
}
