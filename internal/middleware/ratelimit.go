package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinechain/seat-reservation-engine/internal/ratelimit"
)

// RateLimit returns an Echo middleware enforcing the given policy on the
// routes it wraps.  The policy is explicit configuration attached at route
// registration; there is no marker scanning.  Informational headers are
// set on every response, allowed or not, and a rejection is a 429 with a
// machine-readable body.  A counter-store outage fails open: limiting is a
// guard, not a correctness dependency.
func RateLimit(limiter *ratelimit.Limiter, policy ratelimit.Policy) echo.MiddlewareFunc {
	if limiter == nil || !policy.Enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := requestKey(policy.KeyStrategy, c)
			d, err := limiter.CheckAndConsume(c.Request().Context(), key, policy.Requests, policy.Window)
			if err != nil {
				c.Logger().Warnf("ratelimit: store error for key=%s: %v", key, err)
				return next(c)
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.Itoa(ceilSeconds(d.Reset)))
			if !d.Allowed {
				retry := ceilSeconds(d.RetryAfter)
				h.Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"code":                "TOO_MANY_REQUESTS",
					"retry_after_seconds": retry,
				})
			}
			return next(c)
		}
	}
}

func ceilSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 0 {
		return 0
	}
	return s
}

// requestKey derives the counter key for a request under the configured
// strategy.  Unauthenticated requests under the user strategy share the
// "anon" bucket, matching how the identity middleware tags them.
func requestKey(strategy string, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	switch strategy {
	case ratelimit.StrategyUser:
		return "user:" + HolderFrom(c)
	case ratelimit.StrategyIPRoute:
		return "ip:" + ip + ":route:" + c.Request().Method + " " + c.Path()
	default:
		return "ip:" + ip
	}
}
