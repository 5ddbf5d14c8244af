package config

import (
	"time"

	"github.com/cinechain/seat-reservation-engine/internal/ratelimit"
)

// RateLimits groups the per-route limiting policies for the booking API
// surface.  Each policy is passed explicitly at route registration; routes
// without a policy here are not limited.
type RateLimits struct {
	Booking      ratelimit.Policy // hold/confirm/release endpoints
	Availability ratelimit.Policy // read-only availability endpoint
	Admin        ratelimit.Policy // room and showtime administration
}

// LoadRateLimits reads the booking-surface policies from the environment,
// with sane defaults.  Setting a policy's request count to 0 disables it.
func LoadRateLimits() RateLimits {
	rl := RateLimits{
		Booking: ratelimit.Policy{
			Requests:    envInt("RATE_LIMIT_BOOKING_REQUESTS", 30),
			Window:      envDur("RATE_LIMIT_BOOKING_WINDOW", time.Minute),
			KeyStrategy: envStr("RATE_LIMIT_BOOKING_STRATEGY", ratelimit.StrategyUser),
		},
		Availability: ratelimit.Policy{
			Requests:    envInt("RATE_LIMIT_AVAILABILITY_REQUESTS", 120),
			Window:      envDur("RATE_LIMIT_AVAILABILITY_WINDOW", time.Minute),
			KeyStrategy: envStr("RATE_LIMIT_AVAILABILITY_STRATEGY", ratelimit.StrategyIPRoute),
		},
		Admin: ratelimit.Policy{
			Requests:    envInt("RATE_LIMIT_ADMIN_REQUESTS", 60),
			Window:      envDur("RATE_LIMIT_ADMIN_WINDOW", time.Minute),
			KeyStrategy: envStr("RATE_LIMIT_ADMIN_STRATEGY", ratelimit.StrategyIP),
		},
	}
	return rl
}
