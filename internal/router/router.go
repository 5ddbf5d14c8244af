package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/cinechain/seat-reservation-engine/internal/config"
	"github.com/cinechain/seat-reservation-engine/internal/handler"
	"github.com/cinechain/seat-reservation-engine/internal/middleware"
	"github.com/cinechain/seat-reservation-engine/internal/ratelimit"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBooking registers the seat-booking surface.  Every route gets
// its limiting policy explicitly at registration; the hold/confirm/release
// endpoints additionally require a verified holder identity.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, limiter *ratelimit.Limiter, limits config.RateLimits, jwtSecret string) {
	// Availability is public and read-only; it gets the looser policy.
	e.GET("/v1/showtimes/:id/availability", b.GetAvailability,
		middleware.RateLimit(limiter, limits.Availability))

	// Mutating booking endpoints require a holder and the strict policy.
	// Holder runs first so the user key strategy sees the verified subject.
	g := e.Group("/v1/showtimes/:id")
	g.Use(middleware.Holder(jwtSecret))
	g.Use(middleware.RateLimit(limiter, limits.Booking))
	g.POST("/hold", b.HoldSeats)
	g.POST("/confirm", b.ConfirmHold)
	g.DELETE("/hold", b.ReleaseSeats)
}

// RegisterAdmin registers room and showtime administration.  These routes
// share the admin policy; authentication is delegated to the identity
// module's gateway in front of this service.
func RegisterAdmin(e *echo.Echo, r *handler.RoomHandler, s *handler.ShowtimeHandler, limiter *ratelimit.Limiter, limits config.RateLimits) {
	g := e.Group("/v1")
	g.Use(middleware.RateLimit(limiter, limits.Admin))
	g.POST("/rooms", r.CreateRoom)
	g.GET("/rooms/:id/layout", r.GetRoomLayout)
	g.GET("/rooms/:id/showtimes", s.ListRoomShowtimes)
	g.POST("/showtimes", s.CreateShowtime)
	g.POST("/showtimes/:id/cancel", s.CancelShowtime)
}
