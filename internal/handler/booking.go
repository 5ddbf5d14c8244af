package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinechain/seat-reservation-engine/internal/middleware"
	"github.com/cinechain/seat-reservation-engine/internal/reservation"
)

// BookingHandler exposes the hold/confirm/release surface of the
// reservation coordinator.  The holder reference is taken from the
// identity middleware; seat and showtime IDs come from the request.
type BookingHandler struct {
	Coordinator *reservation.Coordinator
	// HoldTTL bounds every hold created through this surface; clients
	// cannot request longer deadlines.
	HoldTTL time.Duration
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(co *reservation.Coordinator, holdTTL time.Duration) *BookingHandler {
	if co == nil {
		panic("nil coordinator passed to NewBookingHandler")
	}
	if holdTTL <= 0 {
		holdTTL = 5 * time.Minute
	}
	return &BookingHandler{Coordinator: co, HoldTTL: holdTTL}
}

// seatIDsBody binds the common {"seat_ids": [...]} request payload.
type seatIDsBody struct {
	SeatIDs []uint64 `json:"seat_ids"`
}

// HoldSeats handles POST /v1/showtimes/:id/hold.  All-or-nothing: when any
// requested seat is taken the response is 409 naming the conflicting
// seats and nothing is held.
func (h *BookingHandler) HoldSeats(c echo.Context) error {
	showtimeID, ok := showtimeParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body seatIDsBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}
	holder := middleware.HolderFrom(c)
	batch, err := h.Coordinator.HoldSeats(c.Request().Context(), showtimeID, body.SeatIDs, holder, h.HoldTTL)
	if err != nil {
		var unavailable *reservation.SeatUnavailableError
		switch {
		case errors.As(err, &unavailable):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":             "some seats are unavailable",
				"conflicting_seats": unavailable.Conflicting,
			})
		case errors.Is(err, reservation.ErrNoSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid seat ids provided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not hold seats"})
	}
	return c.JSON(http.StatusCreated, batch)
}

// ConfirmHold handles POST /v1/showtimes/:id/confirm.  Every named seat
// must still be held by the caller and unexpired; otherwise nothing is
// confirmed.
func (h *BookingHandler) ConfirmHold(c echo.Context) error {
	showtimeID, ok := showtimeParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body seatIDsBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	holder := middleware.HolderFrom(c)
	err := h.Coordinator.ConfirmHold(c.Request().Context(), showtimeID, holder, body.SeatIDs)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrHoldExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hold expired"})
		case errors.Is(err, reservation.ErrHoldNotFound):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hold not found"})
		case errors.Is(err, reservation.ErrNoSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid seat ids provided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not confirm hold"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "reserved"})
}

// ReleaseSeats handles DELETE /v1/showtimes/:id/hold.  Idempotent:
// releasing seats that are already available succeeds with zero effect.
func (h *BookingHandler) ReleaseSeats(c echo.Context) error {
	showtimeID, ok := showtimeParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body seatIDsBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	holder := middleware.HolderFrom(c)
	err := h.Coordinator.ReleaseSeats(c.Request().Context(), showtimeID, holder, body.SeatIDs)
	if err != nil {
		if errors.Is(err, reservation.ErrNoSeats) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid seat ids provided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not release seats"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "released"})
}

// GetAvailability handles GET /v1/showtimes/:id/availability and returns
// each seat's state.  The snapshot may trail concurrent holds by a moment
// but never misreports a committed transition.
func (h *BookingHandler) GetAvailability(c echo.Context) error {
	showtimeID, ok := showtimeParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	states, err := h.Coordinator.Availability(c.Request().Context(), showtimeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load availability"})
	}
	out := make(map[string]string, len(states))
	for sid, st := range states {
		out[strconv.FormatUint(sid, 10)] = string(st)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": showtimeID,
		"seats":       out,
	})
}

func showtimeParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
