package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/scheduler"
)

// ShowtimeHandler exposes showtime scheduling and cancellation.
type ShowtimeHandler struct {
	Scheduler *scheduler.Scheduler
}

// NewShowtimeHandler constructs a ShowtimeHandler.
func NewShowtimeHandler(s *scheduler.Scheduler) *ShowtimeHandler {
	if s == nil {
		panic("nil scheduler passed to NewShowtimeHandler")
	}
	return &ShowtimeHandler{Scheduler: s}
}

// CreateShowtime handles POST /v1/showtimes.  The end time is derived
// from the movie runtime plus the cleanup buffer; overlap with any
// non-cancelled showtime in the room is a 409 carrying the conflicting
// showtimes.
func (h *ShowtimeHandler) CreateShowtime(c echo.Context) error {
	var body struct {
		RoomID   uint64 `json:"room_id"`
		MovieID  uint64 `json:"movie_id"`
		StartsAt string `json:"starts_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomID == 0 || body.MovieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id and movie_id are required"})
	}
	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(body.StartsAt))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_at format"})
	}
	st, err := h.Scheduler.Schedule(c.Request().Context(), body.RoomID, body.MovieID, startsAt)
	if err != nil {
		var conflict *scheduler.ConflictError
		switch {
		case errors.As(err, &conflict):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":    "showtime overlaps an existing showtime",
				"overlaps": conflict.Overlaps,
			})
		case errors.Is(err, scheduler.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case errors.Is(err, scheduler.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, scheduler.ErrRoomNotReady):
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has no seat grid"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not schedule showtime"})
	}
	return c.JSON(http.StatusCreated, st)
}

// ListRoomShowtimes handles GET /v1/rooms/:id/showtimes and returns the
// room's non-cancelled showtimes ordered by start time.
func (h *ShowtimeHandler) ListRoomShowtimes(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	showtimes, err := h.Scheduler.ListByRoom(c.Request().Context(), roomID)
	if err != nil {
		if errors.Is(err, scheduler.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list showtimes"})
	}
	if showtimes == nil {
		showtimes = []model.Showtime{}
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": roomID, "showtimes": showtimes})
}

// CancelShowtime handles POST /v1/showtimes/:id/cancel.  Cancellation
// force-releases every outstanding hold and reservation for the showtime.
func (h *ShowtimeHandler) CancelShowtime(c echo.Context) error {
	showtimeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	if err := h.Scheduler.Cancel(c.Request().Context(), showtimeID); err != nil {
		if errors.Is(err, scheduler.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cancel showtime"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}
