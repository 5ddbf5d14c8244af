package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinechain/seat-reservation-engine/internal/grid"
	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/scheduler"
)

// RoomHandler exposes room administration: creating a room with a
// generated seat grid and inspecting the result.  Resizing a room is out
// of scope; a room's grid is immutable once materialized.
type RoomHandler struct {
	Rooms scheduler.RoomStore
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(rooms scheduler.RoomStore) *RoomHandler {
	if rooms == nil {
		panic("nil room store passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

// CreateRoom handles POST /v1/rooms.  The body carries the declarative
// grid specification; the handler builds the grid and persists room and
// seats together.  Returns 201 with the room and its seat count, or 400
// with the validation failure.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var body struct {
		Name         string         `json:"name"`
		Rows         int            `json:"rows"`
		Columns      int            `json:"columns"`
		ColumnsByRow map[string]int `json:"columns_by_row"`
		Pattern      string         `json:"pattern"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	pattern := model.NamingPattern(strings.ToUpper(strings.TrimSpace(body.Pattern)))
	if pattern == "" {
		pattern = model.PatternAlphabetic
	}
	spec := grid.RoomSpec{Rows: body.Rows, Columns: body.Columns, Pattern: pattern}
	if len(body.ColumnsByRow) > 0 {
		spec.ColumnsByRow = make(map[int]int, len(body.ColumnsByRow))
		for k, v := range body.ColumnsByRow {
			idx, err := strconv.Atoi(k)
			if err != nil || idx < 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "columns_by_row keys must be non-negative row indices"})
			}
			spec.ColumnsByRow[idx] = v
		}
	}
	seats, err := grid.BuildGrid(spec)
	if err != nil {
		var specErr *grid.InvalidRoomSpecError
		if errors.As(err, &specErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": specErr.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build grid"})
	}
	ctx := c.Request().Context()
	room := &model.Room{Name: name, Rows: uint32(body.Rows), Pattern: pattern}
	if err := h.Rooms.CreateRoom(ctx, room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create room"})
	}
	if err := h.Rooms.SaveGrid(ctx, room.ID, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not persist seat grid"})
	}
	room.GridReady = true
	room.Capacity = uint32(len(seats))
	return c.JSON(http.StatusCreated, echo.Map{
		"room":       room,
		"seat_count": len(seats),
	})
}

// GetRoomLayout handles GET /v1/rooms/:id/layout and returns the seat
// grid grouped by row.
func (h *RoomHandler) GetRoomLayout(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, scheduler.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	seats, err := h.Rooms.RoomSeats(ctx, roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_id": roomID,
		"count":   len(seats),
		"rows":    grid.Layout(seats),
	})
}
