// Package scheduler creates showtimes against rooms with materialized seat
// grids and guards the non-overlap invariant for each room's timetable.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinechain/seat-reservation-engine/internal/event"
	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/reservation"
	"github.com/cinechain/seat-reservation-engine/internal/store"
)

// RoomStore is the narrow persistence port for the room aggregate.
type RoomStore interface {
	CreateRoom(ctx context.Context, room *model.Room) error
	// SaveGrid persists a freshly built grid and marks the room ready.
	SaveGrid(ctx context.Context, roomID uint64, seats []model.Seat) error
	GetRoom(ctx context.Context, id uint64) (*model.Room, error)
	RoomSeats(ctx context.Context, roomID uint64) ([]model.Seat, error)
}

// ShowtimeStore is the narrow persistence port for the showtime aggregate.
type ShowtimeStore interface {
	Create(ctx context.Context, st *model.Showtime) error
	GetByID(ctx context.Context, id uint64) (*model.Showtime, error)
	// ListActiveByRoom returns every non-cancelled showtime in the room.
	ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ShowtimeStatus) error
}

// MovieCatalog looks up movie runtimes from the catalog module.  The
// catalog is an external collaborator; implementations must distinguish a
// missing movie (ErrMovieNotFound) from a transient lookup failure.
type MovieCatalog interface {
	GetMovie(ctx context.Context, id uint64) (*model.Movie, error)
}

// Sentinel errors for the scheduling surface.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomNotReady     = errors.New("room has no materialized seat grid")
	ErrMovieNotFound    = errors.New("movie not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
)

// ConflictError reports the existing showtimes whose windows overlap the
// requested one.
type ConflictError struct {
	RoomID   uint64
	Overlaps []model.Showtime
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("scheduling conflict in room %d: %d overlapping showtime(s)", e.RoomID, len(e.Overlaps))
}

// Scheduler wires the showtime lifecycle: create with overlap validation
// and seat-state materialization, cancel with cascading release.
type Scheduler struct {
	rooms     RoomStore
	showtimes ShowtimeStore
	movies    MovieCatalog
	seats     store.SeatStateStore
	coord     *reservation.Coordinator
	bus       event.Bus
	// buffer is added after each movie's runtime for cleaning the room.
	buffer time.Duration
}

// New builds a scheduler.  cleanupBuffer may be zero.
func New(rooms RoomStore, showtimes ShowtimeStore, movies MovieCatalog, seats store.SeatStateStore, coord *reservation.Coordinator, bus event.Bus, cleanupBuffer time.Duration) *Scheduler {
	if rooms == nil || showtimes == nil || movies == nil || seats == nil || coord == nil {
		panic("nil dependency passed to scheduler.New")
	}
	if bus == nil {
		bus = event.NopBus{}
	}
	return &Scheduler{
		rooms:     rooms,
		showtimes: showtimes,
		movies:    movies,
		seats:     seats,
		coord:     coord,
		bus:       bus,
		buffer:    cleanupBuffer,
	}
}

// Schedule creates a showtime starting at startsAt.  The end is derived
// from the movie runtime plus the cleanup buffer.  The room must have a
// materialized grid and no non-cancelled showtime may overlap the new
// [start, end) window; a showtime ending exactly at startsAt does not
// conflict.
func (s *Scheduler) Schedule(ctx context.Context, roomID, movieID uint64, startsAt time.Time) (*model.Showtime, error) {
	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.GridReady {
		return nil, ErrRoomNotReady
	}
	startsAt = startsAt.UTC()
	endsAt := startsAt.Add(movie.Runtime + s.buffer)

	existing, err := s.showtimes.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var overlaps []model.Showtime
	for _, st := range existing {
		if st.Overlaps(startsAt, endsAt) {
			overlaps = append(overlaps, st)
		}
	}
	if len(overlaps) > 0 {
		return nil, &ConflictError{RoomID: roomID, Overlaps: overlaps}
	}

	st := &model.Showtime{
		RoomID:   roomID,
		MovieID:  movie.ID,
		Title:    movie.Title,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Status:   model.ShowtimeScheduled,
	}
	if err := s.showtimes.Create(ctx, st); err != nil {
		return nil, err
	}
	seats, err := s.rooms.RoomSeats(ctx, roomID)
	if err != nil {
		return nil, err
	}
	seatIDs := make([]uint64, 0, len(seats))
	for _, seat := range seats {
		seatIDs = append(seatIDs, seat.ID)
	}
	if err := s.seats.Materialize(ctx, st.ID, seatIDs); err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, event.ShowtimeScheduled{
		ShowtimeID: st.ID,
		RoomID:     roomID,
		MovieID:    movie.ID,
		Title:      movie.Title,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	})
	return st, nil
}

// ListByRoom returns the room's non-cancelled showtimes ordered by start
// time.
func (s *Scheduler) ListByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error) {
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.showtimes.ListActiveByRoom(ctx, roomID)
}

// Cancel transitions the showtime to CANCELLED and force-releases every
// outstanding hold and reservation.  Cancelling an already-cancelled
// showtime is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, showtimeID uint64) error {
	st, err := s.showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		return err
	}
	if st.Status == model.ShowtimeCancelled {
		return nil
	}
	if err := s.showtimes.UpdateStatus(ctx, showtimeID, model.ShowtimeCancelled); err != nil {
		return err
	}
	s.coord.ReleaseShowtime(ctx, showtimeID)
	s.bus.Publish(ctx, event.ShowtimeCancelled{ShowtimeID: showtimeID, RoomID: st.RoomID})
	return nil
}
