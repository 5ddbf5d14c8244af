package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinechain/seat-reservation-engine/internal/event"
	"github.com/cinechain/seat-reservation-engine/internal/grid"
	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/repository"
	"github.com/cinechain/seat-reservation-engine/internal/reservation"
	"github.com/cinechain/seat-reservation-engine/internal/scheduler"
	"github.com/cinechain/seat-reservation-engine/internal/store"
)

type recordingBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *recordingBus) Publish(_ context.Context, e event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Name()
	}
	return out
}

type fixture struct {
	sched *scheduler.Scheduler
	coord *reservation.Coordinator
	rooms *repository.MemoryRoomStore
	seats *store.MemoryStore
	bus   *recordingBus
	room  *model.Room
}

// newFixture builds a scheduler over in-process stores with one gridded
// room and a 100-minute movie; the cleanup buffer is 20 minutes so each
// showtime occupies exactly two hours.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	rooms := repository.NewMemoryRoomStore()
	showtimes := repository.NewMemoryShowtimeStore()
	movies := repository.NewMemoryMovieCatalog(model.Movie{ID: 1, Title: "feature", Runtime: 100 * time.Minute})
	seats := store.NewMemoryStore()
	bus := &recordingBus{}
	coord := reservation.NewCoordinator(seats, bus)
	sched := scheduler.New(rooms, showtimes, movies, seats, coord, bus, 20*time.Minute)

	room := &model.Room{Name: "Room1", Rows: 5, Pattern: model.PatternAlphabetic}
	require.NoError(t, rooms.CreateRoom(ctx, room))
	built, err := grid.BuildGrid(grid.RoomSpec{Rows: 5, Columns: 8, Pattern: model.PatternAlphabetic})
	require.NoError(t, err)
	require.NoError(t, rooms.SaveGrid(ctx, room.ID, built))

	return &fixture{sched: sched, coord: coord, rooms: rooms, seats: seats, bus: bus, room: room}
}

func at(hour int) time.Time {
	return time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC)
}

func TestSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("derives the end from runtime plus buffer", func(t *testing.T) {
		f := newFixture(t)
		st, err := f.sched.Schedule(ctx, f.room.ID, 1, at(10))
		require.NoError(t, err)
		assert.Equal(t, model.ShowtimeScheduled, st.Status)
		assert.Equal(t, at(12), st.EndsAt)
		assert.Contains(t, f.bus.names(), "showtime.scheduled")
	})

	t.Run("back-to-back showtimes do not conflict", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.sched.Schedule(ctx, f.room.ID, 1, at(10)) // [10:00, 12:00)
		require.NoError(t, err)
		_, err = f.sched.Schedule(ctx, f.room.ID, 1, at(12)) // [12:00, 14:00)
		assert.NoError(t, err)
	})

	t.Run("overlap is rejected with the conflicting showtimes", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.sched.Schedule(ctx, f.room.ID, 1, at(10)) // [10:00, 12:00)
		require.NoError(t, err)
		_, err = f.sched.Schedule(ctx, f.room.ID, 1, at(11)) // [11:00, 13:00)
		var conflict *scheduler.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Len(t, conflict.Overlaps, 1)
		assert.Equal(t, first.ID, conflict.Overlaps[0].ID)
	})

	t.Run("cancelled showtimes free their window", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.sched.Schedule(ctx, f.room.ID, 1, at(10))
		require.NoError(t, err)
		require.NoError(t, f.sched.Cancel(ctx, first.ID))
		_, err = f.sched.Schedule(ctx, f.room.ID, 1, at(11))
		assert.NoError(t, err)
	})

	t.Run("room without a grid is not ready", func(t *testing.T) {
		f := newFixture(t)
		bare := &model.Room{Name: "shell", Rows: 3, Pattern: model.PatternNumeric}
		require.NoError(t, f.rooms.CreateRoom(ctx, bare))
		_, err := f.sched.Schedule(ctx, bare.ID, 1, at(10))
		assert.ErrorIs(t, err, scheduler.ErrRoomNotReady)
	})

	t.Run("unknown room and movie are distinct failures", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.sched.Schedule(ctx, 999, 1, at(10))
		assert.ErrorIs(t, err, scheduler.ErrRoomNotFound)
		_, err = f.sched.Schedule(ctx, f.room.ID, 999, at(10))
		assert.ErrorIs(t, err, scheduler.ErrMovieNotFound)
	})

	t.Run("scheduling materializes every seat as available", func(t *testing.T) {
		f := newFixture(t)
		st, err := f.sched.Schedule(ctx, f.room.ID, 1, at(10))
		require.NoError(t, err)
		avail, err := f.coord.Availability(ctx, st.ID)
		require.NoError(t, err)
		require.Len(t, avail, 40)
		for _, state := range avail {
			assert.Equal(t, model.SeatAvailable, state)
		}
	})
}

func TestListByRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.sched.Schedule(ctx, f.room.ID, 1, at(14))
	require.NoError(t, err)
	second, err := f.sched.Schedule(ctx, f.room.ID, 1, at(10))
	require.NoError(t, err)

	listed, err := f.sched.ListByRoom(ctx, f.room.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID, "ordered by start time")
	assert.Equal(t, first.ID, listed[1].ID)

	require.NoError(t, f.sched.Cancel(ctx, first.ID))
	listed, err = f.sched.ListByRoom(ctx, f.room.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	_, err = f.sched.ListByRoom(ctx, 999)
	assert.ErrorIs(t, err, scheduler.ErrRoomNotFound)
}

func TestCancelCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st, err := f.sched.Schedule(ctx, f.room.ID, 1, at(10))
	require.NoError(t, err)

	seats, err := f.rooms.RoomSeats(ctx, f.room.ID)
	require.NoError(t, err)
	held := []uint64{seats[0].ID, seats[1].ID}
	_, err = f.coord.HoldSeats(ctx, st.ID, held, "alice", time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.coord.ConfirmHold(ctx, st.ID, "alice", held))

	require.NoError(t, f.sched.Cancel(ctx, st.ID))

	avail, err := f.coord.Availability(ctx, st.ID)
	require.NoError(t, err)
	for _, sid := range held {
		assert.Equal(t, model.SeatAvailable, avail[sid])
	}
	names := f.bus.names()
	assert.Contains(t, names, "showtime.cancelled")
	assert.Contains(t, names, "seat.released")

	// Cancelling again is a no-op.
	before := len(f.bus.names())
	require.NoError(t, f.sched.Cancel(ctx, st.ID))
	assert.Equal(t, before, len(f.bus.names()))
}
