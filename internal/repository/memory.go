// Package repository provides the storage implementations behind the
// scheduler and seat-state ports: in-memory stores for tests and
// single-node use, and MySQL-backed stores for durable deployments.
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/scheduler"
)

// MemoryRoomStore keeps rooms and their generated grids in process.
type MemoryRoomStore struct {
	mu     sync.RWMutex
	nextID uint64
	rooms  map[uint64]*model.Room
	seats  map[uint64][]model.Seat
}

// NewMemoryRoomStore returns an empty room store.
func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[uint64]*model.Room), seats: make(map[uint64][]model.Seat)}
}

func (s *MemoryRoomStore) CreateRoom(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	room.ID = s.nextID
	room.CreatedAt = time.Now().UTC()
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s *MemoryRoomStore) SaveGrid(_ context.Context, roomID uint64, seats []model.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return scheduler.ErrRoomNotFound
	}
	stored := make([]model.Seat, len(seats))
	for i, seat := range seats {
		seat.ID = roomID*100000 + uint64(i) + 1
		seat.RoomID = roomID
		stored[i] = seat
	}
	s.seats[roomID] = stored
	room.GridReady = true
	room.Capacity = uint32(len(stored))
	return nil
}

func (s *MemoryRoomStore) GetRoom(_ context.Context, id uint64) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, scheduler.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *MemoryRoomStore) RoomSeats(_ context.Context, roomID uint64) ([]model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.rooms[roomID]; !ok {
		return nil, scheduler.ErrRoomNotFound
	}
	out := make([]model.Seat, len(s.seats[roomID]))
	copy(out, s.seats[roomID])
	return out, nil
}

// MemoryShowtimeStore keeps showtimes in process.
type MemoryShowtimeStore struct {
	mu        sync.RWMutex
	nextID    uint64
	showtimes map[uint64]*model.Showtime
}

// NewMemoryShowtimeStore returns an empty showtime store.
func NewMemoryShowtimeStore() *MemoryShowtimeStore {
	return &MemoryShowtimeStore{showtimes: make(map[uint64]*model.Showtime)}
}

func (s *MemoryShowtimeStore) Create(_ context.Context, st *model.Showtime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	st.ID = s.nextID
	st.CreatedAt = time.Now().UTC()
	cp := *st
	s.showtimes[st.ID] = &cp
	return nil
}

func (s *MemoryShowtimeStore) GetByID(_ context.Context, id uint64) (*model.Showtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.showtimes[id]
	if !ok {
		return nil, scheduler.ErrShowtimeNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *MemoryShowtimeStore) ListActiveByRoom(_ context.Context, roomID uint64) ([]model.Showtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Showtime
	for _, st := range s.showtimes {
		if st.RoomID == roomID && st.Status != model.ShowtimeCancelled {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (s *MemoryShowtimeStore) UpdateStatus(_ context.Context, id uint64, status model.ShowtimeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.showtimes[id]
	if !ok {
		return scheduler.ErrShowtimeNotFound
	}
	st.Status = status
	return nil
}

// MemoryMovieCatalog is a seeded stand-in for the external catalog module.
type MemoryMovieCatalog struct {
	mu     sync.RWMutex
	movies map[uint64]model.Movie
}

// NewMemoryMovieCatalog returns a catalog seeded with the given movies.
func NewMemoryMovieCatalog(movies ...model.Movie) *MemoryMovieCatalog {
	c := &MemoryMovieCatalog{movies: make(map[uint64]model.Movie, len(movies))}
	for _, m := range movies {
		c.movies[m.ID] = m
	}
	return c
}

// Add registers or replaces a movie.
func (c *MemoryMovieCatalog) Add(m model.Movie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.movies[m.ID] = m
}

func (c *MemoryMovieCatalog) GetMovie(_ context.Context, id uint64) (*model.Movie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.movies[id]
	if !ok {
		return nil, scheduler.ErrMovieNotFound
	}
	return &m, nil
}

var (
	_ scheduler.RoomStore     = (*MemoryRoomStore)(nil)
	_ scheduler.ShowtimeStore = (*MemoryShowtimeStore)(nil)
	_ scheduler.MovieCatalog  = (*MemoryMovieCatalog)(nil)
)
