package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/scheduler"
)

// RoomRepo provides MySQL-backed access to the rooms and seats tables and
// implements scheduler.RoomStore.  Grid persistence runs in a transaction
// so a room is never marked ready with a half-written grid.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to the provided database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// CreateRoom inserts the room and populates its ID.  GridReady starts
// false; SaveGrid flips it once seats exist.
func (r *RoomRepo) CreateRoom(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (name, row_count, naming_pattern, grid_ready) VALUES (?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Rows, string(room.Pattern))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// SaveGrid inserts every seat of a freshly built grid and marks the room
// ready, all within one transaction.
func (r *RoomRepo) SaveGrid(ctx context.Context, roomID uint64, seats []model.Seat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const ins = `INSERT INTO seats (room_id, row_label, col_number) VALUES (?, ?, ?)`
	for _, seat := range seats {
		if _, err := tx.ExecContext(ctx, ins, roomID, seat.RowLabel, seat.Column); err != nil {
			return err
		}
	}
	const upd = `UPDATE rooms SET grid_ready = 1, capacity = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, upd, len(seats), roomID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scheduler.ErrRoomNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetRoom loads one room by ID.
func (r *RoomRepo) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT id, name, row_count, capacity, naming_pattern, grid_ready, created_at FROM rooms WHERE id = ?`
	var room model.Room
	var pattern string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&room.ID, &room.Name, &room.Rows, &room.Capacity, &pattern, &room.GridReady, &room.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduler.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	room.Pattern = model.NamingPattern(pattern)
	return &room, nil
}

// RoomSeats returns every seat of the room ordered by ID.
func (r *RoomRepo) RoomSeats(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	const q = `SELECT id, room_id, row_label, col_number FROM seats WHERE room_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.RoomID, &s.RowLabel, &s.Column); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

var _ scheduler.RoomStore = (*RoomRepo)(nil)
