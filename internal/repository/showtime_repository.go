package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/scheduler"
)

// ShowtimeRepo provides MySQL-backed access to the showtimes table and
// implements scheduler.ShowtimeStore.  Timestamps are stored and compared
// in UTC.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a ShowtimeRepo bound to the provided database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// Create inserts the showtime and populates its ID.
func (r *ShowtimeRepo) Create(ctx context.Context, st *model.Showtime) error {
	const q = `INSERT INTO showtimes (room_id, movie_id, title, starts_at, ends_at, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, st.RoomID, st.MovieID, st.Title, st.StartsAt.UTC(), st.EndsAt.UTC(), string(st.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = uint64(id)
	return nil
}

// GetByID loads one showtime by ID.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	const q = `SELECT id, room_id, movie_id, title, starts_at, ends_at, status, created_at FROM showtimes WHERE id = ?`
	var st model.Showtime
	var status string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&st.ID, &st.RoomID, &st.MovieID, &st.Title, &st.StartsAt, &st.EndsAt, &status, &st.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduler.ErrShowtimeNotFound
	}
	if err != nil {
		return nil, err
	}
	st.Status = model.ShowtimeStatus(status)
	return &st, nil
}

// ListActiveByRoom returns every non-cancelled showtime in the room
// ordered by start time.  The scheduler runs its closed-open overlap check
// against this list.
func (r *ShowtimeRepo) ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error) {
	const q = `SELECT id, room_id, movie_id, title, starts_at, ends_at, status, created_at
			   FROM showtimes
			   WHERE room_id = ? AND status <> 'CANCELLED'
			   ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Showtime
	for rows.Next() {
		var st model.Showtime
		var status string
		if err := rows.Scan(&st.ID, &st.RoomID, &st.MovieID, &st.Title, &st.StartsAt, &st.EndsAt, &status, &st.CreatedAt); err != nil {
			return nil, err
		}
		st.Status = model.ShowtimeStatus(status)
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateStatus sets the showtime's lifecycle status.
func (r *ShowtimeRepo) UpdateStatus(ctx context.Context, id uint64, status model.ShowtimeStatus) error {
	const q = `UPDATE showtimes SET status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scheduler.ErrShowtimeNotFound
	}
	return nil
}

var _ scheduler.ShowtimeStore = (*ShowtimeRepo)(nil)
