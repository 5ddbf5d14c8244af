package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinechain/seat-reservation-engine/internal/model"
	"github.com/cinechain/seat-reservation-engine/internal/store"
)

// SeatStateRepo is the MySQL-backed store.SeatStateStore.  Every
// transition is a single conditional UPDATE whose RowsAffected result is
// the compare-and-set outcome, so two concurrent acquirers of one seat can
// never both win regardless of interleaving.  Expired holds are treated as
// AVAILABLE inside the CAS predicates; the sweep reclaims them durably.
type SeatStateRepo struct {
	db *sql.DB
}

// NewSeatStateRepo returns a SeatStateRepo bound to the provided database.
func NewSeatStateRepo(db *sql.DB) *SeatStateRepo { return &SeatStateRepo{db: db} }

// Materialize inserts an AVAILABLE row per seat for the showtime.  Rows
// that already exist are left untouched.
func (r *SeatStateRepo) Materialize(ctx context.Context, showtimeID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT IGNORE INTO seat_states (showtime_id, seat_id, status) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*2)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, 'AVAILABLE')"
		args = append(args, showtimeID, sid)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Acquire attempts AVAILABLE -> HELD.  The predicate admits an expired
// HELD row, which is equivalent to AVAILABLE.
func (r *SeatStateRepo) Acquire(ctx context.Context, key store.SeatKey, holder, token string, expiresAt time.Time) error {
	const q = `UPDATE seat_states
			   SET status = 'HELD', holder = ?, hold_token = ?, expires_at = ?
			   WHERE showtime_id = ? AND seat_id = ?
				 AND (status = 'AVAILABLE' OR (status = 'HELD' AND expires_at <= UTC_TIMESTAMP()))`
	res, err := r.db.ExecContext(ctx, q, holder, token, expiresAt.UTC(), key.ShowtimeID, key.SeatID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	// Lost the CAS; classify the failure for the caller.
	if _, err := r.State(ctx, key, time.Now().UTC()); errors.Is(err, store.ErrSeatUnknown) {
		return store.ErrSeatUnknown
	}
	return store.ErrSeatTaken
}

// Confirm attempts HELD(holder, unexpired) -> RESERVED.
func (r *SeatStateRepo) Confirm(ctx context.Context, key store.SeatKey, holder string, now time.Time) error {
	const q = `UPDATE seat_states
			   SET status = 'RESERVED'
			   WHERE showtime_id = ? AND seat_id = ? AND status = 'HELD' AND holder = ? AND expires_at > ?`
	res, err := r.db.ExecContext(ctx, q, key.ShowtimeID, key.SeatID, holder, now.UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	snap, err := r.State(ctx, key, now)
	if err != nil {
		if errors.Is(err, store.ErrSeatUnknown) {
			return store.ErrHoldNotFound
		}
		return err
	}
	if snap.State == model.SeatAvailable && snap.Holder == "" {
		// The row may still carry an expired hold by this holder.
		return r.classifyExpired(ctx, key, holder)
	}
	return store.ErrHoldNotFound
}

// classifyExpired distinguishes "your hold expired" from "you never held
// this seat" after a failed confirm CAS.
func (r *SeatStateRepo) classifyExpired(ctx context.Context, key store.SeatKey, holder string) error {
	const q = `SELECT COUNT(*) FROM seat_states
			   WHERE showtime_id = ? AND seat_id = ? AND status = 'HELD' AND holder = ? AND expires_at <= UTC_TIMESTAMP()`
	var n int
	if err := r.db.QueryRowContext(ctx, q, key.ShowtimeID, key.SeatID, holder).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return store.ErrHoldExpired
	}
	return store.ErrHoldNotFound
}

// Unconfirm reverts RESERVED(holder) -> HELD with the given deadline.
func (r *SeatStateRepo) Unconfirm(ctx context.Context, key store.SeatKey, holder string, expiresAt time.Time) error {
	const q = `UPDATE seat_states
			   SET status = 'HELD', expires_at = ?
			   WHERE showtime_id = ? AND seat_id = ? AND status = 'RESERVED' AND holder = ?`
	res, err := r.db.ExecContext(ctx, q, expiresAt.UTC(), key.ShowtimeID, key.SeatID, holder)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrHoldNotFound
	}
	return nil
}

// Release returns the holder's seat to AVAILABLE.  Idempotent.
func (r *SeatStateRepo) Release(ctx context.Context, key store.SeatKey, holder string) (bool, error) {
	const q = `UPDATE seat_states
			   SET status = 'AVAILABLE', holder = NULL, hold_token = NULL, expires_at = NULL
			   WHERE showtime_id = ? AND seat_id = ? AND holder = ? AND status IN ('HELD', 'RESERVED')`
	res, err := r.db.ExecContext(ctx, q, key.ShowtimeID, key.SeatID, holder)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// ForceRelease returns any seat to AVAILABLE regardless of holder.  The
// displaced state is read and cleared inside one transaction with a row
// lock so the sweep and a racing confirm cannot interleave.
func (r *SeatStateRepo) ForceRelease(ctx context.Context, key store.SeatKey) (store.Snapshot, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Snapshot{}, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT status, COALESCE(holder, ''), expires_at FROM seat_states
				 WHERE showtime_id = ? AND seat_id = ? FOR UPDATE`
	var status, holder string
	var expiresAt sql.NullTime
	err = tx.QueryRowContext(ctx, sel, key.ShowtimeID, key.SeatID).Scan(&status, &holder, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, false, store.ErrSeatUnknown
	}
	if err != nil {
		return store.Snapshot{}, false, err
	}
	prev := store.Snapshot{State: model.SeatState(status), Holder: holder}
	if expiresAt.Valid {
		prev.ExpiresAt = expiresAt.Time
	}
	if prev.State == model.SeatAvailable {
		return store.Snapshot{State: model.SeatAvailable}, false, nil
	}
	const upd = `UPDATE seat_states
				 SET status = 'AVAILABLE', holder = NULL, hold_token = NULL, expires_at = NULL
				 WHERE showtime_id = ? AND seat_id = ?`
	if _, err := tx.ExecContext(ctx, upd, key.ShowtimeID, key.SeatID); err != nil {
		return store.Snapshot{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return store.Snapshot{}, false, err
	}
	committed = true
	return prev, true, nil
}

// State reads one seat's committed state, folding expired holds into
// AVAILABLE.
func (r *SeatStateRepo) State(ctx context.Context, key store.SeatKey, now time.Time) (store.Snapshot, error) {
	const q = `SELECT status, COALESCE(holder, ''), expires_at FROM seat_states
			   WHERE showtime_id = ? AND seat_id = ?`
	var status, holder string
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, key.ShowtimeID, key.SeatID).Scan(&status, &holder, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, store.ErrSeatUnknown
	}
	if err != nil {
		return store.Snapshot{}, err
	}
	return foldExpired(status, holder, expiresAt, now), nil
}

// SnapshotShowtime reads every seat's committed state for the showtime.
func (r *SeatStateRepo) SnapshotShowtime(ctx context.Context, showtimeID uint64, now time.Time) (map[uint64]store.Snapshot, error) {
	const q = `SELECT seat_id, status, COALESCE(holder, ''), expires_at FROM seat_states WHERE showtime_id = ?`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]store.Snapshot)
	for rows.Next() {
		var seatID uint64
		var status, holder string
		var expiresAt sql.NullTime
		if err := rows.Scan(&seatID, &status, &holder, &expiresAt); err != nil {
			return nil, err
		}
		out[seatID] = foldExpired(status, holder, expiresAt, now)
	}
	return out, rows.Err()
}

// ActiveKeys lists seats currently HELD (unexpired) or RESERVED.
func (r *SeatStateRepo) ActiveKeys(ctx context.Context, showtimeID uint64) ([]store.SeatKey, error) {
	const q = `SELECT seat_id FROM seat_states
			   WHERE showtime_id = ?
				 AND (status = 'RESERVED' OR (status = 'HELD' AND expires_at > UTC_TIMESTAMP()))`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []store.SeatKey
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		keys = append(keys, store.SeatKey{ShowtimeID: showtimeID, SeatID: sid})
	}
	return keys, rows.Err()
}

// ExpireDue reclaims every hold whose deadline passed, reporting them so
// the sweep can publish expiry events.  Selection and release run in one
// transaction mirroring the hold-cleanup the reservation path performs.
func (r *SeatStateRepo) ExpireDue(ctx context.Context, now time.Time) ([]store.ExpiredHold, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT showtime_id, seat_id, COALESCE(holder, '') FROM seat_states
				 WHERE status = 'HELD' AND expires_at <= ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, sel, now.UTC())
	if err != nil {
		return nil, err
	}
	var expired []store.ExpiredHold
	for rows.Next() {
		var ex store.ExpiredHold
		if err := rows.Scan(&ex.Key.ShowtimeID, &ex.Key.SeatID, &ex.Holder); err != nil {
			rows.Close()
			return nil, err
		}
		expired = append(expired, ex)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}
	const upd = `UPDATE seat_states
				 SET status = 'AVAILABLE', holder = NULL, hold_token = NULL, expires_at = NULL
				 WHERE status = 'HELD' AND expires_at <= ?`
	if _, err := tx.ExecContext(ctx, upd, now.UTC()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return expired, nil
}

func foldExpired(status, holder string, expiresAt sql.NullTime, now time.Time) store.Snapshot {
	st := model.SeatState(status)
	if st == model.SeatHeld && expiresAt.Valid && !now.Before(expiresAt.Time) {
		return store.Snapshot{State: model.SeatAvailable}
	}
	if st == model.SeatAvailable {
		return store.Snapshot{State: model.SeatAvailable}
	}
	snap := store.Snapshot{State: st, Holder: holder}
	if expiresAt.Valid {
		snap.ExpiresAt = expiresAt.Time
	}
	return snap
}

var _ store.SeatStateStore = (*SeatStateRepo)(nil)
