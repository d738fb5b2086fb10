package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/exhibition-stall-reservation/internal/ledger"
	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
)

// mysqlDupEntry is the MySQL error number for a duplicate key insert.
const mysqlDupEntry = 1062

// ReservationRepo persists reservations and the per-stall occupancy
// claims.  It implements ledger.Store: creating a reservation claims
// the stall through an insert into stall_occupancy, whose primary key
// on stall_id makes the database reject a second occupant outright.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateReservation inserts a new hold and claims its stall in one
// transaction.  When the occupancy insert hits the primary key, another
// writer already owns the stall and ledger.ErrStallOccupied is
// returned; the reservation row is never written in that case.
func (r *ReservationRepo) CreateReservation(ctx context.Context, res *model.Reservation) error {
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

	const claim = `INSERT INTO stall_occupancy (stall_id, reservation_id) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, claim, res.StallID, res.ID); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return ledger.ErrStallOccupied
		}
		return err
	}

	const ins = `INSERT INTO reservations
				 (id, stall_id, vendor_id, status, notes, verification_token, created_at, hold_expires_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins,
		res.ID, res.StallID, res.VendorID, res.Status, res.Notes, res.VerificationToken,
		res.CreatedAt.UTC(), res.HoldExpiresAt.UTC(),
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateReservation persists a status transition and, when the new
// status no longer occupies the stall, releases the occupancy claim in
// the same transaction.
func (r *ReservationRepo) UpdateReservation(ctx context.Context, res *model.Reservation) error {
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

	const upd = `UPDATE reservations
				 SET status = ?, verification_token = ?, confirmed_at = ?, checked_in_at = ?
				 WHERE id = ?`
	result, err := tx.ExecContext(ctx, upd,
		res.Status, res.VerificationToken, nullTime(res.ConfirmedAt), nullTime(res.CheckedInAt), res.ID,
	)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is also 0 for a no-change update, so double check
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`, res.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}
	if !res.Status.Occupying() {
		const release = `DELETE FROM stall_occupancy WHERE stall_id = ? AND reservation_id = ?`
		if _, err := tx.ExecContext(ctx, release, res.StallID, res.ID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListOpen returns every reservation still occupying a stall, used to
// rebuild the in-memory ledger on startup.
func (r *ReservationRepo) ListOpen(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT id, stall_id, vendor_id, status, notes, verification_token,
					  created_at, hold_expires_at, confirmed_at, checked_in_at
			   FROM reservations
			   WHERE status IN ('held', 'confirmed', 'checked_in')`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		var confirmedAt, checkedInAt sql.NullTime
		if err := rows.Scan(
			&res.ID, &res.StallID, &res.VendorID, &res.Status, &res.Notes, &res.VerificationToken,
			&res.CreatedAt, &res.HoldExpiresAt, &confirmedAt, &checkedInAt,
		); err != nil {
			return nil, err
		}
		if confirmedAt.Valid {
			t := confirmedAt.Time.UTC()
			res.ConfirmedAt = &t
		}
		if checkedInAt.Valid {
			t := checkedInAt.Time.UTC()
			res.CheckedInAt = &t
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullTime converts an optional timestamp to its SQL representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
