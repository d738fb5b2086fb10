// Package repository provides MySQL persistence for the reservation
// engine.  Three tables back it:
//
//  stalls           – one row per stall, written once at floor-plan setup
//  reservations     – one row per reservation, keyed by its UUID
//  stall_occupancy  – PRIMARY KEY (stall_id); holding a row here is the
//                     physical encoding of "at most one occupying
//                     reservation per stall", enforced by the database
//                     itself and not only in application logic
//
// All timestamps are stored in UTC (the DSN uses parseTime=true&loc=UTC).
package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
)

// StallRepo provides access to the stalls table.  Stalls are read-mostly:
// inserted during setup, then only listed and looked up.
type StallRepo struct {
	db *sql.DB
}

// NewStallRepo returns a StallRepo bound to the given database.
func NewStallRepo(db *sql.DB) *StallRepo { return &StallRepo{db: db} }

// List returns every stall on the floor plan ordered by floor position.
func (r *StallRepo) List(ctx context.Context) ([]model.Stall, error) {
	const q = `SELECT id, name, size, dimensions, price_cents, floor_row, floor_col
			   FROM stalls
			   ORDER BY floor_row, floor_col, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stalls := make([]model.Stall, 0)
	for rows.Next() {
		var s model.Stall
		if err := rows.Scan(&s.ID, &s.Name, &s.Size, &s.Dimensions, &s.PriceCents, &s.FloorRow, &s.FloorCol); err != nil {
			return nil, err
		}
		stalls = append(stalls, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stalls, nil
}

// GetByID returns a single stall.  When no stall with the given ID
// exists, sql.ErrNoRows is returned.
func (r *StallRepo) GetByID(ctx context.Context, id uint64) (*model.Stall, error) {
	const q = `SELECT id, name, size, dimensions, price_cents, floor_row, floor_col
			   FROM stalls WHERE id = ?`
	var s model.Stall
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Name, &s.Size, &s.Dimensions, &s.PriceCents, &s.FloorRow, &s.FloorCol,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateBulk inserts multiple stalls in a single statement.  It is used
// by floor-plan setup only; passing an empty slice has no effect and
// returns nil.  The generated IDs are not populated on the passed
// values — callers should List afterwards.
func (r *StallRepo) CreateBulk(ctx context.Context, stalls []model.Stall) error {
	if len(stalls) == 0 {
		return nil
	}
	query := `INSERT INTO stalls (name, size, dimensions, price_cents, floor_row, floor_col) VALUES `
	args := make([]interface{}, 0, len(stalls)*6)
	for i, s := range stalls {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, s.Name, s.Size, s.Dimensions, s.PriceCents, s.FloorRow, s.FloorCol)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
