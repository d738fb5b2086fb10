package ledger

import (
	"context"
	"errors"

	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
)

// ErrStallOccupied is returned by Store.CreateReservation when the
// storage layer's occupancy index already has a claim on the stall.
// With a durable store this is the unique-index encoding of the
// one-occupant-per-stall invariant; the ledger surfaces it to callers
// as ErrStallUnavailable.
var ErrStallOccupied = errors.New("stall occupied")

// Store is the durable record behind the ledger.  Every transition is
// written through the Store before it becomes visible in memory, so a
// Store failure never leaves partial state behind.
//
// Implementations: repository.ReservationRepo (MySQL, with a primary
// key on stall_occupancy.stall_id enforcing the invariant) and
// MemoryStore below for tests and single-node deployments.
type Store interface {
	// CreateReservation persists a brand-new hold and claims the
	// stall's occupancy slot.  It returns ErrStallOccupied when another
	// writer got there first.
	CreateReservation(ctx context.Context, r *model.Reservation) error

	// UpdateReservation persists a status transition.  When the new
	// status no longer occupies the stall, the occupancy claim is
	// released in the same operation.
	UpdateReservation(ctx context.Context, r *model.Reservation) error

	// ListOpen returns every reservation in a non-terminal or
	// checked-in state, used to rebuild the in-memory ledger after a
	// restart.
	ListOpen(ctx context.Context) ([]model.Reservation, error)
}
