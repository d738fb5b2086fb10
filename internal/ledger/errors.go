// Package ledger owns the authoritative state of every reservation and
// the occupancy slot of every stall.  This file defines the sentinel
// errors surfaced by ledger operations.  Handlers translate them into
// HTTP responses; none of them is retryable except by starting over
// with a fresh request.
package ledger

import "errors"

// ErrStallNotFound is returned when the requested stall does not exist
// on the floor plan.
var ErrStallNotFound = errors.New("stall not found")

// ErrStallUnavailable is returned when a hold is requested on a stall
// that already has an occupying reservation.  This is the expected
// outcome for the losers of a race on a popular stall; callers should
// offer another stall rather than retry.
var ErrStallUnavailable = errors.New("stall unavailable")

// ErrReservationNotFound is returned when no reservation with the given
// ID exists.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrNotOwner is returned when a vendor attempts to confirm a
// reservation created by somebody else.
var ErrNotOwner = errors.New("not reservation owner")

// ErrAlreadyTerminal is returned when an operation targets a
// reservation that has already reached a final state, or one that has
// moved past the state the operation expects.
var ErrAlreadyTerminal = errors.New("reservation already terminal")

// ErrHoldExpired is returned when a confirm arrives after the hold's
// TTL has elapsed.  The hold is transitioned to expired on the spot, so
// the stall is immediately available to other vendors.
var ErrHoldExpired = errors.New("hold expired")

// ErrAlreadyCheckedIn is returned when a verification token is
// presented again after a successful check-in.  The first check-in is
// committed exactly once; re-presentation changes nothing.
var ErrAlreadyCheckedIn = errors.New("already checked in")

// ErrNotConfirmed is returned when a token resolves to a reservation
// that is not in the confirmed state (for example one that was
// cancelled after confirmation).
var ErrNotConfirmed = errors.New("reservation not confirmed")
