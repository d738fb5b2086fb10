package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
	"github.com/iliyamo/exhibition-stall-reservation/internal/registry"
	"github.com/iliyamo/exhibition-stall-reservation/internal/token"
)

// DefaultHoldTTL is how long an unconfirmed hold blocks a stall before
// the sweeper reclaims it.
const DefaultHoldTTL = 10 * time.Minute

// Config tunes a Ledger.  Zero values fall back to DefaultHoldTTL and
// the wall clock; tests inject Now to drive expiry deterministically.
type Config struct {
	HoldTTL time.Duration
	Now     func() time.Time
}

// slot is the occupancy state of a single stall.  Its mutex serializes
// mutating operations on that stall only, so contention on one popular
// stall never slows bookings on the rest of the floor.  The active
// field is written only while both the slot mutex and the ledger write
// lock are held, and read under the ledger read lock.
type slot struct {
	mu     sync.Mutex
	active string // reservation id currently occupying the stall, "" when free
}

// Ledger arbitrates concurrent reservation attempts and drives each
// reservation through its lifecycle.  It is the only component that
// mutates reservation state; everything else sees copies.
//
// Locking discipline: a mutating operation first takes the slot mutex
// of the stall involved (per-stall serialization and the at-most-one-
// winner guarantee), writes the transition through the Store, and only
// then publishes it to the in-memory maps under the ledger write lock.
// Readers take the read lock and therefore observe committed states
// only, never a half-applied transition.
type Ledger struct {
	stalls  *registry.Registry
	store   Store
	issuer  *token.Issuer
	holdTTL time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	res   map[string]*model.Reservation
	slots map[uint64]*slot
}

// New constructs a Ledger over the given floor plan.  All dependencies
// must be non-nil.
func New(stalls *registry.Registry, store Store, issuer *token.Issuer, cfg Config) *Ledger {
	if stalls == nil || store == nil || issuer == nil {
		panic("nil dependency passed to ledger.New")
	}
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = DefaultHoldTTL
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	l := &Ledger{
		stalls:  stalls,
		store:   store,
		issuer:  issuer,
		holdTTL: cfg.HoldTTL,
		now:     cfg.Now,
		res:     make(map[string]*model.Reservation),
		slots:   make(map[uint64]*slot, stalls.Len()),
	}
	for _, s := range stalls.List() {
		l.slots[s.ID] = &slot{}
	}
	return l
}

// Load rebuilds the in-memory ledger from the durable store after a
// restart.  Two occupying reservations on the same stall mean the
// store is corrupt; Load refuses to start rather than guess a winner.
func (l *Ledger) Load(ctx context.Context) error {
	rows, err := l.store.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("list open reservations: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, row := range rows {
		if !row.Status.Occupying() {
			continue
		}
		s, ok := l.slots[row.StallID]
		if !ok {
			return fmt.Errorf("reservation %s references unknown stall %d", row.ID, row.StallID)
		}
		if s.active != "" {
			return fmt.Errorf("stall %d has two occupying reservations (%s, %s)", row.StallID, s.active, row.ID)
		}
		row := row
		l.res[row.ID] = &row
		s.active = row.ID
	}
	return nil
}

// RequestHold atomically checks that the stall is free and creates a
// new hold on it.  Among any set of concurrent calls racing on the same
// stall, exactly one wins; the rest fail with ErrStallUnavailable and
// no partial state is created.  A stale hold left behind by a late
// sweeper is expired on the way in, so callers never lose to a hold
// that has already lapsed.
func (l *Ledger) RequestHold(ctx context.Context, stallID uint64, vendorID, notes string) (*model.Reservation, error) {
	if _, ok := l.stalls.Get(stallID); !ok {
		return nil, ErrStallNotFound
	}
	if vendorID == "" {
		return nil, errors.New("empty vendor id")
	}
	s := l.slots[stallID]
	s.mu.Lock()
	defer s.mu.Unlock()

	now := l.now()
	if err := l.expireStale(ctx, s, now); err != nil {
		return nil, err
	}
	l.mu.RLock()
	occupied := s.active != ""
	l.mu.RUnlock()
	if occupied {
		return nil, ErrStallUnavailable
	}

	r := &model.Reservation{
		ID:            uuid.NewString(),
		StallID:       stallID,
		VendorID:      vendorID,
		Status:        model.StatusHeld,
		Notes:         notes,
		CreatedAt:     now,
		HoldExpiresAt: now.Add(l.holdTTL),
	}
	if err := l.store.CreateReservation(ctx, r); err != nil {
		if errors.Is(err, ErrStallOccupied) {
			// another instance claimed the stall in the durable index
			return nil, ErrStallUnavailable
		}
		return nil, fmt.Errorf("persist hold: %w", err)
	}
	l.mu.Lock()
	l.res[r.ID] = r
	s.active = r.ID
	l.mu.Unlock()

	cp := *r
	return &cp, nil
}

// Confirm finalises a hold into a durable reservation and issues its
// verification token.  The token issuance and the status flip commit
// together: no caller can ever observe a confirmed reservation without
// a token, and no token is issued twice for the same reservation.
func (l *Ledger) Confirm(ctx context.Context, reservationID, vendorID string) (*model.Reservation, error) {
	r, s, err := l.lookup(reservationID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l.mu.RLock()
	owner, status, expiresAt := r.VendorID, r.Status, r.HoldExpiresAt
	l.mu.RUnlock()

	if owner != vendorID {
		return nil, ErrNotOwner
	}
	if status != model.StatusHeld {
		return nil, ErrAlreadyTerminal
	}
	now := l.now()
	if !now.Before(expiresAt) {
		// the sweeper has not reached this hold yet; retire it here
		if err := l.transition(ctx, s, r, func(x *model.Reservation) {
			x.Status = model.StatusExpired
		}); err != nil {
			return nil, err
		}
		return nil, ErrHoldExpired
	}

	tok, err := l.issuer.Issue(r.ID)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}
	confirmedAt := now
	if err := l.transition(ctx, s, r, func(x *model.Reservation) {
		x.Status = model.StatusConfirmed
		x.ConfirmedAt = &confirmedAt
		x.VerificationToken = tok
	}); err != nil {
		return nil, err
	}
	return l.snapshot(r), nil
}

// Cancel transitions a held or confirmed reservation to cancelled and
// releases the stall immediately, so a new hold on it may succeed right
// away.  Both the owning vendor and venue staff may cancel; the actor
// is recorded in the server log only.
func (l *Ledger) Cancel(ctx context.Context, reservationID, actorID string) (*model.Reservation, error) {
	r, s, err := l.lookup(reservationID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l.mu.RLock()
	status := r.Status
	l.mu.RUnlock()
	if status.Terminal() {
		return nil, ErrAlreadyTerminal
	}
	if err := l.transition(ctx, s, r, func(x *model.Reservation) {
		x.Status = model.StatusCancelled
	}); err != nil {
		return nil, err
	}
	log.Printf("ledger: reservation %s on stall %d cancelled by %s", r.ID, r.StallID, actorID)
	return l.snapshot(r), nil
}

// CheckIn consumes a verification token presented at the venue and
// marks the reservation checked in.  Check-in commits exactly once:
// re-presenting the same token afterwards yields ErrAlreadyCheckedIn
// without altering state.
func (l *Ledger) CheckIn(ctx context.Context, rawToken string) (*model.Reservation, error) {
	reservationID, err := l.issuer.Verify(rawToken)
	if err != nil {
		return nil, err
	}
	r, s, err := l.lookup(reservationID)
	if err != nil {
		// validly signed token for a reservation this ledger does not
		// know; treat the same as a forged token
		return nil, token.ErrInvalidToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l.mu.RLock()
	status, current := r.Status, r.VerificationToken
	l.mu.RUnlock()
	if current != rawToken {
		return nil, token.ErrInvalidToken
	}
	switch status {
	case model.StatusCheckedIn:
		return nil, ErrAlreadyCheckedIn
	case model.StatusConfirmed:
		// fall through to the transition below
	default:
		return nil, ErrNotConfirmed
	}
	checkedInAt := l.now()
	if err := l.transition(ctx, s, r, func(x *model.Reservation) {
		x.Status = model.StatusCheckedIn
		x.CheckedInAt = &checkedInAt
	}); err != nil {
		return nil, err
	}
	return l.snapshot(r), nil
}

// ExpireOverdueHolds transitions every held reservation whose TTL has
// elapsed to expired and frees its stall.  Each stall's expiry is
// independent: a failure on one is logged and skipped, never aborting
// the batch.  Expiring a hold that was confirmed or already expired in
// the meantime is a no-op, so concurrent sweepers are safe.
func (l *Ledger) ExpireOverdueHolds(ctx context.Context, now time.Time) int {
	l.mu.RLock()
	overdue := make([]*model.Reservation, 0)
	for _, r := range l.res {
		if r.Status == model.StatusHeld && !now.Before(r.HoldExpiresAt) {
			overdue = append(overdue, r)
		}
	}
	l.mu.RUnlock()

	expired := 0
	for _, r := range overdue {
		s := l.slots[r.StallID]
		s.mu.Lock()
		l.mu.RLock()
		still := r.Status == model.StatusHeld && !now.Before(r.HoldExpiresAt)
		l.mu.RUnlock()
		if still {
			if err := l.transition(ctx, s, r, func(x *model.Reservation) {
				x.Status = model.StatusExpired
			}); err != nil {
				log.Printf("ledger: expire hold %s on stall %d: %v", r.ID, r.StallID, err)
			} else {
				expired++
			}
		}
		s.mu.Unlock()
	}
	return expired
}

// Availability returns the read-side projection of the whole floor:
// every stall paired with the reservation occupying it, if any.  The
// snapshot is consistent — a stall is never shown free while an
// occupying reservation exists for it.  Verification tokens are
// stripped; this projection is for display, not check-in.
func (l *Ledger) Availability() []model.StallAvailability {
	stalls := l.stalls.List()
	out := make([]model.StallAvailability, 0, len(stalls))
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, st := range stalls {
		entry := model.StallAvailability{Stall: st}
		if id := l.slots[st.ID].active; id != "" {
			cp := *l.res[id]
			cp.VerificationToken = ""
			entry.Reserved = true
			entry.Occupant = &cp
		}
		out = append(out, entry)
	}
	return out
}

// ReservationsFor returns every reservation the vendor has made, in any
// state, newest first.
func (l *Ledger) ReservationsFor(vendorID string) []model.Reservation {
	l.mu.RLock()
	out := make([]model.Reservation, 0)
	for _, r := range l.res {
		if r.VendorID == vendorID {
			out = append(out, *r)
		}
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// expireStale retires a lapsed hold occupying the slot, if any.  Must
// be called with the slot mutex held.
func (l *Ledger) expireStale(ctx context.Context, s *slot, now time.Time) error {
	l.mu.RLock()
	var stale *model.Reservation
	if s.active != "" {
		r := l.res[s.active]
		if r.Status == model.StatusHeld && !now.Before(r.HoldExpiresAt) {
			stale = r
		}
	}
	l.mu.RUnlock()
	if stale == nil {
		return nil
	}
	return l.transition(ctx, s, stale, func(x *model.Reservation) {
		x.Status = model.StatusExpired
	})
}

// transition applies a status change to r: the mutated copy is written
// through the store first, then published to memory under the write
// lock, releasing the slot when the new status no longer occupies it.
// Must be called with the slot mutex of r's stall held.  On a store
// error nothing changes and the error is returned.
func (l *Ledger) transition(ctx context.Context, s *slot, r *model.Reservation, mutate func(*model.Reservation)) error {
	cp := *r
	mutate(&cp)
	if err := l.store.UpdateReservation(ctx, &cp); err != nil {
		return fmt.Errorf("persist transition to %s: %w", cp.Status, err)
	}
	l.mu.Lock()
	*r = cp
	if !cp.Status.Occupying() && s.active == r.ID {
		s.active = ""
	}
	l.mu.Unlock()
	return nil
}

// lookup resolves a reservation ID to its canonical record and the slot
// of its stall.
func (l *Ledger) lookup(reservationID string) (*model.Reservation, *slot, error) {
	l.mu.RLock()
	r, ok := l.res[reservationID]
	l.mu.RUnlock()
	if !ok {
		return nil, nil, ErrReservationNotFound
	}
	return r, l.slots[r.StallID], nil
}

// snapshot returns a copy of r safe to hand to callers.
func (l *Ledger) snapshot(r *model.Reservation) *model.Reservation {
	l.mu.RLock()
	cp := *r
	l.mu.RUnlock()
	return &cp
}
