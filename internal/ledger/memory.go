package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
)

// MemoryStore is a Store kept entirely in process memory.  It enforces
// the same one-occupant-per-stall index a durable store would, which
// makes it suitable for tests and for single-node deployments where
// reservations do not need to survive a restart.
type MemoryStore struct {
	mu        sync.Mutex
	rows      map[string]model.Reservation
	occupancy map[uint64]string // stall id -> occupying reservation id
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:      make(map[string]model.Reservation),
		occupancy: make(map[uint64]string),
	}
}

// CreateReservation inserts a new hold and claims its stall.
func (s *MemoryStore) CreateReservation(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.rows[r.ID]; dup {
		return fmt.Errorf("duplicate reservation id %s", r.ID)
	}
	if holder, taken := s.occupancy[r.StallID]; taken && holder != r.ID {
		return ErrStallOccupied
	}
	s.rows[r.ID] = *r
	s.occupancy[r.StallID] = r.ID
	return nil
}

// UpdateReservation overwrites the stored row and releases the stall
// claim when the reservation stops occupying it.
func (s *MemoryStore) UpdateReservation(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[r.ID]; !ok {
		return fmt.Errorf("unknown reservation id %s", r.ID)
	}
	s.rows[r.ID] = *r
	if !r.Status.Occupying() && s.occupancy[r.StallID] == r.ID {
		delete(s.occupancy, r.StallID)
	}
	return nil
}

// ListOpen returns every reservation still occupying a stall.
func (s *MemoryStore) ListOpen(_ context.Context) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0, len(s.occupancy))
	for _, r := range s.rows {
		if r.Status.Occupying() {
			out = append(out, r)
		}
	}
	return out, nil
}
