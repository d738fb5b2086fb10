// Package registry holds the in-memory table of stall identities and
// their static attributes.  The table is populated once during floor-plan
// setup and is immutable afterwards, so lookups need no locking.
package registry

import (
	"fmt"
	"sort"

	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
)

// Registry is the authoritative list of stalls for one exhibition.
// Construct it with New; the zero value is empty.
type Registry struct {
	byID  map[uint64]*model.Stall
	order []model.Stall // sorted by floor position for stable listing
}

// New builds a Registry from the floor-plan stalls.  Stalls with a zero
// ID, an unknown size or a duplicate ID are rejected so that a broken
// floor plan is caught at startup rather than at booking time.
func New(stalls []model.Stall) (*Registry, error) {
	r := &Registry{
		byID:  make(map[uint64]*model.Stall, len(stalls)),
		order: make([]model.Stall, 0, len(stalls)),
	}
	for _, s := range stalls {
		if s.ID == 0 {
			return nil, fmt.Errorf("stall %q has no id", s.Name)
		}
		if !s.Size.Valid() {
			return nil, fmt.Errorf("stall %d has invalid size %q", s.ID, s.Size)
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate stall id %d", s.ID)
		}
		s := s
		r.byID[s.ID] = &s
		r.order = append(r.order, s)
	}
	sort.Slice(r.order, func(i, j int) bool {
		a, b := r.order[i], r.order[j]
		if a.FloorRow != b.FloorRow {
			return a.FloorRow < b.FloorRow
		}
		if a.FloorCol != b.FloorCol {
			return a.FloorCol < b.FloorCol
		}
		return a.ID < b.ID
	})
	return r, nil
}

// Get returns the stall with the given ID, or false when no such stall
// exists on the floor plan.
func (r *Registry) Get(id uint64) (*model.Stall, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// List returns all stalls ordered by floor position (row, then column).
// The returned slice is a copy; callers may modify it freely.
func (r *Registry) List() []model.Stall {
	out := make([]model.Stall, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of stalls on the floor plan.
func (r *Registry) Len() int { return len(r.byID) }
